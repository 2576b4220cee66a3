package youtube

import (
	"strconv"

	"github.com/dustin/go-humanize"
)

// shapeVideoItem maps one videos.list item to the internal record.
func shapeVideoItem(item videoListItem) Video {
	views, _ := strconv.ParseInt(item.Statistics.ViewCount, 10, 64)
	return Video{
		ID:                  item.ID,
		Title:               item.Snippet.Title,
		Description:         item.Snippet.Description,
		ChannelID:           item.Snippet.ChannelID,
		ChannelTitle:        item.Snippet.ChannelTitle,
		Duration:            item.ContentDetails.Duration,
		DurationSec:         parseISODuration(item.ContentDetails.Duration),
		DurationParts:       durationParts(item.ContentDetails.Duration),
		ReadabilityDuration: readableDuration(item.ContentDetails.Duration),
		PublishedAt:         item.Snippet.PublishedAt,
		TimeAgo:             humanize.Time(item.Snippet.PublishedAt),
		Views:               views,
		ViewsStr:            humanize.Comma(views),
	}
}

// shapePlaylistItem maps one playlistItems.list item. Playlist snippets do
// not carry statistics, and only some carry durations.
func shapePlaylistItem(item playlistItem) Video {
	views, _ := strconv.ParseInt(item.Statistics.ViewCount, 10, 64)
	v := Video{
		ID:           item.Snippet.ResourceID.VideoID,
		Title:        item.Snippet.Title,
		ChannelID:    item.Snippet.ChannelID,
		ChannelTitle: item.Snippet.ChannelTitle,
		PublishedAt:  item.Snippet.PublishedAt,
		TimeAgo:      humanize.Time(item.Snippet.PublishedAt),
		Views:        views,
		ViewsStr:     humanize.Comma(views),
	}
	if item.ContentDetails.Duration != "" {
		v.Duration = item.ContentDetails.Duration
		v.DurationSec = parseISODuration(v.Duration)
		v.DurationParts = durationParts(v.Duration)
		v.ReadabilityDuration = readableDuration(v.Duration)
	}
	return v
}

func shapeVideos(resp videoListResponse) []Video {
	videos := make([]Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		videos = append(videos, shapeVideoItem(item))
	}
	return videos
}

func shapePlaylistVideos(resp playlistItemListResponse) []Video {
	videos := make([]Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		videos = append(videos, shapePlaylistItem(item))
	}
	return videos
}

func shapeCategories(resp videoCategoriesResponse) []Category {
	categories := make([]Category, 0, len(resp.Items))
	for _, item := range resp.Items {
		categories = append(categories, Category{
			ID:        item.ID,
			Title:     item.Snippet.Title,
			ChannelID: item.Snippet.ChannelID,
		})
	}
	return categories
}

func shapeComments(resp commentThreadListResponse) []Comment {
	comments := make([]Comment, 0, len(resp.Items))
	for _, item := range resp.Items {
		snippet := item.Snippet.TopLevelComment.Snippet
		comments = append(comments, Comment{
			Text:        snippet.TextDisplay,
			Author:      snippet.AuthorDisplayName,
			Avatar:      snippet.AuthorProfileImageURL,
			PublishedAt: snippet.PublishedAt,
			TimeAgo:     humanize.Time(snippet.PublishedAt),
		})
	}
	return comments
}

func searchVideoIDs(resp searchListResponse) []string {
	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	return ids
}
