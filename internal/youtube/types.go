package youtube

import (
	"time"

	"gotube/internal/filter"
)

// Video is the shaped record the gateway serves. It is cached unfiltered;
// suppression rules run on every read.
type Video struct {
	ID                  string         `json:"id"`
	Title               string         `json:"title"`
	Description         string         `json:"description"`
	ChannelID           string         `json:"channelId"`
	ChannelTitle        string         `json:"channelTitle"`
	Duration            string         `json:"duration"`
	DurationSec         int            `json:"durationSec"`
	DurationParts       *DurationParts `json:"durationParts"`
	ReadabilityDuration string         `json:"readabilityDuration"`
	PublishedAt         time.Time      `json:"publishedAt"`
	TimeAgo             string         `json:"timeAgo"`
	Views               int64          `json:"views"`
	ViewsStr            string         `json:"viewsStr"`
}

// FilterRecord exposes the fields the content filter inspects.
func (v Video) FilterRecord() filter.Record {
	return filter.Record{
		VideoID:      v.ID,
		ChannelID:    v.ChannelID,
		Title:        v.Title,
		ChannelTitle: v.ChannelTitle,
	}
}

// Category is one upstream video category.
type Category struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	ChannelID string `json:"channelId"`
}

// Comment is one shaped top-level comment.
type Comment struct {
	Text        string    `json:"text"`
	Author      string    `json:"author"`
	Avatar      string    `json:"avatar"`
	PublishedAt time.Time `json:"publishedAt"`
	TimeAgo     string    `json:"timeAgo"`
}

// CategoryWithVideos pairs a category with its current popular videos.
type CategoryWithVideos struct {
	Category Category `json:"category"`
	Videos   []Video  `json:"videos"`
}

// FullVideoData is the single-video aggregate: the video itself plus a slice
// of its comments and related uploads from the same channel.
type FullVideoData struct {
	Video    Video     `json:"video"`
	Comments []Comment `json:"comments"`
	Related  []Video   `json:"related"`
}

// Upstream response shapes, trimmed to the fields the gateway reads.

type searchListResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

type videoListResponse struct {
	Items []videoListItem `json:"items"`
}

type videoListItem struct {
	ID      string `json:"id"`
	Snippet struct {
		PublishedAt  time.Time `json:"publishedAt"`
		ChannelID    string    `json:"channelId"`
		Title        string    `json:"title"`
		Description  string    `json:"description"`
		ChannelTitle string    `json:"channelTitle"`
	} `json:"snippet"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
	Statistics struct {
		ViewCount string `json:"viewCount"`
	} `json:"statistics"`
}

type videoCategoriesResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title     string `json:"title"`
			ChannelID string `json:"channelId"`
		} `json:"snippet"`
	} `json:"items"`
}

type channelListResponse struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails struct {
			RelatedPlaylists struct {
				Uploads string `json:"uploads"`
			} `json:"relatedPlaylists"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type playlistItemListResponse struct {
	Items []playlistItem `json:"items"`
}

type playlistItem struct {
	Snippet struct {
		PublishedAt  time.Time `json:"publishedAt"`
		ChannelID    string    `json:"channelId"`
		Title        string    `json:"title"`
		ChannelTitle string    `json:"channelTitle"`
		ResourceID   struct {
			VideoID string `json:"videoId"`
		} `json:"resourceId"`
	} `json:"snippet"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
	Statistics struct {
		ViewCount string `json:"viewCount"`
	} `json:"statistics"`
}

type commentThreadListResponse struct {
	Items []struct {
		Snippet struct {
			TopLevelComment struct {
				Snippet struct {
					TextDisplay           string    `json:"textDisplay"`
					AuthorDisplayName     string    `json:"authorDisplayName"`
					AuthorProfileImageURL string    `json:"authorProfileImageUrl"`
					PublishedAt           time.Time `json:"publishedAt"`
				} `json:"snippet"`
			} `json:"topLevelComment"`
		} `json:"snippet"`
	} `json:"items"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Message string `json:"message"`
			Domain  string `json:"domain"`
			Reason  string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}
