package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gotube/internal/cache"
	"gotube/internal/config"
	"gotube/internal/filter"
)

// Availability is the global service switch, injected rather than read from
// ambient state. When it reports false, every gateway method fails fast
// without touching credentials or cache.
type Availability interface {
	Enabled(ctx context.Context) bool
}

// FlagAvailability is a fixed availability value, used when the switch comes
// from static configuration.
type FlagAvailability bool

// Enabled implements Availability.
func (f FlagAvailability) Enabled(context.Context) bool { return bool(f) }

// Service is the read gateway: one method per resource kind, each following
// cache lookup, upstream fetch on miss, shape mapping, cache write, and
// content filtering on both the hit and miss paths.
type Service struct {
	client *Client
	cache  *cache.Cache
	filter *filter.Filter
	avail  Availability
	ttl    config.CacheDays
	logger *slog.Logger
}

// NewService wires the gateway from its collaborators.
func NewService(client *Client, cacheLayer *cache.Cache, contentFilter *filter.Filter, avail Availability, ttl config.CacheDays, logger *slog.Logger) *Service {
	return &Service{
		client: client,
		cache:  cacheLayer,
		filter: contentFilter,
		avail:  avail,
		ttl:    ttl,
		logger: logger.With("component", "gateway"),
	}
}

func (s *Service) guard(ctx context.Context) error {
	if !s.avail.Enabled(ctx) {
		return ErrServiceDisabled
	}
	return nil
}

// Search screens the query first, then resolves matching video IDs (cached
// as an ID list, since search.list is the expensive endpoint) and delegates
// to the bulk video path so shaping, caching and filtering stay uniform.
func (s *Service) Search(ctx context.Context, query string) ([]Video, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	allowed, err := s.filter.AllowQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query preflight failed: %w", err)
	}
	if !allowed {
		s.logger.Info("Search query rejected by preflight", "query", query)
		return []Video{}, nil
	}

	ids, err := cache.GetOrCompute(ctx, s.cache, cache.NamespaceSearch, query, s.ttl.Search,
		func(ctx context.Context) ([]string, error) {
			resp, err := s.client.Search(ctx, query)
			if err != nil {
				return nil, err
			}
			return searchVideoIDs(resp), nil
		})
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []Video{}, nil
	}

	return s.VideoByIDs(ctx, ids)
}

// Categories returns the upstream category list for the configured region.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	return cache.GetOrCompute(ctx, s.cache, cache.NamespaceCategories, "all", s.ttl.Categories,
		func(ctx context.Context) ([]Category, error) {
			resp, err := s.client.Categories(ctx)
			if err != nil {
				return nil, err
			}
			return shapeCategories(resp), nil
		})
}

// VideoByIDs is the bulk lookup: requested IDs are partitioned into cached
// and uncached, only the uncached subset goes upstream in one batched call,
// and the union is filtered once.
func (s *Service) VideoByIDs(ctx context.Context, ids []string) ([]Video, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	videos := make([]Video, 0, len(ids))
	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		var v Video
		hit, err := s.cache.Get(ctx, cache.NamespaceVideo, id, &v)
		if err == nil && hit {
			videos = append(videos, v)
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) > 0 {
		resp, err := s.client.VideosByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, fetched := range shapeVideos(resp) {
			if err := s.cache.Set(ctx, cache.NamespaceVideo, fetched.ID, fetched, s.ttl.Video); err != nil {
				s.logger.Warn("Failed to cache video", "video_id", fetched.ID, "error", err)
			}
			videos = append(videos, fetched)
		}
	}

	return filter.Keep(ctx, s.filter, videos)
}

// VideoByID returns the single-video aggregate: the video plus a bounded
// slice of comments and related channel uploads. Comments and related videos
// are tolerated to fail independently of the video itself.
func (s *Service) VideoByID(ctx context.Context, videoID string) (*FullVideoData, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	blocked, err := s.filter.VideoBlocked(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrNotFound
	}

	data, err := cache.GetOrCompute(ctx, s.cache, cache.NamespaceVideoFull, videoID, s.ttl.Video,
		func(ctx context.Context) (FullVideoData, error) {
			resp, err := s.client.VideosByIDs(ctx, []string{videoID})
			if err != nil {
				return FullVideoData{}, err
			}
			if len(resp.Items) == 0 {
				return FullVideoData{}, fmt.Errorf("%w: video %s", ErrNotFound, videoID)
			}
			video := shapeVideoItem(resp.Items[0])

			comments, err := s.Comments(ctx, videoID)
			if err != nil {
				s.logger.Debug("Skipping comments for video", "video_id", videoID, "error", err)
				comments = []Comment{}
			}
			if len(comments) > maxVideoComments {
				comments = comments[:maxVideoComments]
			}

			related, err := s.VideoByChannelID(ctx, video.ChannelID)
			if err != nil {
				s.logger.Debug("Skipping related videos", "video_id", videoID, "error", err)
				related = []Video{}
			}
			if len(related) > maxRelatedVideos {
				related = related[:maxRelatedVideos]
			}

			return FullVideoData{Video: video, Comments: comments, Related: related}, nil
		})
	if err != nil {
		return nil, err
	}

	// The cached aggregate is unfiltered; the rules in force now decide.
	allowed, err := s.filter.IsAllowed(ctx, data.Video.FilterRecord())
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrNotFound
	}
	data.Related, err = filter.Keep(ctx, s.filter, data.Related)
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// VideoByCategoryID returns the popular videos of one category.
func (s *Service) VideoByCategoryID(ctx context.Context, categoryID string) ([]Video, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	videos, err := cache.GetOrCompute(ctx, s.cache, cache.NamespaceCategoryVideos, categoryID, s.ttl.CategoryVideos,
		func(ctx context.Context) ([]Video, error) {
			resp, err := s.client.VideosByCategory(ctx, categoryID)
			if err != nil {
				return nil, err
			}
			return shapeVideos(resp), nil
		})
	if err != nil {
		return nil, err
	}
	return filter.Keep(ctx, s.filter, videos)
}

// VideoByChannelID lists a channel's latest uploads through the two-hop
// channel-to-uploads-playlist fetch. When filtering removes more than half of
// a fresh fetch, an empty listing is cached instead so a suspect channel is
// not re-derived on every read. A blunt heuristic; a confidence threshold or
// manual override may replace it.
func (s *Service) VideoByChannelID(ctx context.Context, channelID string) ([]Video, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	blocked, err := s.filter.ChannelBlocked(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrNotFound
	}

	var videos []Video
	hit, err := s.cache.Get(ctx, cache.NamespaceChannelVideos, channelID, &videos)
	if err != nil || !hit {
		resp, err := s.client.ChannelUploads(ctx, channelID)
		if err != nil {
			return nil, err
		}
		videos = shapePlaylistVideos(resp)

		survivors, err := filter.Keep(ctx, s.filter, videos)
		if err != nil {
			return nil, err
		}
		if len(videos) > 0 && len(survivors)*2 < len(videos) {
			s.logger.Info("Soft-blocking channel, majority of uploads filtered",
				"channel_id", channelID, "fetched", len(videos), "kept", len(survivors))
			videos = []Video{}
		}

		if err := s.cache.Set(ctx, cache.NamespaceChannelVideos, channelID, videos, s.ttl.ChannelVideos); err != nil {
			s.logger.Warn("Failed to cache channel videos", "channel_id", channelID, "error", err)
		}
	}

	return filter.Keep(ctx, s.filter, videos)
}

// VideoByPlaylistID lists the videos of one playlist.
func (s *Service) VideoByPlaylistID(ctx context.Context, playlistID string) ([]Video, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	videos, err := cache.GetOrCompute(ctx, s.cache, cache.NamespacePlaylistVideos, playlistID, s.ttl.PlaylistVideos,
		func(ctx context.Context) ([]Video, error) {
			resp, err := s.client.PlaylistItems(ctx, playlistID)
			if err != nil {
				return nil, err
			}
			return shapePlaylistVideos(resp), nil
		})
	if err != nil {
		return nil, err
	}
	return filter.Keep(ctx, s.filter, videos)
}

// Comments returns a video's top-level comments. A video with comments
// turned off yields an empty, cached list; the quota for discovering that is
// spent only once.
func (s *Service) Comments(ctx context.Context, videoID string) ([]Comment, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	return cache.GetOrCompute(ctx, s.cache, cache.NamespaceComments, videoID, s.ttl.Comments,
		func(ctx context.Context) ([]Comment, error) {
			resp, err := s.client.CommentThreads(ctx, videoID)
			if err != nil {
				if errors.Is(err, ErrCommentsDisabled) {
					return []Comment{}, nil
				}
				return nil, err
			}
			return shapeComments(resp), nil
		})
}

// Trending returns the region-wide popular chart.
func (s *Service) Trending(ctx context.Context) ([]Video, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	videos, err := cache.GetOrCompute(ctx, s.cache, cache.NamespaceTrending, "trends", s.ttl.Trending,
		func(ctx context.Context) ([]Video, error) {
			resp, err := s.client.Trending(ctx)
			if err != nil {
				return nil, err
			}
			return shapeVideos(resp), nil
		})
	if err != nil {
		return nil, err
	}
	return filter.Keep(ctx, s.filter, videos)
}

// CategoriesWithVideos composes the category list with each eligible
// category's popular videos, cached as one aggregate on top of the
// per-category caches.
func (s *Service) CategoriesWithVideos(ctx context.Context) ([]CategoryWithVideos, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	data, err := cache.GetOrCompute(ctx, s.cache, cache.NamespaceCategoriesWithVideo, "all", s.ttl.CategoriesWithVideo,
		func(ctx context.Context) ([]CategoryWithVideos, error) {
			categories, err := s.Categories(ctx)
			if err != nil {
				return nil, err
			}

			aggregate := make([]CategoryWithVideos, 0, len(categories))
			for _, category := range categories {
				if !availableCategoryIDs[category.ID] {
					continue
				}
				videos, err := s.VideoByCategoryID(ctx, category.ID)
				if err != nil {
					return nil, err
				}
				aggregate = append(aggregate, CategoryWithVideos{Category: category, Videos: videos})
			}
			return aggregate, nil
		})
	if err != nil {
		return nil, err
	}

	for i := range data {
		data[i].Videos, err = filter.Keep(ctx, s.filter, data[i].Videos)
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}
