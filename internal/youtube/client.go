package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gotube/internal/config"
	"gotube/internal/keypool"
	"gotube/internal/model"
	"gotube/internal/quota"
)

// apiError is an upstream rejection with enough detail to classify it.
type apiError struct {
	Status  int
	Reason  string
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("upstream returned %d (%s): %s", e.Status, e.Reason, e.Message)
}

// Client issues upstream calls through the credential pool. Every call is
// routed through the selected credential's bound proxy, charged to the
// credential and the quota ledger on any outcome, and retried on the next
// credential when the failure is recoverable.
type Client struct {
	baseURL string
	pool    *keypool.Pool
	ledger  *quota.Ledger
	region  string
	lang    string
	timeout time.Duration
	logger  *slog.Logger
}

// newClientWithURL is the internal constructor that allows a custom upstream
// URL, making the client testable against httptest servers.
func newClientWithURL(pool *keypool.Pool, ledger *quota.Ledger, cfg config.UpstreamConfig, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		pool:    pool,
		ledger:  ledger,
		region:  cfg.Region,
		lang:    cfg.Language,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		logger:  logger.With("component", "executor"),
	}
}

// NewClient creates a client against the real YouTube Data API.
func NewClient(pool *keypool.Pool, ledger *quota.Ledger, cfg config.UpstreamConfig, logger *slog.Logger) *Client {
	return newClientWithURL(pool, ledger, cfg, defaultBaseURL, logger)
}

// NewClientWithBaseURL creates a client pointed at a non-default upstream,
// such as an API mirror or a test double.
func NewClientWithBaseURL(pool *keypool.Pool, ledger *quota.Ledger, cfg config.UpstreamConfig, baseURL string, logger *slog.Logger) *Client {
	return newClientWithURL(pool, ledger, cfg, baseURL, logger)
}

// execute runs the rotation loop: select a credential, run the call through
// it, charge the cost win or lose, and decide whether the failure is worth a
// fresh credential. The loop is bounded by pool size so an exhausted pool
// terminates with ErrNoAvailableCredential instead of spinning.
func (c *Client) execute(ctx context.Context, cost int, call func(ctx context.Context, cred *model.Credential) error) error {
	size, err := c.pool.Size(ctx)
	if err != nil {
		return fmt.Errorf("failed to size credential pool: %w", err)
	}

	for attempt := 0; attempt < size; attempt++ {
		cred, err := c.pool.GetNext(ctx)
		if err != nil {
			return err
		}

		callErr := call(ctx, cred)

		// Upstream bills the cost whether the call succeeded or not.
		if err := c.pool.RecordUsage(ctx, cred, cost); err != nil {
			c.logger.Error("Failed to record credential usage", "credential_id", cred.ID, "error", err)
		}
		if err := c.ledger.AddUsage(ctx, cost); err != nil {
			c.logger.Error("Failed to record ledger usage", "error", err)
		}

		if callErr == nil {
			return nil
		}

		var upstreamErr *apiError
		if !errors.As(callErr, &upstreamErr) {
			// Transport-level failure: timeout, dead proxy, malformed body.
			return fmt.Errorf("%w: %v", ErrBadRequest, callErr)
		}

		class := keypool.Classify(upstreamErr.Status, upstreamErr.Reason)
		switch {
		case keypool.IsBenignReason(upstreamErr.Reason):
			// Resource-specific condition; rotating would burn quota for
			// the same answer.
			return fmt.Errorf("%w: %s", ErrCommentsDisabled, upstreamErr.Message)
		case class.Recoverable():
			c.logger.Warn("Rotating credential after recoverable failure",
				"credential_id", cred.ID, "class", class.String(), "reason", upstreamErr.Reason)
			if err := c.pool.MarkFailed(ctx, cred, upstreamErr.Reason); err != nil {
				c.logger.Error("Failed to mark credential", "credential_id", cred.ID, "error", err)
			}
			continue
		case class == keypool.ClassNotFound:
			return fmt.Errorf("%w: %s", ErrNotFound, upstreamErr.Message)
		default:
			return fmt.Errorf("%w: %s", ErrBadRequest, upstreamErr.Message)
		}
	}

	return keypool.ErrNoAvailableCredential
}

// get performs one upstream GET with the credential's key and bound proxy,
// decoding the JSON response into out.
func (c *Client) get(ctx context.Context, cred *model.Credential, ep endpointSpec, params url.Values, out any) error {
	q := url.Values{}
	for k, vs := range params {
		q[k] = vs
	}
	q.Set("key", cred.Key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+ep.path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", ep.name, err)
	}

	httpClient := &http.Client{Timeout: c.timeout}
	if proxy := cred.BoundProxy(); proxy != nil {
		httpClient.Transport = &http.Transport{Proxy: http.ProxyURL(proxy.URL())}
	} else {
		c.logger.Warn("Credential has no bound proxy, calling upstream directly", "credential_id", cred.ID)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", ep.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return parseAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", ep.name, err)
	}
	return nil
}

// parseAPIError extracts the structured upstream error from a non-200
// response. The first error entry's reason drives classification.
func parseAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	apiErr := &apiError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Code != 0 {
		apiErr.Status = parsed.Error.Code
		apiErr.Message = parsed.Error.Message
		if len(parsed.Error.Errors) > 0 {
			apiErr.Reason = parsed.Error.Errors[0].Reason
		}
	}
	return apiErr
}

// Search runs one search.list call and returns the raw response.
func (c *Client) Search(ctx context.Context, query string) (searchListResponse, error) {
	var result searchListResponse
	err := c.execute(ctx, epSearch.cost, func(ctx context.Context, cred *model.Credential) error {
		return c.get(ctx, cred, epSearch, url.Values{
			"part":              {"snippet"},
			"maxResults":        {"50"},
			"type":              {"video"},
			"regionCode":        {c.region},
			"relevanceLanguage": {c.lang},
			"safeSearch":        {"strict"},
			"videoEmbeddable":   {"true"},
			"videoSyndicated":   {"true"},
			"q":                 {query},
		}, &result)
	})
	return result, err
}

// Categories fetches the category list for the configured region.
func (c *Client) Categories(ctx context.Context) (videoCategoriesResponse, error) {
	var result videoCategoriesResponse
	err := c.execute(ctx, epCategories.cost, func(ctx context.Context, cred *model.Credential) error {
		return c.get(ctx, cred, epCategories, url.Values{
			"part":       {"snippet"},
			"regionCode": {c.region},
			"hl":         {c.hl()},
		}, &result)
	})
	return result, err
}

// VideosByIDs fetches full metadata for up to 50 videos in one batched call.
func (c *Client) VideosByIDs(ctx context.Context, ids []string) (videoListResponse, error) {
	var result videoListResponse
	err := c.execute(ctx, epVideos.cost, func(ctx context.Context, cred *model.Credential) error {
		return c.get(ctx, cred, epVideos, url.Values{
			"part": {"snippet,contentDetails,statistics"},
			"id":   {strings.Join(ids, ",")},
			"hl":   {c.hl()},
		}, &result)
	})
	return result, err
}

// VideosByCategory fetches the most popular videos of one category.
func (c *Client) VideosByCategory(ctx context.Context, categoryID string) (videoListResponse, error) {
	var result videoListResponse
	err := c.execute(ctx, epVideos.cost, func(ctx context.Context, cred *model.Credential) error {
		return c.get(ctx, cred, epVideos, url.Values{
			"part":            {"snippet,contentDetails,statistics"},
			"chart":           {"mostPopular"},
			"videoCategoryId": {categoryID},
			"maxResults":      {"50"},
			"regionCode":      {c.region},
			"hl":              {c.hl()},
		}, &result)
	})
	return result, err
}

// Trending fetches the region-wide most popular chart.
func (c *Client) Trending(ctx context.Context) (videoListResponse, error) {
	var result videoListResponse
	err := c.execute(ctx, epVideos.cost, func(ctx context.Context, cred *model.Credential) error {
		return c.get(ctx, cred, epVideos, url.Values{
			"part":       {"snippet,contentDetails,statistics"},
			"chart":      {"mostPopular"},
			"maxResults": {"50"},
			"regionCode": {c.region},
			"hl":         {c.hl()},
		}, &result)
	})
	return result, err
}

// ChannelUploads resolves a channel's uploads playlist and fetches its items.
// Both hops run under one credential; the combined cost is charged once per
// attempt, success or failure, because upstream bills each hop it serves.
func (c *Client) ChannelUploads(ctx context.Context, channelID string) (playlistItemListResponse, error) {
	var result playlistItemListResponse
	cost := epChannels.cost + epPlaylistItems.cost
	err := c.execute(ctx, cost, func(ctx context.Context, cred *model.Credential) error {
		var channels channelListResponse
		if err := c.get(ctx, cred, epChannels, url.Values{
			"part": {"contentDetails"},
			"id":   {channelID},
		}, &channels); err != nil {
			return err
		}

		uploads := ""
		for _, item := range channels.Items {
			if item.ContentDetails.RelatedPlaylists.Uploads != "" {
				uploads = item.ContentDetails.RelatedPlaylists.Uploads
				break
			}
		}
		if uploads == "" {
			return &apiError{Status: http.StatusNotFound, Message: "uploads playlist not found"}
		}

		return c.get(ctx, cred, epPlaylistItems, url.Values{
			"part":       {"snippet"},
			"maxResults": {"50"},
			"playlistId": {uploads},
		}, &result)
	})
	return result, err
}

// PlaylistItems fetches the items of one playlist.
func (c *Client) PlaylistItems(ctx context.Context, playlistID string) (playlistItemListResponse, error) {
	var result playlistItemListResponse
	err := c.execute(ctx, epPlaylistItems.cost, func(ctx context.Context, cred *model.Credential) error {
		return c.get(ctx, cred, epPlaylistItems, url.Values{
			"part":       {"snippet,contentDetails"},
			"maxResults": {"50"},
			"playlistId": {playlistID},
		}, &result)
	})
	return result, err
}

// CommentThreads fetches a video's top-level comments.
func (c *Client) CommentThreads(ctx context.Context, videoID string) (commentThreadListResponse, error) {
	var result commentThreadListResponse
	err := c.execute(ctx, epCommentThreads.cost, func(ctx context.Context, cred *model.Credential) error {
		return c.get(ctx, cred, epCommentThreads, url.Values{
			"part":       {"snippet"},
			"textFormat": {"plainText"},
			"videoId":    {videoID},
			"maxResults": {"100"},
		}, &result)
	})
	return result, err
}

// hl renders the upstream interface-language parameter, e.g. "ru_RU".
func (c *Client) hl() string {
	return c.lang + "_" + c.region
}
