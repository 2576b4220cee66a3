package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gotube/internal/cache"
	"gotube/internal/config"
	"gotube/internal/db"
	"gotube/internal/filter"
	"gotube/internal/keypool"
	"gotube/internal/logger"
	"gotube/internal/model"
	"gotube/internal/quota"
	"gotube/internal/youtube"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupRouter builds the full HTTP surface against an in-memory database and
// a stubbed upstream.
func setupRouter(t *testing.T, enabled bool, upstream http.HandlerFunc) (*gin.Engine, *gorm.DB) {
	service, err := db.NewService(config.DatabaseConfig{Type: "sqlite", DSN: "file::memory:"})
	if err != nil {
		t.Fatalf("Failed to create test db service: %v", err)
	}

	upstreamServer := httptest.NewServer(upstream)
	t.Cleanup(upstreamServer.Close)

	log := logger.Discard()
	pool := keypool.NewPool(service, log)
	ledger := quota.NewLedger(service, log)
	client := youtube.NewClientWithBaseURL(pool, ledger, config.UpstreamConfig{Region: "RU", Language: "ru", TimeoutSeconds: 5}, upstreamServer.URL, log)
	cacheLayer := cache.New("", log)
	t.Cleanup(cacheLayer.Close)
	contentFilter := filter.New(service, "", log)

	avail := youtube.FlagAvailability(enabled)
	gateway := youtube.NewService(client, cacheLayer, contentFilter, avail, config.CacheDays{
		Search: 1, Categories: 1, Video: 1, CategoryVideos: 1, ChannelVideos: 1,
		PlaylistVideos: 1, Comments: 1, Trending: 1, CategoriesWithVideo: 1,
	}, log)

	router := gin.New()
	SetupRoutes(router, NewHandler(gateway, ledger, log), avail)
	return router, service.GetDB()
}

func doRequest(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func stubVideos() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[{"id":"v1","snippet":{"title":"hello","channelId":"c1"},"contentDetails":{"duration":"PT1M"},"statistics":{"viewCount":"10"}}]}`)
	}
}

func TestDisabledServiceReturns503(t *testing.T) {
	router, _ := setupRouter(t, false, stubVideos())

	for _, path := range []string{
		"/youtube/api/search?q=cats",
		"/youtube/api/trends",
		"/youtube/api/categories",
		"/youtube/api/video-by-id?videoId=v1",
	} {
		w := doRequest(router, path)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, "path %s", path)
	}

	// Quota reporting stays reachable while the gateway is off.
	w := doRequest(router, "/quota-usage/today")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMissingQueryParam(t *testing.T) {
	router, _ := setupRouter(t, true, stubVideos())

	w := doRequest(router, "/youtube/api/search")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, "/youtube/api/video-by-id")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, "/youtube/api/videos-by-ids?videoIds=,,")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrendsHappyPath(t *testing.T) {
	router, gdb := setupRouter(t, true, stubVideos())
	gdb.Create(&model.Credential{Key: "test-key"})

	w := doRequest(router, "/youtube/api/trends")
	assert.Equal(t, http.StatusOK, w.Code)

	var videos []youtube.Video
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &videos))
	assert.Len(t, videos, 1)
	assert.Equal(t, "v1", videos[0].ID)
}

func TestExhaustedPoolReturns503(t *testing.T) {
	router, _ := setupRouter(t, true, stubVideos())
	// No credentials at all.

	w := doRequest(router, "/youtube/api/trends")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestNotFoundMapsTo404(t *testing.T) {
	router, gdb := setupRouter(t, true, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"code":404,"message":"missing","errors":[{"reason":"playlistNotFound"}]}}`)
	})
	gdb.Create(&model.Credential{Key: "test-key"})

	w := doRequest(router, "/youtube/api/video-by-playlist-id?playlistId=nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuotaEndpoints(t *testing.T) {
	router, _ := setupRouter(t, true, stubVideos())

	w := doRequest(router, "/quota-usage/today")
	assert.Equal(t, http.StatusOK, w.Code)
	var usage model.QuotaUsage
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &usage))
	assert.Equal(t, 0, usage.CurrentUsage)

	w = doRequest(router, "/quota-usage/by-period?startDate=2026-01-01&endDate=2026-01-31")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, "/quota-usage/by-period?startDate=bogus&endDate=2026-01-31")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, "/quota-usage/by-period?startDate=2026-01-01")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatisticEndpoint(t *testing.T) {
	router, gdb := setupRouter(t, true, stubVideos())
	gdb.Create(&model.Credential{Key: "key1", DailyLimit: 10000})

	w := doRequest(router, "/apikeys/statistic")
	assert.Equal(t, http.StatusOK, w.Code)

	var stat quota.Statistic
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &stat))
	assert.Equal(t, int64(10000), stat.Total)
	assert.Equal(t, 0, stat.Today)
}
