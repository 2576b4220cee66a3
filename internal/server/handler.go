package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"gotube/internal/keypool"
	"gotube/internal/quota"
	"gotube/internal/youtube"

	"github.com/gin-gonic/gin"
)

// Handler exposes the gateway and the quota reporting surface over HTTP.
type Handler struct {
	gateway *youtube.Service
	ledger  *quota.Ledger
	logger  *slog.Logger
}

func NewHandler(gateway *youtube.Service, ledger *quota.Ledger, logger *slog.Logger) *Handler {
	return &Handler{
		gateway: gateway,
		ledger:  ledger,
		logger:  logger.With("component", "server"),
	}
}

// respondError translates the gateway error taxonomy to HTTP statuses.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, youtube.ErrServiceDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service is disabled"})
	case errors.Is(err, keypool.ErrNoAvailableCredential):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No available credential"})
	case errors.Is(err, youtube.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, youtube.ErrBadRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request"})
	default:
		h.logger.Error("Request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

func requireQuery(c *gin.Context, name string) (string, bool) {
	value := strings.TrimSpace(c.Query(name))
	if value == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required query parameter: " + name})
		return "", false
	}
	return value, true
}

func (h *Handler) SearchHandler(c *gin.Context) {
	q, ok := requireQuery(c, "q")
	if !ok {
		return
	}
	videos, err := h.gateway.Search(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, videos)
}

func (h *Handler) CategoriesHandler(c *gin.Context) {
	categories, err := h.gateway.Categories(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *Handler) VideoByIDHandler(c *gin.Context) {
	videoID, ok := requireQuery(c, "videoId")
	if !ok {
		return
	}
	data, err := h.gateway.VideoByID(c.Request.Context(), videoID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *Handler) VideosByIDsHandler(c *gin.Context) {
	raw, ok := requireQuery(c, "videoIds")
	if !ok {
		return
	}
	ids := make([]string, 0)
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "videoIds cannot be empty"})
		return
	}
	videos, err := h.gateway.VideoByIDs(c.Request.Context(), ids)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, videos)
}

func (h *Handler) VideoByCategoryIDHandler(c *gin.Context) {
	categoryID, ok := requireQuery(c, "categoryId")
	if !ok {
		return
	}
	videos, err := h.gateway.VideoByCategoryID(c.Request.Context(), categoryID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, videos)
}

func (h *Handler) VideoByChannelIDHandler(c *gin.Context) {
	channelID, ok := requireQuery(c, "channelId")
	if !ok {
		return
	}
	videos, err := h.gateway.VideoByChannelID(c.Request.Context(), channelID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, videos)
}

func (h *Handler) VideoByPlaylistIDHandler(c *gin.Context) {
	playlistID, ok := requireQuery(c, "playlistId")
	if !ok {
		return
	}
	videos, err := h.gateway.VideoByPlaylistID(c.Request.Context(), playlistID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, videos)
}

func (h *Handler) CommentsHandler(c *gin.Context) {
	videoID, ok := requireQuery(c, "videoId")
	if !ok {
		return
	}
	comments, err := h.gateway.Comments(c.Request.Context(), videoID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *Handler) TrendsHandler(c *gin.Context) {
	videos, err := h.gateway.Trending(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, videos)
}

func (h *Handler) CategoriesWithVideosHandler(c *gin.Context) {
	data, err := h.gateway.CategoriesWithVideos(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *Handler) QuotaTodayHandler(c *gin.Context) {
	usage, err := h.ledger.TodayUsage(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usage)
}

func (h *Handler) QuotaByPeriodHandler(c *gin.Context) {
	startRaw, ok := requireQuery(c, "startDate")
	if !ok {
		return
	}
	endRaw, ok := requireQuery(c, "endDate")
	if !ok {
		return
	}
	start, err := time.Parse("2006-01-02", startRaw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate, expected YYYY-MM-DD"})
		return
	}
	end, err := time.Parse("2006-01-02", endRaw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate, expected YYYY-MM-DD"})
		return
	}
	usage, err := h.ledger.UsageForRange(c.Request.Context(), start, end)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usage)
}

func (h *Handler) StatisticHandler(c *gin.Context) {
	stat, err := h.ledger.Statistic(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stat)
}
