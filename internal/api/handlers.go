// Package api provides the HTTP surface over stored tournament data and
// on-demand discovery.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/gotourney/internal/config"
	"github.com/jonesrussell/gotourney/internal/domain"
	"github.com/jonesrussell/gotourney/internal/logger"
	"github.com/jonesrussell/gotourney/internal/pipeline"
	"github.com/jonesrussell/gotourney/internal/storage"
)

const (
	defaultListLimit   = 50
	maxListLimit       = 100
	defaultSearchLimit = 20
	maxSearchLimit     = 50
	discoverLimit      = 20
	minSearchTermLen   = 2
)

// TournamentStore defines the read operations the handlers need.
type TournamentStore interface {
	Ping(ctx context.Context) error
	List(ctx context.Context, filter storage.ListFilter) ([]domain.Tournament, int, error)
	GetByID(ctx context.Context, id int64) (*domain.Tournament, error)
	Search(ctx context.Context, term string, limit int) ([]domain.Tournament, error)
	SportCounts(ctx context.Context) ([]domain.SportCount, error)
	LevelCounts(ctx context.Context) ([]domain.LevelCount, error)
	GetStatistics(ctx context.Context) (*storage.Statistics, error)
	CountBySportLevel(ctx context.Context, sport, level string) (int, *time.Time, error)
	ListBySportLevel(ctx context.Context, sport, level string, limit int) ([]domain.Tournament, error)
}

// Discoverer runs the collection pipeline for one sport/level pair.
type Discoverer interface {
	RunForPair(ctx context.Context, sport, level string) (*pipeline.Result, error)
}

// Response is the envelope every endpoint returns.
type Response struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
	TotalCount *int   `json:"total_count,omitempty"`
	Metadata   any    `json:"metadata,omitempty"`
}

// TournamentSummary is the reduced record shape served by search.
type TournamentSummary struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Sport           string    `json:"sport"`
	Level           string    `json:"level"`
	ConfidenceScore float64   `json:"confidence_score"`
	CreatedAt       time.Time `json:"created_at"`
}

// Handler serves the tournament API.
type Handler struct {
	store      TournamentStore
	discoverer Discoverer
	cfg        config.PipelineConfig
	version    string
	logger     logger.Interface
}

// NewHandler creates the API handler.
func NewHandler(store TournamentStore, discoverer Discoverer, cfg config.PipelineConfig, version string, log logger.Interface) *Handler {
	return &Handler{
		store:      store,
		discoverer: discoverer,
		cfg:        cfg,
		version:    version,
		logger:     log.WithComponent("api"),
	}
}

// Root handles GET /.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "Sports tournament API is running",
		Data: gin.H{
			"version": h.version,
			"endpoints": gin.H{
				"tournaments":      "/api/v1/tournaments",
				"tournament_by_id": "/api/v1/tournaments/:id",
				"search":           "/api/v1/tournaments/search",
				"discover":         "/api/v1/tournaments/discover",
				"sports":           "/api/v1/sports",
				"levels":           "/api/v1/levels",
				"statistics":       "/api/v1/statistics",
			},
		},
	})
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     err.Error(),
			"timestamp": time.Now().UTC(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC(),
	})
}

// ListTournaments handles GET /api/v1/tournaments.
func (h *Handler) ListTournaments(c *gin.Context) {
	skip := parseIntQuery(c, "skip", 0, 0, 1<<30)
	limit := parseIntQuery(c, "limit", defaultListLimit, 1, maxListLimit)
	showPast := c.Query("show_past") == "true"

	filter := storage.ListFilter{
		Sport:  c.Query("sport"),
		Level:  c.Query("level"),
		Limit:  limit,
		Offset: skip,
	}
	if raw := c.Query("min_confidence"); raw != "" {
		minConfidence, err := strconv.ParseFloat(raw, 64)
		if err != nil || minConfidence < 0 || minConfidence > 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "min_confidence must be a number between 0 and 1"})
			return
		}
		filter.MinConfidence = &minConfidence
	}

	tournaments, total, err := h.store.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list tournaments", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve tournaments"})
		return
	}

	if !showPast {
		now := time.Now()
		visible := make([]domain.Tournament, 0, len(tournaments))
		for _, t := range tournaments {
			if includeTournament(t.DateInfo, now) {
				visible = append(visible, t)
			}
		}
		tournaments = visible
	}

	c.JSON(http.StatusOK, Response{
		Success:    true,
		Message:    "Retrieved " + strconv.Itoa(len(tournaments)) + " tournaments",
		Data:       tournaments,
		TotalCount: &total,
	})
}

// SearchTournaments handles GET /api/v1/tournaments/search.
func (h *Handler) SearchTournaments(c *gin.Context) {
	term := c.Query("q")
	if len(term) < minSearchTermLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q must be at least 2 characters"})
		return
	}
	limit := parseIntQuery(c, "limit", defaultSearchLimit, 1, maxSearchLimit)

	tournaments, err := h.store.Search(c.Request.Context(), term, limit)
	if err != nil {
		h.logger.Error("Search failed", "term", term, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	summaries := make([]TournamentSummary, 0, len(tournaments))
	for _, t := range tournaments {
		summaries = append(summaries, TournamentSummary{
			ID:              t.ID,
			Name:            t.Name,
			Sport:           t.Sport,
			Level:           t.Level,
			ConfidenceScore: t.ConfidenceScore,
			CreatedAt:       t.CreatedAt,
		})
	}

	total := len(summaries)
	c.JSON(http.StatusOK, Response{
		Success:    true,
		Message:    "Found " + strconv.Itoa(total) + " tournaments matching '" + term + "'",
		Data:       summaries,
		TotalCount: &total,
	})
}

// GetTournament handles GET /api/v1/tournaments/:id.
func (h *Handler) GetTournament(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be an integer"})
		return
	}

	tournament, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "tournament not found"})
			return
		}
		h.logger.Error("Failed to get tournament", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve tournament"})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "Tournament retrieved successfully",
		Data:    tournament,
	})
}

// ListSports handles GET /api/v1/sports. Configured sports appear even
// with no stored tournaments yet; sports found only in the database are
// appended after them.
func (h *Handler) ListSports(c *gin.Context) {
	counts, err := h.store.SportCounts(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get sport counts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve sports"})
		return
	}

	byName := make(map[string]domain.SportCount, len(counts))
	for _, sc := range counts {
		byName[sc.Sport] = sc
	}

	configured := make(map[string]struct{}, len(h.cfg.Sports))
	sports := make([]domain.SportCount, 0, len(h.cfg.Sports)+len(counts))
	for _, sport := range h.cfg.Sports {
		configured[sport] = struct{}{}
		if sc, ok := byName[sport]; ok {
			sports = append(sports, sc)
		} else {
			sports = append(sports, domain.SportCount{Sport: sport})
		}
	}
	for _, sc := range counts {
		if _, ok := configured[sc.Sport]; !ok {
			sports = append(sports, sc)
		}
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "Retrieved " + strconv.Itoa(len(sports)) + " sports",
		Data:    sports,
	})
}

// ListLevels handles GET /api/v1/levels, merging configured regular and
// local levels with database counts the same way sports are merged.
func (h *Handler) ListLevels(c *gin.Context) {
	counts, err := h.store.LevelCounts(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get level counts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve levels"})
		return
	}

	byName := make(map[string]domain.LevelCount, len(counts))
	for _, lc := range counts {
		byName[lc.Level] = lc
	}

	allLevels := h.cfg.AllLevels()
	configured := make(map[string]struct{}, len(allLevels))
	levels := make([]domain.LevelCount, 0, len(allLevels)+len(counts))
	for _, level := range allLevels {
		configured[level] = struct{}{}
		if lc, ok := byName[level]; ok {
			levels = append(levels, lc)
		} else {
			levels = append(levels, domain.LevelCount{Level: level})
		}
	}
	for _, lc := range counts {
		if _, ok := configured[lc.Level]; !ok {
			levels = append(levels, lc)
		}
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "Retrieved " + strconv.Itoa(len(levels)) + " levels",
		Data:    levels,
	})
}

// GetStatistics handles GET /api/v1/statistics.
func (h *Handler) GetStatistics(c *gin.Context) {
	stats, err := h.store.GetStatistics(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get statistics", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve statistics"})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "Statistics retrieved successfully",
		Data:    stats,
	})
}

// Discover handles POST /api/v1/tournaments/discover. Stored tournaments
// for the pair are served directly; an empty store or force_refresh runs
// the collection pipeline inline.
func (h *Handler) Discover(c *gin.Context) {
	sport := c.Query("sport")
	level := c.Query("level")
	if sport == "" || level == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sport and level are required"})
		return
	}
	forceRefresh := c.Query("force_refresh") == "true"

	ctx := c.Request.Context()

	count, latest, err := h.store.CountBySportLevel(ctx, sport, level)
	if err != nil {
		h.logger.Error("Failed to check existing tournaments", "sport", sport, "level", level, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check existing tournaments"})
		return
	}

	if count > 0 && !forceRefresh {
		tournaments, listErr := h.store.ListBySportLevel(ctx, sport, level, discoverLimit)
		if listErr != nil {
			h.logger.Error("Failed to list tournaments", "sport", sport, "level", level, "error", listErr)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve tournaments"})
			return
		}

		total := len(tournaments)
		c.JSON(http.StatusOK, Response{
			Success:    true,
			Message:    "Found " + strconv.Itoa(total) + " existing tournaments for " + sport + " - " + level,
			Data:       tournaments,
			TotalCount: &total,
			Metadata: gin.H{
				"source":       "database",
				"last_updated": latest,
				"sport":        sport,
				"level":        level,
			},
		})
		return
	}

	result, err := h.discoverer.RunForPair(ctx, sport, level)
	if err != nil {
		h.logger.Warn("Discovery pipeline failed", "sport", sport, "level", level, "error", err)
		c.JSON(http.StatusOK, Response{
			Success: false,
			Message: "Pipeline failed for " + sport + " - " + level + ": " + err.Error(),
			Data:    []domain.Tournament{},
			Metadata: gin.H{
				"source": "pipeline",
				"sport":  sport,
				"level":  level,
				"error":  err.Error(),
			},
		})
		return
	}

	tournaments, listErr := h.store.ListBySportLevel(ctx, sport, level, discoverLimit)
	if listErr != nil {
		h.logger.Error("Failed to list tournaments after pipeline", "sport", sport, "level", level, "error", listErr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve tournaments"})
		return
	}

	total := len(tournaments)
	c.JSON(http.StatusOK, Response{
		Success:    true,
		Message:    "Pipeline completed, found " + strconv.Itoa(total) + " tournaments for " + sport + " - " + level,
		Data:       tournaments,
		TotalCount: &total,
		Metadata: gin.H{
			"source":         "pipeline",
			"pipeline_stats": result.RunStats,
			"insert_stats":   result.InsertStats,
			"sport":          sport,
			"level":          level,
			"generated_at":   time.Now().UTC(),
		},
	})
}

// parseIntQuery reads an integer query parameter, clamping it into
// [minVal, maxVal] and falling back to def when absent or malformed.
func parseIntQuery(c *gin.Context, name string, def, minVal, maxVal int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}
