// Package api serves route and score queries over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/safepath/safepath/core"
	"github.com/safepath/safepath/internal/contract"
	"github.com/safepath/safepath/internal/geoexport"
	"github.com/safepath/safepath/schema"
)

const shutdownTimeout = 5 * time.Second

// RouteRequest is the body of POST /api/route. Alpha and Beta override the
// configured coefficients for this request only.
type RouteRequest struct {
	Start *int64   `json:"start" binding:"required"`
	End   *int64   `json:"end" binding:"required"`
	Alpha *float64 `json:"alpha,omitempty"`
	Beta  *float64 `json:"beta,omitempty"`
}

// SegmentsResponse is the body of GET /api/segments.
type SegmentsResponse struct {
	Total    int                      `json:"total"`
	Segments []schema.EnrichedSegment `json:"segments"`
}

type handler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(baseCfg *contract.Config, mgr contract.StoreManager) *gin.Engine {
	h := &handler{baseCfg: baseCfg, mgr: mgr}

	r := gin.New()
	r.Use(gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type"}
	r.Use(cors.New(config))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	apiGroup := r.Group("/api")
	apiGroup.GET("/segments", h.handleSegments)
	apiGroup.GET("/geojson", h.handleGeoJSON)
	apiGroup.POST("/route", h.handleRoute)
	return r
}

// Serve runs the router on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, router http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (h *handler) handleSegments(c *gin.Context) {
	cfg := h.baseCfg.Clone()
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 || limit > contract.MaxResultLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("limit must be between 0 and %d", contract.MaxResultLimit)})
			return
		}
		cfg.ResultLimit = limit
	}

	report, err := core.RunScores(core.WithSuppressHeader(c.Request.Context()), cfg, h.mgr)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SegmentsResponse{
		Total:    report.Total,
		Segments: schema.EnrichSegments(report.Segments),
	})
}

func (h *handler) handleRoute(c *gin.Context) {
	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := h.baseCfg.Clone()
	if req.Alpha != nil {
		cfg.Alpha = *req.Alpha
	}
	if req.Beta != nil {
		cfg.Beta = *req.Beta
	}

	report, _, err := core.RunRoute(core.WithSuppressHeader(c.Request.Context()), cfg, h.mgr, *req.Start, *req.End)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *handler) handleGeoJSON(c *gin.Context) {
	scored, err := core.LoadScoredSegments(c.Request.Context(), h.baseCfg)
	if err != nil {
		writeError(c, err)
		return
	}

	var report *schema.RouteReport
	if c.Query("start") != "" || c.Query("end") != "" {
		start, errStart := strconv.ParseInt(c.Query("start"), 10, 64)
		end, errEnd := strconv.ParseInt(c.Query("end"), 10, 64)
		if errStart != nil || errEnd != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start and end must both be segment ids"})
			return
		}
		r, err := core.SolveRoute(h.baseCfg, scored, start, end)
		if err != nil {
			writeError(c, err)
			return
		}
		report = &r
	}

	data, err := geoexport.BuildFeatureCollection(scored, report).MarshalJSON()
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/geo+json", data)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var (
		notFound   *schema.NodeNotFoundError
		noPath     *schema.NoPathError
		cfgErr     *schema.ConfigurationError
		degenerate *schema.DegenerateFeatureError
		zeroScore  *schema.ZeroSafetyScoreError
	)
	switch {
	case errors.As(err, &notFound), errors.As(err, &noPath):
		return http.StatusNotFound
	case errors.As(err, &cfgErr), errors.As(err, &degenerate), errors.As(err, &zeroScore):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
