// Package dashboard exposes the stored postings and pipeline controls
// over HTTP.
package dashboard

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhilashdr/jobscout/internal/job"
	"github.com/abhilashdr/jobscout/internal/match"
	"github.com/abhilashdr/jobscout/internal/pipeline"
	"github.com/abhilashdr/jobscout/internal/store"
)

const defaultJobsLimit = 50

// Runner triggers pipeline runs on demand.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Report, error)
	Running() bool
}

// Explainer breaks a posting's relevance score into its factors.
type Explainer interface {
	Explain(p job.Posting) match.Breakdown
}

// Storage is the slice of the store the dashboard needs.
type Storage interface {
	Query(ctx context.Context, f store.Filters, limit int) ([]job.Posting, error)
	Stats(ctx context.Context) (store.Stats, error)
	MarkApplied(ctx context.Context, id int64, resumeVersion string) error
	Cleanup(ctx context.Context, maxScore float64, minAge time.Duration) (int64, error)
}

// Server serves the dashboard API.
type Server struct {
	addr      string
	storage   Storage
	runner    Runner
	explainer Explainer
	logger    *zap.Logger
}

func NewServer(addr string, storage Storage, runner Runner, explainer Explainer, logger *zap.Logger) *Server {
	return &Server{addr: addr, storage: storage, runner: runner, explainer: explainer, logger: logger}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.health())
	r.GET("/api/jobs", s.listJobs())
	r.GET("/api/stats", s.stats())
	r.POST("/api/run", s.triggerRun())
	r.POST("/api/jobs/:id/applied", s.markApplied())
	r.POST("/api/score", s.explainScore())
	r.POST("/api/cleanup", s.cleanup())

	return r
}

// Run serves until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", zap.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func erro(err error) gin.H {
	return gin.H{"error": err.Error()}
}

func (s *Server) health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func (s *Server) listJobs() gin.HandlerFunc {
	return func(c *gin.Context) {
		var f store.Filters

		if raw := c.Query("min_score"); raw != "" {
			minScore, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "min_score must be a number"})
				return
			}
			f.MinScore = minScore
		}
		f.Location = c.Query("location")
		f.NotApplied = c.Query("pending") == "true"

		limit := defaultJobsLimit
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			limit = n
		}

		jobs, err := s.storage.Query(c.Request.Context(), f, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, erro(err))
			return
		}
		if len(jobs) == 0 {
			c.JSON(http.StatusOK, make([]job.Posting, 0))
			return
		}

		c.JSON(http.StatusOK, jobs)
	}
}

func (s *Server) stats() gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := s.storage.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, erro(err))
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}

// triggerRun kicks off a pipeline run in the background. A second trigger
// while one is active answers 409.
func (s *Server) triggerRun() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.runner.Running() {
			c.JSON(http.StatusConflict, erro(pipeline.ErrAlreadyRunning))
			return
		}

		go func() {
			report, err := s.runner.Run(context.WithoutCancel(c.Request.Context()))
			if errors.Is(err, pipeline.ErrAlreadyRunning) {
				s.logger.Warn("triggered run skipped", zap.Error(err))
				return
			}
			if err != nil {
				s.logger.Error("triggered run failed", zap.Error(err))
				return
			}
			s.logger.Info("triggered run finished",
				zap.Int("saved", report.Saved),
				zap.Int("high_priority", report.HighPriority),
			)
		}()

		c.JSON(http.StatusAccepted, gin.H{"status": "run started"})
	}
}

func (s *Server) markApplied() gin.HandlerFunc {
	type requestParams struct {
		ResumeVersion string `json:"resume_version"`
	}

	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "id must be an integer"})
			return
		}

		var req requestParams
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, erro(err))
				return
			}
		}

		if err := s.storage.MarkApplied(c.Request.Context(), id, req.ResumeVersion); err != nil {
			c.JSON(http.StatusNotFound, erro(err))
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "applied"})
	}
}

// explainScore scores a posting supplied in the request body and returns the
// per-factor breakdown, so a candidate posting can be checked without
// persisting it.
func (s *Server) explainScore() gin.HandlerFunc {
	return func(c *gin.Context) {
		var p job.Posting
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, erro(err))
			return
		}
		if !p.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title and company are required"})
			return
		}

		c.JSON(http.StatusOK, s.explainer.Explain(p))
	}
}

func (s *Server) cleanup() gin.HandlerFunc {
	type requestParams struct {
		MaxScore   float64 `json:"max_score"`
		MinAgeDays int     `json:"min_age_days"`
	}

	return func(c *gin.Context) {
		var req requestParams
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, erro(err))
				return
			}
		}

		removed, err := s.storage.Cleanup(c.Request.Context(),
			req.MaxScore, time.Duration(req.MinAgeDays)*24*time.Hour)
		if err != nil {
			c.JSON(http.StatusInternalServerError, erro(err))
			return
		}

		c.JSON(http.StatusOK, gin.H{"removed": removed})
	}
}
