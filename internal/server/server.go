// Package server exposes the analysis pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vigil-app/vigil/internal/classify"
	"github.com/vigil-app/vigil/internal/config"
	"github.com/vigil-app/vigil/internal/oracle"
	"github.com/vigil-app/vigil/internal/pipeline"
)

// Response is the uniform API envelope
type Response struct {
	Code    int    `json:"code"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// AnalyzeRequest is the body of POST /api/analyze
type AnalyzeRequest struct {
	URL string `json:"url" binding:"required"`
}

// AnalysisView is what the API returns for a completed analysis
type AnalysisView struct {
	SessionDir string           `json:"session_dir"`
	Channel    classify.Channel `json:"channel"`
	Title      string           `json:"title,omitempty"`
	RiskLevel  oracle.RiskLevel `json:"risk_level"`
	Summary    string           `json:"summary"`
	Details    map[string]any   `json:"details,omitempty"`
}

// Server hosts the HTTP API
type Server struct {
	cfg  *config.Config
	pipe *pipeline.Pipeline
}

// New creates a Server around an assembled pipeline
func New(cfg *config.Config, pipe *pipeline.Pipeline) *Server {
	return &Server{cfg: cfg, pipe: pipe}
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(loggingMiddleware())

	r.MaxMultipartMemory = int64(s.cfg.Server.MaxUploadMB) << 20

	api := r.Group("/api")
	if s.cfg.Server.APIKey != "" {
		api.Use(authMiddleware(s.cfg.Server.APIKey))
	}

	api.GET("/health", s.handleHealth)
	api.POST("/analyze", s.handleAnalyze)
	api.POST("/analyze/upload", s.handleUpload)

	return r
}

// Run starts the HTTP server and blocks until the context is cancelled
func (s *Server) Run(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler: s.router(),
		// Analyses run synchronously inside the request; downloads and
		// oracle calls dominate, so the write timeout is generous
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server listening", "port", s.cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Code: 0, Data: gin.H{"status": "ok"}})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Code: 1, Message: "url is required"})
		return
	}

	res, err := s.pipe.AnalyzeURL(c.Request.Context(), req.URL)
	s.respond(c, res, err)
}

func (s *Server) handleUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Code: 1, Message: "file is required"})
		return
	}

	// Classify before saving so junk uploads are rejected cheaply
	if _, err := classify.File(file.Filename); err != nil {
		c.JSON(http.StatusUnsupportedMediaType, Response{Code: 1, Message: err.Error()})
		return
	}

	tmpDir, err := os.MkdirTemp("", "vigil-upload-*")
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Code: 1, Message: "could not store upload"})
		return
	}
	defer os.RemoveAll(tmpDir)

	dest := filepath.Join(tmpDir, filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, dest); err != nil {
		c.JSON(http.StatusInternalServerError, Response{Code: 1, Message: "could not store upload"})
		return
	}

	res, err := s.pipe.AnalyzeFile(c.Request.Context(), dest)
	s.respond(c, res, err)
}

// respond maps pipeline outcomes onto HTTP statuses. An oracle failure
// with a persisted session still returns the (Error) report, with a 502
// so clients can tell the difference.
func (s *Server) respond(c *gin.Context, res *pipeline.Result, err error) {
	if err != nil {
		var ute *classify.UnsupportedTypeError
		var ae *pipeline.AcquisitionError
		var fe *oracle.FailureError

		switch {
		case errors.As(err, &ute):
			c.JSON(http.StatusUnsupportedMediaType, Response{Code: 1, Message: err.Error()})
		case errors.As(err, &ae):
			c.JSON(http.StatusBadGateway, Response{Code: 1, Message: err.Error()})
		case errors.As(err, &fe):
			c.JSON(http.StatusBadGateway, Response{Code: 1, Data: view(res), Message: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, Response{Code: 1, Message: err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, Response{Code: 0, Data: view(res)})
}

func view(res *pipeline.Result) *AnalysisView {
	if res == nil {
		return nil
	}
	return &AnalysisView{
		SessionDir: res.SessionDir,
		Channel:    res.Channel,
		Title:      res.Title,
		RiskLevel:  res.Report.RiskLevel,
		Summary:    res.Report.Summary,
		Details:    res.Report.Details,
	}
}

func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func authMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-API-Key") != apiKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Code: 1, Message: "invalid API key"})
			return
		}
		c.Next()
	}
}
