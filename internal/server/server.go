// Package server exposes the pricer over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Higerald/OptionPricing/internal/config"
	"github.com/Higerald/OptionPricing/internal/engine"
	"github.com/Higerald/OptionPricing/internal/metrics"
	"github.com/Higerald/OptionPricing/internal/model"
	"github.com/Higerald/OptionPricing/internal/output"
)

// PriceRequest is the body of POST /api/v1/price. Absent fields keep the
// configured defaults.
type PriceRequest struct {
	OptionType string  `json:"option_type"`
	Strike     float64 `json:"strike"`
	Spot       float64 `json:"spot"`
	Volatility float64 `json:"volatility"`
	Rate       float64 `json:"rate"`
	Expiry     float64 `json:"expiry"`
	Paths      int     `json:"paths"`
	Generator  string  `json:"generator"`
	Sampler    string  `json:"sampler"`
	Seed       uint64  `json:"seed"`
}

// PriceResponse is the result of one request.
type PriceResponse struct {
	ID            string   `json:"id"`
	Price         float64  `json:"price"`
	StandardError float64  `json:"standard_error"`
	Paths         int      `json:"paths"`
	Seed          uint64   `json:"seed"`
	Generator     string   `json:"generator"`
	Sampler       string   `json:"sampler"`
	AnalyticPrice *float64 `json:"analytic_price,omitempty"`
}

// Server handles pricing requests. Every request draws from its own sampler.
type Server struct {
	cfg     *config.Config
	metrics *metrics.Metrics
	router  *gin.Engine
}

// New builds the router for cfg. m may be nil.
func New(cfg *config.Config, m *metrics.Metrics) *Server {
	s := &Server{cfg: cfg, metrics: m}

	router := gin.New()
	router.Use(gin.Recovery(), s.logRequests)
	s.RegisterRoutes(router)
	s.router = router
	return s
}

// Handler returns the underlying gin engine.
func (s *Server) Handler() http.Handler {
	return s.router
}

// RegisterRoutes binds the handlers to router.
func (s *Server) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", s.Health)
	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
	api := router.Group("/api/v1")
	{
		api.POST("/price", s.Price)
	}
}

// Run serves on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		output.Logger.Info("HTTP server listening", "addr", s.cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		output.Logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Health reports liveness.
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) defaultRequest() PriceRequest {
	o := s.cfg.Option
	return PriceRequest{
		OptionType: o.Type,
		Strike:     o.Strike,
		Spot:       o.Spot,
		Volatility: o.Volatility,
		Rate:       o.Rate,
		Expiry:     o.Expiry,
		Paths:      s.cfg.Simulation.Paths,
		Generator:  s.cfg.Simulation.Generator,
		Sampler:    s.cfg.Simulation.Sampler,
		Seed:       s.cfg.Simulation.Seed,
	}
}

// Price runs one simulation.
func (s *Server) Price(c *gin.Context) {
	req := s.defaultRequest()
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.Paths > s.cfg.Server.MaxPaths {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("%v: paths %d exceeds limit %d", model.ErrInvalidArgument, req.Paths, s.cfg.Server.MaxPaths),
		})
		return
	}

	rec, _, err := engine.Execute(engine.Job{
		OptionType: req.OptionType,
		Strike:     req.Strike,
		Parameters: model.Parameters{
			Spot:       req.Spot,
			Volatility: req.Volatility,
			Rate:       req.Rate,
			Expiry:     req.Expiry,
		},
		Generator: req.Generator,
		Sampler:   req.Sampler,
		Seed:      req.Seed,
		Paths:     req.Paths,
		Analytic:  true,
	})
	if s.metrics != nil {
		s.metrics.Observe(rec)
	}
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrInvalidArgument) {
			status = http.StatusBadRequest
		}
		output.Logger.Warn("Pricing request failed", "id", rec.ID, "status", status, "error", err)
		c.JSON(status, gin.H{"id": rec.ID, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, PriceResponse{
		ID:            rec.ID,
		Price:         rec.Price,
		StandardError: rec.StandardError,
		Paths:         rec.Paths,
		Seed:          rec.Seed,
		Generator:     rec.Generator,
		Sampler:       rec.Sampler,
		AnalyticPrice: rec.AnalyticPrice,
	})
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	output.Logger.Debug("HTTP request",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"status", c.Writer.Status(),
		"duration", time.Since(start),
	)
}
