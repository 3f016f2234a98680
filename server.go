package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	dnspkg "dnsprop/dns"
)

// Resolver answers raw DNS-JSON lookups for the dns-lookup endpoint.
type Resolver interface {
	Resolve(ctx context.Context, domain string, rt dnspkg.RecordType) (*dnspkg.JSONResponse, error)
}

// Server is the HTTP API.
type Server struct {
	Router *gin.Engine

	cfg      *dnspkg.Config
	prober   *dnspkg.Prober
	resolver Resolver
	sessions *sessionStore
	logger   *zap.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

type checkRequest struct {
	Domain string `form:"domain" json:"domain" binding:"max=2048"`
	Type   string `form:"type" json:"type" binding:"max=16"`
}

type checkResponse struct {
	*dnspkg.CheckSummary
	StatusLabel string `json:"status_label"`
}

func newCheckResponse(s *dnspkg.CheckSummary) checkResponse {
	return checkResponse{CheckSummary: s, StatusLabel: s.StatusLabel()}
}

// buildServer wires the configured lookup backend and a DoH resolver into a
// Server. The returned cleanup closes both.
func buildServer(cfg *dnspkg.Config, logger *zap.Logger) (*Server, func(), error) {
	timeout, err := cfg.ProbeTimeout()
	if err != nil {
		return nil, nil, err
	}
	lookuper, err := dnspkg.NewLookuper(cfg.Lookup, timeout)
	if err != nil {
		return nil, nil, err
	}
	providers, err := dnspkg.ParseDoHProviders(cfg.Lookup.DoHProviders)
	if err != nil {
		closeLookuper(lookuper)
		return nil, nil, err
	}
	resolver := dnspkg.NewDoHLookuper(providers...)

	srv, err := NewServer(cfg, lookuper, resolver, logger)
	if err != nil {
		closeLookuper(lookuper)
		resolver.Close()
		return nil, nil, err
	}
	return srv, func() {
		closeLookuper(lookuper)
		resolver.Close()
	}, nil
}

func NewServer(cfg *dnspkg.Config, lookuper dnspkg.Lookuper, resolver Resolver, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts, err := cfg.ProberOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts,
		dnspkg.WithLogger(logger),
		dnspkg.WithMetrics(dnspkg.NewCollector(registry)),
	)

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(requestLogger(logger))
	router.Use(gin.Recovery())

	s := &Server{
		Router:   router,
		cfg:      cfg,
		prober:   dnspkg.NewProber(lookuper, opts...),
		resolver: resolver,
		sessions: newSessionStore(cfg.Server.MaxSessions),
		logger:   logger,
	}
	s.setupRoutes(registry)
	return s, nil
}

func (s *Server) setupRoutes(registry *prometheus.Registry) {
	s.Router.GET("/", s.handleUI)
	s.Router.GET("/health", s.handleHealth)
	s.Router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	s.Router.GET("/check", s.handleCheck)
	s.Router.POST("/check", s.handleCheck)
	s.Router.GET("/check/stream", s.handleCheckStream)

	checks := s.Router.Group("/checks")
	{
		checks.GET("/:id", s.handleGetCheck)
		checks.GET("/:id/csv", s.handleCheckCSV)
	}

	s.Router.Any("/api/dns-lookup", s.handleDNSLookup)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Listen,
		Handler: s.Router,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	s.logger.Info("HTTP server started",
		zap.String("addr", s.cfg.Listen),
		zap.Int("vantage_points", len(s.cfg.VantagePoints)),
		zap.String("backend", s.cfg.Lookup.Backend),
	)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	s.logger.Info("Server exited")
	return nil
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		logger.Info("HTTP Request",
			zap.String("client_ip", c.ClientIP()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func (s *Server) handleUI(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(uiHTML))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}

func (s *Server) recordType(t string) (dnspkg.RecordType, error) {
	if t == "" {
		t = s.cfg.Defaults.RecordType
	}
	return dnspkg.ParseRecordType(t)
}

func statusFor(err error) int {
	if errors.Is(err, dnspkg.ErrValidation) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) handleCheck(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	rt, err := s.recordType(req.Type)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	summary, err := s.prober.Probe(c.Request.Context(), dnspkg.NewSessionID(),
		dnspkg.NormalizeDomain(req.Domain), rt, s.cfg.VantagePoints, nil)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("Propagation check failed", zap.String("domain", req.Domain), zap.Error(err))
		}
		c.JSON(status, errorResponse{Error: err.Error()})
		return
	}

	s.sessions.Put(summary)
	c.JSON(http.StatusOK, newCheckResponse(summary))
}

type streamEvent struct {
	name string
	data any
}

func (s *Server) handleCheckStream(c *gin.Context) {
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Access-Control-Allow-Origin", "*")

	var req checkRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.SSEvent("error", errorResponse{Error: "invalid request"})
		return
	}
	rt, err := s.recordType(req.Type)
	if err != nil {
		c.SSEvent("error", errorResponse{Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	sessionID := dnspkg.NewSessionID()
	domain := dnspkg.NormalizeDomain(req.Domain)

	// Buffered for every progress event plus the final one, so the probe
	// never blocks on a client that went away.
	events := make(chan streamEvent, len(s.cfg.VantagePoints)+1)
	go func() {
		defer close(events)
		summary, err := s.prober.Probe(ctx, sessionID, domain, rt, s.cfg.VantagePoints, func(p dnspkg.Progress) {
			events <- streamEvent{name: "progress", data: p}
		})
		if err != nil {
			events <- streamEvent{name: "error", data: errorResponse{Error: err.Error()}}
			return
		}
		s.sessions.Put(summary)
		events <- streamEvent{name: "summary", data: newCheckResponse(summary)}
	}()

	c.Stream(func(w io.Writer) bool {
		ev, ok := <-events
		if !ok {
			return false
		}
		c.SSEvent(ev.name, ev.data)
		return true
	})
}

func (s *Server) handleGetCheck(c *gin.Context) {
	summary, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse{Error: "check not found"})
		return
	}
	c.JSON(http.StatusOK, newCheckResponse(summary))
}

func (s *Server) handleCheckCSV(c *gin.Context) {
	summary, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse{Error: "check not found"})
		return
	}

	out := dnspkg.ToCSV(summary)
	if escaped, _ := strconv.ParseBool(c.Query("escaped")); escaped {
		var err error
		if out, err = dnspkg.ToCSVEscaped(summary); err != nil {
			s.logger.Error("Failed to encode CSV", zap.String("session_id", summary.SessionID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to encode CSV"})
			return
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dnspkg.CSVFilename(summary)))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(out))
}

func (s *Server) handleDNSLookup(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.JSON(http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
		return
	}

	var req dnspkg.LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Domain == "" || req.RecordType == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Domain and record type are required"})
		return
	}
	rt, err := dnspkg.ParseRecordType(req.RecordType)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	resp, err := s.resolver.Resolve(c.Request.Context(), dnspkg.NormalizeDomain(req.Domain), rt)
	if err != nil {
		s.logger.Error("DNS lookup error", zap.String("domain", req.Domain), zap.String("record_type", string(rt)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "Failed to fetch DNS records"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// sessionStore keeps the most recent completed checks, evicting the oldest
// once full.
type sessionStore struct {
	mu    sync.Mutex
	max   int
	order []string
	items map[string]*dnspkg.CheckSummary
}

func newSessionStore(max int) *sessionStore {
	if max <= 0 {
		max = 100
	}
	return &sessionStore{
		max:   max,
		items: make(map[string]*dnspkg.CheckSummary),
	}
}

func (s *sessionStore) Put(summary *dnspkg.CheckSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[summary.SessionID]; !ok {
		s.order = append(s.order, summary.SessionID)
	}
	s.items[summary.SessionID] = summary
	for len(s.order) > s.max {
		delete(s.items, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *sessionStore) Get(id string) (*dnspkg.CheckSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	summary, ok := s.items[id]
	return summary, ok
}
