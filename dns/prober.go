package dns

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ProbeStatus classifies a single vantage point's lookup.
type ProbeStatus string

const (
	StatusPropagated    ProbeStatus = "propagated"
	StatusNotPropagated ProbeStatus = "not-propagated"
	StatusError         ProbeStatus = "error"
)

// ProbeResult is the outcome of one lookup from one vantage point.
type ProbeResult struct {
	Location       string      `json:"location"`
	Flag           string      `json:"flag"`
	Region         Region      `json:"region"`
	Server         string      `json:"server"`
	Status         ProbeStatus `json:"status"`
	Records        []Record    `json:"records"`
	ResponseTimeMs int         `json:"response_time_ms"`
	Error          string      `json:"error,omitempty"`
}

// Progress is reported after each vantage point completes.
type Progress struct {
	SessionID string       `json:"session_id"`
	Completed int          `json:"completed"`
	Total     int          `json:"total"`
	Percent   int          `json:"percent"`
	Result    *ProbeResult `json:"result,omitempty"`
}

// ProgressFunc receives progress updates. Calls are never concurrent.
type ProgressFunc func(Progress)

// Strategy selects how vantage points are scheduled.
type Strategy int

const (
	// Sequential probes one point at a time in list order, pausing between points.
	Sequential Strategy = iota
	// Concurrent probes up to the configured number of points at once.
	Concurrent
)

const (
	StrategySequential = "sequential"
	StrategyConcurrent = "concurrent"
)

func (s Strategy) String() string {
	if s == Concurrent {
		return StrategyConcurrent
	}
	return StrategySequential
}

// ParseStrategy converts a strategy name from config or flags.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", StrategySequential:
		return Sequential, nil
	case StrategyConcurrent:
		return Concurrent, nil
	default:
		return Sequential, fmt.Errorf("unknown probe strategy %q", s)
	}
}

// Prober checks a domain against a list of vantage points.
type Prober struct {
	lookuper Lookuper
	strategy Strategy
	workers  int
	delay    time.Duration
	timeout  time.Duration
	limiter  *rate.Limiter
	metrics  *Collector
	logger   *zap.Logger
	now      func() time.Time
}

type Option func(*Prober)

func WithStrategy(s Strategy) Option {
	return func(p *Prober) {
		p.strategy = s
	}
}

func WithWorkers(n int) Option {
	return func(p *Prober) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithDelay sets the pause after each point in the sequential strategy.
func WithDelay(d time.Duration) Option {
	return func(p *Prober) {
		if d >= 0 {
			p.delay = d
		}
	}
}

// WithTimeout bounds each individual lookup.
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithRateLimit caps lookups per second across the whole check. Zero disables it.
func WithRateLimit(perSecond float64) Option {
	return func(p *Prober) {
		if perSecond > 0 {
			p.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		} else {
			p.limiter = nil
		}
	}
}

func WithMetrics(c *Collector) Option {
	return func(p *Prober) {
		p.metrics = c
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(p *Prober) {
		if l != nil {
			p.logger = l
		}
	}
}

func WithNow(now func() time.Time) Option {
	return func(p *Prober) {
		if now != nil {
			p.now = now
		}
	}
}

func NewProber(lookuper Lookuper, opts ...Option) *Prober {
	p := &Prober{
		lookuper: lookuper,
		strategy: Sequential,
		workers:  4,
		delay:    300 * time.Millisecond,
		timeout:  5 * time.Second,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe runs a full check and aggregates it into a summary tagged with sessionID.
func (p *Prober) Probe(ctx context.Context, sessionID, domain string, rt RecordType, points []VantagePoint, progress ProgressFunc) (*CheckSummary, error) {
	results, err := p.Run(ctx, sessionID, domain, rt, points, progress)
	if err != nil {
		return nil, err
	}
	summary := Summarize(strings.TrimSpace(domain), rt, results)
	summary.SessionID = sessionID
	summary.CheckedAt = p.now()
	summary.Timestamp = summary.CheckedAt.Format(TimestampLayout)

	p.metrics.ObserveSummary(&summary)
	p.logger.Info("Propagation check completed",
		zap.String("session_id", sessionID),
		zap.String("domain", summary.Domain),
		zap.String("record_type", string(rt)),
		zap.Int("propagated", summary.Propagated),
		zap.Int("not_propagated", summary.NotPropagated),
		zap.Int("errors", summary.Errors),
		zap.Int("percent", summary.PercentPropagated),
	)
	return &summary, nil
}

// Run probes every point and returns one result per point in list order.
// Per-point failures are recorded in the results; only validation problems
// and whole-check failures are returned as errors.
func (p *Prober) Run(ctx context.Context, sessionID, domain string, rt RecordType, points []VantagePoint, progress ProgressFunc) ([]ProbeResult, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return nil, &ValidationError{Field: "domain", Reason: "domain is required"}
	}
	if rt.Qtype() == 0 {
		return nil, &ValidationError{Field: "record_type", Reason: fmt.Sprintf("unsupported record type %q", rt)}
	}
	if p.lookuper == nil {
		return nil, &OperationError{Op: "start check", Err: errors.New("no lookup backend configured")}
	}
	if len(points) == 0 {
		return nil, &OperationError{Op: "start check", Err: errors.New("no vantage points available")}
	}
	if err := ctx.Err(); err != nil {
		return nil, &OperationError{Op: "start check", Err: err}
	}
	if progress == nil {
		progress = func(Progress) {}
	}

	p.logger.Debug("Starting propagation check",
		zap.String("session_id", sessionID),
		zap.String("domain", domain),
		zap.String("record_type", string(rt)),
		zap.Int("vantage_points", len(points)),
		zap.Stringer("strategy", p.strategy),
	)

	rep := &reporter{sessionID: sessionID, total: len(points), emit: progress}

	var err error
	var results []ProbeResult
	if p.strategy == Concurrent {
		results, err = p.runConcurrent(ctx, domain, rt, points, rep)
	} else {
		results, err = p.runSequential(ctx, domain, rt, points, rep)
	}
	if err != nil {
		return nil, &OperationError{Op: "probe vantage points", Err: err}
	}
	return results, nil
}

func (p *Prober) runSequential(ctx context.Context, domain string, rt RecordType, points []VantagePoint, rep *reporter) ([]ProbeResult, error) {
	results := make([]ProbeResult, 0, len(points))
	for i, point := range points {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := p.probeOne(ctx, point, domain, rt)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
		rep.done(&results[len(results)-1])

		if p.delay > 0 && i < len(points)-1 {
			t := time.NewTimer(p.delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return nil, ctx.Err()
			case <-t.C:
			}
		}
	}
	return results, nil
}

func (p *Prober) runConcurrent(ctx context.Context, domain string, rt RecordType, points []VantagePoint, rep *reporter) ([]ProbeResult, error) {
	results := make([]ProbeResult, len(points))
	grp, groupCtx := errgroup.WithContext(ctx)
	grp.SetLimit(p.workers)

	for i, point := range points {
		grp.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			result, err := p.probeOne(groupCtx, point, domain, rt)
			if err != nil {
				return err
			}
			results[i] = result
			rep.done(&results[i])
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// probeOne only returns an error when the parent context is done; lookup
// failures and timeouts become a StatusError result.
func (p *Prober) probeOne(ctx context.Context, point VantagePoint, domain string, rt RecordType) (ProbeResult, error) {
	result := ProbeResult{
		Location: point.Name,
		Flag:     point.Flag,
		Region:   point.Region,
		Server:   point.Resolver,
		Records:  []Record{},
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			return result, err
		}
	}

	lookupCtx, cancel := context.WithTimeout(ctx, p.timeout)
	start := time.Now()
	records, err := p.lookuper.Lookup(lookupCtx, point, domain, rt)
	elapsed := time.Since(start)
	cancel()

	if ctx.Err() != nil {
		return result, ctx.Err()
	}

	switch {
	case err != nil:
		result.Status = StatusError
		result.Error = err.Error()
	case len(records) > 0:
		result.Status = StatusPropagated
		result.Records = records
		result.ResponseTimeMs = int(elapsed.Milliseconds())
	default:
		result.Status = StatusNotPropagated
		result.ResponseTimeMs = int(elapsed.Milliseconds())
	}

	p.metrics.ObserveProbe(point, rt, result.Status, elapsed)
	p.logger.Debug("Vantage point probed",
		zap.String("location", point.Name),
		zap.String("server", point.Resolver),
		zap.String("status", string(result.Status)),
		zap.Int("records", len(result.Records)),
		zap.Duration("duration", elapsed),
		zap.String("error", result.Error),
	)
	return result, nil
}

// reporter serializes progress so percentages never go backwards and 100 is
// reported exactly once, for the last point.
type reporter struct {
	mu        sync.Mutex
	sessionID string
	total     int
	completed int
	emit      ProgressFunc
}

func (r *reporter) done(result *ProbeResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed++
	r.emit(Progress{
		SessionID: r.sessionID,
		Completed: r.completed,
		Total:     r.total,
		Percent:   progressPercent(r.completed, r.total),
		Result:    result,
	})
}

func progressPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	pct := int(math.Round(float64(completed) / float64(total) * 100))
	if pct > 99 {
		pct = 99
	}
	return pct
}
