// Package router is the service-facing entry point for route queries. It
// wraps pathfind with the node's configuration, a result cache keyed by graph
// generation, Prometheus metrics and structured logging.
package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/benbjohnson/clock"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/katalvlaran/lnroute/config"
	"github.com/katalvlaran/lnroute/logging"
	"github.com/katalvlaran/lnroute/pathfind"
	"github.com/katalvlaran/lnroute/routing"
)

// Search outcomes used as the "result" metric label.
const (
	ResultFound     = "found"
	ResultCached    = "cached"
	ResultNoRoute   = "no_route"
	ResultExhausted = "exhausted"
	ResultInvalid   = "invalid"
	ResultCanceled  = "canceled"
	ResultError     = "error"
)

// ErrNilState is returned by New when no State is given.
var ErrNilState = errors.New("router: state is nil")

// Config bounds the searches a Router runs.
type Config struct {
	MaxHops     int // 0 selects pathfind.DefaultMaxHops
	MaxExplored int // 0 = unbounded
	CacheSize   int // 0 disables the cache
}

// ConfigFrom extracts the router settings from the loaded configuration.
func ConfigFrom(c config.RoutingConfig) Config {
	return Config{
		MaxHops:     c.MaxHops,
		MaxExplored: c.MaxExplored,
		CacheSize:   c.CacheSize,
	}
}

// Request is one route query.
type Request struct {
	// Source defaults to the State's local node when nil.
	Source      *routing.NodeID
	Destination routing.NodeID
	Amount      lnwire.MilliSatoshi
	RiskFactor  float64
}

// cacheKey identifies a search result. A result is reusable only while the
// graph generation it was computed at is current.
type cacheKey struct {
	source      routing.NodeID
	destination routing.NodeID
	amount      lnwire.MilliSatoshi
	riskFactor  float64
	generation  uint64
}

// Router answers route queries against one State. It is safe for concurrent
// use.
type Router struct {
	state *routing.State
	cfg   Config
	log   *zap.Logger
	clock clock.Clock
	reg   prometheus.Registerer
	cache *lru.Cache[cacheKey, *pathfind.Route]

	searches *prometheus.CounterVec
	duration prometheus.Histogram
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger; nil keeps the no-op default.
func WithLogger(l *zap.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.log = l
		}
	}
}

// WithClock replaces the wall clock used to time searches.
func WithClock(c clock.Clock) Option {
	return func(r *Router) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithRegisterer registers the metrics with reg instead of a private
// registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(r *Router) {
		if reg != nil {
			r.reg = reg
		}
	}
}

// New returns a Router over state.
func New(state *routing.State, cfg Config, opts ...Option) (*Router, error) {
	if state == nil {
		return nil, ErrNilState
	}
	if cfg.MaxHops < 0 || cfg.MaxExplored < 0 || cfg.CacheSize < 0 {
		return nil, fmt.Errorf("router: negative bound in %+v", cfg)
	}
	if cfg.MaxHops == 0 {
		cfg.MaxHops = pathfind.DefaultMaxHops
	}

	r := &Router{
		state: state,
		cfg:   cfg,
		log:   zap.NewNop(),
		clock: clock.New(),
		reg:   prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = logging.OrNop(r.log).Named("router")

	if cfg.CacheSize > 0 {
		c, err := lru.New[cacheKey, *pathfind.Route](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("router: cache: %w", err)
		}
		r.cache = c
	}

	r.searches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lnroute_searches_total",
		Help: "Route searches by outcome.",
	}, []string{"result"})
	r.duration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "lnroute_search_duration_seconds",
		Help:    "Wall time of uncached route searches.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	})
	for _, c := range []prometheus.Collector{r.searches, r.duration} {
		if err := r.reg.Register(c); err != nil {
			return nil, fmt.Errorf("router: registering metrics: %w", err)
		}
	}

	return r, nil
}

// FindRoute returns the cheapest route for req. The returned Route is owned
// by the caller. pathfind.ErrNoRoute reports an expected absence of routes.
func (r *Router) FindRoute(ctx context.Context, req Request) (*pathfind.Route, error) {
	src := r.state.Self()
	if req.Source != nil {
		src = *req.Source
	}
	key := cacheKey{
		source:      src,
		destination: req.Destination,
		amount:      req.Amount,
		riskFactor:  req.RiskFactor,
		generation:  r.state.Generation(),
	}

	if r.cache != nil {
		if route, ok := r.cache.Get(key); ok {
			r.searches.WithLabelValues(ResultCached).Inc()
			return route.Copy(), nil
		}
	}

	start := r.clock.Now()
	route, err := pathfind.FindRoute(r.state, src, req.Destination, req.Amount, req.RiskFactor,
		pathfind.WithMaxHops(r.cfg.MaxHops),
		pathfind.WithMaxExplored(r.cfg.MaxExplored),
		pathfind.WithContext(ctx),
	)
	elapsed := r.clock.Since(start)
	r.duration.Observe(elapsed.Seconds())

	result := classify(err)
	r.searches.WithLabelValues(result).Inc()

	fields := []zap.Field{
		zap.String("source", r.state.Codec().Format(src)),
		zap.String("destination", r.state.Codec().Format(req.Destination)),
		zap.Uint64("amount_msat", uint64(req.Amount)),
		zap.String("result", result),
		zap.Duration("elapsed", elapsed),
	}
	switch result {
	case ResultFound:
		r.log.Debug("Route found", append(fields,
			zap.Int("hops", len(route.Hops)),
			zap.Uint64("fee_msat", uint64(route.TotalFee)))...)
	case ResultError:
		r.log.Error("Route search failed", append(fields, zap.Error(err))...)
		return nil, err
	default:
		r.log.Debug("No route", append(fields, zap.Error(err))...)
		return nil, err
	}

	if r.cache != nil {
		r.cache.Add(key, route.Copy())
	}

	return route, nil
}

// Purge empties the result cache.
func (r *Router) Purge() {
	if r.cache != nil {
		r.cache.Purge()
	}
}

// classify maps a pathfind outcome to its metric label.
func classify(err error) string {
	switch {
	case err == nil:
		return ResultFound
	case errors.Is(err, pathfind.ErrNoRoute):
		return ResultNoRoute
	case errors.Is(err, pathfind.ErrSearchExhausted):
		return ResultExhausted
	case errors.Is(err, pathfind.ErrInvalidAmount), errors.Is(err, pathfind.ErrInvalidRiskFactor):
		return ResultInvalid
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ResultCanceled
	default:
		return ResultError
	}
}
