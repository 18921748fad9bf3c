// Package pathfind defines the result types, sentinel errors and functional
// options of the route search.
//
// Options:
//
//	– MaxHops:     longest route considered (default DefaultMaxHops).
//	– MaxExplored: bound on finalised nodes; 0 disables the bound.
//	– Context:     cooperative cancellation, polled every cancelCheckInterval pops.
//
// Errors (sentinel):
//
//	– ErrNoRoute           no path under current connectivity; expected, not a fault.
//	– ErrNilGraph          the graph argument is nil.
//	– ErrInvalidAmount     amount is zero or larger than MaxAmount.
//	– ErrInvalidRiskFactor risk factor is negative, NaN or infinite.
//	– ErrSearchExhausted   another node was due after MaxExplored were finalised.
//	– ErrBadMaxHops        WithMaxHops(n) with n < 1 (panics).
//	– ErrBadMaxExplored    WithMaxExplored(n) with n < 0 (panics).
package pathfind

import (
	"context"
	"errors"

	"github.com/lightningnetwork/lnd/lnwire"

	"github.com/katalvlaran/lnroute/routing"
)

// Sentinel errors returned by FindRoute.
var (
	// ErrNoRoute reports that no route exists between the endpoints under the
	// current activity and connectivity of the graph. It is an expected
	// outcome; callers decide whether to retry.
	ErrNoRoute = errors.New("pathfind: no route found")

	// ErrNilGraph indicates that a nil graph was passed to FindRoute.
	ErrNilGraph = errors.New("pathfind: graph is nil")

	// ErrInvalidAmount indicates a zero amount or one above MaxAmount.
	ErrInvalidAmount = errors.New("pathfind: invalid payment amount")

	// ErrInvalidRiskFactor indicates a negative, NaN or infinite risk factor.
	ErrInvalidRiskFactor = errors.New("pathfind: invalid risk factor")

	// ErrSearchExhausted indicates the search had finalised MaxExplored nodes
	// and still had a further node, other than the source, to finalise.
	ErrSearchExhausted = errors.New("pathfind: explored-node bound reached")

	// ErrBadMaxHops indicates WithMaxHops was given a value below 1.
	ErrBadMaxHops = errors.New("pathfind: MaxHops must be positive")

	// ErrBadMaxExplored indicates WithMaxExplored was given a negative value.
	ErrBadMaxExplored = errors.New("pathfind: MaxExplored must be non-negative")
)

const (
	// DefaultMaxHops is the longest route searched unless overridden.
	DefaultMaxHops = 20

	// MaxAmount is the largest payment accepted: the full 21M BTC supply in
	// millisatoshi.
	MaxAmount lnwire.MilliSatoshi = 21_000_000 * 100_000_000 * 1000

	// cancelCheckInterval is how many heap pops happen between context polls.
	cancelCheckInterval = 256
)

// Hop is one traversed edge of a route.
type Hop struct {
	// Edge is a copy of the channel edge as it was during the search.
	Edge routing.ChannelEdge

	// AmountToForward is the amount delivered across this edge to Edge.To.
	AmountToForward lnwire.MilliSatoshi

	// Fee is what Edge.From charges to forward AmountToForward.
	Fee lnwire.MilliSatoshi

	// Risk is the time-lock cost of this hop, in the same unit as Fee.
	Risk uint64
}

// Route is the cheapest path found from Source to Destination.
// Hops is empty when Source == Destination.
type Route struct {
	Source      routing.NodeID
	Destination routing.NodeID
	Amount      lnwire.MilliSatoshi // amount delivered to Destination
	Hops        []Hop

	TotalFee      lnwire.MilliSatoshi // sum of hop fees
	TotalRisk     uint64              // sum of hop risk terms
	TotalCost     uint64              // TotalFee + TotalRisk: the minimised quantity
	TotalTimeLock uint32              // sum of hop time-lock deltas
}

// AmountToSend returns the amount the source must hand to the first hop.
func (r *Route) AmountToSend() lnwire.MilliSatoshi { return r.Amount + r.TotalFee }

// Copy returns a deep copy of r.
func (r *Route) Copy() *Route {
	if r == nil {
		return nil
	}
	out := *r
	if r.Hops != nil {
		out.Hops = append([]Hop(nil), r.Hops...)
	}

	return &out
}

// Options configures FindRoute.
type Options struct {
	MaxHops     int             // longest route considered
	MaxExplored int             // 0 = unbounded
	Ctx         context.Context // polled for cancellation
}

// Option represents a functional option for configuring FindRoute.
type Option func(*Options)

// WithMaxHops bounds the number of hops of the returned route.
// Panics with ErrBadMaxHops if n < 1.
func WithMaxHops(n int) Option {
	return func(o *Options) {
		if n < 1 {
			panic(ErrBadMaxHops.Error())
		}
		o.MaxHops = n
	}
}

// WithMaxExplored bounds the number of nodes the search may finalise before
// giving up with ErrSearchExhausted. Zero disables the bound.
// Panics with ErrBadMaxExplored if n < 0.
func WithMaxExplored(n int) Option {
	return func(o *Options) {
		if n < 0 {
			panic(ErrBadMaxExplored.Error())
		}
		o.MaxExplored = n
	}
}

// WithContext lets the caller abandon a search. A nil ctx is ignored.
func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		if ctx != nil {
			o.Ctx = ctx
		}
	}
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		MaxHops:     DefaultMaxHops,
		MaxExplored: 0,
		Ctx:         context.Background(),
	}
}
