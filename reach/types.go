package reach

import (
	"context"
	"errors"
	"fmt"

	"github.com/katalvlaran/lnroute/routing"
)

// Sentinel errors for BFS execution.
var (
	// ErrStartVertexNotFound is returned when the start node is absent.
	ErrStartVertexNotFound = errors.New("reach: start node not found")

	// ErrGraphNil is returned if a nil graph is passed.
	ErrGraphNil = errors.New("reach: graph is nil")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("reach: invalid option supplied")
)

// Option configures BFS behavior via functional arguments.
// An invalid Option is recorded and surfaced as ErrOptionViolation when BFS
// is invoked.
type Option func(*Options)

// Options holds parameters and callbacks to customize a walk.
type Options struct {
	// Ctx allows cancellation and deadlines.
	Ctx context.Context

	// OnVisit is called when visiting a node. If it returns an error,
	// BFS aborts and propagates that error.
	OnVisit func(id routing.NodeID, depth int) error

	// MaxDepth, if > 0, stops exploring beyond this depth.
	MaxDepth int

	// Filter decides whether an edge may be followed. The default follows
	// active edges only.
	Filter func(e routing.ChannelEdge) bool

	// Reverse walks edges against their direction, answering "who can reach
	// the start" instead of "what the start can reach".
	Reverse bool

	err error
}

// DefaultOptions returns Options with:
//   - context.Background()
//   - no depth limit
//   - the active-edge filter
//   - a no-op OnVisit
func DefaultOptions() Options {
	return Options{
		Ctx:      context.Background(),
		OnVisit:  func(routing.NodeID, int) error { return nil },
		MaxDepth: 0,
		Filter:   ActiveOnly,
	}
}

// ActiveOnly is the default edge filter.
func ActiveOnly(e routing.ChannelEdge) bool { return e.Active }

// AllEdges follows every edge regardless of its activity flag.
func AllEdges(routing.ChannelEdge) bool { return true }

// WithContext sets a custom context for cancellation.
func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		if ctx != nil {
			o.Ctx = ctx
		}
	}
}

// WithOnVisit registers a callback to run on visit; returning an error
// from this callback stops the walk.
func WithOnVisit(fn func(id routing.NodeID, depth int) error) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnVisit = fn
		}
	}
}

// WithMaxDepth stops the walk at the given depth.
//
//	d > 0: limit to depth d
//	d == 0: no depth limit
//	d < 0: invalid option → ErrOptionViolation
func WithMaxDepth(d int) Option {
	return func(o *Options) {
		if d < 0 {
			o.err = fmt.Errorf("%w: MaxDepth cannot be negative (%d)", ErrOptionViolation, d)
			return
		}
		o.MaxDepth = d
	}
}

// WithFilter replaces the edge filter.
func WithFilter(fn func(e routing.ChannelEdge) bool) Option {
	return func(o *Options) {
		if fn != nil {
			o.Filter = fn
		}
	}
}

// WithReverse walks incoming instead of outgoing edges.
func WithReverse() Option {
	return func(o *Options) { o.Reverse = true }
}

// Result holds the outcome of a walk:
//   - Order: nodes visited, in visit sequence.
//   - Depth: hop distance of every reached node from the start.
//   - Parent: the edge through which each node other than the start was
//     first reached.
type Result struct {
	Start   routing.NodeID
	Reverse bool
	Order   []routing.NodeID
	Depth   map[routing.NodeID]int
	Parent  map[routing.NodeID]routing.ChannelEdge
}

// Reached reports whether id was visited.
func (r *Result) Reached(id routing.NodeID) bool {
	_, ok := r.Depth[id]

	return ok
}

// PathTo reconstructs the fewest-hop edge list between the start and dest in
// edge direction: start→dest for a forward walk, dest→start for a reverse
// one. It is empty for the start itself.
func (r *Result) PathTo(dest routing.NodeID) ([]routing.ChannelEdge, error) {
	if !r.Reached(dest) {
		return nil, fmt.Errorf("reach: no path to %x", dest[:])
	}
	path := make([]routing.ChannelEdge, 0, r.Depth[dest])
	for cur := dest; cur != r.Start; {
		e, ok := r.Parent[cur]
		if !ok {
			return nil, fmt.Errorf("reach: broken parent chain at %x", cur[:])
		}
		path = append(path, e)
		if e.To == cur {
			cur = e.From
		} else {
			cur = e.To
		}
	}
	if !r.Reverse {
		for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
			path[i], path[j] = path[j], path[i]
		}
	}

	return path, nil
}
