// Package reach answers connectivity questions over a routing.State with a
// breadth-first walk: which nodes a payer can reach through eligible edges,
// in how many hops, and along which edges.
//
// Neighbours are visited in the insertion order of each node's edge list, so
// the visit order is reproducible for a given graph.
//
// Complexity (V = nodes, E = edges):
//
//   - Time:   O(V + E)
//   - Memory: O(V)
package reach

import (
	"context"
	"fmt"

	"github.com/katalvlaran/lnroute/routing"
)

// Graph is the read access BFS needs. *routing.State implements it.
type Graph interface {
	View(fn func(tx *routing.ReadTx) error) error
}

// queueItem pairs a node with its depth.
type queueItem struct {
	idx   routing.NodeIndex
	depth int
}

// walker encapsulates mutable BFS state.
type walker struct {
	tx      *routing.ReadTx
	opts    Options
	ctx     context.Context
	queue   []queueItem
	visited []bool
	res     *Result
}

// BFS walks g from start under one read transaction.
// Returns ErrGraphNil, ErrOptionViolation or ErrStartVertexNotFound for
// invalid input, routing.ErrInvariant for a corrupt graph, the context error
// on cancellation, or a wrapped OnVisit error.
func BFS(g Graph, start routing.NodeID, opts ...Option) (*Result, error) {
	if g == nil {
		return nil, ErrGraphNil
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}

	var res *Result
	err := g.View(func(tx *routing.ReadTx) error {
		idx, ok := tx.NodeIndex(start)
		if !ok {
			return fmt.Errorf("%w: %x", ErrStartVertexNotFound, start[:])
		}
		n := tx.NumNodes()
		w := &walker{
			tx:      tx,
			opts:    o,
			ctx:     o.Ctx,
			queue:   make([]queueItem, 0, n),
			visited: make([]bool, n),
			res: &Result{
				Start:   start,
				Reverse: o.Reverse,
				Order:   make([]routing.NodeID, 0, n),
				Depth:   make(map[routing.NodeID]int, n),
				Parent:  make(map[routing.NodeID]routing.ChannelEdge, n),
			},
		}
		res = w.res
		w.enqueue(idx, 0)

		return w.loop()
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// enqueue marks idx visited at depth d and adds it to the queue.
func (w *walker) enqueue(idx routing.NodeIndex, d int) {
	w.visited[idx] = true
	w.res.Depth[w.tx.NodeID(idx)] = d
	w.queue = append(w.queue, queueItem{idx: idx, depth: d})
}

// loop processes the queue until empty, error, or cancellation.
func (w *walker) loop() error {
	for len(w.queue) > 0 {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		default:
		}

		item := w.queue[0]
		w.queue = w.queue[1:]

		id := w.tx.NodeID(item.idx)
		w.res.Order = append(w.res.Order, id)
		if err := w.opts.OnVisit(id, item.depth); err != nil {
			return fmt.Errorf("reach: OnVisit error at %x: %w", id[:], err)
		}
		if err := w.enqueueNeighbors(item); err != nil {
			return err
		}
	}

	return nil
}

// enqueueNeighbors follows every edge of item that passes the filter and
// depth limit and enqueues each unseen endpoint.
func (w *walker) enqueueNeighbors(item queueItem) error {
	nextDepth := item.depth + 1
	if w.opts.MaxDepth > 0 && nextDepth > w.opts.MaxDepth {
		return nil
	}

	edges := w.tx.Outgoing(item.idx)
	if w.opts.Reverse {
		edges = w.tx.Incoming(item.idx)
	}
	for _, eid := range edges {
		ref, err := w.tx.Edge(eid)
		if err != nil {
			return err
		}
		if !w.opts.Filter(ref.ChannelEdge) {
			continue
		}
		nbr := ref.ToIndex
		if w.opts.Reverse {
			nbr = ref.FromIndex
		}
		if w.visited[nbr] {
			continue
		}
		w.res.Parent[w.tx.NodeID(nbr)] = ref.ChannelEdge
		w.enqueue(nbr, nextDepth)
	}

	return nil
}
