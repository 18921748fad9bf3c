// Package pathfind finds the cheapest route for a payment over a routing.State.
//
// The search is Dijkstra's algorithm run backward from the destination over
// labels. A label is a partial route from some node to the destination: the
// amount that node must receive so that everything downstream is paid, the
// cost accumulated so far and the number of hops used. Relaxing the incoming
// edge u→v of a finalised label at v charges
//
//	fee(u→v)  = BaseFee + floor(FeeRate * amount(v) / 1e6)
//	risk(u→v) = floor(riskFactor * amount(v) * TimeLockDelta)
//
// and sets amount(u) = amount(v) + fee, cost(u) = cost(v) + fee + risk. Fees
// depend on the amount already accumulated downstream, which is why the walk
// starts at the destination.
//
// Hop bound:
//
// Routes longer than MaxHops are never formed. A node may therefore hold
// several labels at once: a cheap one that has spent most of the hop budget
// and dearer ones with hops to spare. A label is dropped only when another
// label of the same node is no dearer and uses no more hops. Popping labels
// in cost order, the first label finalised at a node is its cheapest, and
// every later one finalised there uses strictly fewer hops, so a node is
// expanded at most MaxHops+1 times.
//
// Complexity (H = MaxHops):
//
//   - Time:  O(H·(V + E) log(H·E)) in the worst case; O((V + E) log V) when
//     the cheapest partial routes are also the shortest.
//   - Space: O(V) per-node state plus O(H·E) labels in the worst case.
//
// Notes on implementation choices:
//
//   - Inactive edges and edges below their MinHTLC are skipped, not penalised.
//   - A new label must be strictly cheaper, or use fewer hops, than the best
//     pending label of its node. The heap breaks cost ties by push order, so
//     equal-cost paths resolve to the first one discovered while walking each
//     node's incoming edges in insertion order.
//   - The search stops as soon as a label reaches the source.
//   - MaxExplored counts distinct nodes finalised, not labels.
package pathfind

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/lightningnetwork/lnd/lnwire"

	"github.com/katalvlaran/lnroute/routing"
)

// Graph is the read access FindRoute needs. *routing.State implements it.
type Graph interface {
	View(fn func(tx *routing.ReadTx) error) error
}

// FindRoute returns the cheapest route delivering amount from source to
// destination, where cost is the sum of hop fees and risk terms.
//
// Preconditions and validation (in order):
//  1. g must be non-nil (ErrNilGraph).
//  2. riskFactor must be finite and ≥ 0 (ErrInvalidRiskFactor).
//  3. amount must be ≤ MaxAmount (ErrInvalidAmount).
//  4. source == destination returns the empty route, for any amount.
//  5. amount must be non-zero (ErrInvalidAmount).
//
// Returns ErrNoRoute (wrapped with context) when either endpoint is unknown or
// no eligible path exists. Graph corruption surfaces as routing.ErrInvariant.
func FindRoute(g Graph, source, destination routing.NodeID, amount lnwire.MilliSatoshi,
	riskFactor float64, opts ...Option) (*Route, error) {

	// 1) Build options.
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	// 2) Validate inputs.
	if g == nil {
		return nil, ErrNilGraph
	}
	if riskFactor < 0 || math.IsNaN(riskFactor) || math.IsInf(riskFactor, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRiskFactor, riskFactor)
	}
	if amount > MaxAmount {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrInvalidAmount, uint64(amount), uint64(MaxAmount))
	}

	// 3) Trivial self route.
	if source == destination {
		return &Route{Source: source, Destination: destination, Amount: amount}, nil
	}
	if amount == 0 {
		return nil, fmt.Errorf("%w: zero", ErrInvalidAmount)
	}

	// 4) Search under one read transaction.
	var route *Route
	err := g.View(func(tx *routing.ReadTx) error {
		r := &runner{
			tx:         tx,
			options:    cfg,
			amount:     amount,
			riskFactor: riskFactor,
		}
		var err error
		route, err = r.run(source, destination)

		return err
	})
	if err != nil {
		return nil, err
	}

	return route, nil
}

// nodeState is the per-node search record, indexed by routing.NodeIndex.
type nodeState struct {
	final    int    // hops of the last label finalised here; MaxHops+1 if none
	bestCost uint64 // cost of the best pending label
	bestHops int    // hops of the best pending label
}

// label is one partial route from node to the destination.
type label struct {
	node   routing.NodeIndex
	cost   uint64              // cost from node to the destination
	amount lnwire.MilliSatoshi // amount node must receive
	fee    lnwire.MilliSatoshi // fee of edge
	risk   uint64              // risk of edge
	edge   routing.EdgeID      // edge toward the destination; NoEdge at the destination
	next   int32               // label at the head of edge; -1 at the destination
	hops   int                 // edges between node and the destination
}

// runner holds the mutable state of a single search.
type runner struct {
	tx         *routing.ReadTx
	options    Options
	amount     lnwire.MilliSatoshi
	riskFactor float64

	src, dst routing.NodeIndex
	nodes    []nodeState
	labels   []label
	pq       distanceHeap
	seq      uint64
}

// run resolves the endpoints and drives the search.
func (r *runner) run(source, destination routing.NodeID) (*Route, error) {
	var ok bool
	if r.src, ok = r.tx.NodeIndex(source); !ok {
		return nil, fmt.Errorf("%w: source %x not in graph", ErrNoRoute, source[:])
	}
	if r.dst, ok = r.tx.NodeIndex(destination); !ok {
		return nil, fmt.Errorf("%w: destination %x not in graph", ErrNoRoute, destination[:])
	}

	r.init()
	found, err := r.process()
	if err != nil {
		return nil, err
	}
	if found < 0 {
		return nil, fmt.Errorf("%w: %x → %x", ErrNoRoute, source[:], destination[:])
	}

	return r.build(source, destination, found)
}

// init marks every node unreached and seeds the heap with the destination.
func (r *runner) init() {
	unreached := r.options.MaxHops + 1
	r.nodes = make([]nodeState, r.tx.NumNodes())
	for i := range r.nodes {
		r.nodes[i] = nodeState{final: unreached, bestCost: math.MaxUint64, bestHops: unreached}
	}

	r.labels = make([]label, 0, len(r.nodes))
	r.pq.items = make([]labelItem, 0, 64)
	heap.Init(&r.pq)
	r.push(label{node: r.dst, amount: r.amount, edge: routing.NoEdge, next: -1})
	r.nodes[r.dst].bestCost, r.nodes[r.dst].bestHops = 0, 0
}

// process pops labels in increasing cost order until one reaches the source.
// It returns that label, or -1 when the frontier empties first.
func (r *runner) process() (int32, error) {
	var pops, explored int
	for r.pq.Len() > 0 {
		// 1) Cooperative cancellation.
		pops++
		if pops%cancelCheckInterval == 0 {
			if err := r.options.Ctx.Err(); err != nil {
				return -1, fmt.Errorf("pathfind: search abandoned: %w", err)
			}
		}

		// 2) Pop the cheapest label; skip dominated ones.
		item := heap.Pop(&r.pq).(labelItem)
		l := r.labels[item.label]
		n := &r.nodes[l.node]
		if l.hops >= n.final {
			continue
		}
		if l.node == r.src {
			return item.label, nil
		}

		// 3) Finalise, counting each node once against the bound.
		if n.final > r.options.MaxHops {
			if r.options.MaxExplored > 0 && explored >= r.options.MaxExplored {
				return -1, fmt.Errorf("%w: %d nodes", ErrSearchExhausted, explored)
			}
			explored++
		}
		n.final = l.hops

		// 4) Relax incoming edges unless the hop budget is spent.
		if l.hops >= r.options.MaxHops {
			continue
		}
		if err := r.relax(item.label); err != nil {
			return -1, err
		}
	}

	return -1, nil
}

// relax extends the finalised label li across every edge ending at its node
// and keeps each extension that no pending label of the tail dominates.
func (r *runner) relax(li int32) error {
	lv := r.labels[li]
	hops := lv.hops + 1
	for _, eid := range r.tx.Incoming(lv.node) {
		ref, err := r.tx.Edge(eid)
		if err != nil {
			return err
		}
		if ref.ToIndex != lv.node {
			return fmt.Errorf("%w: edge %d listed at node %d but ends at %d",
				routing.ErrInvariant, eid, lv.node, ref.ToIndex)
		}

		// Eligibility: active, above the hop minimum, tail not settled with
		// as few hops.
		if !ref.Active || lv.amount < ref.MinHTLC {
			continue
		}
		u := ref.FromIndex
		nu := &r.nodes[u]
		if hops >= nu.final {
			continue
		}

		fee, risk, ok := EdgeCost(ref.ChannelEdge, lv.amount, r.riskFactor)
		if !ok {
			continue
		}
		cost, ok := addCost(lv.cost, uint64(fee), risk)
		if !ok || (cost >= nu.bestCost && hops >= nu.bestHops) {
			continue
		}
		amt := lv.amount + fee
		if amt < lv.amount || amt > MaxAmount {
			continue
		}

		if cost < nu.bestCost || (cost == nu.bestCost && hops < nu.bestHops) {
			nu.bestCost, nu.bestHops = cost, hops
		}
		r.push(label{
			node:   u,
			cost:   cost,
			amount: amt,
			fee:    fee,
			risk:   risk,
			edge:   eid,
			next:   li,
			hops:   hops,
		})
	}

	return nil
}

// push stores l and adds it to the frontier with the next sequence number.
func (r *runner) push(l label) {
	idx := int32(len(r.labels))
	r.labels = append(r.labels, l)
	heap.Push(&r.pq, labelItem{label: idx, cost: l.cost, seq: r.seq})
	r.seq++
}

// build follows the label chain from the source label to the destination and
// copies each edge into the route.
func (r *runner) build(source, destination routing.NodeID, li int32) (*Route, error) {
	src := r.labels[li]
	route := &Route{
		Source:      source,
		Destination: destination,
		Amount:      r.amount,
		Hops:        make([]Hop, 0, src.hops),
		TotalFee:    src.amount - r.amount,
		TotalCost:   src.cost,
	}

	for cur := src; cur.node != r.dst; {
		if len(route.Hops) >= src.hops || cur.next < 0 {
			return nil, fmt.Errorf("%w: label chain does not reach the destination", routing.ErrInvariant)
		}
		next := r.labels[cur.next]
		ref, err := r.tx.Edge(cur.edge)
		if err != nil {
			return nil, err
		}
		if ref.FromIndex != cur.node || ref.ToIndex != next.node {
			return nil, fmt.Errorf("%w: edge %d does not join its labels", routing.ErrInvariant, cur.edge)
		}
		route.Hops = append(route.Hops, Hop{
			Edge:            ref.ChannelEdge,
			AmountToForward: next.amount,
			Fee:             cur.fee,
			Risk:            cur.risk,
		})
		route.TotalRisk += cur.risk
		route.TotalTimeLock += uint32(ref.TimeLockDelta)
		cur = next
	}

	return route, nil
}
