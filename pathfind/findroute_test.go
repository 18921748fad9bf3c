// Package pathfind_test contains unit tests for FindRoute. They cover input
// validation, cost accounting along a path, eligibility rules, deterministic
// tie-breaking and the search bounds.
package pathfind_test

import (
	"context"
	"math"
	"testing"

	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lnroute/pathfind"
	"github.com/katalvlaran/lnroute/routing"
	"github.com/katalvlaran/lnroute/simnet"
)

// n is shorthand for the synthetic identity of node i.
func n(i uint64) routing.NodeID { return simnet.NodeID(i) }

// link adds an active edge with the given terms.
func link(s *routing.State, from, to uint64, base, rate uint32, delay uint16) routing.ChannelEdge {
	return s.AddConnection(n(from), n(to), routing.Policy{
		BaseFee:       lnwire.MilliSatoshi(base),
		FeeRate:       rate,
		TimeLockDelta: delay,
	})
}

// requireConsistent checks the hop-list invariants of a successful route.
func requireConsistent(t *testing.T, r *pathfind.Route, from, to routing.NodeID) {
	t.Helper()
	require.Equal(t, from, r.Source)
	require.Equal(t, to, r.Destination)
	if from == to {
		require.Empty(t, r.Hops)
		return
	}
	require.NotEmpty(t, r.Hops)
	require.Equal(t, from, r.Hops[0].Edge.From)
	require.Equal(t, to, r.Hops[len(r.Hops)-1].Edge.To)
	for i := 0; i+1 < len(r.Hops); i++ {
		require.Equal(t, r.Hops[i].Edge.To, r.Hops[i+1].Edge.From, "hop %d", i)
		require.Equal(t, r.Hops[i].AmountToForward, r.Hops[i+1].AmountToForward+r.Hops[i+1].Fee)
	}
	require.Equal(t, r.Amount, r.Hops[len(r.Hops)-1].AmountToForward)
	require.Equal(t, uint64(r.TotalFee)+r.TotalRisk, r.TotalCost)
}

// ------------------------------------------------------------------------
// 1. Validation
// ------------------------------------------------------------------------

func TestFindRoute_Validation(t *testing.T) {
	s := simnet.NewState()
	link(s, 0, 1, 1, 1, 1)

	_, err := pathfind.FindRoute(nil, n(0), n(1), 1000, 0)
	require.ErrorIs(t, err, pathfind.ErrNilGraph)

	for _, rf := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err = pathfind.FindRoute(s, n(0), n(1), 1000, rf)
		require.ErrorIs(t, err, pathfind.ErrInvalidRiskFactor, "risk %v", rf)
	}

	_, err = pathfind.FindRoute(s, n(0), n(1), 0, 0)
	require.ErrorIs(t, err, pathfind.ErrInvalidAmount)

	_, err = pathfind.FindRoute(s, n(0), n(1), pathfind.MaxAmount+1, 0)
	require.ErrorIs(t, err, pathfind.ErrInvalidAmount)
	require.NotErrorIs(t, err, pathfind.ErrNoRoute)
}

func TestFindRoute_OptionPanics(t *testing.T) {
	require.PanicsWithValue(t, pathfind.ErrBadMaxHops.Error(), func() {
		pathfind.WithMaxHops(0)(&pathfind.Options{})
	})
	require.PanicsWithValue(t, pathfind.ErrBadMaxExplored.Error(), func() {
		pathfind.WithMaxExplored(-1)(&pathfind.Options{})
	})
}

// ------------------------------------------------------------------------
// 2. Trivial and missing routes
// ------------------------------------------------------------------------

func TestFindRoute_SelfRoute(t *testing.T) {
	s := simnet.NewState()
	link(s, 0, 1, 5, 5, 5)

	for _, amt := range []lnwire.MilliSatoshi{0, 1, 1000, pathfind.MaxAmount} {
		for _, id := range []uint64{0, 1, 99} { // 99 is not in the graph
			r, err := pathfind.FindRoute(s, n(id), n(id), amt, 0.5)
			require.NoError(t, err)
			require.Empty(t, r.Hops)
			require.Zero(t, r.TotalCost)
			require.Zero(t, r.TotalFee)
			require.Equal(t, amt, r.AmountToSend())
		}
	}
}

func TestFindRoute_UnknownEndpoints(t *testing.T) {
	s := simnet.NewState()
	link(s, 0, 1, 1, 1, 1)

	_, err := pathfind.FindRoute(s, n(7), n(1), 1000, 0)
	require.ErrorIs(t, err, pathfind.ErrNoRoute)

	_, err = pathfind.FindRoute(s, n(0), n(7), 1000, 0)
	require.ErrorIs(t, err, pathfind.ErrNoRoute)
}

func TestFindRoute_InactiveEdgeExcluded(t *testing.T) {
	s := simnet.NewState()
	e := link(s, 0, 1, 3, 0, 6)
	require.NoError(t, s.SetActive(e.ID, false))

	_, err := pathfind.FindRoute(s, n(0), n(1), 1000, 0)
	require.ErrorIs(t, err, pathfind.ErrNoRoute)

	require.NoError(t, s.SetActive(e.ID, true))
	r, err := pathfind.FindRoute(s, n(0), n(1), 1000, 0)
	require.NoError(t, err)
	require.Len(t, r.Hops, 1)
	assert.Equal(t, e.ID, r.Hops[0].Edge.ID)
	requireConsistent(t, r, n(0), n(1))
}

func TestFindRoute_DirectedOnly(t *testing.T) {
	s := simnet.NewState()
	link(s, 0, 1, 1, 0, 0)

	_, err := pathfind.FindRoute(s, n(1), n(0), 1000, 0)
	require.ErrorIs(t, err, pathfind.ErrNoRoute, "edges are one-way")
}

// ------------------------------------------------------------------------
// 3. Cost accounting
// ------------------------------------------------------------------------

func TestFindRoute_PicksCheapestPath(t *testing.T) {
	// 0→1→3 costs 20, 0→2→3 costs 35, 0→3 costs 50.
	s := simnet.NewState()
	link(s, 0, 1, 10, 0, 0)
	link(s, 1, 3, 10, 0, 0)
	link(s, 0, 2, 5, 0, 0)
	link(s, 2, 3, 30, 0, 0)
	link(s, 0, 3, 50, 0, 0)

	r, err := pathfind.FindRoute(s, n(0), n(3), 1000, 0)
	require.NoError(t, err)
	requireConsistent(t, r, n(0), n(3))

	require.Len(t, r.Hops, 2)
	assert.Equal(t, n(1), r.Hops[0].Edge.To)
	assert.Equal(t, lnwire.MilliSatoshi(20), r.TotalFee)
	assert.Equal(t, uint64(20), r.TotalCost)
	assert.Equal(t, lnwire.MilliSatoshi(1020), r.AmountToSend())
	assert.Equal(t, lnwire.MilliSatoshi(1010), r.Hops[0].AmountToForward)
	assert.Equal(t, lnwire.MilliSatoshi(1000), r.Hops[1].AmountToForward)
}

func TestFindRoute_ProportionalFeeAccruesUpstream(t *testing.T) {
	// 1000 ppm on both hops: the downstream fee is paid on 1_000_000 msat,
	// the upstream fee on 1_001_000 msat.
	s := simnet.NewState()
	link(s, 0, 1, 0, 1000, 0)
	link(s, 1, 2, 0, 1000, 0)

	r, err := pathfind.FindRoute(s, n(0), n(2), 1_000_000, 0)
	require.NoError(t, err)
	requireConsistent(t, r, n(0), n(2))

	assert.Equal(t, lnwire.MilliSatoshi(1001), r.Hops[0].Fee)
	assert.Equal(t, lnwire.MilliSatoshi(1000), r.Hops[1].Fee)
	assert.Equal(t, lnwire.MilliSatoshi(2001), r.TotalFee)
}

func TestFindRoute_RiskChangesChoice(t *testing.T) {
	// Direct 0→1 is free but locks funds for 100 blocks; 0→2→1 charges 1
	// msat per hop with one-block deltas.
	s := simnet.NewState()
	link(s, 0, 1, 0, 0, 100)
	link(s, 0, 2, 1, 0, 1)
	link(s, 2, 1, 1, 0, 1)

	r, err := pathfind.FindRoute(s, n(0), n(1), 1000, 0)
	require.NoError(t, err)
	require.Len(t, r.Hops, 1, "without risk the free hop wins")
	assert.Equal(t, uint32(100), r.TotalTimeLock)

	r, err = pathfind.FindRoute(s, n(0), n(1), 1000, 0.001)
	require.NoError(t, err)
	requireConsistent(t, r, n(0), n(1))
	require.Len(t, r.Hops, 2)
	// Hop 2→1: fee 1, risk floor(0.001*1000*1)=1. Hop 0→2: fee 1, risk floor(0.001*1001*1)=1.
	assert.Equal(t, uint64(2), r.TotalRisk)
	assert.Equal(t, uint64(4), r.TotalCost)
	assert.Equal(t, uint32(2), r.TotalTimeLock)
}

func TestFindRoute_CostMonotoneInRiskFactor(t *testing.T) {
	s := simnet.NewState()
	link(s, 0, 1, 3, 250, 40)
	link(s, 1, 2, 7, 120, 144)
	link(s, 2, 3, 1, 999, 9)

	var prev uint64
	for _, rf := range []float64{0, 1e-9, 1e-6, 1e-4, 1e-3, 0.01, 0.1, 1} {
		r, err := pathfind.FindRoute(s, n(0), n(3), 250_000, rf)
		require.NoError(t, err)
		require.Len(t, r.Hops, 3, "single path")
		require.GreaterOrEqual(t, r.TotalCost, prev, "risk factor %v", rf)
		prev = r.TotalCost
	}
}

// ------------------------------------------------------------------------
// 4. Eligibility
// ------------------------------------------------------------------------

func TestFindRoute_MinHTLC(t *testing.T) {
	s := simnet.NewState()
	s.AddConnection(n(0), n(1), routing.Policy{BaseFee: 1, MinHTLC: 2000})

	_, err := pathfind.FindRoute(s, n(0), n(1), 1000, 0)
	require.ErrorIs(t, err, pathfind.ErrNoRoute)

	r, err := pathfind.FindRoute(s, n(0), n(1), 2000, 0)
	require.NoError(t, err)
	require.Len(t, r.Hops, 1)
}

func TestFindRoute_OverflowingEdgeSkipped(t *testing.T) {
	s := simnet.NewState()
	link(s, 0, 1, 0, math.MaxUint32, 0) // fee ≈ 4295x the amount
	link(s, 0, 2, 1, 0, 0)
	link(s, 2, 1, 1, 0, 0)

	r, err := pathfind.FindRoute(s, n(0), n(1), pathfind.MaxAmount/2, 0)
	require.NoError(t, err)
	require.Len(t, r.Hops, 2)
}

// ------------------------------------------------------------------------
// 5. Determinism
// ------------------------------------------------------------------------

func TestFindRoute_TieBreakFirstDiscovered(t *testing.T) {
	build := func(first, second uint64) *routing.State {
		s := simnet.NewState()
		link(s, first, 3, 10, 0, 0)
		link(s, second, 3, 10, 0, 0)
		link(s, 0, 1, 10, 0, 0)
		link(s, 0, 2, 10, 0, 0)
		return s
	}

	for _, tc := range []struct{ first, second uint64 }{{1, 2}, {2, 1}} {
		s := build(tc.first, tc.second)
		for i := 0; i < 5; i++ {
			r, err := pathfind.FindRoute(s, n(0), n(3), 1000, 0)
			require.NoError(t, err)
			require.Equal(t, n(tc.first), r.Hops[0].Edge.To)
		}
	}
}

// ------------------------------------------------------------------------
// 6. Bounds and cancellation
// ------------------------------------------------------------------------

func TestFindRoute_MaxHops(t *testing.T) {
	s := simnet.NewState()
	for i := uint64(0); i < 5; i++ {
		link(s, i, i+1, 1, 0, 0)
	}

	_, err := pathfind.FindRoute(s, n(0), n(5), 1000, 0, pathfind.WithMaxHops(4))
	require.ErrorIs(t, err, pathfind.ErrNoRoute)

	r, err := pathfind.FindRoute(s, n(0), n(5), 1000, 0, pathfind.WithMaxHops(5))
	require.NoError(t, err)
	require.Len(t, r.Hops, 5)
	requireConsistent(t, r, n(0), n(5))
}

func TestFindRoute_CheapLongPathDoesNotHideShortOne(t *testing.T) {
	// 100 reaches 1 for free through a 20-hop chain (100→20→…→2→1) and for
	// 50 msat directly. Only the direct edge leaves room for 0→100.
	s := simnet.NewState()
	for i := uint64(2); i <= 20; i++ {
		link(s, i, i-1, 0, 0, 0)
	}
	link(s, 100, 20, 0, 0, 0)
	link(s, 100, 1, 50, 0, 0)
	link(s, 0, 100, 1, 0, 0)

	r, err := pathfind.FindRoute(s, n(0), n(1), 1000, 0)
	require.NoError(t, err)
	requireConsistent(t, r, n(0), n(1))
	require.Len(t, r.Hops, 2)
	assert.Equal(t, n(100), r.Hops[0].Edge.To)
	assert.Equal(t, lnwire.MilliSatoshi(51), r.TotalFee)
	assert.Equal(t, uint64(51), r.TotalCost)

	// With room for the chain the free route wins.
	r, err = pathfind.FindRoute(s, n(0), n(1), 1000, 0, pathfind.WithMaxHops(21))
	require.NoError(t, err)
	requireConsistent(t, r, n(0), n(1))
	require.Len(t, r.Hops, 21)
	assert.Equal(t, uint64(1), r.TotalCost)

	_, err = pathfind.FindRoute(s, n(0), n(1), 1000, 0, pathfind.WithMaxHops(1))
	require.ErrorIs(t, err, pathfind.ErrNoRoute)
}

func TestFindRoute_MaxExplored(t *testing.T) {
	s := simnet.NewState()
	for i := uint64(0); i < 5; i++ {
		link(s, i, i+1, 1, 0, 0)
	}

	_, err := pathfind.FindRoute(s, n(0), n(5), 1000, 0, pathfind.WithMaxExplored(2))
	require.ErrorIs(t, err, pathfind.ErrSearchExhausted)
	require.NotErrorIs(t, err, pathfind.ErrNoRoute)

	_, err = pathfind.FindRoute(s, n(0), n(5), 1000, 0, pathfind.WithMaxExplored(10))
	require.NoError(t, err)
}

func TestFindRoute_MaxExploredBoundary(t *testing.T) {
	s := simnet.NewState()
	link(s, 0, 1, 1, 0, 0)

	// Only the destination is finalised before the source is reached.
	r, err := pathfind.FindRoute(s, n(0), n(1), 1000, 0, pathfind.WithMaxExplored(1))
	require.NoError(t, err)
	require.Len(t, r.Hops, 1)

	// 2→3 only: the frontier empties after two nodes, which is no route
	// rather than exhaustion.
	link(s, 2, 3, 1, 0, 0)
	_, err = pathfind.FindRoute(s, n(0), n(3), 1000, 0, pathfind.WithMaxExplored(2))
	require.ErrorIs(t, err, pathfind.ErrNoRoute)
	require.NotErrorIs(t, err, pathfind.ErrSearchExhausted)

	_, err = pathfind.FindRoute(s, n(0), n(3), 1000, 0, pathfind.WithMaxExplored(1))
	require.ErrorIs(t, err, pathfind.ErrSearchExhausted)
}

func TestFindRoute_ContextCanceled(t *testing.T) {
	// 600 leaves feed the destination; the source is isolated, so the search
	// pops well over one cancellation interval before giving up.
	s := simnet.NewState()
	for i := uint64(2); i < 602; i++ {
		link(s, i, 1, 1, 0, 0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pathfind.FindRoute(s, n(0), n(1), 1000, 0, pathfind.WithContext(ctx))
	require.ErrorIs(t, err, context.Canceled)

	_, err = pathfind.FindRoute(s, n(0), n(1), 1000, 0)
	require.ErrorIs(t, err, pathfind.ErrNoRoute)
}

// ------------------------------------------------------------------------
// 7. Invariant violations
// ------------------------------------------------------------------------

// flippingCodec reverses its ordering once flipped is set, which makes every
// stored direction flag disagree with its endpoints.
type flippingCodec struct {
	flipped *bool
}

func (c flippingCodec) Compare(a, b routing.NodeID) int {
	r := simnet.IndexCodec{}.Compare(a, b)
	if *c.flipped {
		return -r
	}
	return r
}

func (flippingCodec) Format(id routing.NodeID) string { return simnet.IndexCodec{}.Format(id) }

func TestFindRoute_InvariantViolationIsFatal(t *testing.T) {
	flipped := false
	s := routing.New(simnet.NewState().ChainHash(), n(0), routing.WithKeyCodec(flippingCodec{&flipped}))
	link(s, 0, 1, 1, 0, 0)

	_, err := pathfind.FindRoute(s, n(0), n(1), 1000, 0)
	require.NoError(t, err)

	flipped = true
	_, err = pathfind.FindRoute(s, n(0), n(1), 1000, 0)
	require.ErrorIs(t, err, routing.ErrInvariant)
	require.NotErrorIs(t, err, pathfind.ErrNoRoute)
}
