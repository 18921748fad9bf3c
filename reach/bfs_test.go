package reach_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/katalvlaran/lnroute/reach"
	"github.com/katalvlaran/lnroute/routing"
	"github.com/katalvlaran/lnroute/simnet"
)

func n(i uint64) routing.NodeID { return simnet.NodeID(i) }

func ids(is ...uint64) []routing.NodeID {
	out := make([]routing.NodeID, len(is))
	for k, i := range is {
		out[k] = n(i)
	}
	return out
}

// chain builds 0→1→…→k with active edges.
func chain(k uint64) *routing.State {
	s := simnet.NewState()
	for i := uint64(0); i < k; i++ {
		s.AddConnection(n(i), n(i+1), routing.Policy{BaseFee: 1})
	}
	return s
}

// TestBFS_Errors verifies that invalid inputs and options are rejected.
func TestBFS_Errors(t *testing.T) {
	if _, err := reach.BFS(nil, n(0)); !errors.Is(err, reach.ErrGraphNil) {
		t.Errorf("nil graph: want ErrGraphNil, got %v", err)
	}
	s := chain(1)
	if _, err := reach.BFS(s, n(9)); !errors.Is(err, reach.ErrStartVertexNotFound) {
		t.Errorf("missing start: want ErrStartVertexNotFound, got %v", err)
	}
	if _, err := reach.BFS(s, n(0), reach.WithMaxDepth(-1)); !errors.Is(err, reach.ErrOptionViolation) {
		t.Errorf("negative depth: want ErrOptionViolation, got %v", err)
	}
}

// TestBFS_Directed checks that edges are followed in their direction only.
func TestBFS_Directed(t *testing.T) {
	s := chain(3)

	res, err := reach.BFS(s, n(0))
	if err != nil {
		t.Fatal(err)
	}
	if want := ids(0, 1, 2, 3); !reflect.DeepEqual(res.Order, want) {
		t.Errorf("Order = %v; want %v", res.Order, want)
	}
	if d := res.Depth[n(3)]; d != 3 {
		t.Errorf("Depth[3] = %d; want 3", d)
	}

	res, err = reach.BFS(s, n(2))
	if err != nil {
		t.Fatal(err)
	}
	if want := ids(2, 3); !reflect.DeepEqual(res.Order, want) {
		t.Errorf("from 2: Order = %v; want %v", res.Order, want)
	}
	if res.Reached(n(0)) {
		t.Error("node 0 must not be reachable from node 2")
	}
}

// TestBFS_InactiveEdges shows the default filter and AllEdges.
func TestBFS_InactiveEdges(t *testing.T) {
	s := chain(2)
	e, _ := s.Connection(n(1), n(2))
	if err := s.SetActive(e.ID, false); err != nil {
		t.Fatal(err)
	}

	res, _ := reach.BFS(s, n(0))
	if want := ids(0, 1); !reflect.DeepEqual(res.Order, want) {
		t.Errorf("active only: got %v; want %v", res.Order, want)
	}
	res, _ = reach.BFS(s, n(0), reach.WithFilter(reach.AllEdges))
	if want := ids(0, 1, 2); !reflect.DeepEqual(res.Order, want) {
		t.Errorf("all edges: got %v; want %v", res.Order, want)
	}
}

// TestBFS_Reverse walks toward the start instead of away from it.
func TestBFS_Reverse(t *testing.T) {
	s := chain(3)

	res, err := reach.BFS(s, n(3), reach.WithReverse())
	if err != nil {
		t.Fatal(err)
	}
	if want := ids(3, 2, 1, 0); !reflect.DeepEqual(res.Order, want) {
		t.Errorf("Order = %v; want %v", res.Order, want)
	}

	path, err := res.PathTo(n(0))
	if err != nil {
		t.Fatal(err)
	}
	if len(path) != 3 || path[0].From != n(0) || path[2].To != n(3) {
		t.Errorf("reverse path not in edge direction: %+v", path)
	}
}

// TestBFS_MaxDepth verifies WithMaxDepth for positive and zero depths.
func TestBFS_MaxDepth(t *testing.T) {
	s := chain(2)
	if res, _ := reach.BFS(s, n(0), reach.WithMaxDepth(1)); !reflect.DeepEqual(res.Order, ids(0, 1)) {
		t.Errorf("MaxDepth=1: got %v", res.Order)
	}
	if res, _ := reach.BFS(s, n(0), reach.WithMaxDepth(0)); !reflect.DeepEqual(res.Order, ids(0, 1, 2)) {
		t.Errorf("MaxDepth=0: got %v", res.Order)
	}
}

// TestBFS_PathTo covers the start itself, a reachable and an unreachable node.
func TestBFS_PathTo(t *testing.T) {
	s := chain(3)
	s.GetOrMakeNode(n(7))

	res, _ := reach.BFS(s, n(0))
	if p, err := res.PathTo(n(0)); err != nil || len(p) != 0 {
		t.Errorf("PathTo(start) = %v, %v; want empty", p, err)
	}
	p, err := res.PathTo(n(3))
	if err != nil {
		t.Fatal(err)
	}
	for i, e := range p {
		if e.From != n(uint64(i)) || e.To != n(uint64(i+1)) {
			t.Errorf("hop %d = %v→%v", i, e.From, e.To)
		}
	}
	if _, err := res.PathTo(n(7)); err == nil {
		t.Error("PathTo(unreachable) should fail")
	}
}

// TestBFS_OnVisitAbort checks that a hook error stops the walk.
func TestBFS_OnVisitAbort(t *testing.T) {
	stop := errors.New("stop")
	var seen int
	_, err := reach.BFS(chain(5), n(0), reach.WithOnVisit(func(_ routing.NodeID, d int) error {
		seen++
		if d == 2 {
			return stop
		}
		return nil
	}))
	if !errors.Is(err, stop) {
		t.Fatalf("want stop, got %v", err)
	}
	if seen != 3 {
		t.Errorf("visited %d nodes; want 3", seen)
	}
}

// TestBFS_Canceled returns the context error.
func TestBFS_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := reach.BFS(chain(2), n(0), reach.WithContext(ctx)); !errors.Is(err, context.Canceled) {
		t.Errorf("want context.Canceled, got %v", err)
	}
}

// TestBFS_Deterministic repeats a walk on a random network.
func TestBFS_Deterministic(t *testing.T) {
	s := simnet.NewNetwork(7, 200)
	first, err := reach.BFS(s, n(0))
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Order) != 200 {
		t.Errorf("reached %d of 200 nodes", len(first.Order))
	}
	for i := 0; i < 3; i++ {
		again, _ := reach.BFS(s, n(0))
		if !reflect.DeepEqual(first.Order, again.Order) {
			t.Fatal("visit order changed between runs")
		}
	}
}
