// File: methods_edges.go
// Role: Directed edge upserts and queries.
// Determinism:
//   - EdgeIDs are assigned sequentially; Edges() returns them in ID order.
//   - Per-node incoming/outgoing lists keep insertion order.
// Concurrency:
//   - Every upsert runs entirely under the write lock.

package routing

import (
	"fmt"

	"github.com/lightningnetwork/lnd/lnwire"
)

// GetOrMakeConnection returns the directed edge from→to, creating a
// zero-initialised, inactive edge if the pair has none. Missing endpoints are
// created. When several channels join the pair the first one inserted is
// returned.
//
// Repeated calls with the same pair return the same EdgeID.
//
// Complexity: O(1) amortized.
func (s *State) GetOrMakeConnection(from, to NodeID) ChannelEdge {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.edges[s.connection(from, to)].ChannelEdge
}

// AddConnection upserts the edge from→to and overwrites its forwarding terms
// with p. The edge becomes active unless p.Disabled is set. A placeholder
// edge keeps its zero channel id.
func (s *State) AddConnection(from, to NodeID, p Policy) ChannelEdge {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := &s.edges[s.connection(from, to)]
	e.BaseFee = p.BaseFee
	e.FeeRate = p.FeeRate
	e.TimeLockDelta = p.TimeLockDelta
	e.MinHTLC = p.MinHTLC
	e.Active = !p.Disabled
	s.generation++

	return e.ChannelEdge
}

// UpdateConnection upserts the edge from→to and lets fn edit a copy of it.
// The copy is written back atomically. fn must not change the identity
// fields (ID, From, To, ChannelID, Direction); doing so is an invariant
// violation and leaves the edge untouched.
func (s *State) UpdateConnection(from, to NodeID, fn func(*ChannelEdge)) (ChannelEdge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.connection(from, to)
	cur := s.edges[id].ChannelEdge
	next := cur
	fn(&next)

	if next.ID != cur.ID || next.From != cur.From || next.To != cur.To ||
		next.ChannelID != cur.ChannelID || next.Direction != cur.Direction {
		return cur, fmt.Errorf("%w: update changed identity of edge %d", ErrInvariant, id)
	}
	s.edges[id].ChannelEdge = next
	s.generation++

	return next, nil
}

// SetActive marks an edge usable or unusable for path search.
func (s *State) SetActive(id EdgeID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id < 0 || int(id) >= len(s.edges) {
		return fmt.Errorf("%w: %d", ErrEdgeNotFound, id)
	}
	if s.edges[id].Active != active {
		s.edges[id].Active = active
		s.generation++
	}

	return nil
}

// Edge returns a copy of the edge with the given ID.
func (s *State) Edge(id EdgeID) (ChannelEdge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id < 0 || int(id) >= len(s.edges) {
		return ChannelEdge{}, false
	}

	return s.edges[id].ChannelEdge, true
}

// Connection returns the edge GetOrMakeConnection would return, without
// creating anything.
func (s *State) Connection(from, to NodeID) (ChannelEdge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.pairIndex[pairKey{from: from, to: to}]
	if !ok {
		return ChannelEdge{}, false
	}

	return s.edges[id].ChannelEdge, true
}

// Edges returns a copy of every edge in EdgeID order.
//
// Complexity: O(E).
func (s *State) Edges() []ChannelEdge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ChannelEdge, len(s.edges))
	for i := range s.edges {
		out[i] = s.edges[i].ChannelEdge
	}

	return out
}

// connection returns the first edge of the pair, creating a placeholder.
// Caller must hold the write lock.
func (s *State) connection(from, to NodeID) EdgeID {
	if id, ok := s.pairIndex[pairKey{from: from, to: to}]; ok {
		return id
	}

	return s.makeEdge(from, to, lnwire.ShortChannelID{})
}

// makeEdge appends a new inactive edge and links it into both endpoint
// views. Caller must hold the write lock.
func (s *State) makeEdge(from, to NodeID, scid lnwire.ShortChannelID) EdgeID {
	fi := s.makeNode(from)
	ti := s.makeNode(to)

	id := EdgeID(len(s.edges))
	s.edges = append(s.edges, edge{
		ChannelEdge: ChannelEdge{
			ID:        id,
			From:      from,
			To:        to,
			ChannelID: scid,
			Direction: s.ChannelDirection(from, to),
		},
		from: fi,
		to:   ti,
	})
	s.nodes[ti].in = append(s.nodes[ti].in, id)
	s.nodes[fi].out = append(s.nodes[fi].out, id)

	pk := pairKey{from: from, to: to}
	if _, ok := s.pairIndex[pk]; !ok {
		s.pairIndex[pk] = id
	}
	s.chanIndex[chanKey{from: from, to: to, scid: scid.ToUint64()}] = id
	s.generation++

	return id
}
