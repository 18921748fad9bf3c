// File: view.go
// Role: Read transactions over the raw arenas for graph algorithms.
// Concurrency:
//   - View holds the read lock for the whole callback, so every edge read
//     inside it belongs to one consistent generation.
//   - A ReadTx and any slice it returns must not be used after fn returns.

package routing

import "fmt"

// EdgeRef is an edge together with the arena indices of its endpoints.
type EdgeRef struct {
	ChannelEdge
	FromIndex NodeIndex
	ToIndex   NodeIndex
}

// ReadTx is a read-only handle on a State, valid only inside View.
type ReadTx struct {
	s *State
}

// View runs fn with the read lock held and returns its error.
func (s *State) View(fn func(tx *ReadTx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(&ReadTx{s: s})
}

// Self returns the local node identity.
func (tx *ReadTx) Self() NodeID { return tx.s.self }

// Generation returns the generation the transaction observes.
func (tx *ReadTx) Generation() uint64 { return tx.s.generation }

// NumNodes returns the size of the node arena; indices are [0, NumNodes).
func (tx *ReadTx) NumNodes() int { return len(tx.s.nodes) }

// NumEdges returns the size of the edge arena.
func (tx *ReadTx) NumEdges() int { return len(tx.s.edges) }

// NodeIndex resolves an identity to its arena index.
func (tx *ReadTx) NodeIndex(id NodeID) (NodeIndex, bool) {
	idx, ok := tx.s.nodeIndex[id]

	return idx, ok
}

// NodeID returns the identity stored at idx.
func (tx *ReadTx) NodeID(idx NodeIndex) NodeID { return tx.s.nodes[idx].id }

// Incoming returns the edges ending at idx in insertion order.
// The slice is shared with the arena and must not be modified.
func (tx *ReadTx) Incoming(idx NodeIndex) []EdgeID { return tx.s.nodes[idx].in }

// Outgoing returns the edges leaving idx in insertion order.
// The slice is shared with the arena and must not be modified.
func (tx *ReadTx) Outgoing(idx NodeIndex) []EdgeID { return tx.s.nodes[idx].out }

// Edge returns the edge id with resolved endpoint indices. It verifies that
// the endpoints are present in the node arena and that the direction flag
// agrees with the endpoint ordering; a failure means the graph is corrupt.
func (tx *ReadTx) Edge(id EdgeID) (EdgeRef, error) {
	s := tx.s
	if id < 0 || int(id) >= len(s.edges) {
		return EdgeRef{}, fmt.Errorf("%w: edge %d out of range", ErrInvariant, id)
	}
	e := &s.edges[id]
	if int(e.from) >= len(s.nodes) || int(e.to) >= len(s.nodes) ||
		s.nodes[e.from].id != e.From || s.nodes[e.to].id != e.To {
		return EdgeRef{}, fmt.Errorf("%w: edge %d endpoints not in graph", ErrInvariant, id)
	}
	if e.Direction != s.ChannelDirection(e.From, e.To) {
		return EdgeRef{}, fmt.Errorf("%w: edge %d direction flag disagrees with endpoints", ErrInvariant, id)
	}

	return EdgeRef{ChannelEdge: e.ChannelEdge, FromIndex: e.from, ToIndex: e.to}, nil
}
