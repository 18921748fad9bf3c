// File: methods_nodes.go
// Role: Node lifecycle & queries.
// Determinism:
//   - Nodes() returns identities sorted by the KeyCodec.
// Concurrency:
//   - GetOrMakeNode under the write lock; queries under the read lock.

package routing

import "sort"

// GetOrMakeNode returns the node for id, creating it if it does not exist.
// There is no error path: any 33-byte identity is a valid graph key.
//
// Complexity: O(1) amortized.
func (s *State) GetOrMakeNode(id NodeID) Node {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.nodes[s.makeNode(id)].export()
}

// Node returns a copy of the node for id.
func (s *State) Node(id NodeID) (Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.nodeIndex[id]
	if !ok {
		return Node{}, false
	}

	return s.nodes[idx].export(), true
}

// HasNode reports whether id is present.
func (s *State) HasNode(id NodeID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.nodeIndex[id]

	return ok
}

// Nodes returns every node identity, sorted by the KeyCodec.
//
// Complexity: O(V log V).
func (s *State) Nodes() []NodeID {
	s.mu.RLock()
	ids := make([]NodeID, len(s.nodes))
	for i := range s.nodes {
		ids[i] = s.nodes[i].id
	}
	s.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return s.codec.Compare(ids[i], ids[j]) < 0 })

	return ids
}

// makeNode returns the index of id, appending a new node if needed.
// Caller must hold the write lock (or be the constructor).
func (s *State) makeNode(id NodeID) NodeIndex {
	if idx, ok := s.nodeIndex[id]; ok {
		return idx
	}
	idx := NodeIndex(len(s.nodes))
	s.nodes = append(s.nodes, node{id: id})
	s.nodeIndex[id] = idx
	s.generation++

	return idx
}

// export copies n so callers cannot alias the arena slices.
func (n *node) export() Node {
	return Node{
		ID:       n.id,
		Outgoing: append([]EdgeID(nil), n.out...),
		Incoming: append([]EdgeID(nil), n.in...),
	}
}
