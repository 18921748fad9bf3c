package routing

import (
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// State is the Routing State for one chain.
//
// mu guards every field below it. Writers hold the write lock for the whole
// upsert; View holds the read lock for the whole callback.
type State struct {
	chain chainhash.Hash
	self  NodeID
	codec KeyCodec

	mu sync.RWMutex

	nodes     []node
	nodeIndex map[NodeID]NodeIndex

	edges     []edge
	pairIndex map[pairKey]EdgeID // first edge inserted for the pair
	chanIndex map[chanKey]EdgeID
	channels  map[uint64]channelInfo

	generation uint64 // bumped by every mutation
}

// Option configures a State before use.
type Option func(*State)

// WithKeyCodec replaces the default CompressedKeyCodec.
func WithKeyCodec(c KeyCodec) Option {
	return func(s *State) {
		if c != nil {
			s.codec = c
		}
	}
}

// New allocates a State for chain whose only node is the local node self.
func New(chain chainhash.Hash, self NodeID, opts ...Option) *State {
	s := &State{
		chain:     chain,
		self:      self,
		codec:     CompressedKeyCodec{},
		nodeIndex: make(map[NodeID]NodeIndex),
		pairIndex: make(map[pairKey]EdgeID),
		chanIndex: make(map[chanKey]EdgeID),
		channels:  make(map[uint64]channelInfo),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.makeNode(self)

	return s
}

// ChainHash returns the chain this graph belongs to.
func (s *State) ChainHash() chainhash.Hash { return s.chain }

// Self returns the local node identity.
func (s *State) Self() NodeID { return s.self }

// Codec returns the key codec in use.
func (s *State) Codec() KeyCodec { return s.codec }

// ChannelDirection reports the direction flag of from→to under the State's
// codec. It is a pure function of the two identities.
func (s *State) ChannelDirection(from, to NodeID) bool {
	return s.codec.Compare(from, to) > 0
}

// Generation returns a counter that changes whenever the graph is mutated.
// Results computed at one generation are valid until it changes.
func (s *State) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.generation
}

// NodeCount returns the number of nodes.
func (s *State) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.nodes)
}

// EdgeCount returns the number of directed edges.
func (s *State) EdgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.edges)
}

// ChannelCount returns the number of announced channels.
func (s *State) ChannelCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.channels)
}
