// Package simnet builds deterministic synthetic payment networks for
// benchmarks and tests.
//
// Node n is identified by n written little-endian into an otherwise zero
// 33-byte key. These identities are not curve points; IndexCodec formats them
// as "pubkey-#n".
//
// Randomness comes from golang.org/x/exp/rand's PCG source, whose stream is
// fixed for a given seed across Go releases, so a seed reproduces the same
// graph and the same query list everywhere.
package simnet

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/lnd/lnwire"
	"golang.org/x/exp/rand"

	"github.com/katalvlaran/lnroute/routing"
)

// Params controls the shape of a populated network. Every Max field must be
// positive.
type Params struct {
	ChannelsPerNode int    // channels opened by every node n ≥ 1
	MaxBaseFee      uint64 // base fee drawn from [0, MaxBaseFee)
	MaxFeeRate      uint64 // ppm rate drawn from [0, MaxFeeRate)
	MaxDelay        uint64 // time-lock delta drawn from [0, MaxDelay)
	MaxAmount       uint64 // query amounts drawn from [0, MaxAmount)
}

// DefaultParams matches the reference benchmark: two channels per node, fees
// below 100, delays below 144 blocks, amounts below 100000 msat.
func DefaultParams() Params {
	return Params{
		ChannelsPerNode: 2,
		MaxBaseFee:      100,
		MaxFeeRate:      100,
		MaxDelay:        144,
		MaxAmount:       100000,
	}
}

// NodeID returns the synthetic identity of node n.
func NodeID(n uint64) routing.NodeID {
	var id routing.NodeID
	binary.LittleEndian.PutUint64(id[:8], n)

	return id
}

// Index recovers n from NodeID(n).
func Index(id routing.NodeID) uint64 {
	return binary.LittleEndian.Uint64(id[:8])
}

// IndexCodec orders synthetic keys bytewise and formats them by index.
type IndexCodec struct{}

// Compare implements routing.KeyCodec.
func (IndexCodec) Compare(a, b routing.NodeID) int { return bytes.Compare(a[:], b[:]) }

// Format implements routing.KeyCodec.
func (IndexCodec) Format(id routing.NodeID) string { return fmt.Sprintf("pubkey-#%d", Index(id)) }

// Rand is the generator all helpers draw from.
type Rand = rand.Rand

// NewRand returns a deterministic generator for seed.
func NewRand(seed uint64) *Rand {
	return rand.New(rand.NewSource(seed))
}

// NewState returns an empty graph on the zero chain hash whose local node is
// NodeID(0) and whose codec is IndexCodec.
func NewState() *routing.State {
	return routing.New(chainhash.Hash{}, NodeID(0), routing.WithKeyCodec(IndexCodec{}))
}

// Populate adds numNodes nodes to s with DefaultParams.
func Populate(s *routing.State, numNodes int, rng *Rand) {
	PopulateWith(s, numNodes, rng, DefaultParams())
}

// PopulateWith gives every node n in [1, numNodes) ChannelsPerNode channels to
// randomly chosen lower-numbered nodes, with independently drawn terms for
// each direction. Node 0 only receives channels.
func PopulateWith(s *routing.State, numNodes int, rng *Rand, p Params) {
	for n := uint64(1); n < uint64(numNodes); n++ {
		id := NodeID(n)
		for i := 0; i < p.ChannelsPerNode; i++ {
			peer := NodeID(rng.Uint64n(n))
			s.AddConnection(id, peer, randomPolicy(rng, p))
			s.AddConnection(peer, id, randomPolicy(rng, p))
		}
	}
}

// NewNetwork is NewState followed by Populate with a fresh generator.
func NewNetwork(seed uint64, numNodes int) *routing.State {
	s := NewState()
	Populate(s, numNodes, NewRand(seed))

	return s
}

// Query is one benchmark search.
type Query struct {
	From   routing.NodeID
	To     routing.NodeID
	Amount lnwire.MilliSatoshi
}

// Queries draws runs random searches between nodes in [0, numNodes).
func Queries(rng *Rand, numNodes, runs int) []Query {
	return QueriesWith(rng, numNodes, runs, DefaultParams())
}

// QueriesWith is Queries with explicit parameters.
func QueriesWith(rng *Rand, numNodes, runs int, p Params) []Query {
	if numNodes <= 0 || runs <= 0 {
		return nil
	}
	qs := make([]Query, runs)
	for i := range qs {
		qs[i] = Query{
			From:   NodeID(rng.Uint64n(uint64(numNodes))),
			To:     NodeID(rng.Uint64n(uint64(numNodes))),
			Amount: lnwire.MilliSatoshi(rng.Uint64n(p.MaxAmount)),
		}
	}

	return qs
}

// randomPolicy draws base fee, rate and delay in that order.
func randomPolicy(rng *Rand, p Params) routing.Policy {
	return routing.Policy{
		BaseFee:       lnwire.MilliSatoshi(rng.Uint64n(p.MaxBaseFee)),
		FeeRate:       uint32(rng.Uint64n(p.MaxFeeRate)),
		TimeLockDelta: uint16(rng.Uint64n(p.MaxDelay)),
	}
}
