package routing

import (
	"errors"
	"time"

	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/lnd/routing/route"
)

// Sentinel errors for routing state operations.
var (
	// ErrBadNodeID indicates an identity of the wrong length or format.
	ErrBadNodeID = errors.New("routing: malformed node id")

	// ErrInvariant indicates the graph failed an internal consistency check.
	// It is a bug in the caller or in this package and is never patched over.
	ErrInvariant = errors.New("routing: graph invariant violated")

	// ErrEdgeNotFound indicates an EdgeID that does not name an edge.
	ErrEdgeNotFound = errors.New("routing: edge not found")

	// ErrUnknownChannel indicates a policy update for a channel that was
	// never announced.
	ErrUnknownChannel = errors.New("routing: unknown channel")

	// ErrChannelExists indicates an announcement that re-uses a short
	// channel id for a different pair of nodes.
	ErrChannelExists = errors.New("routing: channel id already bound to other nodes")

	// ErrBadChannel indicates an announcement whose endpoints are equal or
	// not in ascending key order.
	ErrBadChannel = errors.New("routing: malformed channel endpoints")

	// ErrStaleUpdate indicates a policy update whose timestamp is not newer
	// than the one already applied.
	ErrStaleUpdate = errors.New("routing: stale channel update")
)

// NodeID is the 33-byte compressed public key identifying a node.
type NodeID = route.Vertex

// EdgeID is the stable arena index of a directed edge. It is the identity
// returned by every upsert: repeated upserts of the same edge yield the same
// EdgeID.
type EdgeID int32

// NoEdge is the EdgeID sentinel for "no edge".
const NoEdge EdgeID = -1

// NodeIndex is the arena index of a node, valid for the lifetime of a State.
type NodeIndex int32

// Policy carries the forwarding terms advertised for one direction of a
// channel.
type Policy struct {
	// BaseFee is the flat fee charged per forwarded payment.
	BaseFee lnwire.MilliSatoshi

	// FeeRate is the proportional fee in parts per million.
	FeeRate uint32

	// TimeLockDelta is the number of blocks this hop adds to the time lock.
	TimeLockDelta uint16

	// MinHTLC is the smallest amount this hop will forward.
	MinHTLC lnwire.MilliSatoshi

	// Disabled marks the direction as unusable.
	Disabled bool
}

// ChannelEdge is a directed, priced link between two nodes. Values returned
// by State are copies; mutating them does not change the graph.
type ChannelEdge struct {
	ID            EdgeID
	From          NodeID
	To            NodeID
	ChannelID     lnwire.ShortChannelID // zero for placeholder edges
	BaseFee       lnwire.MilliSatoshi
	FeeRate       uint32 // parts per million
	TimeLockDelta uint16
	MinHTLC       lnwire.MilliSatoshi
	Active        bool
	Direction     bool // ChannelDirection(From, To)
	LastUpdate    time.Time
}

// Policy returns the forwarding terms of the edge.
func (e ChannelEdge) Policy() Policy {
	return Policy{
		BaseFee:       e.BaseFee,
		FeeRate:       e.FeeRate,
		TimeLockDelta: e.TimeLockDelta,
		MinHTLC:       e.MinHTLC,
		Disabled:      !e.Active,
	}
}

// Node is a copy of a node entry: its identity and the edges touching it.
type Node struct {
	ID       NodeID
	Outgoing []EdgeID
	Incoming []EdgeID
}

// node is the arena representation of a Node.
type node struct {
	id  NodeID
	out []EdgeID
	in  []EdgeID
}

// edge is the arena representation of a ChannelEdge. from and to duplicate
// the endpoint keys as node indices.
type edge struct {
	ChannelEdge
	from NodeIndex
	to   NodeIndex
}

// pairKey identifies the ordered endpoint pair of a directed edge.
type pairKey struct {
	from, to NodeID
}

// chanKey identifies a directed edge of one particular channel.
type chanKey struct {
	from, to NodeID
	scid     uint64
}

// channelInfo records the announced endpoints of a channel, node1 < node2.
type channelInfo struct {
	node1, node2 NodeID
}
