// Package routing holds the Routing State: the in-memory channel graph that
// gossip ingestion writes into and path search reads from.
//
// The graph G = (V, E) is stored as two flat arenas owned by State:
//
//   - nodes: one entry per public key, created lazily the first time a key is
//     named as an endpoint and never removed. The local node is created by New.
//   - edges: one entry per directed channel half. Each physical channel has two
//     edges, one per direction, distinguished by the direction flag.
//
// Edges refer to nodes by arena index and nodes list their incoming and
// outgoing edges by EdgeID, so there are no ownership cycles and every lookup
// is O(1). Edges are never removed individually; closing a channel is outside
// this package, but an edge may be marked inactive.
//
// Writers:
//
//	GetOrMakeNode(id) Node                                  // O(1)
//	GetOrMakeConnection(from, to) ChannelEdge                // O(1) upsert
//	AddConnection(from, to, Policy) ChannelEdge              // upsert + overwrite
//	UpdateConnection(from, to, fn) (ChannelEdge, error)      // upsert + edit
//	AddChannel(scid, node1, node2) error                     // announcement
//	ApplyPolicy(scid, direction, Policy, ts) (ChannelEdge, error) // update
//	SetActive(id, active) error
//
// Every writer holds the State write lock for its whole duration, so a reader
// never observes half of an update. Readers either use the locked accessors
// (Node, Edge, Connection, Nodes, Edges) or View, which holds the read lock for
// the lifetime of a callback and hands out a ReadTx over the raw arenas.
//
// Direction:
//
// ChannelDirection(from, to) is true iff from orders after to under the
// KeyCodec. For a channel announced with node1 < node2 the edge node1→node2
// has direction false and node2→node1 has direction true, matching bit 0 of
// the channel_flags field of a gossip channel_update.
//
// Errors:
//
//	ErrBadNodeID      – identity has the wrong length or is not a valid key
//	ErrInvariant      – internal consistency check failed (fail fast)
//	ErrEdgeNotFound   – EdgeID does not name an edge
//	ErrUnknownChannel – update for a channel that was never announced
//	ErrChannelExists  – announcement re-uses a scid for other endpoints
//	ErrBadChannel     – announcement endpoints are equal or out of order
//	ErrStaleUpdate    – update timestamp is not newer than the stored one
package routing
