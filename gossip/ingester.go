// Package gossip feeds channel announcements and channel updates received
// from peers into a routing.State and hands the accepted messages to a
// retransmission queue.
//
// Signature and funding-output checks belong to the caller; the Ingester
// assumes messages are authentic and only enforces chain, key and ordering
// rules.
package gossip

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/lnd/lnwire"
	"go.uber.org/zap"

	"github.com/katalvlaran/lnroute/logging"
	"github.com/katalvlaran/lnroute/routing"
)

// ErrWrongChain is returned for a message whose chain hash differs from the
// State's.
var ErrWrongChain = errors.New("gossip: message for another chain")

// BroadcastState is the queue of gossip messages to be relayed to peers.
// Tags identify a message slot: Queue appends under a new tag and Replace
// overwrites whatever is queued under the tag.
type BroadcastState interface {
	Queue(tag []byte, msg lnwire.Message) error
	Replace(tag []byte, msg lnwire.Message) error
}

// NopBroadcast discards every message.
type NopBroadcast struct{}

// Queue implements BroadcastState.
func (NopBroadcast) Queue([]byte, lnwire.Message) error { return nil }

// Replace implements BroadcastState.
func (NopBroadcast) Replace([]byte, lnwire.Message) error { return nil }

// Ingester applies gossip messages to a State.
type Ingester struct {
	state     *routing.State
	broadcast BroadcastState
	log       *zap.Logger
}

// NewIngester returns an Ingester writing into state. A nil broadcast drops
// accepted messages; a nil log disables logging.
func NewIngester(state *routing.State, broadcast BroadcastState, log *zap.Logger) *Ingester {
	if broadcast == nil {
		broadcast = NopBroadcast{}
	}

	return &Ingester{
		state:     state,
		broadcast: broadcast,
		log:       logging.OrNop(log).Named("gossip"),
	}
}

// HandleChannelAnnouncement records a new channel. Both node keys must be
// valid compressed public keys with NodeID1 ordered first. A repeated
// announcement is accepted silently and not relayed again.
func (g *Ingester) HandleChannelAnnouncement(msg *lnwire.ChannelAnnouncement) error {
	if err := g.checkChain(msg.ChainHash, msg.ShortChannelID); err != nil {
		return err
	}

	node1, node2 := routing.NodeID(msg.NodeID1), routing.NodeID(msg.NodeID2)
	for _, id := range []routing.NodeID{node1, node2} {
		if err := routing.ValidateNodeKey(id); err != nil {
			return fmt.Errorf("gossip: announcement %v: %w", msg.ShortChannelID, err)
		}
	}

	_, _, known := g.state.Channel(msg.ShortChannelID)
	if err := g.state.AddChannel(msg.ShortChannelID, node1, node2); err != nil {
		g.log.Debug("Rejected channel announcement",
			zap.Stringer("scid", msg.ShortChannelID), zap.Error(err))
		return err
	}
	if known {
		return nil
	}

	g.log.Debug("Added channel",
		zap.Stringer("scid", msg.ShortChannelID),
		zap.String("node1", g.state.Codec().Format(node1)),
		zap.String("node2", g.state.Codec().Format(node2)))

	return g.broadcast.Queue(tag(msg.ShortChannelID, msg.MsgType(), false), msg)
}

// HandleChannelUpdate applies the forwarding terms of one channel direction.
// Bit 0 of ChannelFlags selects the direction and bit 1 disables it. Stale
// updates return routing.ErrStaleUpdate and are not relayed.
func (g *Ingester) HandleChannelUpdate(msg *lnwire.ChannelUpdate) error {
	if err := g.checkChain(msg.ChainHash, msg.ShortChannelID); err != nil {
		return err
	}

	direction := msg.ChannelFlags&lnwire.ChanUpdateDirection != 0
	policy := routing.Policy{
		BaseFee:       lnwire.MilliSatoshi(msg.BaseFee),
		FeeRate:       msg.FeeRate,
		TimeLockDelta: msg.TimeLockDelta,
		MinHTLC:       msg.HtlcMinimumMsat,
		Disabled:      msg.ChannelFlags&lnwire.ChanUpdateDisabled != 0,
	}
	ts := time.Unix(int64(msg.Timestamp), 0)

	e, err := g.state.ApplyPolicy(msg.ShortChannelID, direction, policy, ts)
	switch {
	case errors.Is(err, routing.ErrStaleUpdate):
		g.log.Debug("Ignoring stale channel update",
			zap.Stringer("scid", msg.ShortChannelID),
			zap.Bool("direction", direction),
			zap.Uint32("timestamp", msg.Timestamp))
		return err
	case err != nil:
		g.log.Debug("Rejected channel update",
			zap.Stringer("scid", msg.ShortChannelID), zap.Error(err))
		return err
	}

	g.log.Debug("Applied channel update",
		zap.Stringer("scid", msg.ShortChannelID),
		zap.Bool("direction", direction),
		zap.Bool("active", e.Active),
		zap.Uint64("base_fee", uint64(e.BaseFee)),
		zap.Uint32("fee_rate", e.FeeRate))

	return g.broadcast.Replace(tag(msg.ShortChannelID, msg.MsgType(), direction), msg)
}

// checkChain rejects messages for other chains.
func (g *Ingester) checkChain(chain chainhash.Hash, scid lnwire.ShortChannelID) error {
	if chain != g.state.ChainHash() {
		return fmt.Errorf("%w: %v", ErrWrongChain, scid)
	}

	return nil
}

// tag builds the broadcast slot key: scid (8 bytes) ‖ message type (2 bytes)
// ‖ direction (1 byte).
func tag(scid lnwire.ShortChannelID, t lnwire.MessageType, direction bool) []byte {
	var k [8 + 2 + 1]byte
	binary.BigEndian.PutUint64(k[:8], scid.ToUint64())
	binary.BigEndian.PutUint16(k[8:10], uint16(t))
	if direction {
		k[10] = 1
	}

	return k[:]
}
