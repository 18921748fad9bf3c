// File: methods_channels.go
// Role: Channel-scoped writers used by gossip ingestion: announcements bind
//       a short channel id to two directed edges, updates overwrite one of
//       them if newer.
// Concurrency:
//   - Writers under the write lock; Channel under the read lock.

package routing

import (
	"fmt"
	"time"

	"github.com/lightningnetwork/lnd/lnwire"
)

// AddChannel records an announced channel between node1 and node2 and makes
// sure both directed edges exist. node1 must order strictly before node2.
// New edges start inactive until ApplyPolicy activates them; an existing
// placeholder edge for the pair (zero channel id) is adopted instead of
// duplicated.
//
// Announcing the same channel twice is a no-op. Announcing a known channel id
// with other endpoints returns ErrChannelExists.
func (s *State) AddChannel(scid lnwire.ShortChannelID, node1, node2 NodeID) error {
	key := scid.ToUint64()
	if key == 0 {
		return fmt.Errorf("%w: zero channel id", ErrBadChannel)
	}
	if s.codec.Compare(node1, node2) >= 0 {
		return fmt.Errorf("%w: %s is not before %s", ErrBadChannel,
			s.codec.Format(node1), s.codec.Format(node2))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	info := channelInfo{node1: node1, node2: node2}
	if known, ok := s.channels[key]; ok {
		if known == info {
			return nil
		}

		return fmt.Errorf("%w: %v", ErrChannelExists, scid)
	}
	s.channels[key] = info

	s.bindChannel(node1, node2, scid)
	s.bindChannel(node2, node1, scid)
	s.generation++

	return nil
}

// ApplyPolicy overwrites the forwarding terms of one direction of an
// announced channel. direction selects node2→node1 when true. Updates whose
// timestamp is not after the last applied one are rejected with
// ErrStaleUpdate and change nothing.
func (s *State) ApplyPolicy(scid lnwire.ShortChannelID, direction bool, p Policy, ts time.Time) (ChannelEdge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := scid.ToUint64()
	info, ok := s.channels[key]
	if !ok {
		return ChannelEdge{}, fmt.Errorf("%w: %v", ErrUnknownChannel, scid)
	}
	from, to := info.node1, info.node2
	if direction {
		from, to = to, from
	}

	id, ok := s.chanIndex[chanKey{from: from, to: to, scid: key}]
	if !ok {
		return ChannelEdge{}, fmt.Errorf("%w: channel %v has no edge %s→%s", ErrInvariant,
			scid, s.codec.Format(from), s.codec.Format(to))
	}
	e := &s.edges[id]
	if e.Direction != direction {
		return e.ChannelEdge, fmt.Errorf("%w: edge %d direction %t, update carries %t",
			ErrInvariant, id, e.Direction, direction)
	}
	if !e.LastUpdate.IsZero() && !ts.After(e.LastUpdate) {
		return e.ChannelEdge, fmt.Errorf("%w: %v at %d, have %d", ErrStaleUpdate,
			scid, ts.Unix(), e.LastUpdate.Unix())
	}

	e.BaseFee = p.BaseFee
	e.FeeRate = p.FeeRate
	e.TimeLockDelta = p.TimeLockDelta
	e.MinHTLC = p.MinHTLC
	e.Active = !p.Disabled
	e.LastUpdate = ts
	s.generation++

	return e.ChannelEdge, nil
}

// Channel returns the announced endpoints of scid.
func (s *State) Channel(scid lnwire.ShortChannelID) (node1, node2 NodeID, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.channels[scid.ToUint64()]

	return info.node1, info.node2, ok
}

// bindChannel attaches scid to the edge from→to, adopting a placeholder edge
// when there is one. Caller must hold the write lock.
func (s *State) bindChannel(from, to NodeID, scid lnwire.ShortChannelID) {
	placeholder := chanKey{from: from, to: to}
	if id, ok := s.chanIndex[placeholder]; ok {
		delete(s.chanIndex, placeholder)
		s.edges[id].ChannelID = scid
		s.chanIndex[chanKey{from: from, to: to, scid: scid.ToUint64()}] = id

		return
	}
	s.makeEdge(from, to, scid)
}
