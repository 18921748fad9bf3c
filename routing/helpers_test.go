// Package routing_test holds shared fixtures for the routing tests.
package routing_test

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/katalvlaran/lnroute/routing"
)

// generatorKey is the compressed secp256k1 generator point, a valid key.
const generatorKey = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"

// nodeID returns a synthetic identity ordered by n under the default codec.
func nodeID(n byte) routing.NodeID {
	var id routing.NodeID
	id[0] = 0x02
	id[32] = n

	return id
}

// newState returns an empty graph whose local node is nodeID(0).
func newState() *routing.State {
	return routing.New(chainhash.Hash{}, nodeID(0))
}
