// Package lnroute is an in-memory Lightning payment routing core: a channel
// graph fed by gossip, and a cheapest-route search over it.
//
// What is in the module?
//
//	• Routing State: arena-backed graph of nodes and directed channel edges,
//	  safe for one writer and many concurrent readers
//	• Gossip ingestion: channel announcements and updates into the State
//	• Path search: backward Dijkstra that accrues hop fees from the
//	  destination and weighs time-lock risk
//	• Reachability: breadth-first walks over eligible edges
//	• Router: cached, instrumented route queries for services
//	• routebench: seeded synthetic networks and a timing harness
//
// Everything is organized under these packages:
//
//	routing/         State, node and edge types, keys, read transactions
//	gossip/          Ingester for channel_announcement and channel_update
//	pathfind/        FindRoute, cost function, options and sentinel errors
//	reach/           BFS over active edges, forward or reverse
//	router/          Router with LRU cache and Prometheus metrics
//	simnet/          deterministic synthetic networks and query lists
//	config/          viper configuration with aggregated validation
//	logging/         zap logger construction
//	cmd/routebench   the benchmark command
//
// Quick ASCII example:
//
//	    A──10──▶B──10──▶D
//	    │               ▲
//	    └──5──▶C──30────┘
//
// pays D through B: 20 msat of fees beats 35.
//
//	go install github.com/katalvlaran/lnroute/cmd/routebench@latest
package lnroute
