// Command routebench builds a synthetic payment network and measures how fast
// routes are found across it.
//
//	routebench bench [num_nodes [num_runs]]
//	routebench stats [num_nodes]
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
