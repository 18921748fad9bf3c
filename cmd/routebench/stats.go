package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/lnroute/reach"
	"github.com/katalvlaran/lnroute/routing"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [num_nodes]",
		Short: "Print the shape and connectivity of the seeded network",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nodes := a.cfg.Bench.Nodes
			if len(args) > 0 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("num_nodes %q: want a positive integer", args[0])
				}
				nodes = n
			}

			s, _, err := a.network(nodes)
			if err != nil {
				return err
			}

			return printStats(cmd, s)
		},
	}
}

// printStats reports node and edge counts and how much of the graph the
// local node can pay into and receive from.
func printStats(cmd *cobra.Command, s *routing.State) error {
	ctx := cmd.Context()
	self := s.Self()

	out, err := reach.BFS(s, self, reach.WithContext(ctx))
	if err != nil {
		return err
	}
	in, err := reach.BFS(s, self, reach.WithContext(ctx), reach.WithReverse())
	if err != nil {
		return err
	}

	var depth int
	for _, d := range out.Depth {
		if d > depth {
			depth = d
		}
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "nodes: %d\n", s.NodeCount())
	fmt.Fprintf(w, "edges: %d\n", s.EdgeCount())
	fmt.Fprintf(w, "reachable from %s: %d\n", s.Codec().Format(self), len(out.Order))
	fmt.Fprintf(w, "reaching %s: %d\n", s.Codec().Format(self), len(in.Order))
	fmt.Fprintf(w, "max hops from %s: %d\n", s.Codec().Format(self), depth)

	return nil
}
