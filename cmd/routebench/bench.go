package main

import (
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/lnroute/pathfind"
	"github.com/katalvlaran/lnroute/router"
	"github.com/katalvlaran/lnroute/simnet"
)

func newBenchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bench [num_nodes [num_runs]]",
		Short: "Time random route searches over a seeded network",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			nodes, runs, err := benchArgs(a, args)
			if err != nil {
				return err
			}

			return a.bench(cmd, nodes, runs, clock.New())
		},
	}
}

// benchArgs overrides the configured sizes with positional arguments.
func benchArgs(a *app, args []string) (nodes, runs int, err error) {
	nodes, runs = a.cfg.Bench.Nodes, a.cfg.Bench.Runs
	if len(args) > 0 {
		if nodes, err = strconv.Atoi(args[0]); err != nil || nodes < 1 {
			return 0, 0, fmt.Errorf("num_nodes %q: want a positive integer", args[0])
		}
	}
	if len(args) > 1 {
		if runs, err = strconv.Atoi(args[1]); err != nil || runs < 0 {
			return 0, 0, fmt.Errorf("num_runs %q: want a non-negative integer", args[1])
		}
	}

	return nodes, runs, nil
}

// bench builds the network, runs the queries through a Router and prints one
// summary line.
func (a *app) bench(cmd *cobra.Command, nodes, runs int, clk clock.Clock) error {
	s, rng, err := a.network(nodes)
	if err != nil {
		return err
	}
	queries := simnet.Queries(rng, nodes, runs)

	// The cache would answer repeated queries without searching.
	cfg := router.ConfigFrom(a.cfg.Routing)
	cfg.CacheSize = 0
	r, err := router.New(s, cfg, router.WithLogger(a.log), router.WithClock(clk))
	if err != nil {
		return err
	}
	riskFactor := pathfind.AnnualRiskFactor(a.cfg.Routing.AnnualRiskRate)

	var succeeded atomic.Int64
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(a.cfg.Bench.Parallel)

	start := clk.Now()
	for i := range queries {
		q := queries[i]
		g.Go(func() error {
			_, err := r.FindRoute(ctx, router.Request{
				Source:      &q.From,
				Destination: q.To,
				Amount:      q.Amount,
				RiskFactor:  riskFactor,
			})
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, pathfind.ErrNoRoute),
				errors.Is(err, pathfind.ErrInvalidAmount),
				errors.Is(err, pathfind.ErrSearchExhausted):
			default:
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := clk.Since(start)

	var perRoute int64
	if runs > 0 {
		perRoute = elapsed.Nanoseconds() / int64(runs)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d (%d succeeded) routes in %d nodes in %d msec (%d nanoseconds per route)\n",
		runs, succeeded.Load(), nodes, elapsed.Milliseconds(), perRoute)

	a.log.Info("Benchmark finished",
		zap.Int("nodes", nodes),
		zap.Int("runs", runs),
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int("parallel", a.cfg.Bench.Parallel),
		zap.Duration("elapsed", elapsed))

	return nil
}
