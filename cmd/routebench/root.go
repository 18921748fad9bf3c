package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/katalvlaran/lnroute/config"
	"github.com/katalvlaran/lnroute/logging"
	"github.com/katalvlaran/lnroute/routing"
	"github.com/katalvlaran/lnroute/simnet"
)

// app is the state shared by subcommands once the root pre-run has loaded
// configuration and built the logger.
type app struct {
	cfgFile string
	v       *viper.Viper
	cfg     *config.Config
	log     *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:          "routebench",
		Short:        "Benchmark payment route search over a synthetic network",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default ./lnroute.yaml if present)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.Uint64("seed", 0, "random seed for the network and the queries")
	flags.Int("parallel", 0, "number of concurrent searches")

	root.AddCommand(newBenchCmd(a))
	root.AddCommand(newStatsCmd(a))

	return root
}

// init loads configuration with flag overrides and builds the logger.
func (a *app) init(cmd *cobra.Command) error {
	// 1. Defaults, environment and file.
	if err := config.Prepare(a.v, a.cfgFile); err != nil {
		return err
	}

	// 2. Flags win over everything, but only when set.
	for key, flag := range map[string]string{
		"log.level":      "log-level",
		"bench.seed":     "seed",
		"bench.parallel": "parallel",
	} {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			if err := a.v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("binding --%s: %w", flag, err)
			}
		}
	}

	// 3. Unmarshal and validate.
	cfg, err := config.Load(a.v)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	// 4. Logger.
	log, err := logging.NewWithWriter(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.log = log

	return nil
}

// network builds the seeded synthetic graph with n nodes and returns it with
// the generator positioned after population, so queries drawn from it follow
// the same stream.
func (a *app) network(n int) (*routing.State, *simnet.Rand, error) {
	chain, err := a.cfg.Routing.ChainHash()
	if err != nil {
		return nil, nil, err
	}
	s := routing.New(chain, simnet.NodeID(0), routing.WithKeyCodec(simnet.IndexCodec{}))
	rng := simnet.NewRand(a.cfg.Bench.Seed)
	simnet.Populate(s, n, rng)

	a.log.Debug("Built network",
		zap.Int("nodes", s.NodeCount()),
		zap.Int("edges", s.EdgeCount()),
		zap.Uint64("seed", a.cfg.Bench.Seed))

	return s, rng, nil
}
