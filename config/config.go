// Package config holds the routebench and router configuration, loaded
// through viper from defaults, an optional YAML file and LNROUTE_* variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// EnvPrefix is prepended to every environment override, with dots in the key
// replaced by underscores: LNROUTE_ROUTING_MAX_HOPS.
const EnvPrefix = "LNROUTE"

// ErrInvalid is wrapped by every problem Validate reports.
var ErrInvalid = errors.New("config: invalid value")

// Config is the root configuration structure.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Routing RoutingConfig `mapstructure:"routing"`
	Bench   BenchConfig   `mapstructure:"bench"`
}

// LogConfig configures the zap logger built by the logging package.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // "console" or "json"
	Name       string `mapstructure:"name"`
	File       string `mapstructure:"file"` // optional rotated JSON sink
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// RoutingConfig configures the routing state and the search.
type RoutingConfig struct {
	// Network selects the chain whose genesis hash identifies the graph:
	// none, mainnet, testnet3, regtest, simnet or signet.
	Network        string  `mapstructure:"network"`
	MaxHops        int     `mapstructure:"max_hops"`
	MaxExplored    int     `mapstructure:"max_explored"`
	CacheSize      int     `mapstructure:"cache_size"`
	AnnualRiskRate float64 `mapstructure:"annual_risk_rate"`
}

// BenchConfig configures the synthetic benchmark.
type BenchConfig struct {
	Nodes    int    `mapstructure:"nodes"`
	Runs     int    `mapstructure:"runs"`
	Seed     uint64 `mapstructure:"seed"`
	Parallel int    `mapstructure:"parallel"`
}

// SetDefaults registers every key with its default value. Keys must be known
// to viper for environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.name", "lnroute")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("log.compress", false)

	v.SetDefault("routing.network", "none")
	v.SetDefault("routing.max_hops", 20)
	v.SetDefault("routing.max_explored", 0)
	v.SetDefault("routing.cache_size", 1024)
	v.SetDefault("routing.annual_risk_rate", 0.01)

	v.SetDefault("bench.nodes", 100)
	v.SetDefault("bench.runs", 1)
	v.SetDefault("bench.seed", 1)
	v.SetDefault("bench.parallel", 1)
}

// Prepare sets defaults, enables LNROUTE_* overrides and reads file when it
// is non-empty. Without a file, ./lnroute.yaml is read if present.
func Prepare(v *viper.Viper, file string) error {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config: reading %s: %w", file, err)
		}
		return nil
	}

	v.AddConfigPath(".")
	v.SetConfigName("lnroute")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("config: %w", err)
		}
	}

	return nil
}

// Load unmarshals v and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration produced by SetDefaults alone.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := Load(v)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var err error
	invalid := func(format string, args ...interface{}) {
		err = multierr.Append(err, fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalid}, args...)...))
	}

	switch c.Log.Format {
	case "console", "json":
	default:
		invalid("log.format %q (want console or json)", c.Log.Format)
	}
	if c.Log.MaxSize < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAge < 0 {
		invalid("log rotation limits must be non-negative")
	}

	if _, ok := networks[c.Routing.Network]; !ok {
		invalid("routing.network %q", c.Routing.Network)
	}
	if c.Routing.MaxHops < 1 {
		invalid("routing.max_hops %d (want ≥ 1)", c.Routing.MaxHops)
	}
	if c.Routing.MaxExplored < 0 {
		invalid("routing.max_explored %d (want ≥ 0)", c.Routing.MaxExplored)
	}
	if c.Routing.CacheSize < 0 {
		invalid("routing.cache_size %d (want ≥ 0)", c.Routing.CacheSize)
	}
	if c.Routing.AnnualRiskRate < 0 {
		invalid("routing.annual_risk_rate %v (want ≥ 0)", c.Routing.AnnualRiskRate)
	}

	if c.Bench.Nodes < 1 {
		invalid("bench.nodes %d (want ≥ 1)", c.Bench.Nodes)
	}
	if c.Bench.Runs < 0 {
		invalid("bench.runs %d (want ≥ 0)", c.Bench.Runs)
	}
	if c.Bench.Parallel < 1 {
		invalid("bench.parallel %d (want ≥ 1)", c.Bench.Parallel)
	}

	return err
}

// networks maps a network name to its chain parameters; "none" is the zero
// hash used by synthetic graphs.
var networks = map[string]*chaincfg.Params{
	"none":     nil,
	"mainnet":  &chaincfg.MainNetParams,
	"testnet3": &chaincfg.TestNet3Params,
	"regtest":  &chaincfg.RegressionNetParams,
	"simnet":   &chaincfg.SimNetParams,
	"signet":   &chaincfg.SigNetParams,
}

// ChainHash returns the genesis hash of the configured network.
func (r RoutingConfig) ChainHash() (chainhash.Hash, error) {
	params, ok := networks[r.Network]
	if !ok {
		return chainhash.Hash{}, fmt.Errorf("%w: routing.network %q", ErrInvalid, r.Network)
	}
	if params == nil {
		return chainhash.Hash{}, nil
	}

	return *params.GenesisHash, nil
}
