// SPDX-License-Identifier: MIT

// Package config loads ensemble settings from defaults, an optional config
// file, a .env file and RECOM_* environment variables, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// ErrInvalidConfig indicates an out-of-range or unknown setting.
var ErrInvalidConfig = errors.New("config: invalid")

// EnvPrefix prefixes environment overrides: chain.epsilon ← RECOM_CHAIN_EPSILON.
const EnvPrefix = "RECOM"

// Config is a typed view over a viper instance.
type Config struct {
	v *viper.Viper
}

// New returns a Config holding only defaults and environment overrides.
func New() *Config {
	v := viper.New()

	v.SetDefault("chain.parts", 0)
	v.SetDefault("chain.epsilon", 0.40)
	v.SetDefault("chain.node_repeats", 50)
	v.SetDefault("chain.total_steps", 1000)
	v.SetDefault("chain.seed", 42)
	v.SetDefault("chain.method", "wilson")
	v.SetDefault("chain.target", "split_even")
	v.SetDefault("chain.pairs", "uniform")
	v.SetDefault("chain.progress_every", 100)
	v.SetDefault("chain.verify", false)
	v.SetDefault("chain.ideal", 0.0)

	v.SetDefault("partition.max_attempts", 10000)
	v.SetDefault("partition.attribute", "")
	v.SetDefault("partition.start_from_attribute", false)

	v.SetDefault("ensemble.runs", 1)
	v.SetDefault("ensemble.workers", runtime.NumCPU())
	v.SetDefault("ensemble.rank", 0)
	v.SetDefault("ensemble.size", 1)
	v.SetDefault("ensemble.strategy", "contiguous")

	v.SetDefault("input.graph", "")
	v.SetDefault("input.pop_attr", "pop")

	v.SetDefault("output.dir", "output")
	v.SetDefault("output.weighted_attr", "")
	v.SetDefault("output.redis_addr", "")
	v.SetDefault("output.redis_password", "")
	v.SetDefault("output.redis_db", 0)
	v.SetDefault("output.postgres_dsn", "")

	v.SetDefault("metrics.addr", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{v: v}
}

// Load reads envFile (if it exists) into the process environment, then
// configFile (if non-empty), and returns the validated Config.
func Load(envFile, configFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: %s: %w", envFile, err)
		}
	}
	c := New()
	if configFile != "" {
		if err := c.LoadFromFile(configFile); err != nil {
			return nil, err
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadFromFile merges a YAML/JSON/TOML file into c.
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	if err := c.v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	return nil
}

// Set overrides a key.
func (c *Config) Set(key string, value any) { c.v.Set(key, value) }

// Parts is chain.parts, the district count K; 0 means derive it from partition.attribute.
func (c *Config) Parts() int { return c.v.GetInt("chain.parts") }

// Epsilon is chain.epsilon, the allowed fractional deviation from the ideal population.
func (c *Config) Epsilon() float64 { return c.v.GetFloat64("chain.epsilon") }

// NodeRepeats is chain.node_repeats, the spanning trees drawn per proposal.
func (c *Config) NodeRepeats() int { return c.v.GetInt("chain.node_repeats") }

// TotalSteps is chain.total_steps, the transitions of every run.
func (c *Config) TotalSteps() int { return c.v.GetInt("chain.total_steps") }

// Seed is chain.seed, the base of every run's random stream.
func (c *Config) Seed() int64 { return c.v.GetInt64("chain.seed") }

// Method is chain.method: "wilson" or "random_mst".
func (c *Config) Method() string { return c.v.GetString("chain.method") }

// Target is chain.target: "split_even" or "ideal".
func (c *Config) Target() string { return c.v.GetString("chain.target") }

// Pairs is chain.pairs: "uniform" or "cut_edge".
func (c *Config) Pairs() string { return c.v.GetString("chain.pairs") }

// Ideal is chain.ideal, the per-part population target; 0 means total/K.
func (c *Config) Ideal() float64 { return c.v.GetFloat64("chain.ideal") }

// ProgressEvery is chain.progress_every; 0 disables progress lines.
func (c *Config) ProgressEvery() int { return c.v.GetInt("chain.progress_every") }

// Verify is chain.verify; it recomputes every accepted partition from scratch.
func (c *Config) Verify() bool { return c.v.GetBool("chain.verify") }

// MaxAttempts is partition.max_attempts, the tree budget per peeled part.
func (c *Config) MaxAttempts() int { return c.v.GetInt("partition.max_attempts") }

// PlanAttribute is partition.attribute, a unit attribute holding an existing plan.
func (c *Config) PlanAttribute() string { return c.v.GetString("partition.attribute") }

// StartFromPlan is partition.start_from_attribute; when set, runs start from
// the PlanAttribute plan instead of a fresh recursive seed.
func (c *Config) StartFromPlan() bool { return c.v.GetBool("partition.start_from_attribute") }

// Runs is ensemble.runs, the total runs shared by all workers.
func (c *Config) Runs() int { return c.v.GetInt("ensemble.runs") }

// Workers is ensemble.workers, the concurrent chains of this process.
func (c *Config) Workers() int { return c.v.GetInt("ensemble.workers") }

// Rank is ensemble.rank, this process's 0-based position among Size.
func (c *Config) Rank() int { return c.v.GetInt("ensemble.rank") }

// Size is ensemble.size, the number of processes sharing Runs.
func (c *Config) Size() int { return c.v.GetInt("ensemble.size") }

// Strategy is ensemble.strategy: "contiguous" or "round_robin".
func (c *Config) Strategy() string { return c.v.GetString("ensemble.strategy") }

// GraphPath is input.graph, the networkx JSON file.
func (c *Config) GraphPath() string { return c.v.GetString("input.graph") }

// PopAttr is input.pop_attr, the population attribute of each unit.
func (c *Config) PopAttr() string { return c.v.GetString("input.pop_attr") }

// OutputDir is output.dir, where the CSV sink writes.
func (c *Config) OutputDir() string { return c.v.GetString("output.dir") }

// WeightedAttr is output.weighted_attr, a numeric unit attribute whose
// population-weighted mean per part is persisted; empty disables it.
func (c *Config) WeightedAttr() string { return c.v.GetString("output.weighted_attr") }

// RedisAddr is output.redis_addr; empty disables the Redis sink.
func (c *Config) RedisAddr() string { return c.v.GetString("output.redis_addr") }

// RedisPassword is output.redis_password.
func (c *Config) RedisPassword() string { return c.v.GetString("output.redis_password") }

// RedisDB is output.redis_db.
func (c *Config) RedisDB() int { return c.v.GetInt("output.redis_db") }

// PostgresDSN is output.postgres_dsn; empty disables the Postgres sink.
func (c *Config) PostgresDSN() string { return c.v.GetString("output.postgres_dsn") }

// MetricsAddr is metrics.addr; empty disables the HTTP server.
func (c *Config) MetricsAddr() string { return c.v.GetString("metrics.addr") }

// LogLevel is logging.level, a zerolog level name.
func (c *Config) LogLevel() string { return c.v.GetString("logging.level") }

// LogFormat is logging.format: "console" or "json".
func (c *Config) LogFormat() string { return c.v.GetString("logging.format") }

// Validate checks ranges and enumerations. Every violation is reported,
// each wrapping ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("config: "+format+": %w", append(args, ErrInvalidConfig)...))
	}

	if c.Parts() < 0 {
		bad("chain.parts=%d < 0", c.Parts())
	}
	if c.Parts() == 0 && c.PlanAttribute() == "" {
		bad("chain.parts unset and no partition.attribute to derive it from")
	}
	if c.Ideal() < 0 {
		bad("chain.ideal=%v < 0", c.Ideal())
	}
	if c.StartFromPlan() && c.PlanAttribute() == "" {
		bad("partition.start_from_attribute set without partition.attribute")
	}
	if e := c.Epsilon(); e < 0 || e >= 1 {
		bad("chain.epsilon=%v outside [0,1)", e)
	}
	if c.NodeRepeats() < 1 {
		bad("chain.node_repeats=%d < 1", c.NodeRepeats())
	}
	if c.TotalSteps() < 0 {
		bad("chain.total_steps=%d < 0", c.TotalSteps())
	}
	if c.MaxAttempts() < 1 {
		bad("partition.max_attempts=%d < 1", c.MaxAttempts())
	}
	oneOf := func(key, val string, allowed ...string) {
		for _, a := range allowed {
			if val == a {
				return
			}
		}
		bad("%s=%q not in %v", key, val, allowed)
	}
	oneOf("chain.method", c.Method(), "wilson", "random_mst")
	oneOf("chain.target", c.Target(), "split_even", "ideal")
	oneOf("chain.pairs", c.Pairs(), "uniform", "cut_edge")
	oneOf("ensemble.strategy", c.Strategy(), "contiguous", "round_robin")
	oneOf("logging.format", c.LogFormat(), "console", "json")

	if c.Runs() < 1 {
		bad("ensemble.runs=%d < 1", c.Runs())
	}
	if c.Workers() < 1 {
		bad("ensemble.workers=%d < 1", c.Workers())
	}
	if c.Size() < 1 || c.Rank() < 0 || c.Rank() >= c.Size() {
		bad("ensemble.rank=%d outside [0,%d)", c.Rank(), c.Size())
	}
	if _, err := zerolog.ParseLevel(c.LogLevel()); err != nil {
		bad("logging.level=%q", c.LogLevel())
	}

	return errors.Join(errs...)
}

// Logger builds the process logger from logging.level and logging.format.
func (c *Config) Logger(out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	w := out
	if c.LogFormat() != "json" {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Str("service", "recom").Logger()
}
