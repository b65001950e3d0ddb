// Package config holds the settings of a points-to analysis run and the
// logging facilities shared by the analysis packages.
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/cs-au-dk/ctxpta/analysis/heap"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Context-sensitivity policies.
const (
	PolicyCallSite    = "call-site"
	PolicyObject      = "object"
	PolicyType        = "type"
	PolicyInsensitive = "insensitive"
)

// Fixed-point drivers.
const (
	DriverNaive    = "naive"
	DriverWorklist = "worklist"
	DriverParallel = "parallel"
)

// Config is the configuration of one analysis run. Fields are populated
// from yaml; the source file is recorded by Load.
type Config struct {
	sourceFile string

	// Policy is the context-sensitivity policy, one of the Policy* constants.
	Policy string `yaml:"policy"`

	// K is the call string length of call-site sensitivity.
	K int `yaml:"k"`

	// HeapDepth is the number of call sites kept in heap contexts. It may
	// not exceed K.
	HeapDepth int `yaml:"heap-depth"`

	// Recency decorates the policy with recency tracking of allocations.
	Recency bool `yaml:"recency"`

	// Driver selects the fixed-point driver, one of the Driver* constants.
	Driver string `yaml:"driver"`

	// Workers bounds the goroutines of the parallel driver. Zero means one
	// worker per available CPU.
	Workers int `yaml:"workers"`

	// MaxSweeps bounds the number of sweeps of the naive driver. Zero means
	// unbounded.
	MaxSweeps int `yaml:"max-sweeps"`

	// CollapseCycles merges nodes on cycles of unconditional copies.
	CollapseCycles bool `yaml:"collapse-cycles"`

	LogLevel int `yaml:"log-level"`

	NoColorize bool `yaml:"no-colorize"`
}

// NewDefault returns the default configuration: 1-call-site sensitivity
// solved with the worklist driver.
func NewDefault() *Config {
	return &Config{
		Policy:    PolicyCallSite,
		K:         1,
		HeapDepth: 1,
		Driver:    DriverWorklist,
		LogLevel:  int(InfoLevel),
	}
}

// Load reads a configuration from a yaml file. Keys that are absent keep
// their default value; unknown keys are rejected.
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "could not read config file")
	}

	cfg, err := Parse(b)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid config file %s", filename)
	}
	cfg.sourceFile = filename
	return cfg, nil
}

// Parse decodes and validates a yaml configuration.
func Parse(b []byte) (*Config, error) {
	cfg := NewDefault()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	// An empty document decodes to io.EOF and leaves the defaults.
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "could not unmarshal config")
	}

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SourceFile is the file the configuration was loaded from, if any.
func (c *Config) SourceFile() string {
	return c.sourceFile
}

// Validate checks that the configuration describes a runnable analysis.
func (c *Config) Validate() error {
	switch c.Policy {
	case PolicyCallSite:
		if c.K < 0 || c.HeapDepth < 0 {
			return errors.Errorf("k (%d) and heap-depth (%d) must be non-negative", c.K, c.HeapDepth)
		}
		if c.HeapDepth > c.K {
			return errors.Errorf("heap-depth (%d) may not exceed k (%d)", c.HeapDepth, c.K)
		}
	case PolicyObject, PolicyType, PolicyInsensitive:
	default:
		return errors.Errorf("unknown policy %q", c.Policy)
	}

	switch c.Driver {
	case DriverNaive, DriverWorklist, DriverParallel:
	default:
		return errors.Errorf("unknown driver %q", c.Driver)
	}

	if c.Workers < 0 {
		return errors.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	if c.MaxSweeps < 0 {
		return errors.Errorf("max-sweeps must be non-negative, got %d", c.MaxSweeps)
	}
	if c.LogLevel < int(ErrLevel) || c.LogLevel > int(TraceLevel) {
		return errors.Errorf("log-level must be between %d and %d, got %d", ErrLevel, TraceLevel, c.LogLevel)
	}
	return nil
}

// NewPolicy creates the configured context-sensitivity policy, interning
// its values into store.
func (c *Config) NewPolicy(store *heap.Store) heap.Policy {
	var p heap.Policy
	switch c.Policy {
	case PolicyCallSite:
		p = heap.NewCallSiteSensitive(store, c.K, c.HeapDepth)
	case PolicyObject:
		p = heap.NewObjectSensitive(store)
	case PolicyType:
		p = heap.NewTypeSensitive(store)
	case PolicyInsensitive:
		p = heap.NewInsensitive(store)
	default:
		panic(errors.Errorf("unknown policy %q", c.Policy))
	}

	if c.Recency {
		p = heap.NewRecency(p)
	}
	return p
}

// Verbose returns true is the configuration verbosity setting is larger than Info (i.e. Debug or Trace)
func (c *Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}
