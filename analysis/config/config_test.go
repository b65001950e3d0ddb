package config

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cs-au-dk/ctxpta/analysis/heap"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	fn := filepath.Join("testdata", "object-parallel.yaml")
	cfg, err := Load(fn)
	require.NoError(t, err)

	require.Equal(t, fn, cfg.SourceFile())
	require.Equal(t, PolicyObject, cfg.Policy)
	require.True(t, cfg.Recency)
	require.Equal(t, DriverParallel, cfg.Driver)
	require.Equal(t, 4, cfg.Workers)
	require.True(t, cfg.CollapseCycles)
	require.True(t, cfg.NoColorize)
	require.True(t, cfg.Verbose())
	// Absent keys keep their defaults.
	require.Equal(t, 1, cfg.K)

	p := cfg.NewPolicy(heap.NewStore())
	rec, ok := p.(*heap.Recency)
	require.True(t, ok)
	require.IsType(t, &heap.ObjectSensitive{}, rec.Base())
}

func TestLoadRejectsInvalidFiles(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "bad-depth.yaml"))
	require.ErrorContains(t, err, "heap-depth (2) may not exceed k (1)")

	_, err = Load(filepath.Join("testdata", "missing.yaml"))
	require.ErrorContains(t, err, "could not read config file")
}

func TestParse(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	require.Equal(t, NewDefault(), cfg)

	tests := map[string]string{
		"unknown key":    "polcy: object\n",
		"unknown policy": "policy: 2-object\n",
		"unknown driver": "driver: magic\n",
		"negative k":     "k: -1\n",
		"workers":        "workers: -2\n",
		"max sweeps":     "max-sweeps: -1\n",
		"log level":      "log-level: 9\n",
		"not yaml":       "policy: [\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src))
			require.Error(t, err)
		})
	}
}

func TestNewPolicy(t *testing.T) {
	store := heap.NewStore()
	for policy, want := range map[string]heap.Policy{
		PolicyCallSite:    &heap.CallSiteSensitive{},
		PolicyObject:      &heap.ObjectSensitive{},
		PolicyType:        &heap.TypeSensitive{},
		PolicyInsensitive: &heap.Insensitive{},
	} {
		cfg := NewDefault()
		cfg.Policy = policy
		require.NoError(t, cfg.Validate())
		require.IsType(t, want, cfg.NewPolicy(store))
	}

	cfg := NewDefault()
	cfg.Policy = "nope"
	require.Panics(t, func() { cfg.NewPolicy(store) })
}

func TestLogGroupLevels(t *testing.T) {
	cfg := NewDefault()
	cfg.LogLevel = int(WarnLevel)
	cfg.NoColorize = true

	var buf bytes.Buffer
	l := NewLogGroup(cfg)
	l.SetAllOutput(&buf)

	l.Infof("hidden %d", 1)
	l.Warnf("unresolved call at %s", "main@1")
	require.False(t, l.LogsDebug())
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "unresolved call at main@1")
	require.Contains(t, buf.String(), "level=warning")
}

func TestWarnOnce(t *testing.T) {
	cfg := NewDefault()
	cfg.NoColorize = true

	var buf bytes.Buffer
	l := NewLogGroup(cfg)
	l.SetAllOutput(&buf)

	type site struct{ method, label string }
	for i := 0; i < 3; i++ {
		l.WarnOnce(site{"main", "1"}, "no target at %s", "main@1")
	}
	l.WarnOnce(site{"main", "2"}, "no target at %s", "main@2")

	require.Equal(t, 1, strings.Count(buf.String(), "no target at main@1"))
	require.Equal(t, 1, strings.Count(buf.String(), "no target at main@2"))
}
