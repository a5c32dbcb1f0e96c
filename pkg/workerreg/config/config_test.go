package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NilMap(t *testing.T) {
	cfg := New(nil)
	assert.False(t, cfg.Has("anything"))
	assert.Equal(t, "d", cfg.String("anything", "d"))
}

func TestAccessors(t *testing.T) {
	cfg := New(map[string]any{
		"name":     "carts",
		"size":     12,
		"size64":   int64(7),
		"sizeF":    float64(3),
		"fraction": 2.5,
		"on":       true,
		"timeout":  "250ms",
		"secs":     2,
		"secsF":    0.5,
		"dur":      time.Minute,
		"bad":      []int{1},
	})

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"string", cfg.String("name", ""), "carts"},
		{"string wrong type", cfg.String("size", "def"), "def"},
		{"int", cfg.Int("size", 0), 12},
		{"int64", cfg.Int("size64", 0), 7},
		{"whole float", cfg.Int("sizeF", 0), 3},
		{"fractional float", cfg.Int("fraction", 9), 9},
		{"bool", cfg.Bool("on", false), true},
		{"bool wrong type", cfg.Bool("name", true), true},
		{"duration string", cfg.Duration("timeout", 0), 250 * time.Millisecond},
		{"duration int seconds", cfg.Duration("secs", 0), 2 * time.Second},
		{"duration float seconds", cfg.Duration("secsF", 0), 500 * time.Millisecond},
		{"duration native", cfg.Duration("dur", 0), time.Minute},
		{"duration invalid", cfg.Duration("bad", time.Hour), time.Hour},
		{"missing", cfg.Int("missing", 42), 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestSection(t *testing.T) {
	cfg := New(map[string]any{
		"registry": map[string]any{"mailbox_size": 8},
		"flat":     "x",
	})

	assert.Equal(t, 8, cfg.Section("registry").Int("mailbox_size", 0))
	assert.False(t, cfg.Section("flat").Has("anything"))
	assert.False(t, cfg.Section("missing").Has("anything"))
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, 64, s.Registry.MailboxSize)
	assert.Equal(t, 16, s.Worker.MailboxSize)
	assert.Equal(t, 5*time.Second, s.Supervisor.ShutdownTimeout)
	assert.Equal(t, 0, s.Supervisor.MaxWorkers)
	assert.Empty(t, s.Registry.Journal)
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workerreg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
registry:
  mailbox_size: 128
  metrics: true
  journal: memory
supervisor:
  max_workers: 10
  shutdown_timeout: 2s
worker:
  default_ttl: 10m
  cleanup_interval: 1m
`), 0o600))

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 128, s.Registry.MailboxSize)
	assert.True(t, s.Registry.Metrics)
	assert.False(t, s.Registry.Tracing)
	assert.Equal(t, "memory", s.Registry.Journal)
	assert.Equal(t, 10, s.Supervisor.MaxWorkers)
	assert.Equal(t, 2*time.Second, s.Supervisor.ShutdownTimeout)
	assert.Equal(t, 16, s.Worker.MailboxSize)
	assert.Equal(t, 10*time.Minute, s.Worker.DefaultTTL)
	assert.Equal(t, time.Minute, s.Worker.CleanupInterval)
}

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workerreg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "registry": {"mailbox_size": 32, "tracing": true},
  "supervisor": {"max_workers": 3}
}`), 0o600))

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 32, s.Registry.MailboxSize)
	assert.True(t, s.Registry.Tracing)
	assert.Equal(t, 3, s.Supervisor.MaxWorkers)
}

func TestLoad_NegativeValuesFallBack(t *testing.T) {
	cfg, err := FromYAML([]byte("registry:\n  mailbox_size: -1\nsupervisor:\n  max_workers: -5\n"))
	require.NoError(t, err)

	s := Decode(cfg)
	assert.Equal(t, 64, s.Registry.MailboxSize)
	assert.Equal(t, 0, s.Supervisor.MaxWorkers)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	txt := filepath.Join(dir, "settings.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0o600))
	_, err = Load(txt)
	assert.ErrorContains(t, err, "unsupported extension")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("registry: [unclosed"), 0o600))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "parse yaml")

	badJSON := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badJSON, []byte("{"), 0o600))
	_, err = Load(badJSON)
	assert.ErrorContains(t, err, "parse json")
}
