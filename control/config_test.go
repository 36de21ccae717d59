package control

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/fdreactor/api"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigTOML(t *testing.T) {
	path := writeFile(t, "reactor.toml", `
backend = "select"
sweep_policy = "abandon"
retry_interrupted = false
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, BackendSelect, cfg.Backend)
	assert.Equal(t, SweepAbandon, cfg.SweepPolicy)
	assert.False(t, cfg.RetryInterrupted)
	assert.Equal(t, "info", cfg.LogLevel, "unset keys keep defaults")
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeFile(t, "reactor.yaml", "backend: POLL\nlog_level: debug\nlog_format: json\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, BackendPoll, cfg.Backend)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.RetryInterrupted)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, "reactor.ini", "backend=poll"))
	assert.ErrorIs(t, err, api.ErrNotSupported)

	_, err = LoadConfig(writeFile(t, "reactor.toml", `backend = "kqueue"`))
	assert.ErrorIs(t, err, api.ErrInvalidArgument)

	_, err = LoadConfig(writeFile(t, "reactor.yml", "backend: [poll"))
	assert.Error(t, err)
}

func TestDigest(t *testing.T) {
	a := DefaultConfig()
	b := DefaultConfig()
	assert.Equal(t, a.Digest(), b.Digest())
	assert.Contains(t, a.Digest(), "blake3:")

	b.Backend = BackendSelect
	assert.NotEqual(t, a.Digest(), b.Digest())
}

func TestMetricsRegistry(t *testing.T) {
	mr := NewMetricsRegistry()
	assert.Equal(t, int64(3), mr.Add("sweeps", 3))
	assert.Equal(t, int64(5), mr.Add("sweeps", 2))
	assert.Equal(t, int64(5), mr.Counter("sweeps"))
	assert.Zero(t, mr.Counter("missing"))
	assert.False(t, mr.Updated().IsZero())

	mr.Set("backend", "poll")
	snap := mr.GetSnapshot()
	assert.Equal(t, "poll", snap["backend"])
	snap["backend"] = "select"
	v, _ := mr.Get("backend")
	assert.Equal(t, "poll", v, "snapshot is a copy")
}

func TestDebugProbes(t *testing.T) {
	dp := NewDebugProbes()
	RegisterPlatformProbes(dp)
	dp.RegisterProbe("answer", func() any { return 42 })

	state := dp.DumpState()
	assert.Equal(t, 42, state["answer"])
	assert.Contains(t, dp.Names(), "platform.cpus")

	dp.UnregisterProbe("answer")
	assert.NotContains(t, dp.Names(), "answer")
}
