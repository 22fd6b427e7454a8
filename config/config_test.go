package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STORE_BACKEND", BackendMemory)
	t.Setenv("LLM_PROVIDER", ProviderMock)
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("REDIS_URI", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("SUMMARY_WORKERS", "")
	t.Setenv("SUMMARY_CACHE_TTL", "")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, 30*time.Minute, cfg.SummaryCacheTTL)
	assert.Equal(t, 0, cfg.SummaryWorkers)
	assert.False(t, cfg.SummaryRefreshEnabled())
}

func TestSummaryRefreshEnabled(t *testing.T) {
	tests := []struct {
		name    string
		redis   string
		workers string
		want    bool
	}{
		{"workers without redis", "", "2", false},
		{"redis without workers", "localhost:6379", "", false},
		{"redis and workers", "localhost:6379", "2", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv("REDIS_ADDR", tt.redis)
			t.Setenv("SUMMARY_WORKERS", tt.workers)

			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.SummaryRefreshEnabled())
		})
	}
}

func TestLoad_BadNumber(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SUMMARY_WORKERS", "many")

	_, err := Load()
	assert.Error(t, err)
}
