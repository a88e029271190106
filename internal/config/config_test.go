package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaults_DerivesDriverFromBuildTarget(t *testing.T) {
	cases := []struct {
		target string
		want   string
	}{
		{"local", "sqlite"},
		{"cloud-dev", "postgres"},
		{"cloud", "postgres"},
	}
	for _, tc := range cases {
		cfg := &Config{BuildTarget: tc.target, DBDriver: "auto", UpdateMaxRetries: 5}
		require.NoError(t, cfg.ResolveDefaults(), "target=%s", tc.target)
		assert.Equal(t, tc.want, cfg.DBDriver, "target=%s", tc.target)
	}
}

func TestResolveDefaults_ExplicitDriverWins(t *testing.T) {
	cfg := &Config{BuildTarget: "cloud-dev", DBDriver: "memory", UpdateMaxRetries: 5}
	require.NoError(t, cfg.ResolveDefaults())
	assert.Equal(t, "memory", cfg.DBDriver)
}

func TestResolveDefaults_RejectsUnknownTarget(t *testing.T) {
	cfg := &Config{BuildTarget: "mainframe", DBDriver: "auto", UpdateMaxRetries: 5}
	assert.Error(t, cfg.ResolveDefaults())
}

func TestResolveDefaults_RejectsUnknownDriver(t *testing.T) {
	cfg := &Config{BuildTarget: "local", DBDriver: "oracle", UpdateMaxRetries: 5}
	assert.Error(t, cfg.ResolveDefaults())
}

func TestResolveDefaults_RejectsNonPositiveRetries(t *testing.T) {
	cfg := &Config{BuildTarget: "local", DBDriver: "auto", UpdateMaxRetries: 0}
	assert.Error(t, cfg.ResolveDefaults())
}

func TestNew_ParsesEnvironment(t *testing.T) {
	t.Setenv("GAMING_TWIN_BUILD_TARGET", "local")
	t.Setenv("GAMING_TWIN_HTTP_PORT", "9191")
	t.Setenv("GAMING_TWIN_UPDATE_MAX_RETRIES", "3")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.BuildTarget)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 9191, cfg.HTTPPort)
	assert.Equal(t, 3, cfg.UpdateMaxRetries)
	assert.Equal(t, ":9191", cfg.GetHTTPAddr())
}

func TestNewForTesting(t *testing.T) {
	cfg := NewForTesting()
	assert.True(t, cfg.IsTesting())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "memory", cfg.DBDriver)
}
