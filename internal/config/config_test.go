package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("GITHUB_TOKEN", "")

	cfg, err := LoadFrom(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "_data", cfg.CacheDir)
	assert.Equal(t, 2, cfg.ReleaseGraceDays)
	assert.Equal(t, 7, cfg.StoreGraceDays)
	assert.Equal(t, 30, cfg.DevSupportedBuilds)
	assert.Equal(t, 25*time.Hour, cfg.ValidFor)
	assert.Equal(t, []string{"Windows", "Mac OS X", "Linux", ".*"}, cfg.Platforms)
	assert.Equal(t, "0x10a0", cfg.DevNetcodeMajor)
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("WZC_GRACE_STORE_DAYS", "14")
	t.Setenv("WZC_CACHE_DIR", "/var/cache/wz")
	t.Setenv("GITHUB_TOKEN", "tok")

	cfg, err := LoadFrom(viper.New())
	require.NoError(t, err)
	assert.Equal(t, 14, cfg.StoreGraceDays)
	assert.Equal(t, 2, cfg.ReleaseGraceDays)
	assert.Equal(t, "/var/cache/wz", cfg.CacheDir)
	assert.Equal(t, "tok", cfg.GitHubToken)
}

func TestLoadFrom_Invalid(t *testing.T) {
	chdir(t, t.TempDir())
	cases := map[string]string{
		"WZC_GITHUB_REPOSITORY":   "warzone2100",
		"WZC_GRACE_RELEASE_DAYS":  "-1",
		"WZC_DEV_SUPPORTED_BUILDS": "0",
		"WZC_LOG_LEVEL":           "loud",
	}
	for k, val := range cases {
		t.Run(k, func(t *testing.T) {
			t.Setenv(k, val)
			_, err := LoadFrom(viper.New())
			assert.Error(t, err)
		})
	}
}
