package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultConfigName = "config"
	envPrefix         = "WZC"
)

type Config struct {
	CacheDir string
	TempDir  string

	GitHubToken      string
	GitHubRepository string
	// GitHubAPIURL is empty for api.github.com.
	GitHubAPIURL    string
	DownloadTimeout time.Duration

	ReleaseGraceDays int
	StoreGraceDays   int

	DevSupportedBuilds int
	DevBranch          string

	Distributor         string
	StorePackagePattern string
	Platforms           []string

	LegacyNetcodeMajor string
	DevNetcodeMajor    string
	UnsupportedNote    string

	ValidFor time.Duration

	ReleaseUpdateLink string
	StoreUpdateLink   string
	DevUpdateLink     string
	CompatInfoLink    string
	SiteURL           string

	// JournalPath enables the NDJSON run journal when set.
	JournalPath string
	LogLevel    string
}

// Load reads config/config.yaml (optional) and WZC_* environment overrides.
func Load() (Config, error) {
	return LoadFrom(viper.New())
}

// LoadFrom resolves configuration from v after applying defaults.
func LoadFrom(v *viper.Viper) (Config, error) {
	v.SetConfigName(defaultConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("config")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The CI environment exposes the token under its conventional name.
	_ = v.BindEnv("github.token", envPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN")

	v.SetDefault("cache.dir", "_data")
	v.SetDefault("temp.dir", "_tmp")

	v.SetDefault("github.token", "")
	v.SetDefault("github.repository", "Warzone2100/warzone2100")
	v.SetDefault("github.api_url", "")
	v.SetDefault("github.download_timeout", "10m")

	v.SetDefault("grace.release_days", 2)
	v.SetDefault("grace.store_days", 7)

	v.SetDefault("dev.supported_builds", 30)
	v.SetDefault("dev.branch", "master")

	v.SetDefault("distributor", "wz2100.net")
	v.SetDefault("store.package_pattern", "^48148WZ2100Project.Warzone2100forWindows_.*$")
	v.SetDefault("platforms", []string{"Windows", "Mac OS X", "Linux", ".*"})

	v.SetDefault("netcode.legacy_major", "0x1000")
	v.SetDefault("netcode.dev_major", "0x10a0")
	v.SetDefault("lobby.unsupported_note", "3.1.5 & 3.2.3 are unsupported!")

	v.SetDefault("output.valid_for", "25h")

	v.SetDefault("links.release_update", "https://wz2100.net/?platform={{PLATFORM}}")
	v.SetDefault("links.store_update", "https://wz2100.net/?platform={{PLATFORM}}")
	v.SetDefault("links.dev_update", "https://github.com/Warzone2100/warzone2100/blob/master/README.md#latest-development-builds")
	v.SetDefault("links.compat_info", "https://wz2100.net/compat/steamoverlay/?platform={{PLATFORM}}")
	v.SetDefault("links.site", "https://wz2100.net")

	v.SetDefault("telemetry.journal_path", "")
	v.SetDefault("log.level", "info")

	// Config file is optional; env-only is fine.
	_ = v.ReadInConfig()

	cfg := Config{
		CacheDir:            v.GetString("cache.dir"),
		TempDir:             v.GetString("temp.dir"),
		GitHubToken:         strings.TrimSpace(v.GetString("github.token")),
		GitHubRepository:    strings.TrimSpace(v.GetString("github.repository")),
		GitHubAPIURL:        strings.TrimSpace(v.GetString("github.api_url")),
		DownloadTimeout:     v.GetDuration("github.download_timeout"),
		ReleaseGraceDays:    v.GetInt("grace.release_days"),
		StoreGraceDays:      v.GetInt("grace.store_days"),
		DevSupportedBuilds:  v.GetInt("dev.supported_builds"),
		DevBranch:           strings.TrimSpace(v.GetString("dev.branch")),
		Distributor:         strings.TrimSpace(v.GetString("distributor")),
		StorePackagePattern: v.GetString("store.package_pattern"),
		Platforms:           v.GetStringSlice("platforms"),
		LegacyNetcodeMajor:  strings.TrimSpace(v.GetString("netcode.legacy_major")),
		DevNetcodeMajor:     strings.TrimSpace(v.GetString("netcode.dev_major")),
		UnsupportedNote:     v.GetString("lobby.unsupported_note"),
		ValidFor:            v.GetDuration("output.valid_for"),
		ReleaseUpdateLink:   v.GetString("links.release_update"),
		StoreUpdateLink:     v.GetString("links.store_update"),
		DevUpdateLink:       v.GetString("links.dev_update"),
		CompatInfoLink:      v.GetString("links.compat_info"),
		SiteURL:             v.GetString("links.site"),
		JournalPath:         strings.TrimSpace(v.GetString("telemetry.journal_path")),
		LogLevel:            strings.ToLower(strings.TrimSpace(v.GetString("log.level"))),
	}

	if strings.TrimSpace(cfg.CacheDir) == "" {
		return Config{}, fmt.Errorf("cache.dir must not be empty")
	}
	if strings.TrimSpace(cfg.TempDir) == "" {
		return Config{}, fmt.Errorf("temp.dir must not be empty")
	}
	if owner, repo, ok := strings.Cut(cfg.GitHubRepository, "/"); !ok || owner == "" || repo == "" {
		return Config{}, fmt.Errorf("invalid github.repository %q (want owner/name)", cfg.GitHubRepository)
	}
	if cfg.ReleaseGraceDays < 0 {
		return Config{}, fmt.Errorf("invalid grace.release_days %d", cfg.ReleaseGraceDays)
	}
	if cfg.StoreGraceDays < 0 {
		return Config{}, fmt.Errorf("invalid grace.store_days %d", cfg.StoreGraceDays)
	}
	if cfg.DevSupportedBuilds <= 0 {
		return Config{}, fmt.Errorf("invalid dev.supported_builds %d", cfg.DevSupportedBuilds)
	}
	if cfg.DevBranch == "" {
		return Config{}, fmt.Errorf("dev.branch must not be empty")
	}
	if cfg.LegacyNetcodeMajor == "" || cfg.DevNetcodeMajor == "" {
		return Config{}, fmt.Errorf("netcode.legacy_major and netcode.dev_major must not be empty")
	}
	if cfg.ValidFor <= 0 {
		return Config{}, fmt.Errorf("invalid output.valid_for %s", cfg.ValidFor)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("invalid log.level %q", cfg.LogLevel)
	}
	return cfg, nil
}
