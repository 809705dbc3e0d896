package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Prakashmoharana1985/O-RAN/internal/config"
	"github.com/Prakashmoharana1985/O-RAN/internal/node"
)

// infocoordctl config.toml key mapping to node runtime settings.
type fileConfig struct {
	ID                     string  `toml:"id"`
	HTTPListenAddr         string  `toml:"http_listen_addr"`
	DatabasePath           string  `toml:"database_path"`
	RicConfigPath          string  `toml:"ric_config_path"`
	WatchRicConfig         bool    `toml:"watch_ric_config"`
	SupervisionSchedule    string  `toml:"supervision_schedule"`
	SupervisionMaxFailures int     `toml:"supervision_max_failures"`
	ServiceExpirySchedule  string  `toml:"service_expiry_schedule"`
	JobPushAttempts        uint    `toml:"job_push_attempts"`
	RemoteTimeoutMS        int64   `toml:"remote_timeout_ms"`
	RemoteRateLimit        float64 `toml:"remote_rate_limit"`
	RemoteRateBurst        int     `toml:"remote_rate_burst"`
	NotifyConcurrency      int     `toml:"notify_concurrency"`
	APIToken               string  `toml:"api_token"`
}

// loadNodeConfig overlays the keys present in path onto node defaults.
// Relative database and RIC paths resolve against the config file directory.
func loadNodeConfig(path string) (node.Config, error) {
	cfg := node.DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return node.Config{}, fmt.Errorf("load infocoord config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return node.Config{}, fmt.Errorf("load infocoord config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("id") {
		cfg.ID = strings.TrimSpace(raw.ID)
	}
	if meta.IsDefined("http_listen_addr") {
		cfg.HTTPListenAddr = strings.TrimSpace(raw.HTTPListenAddr)
	}
	if meta.IsDefined("database_path") {
		cfg.DatabasePath = config.ResolvePath(path, raw.DatabasePath)
	}
	if meta.IsDefined("ric_config_path") {
		cfg.RicConfigPath = config.ResolvePath(path, raw.RicConfigPath)
	}
	if meta.IsDefined("watch_ric_config") {
		cfg.WatchRicConfig = raw.WatchRicConfig
	}
	if meta.IsDefined("supervision_schedule") {
		cfg.SupervisionSchedule = strings.TrimSpace(raw.SupervisionSchedule)
	}
	if meta.IsDefined("supervision_max_failures") {
		cfg.SupervisionMaxFailures = raw.SupervisionMaxFailures
	}
	if meta.IsDefined("service_expiry_schedule") {
		cfg.ServiceExpirySchedule = strings.TrimSpace(raw.ServiceExpirySchedule)
	}
	if meta.IsDefined("job_push_attempts") {
		cfg.JobPushAttempts = raw.JobPushAttempts
	}
	if meta.IsDefined("remote_timeout_ms") {
		cfg.RemoteTimeout = time.Duration(raw.RemoteTimeoutMS) * time.Millisecond
	}
	if meta.IsDefined("remote_rate_limit") {
		cfg.RemoteRateLimit = raw.RemoteRateLimit
	}
	if meta.IsDefined("remote_rate_burst") {
		cfg.RemoteRateBurst = raw.RemoteRateBurst
	}
	if meta.IsDefined("notify_concurrency") {
		cfg.NotifyConcurrency = raw.NotifyConcurrency
	}
	if meta.IsDefined("api_token") {
		cfg.APIToken = strings.TrimSpace(raw.APIToken)
	}

	if cfg.RicConfigPath != "" && !config.Exists(cfg.RicConfigPath) {
		return node.Config{}, fmt.Errorf("load infocoord config: ric_config_path %q does not exist", cfg.RicConfigPath)
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return node.Config{}, fmt.Errorf("load infocoord config: %w", err)
	}
	return cfg, nil
}
