package node

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Config is the runtime shape of one coordinator node.
type Config struct {
	ID             string
	HTTPListenAddr string
	// DatabasePath empty keeps all state in memory.
	DatabasePath   string
	RicConfigPath  string
	WatchRicConfig bool

	SupervisionSchedule    string
	SupervisionMaxFailures int
	ServiceExpirySchedule  string
	JobPushAttempts        uint

	RemoteTimeout     time.Duration
	RemoteRateLimit   float64
	RemoteRateBurst   int
	NotifyConcurrency int

	// APIToken empty leaves the HTTP API unauthenticated.
	APIToken string
}

func DefaultConfig() Config {
	return Config{
		ID:                     "infocoord",
		HTTPListenAddr:         ":8083",
		WatchRicConfig:         true,
		SupervisionSchedule:    "@every 30s",
		SupervisionMaxFailures: 3,
		ServiceExpirySchedule:  "@every 1m",
		JobPushAttempts:        2,
		RemoteTimeout:          10 * time.Second,
		RemoteRateLimit:        200,
		RemoteRateBurst:        50,
		NotifyConcurrency:      16,
	}
}

func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	c.ID = strings.TrimSpace(c.ID)
	if strings.TrimSpace(c.HTTPListenAddr) == "" {
		c.HTTPListenAddr = d.HTTPListenAddr
	}
	if strings.TrimSpace(c.SupervisionSchedule) == "" {
		c.SupervisionSchedule = d.SupervisionSchedule
	}
	if c.SupervisionMaxFailures <= 0 {
		c.SupervisionMaxFailures = d.SupervisionMaxFailures
	}
	if strings.TrimSpace(c.ServiceExpirySchedule) == "" {
		c.ServiceExpirySchedule = d.ServiceExpirySchedule
	}
	if c.JobPushAttempts == 0 {
		c.JobPushAttempts = d.JobPushAttempts
	}
	if c.RemoteTimeout <= 0 {
		c.RemoteTimeout = d.RemoteTimeout
	}
	if c.NotifyConcurrency <= 0 {
		c.NotifyConcurrency = d.NotifyConcurrency
	}
	return c
}

// Validate checks the cron expressions before anything is started.
func (c Config) Validate() error {
	for key, spec := range map[string]string{
		"supervision_schedule":    c.SupervisionSchedule,
		"service_expiry_schedule": c.ServiceExpirySchedule,
	} {
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("node config invalid: %s %q: %w", key, spec, err)
		}
	}
	if c.RemoteRateLimit < 0 {
		return fmt.Errorf("node config invalid: remote_rate_limit must not be negative")
	}
	return nil
}
