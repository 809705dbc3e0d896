package supervision

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Prakashmoharana1985/O-RAN/internal/observability"
	"github.com/Prakashmoharana1985/O-RAN/internal/registry"
	"github.com/Prakashmoharana1985/O-RAN/internal/remote"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const (
	DefaultSchedule    = "@every 30s"
	DefaultMaxFailures = 3
)

var ErrAlreadyStarted = errors.New("supervision: already started")

// Registry is the coordinator surface a pass needs.
type Registry interface {
	Producers() []registry.Producer
	MarkProducerHealthy(ctx context.Context, id string) error
	MarkProducerUnhealthy(id string) (int, error)
	DeregisterProducer(ctx context.Context, id string) error
}

// Config sets the supervision cadence and failure tolerance.
type Config struct {
	Schedule    string
	MaxFailures int
}

func DefaultConfig() Config {
	return Config{
		Schedule:    DefaultSchedule,
		MaxFailures: DefaultMaxFailures,
	}
}

func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if strings.TrimSpace(c.Schedule) == "" {
		c.Schedule = d.Schedule
	}
	if c.MaxFailures <= 0 {
		c.MaxFailures = d.MaxFailures
	}
	return c
}

// PassResult summarizes one supervision pass.
type PassResult struct {
	Checked      int      `json:"checked"`
	Healthy      []string `json:"healthy"`
	Unhealthy    []string `json:"unhealthy"`
	Deregistered []string `json:"deregistered"`
}

// Supervisor periodically checks every producer's supervision callback and
// reports the outcome to the registry.
type Supervisor struct {
	reg    Registry
	client remote.Client
	cfg    Config

	passMu sync.Mutex

	mu     sync.Mutex
	cron   *cron.Cron
	cancel context.CancelFunc
}

// New returns a Supervisor that is idle until started.
func New(reg Registry, client remote.Client, cfg Config) *Supervisor {
	return &Supervisor{
		reg:    reg,
		client: client,
		cfg:    cfg.WithDefaults(),
	}
}

// RunPass checks every producer once, in id order. Status changes caused by
// the pass are applied before it returns.
func (s *Supervisor) RunPass(ctx context.Context) PassResult {
	s.passMu.Lock()
	defer s.passMu.Unlock()
	start := time.Now()
	defer func() { observability.RecordSupervisionPass(time.Since(start)) }()

	result := PassResult{
		Healthy:      []string{},
		Unhealthy:    []string{},
		Deregistered: []string{},
	}
	for _, p := range s.reg.Producers() {
		if ctx.Err() != nil {
			break
		}
		if strings.TrimSpace(p.SupervisionCallbackURL) == "" {
			continue
		}
		result.Checked++
		if err := s.check(ctx, p); err != nil {
			result.Unhealthy = append(result.Unhealthy, p.ID)
			if s.recordFailure(ctx, p, err) {
				result.Deregistered = append(result.Deregistered, p.ID)
			}
			continue
		}
		result.Healthy = append(result.Healthy, p.ID)
		if err := s.reg.MarkProducerHealthy(ctx, p.ID); err != nil && !errors.Is(err, registry.ErrNotFound) {
			log.Warn().Err(err).Str("producer", p.ID).Msg("supervision_apply_failed")
		}
	}
	log.Debug().
		Int("checked", result.Checked).
		Int("unhealthy", len(result.Unhealthy)).
		Int("deregistered", len(result.Deregistered)).
		Dur("duration", time.Since(start)).
		Msg("supervision_pass_done")
	return result
}

func (s *Supervisor) check(ctx context.Context, p registry.Producer) error {
	req := remote.Request{Method: http.MethodGet, URL: p.SupervisionCallbackURL}
	resp, err := s.client.Call(ctx, req)
	err = remote.Check(req, resp, err)
	observability.RecordSupervisionCheck(err == nil)
	return err
}

// recordFailure applies one failed check and reports whether the producer was
// deregistered.
func (s *Supervisor) recordFailure(ctx context.Context, p registry.Producer, cause error) bool {
	count, err := s.reg.MarkProducerUnhealthy(p.ID)
	if err != nil {
		return false
	}
	log.Warn().
		Err(cause).
		Str("producer", p.ID).
		Int("failures", count).
		Int("max_failures", s.cfg.MaxFailures).
		Msg("producer_check_failed")
	if count < s.cfg.MaxFailures {
		return false
	}
	if err := s.reg.DeregisterProducer(ctx, p.ID); err != nil {
		return false
	}
	observability.RecordProducerDeregistered("supervision")
	log.Warn().Str("producer", p.ID).Int("failures", count).Msg("producer_deregistered_unresponsive")
	return true
}

// Start schedules passes per cfg.Schedule. A pass still running when the next
// one is due causes that tick to be skipped.
func (s *Supervisor) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return ErrAlreadyStarted
	}
	logger := CronLogger{}
	c := cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))
	ctx, cancel := context.WithCancel(context.Background())
	if _, err := c.AddFunc(s.cfg.Schedule, func() { s.RunPass(ctx) }); err != nil {
		cancel()
		return fmt.Errorf("supervision: schedule %q: %w", s.cfg.Schedule, err)
	}
	c.Start()
	s.cron = c
	s.cancel = cancel
	log.Info().Str("schedule", s.cfg.Schedule).Int("max_failures", s.cfg.MaxFailures).Msg("supervision_started")
	return nil
}

// Stop cancels the schedule and waits for a running pass to finish.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	c, cancel := s.cron, s.cancel
	s.cron, s.cancel = nil, nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	done := c.Stop()
	cancel()
	<-done.Done()
	log.Info().Msg("supervision_stopped")
}

// CronLogger routes cron's own diagnostics to zerolog.
type CronLogger struct{}

func (CronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron_" + msg)
}

func (CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron_" + msg)
}
