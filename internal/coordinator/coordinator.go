package coordinator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Prakashmoharana1985/O-RAN/internal/registry"
	"github.com/Prakashmoharana1985/O-RAN/internal/store"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ErrTypeInUse reports removal of a type that producers still support.
var ErrTypeInUse = errors.New("coordinator: type has registered producers")

// Notifier is the outbound side the coordinator drives.
type Notifier interface {
	StartJob(ctx context.Context, p registry.Producer, job registry.Job) error
	StopJob(p registry.Producer, jobID string)
	JobStatus(job registry.Job, status registry.JobStatus)
	TypeAdded(subs []registry.Subscription, t registry.CapabilityType)
	TypeRemoved(subs []registry.Subscription, t registry.CapabilityType)
}

// Config tunes a Coordinator. Zero fields take DefaultConfig values.
type Config struct {
	// PushParallelism caps concurrent job pushes for one operation.
	PushParallelism int
	Now             func() time.Time
}

func DefaultConfig() Config {
	return Config{
		PushParallelism: 8,
		Now:             time.Now,
	}
}

func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.PushParallelism <= 0 {
		c.PushParallelism = d.PushParallelism
	}
	if c.Now == nil {
		c.Now = d.Now
	}
	return c
}

// Coordinator owns the producer, type, job and subscription directories.
type Coordinator struct {
	mu sync.Mutex

	cfg       Config
	types     *registry.TypeDirectory
	producers *registry.ProducerDirectory
	jobs      *registry.JobDirectory
	subs      *registry.SubscriptionDirectory
	notifier  Notifier
	store     store.Store
}

// New returns an empty Coordinator that persists through st and reaches
// producers and consumers through notifier.
func New(cfg Config, st store.Store, notifier Notifier) *Coordinator {
	if st == nil {
		st = store.NopStore{}
	}
	return &Coordinator{
		cfg:       cfg.WithDefaults(),
		types:     registry.NewTypeDirectory(),
		producers: registry.NewProducerDirectory(),
		jobs:      registry.NewJobDirectory(),
		subs:      registry.NewSubscriptionDirectory(),
		notifier:  notifier,
		store:     st,
	}
}

// pushResult is the outcome of starting one job on one producer.
type pushResult struct {
	producer registry.Producer
	job      registry.Job
	accepted bool
}

// pushJobs starts every (producer, job) pair concurrently. It must be called
// without c.mu held.
func (c *Coordinator) pushJobs(ctx context.Context, pairs []pushResult) []pushResult {
	if len(pairs) == 0 {
		return nil
	}
	results := make([]pushResult, len(pairs))
	var g errgroup.Group
	g.SetLimit(c.cfg.PushParallelism)
	for i, pair := range pairs {
		g.Go(func() error {
			err := c.notifier.StartJob(ctx, pair.producer, pair.job)
			pair.accepted = err == nil
			results[i] = pair
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// applyPushesLocked records push outcomes for producers and jobs that are
// still registered in the same shape they were pushed with.
func (c *Coordinator) applyPushesLocked(results []pushResult) {
	for _, r := range results {
		p, ok := c.producers.Get(r.producer.ID)
		if !ok || !p.RegisteredAt.Equal(r.producer.RegisteredAt) {
			continue
		}
		job, ok := c.jobs.Get(r.job.ID)
		if !ok || job.TypeID != r.job.TypeID {
			continue
		}
		c.producers.SetJobAccepted(p.ID, job.ID, r.accepted)
	}
}

// reevaluateLocked recomputes the status of every job of typeIDs and notifies
// each change once.
func (c *Coordinator) reevaluateLocked(typeIDs []string) {
	seen := make(map[string]struct{}, len(typeIDs))
	for _, typeID := range typeIDs {
		if _, dup := seen[typeID]; dup {
			continue
		}
		seen[typeID] = struct{}{}
		for _, job := range c.jobs.ForType(typeID) {
			c.reevaluateJobLocked(job)
		}
	}
}

func (c *Coordinator) reevaluateJobLocked(job registry.Job) {
	enabled := c.producers.JobEnabled(job.TypeID, job.ID)
	if enabled == job.LastReportedEnabled {
		return
	}
	c.jobs.SetLastReported(job.ID, enabled)
	status := registry.StatusOf(enabled)
	log.Info().
		Str("job", job.ID).
		Str("type", job.TypeID).
		Str("status", string(status)).
		Msg("job_status_changed")
	c.notifier.JobStatus(job, status)
}

// purgeOrphanTypesLocked drops unpinned types no producer supports any more.
func (c *Coordinator) purgeOrphanTypesLocked(ctx context.Context, typeIDs []string) {
	for _, typeID := range typeIDs {
		t, ok := c.types.Get(typeID)
		if !ok || t.Pinned || c.producers.CountForType(typeID) > 0 {
			continue
		}
		c.types.Remove(typeID)
		if err := c.store.DeleteType(ctx, typeID); err != nil {
			log.Warn().Err(err).Str("type", typeID).Msg("type_delete_persist_failed")
		}
		log.Info().Str("type", typeID).Msg("type_purged")
		c.notifier.TypeRemoved(c.subs.All(""), t)
	}
}
