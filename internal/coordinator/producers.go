package coordinator

import (
	"context"
	"fmt"
	"strings"

	"github.com/Prakashmoharana1985/O-RAN/internal/registry"
	"github.com/rs/zerolog/log"
)

// RegisterProducer installs reg, replacing any producer with the same id, and
// starts the jobs of its types on it. It reports whether the producer is new.
func (c *Coordinator) RegisterProducer(ctx context.Context, reg registry.ProducerRegistration) (registry.Producer, bool, error) {
	reg.ID = strings.TrimSpace(reg.ID)
	if reg.ID == "" {
		return registry.Producer{}, false, fmt.Errorf("%w: producer id required", registry.ErrValidation)
	}
	for _, t := range reg.SupportedTypes {
		if strings.TrimSpace(t.ID) == "" {
			return registry.Producer{}, false, fmt.Errorf("%w: producer %q declares a type without id", registry.ErrValidation, reg.ID)
		}
	}

	c.mu.Lock()
	prev, existed := c.producers.Remove(reg.ID)

	supported := make([]registry.CapabilityType, 0, len(reg.SupportedTypes))
	seen := make(map[string]struct{}, len(reg.SupportedTypes))
	for _, decl := range reg.SupportedTypes {
		id := strings.TrimSpace(decl.ID)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		supported = append(supported, c.resolveTypeLocked(ctx, id, decl.Schema))
	}

	p := registry.Producer{
		ID:                     reg.ID,
		SupportedTypes:         supported,
		JobCallbackURL:         strings.TrimSpace(reg.JobCallbackURL),
		SupervisionCallbackURL: strings.TrimSpace(reg.SupervisionCallbackURL),
		OperationalState:       registry.StateEnabled,
		RegisteredAt:           c.cfg.Now(),
	}
	c.producers.Put(p)

	affected := p.TypeIDs()
	if existed {
		c.purgeOrphanTypesLocked(ctx, prev.TypeIDs())
		affected = append(affected, prev.TypeIDs()...)
	}

	pending := c.jobsForProducerLocked(p, nil)
	c.mu.Unlock()

	results := c.pushJobs(ctx, pending)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyPushesLocked(results)
	c.reevaluateLocked(affected)

	event := log.Info().
		Str("producer", p.ID).
		Strs("types", p.TypeIDs()).
		Int("jobs_pushed", len(results))
	if existed {
		event.Msg("producer_replaced")
	} else {
		event.Msg("producer_registered")
	}

	current, ok := c.producers.Get(p.ID)
	if !ok {
		current = p
	}
	return current, !existed, nil
}

// resolveTypeLocked reuses an existing type by id or creates it. The first
// schema seen for a type id is kept.
func (c *Coordinator) resolveTypeLocked(ctx context.Context, id string, schema []byte) registry.CapabilityType {
	if t, ok := c.types.Get(id); ok {
		return t
	}
	t := registry.CapabilityType{ID: id, Schema: schema}
	c.types.Put(t)
	if err := c.store.SaveType(ctx, t); err != nil {
		log.Warn().Err(err).Str("type", id).Msg("type_persist_failed")
	}
	log.Info().Str("type", id).Msg("type_added")
	c.notifier.TypeAdded(c.subs.All(""), t)
	return t
}

// jobsForProducerLocked pairs p with every job of its types. A non-nil skip
// drops jobs for which skip returns true.
func (c *Coordinator) jobsForProducerLocked(p registry.Producer, skip func(jobID string) bool) []pushResult {
	var out []pushResult
	for _, typeID := range p.TypeIDs() {
		for _, job := range c.jobs.ForType(typeID) {
			if skip != nil && skip(job.ID) {
				continue
			}
			out = append(out, pushResult{producer: p, job: job})
		}
	}
	return out
}

// DeregisterProducer removes the producer, purges types nobody supports,
// re-evaluates affected jobs and asks the producer to stop the jobs it ran.
func (c *Coordinator) DeregisterProducer(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	accepted := c.producers.AcceptedJobs(id)
	p, ok := c.producers.Remove(id)
	if !ok {
		return c.producerNotFound(id)
	}
	c.purgeOrphanTypesLocked(ctx, p.TypeIDs())
	c.reevaluateLocked(p.TypeIDs())
	for _, jobID := range accepted {
		if _, ok := c.jobs.Get(jobID); ok {
			c.notifier.StopJob(p, jobID)
		}
	}
	log.Info().
		Str("producer", p.ID).
		Int("jobs_stopped", len(accepted)).
		Msg("producer_deregistered")
	return nil
}

func (c *Coordinator) producerNotFound(id string) error {
	_, err := c.producers.GetProducer(id)
	return err
}

// Producer returns the producer; absence is routine.
func (c *Coordinator) Producer(id string) (registry.Producer, bool) {
	return c.producers.Get(id)
}

// GetProducer returns the producer or registry.ErrNotFound.
func (c *Coordinator) GetProducer(id string) (registry.Producer, error) {
	return c.producers.GetProducer(id)
}

// Producers lists every registered producer sorted by id.
func (c *Coordinator) Producers() []registry.Producer {
	return c.producers.All()
}

func (c *Coordinator) ProducersForType(typeID string) []registry.Producer {
	return c.producers.ForType(typeID)
}

func (c *Coordinator) ProducerIDsForType(typeID string) []string {
	return c.producers.IDsForType(typeID)
}

// ProducerStatus returns the operational state or registry.ErrNotFound.
func (c *Coordinator) ProducerStatus(id string) (registry.OperationalState, error) {
	p, err := c.producers.GetProducer(id)
	if err != nil {
		return "", err
	}
	return p.OperationalState, nil
}

// JobsForProducer lists jobs of every type the producer supports.
func (c *Coordinator) JobsForProducer(id string) ([]registry.Job, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := c.producers.GetProducer(id)
	if err != nil {
		return nil, err
	}
	var out []registry.Job
	for _, typeID := range p.TypeIDs() {
		out = append(out, c.jobs.ForType(typeID)...)
	}
	return out, nil
}

// MarkProducerHealthy records a successful supervision check. A producer
// returning from DISABLED gets every job of its types restarted; an already
// enabled one gets only the jobs it has not accepted.
func (c *Coordinator) MarkProducerHealthy(ctx context.Context, id string) error {
	c.mu.Lock()
	prevState, ok := c.producers.RecordHealthy(id)
	if !ok {
		c.mu.Unlock()
		return c.producerNotFound(id)
	}
	p, _ := c.producers.Get(id)
	var pending []pushResult
	if prevState == registry.StateDisabled {
		log.Info().Str("producer", id).Msg("producer_enabled")
		pending = c.jobsForProducerLocked(p, nil)
	} else {
		pending = c.jobsForProducerLocked(p, func(jobID string) bool {
			return c.producers.JobAccepted(id, jobID)
		})
	}
	c.mu.Unlock()

	results := c.pushJobs(ctx, pending)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyPushesLocked(results)
	c.reevaluateLocked(p.TypeIDs())
	return nil
}

// MarkProducerUnhealthy records a failed supervision check, disables the
// producer and returns its consecutive failure count.
func (c *Coordinator) MarkProducerUnhealthy(id string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	count, prevState, ok := c.producers.RecordFailure(id)
	if !ok {
		return 0, c.producerNotFound(id)
	}
	p, _ := c.producers.Get(id)
	if prevState == registry.StateEnabled {
		log.Warn().Str("producer", id).Int("failures", count).Msg("producer_disabled")
	}
	c.reevaluateLocked(p.TypeIDs())
	return count, nil
}
