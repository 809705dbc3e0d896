package coordinator

import (
	"context"
	"fmt"
	"strings"

	"github.com/Prakashmoharana1985/O-RAN/internal/registry"
	"github.com/rs/zerolog/log"
)

// PutJob creates or updates job id and starts it on every producer of its
// type. With typeCheck set, an unknown type is registry.ErrNotFound. Changing
// the type of an existing job is registry.ErrConflict. It reports whether the
// job is new.
func (c *Coordinator) PutJob(ctx context.Context, id string, info registry.JobInfo, typeCheck bool) (bool, error) {
	id = strings.TrimSpace(id)
	info.TypeID = strings.TrimSpace(info.TypeID)
	if id == "" {
		return false, fmt.Errorf("%w: job id required", registry.ErrValidation)
	}
	if info.TypeID == "" {
		return false, fmt.Errorf("%w: job %q has no type", registry.ErrValidation, id)
	}

	c.mu.Lock()
	if typeCheck && !c.types.Contains(info.TypeID) {
		c.mu.Unlock()
		_, err := c.types.GetType(info.TypeID)
		return false, err
	}
	if prev, ok := c.jobs.Get(id); ok && prev.TypeID != info.TypeID {
		c.mu.Unlock()
		return false, fmt.Errorf("%w: not allowed to change type for existing job %q", registry.ErrConflict, id)
	}

	job, created := c.jobs.Put(registry.Job{ID: id, JobInfo: info}, c.cfg.Now())
	if err := c.store.SaveJob(ctx, job); err != nil {
		log.Warn().Err(err).Str("job", id).Msg("job_persist_failed")
	}
	var pending []pushResult
	for _, p := range c.producers.ForType(job.TypeID) {
		pending = append(pending, pushResult{producer: p, job: job})
	}
	c.mu.Unlock()

	results := c.pushJobs(ctx, pending)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyPushesLocked(results)
	current, ok := c.jobs.Get(id)
	if !ok {
		return created, nil
	}
	if created {
		enabled := c.producers.JobEnabled(current.TypeID, current.ID)
		c.jobs.SetLastReported(current.ID, enabled)
		log.Info().
			Str("job", id).
			Str("type", current.TypeID).
			Str("owner", current.Owner).
			Str("status", string(registry.StatusOf(enabled))).
			Msg("job_created")
		return true, nil
	}
	c.reevaluateJobLocked(current)
	log.Info().Str("job", id).Msg("job_updated")
	return false, nil
}

// DeleteJob removes the job and asks every producer of its type to stop it.
func (c *Coordinator) DeleteJob(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	job, ok := c.jobs.Remove(id)
	if !ok {
		_, err := c.jobs.GetJob(id)
		return err
	}
	if err := c.store.DeleteJob(ctx, id); err != nil {
		log.Warn().Err(err).Str("job", id).Msg("job_delete_persist_failed")
	}
	for _, p := range c.producers.ForType(job.TypeID) {
		c.notifier.StopJob(p, id)
	}
	c.producers.ForgetJob(id)
	log.Info().Str("job", id).Str("type", job.TypeID).Msg("job_deleted")
	return nil
}

func (c *Coordinator) GetJob(id string) (registry.Job, error) {
	return c.jobs.GetJob(id)
}

// JobStatus computes the current status of job id.
func (c *Coordinator) JobStatus(id string) (registry.JobStatus, error) {
	job, err := c.jobs.GetJob(id)
	if err != nil {
		return "", err
	}
	return registry.StatusOf(c.producers.JobEnabled(job.TypeID, job.ID)), nil
}

// Jobs lists jobs ordered by id; empty owner or typeID match all.
func (c *Coordinator) Jobs(owner, typeID string) []registry.Job {
	return c.jobs.Filter(owner, typeID)
}
