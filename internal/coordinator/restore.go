package coordinator

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Restore rehydrates pinned types and jobs from the store. Unpinned type
// records belong to producers that must re-register and are dropped.
func (c *Coordinator) Restore(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	types, err := c.store.LoadTypes(ctx)
	if err != nil {
		return err
	}
	restoredTypes := 0
	for _, t := range types {
		if !t.Pinned {
			if err := c.store.DeleteType(ctx, t.ID); err != nil {
				log.Warn().Err(err).Str("type", t.ID).Msg("type_delete_persist_failed")
			}
			continue
		}
		c.types.Put(t)
		restoredTypes++
	}

	jobs, err := c.store.LoadJobs(ctx)
	if err != nil {
		return err
	}
	for _, job := range jobs {
		c.jobs.Restore(job)
	}
	log.Info().
		Int("types", restoredTypes).
		Int("jobs", len(jobs)).
		Msg("directories_restored")
	return nil
}
