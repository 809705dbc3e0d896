// Package recovery resynchronizes a RIC with the local policy view, or rolls
// the local view back to what the RIC can accept.
//
// Ownership boundary:
//   - recovery owns the IDLE -> RECOVERING -> IDLE|UNDEFINED transitions.
//   - at most one attempt per RIC runs; a second request while one is running
//     is a no-op.
//   - recovery failures never escape as errors of background triggers; they
//     are reflected in the RIC state and the logs.
package recovery

import (
	"context"
	"sync"

	"github.com/Prakashmoharana1985/O-RAN/internal/observability"
	"github.com/Prakashmoharana1985/O-RAN/internal/policy"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Notifier broadcasts a finished recovery to services.
type Notifier interface {
	RecoveryCompleted(callbackURLs []string, ric string)
}

// Coordinator runs RIC recoveries, at most one per RIC at a time.
type Coordinator struct {
	ctrl     *policy.Controller
	notifier Notifier

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// New returns a Coordinator that reconciles the RICs known to ctrl.
func New(ctrl *policy.Controller, notifier Notifier) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctrl:     ctrl,
		notifier: notifier,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Recover runs one recovery attempt for ric name and returns the resulting
// state. A RIC already recovering is left alone and RECOVERING is returned.
func (c *Coordinator) Recover(ctx context.Context, name string) (policy.RicState, error) {
	ric, err := c.ctrl.Rics.GetRic(name)
	if err != nil {
		return "", err
	}
	if !ric.TryBeginRecovery() {
		log.Debug().Str("ric", name).Msg("ric_recovery_already_running")
		return policy.RicRecovering, nil
	}
	// In-flight policy writes finish before the RIC is read back.
	ric.LockOperations()
	defer ric.UnlockOperations()
	logger := log.With().Str("ric", name).Str("attempt", uuid.NewString()).Logger()
	logger.Info().Msg("ric_recovery_started")

	if err := c.resync(ctx, ric); err != nil {
		logger.Warn().Err(err).Msg("ric_recovery_failed_rolling_back")
		return c.rollback(ctx, ric, logger)
	}
	c.finish(ric, logger, "recovered")
	return policy.RicIdle, nil
}

// Trigger starts Recover in the background.
func (c *Coordinator) Trigger(name string) error {
	if _, err := c.ctrl.Rics.GetRic(name); err != nil {
		return err
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		_, _ = c.Recover(c.ctx, name)
	}()
	return nil
}

// TriggerAll starts a recovery for every configured RIC.
func (c *Coordinator) TriggerAll() {
	for _, ric := range c.ctrl.Rics.All() {
		_ = c.Trigger(ric.Name())
	}
}

// Wait blocks until background recoveries finish.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Close cancels background recoveries and waits for them.
func (c *Coordinator) Close() {
	c.cancel()
	c.wg.Wait()
}

// resync is the strict sequence: types, wipe the RIC, re-push local policies.
func (c *Coordinator) resync(ctx context.Context, ric *policy.Ric) error {
	if err := c.recoverTypes(ctx, ric); err != nil {
		return err
	}
	if err := c.deletePoliciesInRic(ctx, ric); err != nil {
		return err
	}
	return c.recreatePolicies(ctx, ric)
}

// rollback drops local policies of the RIC, then refreshes types and wipes
// the RIC concurrently.
func (c *Coordinator) rollback(ctx context.Context, ric *policy.Ric, logger zerolog.Logger) (policy.RicState, error) {
	dropped := c.ctrl.Policies.RemoveForRic(ric.Name())
	logger.Warn().Int("policies", len(dropped)).Msg("ric_local_policies_dropped")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.recoverTypes(gctx, ric) })
	g.Go(func() error { return c.deletePoliciesInRic(gctx, ric) })
	if err := g.Wait(); err != nil {
		ric.SetState(policy.RicUndefined)
		observability.RecordRecovery(ric.Name(), string(policy.RicUndefined))
		logger.Error().Err(err).Msg("ric_recovery_rollback_failed")
		return policy.RicUndefined, err
	}
	c.finish(ric, logger, "rolled_back")
	return policy.RicIdle, nil
}

func (c *Coordinator) finish(ric *policy.Ric, logger zerolog.Logger, how string) {
	ric.SetState(policy.RicIdle)
	observability.RecordRecovery(ric.Name(), how)
	logger.Info().Str("outcome", how).Strs("policy_types", ric.SupportedTypeNames()).Msg("ric_recovery_completed")
	c.notifier.RecoveryCompleted(c.ctrl.Services.CallbackURLs(), ric.Name())
}

func (c *Coordinator) recoverTypes(ctx context.Context, ric *policy.Ric) error {
	a1 := c.ctrl.A1()
	ric.ClearSupportedTypes()
	ids, err := a1.PolicyTypeIDs(ctx, ric.BaseURL())
	if err != nil {
		return err
	}
	for _, id := range ids {
		t, ok := c.ctrl.Types.Get(id)
		if !ok {
			schema, err := a1.PolicyTypeSchema(ctx, ric.BaseURL(), id)
			if err != nil {
				return err
			}
			t = policy.PolicyType{Name: id, Schema: schema}
			c.ctrl.Types.Put(t)
		}
		ric.AddSupportedType(t)
	}
	return nil
}

func (c *Coordinator) deletePoliciesInRic(ctx context.Context, ric *policy.Ric) error {
	a1 := c.ctrl.A1()
	refs, err := a1.PolicyIdentities(ctx, ric.BaseURL())
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if err := a1.DeletePolicy(ctx, ric.BaseURL(), ref.TypeID, ref.PolicyID); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) recreatePolicies(ctx context.Context, ric *policy.Ric) error {
	a1 := c.ctrl.A1()
	for _, p := range c.ctrl.Policies.ForRic(ric.Name()) {
		if err := a1.PutPolicy(ctx, ric.BaseURL(), p.TypeID, p.ID, p.Payload); err != nil {
			return err
		}
	}
	return nil
}
