package recovery

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Prakashmoharana1985/O-RAN/internal/notify"
	"github.com/Prakashmoharana1985/O-RAN/internal/policy"
	"github.com/Prakashmoharana1985/O-RAN/internal/registry"
	"github.com/Prakashmoharana1985/O-RAN/internal/remote"
	"github.com/Prakashmoharana1985/O-RAN/internal/testutil/fakea1"
	"github.com/Prakashmoharana1985/O-RAN/internal/testutil/fakeremote"
	"github.com/Prakashmoharana1985/O-RAN/internal/testutil/testlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ricURL = "http://ric1"

type fixture struct {
	a1       *fakea1.A1
	client   *fakeremote.Client
	notifier *notify.Notifier
	ctrl     *policy.Controller
	rec      *Coordinator
	ric      *policy.Ric
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	a1 := fakea1.New()
	a1.AddRIC(ricURL, "t1", "t2")
	client := fakeremote.New()
	n := notify.New(client, remote.RetryConfig{}, notify.Config{})
	ctrl := policy.NewController(a1)
	ric := policy.NewRic("ric1", ricURL, []string{"me1"})
	ctrl.Rics.Put(ric)
	_, err := ctrl.PutService(policy.Service{Name: "svc", CallbackURL: "http://svc/cb"})
	require.NoError(t, err)
	return &fixture{a1: a1, client: client, notifier: n, ctrl: ctrl, rec: New(ctrl, n), ric: ric}
}

func (f *fixture) localPolicy(id, typeID string) {
	f.ctrl.Policies.Put(policy.Policy{
		ID:           id,
		RicName:      "ric1",
		TypeID:       typeID,
		OwnerService: "svc",
		Payload:      json.RawMessage(`{}`),
	})
}

func (f *fixture) broadcasts() []fakeremote.Call {
	f.notifier.Wait()
	return f.client.CallsTo(http.MethodPut, "http://svc/cb")
}

func TestRecoverResyncsRic(t *testing.T) {
	testlog.Start(t)
	f := newFixture(t)
	f.a1.SeedPolicy(ricURL, "t1", "stray")
	f.localPolicy("p1", "t1")
	f.localPolicy("p2", "t2")

	state, err := f.rec.Recover(context.Background(), "ric1")
	require.NoError(t, err)
	assert.Equal(t, policy.RicIdle, state)
	assert.Equal(t, policy.RicIdle, f.ric.State())
	assert.Equal(t, []string{"t1", "t2"}, f.ric.SupportedTypeNames())
	assert.Equal(t, []string{"p1", "p2"}, f.a1.PolicyIDs(ricURL))
	assert.Equal(t, 2, f.ctrl.Types.Size())

	calls := f.broadcasts()
	require.Len(t, calls, 1)
	assert.Equal(t, "Recovery completed for:ric1", string(calls[0].Body))
}

func TestRecoverDeletesEveryStrayPolicy(t *testing.T) {
	testlog.Start(t)
	a1 := fakea1.New()
	a1.AddRIC(ricURL, "t1")
	a1.SeedPolicy(ricURL, "t1", "stray1")
	a1.SeedPolicy(ricURL, "t1", "stray2")
	ctrl := policy.NewController(a1)
	ctrl.Rics.Put(policy.NewRic("ric1", ricURL, []string{"me1"}))
	ctrl.Policies.Put(policy.Policy{
		ID:           "p1",
		RicName:      "ric1",
		TypeID:       "t1",
		OwnerService: "svc",
		Payload:      json.RawMessage(`{}`),
	})
	rec := New(ctrl, notify.New(fakeremote.New(), remote.RetryConfig{}, notify.Config{}))

	state, err := rec.Recover(context.Background(), "ric1")
	require.NoError(t, err)
	assert.Equal(t, policy.RicIdle, state)

	deletes := 0
	for _, call := range a1.Calls() {
		if call == fakea1.OpDelete+" "+ricURL {
			deletes++
		}
	}
	assert.Equal(t, 2, deletes)
	assert.Equal(t, []string{"p1"}, a1.PolicyIDs(ricURL))
	assert.Equal(t, 1, ctrl.Types.Size())
}

// gatedA1 parks the first PutPolicy for gateID after the RIC has stored it.
type gatedA1 struct {
	*fakea1.A1
	gateID  string
	gated   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func (g *gatedA1) PutPolicy(ctx context.Context, baseURL, typeID, policyID string, payload json.RawMessage) error {
	err := g.A1.PutPolicy(ctx, baseURL, typeID, policyID, payload)
	if policyID == g.gateID && g.gated.CompareAndSwap(false, true) {
		close(g.entered)
		<-g.release
	}
	return err
}

func TestRecoverWaitsForInFlightPolicyWrite(t *testing.T) {
	testlog.Start(t)
	ctx := context.Background()
	a1 := &gatedA1{
		A1:      fakea1.New(),
		gateID:  "user",
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	a1.AddRIC(ricURL, "t1")
	ctrl := policy.NewController(a1)
	ric := policy.NewRic("ric1", ricURL, []string{"me1"})
	ctrl.Rics.Put(ric)
	_, err := ctrl.PutService(policy.Service{Name: "svc", CallbackURL: "http://svc/cb"})
	require.NoError(t, err)
	rec := New(ctrl, notify.New(fakeremote.New(), remote.RetryConfig{}, notify.Config{}))
	_, err = rec.Recover(ctx, "ric1")
	require.NoError(t, err)

	putErr := make(chan error, 1)
	go func() {
		_, err := ctrl.PutPolicy(ctx, policy.Policy{
			ID:           "user",
			RicName:      "ric1",
			TypeID:       "t1",
			OwnerService: "svc",
			Payload:      json.RawMessage(`{}`),
		})
		putErr <- err
	}()
	<-a1.entered

	recovered := make(chan policy.RicState, 1)
	go func() {
		state, _ := rec.Recover(ctx, "ric1")
		recovered <- state
	}()
	require.Eventually(t, func() bool {
		return ric.State() == policy.RicRecovering
	}, time.Second, time.Millisecond)
	close(a1.release)

	require.NoError(t, <-putErr)
	assert.Equal(t, policy.RicIdle, <-recovered)
	assert.Equal(t, []string{"user"}, a1.PolicyIDs(ricURL))
	_, ok := ctrl.Policies.Get("user")
	assert.True(t, ok)
}

func TestRecoverReusesCachedTypeSchemas(t *testing.T) {
	testlog.Start(t)
	f := newFixture(t)
	f.ctrl.Types.Put(policy.PolicyType{Name: "t1", Schema: json.RawMessage(`{"cached":true}`)})

	_, err := f.rec.Recover(context.Background(), "ric1")
	require.NoError(t, err)
	schemaFetches := 0
	for _, call := range f.a1.Calls() {
		if call == fakea1.OpSchema+" "+ricURL {
			schemaFetches++
		}
	}
	assert.Equal(t, 1, schemaFetches)
	cached, _ := f.ctrl.Types.Get("t1")
	assert.JSONEq(t, `{"cached":true}`, string(cached.Schema))
}

func TestRecoverRollsBackWhenRepushFails(t *testing.T) {
	testlog.Start(t)
	f := newFixture(t)
	f.a1.SeedPolicy(ricURL, "t1", "stray")
	f.localPolicy("p1", "t1")
	f.a1.FailOn(fakea1.OpPut, ricURL)

	state, err := f.rec.Recover(context.Background(), "ric1")
	require.NoError(t, err)
	assert.Equal(t, policy.RicIdle, state)
	assert.Equal(t, 0, f.ctrl.Policies.Size())
	assert.Empty(t, f.a1.PolicyIDs(ricURL))
	assert.Len(t, f.broadcasts(), 1)
}

func TestRecoverEndsUndefinedWhenRollbackFails(t *testing.T) {
	testlog.Start(t)
	f := newFixture(t)
	f.localPolicy("p1", "t1")
	f.a1.FailOn(fakea1.OpIdentities, ricURL)

	state, err := f.rec.Recover(context.Background(), "ric1")
	require.Error(t, err)
	assert.Equal(t, policy.RicUndefined, state)
	assert.Equal(t, policy.RicUndefined, f.ric.State())
	assert.Equal(t, 0, f.ctrl.Policies.Size())
	assert.Empty(t, f.broadcasts())

	f.a1.Heal()
	state, err = f.rec.Recover(context.Background(), "ric1")
	require.NoError(t, err)
	assert.Equal(t, policy.RicIdle, state)
}

func TestRecoverIsNoOpWhileRecovering(t *testing.T) {
	testlog.Start(t)
	f := newFixture(t)
	require.True(t, f.ric.TryBeginRecovery())

	state, err := f.rec.Recover(context.Background(), "ric1")
	require.NoError(t, err)
	assert.Equal(t, policy.RicRecovering, state)
	assert.Empty(t, f.a1.Calls())
}

func TestTrigger(t *testing.T) {
	testlog.Start(t)
	f := newFixture(t)

	require.ErrorIs(t, f.rec.Trigger("nope"), registry.ErrNotFound)
	_, err := f.rec.Recover(context.Background(), "nope")
	require.ErrorIs(t, err, registry.ErrNotFound)

	f.rec.TriggerAll()
	f.rec.Wait()
	assert.Equal(t, policy.RicIdle, f.ric.State())
	f.rec.Close()
}
