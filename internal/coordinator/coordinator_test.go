package coordinator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Prakashmoharana1985/O-RAN/internal/notify"
	"github.com/Prakashmoharana1985/O-RAN/internal/registry"
	"github.com/Prakashmoharana1985/O-RAN/internal/remote"
	"github.com/Prakashmoharana1985/O-RAN/internal/store"
	"github.com/Prakashmoharana1985/O-RAN/internal/testutil/fakeremote"
	"github.com/Prakashmoharana1985/O-RAN/internal/testutil/testlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const typeSchema = `{"type":"object"}`

func newTestCoordinator(t *testing.T) (*Coordinator, *fakeNotifier) {
	t.Helper()
	n := newFakeNotifier()
	return New(Config{}, store.NopStore{}, n), n
}

func registration(id string, typeIDs ...string) registry.ProducerRegistration {
	reg := registry.ProducerRegistration{
		ID:                     id,
		JobCallbackURL:         "http://" + id + "/jobs",
		SupervisionCallbackURL: "http://" + id + "/health",
	}
	for _, typeID := range typeIDs {
		reg.SupportedTypes = append(reg.SupportedTypes, registry.TypeRegistration{
			ID:     typeID,
			Schema: json.RawMessage(typeSchema),
		})
	}
	return reg
}

func jobInfo(typeID string) registry.JobInfo {
	return registry.JobInfo{
		TypeID:            typeID,
		Owner:             "owner",
		TargetURI:         "http://consumer/data",
		StatusCallbackURL: "http://consumer/status",
	}
}

func typeIDs(types []registry.CapabilityType) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, t.ID)
	}
	return out
}

func TestRegisterProducerReplacesDefinitionAndPurgesTypes(t *testing.T) {
	testlog.Start(t)
	c, n := newTestCoordinator(t)
	ctx := context.Background()

	p, created, err := c.RegisterProducer(ctx, registration("p1", "t1", "t2"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, []string{"t1", "t2"}, p.TypeIDs())
	assert.Equal(t, []string{"t1", "t2"}, typeIDs(c.Types()))

	p, created, err = c.RegisterProducer(ctx, registration("p1", "t2", "t3"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, []string{"t2", "t3"}, p.TypeIDs())
	assert.Equal(t, []string{"t2", "t3"}, typeIDs(c.Types()))
	assert.Empty(t, c.ProducerIDsForType("t1"))
	assert.Equal(t, []string{"p1"}, c.ProducerIDsForType("t3"))

	assert.Equal(t, []string{"t1", "t2", "t3"}, n.typeAdded)
	assert.Equal(t, []string{"t1"}, n.typeRemoved)
}

func TestRegisterProducerKeepsFirstSeenSchema(t *testing.T) {
	testlog.Start(t)
	c, _ := newTestCoordinator(t)
	ctx := context.Background()

	_, _, err := c.RegisterProducer(ctx, registration("p1", "t1"))
	require.NoError(t, err)
	reg := registration("p2")
	reg.SupportedTypes = []registry.TypeRegistration{{ID: "t1", Schema: json.RawMessage(`{"type":"string"}`)}}
	_, _, err = c.RegisterProducer(ctx, reg)
	require.NoError(t, err)

	got, err := c.GetType("t1")
	require.NoError(t, err)
	assert.JSONEq(t, typeSchema, string(got.Schema))
}

func TestRegisterProducerValidation(t *testing.T) {
	testlog.Start(t)
	c, _ := newTestCoordinator(t)

	_, _, err := c.RegisterProducer(context.Background(), registration(" "))
	require.ErrorIs(t, err, registry.ErrValidation)

	_, _, err = c.RegisterProducer(context.Background(), registration("p1", ""))
	require.ErrorIs(t, err, registry.ErrValidation)
}

func TestDeregisterProducerStopsAcceptedJobs(t *testing.T) {
	testlog.Start(t)
	c, n := newTestCoordinator(t)
	ctx := context.Background()

	_, _, err := c.RegisterProducer(ctx, registration("p1", "t1"))
	require.NoError(t, err)
	_, err = c.PutJob(ctx, "j1", jobInfo("t1"), true)
	require.NoError(t, err)

	require.NoError(t, c.DeregisterProducer(ctx, "p1"))
	assert.Equal(t, []string{"p1/j1"}, n.stopLog())
	assert.Empty(t, c.Types())

	_, err = c.GetJob("j1")
	require.NoError(t, err, "jobs outlive their producers")
	require.ErrorIs(t, c.DeregisterProducer(ctx, "p1"), registry.ErrNotFound)
}

func TestJobStatusNotificationsFollowProducers(t *testing.T) {
	testlog.Start(t)
	c, n := newTestCoordinator(t)
	ctx := context.Background()

	_, _, err := c.RegisterType(ctx, "t1", json.RawMessage(typeSchema))
	require.NoError(t, err)
	_, _, err = c.RegisterProducer(ctx, registration("p1", "t1"))
	require.NoError(t, err)
	created, err := c.PutJob(ctx, "j1", jobInfo("t1"), true)
	require.NoError(t, err)
	assert.True(t, created)
	_, _, err = c.RegisterProducer(ctx, registration("p2", "t1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"p1/j1", "p2/j1"}, n.startLog())

	require.NoError(t, c.DeregisterProducer(ctx, "p2"))
	assert.Empty(t, n.statusLog())
	require.NoError(t, c.DeregisterProducer(ctx, "p1"))
	assert.Equal(t, []string{"t1"}, typeIDs(c.Types()))
	assert.Len(t, c.Jobs("", ""), 1)
	assert.Equal(t, []statusCall{{JobID: "j1", Status: registry.JobDisabled}}, n.statusLog())

	_, _, err = c.RegisterProducer(ctx, registration("p1", "t1"))
	require.NoError(t, err)
	assert.Equal(t, []statusCall{
		{JobID: "j1", Status: registry.JobDisabled},
		{JobID: "j1", Status: registry.JobEnabled},
	}, n.statusLog())
}

func TestReplacingProducerTypesDisablesAndReenablesJob(t *testing.T) {
	testlog.Start(t)
	c, n := newTestCoordinator(t)
	ctx := context.Background()

	_, _, err := c.RegisterProducer(ctx, registration("p1", "t1"))
	require.NoError(t, err)
	_, err = c.PutJob(ctx, "j1", jobInfo("t1"), true)
	require.NoError(t, err)

	_, _, err = c.RegisterProducer(ctx, registration("p1", "junk"))
	require.NoError(t, err)
	status, err := c.JobStatus("j1")
	require.NoError(t, err)
	assert.Equal(t, registry.JobDisabled, status)

	_, _, err = c.RegisterProducer(ctx, registration("p1", "t1"))
	require.NoError(t, err)
	status, err = c.JobStatus("j1")
	require.NoError(t, err)
	assert.Equal(t, registry.JobEnabled, status)
	assert.Equal(t, []statusCall{
		{JobID: "j1", Status: registry.JobDisabled},
		{JobID: "j1", Status: registry.JobEnabled},
	}, n.statusLog())
}

func TestReregisteringSameTypesDoesNotFlapStatus(t *testing.T) {
	testlog.Start(t)
	c, n := newTestCoordinator(t)
	ctx := context.Background()

	_, _, err := c.RegisterProducer(ctx, registration("p1", "t1"))
	require.NoError(t, err)
	_, err = c.PutJob(ctx, "j1", jobInfo("t1"), true)
	require.NoError(t, err)
	_, _, err = c.RegisterProducer(ctx, registration("p1", "t1"))
	require.NoError(t, err)

	assert.Empty(t, n.statusLog())
	assert.Equal(t, []string{"p1/j1", "p1/j1"}, n.startLog())
}

func TestPutJobTypeRules(t *testing.T) {
	testlog.Start(t)
	c, _ := newTestCoordinator(t)
	ctx := context.Background()

	_, err := c.PutJob(ctx, "j1", jobInfo("missing"), true)
	require.ErrorIs(t, err, registry.ErrNotFound)

	created, err := c.PutJob(ctx, "j1", jobInfo("missing"), false)
	require.NoError(t, err)
	assert.True(t, created)
	status, err := c.JobStatus("j1")
	require.NoError(t, err)
	assert.Equal(t, registry.JobDisabled, status)

	_, err = c.PutJob(ctx, "j1", jobInfo("other"), false)
	require.ErrorIs(t, err, registry.ErrConflict)
	assert.Contains(t, err.Error(), "not allowed to change type for existing job")
	job, err := c.GetJob("j1")
	require.NoError(t, err)
	assert.Equal(t, "missing", job.TypeID)

	info := jobInfo("missing")
	info.Owner = "someone-else"
	created, err = c.PutJob(ctx, "j1", info, false)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, c.Jobs("someone-else", ""), 1)

	_, err = c.PutJob(ctx, "", info, false)
	require.ErrorIs(t, err, registry.ErrValidation)
	_, err = c.JobStatus("nope")
	require.ErrorIs(t, err, registry.ErrNotFound)
}

func TestPutJobEnabledWhenAnyProducerAccepts(t *testing.T) {
	testlog.Start(t)
	c, n := newTestCoordinator(t)
	ctx := context.Background()
	n.setReject("bad", true)

	_, _, err := c.RegisterProducer(ctx, registration("bad", "t1"))
	require.NoError(t, err)
	_, err = c.PutJob(ctx, "j1", jobInfo("t1"), true)
	require.NoError(t, err)
	status, _ := c.JobStatus("j1")
	assert.Equal(t, registry.JobDisabled, status)

	_, _, err = c.RegisterProducer(ctx, registration("good", "t1"))
	require.NoError(t, err)
	status, _ = c.JobStatus("j1")
	assert.Equal(t, registry.JobEnabled, status)
	assert.Equal(t, []statusCall{{JobID: "j1", Status: registry.JobEnabled}}, n.statusLog())

	jobs, err := c.JobsForProducer("good")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	_, err = c.JobsForProducer("nobody")
	require.ErrorIs(t, err, registry.ErrNotFound)
}

func TestPutJobOverHTTPEnabledDespiteRejectingProducer(t *testing.T) {
	testlog.Start(t)
	client := fakeremote.New()
	client.Respond(http.MethodPost, "http://p2/jobs", http.StatusInternalServerError, nil)
	n := notify.New(client, remote.RetryConfig{Attempts: 2, InitialDelay: time.Millisecond}, notify.Config{})
	t.Cleanup(n.Wait)
	c := New(Config{}, store.NopStore{}, n)
	ctx := context.Background()

	_, _, err := c.RegisterProducer(ctx, registration("p1", "t1"))
	require.NoError(t, err)
	_, _, err = c.RegisterProducer(ctx, registration("p2", "t1"))
	require.NoError(t, err)
	created, err := c.PutJob(ctx, "j1", jobInfo("t1"), true)
	require.NoError(t, err)
	assert.True(t, created)

	status, err := c.JobStatus("j1")
	require.NoError(t, err)
	assert.Equal(t, registry.JobEnabled, status)
	assert.Len(t, client.CallsTo(http.MethodPost, "http://p1/jobs"), 1)
	assert.Len(t, client.CallsTo(http.MethodPost, "http://p2/jobs"), 2)
}

func TestDeleteJob(t *testing.T) {
	testlog.Start(t)
	c, n := newTestCoordinator(t)
	ctx := context.Background()

	_, _, err := c.RegisterProducer(ctx, registration("p1", "t1"))
	require.NoError(t, err)
	_, err = c.PutJob(ctx, "j1", jobInfo("t1"), true)
	require.NoError(t, err)

	require.NoError(t, c.DeleteJob(ctx, "j1"))
	assert.Equal(t, []string{"p1/j1"}, n.stopLog())
	require.ErrorIs(t, c.DeleteJob(ctx, "j1"), registry.ErrNotFound)
	_, err = c.GetJob("j1")
	require.ErrorIs(t, err, registry.ErrNotFound)
}

func TestRegisterAndRemoveType(t *testing.T) {
	testlog.Start(t)
	c, n := newTestCoordinator(t)
	ctx := context.Background()

	_, _, err := c.RegisterType(ctx, "t1", nil)
	require.ErrorIs(t, err, registry.ErrValidation)
	_, _, err = c.RegisterType(ctx, "t1", json.RawMessage(`{`))
	require.ErrorIs(t, err, registry.ErrValidation)
	_, _, err = c.RegisterType(ctx, "t1", json.RawMessage(`{"type":12}`))
	require.ErrorIs(t, err, registry.ErrValidation)

	typ, created, err := c.RegisterType(ctx, "t1", json.RawMessage(typeSchema))
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, typ.Pinned)
	_, created, err = c.RegisterType(ctx, "t1", json.RawMessage(`{"type":"array"}`))
	require.NoError(t, err)
	assert.False(t, created)
	got, _ := c.GetType("t1")
	assert.JSONEq(t, `{"type":"array"}`, string(got.Schema))

	_, _, err = c.RegisterProducer(ctx, registration("p1", "t1"))
	require.NoError(t, err)
	_, err = c.PutJob(ctx, "j1", jobInfo("t1"), true)
	require.NoError(t, err)

	err = c.RemoveType(ctx, "t1")
	require.ErrorIs(t, err, ErrTypeInUse)
	require.ErrorIs(t, err, registry.ErrConflict)

	require.NoError(t, c.DeregisterProducer(ctx, "p1"))
	assert.Equal(t, []string{"t1"}, typeIDs(c.Types()), "pinned types outlive their producers")
	require.NoError(t, c.RemoveType(ctx, "t1"))
	assert.Empty(t, c.Types())
	assert.Len(t, c.Jobs("", "t1"), 1)
	assert.Equal(t, []string{"t1"}, n.typeRemoved)
	require.ErrorIs(t, c.RemoveType(ctx, "t1"), registry.ErrNotFound)
}

func TestMarkProducerHealthyRestartsUnacceptedJobs(t *testing.T) {
	testlog.Start(t)
	c, n := newTestCoordinator(t)
	ctx := context.Background()

	_, _, err := c.RegisterProducer(ctx, registration("p1", "t1"))
	require.NoError(t, err)
	_, err = c.PutJob(ctx, "j1", jobInfo("t1"), true)
	require.NoError(t, err)

	c.producers.SetJobAccepted("p1", "j1", false)
	c.jobs.SetLastReported("j1", false)
	status, _ := c.JobStatus("j1")
	assert.Equal(t, registry.JobDisabled, status)

	require.NoError(t, c.MarkProducerHealthy(ctx, "p1"))
	status, _ = c.JobStatus("j1")
	assert.Equal(t, registry.JobEnabled, status)
	assert.Equal(t, []statusCall{{JobID: "j1", Status: registry.JobEnabled}}, n.statusLog())
	assert.Equal(t, []string{"p1/j1", "p1/j1"}, n.startLog())

	require.NoError(t, c.MarkProducerHealthy(ctx, "p1"))
	assert.Len(t, n.startLog(), 2, "accepted jobs are not pushed again")
}

func TestMarkProducerUnhealthyDisablesThenHealthyRestarts(t *testing.T) {
	testlog.Start(t)
	c, n := newTestCoordinator(t)
	ctx := context.Background()

	_, _, err := c.RegisterProducer(ctx, registration("p1", "t1"))
	require.NoError(t, err)
	_, err = c.PutJob(ctx, "j1", jobInfo("t1"), true)
	require.NoError(t, err)

	count, err := c.MarkProducerUnhealthy("p1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	state, _ := c.ProducerStatus("p1")
	assert.Equal(t, registry.StateDisabled, state)

	count, _ = c.MarkProducerUnhealthy("p1")
	assert.Equal(t, 2, count)
	assert.Equal(t, []statusCall{{JobID: "j1", Status: registry.JobDisabled}}, n.statusLog())

	require.NoError(t, c.MarkProducerHealthy(ctx, "p1"))
	p, _ := c.GetProducer("p1")
	assert.Equal(t, 0, p.FailureCount)
	assert.Equal(t, registry.StateEnabled, p.OperationalState)
	assert.Equal(t, []statusCall{
		{JobID: "j1", Status: registry.JobDisabled},
		{JobID: "j1", Status: registry.JobEnabled},
	}, n.statusLog())

	_, err = c.MarkProducerUnhealthy("missing")
	require.ErrorIs(t, err, registry.ErrNotFound)
}

func TestSubscriptions(t *testing.T) {
	testlog.Start(t)
	c, _ := newTestCoordinator(t)

	_, err := c.PutSubscription(registry.Subscription{ID: "s1"})
	require.ErrorIs(t, err, registry.ErrValidation)
	created, err := c.PutSubscription(registry.Subscription{ID: "s1", Owner: "o", CallbackURL: "http://sub"})
	require.NoError(t, err)
	assert.True(t, created)
	created, err = c.PutSubscription(registry.Subscription{ID: "s1", Owner: "o", CallbackURL: "http://sub2"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, c.Subscriptions("o"), 1)
	assert.Empty(t, c.Subscriptions("x"))

	require.NoError(t, c.DeleteSubscription("s1"))
	require.ErrorIs(t, c.DeleteSubscription("s1"), registry.ErrNotFound)
}

func TestRestoreFromSQLiteKeepsJobsAndPinnedTypes(t *testing.T) {
	testlog.Start(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "coord.db")

	st, err := store.OpenSQLite(ctx, path)
	require.NoError(t, err)
	c := New(Config{}, st, newFakeNotifier())
	_, _, err = c.RegisterType(ctx, "pinned", json.RawMessage(typeSchema))
	require.NoError(t, err)
	_, _, err = c.RegisterProducer(ctx, registration("p1", "implicit"))
	require.NoError(t, err)
	_, err = c.PutJob(ctx, "j1", jobInfo("pinned"), true)
	require.NoError(t, err)
	before, err := c.GetJob("j1")
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = store.OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer st.Close()
	restored := New(Config{}, st, newFakeNotifier())
	require.NoError(t, restored.Restore(ctx))

	assert.Equal(t, []string{"pinned"}, typeIDs(restored.Types()))
	job, err := restored.GetJob("j1")
	require.NoError(t, err)
	assert.True(t, before.LastUpdated.Equal(job.LastUpdated))
	assert.True(t, before.CreatedAt.Equal(job.CreatedAt))
	assert.Empty(t, restored.Producers())

	leftover, err := st.LoadTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"pinned"}, typeIDs(leftover))
}

func TestDirectoryInvariantsProperty(t *testing.T) {
	testlog.Start(t)

	rapid.Check(t, func(rt *rapid.T) {
		c := New(Config{}, store.NopStore{}, newFakeNotifier())
		ctx := context.Background()
		producerIDs := []string{"p1", "p2", "p3"}
		typePool := []string{"t1", "t2", "t3", "t4"}

		pinned := rapid.SliceOfDistinct(rapid.SampledFrom(typePool), rapid.ID[string]).Draw(rt, "pinned")
		for _, id := range pinned {
			_, _, err := c.RegisterType(ctx, id, json.RawMessage(typeSchema))
			require.NoError(rt, err)
		}

		steps := rapid.IntRange(1, 20).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			id := rapid.SampledFrom(producerIDs).Draw(rt, fmt.Sprintf("producer_%d", i))
			if rapid.Bool().Draw(rt, fmt.Sprintf("register_%d", i)) {
				types := rapid.SliceOfDistinct(rapid.SampledFrom(typePool), rapid.ID[string]).Draw(rt, fmt.Sprintf("types_%d", i))
				_, _, err := c.RegisterProducer(ctx, registration(id, types...))
				require.NoError(rt, err)
			} else {
				_ = c.DeregisterProducer(ctx, id)
			}
			assertDirectoryInvariants(rt, c, pinned)
		}
	})
}

func assertDirectoryInvariants(t require.TestingT, c *Coordinator, pinned []string) {
	isPinned := make(map[string]bool)
	for _, id := range pinned {
		isPinned[id] = true
	}
	supporters := make(map[string][]string)
	for _, p := range c.Producers() {
		for _, typeID := range p.TypeIDs() {
			supporters[typeID] = append(supporters[typeID], p.ID)
			_, err := c.GetType(typeID)
			require.NoError(t, err, "type %s of producer %s must exist", typeID, p.ID)
		}
	}
	for _, typ := range c.Types() {
		require.True(t, isPinned[typ.ID] || len(supporters[typ.ID]) > 0, "orphan type %s", typ.ID)
	}
	for _, typeID := range []string{"t1", "t2", "t3", "t4"} {
		want := supporters[typeID]
		if want == nil {
			want = []string{}
		}
		require.ElementsMatch(t, want, c.ProducerIDsForType(typeID), "reverse index for %s", typeID)
	}
}

func TestConcurrentMutationsKeepInvariants(t *testing.T) {
	testlog.Start(t)
	c, _ := newTestCoordinator(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				id := fmt.Sprintf("p%d", (w+i)%3)
				typeID := fmt.Sprintf("t%d", (w*i)%4+1)
				switch i % 3 {
				case 0:
					_, _, _ = c.RegisterProducer(ctx, registration(id, typeID, "t1"))
				case 1:
					_, _ = c.PutJob(ctx, fmt.Sprintf("j%d-%d", w, i), jobInfo(typeID), false)
				default:
					_ = c.DeregisterProducer(ctx, id)
				}
			}
		}()
	}
	wg.Wait()
	assertDirectoryInvariants(t, c, nil)
}
