package coordinator

import (
	"context"
	"errors"
	"sync"

	"github.com/Prakashmoharana1985/O-RAN/internal/registry"
)

type statusCall struct {
	JobID  string
	Status registry.JobStatus
}

// fakeNotifier records outbound traffic and rejects job starts for producers
// listed in reject.
type fakeNotifier struct {
	mu          sync.Mutex
	reject      map[string]bool
	starts      []string
	stops       []string
	statuses    []statusCall
	typeAdded   []string
	typeRemoved []string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{reject: make(map[string]bool)}
}

func (f *fakeNotifier) setReject(producerID string, reject bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reject[producerID] = reject
}

func (f *fakeNotifier) StartJob(_ context.Context, p registry.Producer, job registry.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts = append(f.starts, p.ID+"/"+job.ID)
	if f.reject[p.ID] {
		return errors.New("rejected")
	}
	return nil
}

func (f *fakeNotifier) StopJob(p registry.Producer, jobID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops = append(f.stops, p.ID+"/"+jobID)
}

func (f *fakeNotifier) JobStatus(job registry.Job, status registry.JobStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, statusCall{JobID: job.ID, Status: status})
}

func (f *fakeNotifier) TypeAdded(_ []registry.Subscription, t registry.CapabilityType) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.typeAdded = append(f.typeAdded, t.ID)
}

func (f *fakeNotifier) TypeRemoved(_ []registry.Subscription, t registry.CapabilityType) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.typeRemoved = append(f.typeRemoved, t.ID)
}

func (f *fakeNotifier) statusLog() []statusCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]statusCall(nil), f.statuses...)
}

func (f *fakeNotifier) startLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.starts...)
}

func (f *fakeNotifier) stopLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.stops...)
}
