package registry

import (
	"sort"
	"sync"
	"time"
)

// JobDirectory maps job id to job.
type JobDirectory struct {
	mu   sync.RWMutex
	jobs map[string]Job
}

// NewJobDirectory returns an empty directory.
func NewJobDirectory() *JobDirectory {
	return &JobDirectory{jobs: make(map[string]Job)}
}

// Put installs job, keeping CreatedAt of an existing job with the same id.
// It returns the stored record and whether the job was new.
func (d *JobDirectory) Put(job Job, now time.Time) (Job, bool) {
	job = cloneJob(job)
	d.mu.Lock()
	defer d.mu.Unlock()
	prev, existed := d.jobs[job.ID]
	if existed {
		job.CreatedAt = prev.CreatedAt
		job.LastReportedEnabled = prev.LastReportedEnabled
	} else if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.LastUpdated = now
	d.jobs[job.ID] = job
	return cloneJob(job), !existed
}

// Restore installs a persisted job verbatim.
func (d *JobDirectory) Restore(job Job) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.jobs[job.ID] = cloneJob(job)
}

func (d *JobDirectory) Get(id string) (Job, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	job, ok := d.jobs[id]
	return cloneJob(job), ok
}

// GetJob returns the job or ErrNotFound.
func (d *JobDirectory) GetJob(id string) (Job, error) {
	job, ok := d.Get(id)
	if !ok {
		return Job{}, notFound("information job", id)
	}
	return job, nil
}

func (d *JobDirectory) Remove(id string) (Job, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	job, ok := d.jobs[id]
	if ok {
		delete(d.jobs, id)
	}
	return job, ok
}

// SetLastReported stores the status last notified for job id.
func (d *JobDirectory) SetLastReported(id string, enabled bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	job, ok := d.jobs[id]
	if !ok {
		return false
	}
	job.LastReportedEnabled = enabled
	d.jobs[id] = job
	return true
}

// Filter returns jobs ordered by id; empty owner or typeID match all.
func (d *JobDirectory) Filter(owner, typeID string) []Job {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Job, 0, len(d.jobs))
	for _, job := range d.jobs {
		if owner != "" && job.Owner != owner {
			continue
		}
		if typeID != "" && job.TypeID != typeID {
			continue
		}
		out = append(out, cloneJob(job))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

func (d *JobDirectory) All() []Job {
	return d.Filter("", "")
}

func (d *JobDirectory) ForType(typeID string) []Job {
	if typeID == "" {
		return nil
	}
	return d.Filter("", typeID)
}

func (d *JobDirectory) Size() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.jobs)
}

func cloneJob(job Job) Job {
	if job.JobData != nil {
		job.JobData = append([]byte(nil), job.JobData...)
	}
	return job
}
