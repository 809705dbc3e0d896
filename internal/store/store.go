package store

import (
	"context"

	"github.com/Prakashmoharana1985/O-RAN/internal/registry"
)

// Store is the durable record of jobs and types keyed by id.
type Store interface {
	SaveJob(ctx context.Context, job registry.Job) error
	DeleteJob(ctx context.Context, id string) error
	LoadJobs(ctx context.Context) ([]registry.Job, error)
	SaveType(ctx context.Context, t registry.CapabilityType) error
	DeleteType(ctx context.Context, id string) error
	LoadTypes(ctx context.Context) ([]registry.CapabilityType, error)
	Close() error
}

// NopStore keeps nothing. It backs processes without a database path and
// stands in when the database cannot be opened.
type NopStore struct{}

func (NopStore) SaveJob(context.Context, registry.Job) error { return nil }
func (NopStore) DeleteJob(context.Context, string) error     { return nil }
func (NopStore) LoadJobs(context.Context) ([]registry.Job, error) {
	return nil, nil
}
func (NopStore) SaveType(context.Context, registry.CapabilityType) error { return nil }
func (NopStore) DeleteType(context.Context, string) error                { return nil }
func (NopStore) LoadTypes(context.Context) ([]registry.CapabilityType, error) {
	return nil, nil
}
func (NopStore) Close() error { return nil }

var _ Store = NopStore{}
var _ Store = (*SQLiteStore)(nil)
