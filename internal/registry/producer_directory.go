package registry

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// producerEntry is the mutable directory state behind one Producer snapshot.
type producerEntry struct {
	meta         Producer
	acceptedJobs map[string]struct{}
}

// ProducerDirectory maps producer id to producer and keeps the inverse
// type -> producers index in step with every mutation.
type ProducerDirectory struct {
	mu        sync.RWMutex
	producers map[string]*producerEntry
	byType    *MultiMap[*producerEntry]
}

// NewProducerDirectory returns an empty directory.
func NewProducerDirectory() *ProducerDirectory {
	return &ProducerDirectory{
		producers: make(map[string]*producerEntry),
		byType:    NewMultiMap[*producerEntry](),
	}
}

// Put installs p and indexes it under each supported type. An existing
// producer with the same id must be removed first.
func (d *ProducerDirectory) Put(p Producer) {
	entry := &producerEntry{
		meta:         cloneProducer(p),
		acceptedJobs: make(map[string]struct{}),
	}
	if entry.meta.OperationalState == "" {
		entry.meta.OperationalState = StateEnabled
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if prev, ok := d.producers[p.ID]; ok {
		d.unindexLocked(prev)
	}
	d.producers[p.ID] = entry
	for _, t := range entry.meta.SupportedTypes {
		d.byType.Put(t.ID, p.ID, entry)
	}
}

// Remove deletes the producer from the main map and the reverse index.
func (d *ProducerDirectory) Remove(id string) (Producer, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entry, ok := d.producers[id]
	if !ok {
		return Producer{}, false
	}
	delete(d.producers, id)
	d.unindexLocked(entry)
	return cloneProducer(entry.meta), true
}

func (d *ProducerDirectory) unindexLocked(entry *producerEntry) {
	for _, t := range entry.meta.SupportedTypes {
		if _, ok := d.byType.Remove(t.ID, entry.meta.ID); !ok {
			log.Error().
				Str("event", "internal_consistency_fault").
				Str("producer", entry.meta.ID).
				Str("type", t.ID).
				Msg("reverse_index_entry_missing")
		}
	}
}

// Get returns the producer, reporting absence as a routine outcome.
func (d *ProducerDirectory) Get(id string) (Producer, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	entry, ok := d.producers[id]
	if !ok {
		return Producer{}, false
	}
	return cloneProducer(entry.meta), true
}

// GetProducer returns the producer or ErrNotFound.
func (d *ProducerDirectory) GetProducer(id string) (Producer, error) {
	p, ok := d.Get(id)
	if !ok {
		return Producer{}, notFound("information producer", id)
	}
	return p, nil
}

// All returns a point-in-time copy of every producer ordered by id.
func (d *ProducerDirectory) All() []Producer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Producer, 0, len(d.producers))
	for _, entry := range d.producers {
		out = append(out, cloneProducer(entry.meta))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

// ForType returns producers currently supporting typeID.
func (d *ProducerDirectory) ForType(typeID string) []Producer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	entries := d.byType.Get(typeID)
	out := make([]Producer, 0, len(entries))
	for _, entry := range entries {
		out = append(out, cloneProducer(entry.meta))
	}
	return out
}

// IDsForType returns sorted ids of producers supporting typeID.
func (d *ProducerDirectory) IDsForType(typeID string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.byType.IDs(typeID)
}

func (d *ProducerDirectory) CountForType(typeID string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.byType.Len(typeID)
}

func (d *ProducerDirectory) Size() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.producers)
}

// RecordHealthy resets the failure counter and enables the producer. It
// returns the state held before the call.
func (d *ProducerDirectory) RecordHealthy(id string) (OperationalState, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entry, ok := d.producers[id]
	if !ok {
		return "", false
	}
	prev := entry.meta.OperationalState
	entry.meta.FailureCount = 0
	entry.meta.OperationalState = StateEnabled
	return prev, true
}

// RecordFailure increments the failure counter and disables the producer. It
// returns the new count and the state held before the call.
func (d *ProducerDirectory) RecordFailure(id string) (int, OperationalState, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entry, ok := d.producers[id]
	if !ok {
		return 0, "", false
	}
	prev := entry.meta.OperationalState
	entry.meta.FailureCount++
	entry.meta.OperationalState = StateDisabled
	return entry.meta.FailureCount, prev, true
}

// SetJobAccepted records whether producer id currently runs jobID.
func (d *ProducerDirectory) SetJobAccepted(id, jobID string, accepted bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entry, ok := d.producers[id]
	if !ok {
		return
	}
	if accepted {
		entry.acceptedJobs[jobID] = struct{}{}
		return
	}
	delete(entry.acceptedJobs, jobID)
}

// JobAccepted reports whether producer id took the last push of jobID.
func (d *ProducerDirectory) JobAccepted(id, jobID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	entry, ok := d.producers[id]
	if !ok {
		return false
	}
	_, accepted := entry.acceptedJobs[jobID]
	return accepted
}

// AcceptedJobs returns the sorted job ids accepted by producer id.
func (d *ProducerDirectory) AcceptedJobs(id string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	entry, ok := d.producers[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(entry.acceptedJobs))
	for jobID := range entry.acceptedJobs {
		out = append(out, jobID)
	}
	sort.Strings(out)
	return out
}

// ForgetJob drops jobID from every producer's accepted set.
func (d *ProducerDirectory) ForgetJob(jobID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, entry := range d.producers {
		delete(entry.acceptedJobs, jobID)
	}
}

// JobEnabled reports whether an enabled producer of typeID accepted jobID.
func (d *ProducerDirectory) JobEnabled(typeID, jobID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, entry := range d.byType.Get(typeID) {
		if entry.meta.OperationalState != StateEnabled {
			continue
		}
		if _, ok := entry.acceptedJobs[jobID]; ok {
			return true
		}
	}
	return false
}

func cloneProducer(p Producer) Producer {
	types := make([]CapabilityType, len(p.SupportedTypes))
	for i, t := range p.SupportedTypes {
		types[i] = cloneType(t)
	}
	p.SupportedTypes = types
	return p
}
