package registry

import (
	"sort"
	"sync"
)

// SubscriptionDirectory stores type subscriptions by id.
type SubscriptionDirectory struct {
	mu   sync.RWMutex
	subs map[string]Subscription
}

// NewSubscriptionDirectory returns an empty directory.
func NewSubscriptionDirectory() *SubscriptionDirectory {
	return &SubscriptionDirectory{subs: make(map[string]Subscription)}
}

// Put stores sub and reports whether it was new.
func (d *SubscriptionDirectory) Put(sub Subscription) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, existed := d.subs[sub.ID]
	d.subs[sub.ID] = sub
	return !existed
}

func (d *SubscriptionDirectory) Get(id string) (Subscription, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	sub, ok := d.subs[id]
	if !ok {
		return Subscription{}, notFound("type subscription", id)
	}
	return sub, nil
}

func (d *SubscriptionDirectory) Remove(id string) (Subscription, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sub, ok := d.subs[id]
	if !ok {
		return Subscription{}, notFound("type subscription", id)
	}
	delete(d.subs, id)
	return sub, nil
}

// All returns subscriptions ordered by id, optionally filtered by owner.
func (d *SubscriptionDirectory) All(owner string) []Subscription {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Subscription, 0, len(d.subs))
	for _, sub := range d.subs {
		if owner != "" && sub.Owner != owner {
			continue
		}
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}
