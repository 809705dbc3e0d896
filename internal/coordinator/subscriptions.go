package coordinator

import (
	"fmt"
	"strings"

	"github.com/Prakashmoharana1985/O-RAN/internal/registry"
	"github.com/rs/zerolog/log"
)

// PutSubscription stores a type subscription and reports whether it is new.
func (c *Coordinator) PutSubscription(sub registry.Subscription) (bool, error) {
	sub.ID = strings.TrimSpace(sub.ID)
	sub.CallbackURL = strings.TrimSpace(sub.CallbackURL)
	if sub.ID == "" {
		return false, fmt.Errorf("%w: subscription id required", registry.ErrValidation)
	}
	if sub.CallbackURL == "" {
		return false, fmt.Errorf("%w: subscription %q has no callback url", registry.ErrValidation, sub.ID)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	created := c.subs.Put(sub)
	log.Info().Str("subscription", sub.ID).Str("owner", sub.Owner).Bool("created", created).Msg("type_subscription_stored")
	return created, nil
}

// DeleteSubscription removes the subscription or returns registry.ErrNotFound.
func (c *Coordinator) DeleteSubscription(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.subs.Remove(id); err != nil {
		return err
	}
	log.Info().Str("subscription", id).Msg("type_subscription_deleted")
	return nil
}

func (c *Coordinator) GetSubscription(id string) (registry.Subscription, error) {
	return c.subs.Get(id)
}

// Subscriptions lists subscriptions ordered by id; empty owner matches all.
func (c *Coordinator) Subscriptions(owner string) []registry.Subscription {
	return c.subs.All(owner)
}
