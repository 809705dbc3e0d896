package policy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Prakashmoharana1985/O-RAN/internal/registry"
	"github.com/Prakashmoharana1985/O-RAN/internal/remote"
	"github.com/rs/zerolog/log"
)

// ErrRicNotAvailable reports a RIC that is recovering or failed to recover.
var ErrRicNotAvailable = errors.New("policy: ric not available")

// A1 is the RIC policy interface.
type A1 interface {
	PolicyTypeIDs(ctx context.Context, baseURL string) ([]string, error)
	PolicyTypeSchema(ctx context.Context, baseURL, typeID string) (json.RawMessage, error)
	PolicyIdentities(ctx context.Context, baseURL string) ([]remote.PolicyRef, error)
	PutPolicy(ctx context.Context, baseURL, typeID, policyID string, payload json.RawMessage) error
	DeletePolicy(ctx context.Context, baseURL, typeID, policyID string) error
}

var _ A1 = (*remote.A1Client)(nil)

// Controller applies policy and service requests to RICs and the local
// repositories.
type Controller struct {
	Rics     *Rics
	Types    *PolicyTypes
	Policies *Policies
	Services *Services

	a1  A1
	now func() time.Time
}

func NewController(a1 A1) *Controller {
	return &Controller{
		Rics:     NewRics(),
		Types:    NewPolicyTypes(),
		Policies: NewPolicies(),
		Services: NewServices(),
		a1:       a1,
		now:      time.Now,
	}
}

// A1 returns the RIC client the controller uses.
func (c *Controller) A1() A1 {
	return c.a1
}

// PutPolicy places p in its RIC and records it locally. It reports whether
// the policy is new.
func (c *Controller) PutPolicy(ctx context.Context, p Policy) (bool, error) {
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" || p.RicName == "" || p.TypeID == "" || p.OwnerService == "" {
		return false, fmt.Errorf("%w: policy id, ric, type and service are required", registry.ErrValidation)
	}
	if len(p.Payload) == 0 || !json.Valid(p.Payload) {
		return false, fmt.Errorf("%w: policy %q payload must be json", registry.ErrValidation, p.ID)
	}
	if prev, ok := c.Policies.Get(p.ID); ok && (prev.RicName != p.RicName || prev.TypeID != p.TypeID) {
		return false, fmt.Errorf("%w: policy %q cannot move between rics or types", registry.ErrConflict, p.ID)
	}
	ric, err := c.Rics.GetRic(p.RicName)
	if err != nil {
		return false, err
	}
	ric.LockOperations()
	defer ric.UnlockOperations()
	if state := ric.State(); state != RicIdle {
		return false, fmt.Errorf("%w: %w: ric %q is %s", registry.ErrConflict, ErrRicNotAvailable, ric.Name(), state)
	}
	if !ric.SupportsType(p.TypeID) {
		return false, fmt.Errorf("%w: ric %q does not support policy type %q", registry.ErrNotFound, ric.Name(), p.TypeID)
	}
	if err := c.a1.PutPolicy(ctx, ric.BaseURL(), p.TypeID, p.ID, p.Payload); err != nil {
		return false, err
	}
	_, existed := c.Policies.Get(p.ID)
	p.LastModified = c.now()
	c.Policies.Put(p)
	log.Info().Str("policy", p.ID).Str("ric", p.RicName).Str("type", p.TypeID).Msg("policy_stored")
	return !existed, nil
}

// DeletePolicy removes the policy from its RIC and locally.
func (c *Controller) DeletePolicy(ctx context.Context, id string) error {
	p, err := c.Policies.GetPolicy(id)
	if err != nil {
		return err
	}
	ric, err := c.Rics.GetRic(p.RicName)
	if err == nil {
		ric.LockOperations()
		defer ric.UnlockOperations()
		if state := ric.State(); state == RicRecovering {
			return fmt.Errorf("%w: %w: ric %q is %s", registry.ErrConflict, ErrRicNotAvailable, ric.Name(), state)
		}
		if err := c.a1.DeletePolicy(ctx, ric.BaseURL(), p.TypeID, p.ID); err != nil {
			return err
		}
	}
	c.Policies.Remove(id)
	log.Info().Str("policy", id).Str("ric", p.RicName).Msg("policy_deleted")
	return nil
}

// PutService registers or refreshes a service and reports whether it is new.
func (c *Controller) PutService(svc Service) (bool, error) {
	svc.Name = strings.TrimSpace(svc.Name)
	if svc.Name == "" {
		return false, fmt.Errorf("%w: service name required", registry.ErrValidation)
	}
	if svc.KeepAlive < 0 {
		return false, fmt.Errorf("%w: service %q keep alive must not be negative", registry.ErrValidation, svc.Name)
	}
	svc.LastPing = c.now()
	created := c.Services.Put(svc)
	log.Info().Str("service", svc.Name).Bool("created", created).Msg("service_registered")
	return created, nil
}

func (c *Controller) KeepAlive(name string) error {
	return c.Services.Ping(name, c.now())
}

// DeleteService removes a service and every policy it owns.
func (c *Controller) DeleteService(ctx context.Context, name string) error {
	if _, err := c.Services.GetService(name); err != nil {
		return err
	}
	c.Services.Remove(name)
	c.deleteServicePolicies(ctx, name)
	log.Info().Str("service", name).Msg("service_deleted")
	return nil
}

// ExpireServices removes services whose keep-alive lapsed and returns their
// names.
func (c *Controller) ExpireServices(ctx context.Context) []string {
	now := c.now()
	var expired []string
	for _, svc := range c.Services.All() {
		if !svc.Expired(now) {
			continue
		}
		c.Services.Remove(svc.Name)
		c.deleteServicePolicies(ctx, svc.Name)
		expired = append(expired, svc.Name)
		log.Warn().Str("service", svc.Name).Dur("keep_alive", svc.KeepAlive).Msg("service_expired")
	}
	return expired
}

func (c *Controller) deleteServicePolicies(ctx context.Context, service string) {
	for _, p := range c.Policies.ForService(service) {
		ric, ok := c.Rics.Get(p.RicName)
		if !ok {
			c.Policies.Remove(p.ID)
			continue
		}
		ric.LockOperations()
		if err := c.a1.DeletePolicy(ctx, ric.BaseURL(), p.TypeID, p.ID); err != nil {
			log.Warn().Err(err).Str("policy", p.ID).Str("ric", p.RicName).Msg("policy_delete_in_ric_failed")
		}
		c.Policies.Remove(p.ID)
		ric.UnlockOperations()
	}
}
