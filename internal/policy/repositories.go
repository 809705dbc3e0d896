package policy

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Prakashmoharana1985/O-RAN/internal/registry"
)

// Rics maps RIC name to Ric.
type Rics struct {
	mu   sync.RWMutex
	rics map[string]*Ric
}

func NewRics() *Rics {
	return &Rics{rics: make(map[string]*Ric)}
}

func (r *Rics) Put(ric *Ric) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rics[ric.Name()] = ric
}

func (r *Rics) Get(name string) (*Ric, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ric, ok := r.rics[name]
	return ric, ok
}

// GetRic returns the Ric or registry.ErrNotFound.
func (r *Rics) GetRic(name string) (*Ric, error) {
	ric, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: ric %q", registry.ErrNotFound, name)
	}
	return ric, nil
}

func (r *Rics) Remove(name string) (*Ric, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ric, ok := r.rics[name]
	if ok {
		delete(r.rics, name)
	}
	return ric, ok
}

// All returns every Ric ordered by name.
func (r *Rics) All() []*Ric {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Ric, 0, len(r.rics))
	for _, ric := range r.rics {
		out = append(out, ric)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name() < out[j].Name()
	})
	return out
}

// ForManagedElement returns the Ric managing the element id.
func (r *Rics) ForManagedElement(id string) (*Ric, error) {
	for _, ric := range r.All() {
		if ric.ManagesElement(id) {
			return ric, nil
		}
	}
	return nil, fmt.Errorf("%w: no ric manages element %q", registry.ErrNotFound, id)
}

func (r *Rics) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rics)
}

// PolicyTypes caches policy type schemas fetched from RICs.
type PolicyTypes struct {
	mu    sync.RWMutex
	types map[string]PolicyType
}

func NewPolicyTypes() *PolicyTypes {
	return &PolicyTypes{types: make(map[string]PolicyType)}
}

func (p *PolicyTypes) Get(name string) (PolicyType, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	t, ok := p.types[name]
	return t, ok
}

func (p *PolicyTypes) Put(t PolicyType) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types[t.Name] = t
}

func (p *PolicyTypes) All() []PolicyType {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]PolicyType, 0, len(p.types))
	for _, t := range p.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

func (p *PolicyTypes) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.types)
}

// Policy is one policy instance owned by a service and placed in one RIC.
type Policy struct {
	ID           string          `json:"id"`
	RicName      string          `json:"ric"`
	TypeID       string          `json:"type"`
	OwnerService string          `json:"service"`
	Payload      json.RawMessage `json:"payload"`
	LastModified time.Time       `json:"last_modified"`
}

// Policies indexes local policies by id, RIC and owning service.
type Policies struct {
	mu        sync.RWMutex
	byID      map[string]Policy
	byRic     *registry.MultiMap[Policy]
	byService *registry.MultiMap[Policy]
}

func NewPolicies() *Policies {
	return &Policies{
		byID:      make(map[string]Policy),
		byRic:     registry.NewMultiMap[Policy](),
		byService: registry.NewMultiMap[Policy](),
	}
}

func (p *Policies) Put(policy Policy) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if prev, ok := p.byID[policy.ID]; ok {
		p.unindexLocked(prev)
	}
	p.byID[policy.ID] = policy
	p.byRic.Put(policy.RicName, policy.ID, policy)
	p.byService.Put(policy.OwnerService, policy.ID, policy)
}

func (p *Policies) Get(id string) (Policy, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	policy, ok := p.byID[id]
	return policy, ok
}

// GetPolicy returns the policy or registry.ErrNotFound.
func (p *Policies) GetPolicy(id string) (Policy, error) {
	policy, ok := p.Get(id)
	if !ok {
		return Policy{}, fmt.Errorf("%w: policy %q", registry.ErrNotFound, id)
	}
	return policy, nil
}

func (p *Policies) Remove(id string) (Policy, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	policy, ok := p.byID[id]
	if !ok {
		return Policy{}, false
	}
	delete(p.byID, id)
	p.unindexLocked(policy)
	return policy, true
}

func (p *Policies) unindexLocked(policy Policy) {
	p.byRic.Remove(policy.RicName, policy.ID)
	p.byService.Remove(policy.OwnerService, policy.ID)
}

// ForRic returns the policies placed in ric, ordered by id.
func (p *Policies) ForRic(ric string) []Policy {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.byRic.Get(ric)
}

// ForService returns the policies owned by service, ordered by id.
func (p *Policies) ForService(service string) []Policy {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.byService.Get(service)
}

// RemoveForRic drops every local policy of ric and returns them.
func (p *Policies) RemoveForRic(ric string) []Policy {
	p.mu.Lock()
	defer p.mu.Unlock()
	removed := p.byRic.Get(ric)
	for _, policy := range removed {
		delete(p.byID, policy.ID)
		p.unindexLocked(policy)
	}
	return removed
}

func (p *Policies) All() []Policy {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Policy, 0, len(p.byID))
	for _, policy := range p.byID {
		out = append(out, policy)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

func (p *Policies) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.byID)
}

// Service is a policy owner that may receive recovery broadcasts.
type Service struct {
	Name        string        `json:"name"`
	CallbackURL string        `json:"callback_url,omitempty"`
	KeepAlive   time.Duration `json:"keep_alive"`
	LastPing    time.Time     `json:"last_ping"`
}

// Expired reports whether a service with a keep-alive interval missed it.
func (s Service) Expired(now time.Time) bool {
	return s.KeepAlive > 0 && now.Sub(s.LastPing) > s.KeepAlive
}

type Services struct {
	mu       sync.RWMutex
	services map[string]Service
}

func NewServices() *Services {
	return &Services{services: make(map[string]Service)}
}

// Put stores svc and reports whether it was new.
func (s *Services) Put(svc Service) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, existed := s.services[svc.Name]
	s.services[svc.Name] = svc
	return !existed
}

func (s *Services) GetService(name string) (Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	svc, ok := s.services[name]
	if !ok {
		return Service{}, fmt.Errorf("%w: service %q", registry.ErrNotFound, name)
	}
	return svc, nil
}

func (s *Services) Remove(name string) (Service, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc, ok := s.services[name]
	if ok {
		delete(s.services, name)
	}
	return svc, ok
}

// Ping refreshes the keep-alive timestamp of service name.
func (s *Services) Ping(name string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc, ok := s.services[name]
	if !ok {
		return fmt.Errorf("%w: service %q", registry.ErrNotFound, name)
	}
	svc.LastPing = now
	s.services[name] = svc
	return nil
}

func (s *Services) All() []Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Service, 0, len(s.services))
	for _, svc := range s.services {
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// CallbackURLs returns the callback of every service that has one.
func (s *Services) CallbackURLs() []string {
	var out []string
	for _, svc := range s.All() {
		if svc.CallbackURL != "" {
			out = append(out, svc.CallbackURL)
		}
	}
	return out
}
