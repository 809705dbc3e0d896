package policy

import (
	"encoding/json"
	"sort"
	"sync"
)

// RicState is the synchronization state of one RIC.
type RicState string

const (
	RicUndefined  RicState = "UNDEFINED"
	RicIdle       RicState = "IDLE"
	RicRecovering RicState = "RECOVERING"
)

// PolicyType is a policy type known by at least one RIC.
type PolicyType struct {
	Name   string          `json:"name"`
	Schema json.RawMessage `json:"schema,omitempty"`
}

// RicInfo is a point-in-time copy of a Ric.
type RicInfo struct {
	Name              string   `json:"name"`
	BaseURL           string   `json:"base_url"`
	ManagedElementIDs []string `json:"managed_element_ids"`
	State             RicState `json:"state"`
	PolicyTypes       []string `json:"policy_types"`
}

// Ric is one configured RAN controller.
type Ric struct {
	// ops serializes policy writes against recovery runs.
	ops             sync.Mutex
	mu              sync.Mutex
	name            string
	baseURL         string
	managedElements []string
	state           RicState
	types           map[string]PolicyType
}

// NewRic returns a Ric in UNDEFINED state; it becomes usable after its
// first successful recovery.
func NewRic(name, baseURL string, managedElementIDs []string) *Ric {
	return &Ric{
		name:            name,
		baseURL:         baseURL,
		managedElements: append([]string(nil), managedElementIDs...),
		state:           RicUndefined,
		types:           make(map[string]PolicyType),
	}
}

// LockOperations blocks until no policy write or recovery is running
// against the RIC. Callers hold it across the state check, the A1 call and
// the local repository write.
func (r *Ric) LockOperations() {
	r.ops.Lock()
}

func (r *Ric) UnlockOperations() {
	r.ops.Unlock()
}

func (r *Ric) Name() string {
	return r.name
}

func (r *Ric) BaseURL() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.baseURL
}

// Reconfigure replaces the address and managed elements from configuration.
func (r *Ric) Reconfigure(baseURL string, managedElementIDs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.baseURL = baseURL
	r.managedElements = append([]string(nil), managedElementIDs...)
}

func (r *Ric) ManagesElement(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, me := range r.managedElements {
		if me == id {
			return true
		}
	}
	return false
}

func (r *Ric) State() RicState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Ric) SetState(state RicState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = state
}

// TryBeginRecovery moves the Ric to RECOVERING unless it already is. It
// reports whether the caller now owns the recovery.
func (r *Ric) TryBeginRecovery() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == RicRecovering {
		return false
	}
	r.state = RicRecovering
	return true
}

func (r *Ric) ClearSupportedTypes() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = make(map[string]PolicyType)
}

func (r *Ric) AddSupportedType(t PolicyType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[t.Name] = t
}

func (r *Ric) SupportsType(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.types[name]
	return ok
}

// SupportedTypeNames returns the supported policy type names, sorted.
func (r *Ric) SupportedTypeNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.typeNamesLocked()
}

func (r *Ric) typeNamesLocked() []string {
	out := make([]string, 0, len(r.types))
	for name := range r.types {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (r *Ric) Info() RicInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RicInfo{
		Name:              r.name,
		BaseURL:           r.baseURL,
		ManagedElementIDs: append([]string{}, r.managedElements...),
		State:             r.state,
		PolicyTypes:       r.typeNamesLocked(),
	}
}
