// Package fakea1 simulates RIC A1 endpoints in memory, keyed by base URL,
// with per-operation failure injection.
package fakea1

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"github.com/Prakashmoharana1985/O-RAN/internal/remote"
)

const (
	OpTypes      = "types"
	OpSchema     = "schema"
	OpIdentities = "identities"
	OpPut        = "put"
	OpDelete     = "delete"
)

var ErrInjected = errors.New("fakea1: injected failure")

type ric struct {
	types    map[string]json.RawMessage
	policies map[string]remote.PolicyRef
}

type A1 struct {
	mu    sync.Mutex
	rics  map[string]*ric
	fail  map[string]bool
	calls []string
}

func New() *A1 {
	return &A1{
		rics: make(map[string]*ric),
		fail: make(map[string]bool),
	}
}

// AddRIC installs a simulated RIC at baseURL supporting typeIDs.
func (f *A1) AddRIC(baseURL string, typeIDs ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := &ric{
		types:    make(map[string]json.RawMessage),
		policies: make(map[string]remote.PolicyRef),
	}
	for _, id := range typeIDs {
		r.types[id] = json.RawMessage(`{"type":"object"}`)
	}
	f.rics[baseURL] = r
}

// SeedPolicy places a policy directly in the simulated RIC.
func (f *A1) SeedPolicy(baseURL, typeID, policyID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rics[baseURL].policies[policyID] = remote.PolicyRef{TypeID: typeID, PolicyID: policyID}
}

// FailOn makes op against baseURL fail until Heal is called.
func (f *A1) FailOn(op, baseURL string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op+" "+baseURL] = true
}

func (f *A1) Heal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = make(map[string]bool)
}

// PolicyIDs returns the sorted policy ids held by the RIC at baseURL.
func (f *A1) PolicyIDs(baseURL string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rics[baseURL]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(r.policies))
	for id := range r.policies {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Calls returns "op baseURL" for every call in order.
func (f *A1) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *A1) enter(op, baseURL string) (*ric, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op+" "+baseURL)
	if f.fail[op+" "+baseURL] {
		return nil, &remote.TransportError{Method: op, URL: baseURL, Err: ErrInjected}
	}
	r, ok := f.rics[baseURL]
	if !ok {
		return nil, &remote.TransportError{Method: op, URL: baseURL, Err: errors.New("fakea1: no such ric")}
	}
	return r, nil
}

func (f *A1) PolicyTypeIDs(_ context.Context, baseURL string) ([]string, error) {
	r, err := f.enter(OpTypes, baseURL)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(r.types))
	for id := range r.types {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (f *A1) PolicyTypeSchema(_ context.Context, baseURL, typeID string) (json.RawMessage, error) {
	r, err := f.enter(OpSchema, baseURL)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	schema, ok := r.types[typeID]
	if !ok {
		return nil, &remote.StatusError{Method: "GET", URL: baseURL, StatusCode: 404}
	}
	return schema, nil
}

func (f *A1) PolicyIdentities(_ context.Context, baseURL string) ([]remote.PolicyRef, error) {
	r, err := f.enter(OpIdentities, baseURL)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]remote.PolicyRef, 0, len(r.policies))
	for _, ref := range r.policies {
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PolicyID < out[j].PolicyID
	})
	return out, nil
}

func (f *A1) PutPolicy(_ context.Context, baseURL, typeID, policyID string, _ json.RawMessage) error {
	r, err := f.enter(OpPut, baseURL)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := r.types[typeID]; !ok {
		return &remote.StatusError{Method: "PUT", URL: baseURL, StatusCode: 404}
	}
	r.policies[policyID] = remote.PolicyRef{TypeID: typeID, PolicyID: policyID}
	return nil
}

func (f *A1) DeletePolicy(_ context.Context, baseURL, _, policyID string) error {
	r, err := f.enter(OpDelete, baseURL)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(r.policies, policyID)
	return nil
}
