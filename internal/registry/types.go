package registry

import (
	"encoding/json"
	"time"
)

// OperationalState is the supervision view of a producer.
type OperationalState string

const (
	StateEnabled  OperationalState = "ENABLED"
	StateDisabled OperationalState = "DISABLED"
)

// JobStatus is the effective status reported for a job.
type JobStatus string

const (
	JobEnabled  JobStatus = "ENABLED"
	JobDisabled JobStatus = "DISABLED"
)

// StatusOf converts an enabled flag to a JobStatus.
func StatusOf(enabled bool) JobStatus {
	if enabled {
		return JobEnabled
	}
	return JobDisabled
}

// CapabilityType is one schema-described kind of job.
type CapabilityType struct {
	ID     string          `json:"id"`
	Schema json.RawMessage `json:"schema,omitempty"`
	// Pinned types were registered directly and survive without producers.
	Pinned bool `json:"pinned"`
}

// TypeRegistration is one type declared by a producer registration.
type TypeRegistration struct {
	ID     string
	Schema json.RawMessage
}

// ProducerRegistration is the full replacement definition of a producer.
type ProducerRegistration struct {
	ID                     string
	SupportedTypes         []TypeRegistration
	JobCallbackURL         string
	SupervisionCallbackURL string
}

// Producer is a point-in-time copy of a registered producer.
type Producer struct {
	ID                     string
	SupportedTypes         []CapabilityType
	JobCallbackURL         string
	SupervisionCallbackURL string
	OperationalState       OperationalState
	FailureCount           int
	RegisteredAt           time.Time
}

// TypeIDs returns the supported type ids in registration order.
func (p Producer) TypeIDs() []string {
	out := make([]string, 0, len(p.SupportedTypes))
	for _, t := range p.SupportedTypes {
		out = append(out, t.ID)
	}
	return out
}

// Supports reports whether the producer declared typeID.
func (p Producer) Supports(typeID string) bool {
	for _, t := range p.SupportedTypes {
		if t.ID == typeID {
			return true
		}
	}
	return false
}

// JobInfo is the caller-owned part of a job definition.
type JobInfo struct {
	TypeID            string          `json:"type_id"`
	Owner             string          `json:"owner"`
	TargetURI         string          `json:"target_uri"`
	StatusCallbackURL string          `json:"status_callback_url"`
	JobData           json.RawMessage `json:"job_data,omitempty"`
}

// Job is one unit of work requested by a consumer.
type Job struct {
	ID string `json:"id"`
	JobInfo
	LastReportedEnabled bool      `json:"last_reported_enabled"`
	CreatedAt           time.Time `json:"created_at"`
	LastUpdated         time.Time `json:"last_updated"`
}

// Subscription receives type-added and type-removed events.
type Subscription struct {
	ID          string `json:"id"`
	Owner       string `json:"owner"`
	CallbackURL string `json:"callback_url"`
}
