// Package notify delivers outbound callbacks: job status changes, job start
// and stop requests to producers, type events to subscribers and recovery
// broadcasts to services.
//
// Ownership boundary:
//   - notify owns message bodies and callback URL layout.
//   - notify never mutates directories; callers record outcomes.
//   - fire-and-forget sends never report failure to the caller; they are logged
//     and counted.
package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Prakashmoharana1985/O-RAN/internal/observability"
	"github.com/Prakashmoharana1985/O-RAN/internal/registry"
	"github.com/Prakashmoharana1985/O-RAN/internal/remote"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	KindJobStatus    = "job_status"
	KindJobStop      = "job_stop"
	KindTypeAdded    = "type_added"
	KindTypeRemoved  = "type_removed"
	KindRecoveryDone = "recovery_completed"
)

// Config bounds the fire-and-forget delivery pool.
type Config struct {
	// Concurrency caps in-flight fire-and-forget sends.
	Concurrency int
	// SendTimeout bounds one background send.
	SendTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Concurrency: 16,
		SendTimeout: 30 * time.Second,
	}
}

func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.Concurrency <= 0 {
		c.Concurrency = d.Concurrency
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = d.SendTimeout
	}
	return c
}

// JobStatusMessage is posted to a job's status callback.
type JobStatusMessage struct {
	NotificationID string             `json:"notification_id"`
	JobID          string             `json:"job_id"`
	Status         registry.JobStatus `json:"status"`
}

// TypeEventMessage is posted to type subscribers.
type TypeEventMessage struct {
	NotificationID string          `json:"notification_id"`
	Event          string          `json:"event"`
	TypeID         string          `json:"type_id"`
	Schema         json.RawMessage `json:"schema,omitempty"`
}

// StartJobMessage is posted to a producer's job callback.
type StartJobMessage struct {
	JobID             string          `json:"job_id"`
	TypeID            string          `json:"type_id"`
	Owner             string          `json:"owner"`
	TargetURI         string          `json:"target_uri"`
	StatusCallbackURL string          `json:"status_callback_url,omitempty"`
	JobData           json.RawMessage `json:"job_data,omitempty"`
	LastUpdated       time.Time       `json:"last_updated"`
}

// Notifier sends callbacks through a remote.Client.
type Notifier struct {
	client remote.Client
	retry  remote.RetryConfig
	cfg    Config
	sem    chan struct{}
	wg     sync.WaitGroup
}

// New returns a Notifier sending through client. retry applies to job
// starts only.
func New(client remote.Client, retry remote.RetryConfig, cfg Config) *Notifier {
	cfg = cfg.WithDefaults()
	return &Notifier{
		client: client,
		retry:  retry.WithDefaults(),
		cfg:    cfg,
		sem:    make(chan struct{}, cfg.Concurrency),
	}
}

// StartJob pushes job to producer p and waits for the outcome. Rejections are
// retried per the retry configuration.
func (n *Notifier) StartJob(ctx context.Context, p registry.Producer, job registry.Job) error {
	body, err := json.Marshal(StartJobMessage{
		JobID:             job.ID,
		TypeID:            job.TypeID,
		Owner:             job.Owner,
		TargetURI:         job.TargetURI,
		StatusCallbackURL: job.StatusCallbackURL,
		JobData:           job.JobData,
		LastUpdated:       job.LastUpdated,
	})
	if err != nil {
		return err
	}
	req := remote.Request{Method: http.MethodPost, URL: p.JobCallbackURL, Body: body}
	_, err = remote.CallWithRetry(ctx, n.client, req, n.retry)
	observability.RecordJobPush(err == nil)
	if err != nil {
		log.Warn().
			Err(err).
			Str("producer", p.ID).
			Str("job", job.ID).
			Msg("job_start_rejected")
		return err
	}
	log.Debug().Str("producer", p.ID).Str("job", job.ID).Msg("job_started")
	return nil
}

// StopJob asks producer p to drop jobID. It does not wait.
func (n *Notifier) StopJob(p registry.Producer, jobID string) {
	if strings.TrimSpace(p.JobCallbackURL) == "" {
		return
	}
	target := strings.TrimRight(p.JobCallbackURL, "/") + "/" + jobID
	n.send(KindJobStop, remote.Request{Method: http.MethodDelete, URL: target})
}

// JobStatus reports a job status change to the job's status callback.
func (n *Notifier) JobStatus(job registry.Job, status registry.JobStatus) {
	if strings.TrimSpace(job.StatusCallbackURL) == "" {
		return
	}
	body, _ := json.Marshal(JobStatusMessage{
		NotificationID: uuid.NewString(),
		JobID:          job.ID,
		Status:         status,
	})
	n.send(KindJobStatus, remote.Request{Method: http.MethodPost, URL: job.StatusCallbackURL, Body: body})
}

// TypeAdded tells every matching subscriber that t is now registered.
func (n *Notifier) TypeAdded(subs []registry.Subscription, t registry.CapabilityType) {
	n.typeEvent(KindTypeAdded, subs, t)
}

// TypeRemoved tells every matching subscriber that t is gone.
func (n *Notifier) TypeRemoved(subs []registry.Subscription, t registry.CapabilityType) {
	n.typeEvent(KindTypeRemoved, subs, t)
}

func (n *Notifier) typeEvent(kind string, subs []registry.Subscription, t registry.CapabilityType) {
	for _, sub := range subs {
		if strings.TrimSpace(sub.CallbackURL) == "" {
			continue
		}
		body, _ := json.Marshal(TypeEventMessage{
			NotificationID: uuid.NewString(),
			Event:          kind,
			TypeID:         t.ID,
			Schema:         t.Schema,
		})
		n.send(kind, remote.Request{Method: http.MethodPost, URL: sub.CallbackURL, Body: body})
	}
}

// RecoveryCompleted tells every callback URL that ric finished recovery.
func (n *Notifier) RecoveryCompleted(callbackURLs []string, ric string) {
	body := []byte("Recovery completed for:" + ric)
	for _, target := range callbackURLs {
		if strings.TrimSpace(target) == "" {
			continue
		}
		n.send(KindRecoveryDone, remote.Request{
			Method:      http.MethodPut,
			URL:         target,
			Body:        body,
			ContentType: "text/plain",
		})
	}
}

// Wait blocks until every queued send has finished.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) send(kind string, req remote.Request) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.sem <- struct{}{}
		defer func() { <-n.sem }()

		ctx, cancel := context.WithTimeout(context.Background(), n.cfg.SendTimeout)
		defer cancel()
		resp, err := n.client.Call(ctx, req)
		err = remote.Check(req, resp, err)
		observability.RecordNotification(kind, err == nil)
		if err != nil {
			log.Warn().
				Err(err).
				Str("kind", kind).
				Str("url", req.URL).
				Msg("notification_failed")
			return
		}
		log.Debug().Str("kind", kind).Str("url", req.URL).Msg("notification_sent")
	}()
}
