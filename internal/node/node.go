package node

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Prakashmoharana1985/O-RAN/internal/api"
	"github.com/Prakashmoharana1985/O-RAN/internal/auth"
	"github.com/Prakashmoharana1985/O-RAN/internal/config"
	"github.com/Prakashmoharana1985/O-RAN/internal/coordinator"
	"github.com/Prakashmoharana1985/O-RAN/internal/notify"
	"github.com/Prakashmoharana1985/O-RAN/internal/policy"
	"github.com/Prakashmoharana1985/O-RAN/internal/recovery"
	"github.com/Prakashmoharana1985/O-RAN/internal/remote"
	"github.com/Prakashmoharana1985/O-RAN/internal/store"
	"github.com/Prakashmoharana1985/O-RAN/internal/supervision"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidNodeID  = errors.New("node: invalid node id")
	ErrLifecycleOrder = errors.New("node: invalid lifecycle transition")
)

// Node owns every long-lived component of one coordinator process.
type Node struct {
	cfg Config

	mu      sync.Mutex
	started bool
	rics    []config.RicConfig

	store       store.Store
	notifier    *notify.Notifier
	coordinator *coordinator.Coordinator
	policies    *policy.Controller
	recovery    *recovery.Coordinator
	supervisor  *supervision.Supervisor
	expiry      *cron.Cron
	watcher     *config.Watcher
	api         *api.Server
	http        *http.Server
	listener    net.Listener
	serveDone   chan struct{}
	cancel      context.CancelFunc
}

func New(cfg Config) (*Node, error) {
	cfg = cfg.WithDefaults()
	if strings.TrimSpace(cfg.ID) == "" {
		return nil, ErrInvalidNodeID
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Node{cfg: cfg}, nil
}

func (n *Node) NodeID() string {
	return n.cfg.ID
}

func (n *Node) Kind() string {
	return "infocoord"
}

func (n *Node) HTTPRouter() *gin.Engine {
	if n.api == nil {
		return nil
	}
	return n.api.HTTPRouter()
}

// Addr is the bound HTTP address, valid after Start.
func (n *Node) Addr() string {
	if n.listener == nil {
		return ""
	}
	return n.listener.Addr().String()
}

func (n *Node) Coordinator() *coordinator.Coordinator {
	return n.coordinator
}

func (n *Node) Policies() *policy.Controller {
	return n.policies
}

// Start brings components up in dependency order: store, restore, RIC
// configuration and recovery, supervision, service expiry, configuration
// watch, then HTTP.
func (n *Node) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.started {
		return fmt.Errorf("%w: already started", ErrLifecycleOrder)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	n.cancel = cancel

	n.store = store.Open(ctx, n.cfg.DatabasePath)
	client := remote.NewHTTPClient(remote.HTTPConfig{
		Timeout:   n.cfg.RemoteTimeout,
		RateLimit: n.cfg.RemoteRateLimit,
		RateBurst: n.cfg.RemoteRateBurst,
	})
	n.notifier = notify.New(client, remote.RetryConfig{Attempts: n.cfg.JobPushAttempts}, notify.Config{
		Concurrency: n.cfg.NotifyConcurrency,
	})
	n.coordinator = coordinator.New(coordinator.Config{}, n.store, n.notifier)
	if err := n.coordinator.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("node_restore_failed_starting_empty")
	}

	n.policies = policy.NewController(remote.NewA1Client(client))
	n.recovery = recovery.New(n.policies, n.notifier)
	if n.cfg.RicConfigPath != "" {
		rics, err := config.LoadRics(n.cfg.RicConfigPath)
		if err != nil {
			n.abortLocked()
			return err
		}
		n.applyRicsLocked(rics)
	}

	n.supervisor = supervision.New(n.coordinator, client, supervision.Config{
		Schedule:    n.cfg.SupervisionSchedule,
		MaxFailures: n.cfg.SupervisionMaxFailures,
	})
	if err := n.supervisor.Start(); err != nil {
		n.abortLocked()
		return err
	}

	logger := supervision.CronLogger{}
	n.expiry = cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))
	if _, err := n.expiry.AddFunc(n.cfg.ServiceExpirySchedule, func() {
		n.policies.ExpireServices(runCtx)
	}); err != nil {
		n.abortLocked()
		return fmt.Errorf("node: service expiry schedule %q: %w", n.cfg.ServiceExpirySchedule, err)
	}
	n.expiry.Start()

	if n.cfg.WatchRicConfig && n.cfg.RicConfigPath != "" {
		w, err := config.WatchRics(n.cfg.RicConfigPath, n.ApplyRics)
		if err != nil {
			log.Warn().Err(err).Msg("node_ric_config_watch_unavailable")
		} else {
			n.watcher = w
		}
	}

	deps := api.Deps{
		NodeID:      n.cfg.ID,
		Coordinator: n.coordinator,
		Policies:    n.policies,
		Recovery:    n.recovery,
		Supervisor:  n.supervisor,
	}
	if n.cfg.APIToken != "" {
		deps.Auth = auth.StaticToken{Token: n.cfg.APIToken}
	}
	n.api = api.New(deps)
	ln, err := net.Listen("tcp", n.cfg.HTTPListenAddr)
	if err != nil {
		n.abortLocked()
		return fmt.Errorf("node: listen %s: %w", n.cfg.HTTPListenAddr, err)
	}
	n.listener = ln
	n.http = &http.Server{
		Handler:           n.api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	n.serveDone = make(chan struct{})
	go func() {
		defer close(n.serveDone)
		if err := n.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("node_http_serve_failed")
		}
	}()
	n.api.SetReady(true)
	n.started = true
	log.Info().
		Str("node", n.cfg.ID).
		Str("addr", ln.Addr().String()).
		Int("rics", len(n.rics)).
		Msg("node_started")
	return nil
}

// ApplyRics reconciles the configured RICs with rics. Added and changed RICs
// are recovered; removed RICs are dropped together with their policies.
func (n *Node) ApplyRics(rics []config.RicConfig) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.started {
		return
	}
	n.applyRicsLocked(rics)
}

func (n *Node) applyRicsLocked(rics []config.RicConfig) {
	change := config.Diff(n.rics, rics)
	n.rics = append([]config.RicConfig(nil), rics...)
	for _, r := range change.Removed {
		n.policies.Rics.Remove(r.Name)
		dropped := n.policies.Policies.RemoveForRic(r.Name)
		log.Info().Str("ric", r.Name).Int("policies", len(dropped)).Msg("ric_removed")
	}
	for _, r := range change.Added {
		n.policies.Rics.Put(policy.NewRic(r.Name, r.BaseURL, r.ManagedElementIDs))
		log.Info().Str("ric", r.Name).Str("base_url", r.BaseURL).Msg("ric_added")
		_ = n.recovery.Trigger(r.Name)
	}
	for _, r := range change.Updated {
		ric, ok := n.policies.Rics.Get(r.Name)
		if !ok {
			continue
		}
		ric.Reconfigure(r.BaseURL, r.ManagedElementIDs)
		log.Info().Str("ric", r.Name).Str("base_url", r.BaseURL).Msg("ric_reconfigured")
		_ = n.recovery.Trigger(r.Name)
	}
}

// Stop shuts components down in reverse start order.
func (n *Node) Stop(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.started {
		return fmt.Errorf("%w: not started", ErrLifecycleOrder)
	}
	n.started = false
	n.api.SetReady(false)

	var shutdownErr error
	if err := n.http.Shutdown(ctx); err != nil {
		shutdownErr = fmt.Errorf("node: http shutdown: %w", err)
	}
	<-n.serveDone
	n.abortLocked()
	log.Info().Str("node", n.cfg.ID).Msg("node_stopped")
	return shutdownErr
}

// abortLocked releases whatever Start managed to bring up.
func (n *Node) abortLocked() {
	if n.watcher != nil {
		_ = n.watcher.Close()
		n.watcher = nil
	}
	if n.expiry != nil {
		<-n.expiry.Stop().Done()
		n.expiry = nil
	}
	if n.supervisor != nil {
		n.supervisor.Stop()
	}
	if n.cancel != nil {
		n.cancel()
	}
	if n.recovery != nil {
		n.recovery.Close()
	}
	if n.notifier != nil {
		n.notifier.Wait()
	}
	if n.store != nil {
		if err := n.store.Close(); err != nil {
			log.Warn().Err(err).Msg("node_store_close_failed")
		}
	}
}

// Run starts the node and blocks until ctx is cancelled.
func (n *Node) Run(ctx context.Context) error {
	if err := n.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return n.Stop(stopCtx)
}
