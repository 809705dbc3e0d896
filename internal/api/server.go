package api

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/Prakashmoharana1985/O-RAN/internal/auth"
	"github.com/Prakashmoharana1985/O-RAN/internal/coordinator"
	"github.com/Prakashmoharana1985/O-RAN/internal/observability"
	"github.com/Prakashmoharana1985/O-RAN/internal/policy"
	"github.com/Prakashmoharana1985/O-RAN/internal/recovery"
	"github.com/Prakashmoharana1985/O-RAN/internal/supervision"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const version = "0.1.0"

// Deps are the components the HTTP surface delegates to. Supervisor may be
// nil when supervision is disabled; Auth nil leaves the API open.
type Deps struct {
	NodeID      string
	Coordinator *coordinator.Coordinator
	Policies    *policy.Controller
	Recovery    *recovery.Coordinator
	Supervisor  *supervision.Supervisor
	Auth        auth.Validator
}

type Server struct {
	deps     Deps
	router   *gin.Engine
	appeared time.Time
	ready    atomic.Bool
}

func New(deps Deps) *Server {
	observability.RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestID())
	r.Use(observability.RequestLogger(observability.ComponentLogger(deps.NodeID, "api")))
	r.Use(observability.RequestMetricsMiddleware(deps.NodeID))
	r.Use(auth.BearerToken(deps.Auth))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{deps: deps, router: r, appeared: time.Now()}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

// SetReady flips the readiness probe once startup restore has finished.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

func (s *Server) registerRoutes() {
	r := s.router
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.appeared).String(),
			"node":    s.deps.NodeID,
			"version": version,
		})
	})
	r.GET("/ready", func(c *gin.Context) {
		code := http.StatusOK
		if !s.ready.Load() {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"ready":   s.ready.Load(),
			"uptime":  time.Since(s.appeared).String(),
			"node":    s.deps.NodeID,
			"version": version,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/producers", s.listProducers)
	r.GET("/producers/:id", s.getProducer)
	r.PUT("/producers/:id", s.putProducer)
	r.DELETE("/producers/:id", s.deleteProducer)
	r.GET("/producers/:id/status", s.getProducerStatus)
	r.GET("/producers/:id/jobs", s.listProducerJobs)

	r.GET("/types", s.listTypes)
	r.GET("/types/:id", s.getType)
	r.PUT("/types/:id", s.putType)
	r.DELETE("/types/:id", s.deleteType)

	r.GET("/jobs", s.listJobs)
	r.GET("/jobs/:id", s.getJob)
	r.PUT("/jobs/:id", s.putJob)
	r.DELETE("/jobs/:id", s.deleteJob)
	r.GET("/jobs/:id/status", s.getJobStatus)

	r.GET("/subscriptions", s.listSubscriptions)
	r.GET("/subscriptions/:id", s.getSubscription)
	r.PUT("/subscriptions/:id", s.putSubscription)
	r.DELETE("/subscriptions/:id", s.deleteSubscription)

	r.POST("/supervision/run", s.runSupervision)

	r.GET("/rics", s.listRics)
	r.GET("/rics/:name", s.getRic)
	r.POST("/rics/:name/recover", s.recoverRic)
	r.GET("/policy-types", s.listPolicyTypes)

	r.GET("/policies", s.listPolicies)
	r.GET("/policies/:id", s.getPolicy)
	r.PUT("/policies/:id", s.putPolicy)
	r.DELETE("/policies/:id", s.deletePolicy)

	r.GET("/services", s.listServices)
	r.GET("/services/:name", s.getService)
	r.PUT("/services/:name", s.putService)
	r.DELETE("/services/:name", s.deleteService)
	r.PUT("/services/:name/keepalive", s.keepAliveService)
}
