package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Prakashmoharana1985/O-RAN/internal/registry"
	"github.com/gin-gonic/gin"
)

type typeBody struct {
	ID     string          `json:"id"`
	Schema json.RawMessage `json:"schema,omitempty"`
}

type producerBody struct {
	SupportedTypes         []typeBody `json:"supported_types"`
	JobCallbackURL         string     `json:"job_callback_url"`
	SupervisionCallbackURL string     `json:"supervision_callback_url"`
}

type producerView struct {
	ID                     string                    `json:"id"`
	SupportedTypes         []string                  `json:"supported_types"`
	JobCallbackURL         string                    `json:"job_callback_url"`
	SupervisionCallbackURL string                    `json:"supervision_callback_url"`
	OperationalState       registry.OperationalState `json:"operational_state"`
	FailureCount           int                       `json:"failure_count"`
	RegisteredAt           time.Time                 `json:"registered_at"`
}

func viewProducer(p registry.Producer) producerView {
	return producerView{
		ID:                     p.ID,
		SupportedTypes:         p.TypeIDs(),
		JobCallbackURL:         p.JobCallbackURL,
		SupervisionCallbackURL: p.SupervisionCallbackURL,
		OperationalState:       p.OperationalState,
		FailureCount:           p.FailureCount,
		RegisteredAt:           p.RegisteredAt,
	}
}

// listProducers returns producer ids, optionally only those supporting
// ?type_id.
func (s *Server) listProducers(c *gin.Context) {
	if typeID := c.Query("type_id"); typeID != "" {
		c.JSON(http.StatusOK, gin.H{"producers": s.deps.Coordinator.ProducerIDsForType(typeID)})
		return
	}
	producers := s.deps.Coordinator.Producers()
	ids := make([]string, 0, len(producers))
	for _, p := range producers {
		ids = append(ids, p.ID)
	}
	c.JSON(http.StatusOK, gin.H{"producers": ids})
}

func (s *Server) getProducer(c *gin.Context) {
	p, err := s.deps.Coordinator.GetProducer(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewProducer(p))
}

func (s *Server) putProducer(c *gin.Context) {
	var body producerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadBody(c, err)
		return
	}
	reg := registry.ProducerRegistration{
		ID:                     c.Param("id"),
		JobCallbackURL:         body.JobCallbackURL,
		SupervisionCallbackURL: body.SupervisionCallbackURL,
	}
	for _, t := range body.SupportedTypes {
		reg.SupportedTypes = append(reg.SupportedTypes, registry.TypeRegistration{ID: t.ID, Schema: t.Schema})
	}
	p, created, err := s.deps.Coordinator.RegisterProducer(c.Request.Context(), reg)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(putStatus(created), viewProducer(p))
}

func (s *Server) deleteProducer(c *gin.Context) {
	if err := s.deps.Coordinator.DeregisterProducer(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getProducerStatus(c *gin.Context) {
	state, err := s.deps.Coordinator.ProducerStatus(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"operational_state": state})
}

func (s *Server) listProducerJobs(c *gin.Context) {
	jobs, err := s.deps.Coordinator.JobsForProducer(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (s *Server) runSupervision(c *gin.Context) {
	if s.deps.Supervisor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "supervision disabled"})
		return
	}
	c.JSON(http.StatusOK, s.deps.Supervisor.RunPass(c.Request.Context()))
}
