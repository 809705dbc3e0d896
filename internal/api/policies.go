package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Prakashmoharana1985/O-RAN/internal/policy"
	"github.com/gin-gonic/gin"
)

func (s *Server) listRics(c *gin.Context) {
	if me := c.Query("managed_element_id"); me != "" {
		ric, err := s.deps.Policies.Rics.ForManagedElement(me)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"rics": []policy.RicInfo{ric.Info()}})
		return
	}
	rics := s.deps.Policies.Rics.All()
	out := make([]policy.RicInfo, 0, len(rics))
	for _, ric := range rics {
		out = append(out, ric.Info())
	}
	c.JSON(http.StatusOK, gin.H{"rics": out})
}

func (s *Server) getRic(c *gin.Context) {
	ric, err := s.deps.Policies.Rics.GetRic(c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ric.Info())
}

// recoverRic runs one recovery attempt synchronously and reports the state it
// left the RIC in.
func (s *Server) recoverRic(c *gin.Context) {
	name := c.Param("name")
	state, err := s.deps.Recovery.Recover(c.Request.Context(), name)
	if err != nil && state == "" {
		respondError(c, err)
		return
	}
	body := gin.H{"ric": name, "state": state}
	if err != nil {
		body["error"] = err.Error()
		c.JSON(http.StatusBadGateway, body)
		return
	}
	if state == policy.RicRecovering {
		c.JSON(http.StatusAccepted, body)
		return
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) listPolicyTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"policy_types": s.deps.Policies.Types.All()})
}

type policyBody struct {
	Ric     string          `json:"ric"`
	Type    string          `json:"type"`
	Service string          `json:"service"`
	Payload json.RawMessage `json:"payload"`
}

func (s *Server) listPolicies(c *gin.Context) {
	var out []policy.Policy
	switch ric, service := c.Query("ric"), c.Query("service"); {
	case ric != "":
		out = s.deps.Policies.Policies.ForRic(ric)
		if service != "" {
			filtered := out[:0]
			for _, p := range out {
				if p.OwnerService == service {
					filtered = append(filtered, p)
				}
			}
			out = filtered
		}
	case service != "":
		out = s.deps.Policies.Policies.ForService(service)
	default:
		out = s.deps.Policies.Policies.All()
	}
	ids := make([]string, 0, len(out))
	for _, p := range out {
		ids = append(ids, p.ID)
	}
	c.JSON(http.StatusOK, gin.H{"policies": ids})
}

func (s *Server) getPolicy(c *gin.Context) {
	p, err := s.deps.Policies.Policies.GetPolicy(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) putPolicy(c *gin.Context) {
	var body policyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadBody(c, err)
		return
	}
	created, err := s.deps.Policies.PutPolicy(c.Request.Context(), policy.Policy{
		ID:           c.Param("id"),
		RicName:      body.Ric,
		TypeID:       body.Type,
		OwnerService: body.Service,
		Payload:      body.Payload,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(putStatus(created))
}

func (s *Server) deletePolicy(c *gin.Context) {
	if err := s.deps.Policies.DeletePolicy(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type serviceBody struct {
	CallbackURL      string `json:"callback_url"`
	KeepAliveSeconds int64  `json:"keep_alive_seconds"`
}

func (s *Server) listServices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"services": s.deps.Policies.Services.All()})
}

func (s *Server) getService(c *gin.Context) {
	svc, err := s.deps.Policies.Services.GetService(c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (s *Server) putService(c *gin.Context) {
	var body serviceBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadBody(c, err)
		return
	}
	created, err := s.deps.Policies.PutService(policy.Service{
		Name:        c.Param("name"),
		CallbackURL: body.CallbackURL,
		KeepAlive:   time.Duration(body.KeepAliveSeconds) * time.Second,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(putStatus(created))
}

func (s *Server) deleteService(c *gin.Context) {
	if err := s.deps.Policies.DeleteService(c.Request.Context(), c.Param("name")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) keepAliveService(c *gin.Context) {
	if err := s.deps.Policies.KeepAlive(c.Param("name")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}
