package api

import (
	"net/http"
	"strconv"

	"github.com/Prakashmoharana1985/O-RAN/internal/registry"
	"github.com/gin-gonic/gin"
)

func (s *Server) listJobs(c *gin.Context) {
	jobs := s.deps.Coordinator.Jobs(c.Query("owner"), c.Query("type_id"))
	ids := make([]string, 0, len(jobs))
	for _, job := range jobs {
		ids = append(ids, job.ID)
	}
	c.JSON(http.StatusOK, gin.H{"jobs": ids})
}

func (s *Server) getJob(c *gin.Context) {
	job, err := s.deps.Coordinator.GetJob(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// putJob accepts ?type_check=false to allow jobs for types that have not been
// registered yet.
func (s *Server) putJob(c *gin.Context) {
	var info registry.JobInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		respondBadBody(c, err)
		return
	}
	typeCheck := true
	if raw := c.Query("type_check"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "type_check must be a boolean"})
			return
		}
		typeCheck = v
	}
	created, err := s.deps.Coordinator.PutJob(c.Request.Context(), c.Param("id"), info, typeCheck)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(putStatus(created))
}

func (s *Server) deleteJob(c *gin.Context) {
	if err := s.deps.Coordinator.DeleteJob(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getJobStatus(c *gin.Context) {
	status, err := s.deps.Coordinator.JobStatus(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

type subscriptionBody struct {
	Owner       string `json:"owner"`
	CallbackURL string `json:"callback_url"`
}

func (s *Server) listSubscriptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"subscriptions": s.deps.Coordinator.Subscriptions(c.Query("owner"))})
}

func (s *Server) getSubscription(c *gin.Context) {
	sub, err := s.deps.Coordinator.GetSubscription(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (s *Server) putSubscription(c *gin.Context) {
	var body subscriptionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadBody(c, err)
		return
	}
	created, err := s.deps.Coordinator.PutSubscription(registry.Subscription{
		ID:          c.Param("id"),
		Owner:       body.Owner,
		CallbackURL: body.CallbackURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(putStatus(created))
}

func (s *Server) deleteSubscription(c *gin.Context) {
	if err := s.deps.Coordinator.DeleteSubscription(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
