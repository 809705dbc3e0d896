package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

type typeSchemaBody struct {
	Schema json.RawMessage `json:"schema"`
}

func (s *Server) listTypes(c *gin.Context) {
	types := s.deps.Coordinator.Types()
	ids := make([]string, 0, len(types))
	for _, t := range types {
		ids = append(ids, t.ID)
	}
	c.JSON(http.StatusOK, gin.H{"types": ids})
}

func (s *Server) getType(c *gin.Context) {
	t, err := s.deps.Coordinator.GetType(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":        t.ID,
		"schema":    t.Schema,
		"pinned":    t.Pinned,
		"producers": s.deps.Coordinator.ProducerIDsForType(t.ID),
	})
}

func (s *Server) putType(c *gin.Context) {
	var body typeSchemaBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadBody(c, err)
		return
	}
	t, created, err := s.deps.Coordinator.RegisterType(c.Request.Context(), c.Param("id"), body.Schema)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(putStatus(created), t)
}

func (s *Server) deleteType(c *gin.Context) {
	if err := s.deps.Coordinator.RemoveType(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
