package api

import (
	"errors"
	"net/http"

	"github.com/Prakashmoharana1985/O-RAN/internal/coordinator"
	"github.com/Prakashmoharana1985/O-RAN/internal/registry"
	"github.com/Prakashmoharana1985/O-RAN/internal/remote"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func statusFor(err error) int {
	var transport *remote.TransportError
	var status *remote.StatusError
	switch {
	case errors.Is(err, coordinator.ErrTypeInUse):
		return http.StatusNotAcceptable
	case errors.Is(err, registry.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, registry.ErrValidation):
		return http.StatusBadRequest
	case errors.As(err, &transport), errors.As(err, &status):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		log.Warn().Err(err).Str("path", c.FullPath()).Int("status", code).Msg("api_request_failed")
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

func respondBadBody(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
}

// putStatus is 201 for a created resource and 200 for a replaced one.
func putStatus(created bool) int {
	if created {
		return http.StatusCreated
	}
	return http.StatusOK
}
