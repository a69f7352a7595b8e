package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/circulation"
)

// Envelope is the standard response shape: {"success": true, "data": ...}
// on success, {"success": false, "error": "..."} on failure.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// respondData sends a success envelope with the given status and payload.
func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

// respondError sends a failure envelope with the given status and message.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Success: false, Error: message})
}

// respondInternalError logs the error and hides it from the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	respondError(c, http.StatusInternalServerError, "internal server error")
}

// respondDomainError maps the circulation error taxonomy onto HTTP statuses:
// validation 400, missing reference 404, rule violation 409.
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, circulation.ErrValidation):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, circulation.ErrNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, circulation.ErrConflict):
		respondError(c, http.StatusConflict, err.Error())
	default:
		respondInternalError(c, err, "circulation")
	}
}

// parseIDParam extracts a numeric :id path parameter.
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}
