package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthController reports process liveness.
type HealthController struct {
	version string
}

func NewHealthController(version string) *HealthController {
	return &HealthController{version: version}
}

func (hc *HealthController) Health(c *gin.Context) {
	respondData(c, http.StatusOK, gin.H{"status": "ok", "version": hc.version})
}
