package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/scheduler"
)

type AdminController struct {
	auditScheduler *scheduler.AvailabilityAuditScheduler
}

func NewAdminController(auditScheduler *scheduler.AvailabilityAuditScheduler) *AdminController {
	return &AdminController{auditScheduler: auditScheduler}
}

// TriggerAudit enqueues an availability audit outside the regular schedule.
func (ctrl *AdminController) TriggerAudit(c *gin.Context) {
	if err := ctrl.auditScheduler.Enqueue(); err != nil {
		respondInternalError(c, err, "trigger audit")
		return
	}
	respondData(c, http.StatusAccepted, gin.H{"status": "audit enqueued"})
}
