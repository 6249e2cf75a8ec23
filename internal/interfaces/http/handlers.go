package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shegerlabs/accreditationadmin-sub000/internal/application/service"
	"github.com/shegerlabs/accreditationadmin-sub000/internal/domain/entity"
	"github.com/shegerlabs/accreditationadmin-sub000/internal/domain/workflow"
)

// ReportExporter writes a participant's decision trail to a file
type ReportExporter interface {
	Export(p *entity.Participant, approvals []*entity.Approval, stepNames map[int64]string) (string, error)
}

// Handlers contains HTTP request handlers
type Handlers struct {
	engine   service.Engine
	audit    service.AuditService
	exporter ReportExporter
	logger   Logger
}

// NewHandlers creates a new handlers instance
func NewHandlers(engine service.Engine, audit service.AuditService, exporter ReportExporter, logger Logger) *Handlers {
	return &Handlers{
		engine:   engine,
		audit:    audit,
		exporter: exporter,
		logger:   logger,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// processRequest is the body of POST /api/participants/:id/process.
// ActorID comes from the authenticated session upstream; the engine
// re-verifies the role either way.
type processRequest struct {
	ActorID int64  `json:"actor_id" binding:"required"`
	Action  string `json:"action" binding:"required"`
	Remarks string `json:"remarks"`
}

// ProcessParticipant handles POST /api/participants/:id/process
func (h *Handlers) ProcessParticipant(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant id"})
		return
	}

	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.engine.Process(c.Request.Context(), service.ProcessRequest{
		ParticipantID: id,
		ActorID:       req.ActorID,
		Action:        workflow.Action(req.Action),
		Remarks:       req.Remarks,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetParticipant handles GET /api/participants/:id
func (h *Handlers) GetParticipant(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant id"})
		return
	}

	p, err := h.audit.GetParticipant(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// GetApprovals handles GET /api/participants/:id/approvals
func (h *Handlers) GetApprovals(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant id"})
		return
	}

	approvals, err := h.audit.GetTrail(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"approvals": approvals})
}

// GetWorkflowSteps handles GET /api/workflows/:id/steps
func (h *Handlers) GetWorkflowSteps(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid workflow id"})
		return
	}

	steps, err := h.audit.GetWorkflowSteps(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"steps": steps})
}

// ResolveWorkflow handles GET /api/workflows/resolve
func (h *Handlers) ResolveWorkflow(c *gin.Context) {
	tenantID, err1 := strconv.ParseInt(c.Query("tenant_id"), 10, 64)
	eventID, err2 := strconv.ParseInt(c.Query("event_id"), 10, 64)
	typeID, err3 := strconv.ParseInt(c.Query("participant_type_id"), 10, 64)
	if err1 != nil || err2 != nil || err3 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenant_id, event_id and participant_type_id are required"})
		return
	}

	w, err := h.audit.ResolveWorkflow(c.Request.Context(), tenantID, eventID, typeID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, w)
}

// ExportReport handles POST /api/participants/:id/report
func (h *Handlers) ExportReport(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant id"})
		return
	}

	p, err := h.audit.GetParticipant(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	approvals, err := h.audit.GetTrail(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	steps, err := h.audit.GetWorkflowSteps(c.Request.Context(), p.WorkflowID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	stepNames := make(map[int64]string, len(steps))
	for _, s := range steps {
		stepNames[s.ID] = s.Name
	}

	path, err := h.exporter.Export(p, approvals, stepNames)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"report_path": path})
}

// respondError maps domain errors to HTTP status codes
func (h *Handlers) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, workflow.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrInvalidAction), errors.Is(err, workflow.ErrInvalidChain):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Unhandled error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
