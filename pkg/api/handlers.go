package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/joshbakergf/lead-manager-sub001/pkg/middleware"
	"github.com/joshbakergf/lead-manager-sub001/pkg/models"
	"github.com/joshbakergf/lead-manager-sub001/pkg/services"
	"github.com/joshbakergf/lead-manager-sub001/pkg/store"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	submissionService services.LeadSubmissionService
	ledger            store.Ledger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(submissionService services.LeadSubmissionService, ledger store.Ledger) *Handlers {
	return &Handlers{
		submissionService: submissionService,
		ledger:            ledger,
	}
}

// HealthCheck handler for monitoring
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// HandleSubmit runs a form submission through the CRM and payment chain.
// Every chain failure is a 500, whatever its kind.
func (h *Handlers) HandleSubmit(c *gin.Context) {
	var req models.SubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zap.L().Warn("invalid submission body",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid JSON format"})
		return
	}

	result, err := h.submissionService.Submit(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		body := gin.H{"success": false, "error": err.Error()}

		var subErr *services.SubmissionError
		if errors.As(err, &subErr) {
			body["error"] = subErr.Message
			body["step"] = subErr.Step
			body["submissionId"] = subErr.SubmissionID
		}
		c.JSON(http.StatusInternalServerError, body)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": models.SubmissionData{
			SubmissionID:     result.SubmissionID,
			CustomerID:       result.CRMCustomerID,
			PayrixCustomerID: result.PaymentCustomerID,
			TokenID:          result.PaymentToken,
			PaymentProfileID: result.PaymentProfileID,
			Message:          result.Message,
		},
	})
}

// HandleGetSubmission returns the ledger record of one submission
func (h *Handlers) HandleGetSubmission(c *gin.Context) {
	sub, err := h.ledger.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "submission not found"})
		return
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to load submission"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": sub})
}

// HandleListOrphaned lists failed submissions that left upstream records behind
func (h *Handlers) HandleListOrphaned(c *gin.Context) {
	subs, err := h.ledger.ListOrphaned(c.Request.Context(), 100)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to list submissions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": subs})
}
