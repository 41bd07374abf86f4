package handlers

import (
	"errors"
	"net/http"

	"darisni/models"
	"darisni/services/registration"
	"darisni/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegistrationHandler exposes the multi-step sign-up wizard.
type RegistrationHandler struct {
	Service registration.RegistrationService
}

// NewRegistrationHandler creates a new RegistrationHandler instance.
func NewRegistrationHandler(svc registration.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{Service: svc}
}

// CreateDraftHandler handles POST /api/registration/drafts.
func (h *RegistrationHandler) CreateDraftHandler(c *gin.Context) {
	var req struct {
		Role       models.Role `json:"role" binding:"required"`
		ResumeFrom string      `json:"resumeFrom,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draft, err := h.Service.CreateDraft(c, req.Role, req.ResumeFrom)
	if err != nil {
		if errors.Is(err, registration.ErrInvalidRole) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		utils.GetLogger().Error("failed to create draft", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create registration draft"})
		return
	}
	c.JSON(http.StatusCreated, draft)
}

// GetDraftHandler handles GET /api/registration/drafts/:id.
func (h *RegistrationHandler) GetDraftHandler(c *gin.Context) {
	draft, err := h.Service.GetDraft(c, c.Param("id"))
	if err != nil {
		respondDraftError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// SelectRoleHandler handles PUT /api/registration/drafts/:id/role.
func (h *RegistrationHandler) SelectRoleHandler(c *gin.Context) {
	var req struct {
		Role models.Role `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draft, err := h.Service.SelectRole(c, c.Param("id"), req.Role)
	if err != nil {
		if errors.Is(err, registration.ErrInvalidRole) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respondDraftError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// AdvanceStepHandler handles POST /api/registration/drafts/:id/steps.
// Validation failure is a 200 with field errors: an expected outcome, not
// an error condition.
func (h *RegistrationHandler) AdvanceStepHandler(c *gin.Context) {
	var req struct {
		Step int            `json:"step" binding:"required"`
		Data map[string]any `json:"data" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draft, result, err := h.Service.Advance(c, c.Param("id"), req.Step, req.Data)
	if err != nil {
		var stateErr registration.CommitStateError
		switch {
		case errors.Is(err, registration.ErrInvalidStep):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.As(err, &stateErr):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			respondDraftError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft, "validation": result})
}

// RetreatStepHandler handles POST /api/registration/drafts/:id/retreat.
func (h *RegistrationHandler) RetreatStepHandler(c *gin.Context) {
	draft, err := h.Service.Retreat(c, c.Param("id"))
	if err != nil {
		respondDraftError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// ProbeHandler handles POST /api/registration/drafts/:id/probe. The probe is
// fire-and-forget; the verdict shows up in the draft's uniqueness flags.
func (h *RegistrationHandler) ProbeHandler(c *gin.Context) {
	var req struct {
		Field string `json:"field" binding:"required"`
		Value string `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.Service.Probe(c, c.Param("id"), req.Field, req.Value)
	c.JSON(http.StatusAccepted, gin.H{"status": models.UniquenessUnknown})
}

// SubmitHandler handles POST /api/registration/drafts/:id/submit (phase 1).
func (h *RegistrationHandler) SubmitHandler(c *gin.Context) {
	draft, err := h.Service.Submit(c, c.Param("id"))
	if err != nil {
		var alreadyErr registration.AlreadyRegisteredError
		var stateErr registration.CommitStateError
		switch {
		case errors.As(err, &alreadyErr):
			// Distinct, user-recoverable outcome: offer sign-in instead.
			c.JSON(http.StatusConflict, gin.H{
				"error":  alreadyErr.Error(),
				"code":   "already_registered",
				"signIn": true,
			})
		case errors.As(err, &stateErr):
			c.JSON(http.StatusConflict, gin.H{"error": stateErr.Error()})
		case errors.Is(err, registration.ErrInvalidStep):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			respondDraftError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, draft)
}

func respondDraftError(c *gin.Context, err error) {
	if errors.Is(err, registration.ErrDraftNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	utils.GetLogger().Error("registration request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed, please try again"})
}
