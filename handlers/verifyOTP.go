package handlers

import (
	"errors"
	"net/http"

	"darisni/services/registration"

	"github.com/gin-gonic/gin"
)

// VerifyPasscodeHandler is the verification gate: it collects the passcode
// bound to the email captured in phase 1 and, on success, phase 2 runs
// (uploads + profile write) before the result is returned.
func (h *RegistrationHandler) VerifyPasscodeHandler(c *gin.Context) {
	var req struct {
		Passcode string `json:"passcode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Service.ConfirmPasscode(c, c.Param("id"), req.Passcode)
	if err != nil {
		var stateErr registration.CommitStateError
		switch {
		case errors.Is(err, registration.ErrPasscodeInvalid):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.As(err, &stateErr):
			c.JSON(http.StatusConflict, gin.H{"error": stateErr.Error()})
		default:
			respondDraftError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// ResendPasscodeHandler handles POST /api/registration/drafts/:id/resend.
// A resend failure is reported on its own and never moves the wizard state.
func (h *RegistrationHandler) ResendPasscodeHandler(c *gin.Context) {
	if err := h.Service.ResendPasscode(c, c.Param("id")); err != nil {
		if errors.Is(err, registration.ErrNotAwaitingPasscode) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		respondDraftError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "passcode resent"})
}
