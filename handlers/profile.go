package handlers

import (
	"net/http"
	"time"

	profileRepo "darisni/database/repository/profile"
	"darisni/services/auth"
	"darisni/services/storage"
	"darisni/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// documentURLTTL bounds how long a signed document link stays usable.
const documentURLTTL = 15 * time.Minute

// ProfileHandler serves the authenticated profile viewer.
type ProfileHandler struct {
	AuthService auth.AuthService
	ProfileRepo profileRepo.ProfileRepository
	Storage     storage.StorageService
}

// NewProfileHandler creates a new ProfileHandler instance.
func NewProfileHandler(authSvc auth.AuthService, repo profileRepo.ProfileRepository, store storage.StorageService) *ProfileHandler {
	return &ProfileHandler{AuthService: authSvc, ProfileRepo: repo, Storage: store}
}

// GetProfileHandler returns the authenticated identity's profile.
func (h *ProfileHandler) GetProfileHandler(c *gin.Context) {
	identityID, exists := c.Get("identityID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	profile, err := h.ProfileRepo.GetByIdentityID(identityID.(string))
	if err != nil {
		utils.GetLogger().Error("failed to fetch profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve profile"})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}

	// Stored document paths are opaque identifiers of encrypted blobs;
	// the viewer gets signed, short-lived links instead.
	documentURLs := make(map[string]string, len(profile.Documents))
	for field, path := range profile.Documents {
		url, err := h.Storage.GetSecureDownloadURL(c, "image", path, documentURLTTL)
		if err != nil {
			utils.GetLogger().Warn("failed to sign document URL",
				zap.String("field", field), zap.Error(err))
			continue
		}
		documentURLs[field] = url
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile, "documentUrls": documentURLs})
}

// SignInHandler authenticates an existing identity. This is where the
// wizard's "already registered" outcome sends the user.
func (h *ProfileHandler) SignInHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.AuthService.Authenticate(c, req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}
