package handlers

import (
	"net/http"

	"darisni/services/registration"

	"github.com/gin-gonic/gin"
)

// allowedFileFields are the logical field names a file may be staged under.
var allowedFileFields = map[string]bool{
	"nationalIdFront": true,
	"nationalIdBack":  true,
	"studentCard":     true,
	"qualification":   true,
}

// StageFileHandler handles POST /api/registration/drafts/:id/files/:field.
// The binary is held in the staging area; the durable upload happens at
// phase 2.
func (h *RegistrationHandler) StageFileHandler(c *gin.Context) {
	field := c.Param("field")
	if !allowedFileFields[field] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown file field"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file not provided", "detail": err.Error()})
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file", "detail": err.Error()})
		return
	}
	defer src.Close()

	staged, err := h.Service.StageFile(c, c.Param("id"), field, registration.FileUpload{
		Name:    fileHeader.Filename,
		Size:    fileHeader.Size,
		Content: src,
	})
	if err != nil {
		respondDraftError(c, err)
		return
	}
	c.JSON(http.StatusOK, staged)
}

// UnstageFileHandler handles DELETE /api/registration/drafts/:id/files/:field.
func (h *RegistrationHandler) UnstageFileHandler(c *gin.Context) {
	if err := h.Service.UnstageFile(c, c.Param("id"), c.Param("field")); err != nil {
		if err == registration.ErrFileNotStaged {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		respondDraftError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "file removed"})
}
