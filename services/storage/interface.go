package storage

import (
	"context"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
)

// StorageService defines the interface for durable object storage operations.
type StorageService interface {
	// UploadDocumentFile encrypts and uploads an identity document,
	// returning its permanent stored path.
	UploadDocumentFile(ctx context.Context, localFilePath, destFolder, adminKey string) (string, error)
	// DeleteFile deletes a stored file given its path.
	DeleteFile(ctx context.Context, publicID string) error
	// GetSecureDownloadURL generates a signed, short-lived URL for a
	// stored document.
	GetSecureDownloadURL(ctx context.Context, resourceType, publicID string, expires time.Duration) (string, error)
}

// StorageServiceImpl implements StorageService backed by Cloudinary.
type StorageServiceImpl struct {
	cld       *cloudinary.Cloudinary
	cloudName string
	apiSecret string
}
