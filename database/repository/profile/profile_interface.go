package profileRepo

import (
	"darisni/models"

	"go.mongodb.org/mongo-driver/bson"
)

// ProfileRepository defines methods for profile data access.
type ProfileRepository interface {
	// Create inserts a new profile record.
	Create(profile *models.Profile) error
	// Update modifies an existing profile record.
	Update(profile *models.Profile) error
	// Delete removes a profile record by its ID.
	Delete(id string) error
	// GetByID retrieves a profile by its unique ID.
	GetByID(id string) (*models.Profile, error)
	// GetByIdentityID retrieves the profile owned by an auth identity.
	GetByIdentityID(identityID string) (*models.Profile, error)
	// GetByIDWithProjection retrieves a profile by ID with a projection.
	GetByIDWithProjection(id string, projection bson.M) (*models.Profile, error)
	// ExistsByNationalID reports whether any profile holds the national ID.
	// This backs the advisory uniqueness probe; the unique index remains
	// the authoritative check at commit time.
	ExistsByNationalID(nationalID string) (bool, error)
}
