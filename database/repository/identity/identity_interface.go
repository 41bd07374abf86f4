package identityRepo

import "darisni/models"

// IdentityRepository defines methods for auth-identity data access.
type IdentityRepository interface {
	// Create inserts a new identity record.
	Create(identity *models.Identity) error
	// Update modifies an existing identity record.
	Update(identity *models.Identity) error
	// GetByID retrieves an identity by its unique ID.
	GetByID(id string) (*models.Identity, error)
	// GetByEmail retrieves an identity by email, nil when none exists.
	GetByEmail(email string) (*models.Identity, error)
	// Delete removes an identity record by its ID.
	Delete(id string) error
}
