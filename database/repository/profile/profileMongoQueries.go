// File: database/repository/profile/profileMongoQueries.go
package profileRepo

import (
	"fmt"
	"time"

	"darisni/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// GetByID retrieves a profile by its unique ID.
func (r *MongoProfileRepo) GetByID(id string) (*models.Profile, error) {
	return r.GetByIDWithProjection(id, nil)
}

// GetByIdentityID retrieves the profile owned by an auth identity.
func (r *MongoProfileRepo) GetByIdentityID(identityID string) (*models.Profile, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var profile models.Profile
	err := r.coll.FindOne(ctx, bson.M{"identityId": identityID}).Decode(&profile)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch profile for identity %s: %w", identityID, err)
	}
	return &profile, nil
}

// ExistsByNationalID reports whether any profile document holds the given
// national ID. Uses a minimal projection; exact match only.
func (r *MongoProfileRepo) ExistsByNationalID(nationalID string) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	count, err := r.coll.CountDocuments(ctx, bson.M{"nationalId": nationalID})
	if err != nil {
		return false, fmt.Errorf("failed to check national ID: %w", err)
	}
	return count > 0, nil
}
