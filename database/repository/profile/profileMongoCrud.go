// File: database/repository/profile/profileMongoCrud.go
package profileRepo

import (
	"fmt"
	"time"

	"darisni/models"

	"go.mongodb.org/mongo-driver/bson"
)

// Create inserts a new profile document.
func (r *MongoProfileRepo) Create(profile *models.Profile) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, profile)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// Update modifies an existing profile document.
func (r *MongoProfileRepo) Update(profile *models.Profile) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	profile.UpdatedAt = time.Now()
	filter := bson.M{"id": profile.ID}
	update := bson.M{"$set": profile}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update profile with id %s: %w", profile.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("profile with id %s not found", profile.ID)
	}
	return nil
}

// Delete removes a profile document by its ID.
func (r *MongoProfileRepo) Delete(id string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id}
	result, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete profile with id %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("profile with id %s not found", id)
	}
	return nil
}
