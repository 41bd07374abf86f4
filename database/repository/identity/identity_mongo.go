package identityRepo

import (
	"context"
	"fmt"
	"time"

	"darisni/database"
	"darisni/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoIdentityRepo implements IdentityRepository using MongoDB.
type MongoIdentityRepo struct {
	coll *mongo.Collection
}

// NewMongoIdentityRepo creates a new instance of IdentityRepository using MongoDB.
func NewMongoIdentityRepo() IdentityRepository {
	coll := database.MongoClient.Database("darisni").Collection("identities")
	repo := &MongoIdentityRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoIdentityRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new identity document.
func (r *MongoIdentityRepo) Create(identity *models.Identity) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	identity.CreatedAt = now
	identity.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, identity)
	if err != nil {
		return fmt.Errorf("failed to create identity: %w", err)
	}
	return nil
}

// Update modifies an existing identity document.
func (r *MongoIdentityRepo) Update(identity *models.Identity) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	identity.UpdatedAt = time.Now()
	filter := bson.M{"id": identity.ID}
	update := bson.M{"$set": identity}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update identity with id %s: %w", identity.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("identity with id %s not found", identity.ID)
	}
	return nil
}

// GetByID retrieves an identity by its unique ID.
func (r *MongoIdentityRepo) GetByID(id string) (*models.Identity, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var identity models.Identity
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&identity)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch identity with id %s: %w", id, err)
	}
	return &identity, nil
}

// GetByEmail retrieves an identity by email. Returns nil when none exists.
func (r *MongoIdentityRepo) GetByEmail(email string) (*models.Identity, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var identity models.Identity
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&identity)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch identity with email %s: %w", email, err)
	}
	return &identity, nil
}

// Delete removes an identity document by its ID.
func (r *MongoIdentityRepo) Delete(id string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete identity with id %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("identity with id %s not found", id)
	}
	return nil
}
