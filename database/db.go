package database

import (
	"context"
	"time"

	"darisni/config"
	"darisni/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoClient is the global MongoDB client instance.
var MongoClient *mongo.Client

// InitDB initializes the MongoDB connection backing the profile and
// identity stores.
func InitDB() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(config.AppConfig.DatabaseURL)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		utils.GetLogger().Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	if err := client.Ping(ctx, nil); err != nil {
		utils.GetLogger().Fatal("failed to ping MongoDB", zap.Error(err))
	}
	MongoClient = client
	utils.GetLogger().Info("connected to MongoDB", zap.String("database", "darisni"))
}
