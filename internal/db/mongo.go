package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names used across the services.
const (
	SellersCollection  = "sellers"
	CarsCollection     = "cars"
	FeedbackCollection = "feedback"
)

// ConnectDB initializes and returns a MongoDB client and database instance.
func ConnectDB(uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping the primary node
	ctxPing, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := client.Ping(ctxPing, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(dbName)
	fmt.Println("Successfully connected to MongoDB!")

	return client, db, nil
}

// DisconnectDB closes the MongoDB client connection.
func DisconnectDB(client *mongo.Client) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect MongoDB: %w", err)
	}
	fmt.Println("MongoDB connection closed.")
	return nil
}

// EnsureIndexes creates the unique indexes the data model depends on.
// Sellers must be unique by username and by email, and the feedback upsert
// relies on the (car_id, seller_id) compound unique index to stay race-free:
// two concurrent first submissions for the same pair cannot both insert.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	sellerIdx := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("username_1"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_1"),
		},
	}
	if _, err := db.Collection(SellersCollection).Indexes().CreateMany(ctx, sellerIdx); err != nil {
		return fmt.Errorf("failed to create seller indexes: %w", err)
	}

	carIdx := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "seller_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("seller_id_1_created_at_-1"),
		},
	}
	if _, err := db.Collection(CarsCollection).Indexes().CreateMany(ctx, carIdx); err != nil {
		return fmt.Errorf("failed to create car indexes: %w", err)
	}

	feedbackIdx := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "car_id", Value: 1}, {Key: "seller_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("car_id_1_seller_id_1"),
		},
	}
	if _, err := db.Collection(FeedbackCollection).Indexes().CreateMany(ctx, feedbackIdx); err != nil {
		return fmt.Errorf("failed to create feedback indexes: %w", err)
	}

	return nil
}
