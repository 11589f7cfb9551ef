package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Bhupinder22500650/car-dealership-project-website/internal/apperr"
	"github.com/Bhupinder22500650/car-dealership-project-website/internal/db"
	"github.com/Bhupinder22500650/car-dealership-project-website/internal/models"
)

// IFeedbackService defines the interface for feedback operations.
type IFeedbackService interface {
	Submit(ctx context.Context, carID, sellerID, email, comment string) (*models.Feedback, error)
	ListByCar(ctx context.Context, carID string) ([]models.Feedback, error)
}

// feedbackService implements IFeedbackService.
type feedbackService struct {
	db *mongo.Database
}

// NewFeedbackService creates a new FeedbackService.
func NewFeedbackService(db *mongo.Database) IFeedbackService {
	return &feedbackService{db: db}
}

func validateFeedback(email, comment string) []string {
	var msgs []string
	if !emailPattern.MatchString(email) {
		msgs = append(msgs, "Invalid email address.")
	}
	if len(comment) < 10 || len(comment) > 500 {
		msgs = append(msgs, "Comment must be between 10 and 500 characters.")
	}
	return msgs
}

// Submit upserts the feedback row for (carID, sellerID). The write is a
// single FindOneAndUpdate with upsert backed by the unique compound index, so
// two concurrent first submissions cannot both insert; the loser's duplicate
// key error is retried and lands on the update path.
func (s *feedbackService) Submit(ctx context.Context, carID, sellerID, email, comment string) (*models.Feedback, error) {
	if msgs := validateFeedback(email, comment); len(msgs) > 0 {
		return nil, apperr.Validation(msgs)
	}

	// The car must exist. A car deleted between this check and the upsert
	// leaves an orphaned row; car-scoped reads make it unreachable.
	carColl := s.db.Collection(db.CarsCollection)
	if err := carColl.FindOne(ctx, bson.M{"_id": carID}).Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("error checking car %s for feedback: %w", carID, err)
	}

	collection := s.db.Collection(db.FeedbackCollection)
	now := time.Now().UTC()

	filter := bson.M{"car_id": carID, "seller_id": sellerID}
	update := bson.M{
		"$set": bson.M{
			"email":      email,
			"comment":    comment,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":        uuid.NewString(),
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var fb models.Feedback
	operation := func() error {
		return collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&fb)
	}

	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("failed to upsert feedback for car %s by seller %s: %w", carID, sellerID, err)
	}

	return &fb, nil
}

// ListByCar returns all feedback rows for a car, newest update first.
func (s *feedbackService) ListByCar(ctx context.Context, carID string) ([]models.Feedback, error) {
	collection := s.db.Collection(db.FeedbackCollection)
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cursor, err := collection.Find(ctx, bson.M{"car_id": carID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback for car %s: %w", carID, err)
	}
	defer cursor.Close(ctx)

	feedback := []models.Feedback{}
	if err = cursor.All(ctx, &feedback); err != nil {
		return nil, fmt.Errorf("failed to decode feedback for car %s: %w", carID, err)
	}
	return feedback, nil
}
