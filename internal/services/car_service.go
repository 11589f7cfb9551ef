package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Bhupinder22500650/car-dealership-project-website/internal/apperr"
	"github.com/Bhupinder22500650/car-dealership-project-website/internal/config"
	"github.com/Bhupinder22500650/car-dealership-project-website/internal/db"
	"github.com/Bhupinder22500650/car-dealership-project-website/internal/models"
)

// CarInput carries the raw listing form fields.
type CarInput struct {
	CompanyName string
	Model       string
	Year        int
	Price       float64
	Location    string
	BodyType    string
	ImageRef    string // Optional; defaults to the sentinel
}

// SearchFilter holds the recognized search options. Nil fields impose no
// constraint; present constraints are ANDed.
type SearchFilter struct {
	Model    *string  // case-insensitive substring match
	Year     *int     // exact match
	MaxPrice *float64 // inclusive upper bound
}

// ICarService defines the interface for car listing operations.
type ICarService interface {
	Create(ctx context.Context, sellerID string, in CarInput) (*models.Car, error)
	FindByID(ctx context.Context, carID string) (*models.Car, error)
	Update(ctx context.Context, carID, sellerID string, in CarInput) (*models.Car, error)
	Delete(ctx context.Context, carID, sellerID string) error
	AttachImage(ctx context.Context, carID, sellerID, imageRef string) error
	ListBySeller(ctx context.Context, sellerID string) ([]models.Car, error)
	Search(ctx context.Context, filter SearchFilter) ([]models.Car, error)
}

// carService implements ICarService. rdb may be nil; the search cache is
// then skipped.
type carService struct {
	db  *mongo.Database
	rdb *redis.Client
	cfg *config.Config
}

// NewCarService creates a new CarService.
func NewCarService(db *mongo.Database, rdb *redis.Client, cfg *config.Config) ICarService {
	return &carService{db: db, rdb: rdb, cfg: cfg}
}

func validateCar(in CarInput) []string {
	var msgs []string
	if strings.TrimSpace(in.CompanyName) == "" {
		msgs = append(msgs, "Company name is required.")
	}
	if strings.TrimSpace(in.Model) == "" {
		msgs = append(msgs, "Model is required.")
	}
	currentYear := time.Now().UTC().Year()
	if in.Year < 1900 || in.Year > currentYear {
		msgs = append(msgs, fmt.Sprintf("Year must be between 1900 and %d.", currentYear))
	}
	if in.Price <= 0 {
		msgs = append(msgs, "Price must be greater than zero.")
	}
	if strings.TrimSpace(in.Location) == "" {
		msgs = append(msgs, "Location is required.")
	}
	if _, err := models.ParseBodyType(in.BodyType); err != nil {
		msgs = append(msgs, "Body type must be one of: Sedan, SUV, Hatchback, Coupe, Convertible, Wagon, Van, Truck.")
	}
	return msgs
}

// Create validates the attributes and inserts a new listing owned by sellerID.
func (s *carService) Create(ctx context.Context, sellerID string, in CarInput) (*models.Car, error) {
	if msgs := validateCar(in); len(msgs) > 0 {
		return nil, apperr.Validation(msgs)
	}
	bodyType, _ := models.ParseBodyType(in.BodyType)

	imageRef := in.ImageRef
	if imageRef == "" {
		imageRef = models.DefaultImageRef
	}

	collection := s.db.Collection(db.CarsCollection)
	now := time.Now().UTC()

	var newCar *models.Car

	operation := func() error {
		newCar = &models.Car{
			ID:          uuid.NewString(), // ID generated on each attempt
			SellerID:    sellerID,
			CompanyName: strings.TrimSpace(in.CompanyName),
			Model:       strings.TrimSpace(in.Model),
			Year:        in.Year,
			Price:       in.Price,
			Location:    strings.TrimSpace(in.Location),
			BodyType:    bodyType,
			ImageRef:    imageRef,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		_, insertErr := collection.InsertOne(ctx, newCar)
		return insertErr
	}

	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("failed to insert car for seller %s: %w", sellerID, err)
	}

	return newCar, nil
}

// FindByID returns a car by its identity without checking ownership.
func (s *carService) FindByID(ctx context.Context, carID string) (*models.Car, error) {
	var car models.Car
	collection := s.db.Collection(db.CarsCollection)
	err := collection.FindOne(ctx, bson.M{"_id": carID}).Decode(&car)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("error finding car %s: %w", carID, err)
	}
	return &car, nil
}

// explainMiss distinguishes "no such car" from "owned by someone else" after
// an ownership-filtered write matched nothing.
func (s *carService) explainMiss(ctx context.Context, carID, sellerID string) error {
	var car models.Car
	errCheck := s.db.Collection(db.CarsCollection).FindOne(ctx, bson.M{"_id": carID}).Decode(&car)
	if errors.Is(errCheck, mongo.ErrNoDocuments) {
		return apperr.ErrNotFound
	}
	if errCheck != nil {
		return fmt.Errorf("error checking car %s: %w", carID, errCheck)
	}
	if car.SellerID != sellerID {
		return apperr.ErrNotOwner
	}
	return fmt.Errorf("car %s cannot be updated", carID)
}

// Update re-validates the attributes and overwrites all mutable fields of a
// car owned by sellerID. Ownership and the write are a single filtered
// statement, so a non-owner can never slip a partial update through.
func (s *carService) Update(ctx context.Context, carID, sellerID string, in CarInput) (*models.Car, error) {
	if msgs := validateCar(in); len(msgs) > 0 {
		return nil, apperr.Validation(msgs)
	}
	bodyType, _ := models.ParseBodyType(in.BodyType)

	collection := s.db.Collection(db.CarsCollection)
	filter := bson.M{"_id": carID, "seller_id": sellerID}
	update := bson.M{"$set": bson.M{
		"company_name": strings.TrimSpace(in.CompanyName),
		"model":        strings.TrimSpace(in.Model),
		"year":         in.Year,
		"price":        in.Price,
		"location":     strings.TrimSpace(in.Location),
		"body_type":    bodyType,
		"updated_at":   time.Now().UTC(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Car
	err := collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, s.explainMiss(ctx, carID, sellerID)
		}
		return nil, fmt.Errorf("failed to update car %s: %w", carID, err)
	}
	return &updated, nil
}

// Delete removes a car owned by sellerID. Feedback rows referencing the car
// are retained; they are only reachable through the car, so they become
// invisible once it is gone.
func (s *carService) Delete(ctx context.Context, carID, sellerID string) error {
	collection := s.db.Collection(db.CarsCollection)
	result, err := collection.DeleteOne(ctx, bson.M{"_id": carID, "seller_id": sellerID})
	if err != nil {
		return fmt.Errorf("db error deleting car %s: %w", carID, err)
	}
	if result.DeletedCount == 0 {
		return s.explainMiss(ctx, carID, sellerID)
	}
	return nil
}

// AttachImage overwrites only the image reference of a car owned by sellerID.
func (s *carService) AttachImage(ctx context.Context, carID, sellerID, imageRef string) error {
	collection := s.db.Collection(db.CarsCollection)
	filter := bson.M{"_id": carID, "seller_id": sellerID}
	update := bson.M{"$set": bson.M{
		"image_ref":  imageRef,
		"updated_at": time.Now().UTC(),
	}}
	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("db error attaching image to car %s: %w", carID, err)
	}
	if result.MatchedCount == 0 {
		return s.explainMiss(ctx, carID, sellerID)
	}
	return nil
}

// ListBySeller returns all cars owned by a seller, most recently created first.
func (s *carService) ListBySeller(ctx context.Context, sellerID string) ([]models.Car, error) {
	collection := s.db.Collection(db.CarsCollection)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := collection.Find(ctx, bson.M{"seller_id": sellerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list cars for seller %s: %w", sellerID, err)
	}
	defer cursor.Close(ctx)

	cars := []models.Car{}
	if err = cursor.All(ctx, &cars); err != nil {
		return nil, fmt.Errorf("failed to decode cars for seller %s: %w", sellerID, err)
	}
	return cars, nil
}

// Search returns all cars matching the filter. An empty filter returns every
// car. Results are cached in Redis for a short TTL keyed by the filter.
func (s *carService) Search(ctx context.Context, filter SearchFilter) ([]models.Car, error) {
	cacheKey := s.searchCacheKey(filter)
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var cars []models.Car
			if err := json.Unmarshal(cached, &cars); err == nil {
				return cars, nil
			}
			// Corrupt cache entry; fall through to the database.
		}
	}

	query := bson.M{}
	if filter.Model != nil && *filter.Model != "" {
		query["model"] = bson.M{
			"$regex":   regexp.QuoteMeta(*filter.Model),
			"$options": "i",
		}
	}
	if filter.Year != nil {
		query["year"] = *filter.Year
	}
	if filter.MaxPrice != nil {
		query["price"] = bson.M{"$lte": *filter.MaxPrice}
	}

	collection := s.db.Collection(db.CarsCollection)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to execute car search query: %w", err)
	}
	defer cursor.Close(ctx)

	cars := []models.Car{}
	if err = cursor.All(ctx, &cars); err != nil {
		return nil, fmt.Errorf("failed to decode car search results: %w", err)
	}

	if s.rdb != nil && s.cfg != nil && s.cfg.SearchCacheTTL > 0 {
		if data, err := json.Marshal(cars); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, data, s.cfg.SearchCacheTTL).Err(); err != nil {
				log.Printf("WARN: failed to cache search results: %v", err)
			}
		}
	}

	return cars, nil
}

func (s *carService) searchCacheKey(filter SearchFilter) string {
	model, year, price := "", "", ""
	if filter.Model != nil {
		model = strings.ToLower(*filter.Model)
	}
	if filter.Year != nil {
		year = fmt.Sprintf("%d", *filter.Year)
	}
	if filter.MaxPrice != nil {
		price = fmt.Sprintf("%g", *filter.MaxPrice)
	}
	return fmt.Sprintf("search:cars:%s|%s|%s", model, year, price)
}
