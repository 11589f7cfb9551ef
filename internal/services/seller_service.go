package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Bhupinder22500650/car-dealership-project-website/internal/apperr"
	"github.com/Bhupinder22500650/car-dealership-project-website/internal/auth"
	"github.com/Bhupinder22500650/car-dealership-project-website/internal/db"
	"github.com/Bhupinder22500650/car-dealership-project-website/internal/models"
)

// RegisterInput carries the raw registration form fields. All values arrive
// untrusted; Register validates and reports every violated rule at once.
type RegisterInput struct {
	FirstName string
	LastName  string
	Address   string
	Phone     string
	Email     string
	Username  string
	Password  string
}

// ISellerService defines the interface for seller account operations.
type ISellerService interface {
	Register(ctx context.Context, in RegisterInput) (*models.Seller, error)
	Authenticate(ctx context.Context, username, password string) (*models.Seller, error)
	FindByID(ctx context.Context, sellerID string) (*models.Seller, error)
}

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^[\d+\-\s]+$`)
)

// sellerService implements ISellerService.
type sellerService struct {
	db *mongo.Database
}

// NewSellerService creates a new SellerService.
func NewSellerService(db *mongo.Database) ISellerService {
	return &sellerService{db: db}
}

func validateRegistration(in RegisterInput) []string {
	var msgs []string
	if len(in.Username) < 6 {
		msgs = append(msgs, "Username must be at least 6 characters.")
	}
	if len(in.Password) < 6 {
		msgs = append(msgs, "Password must be at least 6 characters.")
	}
	if !emailPattern.MatchString(in.Email) {
		msgs = append(msgs, "Invalid email address.")
	}
	if !phonePattern.MatchString(in.Phone) {
		msgs = append(msgs, "Phone contains invalid characters.")
	}
	if len(strings.TrimSpace(in.FirstName)) < 2 {
		msgs = append(msgs, "First name must be at least 2 characters.")
	}
	if len(strings.TrimSpace(in.LastName)) < 2 {
		msgs = append(msgs, "Last name must be at least 2 characters.")
	}
	if len(strings.TrimSpace(in.Address)) < 5 {
		msgs = append(msgs, "Address must be at least 5 characters.")
	}
	return msgs
}

// Register validates the input, hashes the password and inserts the seller.
// Uniqueness of username and email is enforced by the collection's unique
// indexes, not by a check-then-act read, so two concurrent registrations for
// the same username cannot both succeed.
func (s *sellerService) Register(ctx context.Context, in RegisterInput) (*models.Seller, error) {
	if msgs := validateRegistration(in); len(msgs) > 0 {
		return nil, apperr.Validation(msgs)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password for %s: %w", in.Username, err)
	}

	collection := s.db.Collection(db.SellersCollection)
	now := time.Now().UTC()

	var newSeller *models.Seller

	operation := func() error {
		newSeller = &models.Seller{
			ID:           uuid.NewString(), // ID generated on each attempt
			FirstName:    strings.TrimSpace(in.FirstName),
			LastName:     strings.TrimSpace(in.LastName),
			Address:      strings.TrimSpace(in.Address),
			Phone:        strings.TrimSpace(in.Phone),
			Email:        strings.TrimSpace(in.Email),
			Username:     strings.TrimSpace(in.Username),
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		_, insertErr := collection.InsertOne(ctx, newSeller)
		return insertErr
	}

	// Retries only help for _id collisions; username/email collisions keep
	// failing and are mapped to a conflict below.
	err = db.WithRetries(operation, db.DefaultMaxRetries, func(e error) bool {
		return db.IsMongoDuplicateKeyError(e) && !isUniqueFieldCollision(e)
	})

	if err != nil {
		if db.IsMongoDuplicateKeyError(err) {
			return nil, conflictFromDuplicate(err)
		}
		return nil, fmt.Errorf("failed to insert seller %s: %w", in.Username, err)
	}

	return newSeller, nil
}

// isUniqueFieldCollision reports whether a duplicate key error hit one of the
// caller-value unique indexes rather than _id.
func isUniqueFieldCollision(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "username_1") || strings.Contains(msg, "email_1")
}

// conflictFromDuplicate maps a duplicate key error to the violated field.
func conflictFromDuplicate(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "username_1"):
		return &apperr.ConflictError{Field: "username"}
	case strings.Contains(msg, "email_1"):
		return &apperr.ConflictError{Field: "email"}
	default:
		return &apperr.ConflictError{Field: "username or email"}
	}
}

// Authenticate verifies the credentials and returns the seller. An unknown
// username and a wrong password yield the identical error so callers cannot
// enumerate accounts.
func (s *sellerService) Authenticate(ctx context.Context, username, password string) (*models.Seller, error) {
	var seller models.Seller
	collection := s.db.Collection(db.SellersCollection)

	err := collection.FindOne(ctx, bson.M{"username": username}).Decode(&seller)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error finding seller by username: %w", err)
	}

	if !auth.CheckPasswordHash(password, seller.PasswordHash) {
		return nil, apperr.ErrInvalidCredentials
	}

	return &seller, nil
}

// FindByID returns a seller by its identity.
func (s *sellerService) FindByID(ctx context.Context, sellerID string) (*models.Seller, error) {
	var seller models.Seller
	collection := s.db.Collection(db.SellersCollection)
	err := collection.FindOne(ctx, bson.M{"_id": sellerID}).Decode(&seller)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("error finding seller %s: %w", sellerID, err)
	}
	return &seller, nil
}
