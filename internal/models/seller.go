package models

import (
	"time"
)

// Seller represents a registered seller account.
type Seller struct {
	ID           string    `bson:"_id" json:"id"`
	FirstName    string    `bson:"first_name" json:"first_name"`
	LastName     string    `bson:"last_name" json:"last_name"`
	Address      string    `bson:"address" json:"address"`
	Phone        string    `bson:"phone" json:"phone"`
	Email        string    `bson:"email" json:"email"`
	Username     string    `bson:"username" json:"username"`
	PasswordHash string    `bson:"password" json:"-"` // Store hash, not plaintext
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// Public returns the seller shaped for presentation, without the password
// hash. The bson tag on PasswordHash already hides it from JSON, but handlers
// should still return this view rather than the stored document.
func (s *Seller) Public() PublicSeller {
	return PublicSeller{
		ID:        s.ID,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Address:   s.Address,
		Phone:     s.Phone,
		Email:     s.Email,
		Username:  s.Username,
	}
}

// PublicSeller is the presentation view of a seller.
type PublicSeller struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Username  string `json:"username"`
}
