package models

import (
	"time"
)

// Feedback is a comment left by a seller account on a car listing. At most
// one row exists per (car_id, seller_id) pair; resubmission updates the
// existing row. The pair is backed by a unique compound index.
type Feedback struct {
	ID        string    `bson:"_id" json:"id"`
	CarID     string    `bson:"car_id" json:"car_id"`
	SellerID  string    `bson:"seller_id" json:"seller_id"`
	Email     string    `bson:"email" json:"email"` // Reply-to email provided, independent of account email
	Comment   string    `bson:"comment" json:"comment"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
