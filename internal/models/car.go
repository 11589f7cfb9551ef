package models

import (
	"fmt"
	"time"
)

// DefaultImageRef is the sentinel image reference used when a listing has no
// uploaded photo.
const DefaultImageRef = "assets/img/default-car.jpg"

// BodyType is the closed set of car body styles. Values outside the set are
// rejected at parse time, so a stored Car never carries a free-form string.
type BodyType string

const (
	BodySedan       BodyType = "Sedan"
	BodySUV         BodyType = "SUV"
	BodyHatchback   BodyType = "Hatchback"
	BodyCoupe       BodyType = "Coupe"
	BodyConvertible BodyType = "Convertible"
	BodyWagon       BodyType = "Wagon"
	BodyVan         BodyType = "Van"
	BodyTruck       BodyType = "Truck"
)

// BodyTypes lists every valid body type, in display order.
var BodyTypes = []BodyType{
	BodySedan, BodySUV, BodyHatchback, BodyCoupe,
	BodyConvertible, BodyWagon, BodyVan, BodyTruck,
}

// ParseBodyType converts a raw form value into a BodyType.
func ParseBodyType(s string) (BodyType, error) {
	for _, bt := range BodyTypes {
		if string(bt) == s {
			return bt, nil
		}
	}
	return "", fmt.Errorf("unknown body type %q", s)
}

// Car represents a car listing owned by a seller. Ownership is immutable
// after creation.
type Car struct {
	ID          string    `bson:"_id" json:"id"`
	SellerID    string    `bson:"seller_id" json:"seller_id"`
	CompanyName string    `bson:"company_name" json:"company_name"`
	Model       string    `bson:"model" json:"model"`
	Year        int       `bson:"year" json:"year"`
	Price       float64   `bson:"price" json:"price"`
	Location    string    `bson:"location" json:"location"`
	BodyType    BodyType  `bson:"body_type" json:"body_type"`
	ImageRef    string    `bson:"image_ref" json:"image_ref"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}
