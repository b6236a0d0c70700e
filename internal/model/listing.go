// Package model defines the persisted entities of the application.  Listings
// live in the MongoDB `houses` collection; users and refresh tokens live in
// MySQL.  Handlers may define separate response types when the stored shape
// should not be exposed directly.
package model

import "time"

// PropertyTypes enumerates the accepted listing categories.  The first entry
// is the default applied when a client omits or misspells the type.
var PropertyTypes = []string{
	"House",
	"Apartment",
	"Condo",
	"Townhouse",
	"Duplex",
	"Studio",
	"Loft",
	"Cabin",
	"Mobile Home",
	"Commercial",
}

// DefaultPropertyType is applied when no valid type is supplied.
const DefaultPropertyType = "House"

// Listing represents a property document stored in the `houses` collection.
// The ID is assigned by the store at creation and never changes.  Numeric
// detail fields are pointers because an absent value means "not specified",
// which is different from zero.  OwnerID and OwnerEmail are written once at
// creation and never edited afterwards; OwnerID is the sole authority for
// edit and delete permission.
type Listing struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Address     string    `bson:"address" json:"address"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Price       *float64  `bson:"price" json:"price"`
	Bedrooms    *int      `bson:"bedrooms" json:"bedrooms"`
	Bathrooms   *int      `bson:"bathrooms" json:"bathrooms"`
	Area        *float64  `bson:"area" json:"area"`
	Type        string    `bson:"type" json:"type"`
	Available   bool      `bson:"available" json:"available"`
	ImageURLs   []string  `bson:"imageUrls" json:"imageUrls"`
	Latitude    *float64  `bson:"latitude" json:"latitude"`
	Longitude   *float64  `bson:"longitude" json:"longitude"`
	OwnerID     string    `bson:"ownerId" json:"ownerId"`
	OwnerEmail  string    `bson:"ownerEmail" json:"ownerEmail"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ValidPropertyType reports whether t is one of the accepted categories.
func ValidPropertyType(t string) bool {
	for _, pt := range PropertyTypes {
		if pt == t {
			return true
		}
	}
	return false
}

// NormalizeType maps an arbitrary type string to an accepted category,
// falling back to the default when the value is empty or unknown.
func NormalizeType(t string) string {
	if ValidPropertyType(t) {
		return t
	}
	return DefaultPropertyType
}
