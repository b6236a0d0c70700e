// This file implements the listing repository backed by the MongoDB
// `houses` collection. Listings are full documents; updates replace the
// editable fields wholesale while id, owner identity and createdAt are
// never touched. Ownership is enforced here so that handlers only need to
// map sentinel errors to HTTP statuses.
package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/property-listing/internal/model"
)

// listingCollection is the document collection holding property records.
// The name is inherited from the data this service was seeded with.
const listingCollection = "houses"

// ListingRepo encapsulates all document-store access for listings.
type ListingRepo struct {
	col *mongo.Collection
}

// NewListingRepo constructs a ListingRepo on the given database handle.
func NewListingRepo(db *mongo.Database) *ListingRepo {
	return &ListingRepo{col: db.Collection(listingCollection)}
}

// ListAll returns the complete set of listings ordered by creation time,
// newest first. The repository view derives its ownership and search
// projections from this snapshot in memory.
func (r *ListingRepo) ListAll(ctx context.Context) ([]model.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var out []model.Listing
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID fetches a single listing. ErrListingNotFound is a definitive
// "does not exist" answer, distinct from transient store failures which
// are returned as-is.
func (r *ListingRepo) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	var l model.Listing
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return &l, nil
}

// Create inserts a new listing document. The store assigns the id; owner
// identity and timestamps are stamped here and are immutable afterwards.
func (r *ListingRepo) Create(ctx context.Context, l *model.Listing) error {
	now := time.Now().UTC()
	l.ID = primitive.NewObjectID().Hex()
	l.CreatedAt = now
	l.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, l)
	return err
}

// Update replaces the editable fields of a listing owned by ownerID.
// Returns ErrListingNotFound when the id does not exist and ErrForbidden
// when it exists but belongs to someone else.
func (r *ListingRepo) Update(ctx context.Context, id, ownerID string, l *model.Listing) error {
	if err := r.requireOwner(ctx, id, ownerID); err != nil {
		return err
	}
	set := bson.M{
		"address":     l.Address,
		"description": l.Description,
		"price":       l.Price,
		"bedrooms":    l.Bedrooms,
		"bathrooms":   l.Bathrooms,
		"area":        l.Area,
		"type":        l.Type,
		"available":   l.Available,
		"imageUrls":   l.ImageURLs,
		"latitude":    l.Latitude,
		"longitude":   l.Longitude,
		"updatedAt":   time.Now().UTC(),
	}
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

// Delete removes a listing owned by ownerID. The delete is irreversible;
// the confirmation step lives in the handler, not here.
func (r *ListingRepo) Delete(ctx context.Context, id, ownerID string) error {
	if err := r.requireOwner(ctx, id, ownerID); err != nil {
		return err
	}
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// AppendImageURL pushes an uploaded photo URL onto the listing's ordered
// imageUrls sequence, owner-gated like any other mutation.
func (r *ListingRepo) AppendImageURL(ctx context.Context, id, ownerID, url string) error {
	if err := r.requireOwner(ctx, id, ownerID); err != nil {
		return err
	}
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{"imageUrls": url},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	return err
}

// requireOwner verifies existence and ownership of a listing in one read.
func (r *ListingRepo) requireOwner(ctx context.Context, id, ownerID string) error {
	var doc struct {
		OwnerID string `bson:"ownerId"`
	}
	err := r.col.FindOne(ctx, bson.M{"_id": id},
		options.FindOne().SetProjection(bson.M{"ownerId": 1})).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrListingNotFound
		}
		return err
	}
	if doc.OwnerID != ownerID {
		return ErrForbidden
	}
	return nil
}
