// Package queue defines message payloads exchanged over the message broker.
package queue

// Listing lifecycle actions carried in ListingEvent.Action.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ListingEvent is published whenever a listing is created, updated or
// deleted. It carries enough information for downstream consumers to log
// or notify without querying the document store.
type ListingEvent struct {
	Action     string `json:"action"`
	ListingID  string `json:"listing_id"`
	OwnerID    string `json:"owner_id"`
	OwnerEmail string `json:"owner_email"`
	Address    string `json:"address"`
	OccurredAt string `json:"occurred_at"`
}
