// Package editor drives a single create-or-edit session for a listing.
// Each session walks a small state machine: Idle -> Editing -> Submitting
// -> Succeeded, with a failed submit falling back to Editing with the
// draft preserved. The required-field check runs before any store call, so
// an invalid draft never reaches the network. At most one submission can
// be in flight per session.
package editor

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/property-listing/internal/geocode"
	"github.com/iliyamo/property-listing/internal/model"
	"github.com/iliyamo/property-listing/internal/session"
)

// State is the editing session's position in its lifecycle.
type State int

const (
	StateIdle       State = iota // no session started
	StateEditing                 // collecting input
	StateSubmitting              // persistence call in flight
	StateSucceeded               // listing persisted, session over
)

var (
	// ErrAddressRequired rejects a submit or geocode with a blank address.
	// The rejection is local; no remote call is made.
	ErrAddressRequired = errors.New("address is required")
	// ErrNotEditing is returned when an operation needs an active session.
	ErrNotEditing = errors.New("no editing session in progress")
	// ErrSubmitInFlight rejects a second submit while one is running.
	ErrSubmitInFlight = errors.New("submission already in progress")
)

// Draft carries the listing fields a user can edit. Numeric pointers model
// "not specified" distinctly from zero. Available is a pointer so that an
// omitted value can default to true.
type Draft struct {
	Address     string
	Description string
	Price       *float64
	Bedrooms    *int
	Bathrooms   *int
	Area        *float64
	Type        string
	Available   *bool
	ImageURLs   []string
	Latitude    *float64
	Longitude   *float64
}

// Store is the persistence surface the editor submits to.
type Store interface {
	Create(ctx context.Context, l *model.Listing) error
	Update(ctx context.Context, id, ownerID string, l *model.Listing) error
}

// Geocoder resolves an address into zero or more coordinate results.
type Geocoder interface {
	Geocode(ctx context.Context, address string) ([]geocode.Result, error)
}

// Editor is one editing session. It is confined to a single goroutine.
type Editor struct {
	state      State
	listingID  string // empty for a create session
	draft      Draft
	unresolved bool
	lastErr    error
}

// New returns an idle editor.
func New() *Editor { return &Editor{state: StateIdle} }

// Begin starts a create session with the given draft.
func (e *Editor) Begin(d Draft) {
	e.state = StateEditing
	e.listingID = ""
	e.draft = d
	e.unresolved = false
	e.lastErr = nil
}

// BeginFor starts an edit session for an existing listing id.
func (e *Editor) BeginFor(id string, d Draft) {
	e.Begin(d)
	e.listingID = id
}

// SetDraft replaces the draft while editing. Changing the address clears a
// previous geocoding outcome, since it no longer describes the new text.
func (e *Editor) SetDraft(d Draft) error {
	if e.state != StateEditing {
		return ErrNotEditing
	}
	if d.Address != e.draft.Address {
		e.unresolved = false
	}
	e.draft = d
	return nil
}

// State returns the session's current state.
func (e *Editor) State() State { return e.state }

// Draft returns the current draft.
func (e *Editor) Draft() Draft { return e.draft }

// Unresolved reports whether the last geocoding attempt failed to resolve
// the address, in which case the draft carries the placeholder pair.
func (e *Editor) Unresolved() bool { return e.unresolved }

// Err returns the failure recorded by the last submit, if any.
func (e *Editor) Err() error { return e.lastErr }

// Geocode resolves the draft address into coordinates. The user triggers
// this manually after editing the address; it never runs automatically.
// Permission denial passes through untouched and leaves the coordinates
// unchanged. A zero-result answer or a transport error records the
// placeholder pair and marks the session unresolved.
func (e *Editor) Geocode(ctx context.Context, g Geocoder) error {
	if e.state != StateEditing {
		return ErrNotEditing
	}
	addr := strings.TrimSpace(e.draft.Address)
	if addr == "" {
		return ErrAddressRequired
	}
	results, err := g.Geocode(ctx, addr)
	if errors.Is(err, geocode.ErrPermissionDenied) {
		return err
	}
	if err != nil || len(results) == 0 {
		lat, lon := geocode.SentinelLatitude, geocode.SentinelLongitude
		e.draft.Latitude = &lat
		e.draft.Longitude = &lon
		e.unresolved = true
		return nil
	}
	e.draft.Latitude = &results[0].Latitude
	e.draft.Longitude = &results[0].Longitude
	e.unresolved = false
	return nil
}

// Submit validates the draft and persists it. A blank address rejects the
// submit locally without any store call. On failure the session returns to
// Editing with the draft intact and the error retrievable via Err. On
// success the session ends and the persisted listing is returned; the
// caller is expected to refresh its repository view.
func (e *Editor) Submit(ctx context.Context, store Store, owner session.Identity) (*model.Listing, error) {
	switch e.state {
	case StateSubmitting:
		return nil, ErrSubmitInFlight
	case StateEditing:
	default:
		return nil, ErrNotEditing
	}
	if strings.TrimSpace(e.draft.Address) == "" {
		e.lastErr = ErrAddressRequired
		return nil, ErrAddressRequired
	}

	e.state = StateSubmitting
	l := e.buildListing(owner)

	var err error
	if e.listingID == "" {
		err = store.Create(ctx, l)
	} else {
		l.ID = e.listingID
		err = store.Update(ctx, e.listingID, owner.ID, l)
	}
	if err != nil {
		// Back to editing; the draft is untouched for the next attempt.
		e.state = StateEditing
		e.lastErr = err
		return nil, err
	}

	e.state = StateSucceeded
	e.draft = Draft{}
	e.lastErr = nil
	return l, nil
}

// buildListing materializes the draft into a listing document, applying
// the defaults: type falls back to House, availability to true, and blank
// image URL entries are dropped.
func (e *Editor) buildListing(owner session.Identity) *model.Listing {
	available := true
	if e.draft.Available != nil {
		available = *e.draft.Available
	}
	urls := make([]string, 0, len(e.draft.ImageURLs))
	for _, u := range e.draft.ImageURLs {
		if strings.TrimSpace(u) != "" {
			urls = append(urls, u)
		}
	}
	return &model.Listing{
		Address:     strings.TrimSpace(e.draft.Address),
		Description: e.draft.Description,
		Price:       e.draft.Price,
		Bedrooms:    e.draft.Bedrooms,
		Bathrooms:   e.draft.Bathrooms,
		Area:        e.draft.Area,
		Type:        model.NormalizeType(e.draft.Type),
		Available:   available,
		ImageURLs:   urls,
		Latitude:    e.draft.Latitude,
		Longitude:   e.draft.Longitude,
		OwnerID:     owner.ID,
		OwnerEmail:  owner.Email,
	}
}
