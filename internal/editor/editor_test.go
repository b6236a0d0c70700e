package editor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/property-listing/internal/geocode"
	"github.com/iliyamo/property-listing/internal/model"
	"github.com/iliyamo/property-listing/internal/repository"
	"github.com/iliyamo/property-listing/internal/session"
)

// fakeStore records submitted listings and can fail on demand.
type fakeStore struct {
	createErr   error
	updateErr   error
	created     []*model.Listing
	updated     map[string]*model.Listing
	createCalls int
	updateCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{updated: make(map[string]*model.Listing)}
}

func (s *fakeStore) Create(ctx context.Context, l *model.Listing) error {
	s.createCalls++
	if s.createErr != nil {
		return s.createErr
	}
	l.ID = "generated"
	s.created = append(s.created, l)
	return nil
}

func (s *fakeStore) Update(ctx context.Context, id, ownerID string, l *model.Listing) error {
	s.updateCalls++
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updated[id] = l
	return nil
}

// fakeGeocoder returns canned results or a canned error.
type fakeGeocoder struct {
	results []geocode.Result
	err     error
	calls   int
}

func (g *fakeGeocoder) Geocode(ctx context.Context, address string) ([]geocode.Result, error) {
	g.calls++
	return g.results, g.err
}

var owner = session.Identity{ID: "42", Email: "owner@example.com"}

func TestSubmitBlankAddressNeverReachesStore(t *testing.T) {
	store := newFakeStore()
	e := New()
	e.Begin(Draft{Address: "   ", Description: "missing the one required field"})

	l, err := e.Submit(context.Background(), store, owner)
	require.ErrorIs(t, err, ErrAddressRequired)
	assert.Nil(t, l)
	assert.Zero(t, store.createCalls)
	assert.Zero(t, store.updateCalls)
	// Still editing; the user can fix the address and retry.
	assert.Equal(t, StateEditing, e.State())
}

func TestSubmitCreateHappyPath(t *testing.T) {
	store := newFakeStore()
	e := New()
	price := 250000.0
	e.Begin(Draft{Address: "12 Oak Street", Price: &price, Type: "Apartment"})

	l, err := e.Submit(context.Background(), store, owner)
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, StateSucceeded, e.State())
	assert.Equal(t, "generated", l.ID)
	assert.Equal(t, "42", l.OwnerID)
	assert.Equal(t, "owner@example.com", l.OwnerEmail)
	assert.Equal(t, "Apartment", l.Type)
	// Session is over; the draft is gone.
	assert.Equal(t, Draft{}, e.Draft())
}

func TestSubmitAppliesDefaults(t *testing.T) {
	store := newFakeStore()
	e := New()
	// Only an address: price stays unspecified, type falls back, available
	// defaults to true.
	e.Begin(Draft{Address: "77 Maple Road", ImageURLs: []string{"", "https://cdn.example.com/a.jpg", "  "}})

	l, err := e.Submit(context.Background(), store, owner)
	require.NoError(t, err)
	assert.Nil(t, l.Price)
	assert.Nil(t, l.Bedrooms)
	assert.Equal(t, model.DefaultPropertyType, l.Type)
	assert.True(t, l.Available)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg"}, l.ImageURLs)
}

func TestSubmitExplicitUnavailable(t *testing.T) {
	store := newFakeStore()
	e := New()
	avail := false
	e.Begin(Draft{Address: "9 Pine Avenue", Available: &avail})

	l, err := e.Submit(context.Background(), store, owner)
	require.NoError(t, err)
	assert.False(t, l.Available)
}

func TestSubmitFailurePreservesDraft(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("store unavailable")
	e := New()
	d := Draft{Address: "12 Oak Street", Description: "keep me"}
	e.Begin(d)

	l, err := e.Submit(context.Background(), store, owner)
	require.Error(t, err)
	assert.Nil(t, l)
	assert.Equal(t, StateEditing, e.State())
	assert.Equal(t, d, e.Draft())
	assert.Equal(t, err, e.Err())

	// Retry after the store recovers.
	store.createErr = nil
	l, err = e.Submit(context.Background(), store, owner)
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, StateSucceeded, e.State())
	assert.NoError(t, e.Err())
}

func TestSubmitUpdatePassesOwnershipErrors(t *testing.T) {
	store := newFakeStore()
	store.updateErr = repository.ErrForbidden
	e := New()
	e.BeginFor("abc", Draft{Address: "12 Oak Street"})

	_, err := e.Submit(context.Background(), store, owner)
	require.ErrorIs(t, err, repository.ErrForbidden)
	assert.Equal(t, StateEditing, e.State())
}

func TestSubmitUpdateTargetsListingID(t *testing.T) {
	store := newFakeStore()
	e := New()
	e.BeginFor("abc", Draft{Address: "12 Oak Street"})

	l, err := e.Submit(context.Background(), store, owner)
	require.NoError(t, err)
	assert.Equal(t, "abc", l.ID)
	assert.Contains(t, store.updated, "abc")
	assert.Zero(t, store.createCalls)
}

func TestSubmitRequiresActiveSession(t *testing.T) {
	e := New()
	_, err := e.Submit(context.Background(), newFakeStore(), owner)
	assert.ErrorIs(t, err, ErrNotEditing)

	e.Begin(Draft{Address: "12 Oak Street"})
	_, err = e.Submit(context.Background(), newFakeStore(), owner)
	require.NoError(t, err)
	// The session ended; a second submit needs a new Begin.
	_, err = e.Submit(context.Background(), newFakeStore(), owner)
	assert.ErrorIs(t, err, ErrNotEditing)
}

func TestGeocodeResolvedCoordinates(t *testing.T) {
	g := &fakeGeocoder{results: []geocode.Result{{Latitude: 48.8584, Longitude: 2.2945}}}
	e := New()
	e.Begin(Draft{Address: "Champ de Mars, Paris"})

	require.NoError(t, e.Geocode(context.Background(), g))
	d := e.Draft()
	require.NotNil(t, d.Latitude)
	require.NotNil(t, d.Longitude)
	assert.Equal(t, 48.8584, *d.Latitude)
	assert.Equal(t, 2.2945, *d.Longitude)
	assert.False(t, e.Unresolved())
}

func TestGeocodeZeroResultsRecordsPlaceholder(t *testing.T) {
	g := &fakeGeocoder{} // no results, no error
	e := New()
	e.Begin(Draft{Address: "nowhere at all"})

	require.NoError(t, e.Geocode(context.Background(), g))
	d := e.Draft()
	require.NotNil(t, d.Latitude)
	require.NotNil(t, d.Longitude)
	assert.Equal(t, geocode.SentinelLatitude, *d.Latitude)
	assert.Equal(t, geocode.SentinelLongitude, *d.Longitude)
	assert.True(t, e.Unresolved())
}

func TestGeocodeTransportErrorRecordsPlaceholder(t *testing.T) {
	g := &fakeGeocoder{err: errors.New("connection refused")}
	e := New()
	e.Begin(Draft{Address: "12 Oak Street"})

	require.NoError(t, e.Geocode(context.Background(), g))
	d := e.Draft()
	assert.Equal(t, geocode.SentinelLatitude, *d.Latitude)
	assert.Equal(t, geocode.SentinelLongitude, *d.Longitude)
	assert.True(t, e.Unresolved())
}

func TestGeocodePermissionDeniedLeavesCoordinates(t *testing.T) {
	g := &fakeGeocoder{err: geocode.ErrPermissionDenied}
	e := New()
	lat, lon := 1.0, 2.0
	e.Begin(Draft{Address: "12 Oak Street", Latitude: &lat, Longitude: &lon})

	err := e.Geocode(context.Background(), g)
	require.ErrorIs(t, err, geocode.ErrPermissionDenied)
	d := e.Draft()
	assert.Equal(t, 1.0, *d.Latitude)
	assert.Equal(t, 2.0, *d.Longitude)
	assert.False(t, e.Unresolved())
}

func TestGeocodeBlankAddressIsLocalError(t *testing.T) {
	g := &fakeGeocoder{}
	e := New()
	e.Begin(Draft{Address: "  "})

	err := e.Geocode(context.Background(), g)
	require.ErrorIs(t, err, ErrAddressRequired)
	assert.Zero(t, g.calls)
}

func TestSetDraftAddressChangeClearsUnresolved(t *testing.T) {
	g := &fakeGeocoder{}
	e := New()
	e.Begin(Draft{Address: "nowhere at all"})
	require.NoError(t, e.Geocode(context.Background(), g))
	require.True(t, e.Unresolved())

	d := e.Draft()
	d.Address = "12 Oak Street"
	require.NoError(t, e.SetDraft(d))
	assert.False(t, e.Unresolved())
}

func TestSetDraftRequiresEditing(t *testing.T) {
	e := New()
	assert.ErrorIs(t, e.SetDraft(Draft{Address: "x"}), ErrNotEditing)
}
