package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/property-listing/internal/model"
	"github.com/iliyamo/property-listing/internal/queue"
	"github.com/iliyamo/property-listing/internal/repository"
)

// memStore is an in-memory ListingStore with the same ownership semantics
// as the MongoDB repository.
type memStore struct {
	seq   int
	items map[string]*model.Listing
}

func newMemStore() *memStore {
	return &memStore{items: make(map[string]*model.Listing)}
}

func (s *memStore) ListAll(ctx context.Context) ([]model.Listing, error) {
	out := make([]model.Listing, 0, len(s.items))
	for _, l := range s.items {
		out = append(out, *l)
	}
	return out, nil
}

func (s *memStore) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	l, ok := s.items[id]
	if !ok {
		return nil, repository.ErrListingNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *memStore) Create(ctx context.Context, l *model.Listing) error {
	s.seq++
	l.ID = fmt.Sprintf("id-%d", s.seq)
	now := time.Now().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now
	cp := *l
	s.items[l.ID] = &cp
	return nil
}

func (s *memStore) requireOwner(id, ownerID string) error {
	l, ok := s.items[id]
	if !ok {
		return repository.ErrListingNotFound
	}
	if l.OwnerID != ownerID {
		return repository.ErrForbidden
	}
	return nil
}

func (s *memStore) Update(ctx context.Context, id, ownerID string, l *model.Listing) error {
	if err := s.requireOwner(id, ownerID); err != nil {
		return err
	}
	stored := s.items[id]
	cp := *l
	cp.ID = id
	cp.OwnerID = stored.OwnerID
	cp.OwnerEmail = stored.OwnerEmail
	cp.CreatedAt = stored.CreatedAt
	cp.UpdatedAt = time.Now().UTC()
	s.items[id] = &cp
	return nil
}

func (s *memStore) Delete(ctx context.Context, id, ownerID string) error {
	if err := s.requireOwner(id, ownerID); err != nil {
		return err
	}
	delete(s.items, id)
	return nil
}

func (s *memStore) AppendImageURL(ctx context.Context, id, ownerID, url string) error {
	if err := s.requireOwner(id, ownerID); err != nil {
		return err
	}
	s.items[id].ImageURLs = append(s.items[id].ImageURLs, url)
	return nil
}

// seed inserts a listing owned by ownerID directly into the store.
func (s *memStore) seed(ownerID, ownerEmail, address, description string) string {
	l := &model.Listing{
		Address:     address,
		Description: description,
		Type:        model.DefaultPropertyType,
		Available:   true,
		OwnerID:     ownerID,
		OwnerEmail:  ownerEmail,
	}
	_ = s.Create(context.Background(), l)
	s.items[l.ID].OwnerID = ownerID
	s.items[l.ID].OwnerEmail = ownerEmail
	return l.ID
}

func newHandler(store ListingStore) (*PropertyHandler, *[]queue.ListingEvent) {
	events := &[]queue.ListingEvent{}
	h := &PropertyHandler{
		Store: store,
		Publish: func(ctx context.Context, e queue.ListingEvent) error {
			*events = append(*events, e)
			return nil
		},
	}
	return h, events
}

// do builds an authenticated echo context the way the JWT middleware
// would: user_id and email placed directly on the context.
func do(method, target, body string, uid uint64, email string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uid)
	c.Set("email", email)
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestListDefaultsToCallersListings(t *testing.T) {
	store := newMemStore()
	store.seed("7", "a@example.com", "12 Oak Street", "")
	store.seed("7", "a@example.com", "77 Maple Road", "")
	store.seed("8", "b@example.com", "9 Pine Avenue", "")
	h, _ := newHandler(store)

	c, rec := do(http.MethodGet, "/v1/properties", "", 7, "a@example.com")
	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(2), body["count"])
}

func TestListScopeAll(t *testing.T) {
	store := newMemStore()
	store.seed("7", "a@example.com", "12 Oak Street", "")
	store.seed("8", "b@example.com", "9 Pine Avenue", "")
	h, _ := newHandler(store)

	c, rec := do(http.MethodGet, "/v1/properties?scope=all", "", 7, "a@example.com")
	require.NoError(t, h.List(c))
	body := decodeBody(t, rec)
	assert.Equal(t, float64(2), body["count"])
}

func TestListSearchNarrowsWithinScope(t *testing.T) {
	store := newMemStore()
	store.seed("7", "a@example.com", "12 Oak Street", "cozy cabin")
	store.seed("7", "a@example.com", "77 Maple Road", "family house")
	store.seed("8", "b@example.com", "5 Oak Court", "studio")
	h, _ := newHandler(store)

	// Under the default mine scope only the caller's oak listing matches.
	c, rec := do(http.MethodGet, "/v1/properties?q=oak", "", 7, "a@example.com")
	require.NoError(t, h.List(c))
	assert.Equal(t, float64(1), decodeBody(t, rec)["count"])

	// scope=all picks up the other owner's match too.
	c, rec = do(http.MethodGet, "/v1/properties?scope=all&q=oak", "", 7, "a@example.com")
	require.NoError(t, h.List(c))
	assert.Equal(t, float64(2), decodeBody(t, rec)["count"])
}

func TestListRejectsUnknownScope(t *testing.T) {
	h, _ := newHandler(newMemStore())
	c, rec := do(http.MethodGet, "/v1/properties?scope=everything", "", 7, "a@example.com")
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateStampsOwnerAndDefaults(t *testing.T) {
	store := newMemStore()
	h, events := newHandler(store)

	c, rec := do(http.MethodPost, "/v1/properties", `{"address":"12 Oak Street"}`, 7, "a@example.com")
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var l model.Listing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &l))
	assert.Equal(t, "7", l.OwnerID)
	assert.Equal(t, "a@example.com", l.OwnerEmail)
	assert.Equal(t, model.DefaultPropertyType, l.Type)
	assert.True(t, l.Available)
	assert.Nil(t, l.Price)

	require.Len(t, *events, 1)
	assert.Equal(t, queue.ActionCreated, (*events)[0].Action)
	assert.Equal(t, l.ID, (*events)[0].ListingID)
}

func TestCreateBlankAddressRejected(t *testing.T) {
	store := newMemStore()
	h, events := newHandler(store)

	c, rec := do(http.MethodPost, "/v1/properties", `{"address":"  ","description":"no address"}`, 7, "a@example.com")
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.items)
	assert.Empty(t, *events)
}

func TestUpdateByOwner(t *testing.T) {
	store := newMemStore()
	id := store.seed("7", "a@example.com", "12 Oak Street", "old")
	h, events := newHandler(store)

	c, rec := do(http.MethodPut, "/v1/properties/"+id, `{"address":"12 Oak Street","description":"new"}`, 7, "a@example.com")
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, h.Update(c))
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := store.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "new", stored.Description)
	assert.Equal(t, "7", stored.OwnerID) // owner never changes

	require.Len(t, *events, 1)
	assert.Equal(t, queue.ActionUpdated, (*events)[0].Action)
}

func TestUpdateByNonOwnerForbidden(t *testing.T) {
	store := newMemStore()
	id := store.seed("7", "a@example.com", "12 Oak Street", "old")
	h, events := newHandler(store)

	c, rec := do(http.MethodPut, "/v1/properties/"+id, `{"address":"12 Oak Street","description":"hijack"}`, 8, "b@example.com")
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	stored, _ := store.GetByID(context.Background(), id)
	assert.Equal(t, "old", stored.Description)
	assert.Empty(t, *events)
}

func TestUpdateMissingListing(t *testing.T) {
	h, _ := newHandler(newMemStore())
	c, rec := do(http.MethodPut, "/v1/properties/none", `{"address":"12 Oak Street"}`, 7, "a@example.com")
	c.SetParamNames("id")
	c.SetParamValues("none")
	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteWithoutConfirmKeepsListing(t *testing.T) {
	store := newMemStore()
	id := store.seed("7", "a@example.com", "12 Oak Street", "")
	h, events := newHandler(store)

	c, rec := do(http.MethodDelete, "/v1/properties/"+id, "", 7, "a@example.com")
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	_, err := store.GetByID(context.Background(), id)
	assert.NoError(t, err) // still there
	assert.Empty(t, *events)
}

func TestDeleteConfirmedRemovesListing(t *testing.T) {
	store := newMemStore()
	id := store.seed("7", "a@example.com", "12 Oak Street", "")
	h, events := newHandler(store)

	c, rec := do(http.MethodDelete, "/v1/properties/"+id+"?confirm=true", "", 7, "a@example.com")
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, err := store.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, repository.ErrListingNotFound)

	require.Len(t, *events, 1)
	assert.Equal(t, queue.ActionDeleted, (*events)[0].Action)
}

func TestDeleteByNonOwnerForbidden(t *testing.T) {
	store := newMemStore()
	id := store.seed("7", "a@example.com", "12 Oak Street", "")
	h, _ := newHandler(store)

	c, rec := do(http.MethodDelete, "/v1/properties/"+id+"?confirm=true", "", 8, "b@example.com")
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	_, err := store.GetByID(context.Background(), id)
	assert.NoError(t, err)
}

func TestGetReturnsAnyListing(t *testing.T) {
	store := newMemStore()
	id := store.seed("8", "b@example.com", "9 Pine Avenue", "")
	h, _ := newHandler(store)

	c, rec := do(http.MethodGet, "/v1/properties/"+id, "", 7, "a@example.com")
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetMissingListing(t *testing.T) {
	h, _ := newHandler(newMemStore())
	c, rec := do(http.MethodGet, "/v1/properties/none", "", 7, "a@example.com")
	c.SetParamNames("id")
	c.SetParamValues("none")
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
