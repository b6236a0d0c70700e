package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/property-listing/internal/editor"
	"github.com/iliyamo/property-listing/internal/model"
	"github.com/iliyamo/property-listing/internal/queue"
	"github.com/iliyamo/property-listing/internal/repository"
	queue_publisher "github.com/iliyamo/property-listing/internal/service"
	"github.com/iliyamo/property-listing/internal/session"
	"github.com/iliyamo/property-listing/internal/view"
)

// ListingStore is the document-store surface the property handlers use.
// *repository.ListingRepo satisfies it; tests substitute an in-memory
// implementation.
type ListingStore interface {
	ListAll(ctx context.Context) ([]model.Listing, error)
	GetByID(ctx context.Context, id string) (*model.Listing, error)
	Create(ctx context.Context, l *model.Listing) error
	Update(ctx context.Context, id, ownerID string, l *model.Listing) error
	Delete(ctx context.Context, id, ownerID string) error
	AppendImageURL(ctx context.Context, id, ownerID, url string) error
}

// PropertyHandler serves the listing CRUD endpoints. Publish is the event
// sink for mutations; it defaults to the RabbitMQ publisher and can be
// replaced in tests. Publish failures are logged and never fail a request.
type PropertyHandler struct {
	Store    ListingStore
	Geocoder editor.Geocoder
	Publish  func(ctx context.Context, event queue.ListingEvent) error
}

func NewPropertyHandler(store ListingStore, g editor.Geocoder) *PropertyHandler {
	return &PropertyHandler{
		Store:    store,
		Geocoder: g,
		Publish:  queue_publisher.PublishListingEvent,
	}
}

// listingReq carries the editable listing fields for create and update.
// Pointer fields distinguish "not specified" from zero; omitted numerics
// stay null in the stored document.
type listingReq struct {
	Address     string   `json:"address"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Bedrooms    *int     `json:"bedrooms"`
	Bathrooms   *int     `json:"bathrooms"`
	Area        *float64 `json:"area"`
	Type        string   `json:"type"`
	Available   *bool    `json:"available"`
	ImageURLs   []string `json:"imageUrls"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

func (r listingReq) draft() editor.Draft {
	return editor.Draft{
		Address:     r.Address,
		Description: r.Description,
		Price:       r.Price,
		Bedrooms:    r.Bedrooms,
		Bathrooms:   r.Bathrooms,
		Area:        r.Area,
		Type:        r.Type,
		Available:   r.Available,
		ImageURLs:   r.ImageURLs,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
	}
}

// List returns the caller's working set of listings. The pipeline is
// fetch -> ownership filter -> search filter: scope=mine (the default)
// keeps only the caller's listings, scope=all shows everything, and q
// narrows by address/description substring. Each request builds a fresh
// view seeded with the request identity, so the result can never reflect
// a previous user's session.
func (h *PropertyHandler) List(c echo.Context) error {
	ident, err := currentIdentity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cell := session.NewCell()
	v := view.New(h.Store, cell)
	defer v.Close()
	cell.Publish(ident)

	if err := v.Activate(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "fetch listings failed"})
	}

	switch c.QueryParam("scope") {
	case "", "mine":
		// default: only the caller's listings
	case "all":
		v.SetOwnershipFilter(false)
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "scope must be mine or all"})
	}
	if q := c.QueryParam("q"); q != "" {
		v.SetSearchText(q)
	}

	items := v.Listings()
	if items == nil {
		items = []model.Listing{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// Get returns a single listing by id. Any authenticated user may read any
// listing; ownership only gates mutations.
func (h *PropertyHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	l, err := h.Store.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == repository.ErrListingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "fetch listing failed"})
	}
	return c.JSON(http.StatusOK, l)
}

// Create runs a create editing session: bind the draft, submit it and
// return the stored document. A blank address is rejected locally before
// any store call.
func (h *PropertyHandler) Create(c echo.Context) error {
	ident, err := currentIdentity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req listingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ed := editor.New()
	ed.Begin(req.draft())
	l, err := ed.Submit(ctx, h.Store, ident)
	if err != nil {
		if err == editor.ErrAddressRequired {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "address is required"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create listing failed"})
	}

	h.publish(ctx, queue.ListingEvent{
		Action:     queue.ActionCreated,
		ListingID:  l.ID,
		OwnerID:    l.OwnerID,
		OwnerEmail: l.OwnerEmail,
		Address:    l.Address,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	return c.JSON(http.StatusCreated, l)
}

// Update runs an edit session against an existing listing. The store
// enforces ownership; not-found and foreign-owner outcomes map to 404 and
// 403. On success the refreshed document is returned.
func (h *PropertyHandler) Update(c echo.Context) error {
	ident, err := currentIdentity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req listingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ed := editor.New()
	ed.BeginFor(id, req.draft())
	l, err := ed.Submit(ctx, h.Store, ident)
	if err != nil {
		switch err {
		case editor.ErrAddressRequired:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "address is required"})
		case repository.ErrListingNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not the listing owner"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update listing failed"})
	}

	h.publish(ctx, queue.ListingEvent{
		Action:     queue.ActionUpdated,
		ListingID:  id,
		OwnerID:    l.OwnerID,
		OwnerEmail: l.OwnerEmail,
		Address:    l.Address,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})

	// Re-read so the response carries store-managed fields (createdAt).
	stored, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusOK, l)
	}
	return c.JSON(http.StatusOK, stored)
}

// Delete removes a listing after an explicit confirmation. The client must
// send ?confirm=true; without it nothing is deleted and the request is
// rejected, mirroring a destructive-action confirmation dialog.
func (h *PropertyHandler) Delete(c echo.Context) error {
	ident, err := currentIdentity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if c.QueryParam("confirm") != "true" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "confirmation required: pass confirm=true"})
	}
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	l, err := h.Store.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrListingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "fetch listing failed"})
	}

	if err := h.Store.Delete(ctx, id, ident.ID); err != nil {
		switch err {
		case repository.ErrListingNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not the listing owner"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete listing failed"})
	}

	h.publish(ctx, queue.ListingEvent{
		Action:     queue.ActionDeleted,
		ListingID:  id,
		OwnerID:    l.OwnerID,
		OwnerEmail: l.OwnerEmail,
		Address:    l.Address,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	return c.NoContent(http.StatusNoContent)
}

// publish sends a listing event through the configured sink. Failures are
// logged only; a lost event never fails the mutation that produced it.
func (h *PropertyHandler) publish(ctx context.Context, e queue.ListingEvent) {
	if h.Publish == nil {
		return
	}
	if err := h.Publish(ctx, e); err != nil {
		log.Printf("listing event publish failed (%s %s): %v", e.Action, e.ListingID, err)
	}
}
