package handler

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/property-listing/internal/repository"
)

// PhotoUploader is the object-storage surface the handler needs.
// *storage.PhotoStore satisfies it; tests substitute a fake.
type PhotoUploader interface {
	Upload(ctx context.Context, listingID, filename string, r io.Reader, size int64, contentType string) (string, error)
}

// PhotoHandler accepts photo uploads for a listing. Photos may be nil when
// object storage is not configured; uploads are then refused with 503.
type PhotoHandler struct {
	Photos   PhotoUploader
	Listings ListingStore
}

func NewPhotoHandler(p PhotoUploader, l ListingStore) *PhotoHandler {
	return &PhotoHandler{Photos: p, Listings: l}
}

// Upload receives a multipart `photo` file, stores it under the listing's
// prefix and appends the resulting URL to the listing's imageUrls. Only
// the owner may attach photos.
func (h *PhotoHandler) Upload(c echo.Context) error {
	if h.Photos == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "photo storage is not configured"})
	}
	ident, err := currentIdentity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	// Ownership is settled before anything touches the bucket; a rejected
	// request must not leave an orphaned object behind.
	l, err := h.Listings.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrListingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "fetch listing failed"})
	}
	if l.OwnerID != ident.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not the listing owner"})
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "multipart field 'photo' is required"})
	}
	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot read uploaded file"})
	}
	defer src.Close()

	url, err := h.Photos.Upload(ctx, id, file.Filename, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
	}

	if err := h.Listings.AppendImageURL(ctx, id, ident.ID, url); err != nil {
		switch err {
		case repository.ErrListingNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not the listing owner"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "attach photo failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"url": url})
}
