package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/property-listing/internal/editor"
	"github.com/iliyamo/property-listing/internal/geocode"
)

// GeocodeHandler resolves addresses on behalf of a client editing a
// listing. The lookup is always user-triggered; nothing geocodes
// automatically on address change.
type GeocodeHandler struct {
	Geocoder editor.Geocoder
}

func NewGeocodeHandler(g editor.Geocoder) *GeocodeHandler {
	return &GeocodeHandler{Geocoder: g}
}

type geocodeReq struct {
	Address string `json:"address"`
}

// Resolve runs the draft address through an editing session's geocode
// step and returns the outcome. An unresolvable address is a successful
// response carrying the placeholder pair and unresolved=true; only a
// denied location permission or a bad request produce error statuses.
func (h *GeocodeHandler) Resolve(c echo.Context) error {
	var req geocodeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	ed := editor.New()
	ed.Begin(editor.Draft{Address: req.Address})
	if err := ed.Geocode(ctx, h.Geocoder); err != nil {
		if errors.Is(err, geocode.ErrPermissionDenied) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Location permission is required for geocoding."})
		}
		if errors.Is(err, editor.ErrAddressRequired) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "address is required"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "geocoding failed"})
	}

	d := ed.Draft()
	return c.JSON(http.StatusOK, echo.Map{
		"latitude":   d.Latitude,
		"longitude":  d.Longitude,
		"unresolved": ed.Unresolved(),
	})
}
