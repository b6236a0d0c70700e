// Package view implements the listing repository view: a fetched snapshot
// of all listings and two derived projections applied in a fixed order,
// ownership first, then free-text search. Each stage is a pure function
// over an immutable snapshot; the working set is recomputed whenever the
// snapshot, the ownership flag, the search text or the identity changes,
// which rules out stale-filter bugs when inputs change between edits.
package view

import (
	"context"
	"log"
	"strings"

	"github.com/iliyamo/property-listing/internal/model"
	"github.com/iliyamo/property-listing/internal/session"
)

// Fetcher supplies the complete listing set from the document store.
type Fetcher interface {
	ListAll(ctx context.Context) ([]model.Listing, error)
}

// View holds the fetched snapshot and the filter inputs, and keeps a
// derived working set current. A View is confined to a single goroutine
// (one request, or one test); the identity arrives through a session cell
// subscription rather than a direct reference.
type View struct {
	fetcher  Fetcher
	identity session.Identity

	snapshot  []model.Listing
	mineOnly  bool
	query     string
	displayed []model.Listing

	unsubscribe func()
}

// New builds a view subscribed to the given identity cell. The ownership
// filter defaults to "mine", matching the home screen's initial state.
// Close must be called to release the subscription.
func New(f Fetcher, cell *session.Cell) *View {
	v := &View{fetcher: f, mineOnly: true}
	v.unsubscribe = cell.Subscribe(func(id session.Identity) {
		v.identity = id
		v.recompute()
	})
	return v
}

// Close releases the identity subscription.
func (v *View) Close() {
	if v.unsubscribe != nil {
		v.unsubscribe()
		v.unsubscribe = nil
	}
}

// Refresh fetches the complete listing set and replaces the snapshot.
// On failure the error is logged and the previous snapshot stays in
// place untouched; there is no partial update and no retry.
func (v *View) Refresh(ctx context.Context) error {
	listings, err := v.fetcher.ListAll(ctx)
	if err != nil {
		log.Printf("view: refresh failed: %v", err)
		return err
	}
	v.snapshot = listings
	v.recompute()
	return nil
}

// Activate signals that the view became the active screen again and
// triggers a refetch, so edits made elsewhere become visible. It is the
// explicit replacement for a UI framework's focus hook.
func (v *View) Activate(ctx context.Context) error {
	return v.Refresh(ctx)
}

// SetOwnershipFilter switches the working set between the full snapshot
// (mine = false) and the subset owned by the current identity (mine =
// true). Pure derivation; no network call. Reapplying the same value is a
// no-op.
func (v *View) SetOwnershipFilter(mine bool) {
	if v.mineOnly == mine {
		return
	}
	v.mineOnly = mine
	v.recompute()
}

// SetSearchText narrows the ownership-filtered set to listings whose
// address or description contains the query, case-insensitively. An empty
// query leaves the set unchanged. Reapplying the same query is a no-op.
func (v *View) SetSearchText(query string) {
	if v.query == query {
		return
	}
	v.query = query
	v.recompute()
}

// Listings returns the current working set. Callers must not mutate it.
func (v *View) Listings() []model.Listing {
	return v.displayed
}

// recompute rebuilds the working set through the fixed pipeline:
// snapshot -> ownership filter -> search filter.
func (v *View) recompute() {
	working := v.snapshot
	if v.mineOnly {
		if v.identity.IsZero() {
			// No session identity owns anything.
			working = nil
		} else {
			working = FilterByOwner(working, v.identity.ID)
		}
	}
	v.displayed = FilterBySearch(working, v.query)
}

// FilterByOwner returns the subset of listings whose ownerId equals
// ownerID. The input slice is never modified.
func FilterByOwner(listings []model.Listing, ownerID string) []model.Listing {
	out := make([]model.Listing, 0, len(listings))
	for _, l := range listings {
		if l.OwnerID == ownerID {
			out = append(out, l)
		}
	}
	return out
}

// FilterBySearch returns the subset of listings whose address or
// description contains the query, case-insensitively. A blank query
// returns the input set unchanged (identity law). The input slice is
// never modified.
func FilterBySearch(listings []model.Listing, query string) []model.Listing {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return listings
	}
	out := make([]model.Listing, 0, len(listings))
	for _, l := range listings {
		if strings.Contains(strings.ToLower(l.Address), q) ||
			strings.Contains(strings.ToLower(l.Description), q) {
			out = append(out, l)
		}
	}
	return out
}
