// Package session models the authenticated identity as an observable cell
// with an explicit subscribe/unsubscribe lifecycle. Dependents read the
// identity through their subscription rather than through a global
// variable, so an identity change (sign-in, sign-out, token refresh)
// reaches every dependent in one place.
package session

import "sync"

// Identity is the authenticated user's id/email pair. The zero value means
// "unauthenticated"; IsZero distinguishes it from a present identity.
type Identity struct {
	ID    string // opaque account identifier, matches Listing.OwnerID
	Email string
}

// IsZero reports whether no identity is present.
func (i Identity) IsZero() bool { return i.ID == "" && i.Email == "" }

// Cell holds the current identity and notifies subscribers on every
// change. A cell starts in an initializing state that ends with the first
// Publish, mirroring an auth service that fires its identity stream at
// least once on startup. Subscribers registered before the first event are
// notified when it arrives; subscribers registered after it immediately
// receive the current identity.
type Cell struct {
	mu           sync.Mutex
	current      Identity
	initializing bool
	nextID       int
	subs         map[int]func(Identity)
}

// NewCell returns a cell in the initializing state with no identity.
func NewCell() *Cell {
	return &Cell{initializing: true, subs: make(map[int]func(Identity))}
}

// Publish replaces the current identity and notifies every subscriber.
// Publishing the zero Identity represents sign-out. The first Publish ends
// the initializing state.
func (c *Cell) Publish(id Identity) {
	c.mu.Lock()
	c.current = id
	c.initializing = false
	subs := make([]func(Identity), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	// Callbacks run outside the lock so a subscriber may read the cell.
	for _, fn := range subs {
		fn(id)
	}
}

// Subscribe registers fn for identity changes and returns an unsubscribe
// function. If the cell has already seen its first event, fn is invoked
// immediately with the current identity.
func (c *Cell) Subscribe(fn func(Identity)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	ready := !c.initializing
	current := c.current
	c.mu.Unlock()

	if ready {
		fn(current)
	}
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Current returns the latest published identity.
func (c *Cell) Current() Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Initializing reports whether the cell has not yet seen its first event.
func (c *Cell) Initializing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initializing
}
