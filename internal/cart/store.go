package cart

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Store keeps one cart per session key (the authenticated user id). Carts are
// private to their session; the store's lock only serializes access so that
// two requests from the same terminal cannot interleave a mutation.
type Store struct {
	mu      sync.Mutex
	carts   map[string]*Cart
	taxRate decimal.Decimal
}

// NewStore returns an empty cart store. taxRate is applied to every cart it
// creates.
func NewStore(taxRate decimal.Decimal) *Store {
	return &Store{
		carts:   make(map[string]*Cart),
		taxRate: taxRate,
	}
}

// Update runs fn against the session's cart under the store lock, creating an
// empty cart first if the session has none. The error from fn is returned
// unchanged.
func (s *Store) Update(sessionID string, fn func(c *Cart) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[sessionID]
	if !ok {
		c = New(s.taxRate)
		s.carts[sessionID] = c
	}
	return fn(c)
}

// Snapshot returns a copy of the session's cart. Mutating the copy does not
// affect the stored cart.
func (s *Store) Snapshot(sessionID string) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[sessionID]
	if !ok {
		return Cart{TaxRate: s.taxRate}
	}
	copied := Cart{TaxRate: c.TaxRate, Lines: make([]Line, len(c.Lines))}
	copy(copied.Lines, c.Lines)
	return copied
}

// Clear drops the session's cart entirely.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
}

// ClearIfUnchanged drops the session's cart only while its lines still match
// the snapshot. A line added or resized after the snapshot was taken stays in
// the cart.
func (s *Store) ClearIfUnchanged(sessionID string, snapshot Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[sessionID]
	if !ok {
		return
	}
	if len(c.Lines) != len(snapshot.Lines) {
		return
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID != snapshot.Lines[i].ProductID ||
			c.Lines[i].Quantity != snapshot.Lines[i].Quantity {
			return
		}
	}
	delete(s.carts, sessionID)
}
