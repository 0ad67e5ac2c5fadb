// internal/domain/cart/service.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/infrastructure/storage"
)

// StorageKey is where the cart snapshot lives in the owner's storage
const StorageKey = "cart-storage"

const snapshotVersion = 0

// PersistError reports that a mutation was applied in memory but could not be
// written to storage
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("cart changed but could not be saved: %v", e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// Store is the client-side cart for one owner. Every mutation recomputes the
// totals from the lines and writes the snapshot.
type Store struct {
	mu      sync.RWMutex
	storage storage.Store
	log     logrus.FieldLogger

	lines  []Line
	totals Totals
	open   bool
}

// NewStore creates an empty cart backed by st
func NewStore(st storage.Store, log logrus.FieldLogger) *Store {
	return &Store{
		storage: st,
		log:     log,
		lines:   []Line{},
	}
}

// AddItem adds quantity of p. A non-positive quantity counts as 1. An existing
// line is incremented; otherwise a line is appended with the current price.
func (s *Store) AddItem(ctx context.Context, p product.Product, quantity int) error {
	if quantity <= 0 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i := range s.lines {
		if s.lines[i].ProductID == p.ID {
			s.lines[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		s.lines = append(s.lines, Line{
			ProductID: p.ID,
			Product:   p,
			Quantity:  quantity,
			UnitPrice: p.Price,
		})
	}

	return s.commit(ctx)
}

// RemoveItem deletes the line for productID if present
func (s *Store) RemoveItem(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(productID)
	return s.commit(ctx)
}

// UpdateQuantity sets the quantity of an existing line. A non-positive
// quantity removes the line; an unknown product is ignored.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(productID)
		return s.commit(ctx)
	}

	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Quantity = quantity
			break
		}
	}
	return s.commit(ctx)
}

// Clear empties the cart
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = []Line{}
	return s.commit(ctx)
}

// Open shows the cart drawer. The flag is never persisted.
func (s *Store) Open() {
	s.mu.Lock()
	s.open = true
	s.mu.Unlock()
}

// Close hides the cart drawer
func (s *Store) Close() {
	s.mu.Lock()
	s.open = false
	s.mu.Unlock()
}

// IsOpen reports the drawer flag
func (s *Store) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.open
}

// Items returns a copy of the lines in insertion order
func (s *Store) Items() []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Totals returns the derived totals
func (s *Store) Totals() Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totals
}

// Line returns the line for productID
func (s *Store) Line(productID string) (Line, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return Line{}, false
}

// IsEmpty reports whether the cart has no lines
func (s *Store) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines) == 0
}

// Snapshot returns lines and totals together
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Rehydrate replaces the in-memory cart with the stored snapshot. Stored totals
// are ignored and recomputed. Unusable lines are dropped, and an unreadable
// snapshot leaves the cart empty.
func (s *Store) Rehydrate(ctx context.Context) error {
	raw, err := s.storage.Get(ctx, StorageKey)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = []Line{}
	s.totals = Totals{}

	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}

	var stored persisted
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		s.log.WithError(err).Warn("Discarding unreadable cart snapshot")
		return nil
	}

	seen := make(map[string]int, len(stored.State.Items))
	for _, l := range stored.State.Items {
		if l.ProductID == "" || l.Quantity < 1 {
			s.log.WithField("product_id", l.ProductID).Warn("Dropping invalid cart line")
			continue
		}
		// One line per product. Duplicates fold into the first, keeping its price.
		if i, ok := seen[l.ProductID]; ok {
			s.log.WithField("product_id", l.ProductID).Warn("Merging duplicate cart line")
			s.lines[i].Quantity += l.Quantity
			continue
		}
		seen[l.ProductID] = len(s.lines)
		s.lines = append(s.lines, l)
	}
	s.totals = calculateTotals(s.lines)
	return nil
}

func (s *Store) removeLocked(productID string) {
	kept := s.lines[:0:0]
	for _, l := range s.lines {
		if l.ProductID != productID {
			kept = append(kept, l)
		}
	}
	s.lines = kept
}

func (s *Store) snapshotLocked() Snapshot {
	items := make([]Line, len(s.lines))
	copy(items, s.lines)
	return Snapshot{
		Items:       items,
		TotalItems:  s.totals.TotalItems,
		TotalAmount: s.totals.TotalAmount,
	}
}

// commit recomputes totals and writes the snapshot. The in-memory state is
// kept even when the write fails.
func (s *Store) commit(ctx context.Context) error {
	s.totals = calculateTotals(s.lines)

	data, err := json.Marshal(persisted{State: s.snapshotLocked(), Version: snapshotVersion})
	if err != nil {
		return &PersistError{Err: err}
	}
	if err := s.storage.Set(ctx, StorageKey, string(data)); err != nil {
		return &PersistError{Err: err}
	}
	return nil
}

// PriceDrift compares captured lines with live catalog entries. A nil entry in
// live means the product no longer exists. The cart is not modified.
func PriceDrift(lines []Line, live map[string]*product.Product) []Issue {
	var issues []Issue
	for _, l := range lines {
		p, ok := live[l.ProductID]
		switch {
		case !ok:
			continue
		case p == nil:
			issues = append(issues, Issue{
				ProductID:     l.ProductID,
				Kind:          IssueMissing,
				CapturedPrice: l.UnitPrice,
				Message:       fmt.Sprintf("%s is no longer available", l.Product.Name),
			})
		case !p.IsPurchasable():
			issues = append(issues, Issue{
				ProductID:     l.ProductID,
				Kind:          IssueUnavailable,
				CapturedPrice: l.UnitPrice,
				LivePrice:     p.Price,
				Message:       fmt.Sprintf("%s is currently not for sale", p.Name),
			})
		case p.Price != l.UnitPrice:
			issues = append(issues, Issue{
				ProductID:     l.ProductID,
				Kind:          IssuePriceChanged,
				CapturedPrice: l.UnitPrice,
				LivePrice:     p.Price,
				Message:       fmt.Sprintf("The price of %s has changed", p.Name),
			})
		}
	}
	return issues
}
