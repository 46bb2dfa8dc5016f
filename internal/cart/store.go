package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/fjod/go_restaurant/internal/domain"
	"github.com/fjod/go_restaurant/internal/storage"
	"github.com/fjod/go_restaurant/pkg/logger"
	"github.com/shopspring/decimal"
)

// Store is the shopping cart of one session. The in-memory lines are
// authoritative; every mutation is written through to storage on a best-effort
// basis, so a storage outage costs durability but never a mutation.
type Store struct {
	mu      sync.Mutex
	storage storage.Storage
	key     string
	lines   []domain.CartLine
	log     *slog.Logger
	// loadErr is the storage error that kept the snapshot from loading, if any.
	loadErr error
}

// NewStore loads the snapshot saved under key. A missing or unreadable
// snapshot yields an empty cart; a corrupt one is overwritten on the next write.
func NewStore(ctx context.Context, st storage.Storage, key string, log *slog.Logger) *Store {
	s := &Store{
		storage: st,
		key:     key,
		log:     logger.OrDefault(log).With("cart_key", key),
	}
	s.lines = s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) []domain.CartLine {
	raw, err := s.storage.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.loadErr = err
			s.log.WarnContext(ctx, "cart snapshot read failed, starting empty", "error", err)
		}
		return nil
	}

	lines, err := Decode(raw)
	if err != nil {
		s.log.WarnContext(ctx, "discarding unreadable cart snapshot", "error", err)
		return nil
	}
	return lines
}

// AddItem puts one more unit of item in the cart, appending a new line on first add.
func (s *Store) AddItem(ctx context.Context, item domain.MenuItem) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.find(item.ID); ok {
		s.lines[i].Quantity++
	} else {
		s.lines = append(s.lines, domain.CartLine{Item: item, Quantity: 1})
	}
	return s.commit(ctx)
}

// RemoveItem drops the line for itemID; unknown ids are ignored.
func (s *Store) RemoveItem(ctx context.Context, itemID string) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.remove(itemID)
	return s.commit(ctx)
}

// SetQuantity updates an existing line. quantity <= 0 removes the line and
// an id not already in the cart is left alone.
func (s *Store) SetQuantity(ctx context.Context, itemID string, quantity int) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.remove(itemID)
		return s.commit(ctx)
	}
	i, ok := s.find(itemID)
	if !ok {
		return s.snapshot()
	}
	s.lines[i].Quantity = quantity
	return s.commit(ctx)
}

func (s *Store) Clear(ctx context.Context) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	return s.commit(ctx)
}

func (s *Store) Cart() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) Total() decimal.Decimal {
	return s.Cart().Total()
}

func (s *Store) Count() int {
	return s.Cart().Count()
}

func (s *Store) find(itemID string) (int, bool) {
	for i := range s.lines {
		if s.lines[i].Item.ID == itemID {
			return i, true
		}
	}
	return -1, false
}

func (s *Store) remove(itemID string) {
	if i, ok := s.find(itemID); ok {
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
	}
}

// commit persists the current lines and returns a copy. Callers hold mu.
func (s *Store) commit(ctx context.Context) domain.Cart {
	s.persist(ctx)
	return s.snapshot()
}

func (s *Store) persist(ctx context.Context) {
	raw, err := Encode(s.lines)
	if err != nil {
		s.log.ErrorContext(ctx, "cart snapshot encode failed", "error", err)
		return
	}
	if err := s.storage.Set(ctx, s.key, raw); err != nil {
		s.log.WarnContext(ctx, "cart snapshot write failed", "error", err)
	}
}

func (s *Store) snapshot() domain.Cart {
	lines := make([]domain.CartLine, len(s.lines))
	copy(lines, s.lines)
	return domain.Cart{Lines: lines}
}
