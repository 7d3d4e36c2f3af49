package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rl1809/pizzan/internal/core/domain"
	"github.com/rl1809/pizzan/internal/port"
)

type CartService struct {
	carts port.CartRepository
}

func NewCartService(carts port.CartRepository) *CartService {
	return &CartService{carts: carts}
}

func (s *CartService) Add(ctx context.Context, entry domain.CartEntry) (domain.InsertResult, error) {
	if entry.Email == "" {
		return domain.InsertResult{}, fmt.Errorf("%w: email", ErrMissingField)
	}
	entry.ID = ""
	if entry.AddedAt.IsZero() {
		entry.AddedAt = time.Now().UTC()
	}

	result, err := s.carts.InsertCartEntry(ctx, entry)
	if err != nil {
		return domain.InsertResult{}, fmt.Errorf("insert cart entry: %w", err)
	}
	return result, nil
}

// ListForOwner returns the cart of requested, which must be the caller's
// own identity. An empty requested owner means the caller's cart.
func (s *CartService) ListForOwner(ctx context.Context, identity, requested string) ([]domain.CartEntry, error) {
	if requested == "" {
		requested = identity
	}
	if err := AuthorizeOwner(identity, requested); err != nil {
		return nil, err
	}

	entries, err := s.carts.ListCartEntries(ctx, requested)
	if err != nil {
		return nil, fmt.Errorf("list cart entries: %w", err)
	}
	if entries == nil {
		entries = []domain.CartEntry{}
	}
	return entries, nil
}

func (s *CartService) Remove(ctx context.Context, id string) (domain.DeleteResult, error) {
	if id == "" {
		return domain.DeleteResult{}, domain.ErrInvalidID
	}
	result, err := s.carts.DeleteCartEntry(ctx, id)
	if err != nil {
		return domain.DeleteResult{}, fmt.Errorf("delete cart entry %s: %w", id, err)
	}
	return result, nil
}

// AuthorizeOwner rejects a request for data scoped to someone other than
// the authenticated identity.
func AuthorizeOwner(identity, requestedOwner string) error {
	if identity == "" || identity != requestedOwner {
		return ErrForbidden
	}
	return nil
}
