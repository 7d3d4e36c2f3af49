package port

import (
	"context"

	"github.com/rl1809/pizzan/internal/core/domain"
)

type FoodRepository interface {
	// ListFoods returns one page of menu items, filtered and sorted per query
	ListFoods(ctx context.Context, query domain.FoodQuery) ([]domain.MenuItem, error)

	// EstimatedFoodCount returns a fast, possibly stale, count of all menu items
	EstimatedFoodCount(ctx context.Context) (int64, error)

	// GetFood returns domain.ErrNotFound when no item has the id
	GetFood(ctx context.Context, id string) (*domain.MenuItem, error)

	InsertFood(ctx context.Context, item domain.MenuItem) (domain.InsertResult, error)

	// UpdateFoodStock overwrites order_count and quantity only; a missing id matches nothing
	UpdateFoodStock(ctx context.Context, id string, update domain.StockUpdate) (domain.UpdateResult, error)

	// UpsertFood replaces every field of the item with the id, creating it if absent
	UpsertFood(ctx context.Context, id string, item domain.MenuItem) (domain.UpdateResult, error)
}

type CartRepository interface {
	InsertCartEntry(ctx context.Context, entry domain.CartEntry) (domain.InsertResult, error)

	// ListCartEntries filters exactly on owner email
	ListCartEntries(ctx context.Context, email string) ([]domain.CartEntry, error)

	// DeleteCartEntry reports zero deleted for a missing id
	DeleteCartEntry(ctx context.Context, id string) (domain.DeleteResult, error)
}

type UserRepository interface {
	InsertUser(ctx context.Context, user domain.User) (domain.InsertResult, error)

	ListUsers(ctx context.Context) ([]domain.User, error)

	// GetUserByAdminID returns domain.ErrNotFound when no user carries the admin id
	GetUserByAdminID(ctx context.Context, adminID string) (*domain.User, error)
}

// Store bundles the repositories backed by one connection.
type Store interface {
	FoodRepository
	CartRepository
	UserRepository

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
