package port

import "context"

type FoodCountCache interface {
	// GetFoodCount returns false when no count is cached
	GetFoodCount(ctx context.Context) (int64, bool, error)

	SetFoodCount(ctx context.Context, count int64) error

	// InvalidateFoodCount drops the cached count after catalog inserts
	InvalidateFoodCount(ctx context.Context) error
}
