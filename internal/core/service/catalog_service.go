package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/rl1809/pizzan/internal/core/domain"
	"github.com/rl1809/pizzan/internal/port"
)

// SortableFoodFields are the menu item fields accepted as a sort key.
var SortableFoodFields = map[string]bool{
	"name":        true,
	"price":       true,
	"category":    true,
	"origin":      true,
	"maker":       true,
	"order_count": true,
	"quantity":    true,
}

type CatalogService struct {
	foods  port.FoodRepository
	cache  port.FoodCountCache
	logger *slog.Logger
}

// NewCatalogService wires the catalog to its store. cache may be nil.
func NewCatalogService(foods port.FoodRepository, cache port.FoodCountCache, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CatalogService{foods: foods, cache: cache, logger: logger}
}

func (s *CatalogService) List(ctx context.Context, query domain.FoodQuery) ([]domain.MenuItem, error) {
	if query.Page < 0 || query.Size < 0 {
		return nil, ErrInvalidPagination
	}
	if query.SortField != "" && !SortableFoodFields[query.SortField] {
		return nil, fmt.Errorf("%w: field %q", ErrInvalidSort, query.SortField)
	}
	// page*size past MaxInt is past the end of any collection
	if query.Size > 0 && query.Page > math.MaxInt/query.Size {
		return []domain.MenuItem{}, nil
	}

	items, err := s.foods.ListFoods(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	if items == nil {
		items = []domain.MenuItem{}
	}
	return items, nil
}

// ParseSortOrder maps asc/desc (or 1/-1) to a descending flag. Empty means ascending.
func ParseSortOrder(order string) (bool, error) {
	switch strings.ToLower(order) {
	case "", "asc", "1":
		return false, nil
	case "desc", "-1":
		return true, nil
	}
	return false, fmt.Errorf("%w: order %q", ErrInvalidSort, order)
}

// Count returns the approximate number of menu items, preferring the cached hint.
func (s *CatalogService) Count(ctx context.Context) (int64, error) {
	if s.cache != nil {
		count, ok, err := s.cache.GetFoodCount(ctx)
		if err != nil {
			s.logger.Warn("food count cache read failed", "error", err)
		} else if ok {
			return count, nil
		}
	}

	count, err := s.foods.EstimatedFoodCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("count foods: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetFoodCount(ctx, count); err != nil {
			s.logger.Warn("food count cache write failed", "error", err)
		}
	}
	return count, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*domain.MenuItem, error) {
	if id == "" {
		return nil, domain.ErrInvalidID
	}
	return s.foods.GetFood(ctx, id)
}

func (s *CatalogService) Insert(ctx context.Context, item domain.MenuItem) (domain.InsertResult, error) {
	item.ID = ""
	result, err := s.foods.InsertFood(ctx, item)
	if err != nil {
		return domain.InsertResult{}, fmt.Errorf("insert food: %w", err)
	}
	s.invalidateCount(ctx)
	return result, nil
}

// UpdateStock overwrites order_count and quantity. Both must be present.
func (s *CatalogService) UpdateStock(ctx context.Context, id string, orderCount, quantity *int) (domain.UpdateResult, error) {
	if id == "" {
		return domain.UpdateResult{}, domain.ErrInvalidID
	}
	if orderCount == nil {
		return domain.UpdateResult{}, fmt.Errorf("%w: order_count", ErrMissingField)
	}
	if quantity == nil {
		return domain.UpdateResult{}, fmt.Errorf("%w: quantity", ErrMissingField)
	}

	result, err := s.foods.UpdateFoodStock(ctx, id, domain.StockUpdate{
		OrderCount: *orderCount,
		Quantity:   *quantity,
	})
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("update food %s: %w", id, err)
	}
	return result, nil
}

func (s *CatalogService) Upsert(ctx context.Context, id string, item domain.MenuItem) (domain.UpdateResult, error) {
	if id == "" {
		return domain.UpdateResult{}, domain.ErrInvalidID
	}
	item.ID = id

	result, err := s.foods.UpsertFood(ctx, id, item)
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("upsert food %s: %w", id, err)
	}
	if result.Created() {
		s.invalidateCount(ctx)
	}
	return result, nil
}

func (s *CatalogService) invalidateCount(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFoodCount(ctx); err != nil {
		s.logger.Warn("food count cache invalidation failed", "error", err)
	}
}
