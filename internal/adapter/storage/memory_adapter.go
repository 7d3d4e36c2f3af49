package storage

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/rl1809/pizzan/internal/core/domain"
)

// MemoryAdapter keeps every collection in process memory. Insertion order
// is the natural order of unsorted listings.
type MemoryAdapter struct {
	mu    sync.RWMutex
	foods []domain.MenuItem
	carts []domain.CartEntry
	users []domain.User
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{}
}

func (m *MemoryAdapter) Ping(ctx context.Context) error  { return nil }
func (m *MemoryAdapter) Close(ctx context.Context) error { return nil }

func (m *MemoryAdapter) ListFoods(ctx context.Context, query domain.FoodQuery) ([]domain.MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]domain.MenuItem, 0, len(m.foods))
	for _, item := range m.foods {
		if query.Email != "" && item.Email != query.Email {
			continue
		}
		items = append(items, item)
	}

	if query.SortField != "" {
		slices.SortStableFunc(items, func(a, b domain.MenuItem) int {
			c := compareFoodField(a, b, query.SortField)
			if query.SortDesc {
				return -c
			}
			return c
		})
	}

	skip := query.Skip()
	if skip >= len(items) {
		return []domain.MenuItem{}, nil
	}
	items = items[skip:]
	if query.Size > 0 && len(items) > query.Size {
		items = items[:query.Size]
	}
	return items, nil
}

func compareFoodField(a, b domain.MenuItem, field string) int {
	switch field {
	case "name":
		return cmp.Compare(a.Name, b.Name)
	case "price":
		return cmp.Compare(a.Price, b.Price)
	case "category":
		return cmp.Compare(a.Category, b.Category)
	case "origin":
		return cmp.Compare(a.Origin, b.Origin)
	case "maker":
		return cmp.Compare(a.Maker, b.Maker)
	case "order_count":
		return cmp.Compare(a.OrderCount, b.OrderCount)
	case "quantity":
		return cmp.Compare(a.Quantity, b.Quantity)
	}
	return 0
}

func (m *MemoryAdapter) EstimatedFoodCount(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.foods)), nil
}

func (m *MemoryAdapter) GetFood(ctx context.Context, id string) (*domain.MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.foodIndex(id)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	item := m.foods[i]
	return &item, nil
}

func (m *MemoryAdapter) InsertFood(ctx context.Context, item domain.MenuItem) (domain.InsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item.ID = uuid.NewString()
	m.foods = append(m.foods, item)
	return domain.InsertResult{Acknowledged: true, InsertedID: item.ID}, nil
}

func (m *MemoryAdapter) UpdateFoodStock(ctx context.Context, id string, update domain.StockUpdate) (domain.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.foodIndex(id)
	if i < 0 {
		return domain.UpdateResult{Acknowledged: true}, nil
	}

	result := domain.UpdateResult{Acknowledged: true, MatchedCount: 1}
	item := &m.foods[i]
	if item.OrderCount != update.OrderCount || item.Quantity != update.Quantity {
		item.OrderCount = update.OrderCount
		item.Quantity = update.Quantity
		result.ModifiedCount = 1
	}
	return result, nil
}

func (m *MemoryAdapter) UpsertFood(ctx context.Context, id string, item domain.MenuItem) (domain.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item.ID = id
	i := m.foodIndex(id)
	if i < 0 {
		m.foods = append(m.foods, item)
		return domain.UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: id}, nil
	}

	result := domain.UpdateResult{Acknowledged: true, MatchedCount: 1}
	if m.foods[i] != item {
		m.foods[i] = item
		result.ModifiedCount = 1
	}
	return result, nil
}

func (m *MemoryAdapter) foodIndex(id string) int {
	return slices.IndexFunc(m.foods, func(item domain.MenuItem) bool { return item.ID == id })
}

func (m *MemoryAdapter) InsertCartEntry(ctx context.Context, entry domain.CartEntry) (domain.InsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry.ID = uuid.NewString()
	m.carts = append(m.carts, entry)
	return domain.InsertResult{Acknowledged: true, InsertedID: entry.ID}, nil
}

func (m *MemoryAdapter) ListCartEntries(ctx context.Context, email string) ([]domain.CartEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := []domain.CartEntry{}
	for _, entry := range m.carts {
		if entry.Email == email {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (m *MemoryAdapter) DeleteCartEntry(ctx context.Context, id string) (domain.DeleteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	before := len(m.carts)
	m.carts = slices.DeleteFunc(m.carts, func(entry domain.CartEntry) bool { return entry.ID == id })
	return domain.DeleteResult{Acknowledged: true, DeletedCount: int64(before - len(m.carts))}, nil
}

func (m *MemoryAdapter) InsertUser(ctx context.Context, user domain.User) (domain.InsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user.ID = uuid.NewString()
	m.users = append(m.users, user)
	return domain.InsertResult{Acknowledged: true, InsertedID: user.ID}, nil
}

func (m *MemoryAdapter) ListUsers(ctx context.Context) ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.users), nil
}

func (m *MemoryAdapter) GetUserByAdminID(ctx context.Context, adminID string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.AdminID == adminID {
			return &user, nil
		}
	}
	return nil, domain.ErrNotFound
}
