package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/pizzan/internal/core/domain"
	"github.com/rl1809/pizzan/internal/port"
)

// runStoreContract exercises the behaviour every port.Store must share.
// Each run scopes its data to a fresh owner email so it can share a
// database with other runs.
func runStoreContract(t *testing.T, store port.Store, newID func() string) {
	ctx := context.Background()
	owner := "contract-" + uuid.NewString() + "@x.com"

	seed := []domain.MenuItem{
		{Name: "Margherita", Price: 9, Category: "pizza", Email: owner, Quantity: 10},
		{Name: "Calzone", Price: 12, Category: "pizza", Email: owner, Quantity: 4},
		{Name: "Tiramisu", Price: 6, Category: "dessert", Email: owner, Quantity: 7},
		{Name: "Lemonade", Price: 3, Category: "drink", Email: owner, Quantity: 20},
		{Name: "Other", Price: 1, Category: "drink", Email: "someone-else@x.com"},
	}
	ids := make([]string, len(seed))
	for i, item := range seed {
		res, err := store.InsertFood(ctx, item)
		if err != nil {
			t.Fatalf("InsertFood failed: %v", err)
		}
		if !res.Acknowledged || res.InsertedID == "" {
			t.Fatalf("unexpected insert result: %+v", res)
		}
		ids[i] = res.InsertedID
	}

	t.Run("FilterByOwner", func(t *testing.T) {
		items, err := store.ListFoods(ctx, domain.FoodQuery{Email: owner})
		if err != nil {
			t.Fatalf("ListFoods failed: %v", err)
		}
		if len(items) != 4 {
			t.Fatalf("expected 4 items, got %d", len(items))
		}
		for _, item := range items {
			if item.Email != owner {
				t.Errorf("item %s belongs to %s", item.ID, item.Email)
			}
		}
	})

	t.Run("SortAndPaginate", func(t *testing.T) {
		query := domain.FoodQuery{Email: owner, SortField: "price", Size: 3}
		first, err := store.ListFoods(ctx, query)
		if err != nil {
			t.Fatalf("ListFoods failed: %v", err)
		}
		if len(first) != 3 {
			t.Fatalf("expected 3 items, got %d", len(first))
		}
		if first[0].Name != "Lemonade" || first[2].Name != "Margherita" {
			t.Errorf("unexpected ascending order: %s, %s, %s", first[0].Name, first[1].Name, first[2].Name)
		}

		query.Page = 1
		second, err := store.ListFoods(ctx, query)
		if err != nil {
			t.Fatalf("ListFoods failed: %v", err)
		}
		if len(second) != 1 || second[0].Name != "Calzone" {
			t.Errorf("expected [Calzone] on page 1, got %+v", second)
		}

		desc, _ := store.ListFoods(ctx, domain.FoodQuery{Email: owner, SortField: "price", SortDesc: true, Size: 1})
		if len(desc) != 1 || desc[0].Name != "Calzone" {
			t.Errorf("expected Calzone first when descending, got %+v", desc)
		}
	})

	t.Run("PageBeyondEnd", func(t *testing.T) {
		items, err := store.ListFoods(ctx, domain.FoodQuery{Email: owner, Page: 10, Size: 3})
		if err != nil {
			t.Fatalf("ListFoods failed: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("expected no items, got %d", len(items))
		}
	})

	t.Run("EstimatedCount", func(t *testing.T) {
		count, err := store.EstimatedFoodCount(ctx)
		if err != nil {
			t.Fatalf("EstimatedFoodCount failed: %v", err)
		}
		if count < 0 {
			t.Errorf("expected non-negative count, got %d", count)
		}
	})

	t.Run("GetFood", func(t *testing.T) {
		item, err := store.GetFood(ctx, ids[0])
		if err != nil {
			t.Fatalf("GetFood failed: %v", err)
		}
		if item.Name != "Margherita" || item.ID != ids[0] {
			t.Errorf("unexpected item: %+v", item)
		}

		_, err = store.GetFood(ctx, newID())
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})

	t.Run("UpdateFoodStock", func(t *testing.T) {
		res, err := store.UpdateFoodStock(ctx, ids[1], domain.StockUpdate{OrderCount: 5, Quantity: 3})
		if err != nil {
			t.Fatalf("UpdateFoodStock failed: %v", err)
		}
		if res.MatchedCount != 1 || res.ModifiedCount != 1 {
			t.Errorf("expected 1 matched/1 modified, got %+v", res)
		}

		item, _ := store.GetFood(ctx, ids[1])
		if item.OrderCount != 5 || item.Quantity != 3 {
			t.Errorf("expected order_count 5 quantity 3, got %d %d", item.OrderCount, item.Quantity)
		}
		if item.Name != "Calzone" || item.Price != 12 {
			t.Errorf("other fields changed: %+v", item)
		}

		res, err = store.UpdateFoodStock(ctx, newID(), domain.StockUpdate{OrderCount: 1})
		if err != nil {
			t.Fatalf("UpdateFoodStock on missing id failed: %v", err)
		}
		if res.MatchedCount != 0 || res.ModifiedCount != 0 {
			t.Errorf("expected zero matched on missing id, got %+v", res)
		}
	})

	t.Run("UpsertFood", func(t *testing.T) {
		id := newID()
		item := domain.MenuItem{Name: "Diavola", Price: 11, Email: owner}

		res, err := store.UpsertFood(ctx, id, item)
		if err != nil {
			t.Fatalf("UpsertFood failed: %v", err)
		}
		if !res.Created() || res.UpsertedID != id {
			t.Errorf("expected creation with id %s, got %+v", id, res)
		}

		item.Name = "Diavola Piccante"
		item.Price = 13
		res, err = store.UpsertFood(ctx, id, item)
		if err != nil {
			t.Fatalf("UpsertFood replace failed: %v", err)
		}
		if res.Created() || res.MatchedCount != 1 {
			t.Errorf("expected replacement, got %+v", res)
		}

		got, _ := store.GetFood(ctx, id)
		if got.Name != "Diavola Piccante" || got.Price != 13 {
			t.Errorf("expected replaced item, got %+v", got)
		}
	})

	t.Run("Carts", func(t *testing.T) {
		added := time.Now().UTC().Truncate(time.Millisecond)
		res, err := store.InsertCartEntry(ctx, domain.CartEntry{Email: owner, FoodID: ids[0], Name: "Margherita", Quantity: 2, AddedAt: added})
		if err != nil {
			t.Fatalf("InsertCartEntry failed: %v", err)
		}
		store.InsertCartEntry(ctx, domain.CartEntry{Email: "someone-else@x.com", Name: "Other", AddedAt: added})

		entries, err := store.ListCartEntries(ctx, owner)
		if err != nil {
			t.Fatalf("ListCartEntries failed: %v", err)
		}
		if len(entries) != 1 || entries[0].ID != res.InsertedID || entries[0].Quantity != 2 {
			t.Errorf("expected the single owner entry, got %+v", entries)
		}

		del, err := store.DeleteCartEntry(ctx, res.InsertedID)
		if err != nil {
			t.Fatalf("DeleteCartEntry failed: %v", err)
		}
		if del.DeletedCount != 1 {
			t.Errorf("expected 1 deleted, got %d", del.DeletedCount)
		}

		del, err = store.DeleteCartEntry(ctx, res.InsertedID)
		if err != nil {
			t.Fatalf("DeleteCartEntry on missing id failed: %v", err)
		}
		if del.DeletedCount != 0 {
			t.Errorf("expected 0 deleted, got %d", del.DeletedCount)
		}
	})

	t.Run("Users", func(t *testing.T) {
		adminID := "admin-" + uuid.NewString()
		created := time.Now().UTC().Truncate(time.Millisecond)
		if _, err := store.InsertUser(ctx, domain.User{Email: owner, AdminID: adminID, Name: "Ann", CreatedAt: created}); err != nil {
			t.Fatalf("InsertUser failed: %v", err)
		}
		if _, err := store.InsertUser(ctx, domain.User{Email: owner, Name: "Ann again", CreatedAt: created}); err != nil {
			t.Fatalf("duplicate InsertUser failed: %v", err)
		}

		user, err := store.GetUserByAdminID(ctx, adminID)
		if err != nil {
			t.Fatalf("GetUserByAdminID failed: %v", err)
		}
		if user.Name != "Ann" || user.AdminID != adminID {
			t.Errorf("unexpected user: %+v", user)
		}

		_, err = store.GetUserByAdminID(ctx, "admin-"+uuid.NewString())
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}

		users, err := store.ListUsers(ctx)
		if err != nil {
			t.Fatalf("ListUsers failed: %v", err)
		}
		matched := 0
		for _, u := range users {
			if u.Email == owner {
				matched++
			}
		}
		if matched != 2 {
			t.Errorf("expected 2 users for %s, got %d", owner, matched)
		}
	})
}
