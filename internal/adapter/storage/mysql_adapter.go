package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rl1809/pizzan/internal/core/domain"
)

var errUnsupportedSort = errors.New("unsupported sort field")

const foodColumns = `id, name, maker, description, origin, image, price, category, email, order_count, quantity`

// sortColumns guards ORDER BY against anything but known columns.
var sortColumns = map[string]string{
	"name":        "name",
	"price":       "price",
	"category":    "category",
	"origin":      "origin",
	"maker":       "maker",
	"order_count": "order_count",
	"quantity":    "quantity",
}

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

func (m *MySQLAdapter) Close(ctx context.Context) error {
	return m.db.Close()
}

func (m *MySQLAdapter) ListFoods(ctx context.Context, query domain.FoodQuery) ([]domain.MenuItem, error) {
	var (
		b    strings.Builder
		args []any
	)
	b.WriteString(`SELECT ` + foodColumns + ` FROM foods`)

	if query.Email != "" {
		b.WriteString(` WHERE email = ?`)
		args = append(args, query.Email)
	}

	if query.SortField != "" {
		column, ok := sortColumns[query.SortField]
		if !ok {
			return nil, fmt.Errorf("sort field %q: %w", query.SortField, errUnsupportedSort)
		}
		direction := "ASC"
		if query.SortDesc {
			direction = "DESC"
		}
		b.WriteString(` ORDER BY ` + column + ` ` + direction + `, seq`)
	} else {
		b.WriteString(` ORDER BY seq`)
	}

	if query.Size > 0 {
		b.WriteString(` LIMIT ? OFFSET ?`)
		args = append(args, query.Size, query.Skip())
	}

	rows, err := m.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query foods: %w", err)
	}
	defer rows.Close()

	items := []domain.MenuItem{}
	for rows.Next() {
		var item domain.MenuItem
		if err := rows.Scan(
			&item.ID, &item.Name, &item.Maker, &item.Description, &item.Origin, &item.Image,
			&item.Price, &item.Category, &item.Email, &item.OrderCount, &item.Quantity,
		); err != nil {
			return nil, fmt.Errorf("scan food: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// EstimatedFoodCount reads InnoDB's table statistics instead of scanning.
func (m *MySQLAdapter) EstimatedFoodCount(ctx context.Context) (int64, error) {
	var count sql.NullInt64
	err := m.db.QueryRowContext(ctx, `
		SELECT TABLE_ROWS FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = 'foods'`,
	).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("estimate foods: %w", err)
	}
	return count.Int64, nil
}

func (m *MySQLAdapter) GetFood(ctx context.Context, id string) (*domain.MenuItem, error) {
	var item domain.MenuItem
	err := m.db.QueryRowContext(ctx, `SELECT `+foodColumns+` FROM foods WHERE id = ?`, id).Scan(
		&item.ID, &item.Name, &item.Maker, &item.Description, &item.Origin, &item.Image,
		&item.Price, &item.Category, &item.Email, &item.OrderCount, &item.Quantity,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query food: %w", err)
	}
	return &item, nil
}

func (m *MySQLAdapter) InsertFood(ctx context.Context, item domain.MenuItem) (domain.InsertResult, error) {
	item.ID = uuid.NewString()
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO foods (`+foodColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Name, item.Maker, item.Description, item.Origin, item.Image,
		item.Price, item.Category, item.Email, item.OrderCount, item.Quantity,
	)
	if err != nil {
		return domain.InsertResult{}, fmt.Errorf("insert food: %w", err)
	}
	return domain.InsertResult{Acknowledged: true, InsertedID: item.ID}, nil
}

// UpdateFoodStock locks the row first so the matched count is exact even
// when the new values equal the old ones.
func (m *MySQLAdapter) UpdateFoodStock(ctx context.Context, id string, update domain.StockUpdate) (domain.UpdateResult, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM foods WHERE id = ? FOR UPDATE`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UpdateResult{Acknowledged: true}, nil
	}
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("lock food: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE foods SET order_count = ?, quantity = ?
		WHERE id = ?`,
		update.OrderCount, update.Quantity, id,
	)
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("update food: %w", err)
	}
	rows, _ := result.RowsAffected()

	if err := tx.Commit(); err != nil {
		return domain.UpdateResult{}, fmt.Errorf("commit: %w", err)
	}
	return domain.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: rows}, nil
}

// UpsertFood relies on MySQL's affected-row convention for
// ON DUPLICATE KEY UPDATE: 1 inserted, 2 changed, 0 unchanged.
func (m *MySQLAdapter) UpsertFood(ctx context.Context, id string, item domain.MenuItem) (domain.UpdateResult, error) {
	result, err := m.db.ExecContext(ctx, `
		INSERT INTO foods (`+foodColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			name = VALUES(name), maker = VALUES(maker), description = VALUES(description),
			origin = VALUES(origin), image = VALUES(image), price = VALUES(price),
			category = VALUES(category), email = VALUES(email),
			order_count = VALUES(order_count), quantity = VALUES(quantity)`,
		id, item.Name, item.Maker, item.Description, item.Origin, item.Image,
		item.Price, item.Category, item.Email, item.OrderCount, item.Quantity,
	)
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("upsert food: %w", err)
	}

	rows, _ := result.RowsAffected()
	switch rows {
	case 1:
		return domain.UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: id}, nil
	case 2:
		return domain.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
	default:
		return domain.UpdateResult{Acknowledged: true, MatchedCount: 1}, nil
	}
}

func (m *MySQLAdapter) InsertCartEntry(ctx context.Context, entry domain.CartEntry) (domain.InsertResult, error) {
	entry.ID = uuid.NewString()
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO carts (id, email, food_id, name, maker, image, category, price, quantity, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Email, entry.FoodID, entry.Name, entry.Maker, entry.Image,
		entry.Category, entry.Price, entry.Quantity, entry.AddedAt,
	)
	if err != nil {
		return domain.InsertResult{}, fmt.Errorf("insert cart entry: %w", err)
	}
	return domain.InsertResult{Acknowledged: true, InsertedID: entry.ID}, nil
}

func (m *MySQLAdapter) ListCartEntries(ctx context.Context, email string) ([]domain.CartEntry, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, email, food_id, name, maker, image, category, price, quantity, added_at
		FROM carts WHERE email = ? ORDER BY seq`, email,
	)
	if err != nil {
		return nil, fmt.Errorf("query cart entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.CartEntry{}
	for rows.Next() {
		var e domain.CartEntry
		if err := rows.Scan(
			&e.ID, &e.Email, &e.FoodID, &e.Name, &e.Maker, &e.Image,
			&e.Category, &e.Price, &e.Quantity, &e.AddedAt,
		); err != nil {
			return nil, fmt.Errorf("scan cart entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (m *MySQLAdapter) DeleteCartEntry(ctx context.Context, id string) (domain.DeleteResult, error) {
	result, err := m.db.ExecContext(ctx, `DELETE FROM carts WHERE id = ?`, id)
	if err != nil {
		return domain.DeleteResult{}, fmt.Errorf("delete cart entry: %w", err)
	}
	rows, _ := result.RowsAffected()
	return domain.DeleteResult{Acknowledged: true, DeletedCount: rows}, nil
}

func (m *MySQLAdapter) InsertUser(ctx context.Context, user domain.User) (domain.InsertResult, error) {
	user.ID = uuid.NewString()
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO users (id, email, admin_id, name, photo, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, nullString(user.AdminID), user.Name, user.Photo, user.CreatedAt,
	)
	if err != nil {
		return domain.InsertResult{}, fmt.Errorf("insert user: %w", err)
	}
	return domain.InsertResult{Acknowledged: true, InsertedID: user.ID}, nil
}

func (m *MySQLAdapter) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, email, admin_id, name, photo, created_at FROM users ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (m *MySQLAdapter) GetUserByAdminID(ctx context.Context, adminID string) (*domain.User, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT id, email, admin_id, name, photo, created_at
		FROM users WHERE admin_id = ? ORDER BY seq LIMIT 1`, adminID,
	)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return user, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		user    domain.User
		adminID sql.NullString
	)
	if err := row.Scan(&user.ID, &user.Email, &adminID, &user.Name, &user.Photo, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.AdminID = adminID.String
	return &user, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
