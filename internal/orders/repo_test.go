package orders

import (
	"context"
	"testing"

	"github.com/blackwater-gg/craftworks/pkg/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  customer TEXT NOT NULL,
  item TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  progress INTEGER NOT NULL DEFAULT 0,
  notes TEXT,
  completed INTEGER NOT NULL DEFAULT 0,
  created_by TEXT,
  message_id TEXT,
  channel_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	history := `
CREATE TABLE IF NOT EXISTS order_history (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_id INTEGER NOT NULL,
  action TEXT NOT NULL,
  actor_id TEXT,
  actor_name TEXT,
  detail TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(history).Error)
	require.NoError(t, db.Exec(`DELETE FROM orders`).Error)
	require.NoError(t, db.Exec(`DELETE FROM order_history`).Error)
	return db
}

func newOrder(t *testing.T, db *gorm.DB, item string, quantity, progress int, completed bool) *models.Order {
	t.Helper()

	order := &models.Order{
		Customer:  "Hafenmeister Udo",
		Item:      item,
		Quantity:  quantity,
		Progress:  progress,
		Completed: completed,
		CreatedBy: "alice",
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestRepository_CreateAndFind(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := &models.Order{
		Customer: "Werft Nord",
		Item:     "Holzbretter",
		Quantity: 64,
	}
	require.NoError(t, repo.Create(ctx, order))
	require.NotZero(t, order.ID)

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Holzbretter", found.Item)
	assert.Equal(t, 64, found.Quantity)
	assert.Equal(t, 0, found.Progress)
	assert.False(t, found.Completed)
}

func TestRepository_FindByIDNotFound(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByID(context.Background(), 424242)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_ListActiveAndCount(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	first := newOrder(t, db, "Eisenbarren", 10, 3, false)
	newOrder(t, db, "Goldbarren", 5, 5, true)
	second := newOrder(t, db, "Seil", 8, 0, false)

	active, err := repo.ListActive(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, first.ID, active[0].ID)
	assert.Equal(t, second.ID, active[1].ID)

	count, err := repo.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	page, err := repo.ListActive(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, second.ID, page[0].ID)
}

func TestRepository_ListWithSurfaceRef(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	plain := newOrder(t, db, "Eisenbarren", 10, 0, false)
	rendered := newOrder(t, db, "Seil", 4, 1, false)
	msg, ch := "m-100", "c-200"
	require.NoError(t, repo.Update(ctx, rendered.ID, map[string]any{
		"message_id": msg,
		"channel_id": ch,
	}))

	withRef, err := repo.ListWithSurfaceRef(ctx)
	require.NoError(t, err)
	require.Len(t, withRef, 1)
	assert.Equal(t, rendered.ID, withRef[0].ID)
	require.NotNil(t, withRef[0].MessageID)
	assert.Equal(t, msg, *withRef[0].MessageID)

	_, err = repo.FindByID(ctx, plain.ID)
	require.NoError(t, err)
}

func TestRepository_UpdateAndDelete(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := newOrder(t, db, "Eisenbarren", 10, 0, false)

	require.NoError(t, repo.Update(ctx, order.ID, map[string]any{
		"progress":  10,
		"completed": true,
	}))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, found.Progress)
	assert.True(t, found.Completed)

	require.NoError(t, repo.Delete(ctx, order.ID))
	_, err = repo.FindByID(ctx, order.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
