package stats

import (
	"context"
	"testing"
	"time"

	"github.com/blackwater-gg/craftworks/internal/ledger"
	"github.com/blackwater-gg/craftworks/pkg/db/models"
	"github.com/blackwater-gg/craftworks/pkg/enums"
	pkgerrors "github.com/blackwater-gg/craftworks/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStatsTestDB(t *testing.T) *gorm.DB {
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

func seedOrder(t *testing.T, db *gorm.DB, item string, completed bool) {
	t.Helper()
	require.NoError(t, db.Create(&models.Order{
		Customer:  "Udo",
		Item:      item,
		Quantity:  10,
		Completed: completed,
	}).Error)
}

func seedEntry(t *testing.T, db *gorm.DB, orderID int64, action enums.LedgerAction, actorID, actorName, detail string, at time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&models.LedgerEntry{
		OrderID:   orderID,
		Action:    action,
		ActorID:   actorID,
		ActorName: actorName,
		Detail:    detail,
		CreatedAt: at,
	}).Error)
}

func TestService_Overview(t *testing.T) {
	db := setupStatsTestDB(t)
	svc, err := NewService(NewRepository(db), ledger.NewRepository(db))
	require.NoError(t, err)
	ctx := context.Background()

	seedOrder(t, db, "Eisenbarren", false)
	seedOrder(t, db, "Eisenbarren", false)
	seedOrder(t, db, "Seil", true)

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	seedEntry(t, db, 1, enums.LedgerActionCreated, "u-1", "alice", ledger.EncodeCreatedDetail(10, "Eisenbarren", "Udo"), base)
	seedEntry(t, db, 2, enums.LedgerActionCreated, "u-1", "alice", ledger.EncodeCreatedDetail(10, "Eisenbarren", "Udo"), base.Add(time.Minute))
	seedEntry(t, db, 3, enums.LedgerActionCreated, "u-2", "bob", ledger.EncodeCreatedDetail(10, "Seil", "Udo"), base.Add(2*time.Minute))
	// Entry for a long-gone order: still counted, that is the point of the ledger.
	seedEntry(t, db, 99, enums.LedgerActionHandedOff, "u-2", "bob", ledger.DetailHandedOff, base.Add(3*time.Minute))

	overview, err := svc.Overview(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), overview.ActiveOrders)
	assert.Equal(t, int64(1), overview.CompletedOrders)
	assert.Equal(t, int64(3), overview.TotalCreated)
	assert.Equal(t, int64(1), overview.TotalHandedOff)

	require.NotEmpty(t, overview.TopItems)
	assert.Equal(t, ItemCount{Item: "Eisenbarren", Count: 2}, overview.TopItems[0])

	require.Len(t, overview.TopUsers, 2)
	assert.Equal(t, ActorActionCount{ActorID: "u-1", ActorName: "alice", Count: 2}, overview.TopUsers[0])
	assert.Equal(t, ActorActionCount{ActorID: "u-2", ActorName: "bob", Count: 2}, overview.TopUsers[1])

	require.Len(t, overview.RecentActivity, 4)
	assert.Equal(t, int64(99), overview.RecentActivity[0].OrderID)
	assert.Equal(t, enums.LedgerActionHandedOff, overview.RecentActivity[0].Action)
}

func TestService_UserStats(t *testing.T) {
	db := setupStatsTestDB(t)
	svc, err := NewService(NewRepository(db), ledger.NewRepository(db))
	require.NoError(t, err)
	ctx := context.Background()

	base := time.Now().UTC()
	seedEntry(t, db, 1, enums.LedgerActionCreated, "u-1", "alice", ledger.EncodeCreatedDetail(10, "Seil", "Udo"), base)
	seedEntry(t, db, 1, enums.LedgerActionProgress, "u-1", "alice", ledger.EncodeProgressDetail(0, 4, false), base.Add(time.Minute))
	seedEntry(t, db, 1, enums.LedgerActionProgress, "u-1", "alice", ledger.EncodeProgressDetail(4, 2, false), base.Add(2*time.Minute))
	seedEntry(t, db, 1, enums.LedgerActionCompleted, "u-1", "alice", ledger.DetailCompleted, base.Add(3*time.Minute))
	seedEntry(t, db, 2, enums.LedgerActionProgress, "u-2", "bob", ledger.EncodeProgressDetail(0, 1, false), base.Add(4*time.Minute))

	got, err := svc.UserStats(ctx, "u-1")
	require.NoError(t, err)

	assert.Equal(t, "alice", got.ActorName)
	assert.Equal(t, 1, got.OrdersCreated)
	assert.Equal(t, 1, got.OrdersCompleted)
	assert.Equal(t, 4, got.UnitsAdded)
	assert.Equal(t, 2, got.UnitsRemoved)
	assert.Equal(t, 4, got.ActionCount)
}

func TestService_UserStatsNotFound(t *testing.T) {
	db := setupStatsTestDB(t)
	svc, err := NewService(NewRepository(db), ledger.NewRepository(db))
	require.NoError(t, err)

	_, err = svc.UserStats(context.Background(), "u-ghost")
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}
