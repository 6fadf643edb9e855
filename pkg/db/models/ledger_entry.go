package models

import (
	"time"

	"github.com/blackwater-gg/craftworks/pkg/enums"
)

// LedgerEntry records one immutable state-changing action on an order.
// Entries are never updated or deleted; order_id is a weak reference that
// may no longer resolve to a live order row.
type LedgerEntry struct {
	ID        int64              `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID   int64              `gorm:"column:order_id;not null;index"`
	Action    enums.LedgerAction `gorm:"column:action;type:text;not null"`
	ActorID   string             `gorm:"column:actor_id"`
	ActorName string             `gorm:"column:actor_name"`
	Detail    string             `gorm:"column:detail"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
}

// TableName keeps the legacy table name.
func (LedgerEntry) TableName() string { return "order_history" }
