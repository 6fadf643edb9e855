package models

import (
	"time"

	"github.com/blackwater-gg/craftworks/pkg/enums"
)

// Order is a crafting request tracked from creation to hand-off. Rows are
// hard-deleted on hand-off; the order_history ledger keeps the full story.
type Order struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Customer  string    `gorm:"column:customer;not null"`
	Item      string    `gorm:"column:item;not null"`
	Quantity  int       `gorm:"column:quantity;not null"`
	Progress  int       `gorm:"column:progress;not null;default:0"`
	Notes     string    `gorm:"column:notes"`
	Completed bool      `gorm:"column:completed;not null;default:false"`
	CreatedBy string    `gorm:"column:created_by"`
	MessageID *string   `gorm:"column:message_id"`
	ChannelID *string   `gorm:"column:channel_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the legacy table name.
func (Order) TableName() string { return "orders" }

// State derives the lifecycle state from the completed flag.
func (o Order) State() enums.OrderState {
	return enums.StateFor(o.Completed)
}

// HasSurfaceRef reports whether the order still points at a rendered
// chat message.
func (o Order) HasSurfaceRef() bool {
	return o.MessageID != nil && *o.MessageID != "" && o.ChannelID != nil && *o.ChannelID != ""
}
