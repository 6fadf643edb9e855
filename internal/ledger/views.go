package ledger

import (
	"time"

	"github.com/blackwater-gg/craftworks/pkg/db/models"
	"github.com/blackwater-gg/craftworks/pkg/enums"
)

// EntryView is the wire representation of one ledger entry.
type EntryView struct {
	ID        int64              `json:"id"`
	OrderID   int64              `json:"order_id"`
	Action    enums.LedgerAction `json:"action"`
	ActorID   string             `json:"actor_id,omitempty"`
	ActorName string             `json:"actor_name"`
	Detail    string             `json:"detail"`
	CreatedAt time.Time          `json:"created_at"`
}

func NewEntryView(entry *models.LedgerEntry) EntryView {
	return EntryView{
		ID:        entry.ID,
		OrderID:   entry.OrderID,
		Action:    entry.Action,
		ActorID:   entry.ActorID,
		ActorName: entry.ActorName,
		Detail:    entry.Detail,
		CreatedAt: entry.CreatedAt,
	}
}

// HistoryView carries the chronological ledger of one order.
type HistoryView struct {
	OrderID int64       `json:"order_id"`
	Entries []EntryView `json:"entries"`
}

func NewHistoryView(orderID int64, entries []models.LedgerEntry) HistoryView {
	view := HistoryView{
		OrderID: orderID,
		Entries: make([]EntryView, 0, len(entries)),
	}
	for i := range entries {
		view.Entries = append(view.Entries, NewEntryView(&entries[i]))
	}
	return view
}
