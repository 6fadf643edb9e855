package ledger

import (
	"time"

	"github.com/blackwater-gg/craftworks/pkg/db/models"
	"github.com/blackwater-gg/craftworks/pkg/enums"
)

// Snapshot is the state of an order replayed purely from its ledger. It is
// the only view available once the order row has been deleted.
type Snapshot struct {
	OrderID   int64  `json:"order_id"`
	Item      string `json:"item"`
	Customer  string `json:"customer"`
	Quantity  int    `json:"quantity"`
	Progress  int    `json:"progress"`
	Completed bool   `json:"completed"`
	// Status distinguishes an order removed through the hand-off transition
	// from one whose row vanished some other way.
	Status      enums.ArchivedStatus `json:"status"`
	CreatedBy   string               `json:"created_by"`
	CreatedAt   time.Time            `json:"created_at"`
	LastEventAt time.Time            `json:"last_event_at"`
}

// Reconstruct replays the ordered entry sequence for one order. Malformed or
// missing details degrade individual fields, never the whole replay.
func Reconstruct(orderID int64, entries []models.LedgerEntry) Snapshot {
	snap := Snapshot{
		OrderID:  orderID,
		Item:     UnknownField,
		Customer: UnknownField,
		Status:   enums.ArchivedStatusDeleted,
	}

	sawCreated := false
	for _, entry := range entries {
		if entry.CreatedAt.After(snap.LastEventAt) {
			snap.LastEventAt = entry.CreatedAt
		}

		switch entry.Action {
		case enums.LedgerActionCreated:
			if sawCreated {
				continue
			}
			sawCreated = true
			snap.CreatedBy = entry.ActorName
			snap.CreatedAt = entry.CreatedAt
			if created, ok := ParseCreatedDetail(entry.Detail); ok {
				snap.Item = created.Item
				snap.Customer = created.Customer
				snap.Quantity = created.Quantity
			}
		case enums.LedgerActionProgress:
			if progress, ok := ParseProgressDetail(entry.Detail); ok {
				snap.Progress = progress.New
			}
		case enums.LedgerActionCompleted:
			snap.Completed = true
		case enums.LedgerActionHandedOff:
			snap.Status = enums.ArchivedStatusHandedOff
		}
	}

	return snap
}
