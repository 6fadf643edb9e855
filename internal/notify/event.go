package notify

import (
	"time"

	"github.com/blackwater-gg/craftworks/pkg/enums"
)

// OrderEvent is the envelope mirrored into the notification channel after a
// lifecycle transition commits.
type OrderEvent struct {
	Action     enums.LedgerAction `json:"action"`
	OrderID    int64              `json:"order_id"`
	Customer   string             `json:"customer"`
	Item       string             `json:"item"`
	Quantity   int                `json:"quantity"`
	Progress   int                `json:"progress"`
	Completed  bool               `json:"completed"`
	ActorID    string             `json:"actor_id"`
	ActorName  string             `json:"actor_name"`
	Detail     string             `json:"detail"`
	OccurredAt time.Time          `json:"occurred_at"`
}
