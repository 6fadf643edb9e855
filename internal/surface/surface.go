package surface

import (
	"context"

	"github.com/blackwater-gg/craftworks/pkg/db/models"
)

// Ref points at the rendered external representation of an order.
type Ref struct {
	MessageID string
	ChannelID string
}

// RefFromOrder extracts the stored surface pointer, if any.
func RefFromOrder(order *models.Order) (Ref, bool) {
	if order == nil || !order.HasSurfaceRef() {
		return Ref{}, false
	}
	return Ref{MessageID: *order.MessageID, ChannelID: *order.ChannelID}, true
}

// Surface renders and removes the live representation of orders on an
// external channel. Implementations must treat Remove of an already-gone
// representation as success.
type Surface interface {
	Render(ctx context.Context, order *models.Order, channelID string) (Ref, error)
	Remove(ctx context.Context, ref Ref) error
}
