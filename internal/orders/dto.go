package orders

import (
	"time"

	"github.com/blackwater-gg/craftworks/pkg/db/models"
	"github.com/blackwater-gg/craftworks/pkg/enums"
)

// CreateInput captures the data required to open a new order.
type CreateInput struct {
	Customer  string
	Item      string
	Quantity  int
	Notes     string
	ActorID   string
	ActorName string
}

// AdjustProgressInput carries a signed progress change for one order.
type AdjustProgressInput struct {
	OrderID   int64
	Delta     int
	ActorID   string
	ActorName string
}

// CompleteInput marks an order complete.
type CompleteInput struct {
	OrderID   int64
	ActorID   string
	ActorName string
}

// RemoveInput hands an order off and deletes it.
type RemoveInput struct {
	OrderID   int64
	ActorID   string
	ActorName string
}

// SetSurfaceRefInput records the rendered external representation of an order.
type SetSurfaceRefInput struct {
	OrderID   int64
	MessageID string
	ChannelID string
}

// MutationResult reports the outcome of a state transition. Changed is false
// for semantically void requests, which are not errors.
type MutationResult struct {
	Order         *models.Order
	Changed       bool
	AutoCompleted bool
}

// ListActiveInput pages through open orders.
type ListActiveInput struct {
	Limit  int
	Offset int
}

// ListActiveResult carries one page of open orders plus the overall count.
type ListActiveResult struct {
	Orders []models.Order
	Total  int64
	Limit  int
	Offset int
}

// OrderView is the wire representation of an order.
type OrderView struct {
	ID        int64            `json:"id"`
	Customer  string           `json:"customer"`
	Item      string           `json:"item"`
	Quantity  int              `json:"quantity"`
	Progress  int              `json:"progress"`
	Notes     string           `json:"notes,omitempty"`
	Completed bool             `json:"completed"`
	State     enums.OrderState `json:"state"`
	CreatedBy string           `json:"created_by"`
	MessageID *string          `json:"message_id,omitempty"`
	ChannelID *string          `json:"channel_id,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func NewOrderView(order *models.Order) OrderView {
	return OrderView{
		ID:        order.ID,
		Customer:  order.Customer,
		Item:      order.Item,
		Quantity:  order.Quantity,
		Progress:  order.Progress,
		Notes:     order.Notes,
		Completed: order.Completed,
		State:     order.State(),
		CreatedBy: order.CreatedBy,
		MessageID: order.MessageID,
		ChannelID: order.ChannelID,
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
}

// ListActiveView is the paged wire representation of open orders.
type ListActiveView struct {
	Orders []OrderView `json:"orders"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

func NewListActiveView(result *ListActiveResult) ListActiveView {
	view := ListActiveView{
		Orders: make([]OrderView, 0, len(result.Orders)),
		Total:  result.Total,
		Limit:  result.Limit,
		Offset: result.Offset,
	}
	for i := range result.Orders {
		view.Orders = append(view.Orders, NewOrderView(&result.Orders[i]))
	}
	return view
}
