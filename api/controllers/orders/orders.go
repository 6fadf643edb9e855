package orders

import (
	"net/http"

	"github.com/blackwater-gg/craftworks/api/middleware"
	"github.com/blackwater-gg/craftworks/api/responses"
	"github.com/blackwater-gg/craftworks/api/validators"
	"github.com/blackwater-gg/craftworks/internal/ledger"
	internalorders "github.com/blackwater-gg/craftworks/internal/orders"
	pkgerrors "github.com/blackwater-gg/craftworks/pkg/errors"
	"github.com/blackwater-gg/craftworks/pkg/logger"
)

type createOrderRequest struct {
	Customer string `json:"customer" validate:"required"`
	Item     string `json:"item" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
	Notes    string `json:"notes"`
}

type progressRequest struct {
	Delta int `json:"delta" validate:"required"`
}

type surfaceRefRequest struct {
	MessageID string `json:"message_id" validate:"required"`
	ChannelID string `json:"channel_id" validate:"required"`
}

type mutationResponse struct {
	Order         internalorders.OrderView `json:"order"`
	Changed       bool                     `json:"changed"`
	AutoCompleted bool                     `json:"auto_completed,omitempty"`
}

func newMutationResponse(result *internalorders.MutationResult) mutationResponse {
	return mutationResponse{
		Order:         internalorders.NewOrderView(result.Order),
		Changed:       result.Changed,
		AutoCompleted: result.AutoCompleted,
	}
}

// Create opens a new order and writes its creation ledger entry.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), internalorders.CreateInput{
			Customer:  body.Customer,
			Item:      body.Item,
			Quantity:  body.Quantity,
			Notes:     body.Notes,
			ActorID:   middleware.UserIDFromContext(r.Context()),
			ActorName: middleware.ActorNameFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, internalorders.NewOrderView(order))
	}
}

// Detail returns one live order.
func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, internalorders.NewOrderView(order))
	}
}

// ListActive pages through open orders, oldest first.
func ListActive(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 1000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1<<30)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListActive(r.Context(), internalorders.ListActiveInput{Limit: limit, Offset: offset})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, internalorders.NewListActiveView(result))
	}
}

// AdjustProgress applies a signed delta. Out-of-range and already-completed
// requests come back with changed=false rather than an error.
func AdjustProgress(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body progressRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AdjustProgress(r.Context(), internalorders.AdjustProgressInput{
			OrderID:   orderID,
			Delta:     body.Delta,
			ActorID:   middleware.UserIDFromContext(r.Context()),
			ActorName: middleware.ActorNameFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newMutationResponse(result))
	}
}

// Complete finishes an order regardless of its current progress.
func Complete(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Complete(r.Context(), internalorders.CompleteInput{
			OrderID:   orderID,
			ActorID:   middleware.UserIDFromContext(r.Context()),
			ActorName: middleware.ActorNameFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newMutationResponse(result))
	}
}

// Remove hands the order off and deletes its row. The ledger keeps the story.
func Remove(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Remove(r.Context(), internalorders.RemoveInput{
			OrderID:   orderID,
			ActorID:   middleware.UserIDFromContext(r.Context()),
			ActorName: middleware.ActorNameFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newMutationResponse(result))
	}
}

// SetSurfaceRef records where the order is currently rendered.
func SetSurfaceRef(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body surfaceRefRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.SetSurfaceRef(r.Context(), internalorders.SetSurfaceRefInput{
			OrderID:   orderID,
			MessageID: body.MessageID,
			ChannelID: body.ChannelID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, internalorders.NewOrderView(order))
	}
}

// History returns the full chronological ledger of one order, including
// orders that no longer exist.
func History(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.History(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(entries) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no history for order"))
			return
		}

		responses.WriteSuccess(w, ledger.NewHistoryView(orderID, entries))
	}
}

// Snapshot replays the ledger into the last known state of an order. It is
// the only read that works after hand-off.
func Snapshot(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.Snapshot(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snapshot)
	}
}

// Contributions aggregates per-actor shares of the work on one order.
func Contributions(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Contributions(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}
