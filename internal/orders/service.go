package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blackwater-gg/craftworks/internal/ledger"
	"github.com/blackwater-gg/craftworks/internal/notify"
	"github.com/blackwater-gg/craftworks/pkg/config"
	"github.com/blackwater-gg/craftworks/pkg/db/models"
	"github.com/blackwater-gg/craftworks/pkg/enums"
	pkgerrors "github.com/blackwater-gg/craftworks/pkg/errors"
	"github.com/blackwater-gg/craftworks/pkg/logger"
	"gorm.io/gorm"
)

// DefaultNotes is stored when the creator leaves the notes blank. Legacy
// orders carry this exact wire value.
const DefaultNotes = "Keine zusätzlichen Informationen"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventPublisher interface {
	PublishOrderEvent(ctx context.Context, event notify.OrderEvent) error
}

// Service defines the order lifecycle operations. Mutations are serialized
// per order id by the guard; reads are not.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	Get(ctx context.Context, orderID int64) (*models.Order, error)
	ListActive(ctx context.Context, input ListActiveInput) (*ListActiveResult, error)
	AdjustProgress(ctx context.Context, input AdjustProgressInput) (*MutationResult, error)
	Complete(ctx context.Context, input CompleteInput) (*MutationResult, error)
	Remove(ctx context.Context, input RemoveInput) (*MutationResult, error)
	SetSurfaceRef(ctx context.Context, input SetSurfaceRefInput) (*models.Order, error)
}

type service struct {
	repo   Repository
	ledger ledger.Service
	tx     txRunner
	guard  *Guard
	events eventPublisher
	logg   *logger.Logger
	cfg    config.OrdersConfig
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, ledgerSvc ledger.Service, tx txRunner, guard *Guard, events eventPublisher, logg *logger.Logger, cfg config.OrdersConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if guard == nil {
		return nil, fmt.Errorf("concurrency guard required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:   repo,
		ledger: ledgerSvc,
		tx:     tx,
		guard:  guard,
		events: events,
		logg:   logg,
		cfg:    cfg,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	customer := strings.TrimSpace(input.Customer)
	item := strings.TrimSpace(input.Item)
	if customer == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer is required")
	}
	if item == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item is required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if s.cfg.MaxQuantity > 0 && input.Quantity > s.cfg.MaxQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("quantity exceeds maximum of %d", s.cfg.MaxQuantity))
	}
	if input.ActorName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}

	notes := strings.TrimSpace(input.Notes)
	if notes == "" {
		notes = DefaultNotes
	}

	order := &models.Order{
		Customer:  customer,
		Item:      item,
		Quantity:  input.Quantity,
		Progress:  0,
		Notes:     notes,
		Completed: false,
		CreatedBy: input.ActorName,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		_, err := s.ledger.WithTx(tx).Append(ctx, ledger.AppendInput{
			OrderID:   order.ID,
			Action:    enums.LedgerActionCreated,
			ActorID:   input.ActorID,
			ActorName: input.ActorName,
			Detail:    ledger.EncodeCreatedDetail(order.Quantity, order.Item, order.Customer),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, enums.LedgerActionCreated, order, input.ActorID, input.ActorName,
		ledger.EncodeCreatedDetail(order.Quantity, order.Item, order.Customer))
	return order, nil
}

func (s *service) Get(ctx context.Context, orderID int64) (*models.Order, error) {
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ListActive(ctx context.Context, input ListActiveInput) (*ListActiveResult, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = s.cfg.ListDefaultLimit
	}
	if s.cfg.ListMaxLimit > 0 && limit > s.cfg.ListMaxLimit {
		limit = s.cfg.ListMaxLimit
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	orders, err := s.repo.ListActive(ctx, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list active orders")
	}
	total, err := s.repo.CountActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active orders")
	}

	return &ListActiveResult{Orders: orders, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *service) AdjustProgress(ctx context.Context, input AdjustProgressInput) (*MutationResult, error) {
	if input.OrderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delta must be non-zero")
	}
	if input.ActorName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}

	release := s.guard.Lock(input.OrderID)
	defer release()

	result := &MutationResult{}
	var progressDetail string

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := loadForUpdate(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		result.Order = order

		next := order.Progress + input.Delta
		if order.Completed || next < 0 || next > order.Quantity {
			return nil
		}

		old := order.Progress
		updates := map[string]any{"progress": next}
		autoComplete := next == order.Quantity
		if autoComplete {
			updates["completed"] = true
		}
		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order progress")
		}

		ledgerTx := s.ledger.WithTx(tx)
		progressDetail = ledger.EncodeProgressDetail(old, next, false)
		if _, err := ledgerTx.Append(ctx, ledger.AppendInput{
			OrderID:   order.ID,
			Action:    enums.LedgerActionProgress,
			ActorID:   input.ActorID,
			ActorName: input.ActorName,
			Detail:    progressDetail,
		}); err != nil {
			return err
		}

		order.Progress = next
		if autoComplete {
			if _, err := ledgerTx.Append(ctx, ledger.AppendInput{
				OrderID:   order.ID,
				Action:    enums.LedgerActionCompleted,
				ActorID:   input.ActorID,
				ActorName: input.ActorName,
				Detail:    ledger.DetailCompleted,
			}); err != nil {
				return err
			}
			order.Completed = true
			result.AutoCompleted = true
		}

		result.Changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Changed {
		s.publish(ctx, enums.LedgerActionProgress, result.Order, input.ActorID, input.ActorName, progressDetail)
		if result.AutoCompleted {
			s.publish(ctx, enums.LedgerActionCompleted, result.Order, input.ActorID, input.ActorName, ledger.DetailCompleted)
		}
	}
	return result, nil
}

func (s *service) Complete(ctx context.Context, input CompleteInput) (*MutationResult, error) {
	if input.OrderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}

	release := s.guard.Lock(input.OrderID)
	defer release()

	result := &MutationResult{}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := loadForUpdate(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		result.Order = order

		if order.Completed {
			return nil
		}

		ledgerTx := s.ledger.WithTx(tx)
		updates := map[string]any{"completed": true}

		// An early completion first synthesizes the missing progress so the
		// ledger shows monotonic progress before any completion marker.
		if order.Progress < order.Quantity {
			if _, err := ledgerTx.Append(ctx, ledger.AppendInput{
				OrderID:   order.ID,
				Action:    enums.LedgerActionProgress,
				ActorID:   input.ActorID,
				ActorName: input.ActorName,
				Detail:    ledger.EncodeProgressDetail(order.Progress, order.Quantity, true),
			}); err != nil {
				return err
			}
			updates["progress"] = order.Quantity
		}

		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete order")
		}

		if _, err := ledgerTx.Append(ctx, ledger.AppendInput{
			OrderID:   order.ID,
			Action:    enums.LedgerActionCompleted,
			ActorID:   input.ActorID,
			ActorName: input.ActorName,
			Detail:    ledger.DetailCompleted,
		}); err != nil {
			return err
		}

		order.Progress = order.Quantity
		order.Completed = true
		result.Changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Changed {
		s.publish(ctx, enums.LedgerActionCompleted, result.Order, input.ActorID, input.ActorName, ledger.DetailCompleted)
	}
	return result, nil
}

func (s *service) Remove(ctx context.Context, input RemoveInput) (*MutationResult, error) {
	if input.OrderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}

	release := s.guard.Lock(input.OrderID)
	defer release()

	result := &MutationResult{}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := loadForUpdate(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		result.Order = order

		// The hand-off entry must be durable before the row disappears;
		// appending first inside the same transaction makes both atomic.
		if _, err := s.ledger.WithTx(tx).Append(ctx, ledger.AppendInput{
			OrderID:   order.ID,
			Action:    enums.LedgerActionHandedOff,
			ActorID:   input.ActorID,
			ActorName: input.ActorName,
			Detail:    ledger.DetailHandedOff,
		}); err != nil {
			return err
		}

		if err := repo.Delete(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
		}

		result.Changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, enums.LedgerActionHandedOff, result.Order, input.ActorID, input.ActorName, ledger.DetailHandedOff)
	return result, nil
}

func (s *service) SetSurfaceRef(ctx context.Context, input SetSurfaceRefInput) (*models.Order, error) {
	if input.OrderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.MessageID == "" || input.ChannelID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message id and channel id required")
	}

	order, err := s.Get(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, order.ID, map[string]any{
		"message_id": input.MessageID,
		"channel_id": input.ChannelID,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set surface ref")
	}

	order.MessageID = &input.MessageID
	order.ChannelID = &input.ChannelID
	return order, nil
}

func loadForUpdate(ctx context.Context, repo Repository, orderID int64) (*models.Order, error) {
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) publish(ctx context.Context, action enums.LedgerAction, order *models.Order, actorID, actorName, detail string) {
	if s.events == nil || order == nil {
		return
	}
	event := notify.OrderEvent{
		Action:     action,
		OrderID:    order.ID,
		Customer:   order.Customer,
		Item:       order.Item,
		Quantity:   order.Quantity,
		Progress:   order.Progress,
		Completed:  order.Completed,
		ActorID:    actorID,
		ActorName:  actorName,
		Detail:     detail,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.PublishOrderEvent(ctx, event); err != nil {
		s.logg.Error(s.logg.WithOrderID(ctx, order.ID), "publishing order event failed", err)
	}
}
