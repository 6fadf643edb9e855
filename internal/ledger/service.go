package ledger

import (
	"context"
	"fmt"

	"github.com/blackwater-gg/craftworks/pkg/db/models"
	"github.com/blackwater-gg/craftworks/pkg/enums"
	pkgerrors "github.com/blackwater-gg/craftworks/pkg/errors"
	"gorm.io/gorm"
)

// Service defines operations that record and replay ledger entries.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Append(ctx context.Context, input AppendInput) (*models.LedgerEntry, error)
	History(ctx context.Context, orderID int64) ([]models.LedgerEntry, error)
	Snapshot(ctx context.Context, orderID int64) (*Snapshot, error)
	Contributions(ctx context.Context, orderID int64) (*ContributionSummary, error)
}

type service struct {
	repo Repository
}

// AppendInput captures the immutable data a ledger entry requires.
type AppendInput struct {
	OrderID   int64
	Action    enums.LedgerAction
	ActorID   string
	ActorName string
	Detail    string
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) Append(ctx context.Context, input AppendInput) (*models.LedgerEntry, error) {
	if input.OrderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if !input.Action.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid ledger action %q", input.Action))
	}
	if input.ActorName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor name is required")
	}

	entry := &models.LedgerEntry{
		OrderID:   input.OrderID,
		Action:    input.Action,
		ActorID:   input.ActorID,
		ActorName: input.ActorName,
		Detail:    input.Detail,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append ledger entry")
	}
	return entry, nil
}

func (s *service) History(ctx context.Context, orderID int64) ([]models.LedgerEntry, error) {
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	entries, err := s.repo.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ledger entries")
	}
	return entries, nil
}

func (s *service) Snapshot(ctx context.Context, orderID int64) (*Snapshot, error) {
	entries, err := s.History(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no ledger entries for order")
	}
	snap := Reconstruct(orderID, entries)
	return &snap, nil
}

func (s *service) Contributions(ctx context.Context, orderID int64) (*ContributionSummary, error) {
	entries, err := s.History(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no ledger entries for order")
	}
	summary := Aggregate(orderID, entries)
	return &summary, nil
}
