package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/blackwater-gg/craftworks/internal/ledger"
	"github.com/blackwater-gg/craftworks/pkg/enums"
	pkgerrors "github.com/blackwater-gg/craftworks/pkg/errors"
)

const (
	defaultTopItems       = 5
	defaultTopActors      = 5
	defaultRecentActivity = 10
)

// Overview summarizes the workshop across live orders and the full ledger.
type Overview struct {
	ActiveOrders    int64              `json:"active_orders"`
	CompletedOrders int64              `json:"completed_orders"`
	TotalCreated    int64              `json:"total_created"`
	TotalHandedOff  int64              `json:"total_handed_off"`
	TopItems        []ItemCount        `json:"top_items"`
	TopUsers        []ActorActionCount `json:"top_users"`
	RecentActivity  []ActivityEntry    `json:"recent_activity"`
}

// ActivityEntry is one ledger event in the recent-activity feed.
type ActivityEntry struct {
	OrderID   int64              `json:"order_id"`
	Action    enums.LedgerAction `json:"action"`
	ActorName string             `json:"actor_name"`
	Detail    string             `json:"detail"`
	CreatedAt time.Time          `json:"created_at"`
}

// UserStats aggregates one actor's footprint across all orders, derived
// purely from the ledger so deleted orders still count.
type UserStats struct {
	ActorID         string `json:"actor_id"`
	ActorName       string `json:"actor_name"`
	OrdersCreated   int    `json:"orders_created"`
	OrdersCompleted int    `json:"orders_completed"`
	OrdersHandedOff int    `json:"orders_handed_off"`
	UnitsAdded      int    `json:"units_added"`
	UnitsRemoved    int    `json:"units_removed"`
	ActionCount     int    `json:"action_count"`
}

// Service exposes the derived statistics views.
type Service interface {
	Overview(ctx context.Context) (*Overview, error)
	UserStats(ctx context.Context, actorID string) (*UserStats, error)
}

type service struct {
	repo       Repository
	ledgerRepo ledger.Repository
}

// NewService wires a stats service with the required repositories.
func NewService(repo Repository, ledgerRepo ledger.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stats repository required")
	}
	if ledgerRepo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo, ledgerRepo: ledgerRepo}, nil
}

func (s *service) Overview(ctx context.Context) (*Overview, error) {
	active, err := s.repo.CountOrders(ctx, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active orders")
	}
	completed, err := s.repo.CountOrders(ctx, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count completed orders")
	}
	created, err := s.repo.CountLedgerByAction(ctx, enums.LedgerActionCreated)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count creation entries")
	}
	handedOff, err := s.repo.CountLedgerByAction(ctx, enums.LedgerActionHandedOff)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count hand-off entries")
	}
	topItems, err := s.repo.TopItems(ctx, defaultTopItems)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load top items")
	}
	topUsers, err := s.repo.TopActors(ctx, defaultTopActors)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load top users")
	}
	recent, err := s.ledgerRepo.ListSince(ctx, defaultRecentActivity)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recent activity")
	}

	activity := make([]ActivityEntry, 0, len(recent))
	for _, entry := range recent {
		activity = append(activity, ActivityEntry{
			OrderID:   entry.OrderID,
			Action:    entry.Action,
			ActorName: entry.ActorName,
			Detail:    entry.Detail,
			CreatedAt: entry.CreatedAt,
		})
	}

	return &Overview{
		ActiveOrders:    active,
		CompletedOrders: completed,
		TotalCreated:    created,
		TotalHandedOff:  handedOff,
		TopItems:        topItems,
		TopUsers:        topUsers,
		RecentActivity:  activity,
	}, nil
}

func (s *service) UserStats(ctx context.Context, actorID string) (*UserStats, error) {
	if actorID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor id required")
	}

	entries, err := s.ledgerRepo.ListByActor(ctx, actorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load actor entries")
	}
	if len(entries) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no activity for actor")
	}

	result := &UserStats{ActorID: actorID, ActionCount: len(entries)}
	for _, entry := range entries {
		if result.ActorName == "" {
			result.ActorName = entry.ActorName
		}
		switch entry.Action {
		case enums.LedgerActionCreated:
			result.OrdersCreated++
		case enums.LedgerActionCompleted:
			result.OrdersCompleted++
		case enums.LedgerActionHandedOff:
			result.OrdersHandedOff++
		case enums.LedgerActionProgress:
			progress, ok := ledger.ParseProgressDetail(entry.Detail)
			if !ok {
				continue
			}
			if delta := progress.Delta(); delta > 0 {
				result.UnitsAdded += delta
			} else if delta < 0 {
				result.UnitsRemoved += -delta
			}
		}
	}
	return result, nil
}
