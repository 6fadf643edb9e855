package ledger

import (
	"math"
	"sort"

	"github.com/blackwater-gg/craftworks/pkg/db/models"
	"github.com/blackwater-gg/craftworks/pkg/enums"
)

// ActorRef identifies a ledger actor.
type ActorRef struct {
	ActorID   string `json:"actor_id"`
	ActorName string `json:"actor_name"`
}

// ActorContribution aggregates one actor's progress entries for an order.
type ActorContribution struct {
	ActorID     string `json:"actor_id"`
	ActorName   string `json:"actor_name"`
	Added       int    `json:"added"`
	Removed     int    `json:"removed"`
	ActionCount int    `json:"action_count"`
	// Share is the percentage of all added units, filled in by Aggregate.
	Share int `json:"share"`
}

// ContributionSummary is derived on demand from the ledger, never stored.
type ContributionSummary struct {
	OrderID      int64               `json:"order_id"`
	Actors       []ActorContribution `json:"actors"`
	TotalAdded   int                 `json:"total_added"`
	TotalRemoved int                 `json:"total_removed"`
	CreatedBy    *ActorRef           `json:"created_by,omitempty"`
	CompletedBy  *ActorRef           `json:"completed_by,omitempty"`
}

// ComputeShare returns the actor's percentage of all added units, 0 when
// nothing was added at all.
func (a ActorContribution) ComputeShare(totalAdded int) int {
	if totalAdded <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(a.Added) / float64(totalAdded)))
}

// Aggregate walks the ordered entry sequence once. Actors are keyed by name
// and ranked descending by added units; ties keep scan order.
func Aggregate(orderID int64, entries []models.LedgerEntry) ContributionSummary {
	summary := ContributionSummary{OrderID: orderID}

	byName := map[string]int{}
	actors := []ActorContribution{}

	for _, entry := range entries {
		switch entry.Action {
		case enums.LedgerActionCreated:
			if summary.CreatedBy == nil {
				summary.CreatedBy = &ActorRef{ActorID: entry.ActorID, ActorName: entry.ActorName}
			}
		case enums.LedgerActionCompleted:
			if summary.CompletedBy == nil {
				summary.CompletedBy = &ActorRef{ActorID: entry.ActorID, ActorName: entry.ActorName}
			}
		case enums.LedgerActionProgress:
			progress, ok := ParseProgressDetail(entry.Detail)
			if !ok {
				continue
			}

			idx, seen := byName[entry.ActorName]
			if !seen {
				actors = append(actors, ActorContribution{
					ActorID:   entry.ActorID,
					ActorName: entry.ActorName,
				})
				idx = len(actors) - 1
				byName[entry.ActorName] = idx
			}

			actors[idx].ActionCount++
			delta := progress.Delta()
			if delta > 0 {
				actors[idx].Added += delta
				summary.TotalAdded += delta
			} else if delta < 0 {
				actors[idx].Removed += -delta
				summary.TotalRemoved += -delta
			}
		}
	}

	sort.SliceStable(actors, func(i, j int) bool {
		return actors[i].Added > actors[j].Added
	})

	for i := range actors {
		actors[i].Share = actors[i].ComputeShare(summary.TotalAdded)
	}

	summary.Actors = actors
	return summary
}
