package stats

import (
	"context"

	"github.com/blackwater-gg/craftworks/pkg/db/models"
	"github.com/blackwater-gg/craftworks/pkg/enums"
	"gorm.io/gorm"
)

// ItemCount pairs an item with how many live orders reference it.
type ItemCount struct {
	Item  string `json:"item"`
	Count int64  `json:"count"`
}

// ActorActionCount ranks an actor by total ledger actions.
type ActorActionCount struct {
	ActorID   string `json:"actor_id"`
	ActorName string `json:"actor_name"`
	Count     int64  `json:"count"`
}

// Repository answers the aggregate queries the stats views need.
type Repository interface {
	CountOrders(ctx context.Context, completed bool) (int64, error)
	CountLedgerByAction(ctx context.Context, action enums.LedgerAction) (int64, error)
	TopItems(ctx context.Context, limit int) ([]ItemCount, error)
	TopActors(ctx context.Context, limit int) ([]ActorActionCount, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a stats repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CountOrders(ctx context.Context, completed bool) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("completed = ?", completed).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) CountLedgerByAction(ctx context.Context, action enums.LedgerAction) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Where("action = ?", action).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) TopItems(ctx context.Context, limit int) ([]ItemCount, error) {
	var items []ItemCount
	if err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("item, COUNT(*) AS count").
		Group("item").
		Order("count DESC").
		Order("item ASC").
		Limit(limit).
		Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) TopActors(ctx context.Context, limit int) ([]ActorActionCount, error) {
	var actors []ActorActionCount
	if err := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Select("actor_id, actor_name, COUNT(*) AS count").
		Where("actor_name <> ''").
		Group("actor_id").
		Group("actor_name").
		Order("count DESC").
		Order("actor_name ASC").
		Limit(limit).
		Scan(&actors).Error; err != nil {
		return nil, err
	}
	return actors, nil
}
