package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/blackwater-gg/craftworks/internal/orders"
	"github.com/blackwater-gg/craftworks/internal/surface"
	"github.com/blackwater-gg/craftworks/pkg/db/models"
	pkgerrors "github.com/blackwater-gg/craftworks/pkg/errors"
	"github.com/blackwater-gg/craftworks/pkg/logger"
	"github.com/blackwater-gg/craftworks/pkg/metrics"
	"go.uber.org/multierr"
)

// Result summarizes one reconciliation run.
type Result struct {
	Reconciled int `json:"reconciled"`
	Failed     int `json:"failed"`
	Total      int `json:"total"`
}

// Service resynchronizes rendered surfaces with persisted truth. It runs once
// at process start and on demand.
type Service interface {
	Run(ctx context.Context, trigger string) (*Result, error)
}

// ServiceParams configure the reconciliation service.
type ServiceParams struct {
	Logger  *logger.Logger
	Repo    orders.Repository
	Surface surface.Surface
	Lock    Lock
	Metrics *metrics.ReconcileMetrics
}

type service struct {
	logg    *logger.Logger
	repo    orders.Repository
	surface surface.Surface
	lock    Lock
	metrics *metrics.ReconcileMetrics
}

// NewService builds a reconciliation service.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Surface == nil {
		return nil, fmt.Errorf("surface required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock required")
	}
	return &service{
		logg:    params.Logger,
		repo:    params.Repo,
		surface: params.Surface,
		lock:    params.Lock,
		metrics: params.Metrics,
	}, nil
}

func (s *service) Run(ctx context.Context, trigger string) (*Result, error) {
	locked, err := s.lock.Acquire(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire reconcile lock")
	}
	if !locked {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "reconciliation already running")
	}
	defer func() {
		if relErr := s.lock.Release(ctx); relErr != nil {
			s.logg.Error(ctx, "failed to release reconcile lock", relErr)
		}
	}()

	ctx = s.logg.WithField(ctx, "trigger", trigger)
	s.logg.Info(ctx, "reconciliation starting")
	start := time.Now()

	list, err := s.repo.ListWithSurfaceRef(ctx)
	if err != nil {
		s.recordRun(trigger, "error", time.Since(start))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders with surface refs")
	}

	result := &Result{Total: len(list)}
	var runErr error

	for i := range list {
		order := &list[i]
		if err := s.reconcileOrder(ctx, order); err != nil {
			result.Failed++
			runErr = multierr.Append(runErr, fmt.Errorf("order %d: %w", order.ID, err))
			s.logg.Error(s.logg.WithOrderID(ctx, order.ID), "order reconciliation failed", err)
			continue
		}
		result.Reconciled++
	}

	duration := time.Since(start)
	outcome := "success"
	if result.Failed > 0 {
		outcome = "partial"
	}
	s.recordRun(trigger, outcome, duration)
	if s.metrics != nil {
		s.metrics.AddResults(trigger, result.Reconciled, result.Failed)
	}

	summaryCtx := s.logg.WithFields(ctx, map[string]any{
		"reconciled":  result.Reconciled,
		"failed":      result.Failed,
		"total":       result.Total,
		"duration_ms": duration.Milliseconds(),
	})
	// Per-item failures are reported in the summary, never as a run error.
	if runErr != nil {
		s.logg.Error(summaryCtx, "reconciliation finished with failures", runErr)
	} else {
		s.logg.Info(summaryCtx, "reconciliation complete")
	}
	return result, nil
}

func (s *service) reconcileOrder(ctx context.Context, order *models.Order) error {
	oldRef, hasRef := surface.RefFromOrder(order)
	if hasRef {
		// The stale representation may already be gone; tolerate removal
		// failures and keep going.
		if err := s.surface.Remove(ctx, oldRef); err != nil {
			s.logg.Warn(s.logg.WithOrderID(ctx, order.ID), "removing stale surface failed")
		}
	}

	newRef, err := s.surface.Render(ctx, order, oldRef.ChannelID)
	if err != nil {
		return err
	}

	if err := s.repo.Update(ctx, order.ID, map[string]any{
		"message_id": newRef.MessageID,
		"channel_id": newRef.ChannelID,
	}); err != nil {
		return err
	}

	order.MessageID = &newRef.MessageID
	order.ChannelID = &newRef.ChannelID
	return nil
}

func (s *service) recordRun(trigger, outcome string, duration time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveDuration(trigger, duration)
	s.metrics.IncRun(trigger, outcome)
}
