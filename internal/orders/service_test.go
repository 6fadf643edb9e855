package orders

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/blackwater-gg/craftworks/internal/ledger"
	"github.com/blackwater-gg/craftworks/internal/notify"
	"github.com/blackwater-gg/craftworks/pkg/config"
	"github.com/blackwater-gg/craftworks/pkg/db/models"
	"github.com/blackwater-gg/craftworks/pkg/enums"
	pkgerrors "github.com/blackwater-gg/craftworks/pkg/errors"
	"github.com/blackwater-gg/craftworks/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []notify.OrderEvent
}

func (p *capturingPublisher) PublishOrderEvent(ctx context.Context, event notify.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) actions() []enums.LedgerAction {
	p.mu.Lock()
	defer p.mu.Unlock()
	actions := make([]enums.LedgerAction, 0, len(p.events))
	for _, event := range p.events {
		actions = append(actions, event.Action)
	}
	return actions
}

type serviceFixture struct {
	svc        Service
	db         *gorm.DB
	ledgerRepo ledger.Repository
	events     *capturingPublisher
}

func setupService(t *testing.T) serviceFixture {
	t.Helper()

	db := setupOrdersTestDB(t)
	ledgerRepo := ledger.NewRepository(db)
	ledgerSvc, err := ledger.NewService(ledgerRepo)
	require.NoError(t, err)

	events := &capturingPublisher{}
	logg := logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})

	svc, err := NewService(
		NewRepository(db),
		ledgerSvc,
		testTxRunner{db: db},
		NewGuard(),
		events,
		logg,
		config.OrdersConfig{MaxQuantity: 9999, ListDefaultLimit: 10, ListMaxLimit: 50},
	)
	require.NoError(t, err)

	return serviceFixture{svc: svc, db: db, ledgerRepo: ledgerRepo, events: events}
}

func (f serviceFixture) history(t *testing.T, orderID int64) []models.LedgerEntry {
	t.Helper()
	entries, err := f.ledgerRepo.ListByOrderID(context.Background(), orderID)
	require.NoError(t, err)
	return entries
}

func TestService_CreateAppendsCreationEntry(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, CreateInput{
		Customer:  "Hafenmeister Udo",
		Item:      "Eisenbarren",
		Quantity:  10,
		Notes:     "eilig",
		ActorID:   "u-1",
		ActorName: "alice",
	})
	require.NoError(t, err)
	require.NotZero(t, order.ID)
	assert.Equal(t, 0, order.Progress)
	assert.False(t, order.Completed)
	assert.Equal(t, "alice", order.CreatedBy)

	entries := f.history(t, order.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, enums.LedgerActionCreated, entries[0].Action)
	assert.Equal(t, "Auftrag erstellt: 10x Eisenbarren für Hafenmeister Udo", entries[0].Detail)

	assert.Equal(t, []enums.LedgerAction{enums.LedgerActionCreated}, f.events.actions())
}

func TestService_CreateDefaultsNotes(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, CreateInput{
		Customer: "Udo", Item: "Seil", Quantity: 1, Notes: "  ", ActorID: "u-1", ActorName: "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultNotes, order.Notes)

	var stored models.Order
	require.NoError(t, f.db.First(&stored, order.ID).Error)
	assert.Equal(t, "Keine zusätzlichen Informationen", stored.Notes)
}

func TestService_CreateValidation(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateInput
		code  pkgerrors.Code
	}{
		{
			name:  "missing customer",
			input: CreateInput{Item: "Seil", Quantity: 1, ActorName: "alice"},
			code:  pkgerrors.CodeValidation,
		},
		{
			name:  "zero quantity",
			input: CreateInput{Customer: "Udo", Item: "Seil", Quantity: 0, ActorName: "alice"},
			code:  pkgerrors.CodeValidation,
		},
		{
			name:  "quantity above bound",
			input: CreateInput{Customer: "Udo", Item: "Seil", Quantity: 10000, ActorName: "alice"},
			code:  pkgerrors.CodeValidation,
		},
		{
			name:  "missing actor",
			input: CreateInput{Customer: "Udo", Item: "Seil", Quantity: 1},
			code:  pkgerrors.CodeUnauthorized,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tc.input)
			coded := pkgerrors.As(err)
			require.NotNil(t, coded, "expected coded error, got %v", err)
			assert.Equal(t, tc.code, coded.Code())
		})
	}
}

func TestService_AdjustProgressAutoCompletes(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, CreateInput{
		Customer: "Udo", Item: "Seil", Quantity: 2, ActorID: "u-1", ActorName: "alice",
	})
	require.NoError(t, err)

	res, err := f.svc.AdjustProgress(ctx, AdjustProgressInput{OrderID: order.ID, Delta: 1, ActorID: "u-2", ActorName: "bob"})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.False(t, res.AutoCompleted)
	assert.Equal(t, 1, res.Order.Progress)

	res, err = f.svc.AdjustProgress(ctx, AdjustProgressInput{OrderID: order.ID, Delta: 1, ActorID: "u-2", ActorName: "bob"})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.True(t, res.AutoCompleted)
	assert.True(t, res.Order.Completed)
	assert.Equal(t, 2, res.Order.Progress)

	entries := f.history(t, order.ID)
	require.Len(t, entries, 4)
	assert.Equal(t, enums.LedgerActionProgress, entries[1].Action)
	assert.Equal(t, "Fortschritt geändert: 0 → 1", entries[1].Detail)
	assert.Equal(t, enums.LedgerActionProgress, entries[2].Action)
	assert.Equal(t, enums.LedgerActionCompleted, entries[3].Action)
	assert.Equal(t, "Auftrag wurde abgeschlossen", entries[3].Detail)

	assert.Equal(t, []enums.LedgerAction{
		enums.LedgerActionCreated,
		enums.LedgerActionProgress,
		enums.LedgerActionProgress,
		enums.LedgerActionCompleted,
	}, f.events.actions())
}

func TestService_AdjustProgressConcurrentIncrements(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, CreateInput{
		Customer: "Udo", Item: "Eisenbarren", Quantity: 10, ActorID: "u-1", ActorName: "alice",
	})
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, err := f.svc.AdjustProgress(ctx, AdjustProgressInput{OrderID: order.ID, Delta: 1, ActorID: "u-1", ActorName: "alice"})
		require.NoError(t, err)
	}

	// Two racing increments at progress 4 must both land: one at 5, one at 6.
	results := make([]*MutationResult, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.svc.AdjustProgress(ctx, AdjustProgressInput{
				OrderID: order.ID, Delta: 1, ActorID: "u-2", ActorName: "bob",
			})
		}(i)
	}
	wg.Wait()

	for i := 0; i < 2; i++ {
		require.NoError(t, errs[i])
		assert.True(t, results[i].Changed)
	}

	final, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, final.Progress)
	assert.False(t, final.Completed)

	entries := f.history(t, order.ID)
	require.Len(t, entries, 7)
	assert.Equal(t, "Fortschritt geändert: 4 → 5", entries[5].Detail)
	assert.Equal(t, "Fortschritt geändert: 5 → 6", entries[6].Detail)
}

func TestService_ProgressRunToCompletionLedgerShape(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, CreateInput{
		Customer: "Udo", Item: "Eisenbarren", Quantity: 10, ActorID: "u-1", ActorName: "alice",
	})
	require.NoError(t, err)

	var last *MutationResult
	for i := 0; i < 10; i++ {
		last, err = f.svc.AdjustProgress(ctx, AdjustProgressInput{OrderID: order.ID, Delta: 1, ActorID: "u-2", ActorName: "bob"})
		require.NoError(t, err)
		require.True(t, last.Changed)
	}
	assert.True(t, last.AutoCompleted)
	assert.Equal(t, 10, last.Order.Progress)

	entries := f.history(t, order.ID)
	require.Len(t, entries, 12)
	assert.Equal(t, enums.LedgerActionCreated, entries[0].Action)
	for i := 1; i <= 10; i++ {
		assert.Equal(t, enums.LedgerActionProgress, entries[i].Action)
	}
	assert.Equal(t, enums.LedgerActionCompleted, entries[11].Action)
}

func TestService_AdjustProgressOutOfRangeIsNoOp(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, CreateInput{
		Customer: "Udo", Item: "Seil", Quantity: 3, ActorID: "u-1", ActorName: "alice",
	})
	require.NoError(t, err)

	res, err := f.svc.AdjustProgress(ctx, AdjustProgressInput{OrderID: order.ID, Delta: -1, ActorID: "u-2", ActorName: "bob"})
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, 0, res.Order.Progress)

	res, err = f.svc.AdjustProgress(ctx, AdjustProgressInput{OrderID: order.ID, Delta: 4, ActorID: "u-2", ActorName: "bob"})
	require.NoError(t, err)
	assert.False(t, res.Changed)

	// Creation entry only: no-ops must leave no ledger trace.
	assert.Len(t, f.history(t, order.ID), 1)
}

func TestService_AdjustProgressCompletedOrderIsNoOp(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, CreateInput{
		Customer: "Udo", Item: "Seil", Quantity: 1, ActorID: "u-1", ActorName: "alice",
	})
	require.NoError(t, err)

	_, err = f.svc.AdjustProgress(ctx, AdjustProgressInput{OrderID: order.ID, Delta: 1, ActorID: "u-1", ActorName: "alice"})
	require.NoError(t, err)

	res, err := f.svc.AdjustProgress(ctx, AdjustProgressInput{OrderID: order.ID, Delta: -1, ActorID: "u-1", ActorName: "alice"})
	require.NoError(t, err)
	assert.False(t, res.Changed)
}

func TestService_AdjustProgressNotFound(t *testing.T) {
	f := setupService(t)

	_, err := f.svc.AdjustProgress(context.Background(), AdjustProgressInput{OrderID: 9999, Delta: 1, ActorName: "alice"})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestService_CompleteEarlySynthesizesProgress(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, CreateInput{
		Customer: "Udo", Item: "Seil", Quantity: 5, ActorID: "u-1", ActorName: "alice",
	})
	require.NoError(t, err)

	_, err = f.svc.AdjustProgress(ctx, AdjustProgressInput{OrderID: order.ID, Delta: 1, ActorID: "u-2", ActorName: "bob"})
	require.NoError(t, err)

	res, err := f.svc.Complete(ctx, CompleteInput{OrderID: order.ID, ActorID: "u-1", ActorName: "alice"})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.True(t, res.Order.Completed)
	assert.Equal(t, 5, res.Order.Progress)

	entries := f.history(t, order.ID)
	require.Len(t, entries, 4)
	// The synthetic progress entry must precede the completion marker.
	assert.Equal(t, enums.LedgerActionProgress, entries[2].Action)
	assert.Equal(t, "Fortschritt geändert: 1 → 5 (Automatisch beim Abschließen)", entries[2].Detail)
	assert.Equal(t, enums.LedgerActionCompleted, entries[3].Action)
}

func TestService_CompleteIsIdempotent(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, CreateInput{
		Customer: "Udo", Item: "Seil", Quantity: 1, ActorID: "u-1", ActorName: "alice",
	})
	require.NoError(t, err)

	res, err := f.svc.Complete(ctx, CompleteInput{OrderID: order.ID, ActorID: "u-1", ActorName: "alice"})
	require.NoError(t, err)
	assert.True(t, res.Changed)

	res, err = f.svc.Complete(ctx, CompleteInput{OrderID: order.ID, ActorID: "u-1", ActorName: "alice"})
	require.NoError(t, err)
	assert.False(t, res.Changed)

	entries := f.history(t, order.ID)
	count := 0
	for _, entry := range entries {
		if entry.Action == enums.LedgerActionCompleted {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestService_RemoveDeletesRowButKeepsLedger(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, CreateInput{
		Customer: "Udo", Item: "Seil", Quantity: 3, ActorID: "u-1", ActorName: "alice",
	})
	require.NoError(t, err)

	res, err := f.svc.Remove(ctx, RemoveInput{OrderID: order.ID, ActorID: "u-3", ActorName: "carol"})
	require.NoError(t, err)
	assert.True(t, res.Changed)

	_, err = f.svc.Get(ctx, order.ID)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())

	entries := f.history(t, order.ID)
	require.Len(t, entries, 2)
	assert.Equal(t, enums.LedgerActionHandedOff, entries[1].Action)
	assert.Equal(t, "Auftrag wurde abgegeben und gelöscht", entries[1].Detail)
	assert.Equal(t, "carol", entries[1].ActorName)
}

func TestService_SetSurfaceRef(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, CreateInput{
		Customer: "Udo", Item: "Seil", Quantity: 3, ActorID: "u-1", ActorName: "alice",
	})
	require.NoError(t, err)

	updated, err := f.svc.SetSurfaceRef(ctx, SetSurfaceRefInput{
		OrderID:   order.ID,
		MessageID: "m-1",
		ChannelID: "c-1",
	})
	require.NoError(t, err)
	require.NotNil(t, updated.MessageID)
	assert.Equal(t, "m-1", *updated.MessageID)
	assert.True(t, updated.HasSurfaceRef())

	found, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, found.ChannelID)
	assert.Equal(t, "c-1", *found.ChannelID)
}

func TestService_ListActiveClampsLimit(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(ctx, CreateInput{
			Customer: "Udo", Item: "Seil", Quantity: 5, ActorID: "u-1", ActorName: "alice",
		})
		require.NoError(t, err)
	}

	res, err := f.svc.ListActive(ctx, ListActiveInput{Limit: 0, Offset: -4})
	require.NoError(t, err)
	assert.Equal(t, 10, res.Limit)
	assert.Equal(t, 0, res.Offset)
	assert.Equal(t, int64(3), res.Total)
	assert.Len(t, res.Orders, 3)

	res, err = f.svc.ListActive(ctx, ListActiveInput{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 50, res.Limit)
}
