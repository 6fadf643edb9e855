package ledger

import (
	"testing"
	"time"

	"github.com/blackwater-gg/craftworks/pkg/db/models"
	"github.com/blackwater-gg/craftworks/pkg/enums"
)

func entryAt(ts time.Time, action enums.LedgerAction, actor, detail string) models.LedgerEntry {
	return models.LedgerEntry{
		OrderID:   42,
		Action:    action,
		ActorID:   "id-" + actor,
		ActorName: actor,
		Detail:    detail,
		CreatedAt: ts,
	}
}

func TestReconstruct_FullLifecycle(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []models.LedgerEntry{
		entryAt(base, enums.LedgerActionCreated, "alice", EncodeCreatedDetail(10, "Eisenbarren", "Udo")),
		entryAt(base.Add(time.Minute), enums.LedgerActionProgress, "bob", EncodeProgressDetail(0, 4, false)),
		entryAt(base.Add(2*time.Minute), enums.LedgerActionProgress, "alice", EncodeProgressDetail(4, 10, true)),
		entryAt(base.Add(3*time.Minute), enums.LedgerActionCompleted, "alice", DetailCompleted),
		entryAt(base.Add(4*time.Minute), enums.LedgerActionHandedOff, "carol", DetailHandedOff),
	}

	snap := Reconstruct(42, entries)

	if snap.Item != "Eisenbarren" || snap.Customer != "Udo" || snap.Quantity != 10 {
		t.Fatalf("creation fields not replayed: %+v", snap)
	}
	if snap.Progress != 10 || !snap.Completed {
		t.Fatalf("progress/completion not replayed: %+v", snap)
	}
	if snap.Status != enums.ArchivedStatusHandedOff {
		t.Fatalf("status = %q, want handed off", snap.Status)
	}
	if snap.CreatedBy != "alice" || !snap.CreatedAt.Equal(base) {
		t.Fatalf("creation actor/time not replayed: %+v", snap)
	}
	if !snap.LastEventAt.Equal(base.Add(4 * time.Minute)) {
		t.Fatalf("last event time = %v", snap.LastEventAt)
	}
}

func TestReconstruct_NoCreatedEntry(t *testing.T) {
	base := time.Now().UTC()
	entries := []models.LedgerEntry{
		entryAt(base, enums.LedgerActionProgress, "bob", EncodeProgressDetail(0, 2, false)),
	}

	snap := Reconstruct(7, entries)

	if snap.Item != UnknownField || snap.Customer != UnknownField || snap.Quantity != 0 {
		t.Fatalf("missing creation should degrade fields: %+v", snap)
	}
	if snap.Progress != 2 {
		t.Fatalf("progress = %d, want 2", snap.Progress)
	}
	if snap.Status != enums.ArchivedStatusDeleted {
		t.Fatalf("status = %q, want deleted", snap.Status)
	}
}

func TestReconstruct_MalformedDetailDegrades(t *testing.T) {
	base := time.Now().UTC()
	entries := []models.LedgerEntry{
		entryAt(base, enums.LedgerActionCreated, "alice", "free-form note"),
		entryAt(base.Add(time.Minute), enums.LedgerActionProgress, "bob", "also not parseable"),
		entryAt(base.Add(2*time.Minute), enums.LedgerActionProgress, "bob", EncodeProgressDetail(1, 3, false)),
	}

	snap := Reconstruct(9, entries)

	if snap.Item != UnknownField || snap.Quantity != 0 {
		t.Fatalf("malformed creation detail should degrade: %+v", snap)
	}
	if snap.CreatedBy != "alice" {
		t.Fatalf("actor survives malformed detail: %+v", snap)
	}
	if snap.Progress != 3 {
		t.Fatalf("later parseable progress still applies: %+v", snap)
	}
}

func TestReconstruct_FirstCreatedWins(t *testing.T) {
	base := time.Now().UTC()
	entries := []models.LedgerEntry{
		entryAt(base, enums.LedgerActionCreated, "alice", EncodeCreatedDetail(3, "Seil", "Hafen")),
		entryAt(base.Add(time.Minute), enums.LedgerActionCreated, "mallory", EncodeCreatedDetail(99, "Gold", "Mallory")),
	}

	snap := Reconstruct(5, entries)

	if snap.Item != "Seil" || snap.Quantity != 3 || snap.CreatedBy != "alice" {
		t.Fatalf("first creation entry must win: %+v", snap)
	}
}
