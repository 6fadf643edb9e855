package surface

import (
	"testing"

	"github.com/blackwater-gg/craftworks/pkg/db/models"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		name     string
		progress int
		quantity int
		want     string
	}{
		{"empty", 0, 10, "░░░░░░░░░░"},
		{"half", 5, 10, "█████░░░░░"},
		{"full", 10, 10, "██████████"},
		{"rounds down", 1, 3, "███░░░░░░░"},
		{"zero quantity", 0, 0, "░░░░░░░░░░"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ProgressBar(tc.progress, tc.quantity); got != tc.want {
				t.Fatalf("ProgressBar(%d, %d) = %q, want %q", tc.progress, tc.quantity, got, tc.want)
			}
		})
	}
}

func TestOrderEmbed(t *testing.T) {
	order := &models.Order{
		ID:        7,
		Customer:  "Hafenmeister Udo",
		Item:      "Eisenbarren",
		Quantity:  10,
		Progress:  4,
		Notes:     "eilig",
		CreatedBy: "alice",
	}

	embed := OrderEmbed(order)

	if embed.Title != "Auftrag #7" {
		t.Fatalf("title = %q", embed.Title)
	}
	if embed.Color != colorActive {
		t.Fatalf("active order should use active color, got %#x", embed.Color)
	}
	if len(embed.Fields) != 5 {
		t.Fatalf("expected 5 fields incl. notes, got %d", len(embed.Fields))
	}
	if embed.Fields[3].Value != "████░░░░░░ 4/10" {
		t.Fatalf("progress field = %q", embed.Fields[3].Value)
	}
	if embed.Footer == nil || embed.Footer.Text != "Erstellt von alice" {
		t.Fatalf("footer = %+v", embed.Footer)
	}

	order.Completed = true
	order.Progress = 10
	done := OrderEmbed(order)
	if done.Color != colorComplete {
		t.Fatalf("completed order should use complete color, got %#x", done.Color)
	}
}

func TestRefFromOrder(t *testing.T) {
	if _, ok := RefFromOrder(&models.Order{}); ok {
		t.Fatal("order without surface ref must report no ref")
	}

	msg, ch := "m-1", "c-1"
	ref, ok := RefFromOrder(&models.Order{MessageID: &msg, ChannelID: &ch})
	if !ok || ref.MessageID != "m-1" || ref.ChannelID != "c-1" {
		t.Fatalf("unexpected ref: %+v ok=%v", ref, ok)
	}
}
