package notify

import (
	"fmt"

	"github.com/blackwater-gg/craftworks/internal/surface"
	"github.com/blackwater-gg/craftworks/pkg/enums"
)

const (
	colorCreated   = 0x3498db
	colorProgress  = 0xf1c40f
	colorCompleted = 0x2ecc71
	colorHandedOff = 0x95a5a6
)

var embedTitles = map[enums.LedgerAction]string{
	enums.LedgerActionCreated:   "Neuer Auftrag",
	enums.LedgerActionProgress:  "Fortschritt aktualisiert",
	enums.LedgerActionCompleted: "Auftrag abgeschlossen",
	enums.LedgerActionHandedOff: "Auftrag abgegeben",
}

var embedColors = map[enums.LedgerAction]int{
	enums.LedgerActionCreated:   colorCreated,
	enums.LedgerActionProgress:  colorProgress,
	enums.LedgerActionCompleted: colorCompleted,
	enums.LedgerActionHandedOff: colorHandedOff,
}

// EventEmbed renders the mirror-channel embed for one lifecycle event.
func EventEmbed(event OrderEvent) surface.Embed {
	embed := surface.Embed{
		Title:       fmt.Sprintf("%s — Auftrag #%d", embedTitles[event.Action], event.OrderID),
		Description: event.Detail,
		Color:       embedColors[event.Action],
		Fields: []surface.EmbedField{
			{Name: "Kunde", Value: event.Customer, Inline: true},
			{Name: "Item", Value: event.Item, Inline: true},
		},
		Footer: &surface.EmbedFooter{Text: fmt.Sprintf("Von %s", event.ActorName)},
	}

	if event.Action == enums.LedgerActionCreated || event.Action == enums.LedgerActionProgress {
		embed.Fields = append(embed.Fields, surface.EmbedField{
			Name: "Fortschritt",
			Value: fmt.Sprintf("%s %d/%d", surface.ProgressBar(event.Progress, event.Quantity),
				event.Progress, event.Quantity),
		})
	}
	return embed
}
