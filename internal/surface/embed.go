package surface

import (
	"fmt"
	"strings"

	"github.com/blackwater-gg/craftworks/pkg/db/models"
)

const (
	colorActive   = 0x3498db
	colorComplete = 0x2ecc71

	progressBarSlots = 10
)

// Embed mirrors the message embed wire format of the external channel.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

// ProgressBar renders a fixed-width bar like "███░░░░░░░".
func ProgressBar(progress, quantity int) string {
	if quantity <= 0 {
		return strings.Repeat("░", progressBarSlots)
	}
	filled := progress * progressBarSlots / quantity
	if filled < 0 {
		filled = 0
	}
	if filled > progressBarSlots {
		filled = progressBarSlots
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", progressBarSlots-filled)
}

// OrderEmbed builds the embed representing an order's current state.
func OrderEmbed(order *models.Order) Embed {
	color := colorActive
	status := "In Arbeit"
	if order.Completed {
		color = colorComplete
		status = "Abgeschlossen"
	}

	embed := Embed{
		Title: fmt.Sprintf("Auftrag #%d", order.ID),
		Color: color,
		Fields: []EmbedField{
			{Name: "Kunde", Value: order.Customer, Inline: true},
			{Name: "Item", Value: order.Item, Inline: true},
			{Name: "Status", Value: status, Inline: true},
			{
				Name: "Fortschritt",
				Value: fmt.Sprintf("%s %d/%d", ProgressBar(order.Progress, order.Quantity),
					order.Progress, order.Quantity),
			},
		},
		Footer: &EmbedFooter{Text: fmt.Sprintf("Erstellt von %s", order.CreatedBy)},
	}
	if order.Notes != "" {
		embed.Fields = append(embed.Fields, EmbedField{Name: "Notizen", Value: order.Notes})
	}
	return embed
}
