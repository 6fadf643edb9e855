package enums

import "fmt"

// LedgerAction describes the allowed values for the `action` column in
// order_history. The wire values keep the legacy German spelling so that
// ledgers written by the original bot replay unchanged.
type LedgerAction string

const (
	LedgerActionCreated   LedgerAction = "ERSTELLT"
	LedgerActionProgress  LedgerAction = "FORTSCHRITT"
	LedgerActionCompleted LedgerAction = "ABGESCHLOSSEN"
	LedgerActionHandedOff LedgerAction = "ABGEGEBEN"
)

var validLedgerActions = []LedgerAction{
	LedgerActionCreated,
	LedgerActionProgress,
	LedgerActionCompleted,
	LedgerActionHandedOff,
}

// IsValid reports whether the value matches the canonical ledger action enum.
func (a LedgerAction) IsValid() bool {
	for _, candidate := range validLedgerActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseLedgerAction converts the raw string to LedgerAction.
func ParseLedgerAction(value string) (LedgerAction, error) {
	for _, candidate := range validLedgerActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger action %q", value)
}
