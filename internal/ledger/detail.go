package ledger

import (
	"fmt"
	"regexp"
	"strconv"
)

// The detail column carries the legacy encoding that existing ledgers were
// written with. Writer and parser live together here so the grammar cannot
// drift between them.
const (
	createdDetailPrefix  = "Auftrag erstellt: "
	progressDetailPrefix = "Fortschritt geändert: "
	automaticSuffix      = " (Automatisch beim Abschließen)"

	// DetailCompleted and DetailHandedOff are fixed-text details.
	DetailCompleted = "Auftrag wurde abgeschlossen"
	DetailHandedOff = "Auftrag wurde abgegeben und gelöscht"

	// UnknownField is reported when a detail cannot be parsed back.
	UnknownField = "unknown"
)

var (
	createdDetailPattern  = regexp.MustCompile(`(\d+)x (.+) für (.+)`)
	progressDetailPattern = regexp.MustCompile(`(\d+) → (\d+)`)
)

// EncodeCreatedDetail renders the detail for a creation entry.
func EncodeCreatedDetail(quantity int, item, customer string) string {
	return fmt.Sprintf("%s%dx %s für %s", createdDetailPrefix, quantity, item, customer)
}

// EncodeProgressDetail renders the detail for a progress entry. Automatic
// marks progress synthesized by an early completion.
func EncodeProgressDetail(oldValue, newValue int, automatic bool) string {
	detail := fmt.Sprintf("%s%d → %d", progressDetailPrefix, oldValue, newValue)
	if automatic {
		detail += automaticSuffix
	}
	return detail
}

// CreatedDetail is the decoded form of a creation entry's detail.
type CreatedDetail struct {
	Quantity int
	Item     string
	Customer string
}

// ParseCreatedDetail decodes a creation detail. The grammar is matched
// anywhere in the string so both prefixed and bare legacy details parse.
func ParseCreatedDetail(detail string) (CreatedDetail, bool) {
	m := createdDetailPattern.FindStringSubmatch(detail)
	if m == nil {
		return CreatedDetail{Quantity: 0, Item: UnknownField, Customer: UnknownField}, false
	}
	qty, err := strconv.Atoi(m[1])
	if err != nil {
		return CreatedDetail{Quantity: 0, Item: UnknownField, Customer: UnknownField}, false
	}
	return CreatedDetail{Quantity: qty, Item: m[2], Customer: m[3]}, true
}

// ProgressDetail is the decoded form of a progress entry's detail.
type ProgressDetail struct {
	Old int
	New int
}

// Delta returns the signed progress change.
func (p ProgressDetail) Delta() int {
	return p.New - p.Old
}

// ParseProgressDetail decodes a progress detail.
func ParseProgressDetail(detail string) (ProgressDetail, bool) {
	m := progressDetailPattern.FindStringSubmatch(detail)
	if m == nil {
		return ProgressDetail{}, false
	}
	oldValue, err := strconv.Atoi(m[1])
	if err != nil {
		return ProgressDetail{}, false
	}
	newValue, err := strconv.Atoi(m[2])
	if err != nil {
		return ProgressDetail{}, false
	}
	return ProgressDetail{Old: oldValue, New: newValue}, true
}
