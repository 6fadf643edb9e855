package enums

// OrderState is the derived lifecycle state of a live order.
type OrderState string

const (
	OrderStateActive   OrderState = "active"
	OrderStateComplete OrderState = "complete"
)

// ArchivedStatus classifies an order that only the ledger remembers.
type ArchivedStatus string

const (
	// ArchivedStatusHandedOff means the order went through the regular
	// hand-off transition before deletion.
	ArchivedStatusHandedOff ArchivedStatus = "handed_off"
	// ArchivedStatusDeleted covers rows that vanished without a hand-off
	// entry, e.g. manual cleanup in the database.
	ArchivedStatusDeleted ArchivedStatus = "deleted"
)

// StateFor derives the lifecycle state from the completed flag.
func StateFor(completed bool) OrderState {
	if completed {
		return OrderStateComplete
	}
	return OrderStateActive
}
