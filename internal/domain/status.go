package domain

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusAccepted  OrderStatus = "ACCEPTED"
	StatusRejected  OrderStatus = "REJECTED"
	StatusInPrep    OrderStatus = "IN_PREP"
	StatusReady     OrderStatus = "READY"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusBilled    OrderStatus = "BILLED"
)

// PaymentStatus is a second axis over the same order: an order can be
// accepted, prepared and delivered before or after the payment settles.
// The two enums are never merged.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
	PaymentExpired PaymentStatus = "EXPIRED"
)

// transitions lists the legal fulfillment moves. BILLED is handled
// separately: it is reachable from any non-BILLED state and idempotent.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:  {StatusAccepted, StatusRejected},
	StatusAccepted: {StatusInPrep},
	StatusInPrep:   {StatusReady},
	StatusReady:    {StatusDelivered},
}

// CanTransition reports whether an order currently in from may move to to.
func CanTransition(from, to OrderStatus) bool {
	if to == StatusBilled {
		return from != StatusBilled
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PriorStatuses returns every state from which to is directly reachable,
// used to build the conditional-update predicate that guards a transition.
func PriorStatuses(to OrderStatus) []OrderStatus {
	if to == StatusBilled {
		return []OrderStatus{StatusPending, StatusAccepted, StatusRejected, StatusInPrep, StatusReady, StatusDelivered}
	}
	var from []OrderStatus
	for current, nexts := range transitions {
		for _, next := range nexts {
			if next == to {
				from = append(from, current)
			}
		}
	}
	return from
}
