package machine

import (
	"fmt"
	"time"

	"github.com/vendsim/vender/currency"
)

type OutcomeKind uint8

const (
	OutcomeNone OutcomeKind = iota
	OutcomeDispensed
	OutcomeInsufficientChange
	OutcomeRefund
	OutcomeOutOfStock
)

func (self OutcomeKind) String() string {
	switch self {
	case OutcomeNone:
		return "none"
	case OutcomeDispensed:
		return "dispensed"
	case OutcomeInsufficientChange:
		return "insufficient-change"
	case OutcomeRefund:
		return "refund"
	case OutcomeOutOfStock:
		return "out-of-stock"
	}
	return fmt.Sprintf("outcome?%d", uint8(self))
}

// Outcome is customer-visible result of Purchase or Cancel.
type Outcome struct {
	Kind   OutcomeKind
	Drink  DrinkId
	Method PaymentMethod
	Change currency.CashMap
	Refund currency.CashMap
}

type EventKind uint8

const (
	EventPaymentSelected EventKind = iota + 1
	EventCashInserted
	EventPurchase
	EventCancel
	EventAdmin
)

func (self EventKind) String() string {
	switch self {
	case EventPaymentSelected:
		return "payment-selected"
	case EventCashInserted:
		return "cash-inserted"
	case EventPurchase:
		return "purchase"
	case EventCancel:
		return "cancel"
	case EventAdmin:
		return "admin"
	}
	return fmt.Sprintf("event?%d", uint8(self))
}

// Transaction summarizes closed payment flow.
type Transaction struct {
	Id       string
	Drink    DrinkId
	Price    currency.Amount
	Method   PaymentMethod
	Inserted currency.CashMap
	Outcome  Outcome
	Duration time.Duration
}

// Event is delivered to subscribers after the operation is committed.
// Snapshot reflects machine state right after this operation.
// Snapshot.Activity is nil, Machine.Snapshot() includes log lines.
type Event struct {
	Kind        EventKind
	Snapshot    Context
	Outcome     *Outcome
	Transaction *Transaction
	Err         error
}

type Subscriber func(Event)
