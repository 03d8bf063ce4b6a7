package machine

import (
	"fmt"
	"strings"

	"github.com/juju/errors"
	"github.com/vendsim/vender/currency"
)

var (
	ErrOutOfStock    = errors.New("out of stock")
	ErrNeedMoreMoney = errors.New("add-money")
	ErrDrinkUnknown  = errors.New("drink unknown")
	// ErrInsufficientChange is currency.ErrInsufficientChange, compare with errors.Cause.
	ErrInsufficientChange = currency.ErrInsufficientChange
)

type DrinkId uint8

const (
	DrinkCola DrinkId = iota
	DrinkWater
	DrinkCoffee
	DrinkCount
)

var drinkKeys = [DrinkCount]string{"cola", "water", "coffee"}

func (self DrinkId) Valid() bool { return self < DrinkCount }
func (self DrinkId) String() string {
	if !self.Valid() {
		return fmt.Sprintf("drink?%d", uint8(self))
	}
	return drinkKeys[self]
}

func ParseDrinkId(s string) (DrinkId, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, k := range drinkKeys {
		if k == s {
			return DrinkId(i), nil
		}
	}
	return 0, errors.Annotatef(ErrDrinkUnknown, "key=%s", s)
}

type Drink struct {
	Id    DrinkId
	Name  string
	Price currency.Amount
	Stock uint32
}

type Catalog [DrinkCount]Drink

type PaymentMethod uint8

const (
	PaymentNone PaymentMethod = iota
	PaymentCash
	PaymentCard
)

func (self PaymentMethod) String() string {
	switch self {
	case PaymentNone:
		return "none"
	case PaymentCash:
		return "cash"
	case PaymentCard:
		return "card"
	}
	return fmt.Sprintf("payment?%d", uint8(self))
}

type State uint8

const (
	StateIdle State = iota
	StateAwaitingCash
	StateCardReady
)

func (self State) String() string {
	switch self {
	case StateIdle:
		return "idle"
	case StateAwaitingCash:
		return "awaiting-cash"
	case StateCardReady:
		return "card-ready"
	}
	return fmt.Sprintf("state?%d", uint8(self))
}

// allowed[from] is bit set of valid next states
var allowed = [...]uint8{
	StateIdle:         1<<StateAwaitingCash | 1<<StateCardReady,
	StateAwaitingCash: 1 << StateIdle,
	StateCardReady:    1 << StateIdle,
}

func canTransition(from, to State) bool {
	if int(from) >= len(allowed) {
		return false
	}
	return allowed[from]&(1<<to) != 0
}

type InvalidStateError struct {
	Op    string
	State State
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("operation=%s not allowed in state=%s", e.Op, e.State.String())
}

func IsInvalidState(err error) bool {
	_, ok := errors.Cause(err).(*InvalidStateError)
	return ok
}

// Reason explains why purchase button is disabled.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonNoPayment
	ReasonOutOfStock
	ReasonNoMoney
)

func (self Reason) String() string {
	switch self {
	case ReasonNone:
		return ""
	case ReasonNoPayment:
		return "select payment first"
	case ReasonOutOfStock:
		return "out of stock"
	case ReasonNoMoney:
		return "not enough money"
	}
	return fmt.Sprintf("reason?%d", uint8(self))
}

// Context is consistent copy of machine state.
type Context struct {
	Catalog       Catalog
	State         State
	PaymentMethod PaymentMethod
	InsertedCash  currency.CashMap
	CashInventory currency.CashMap
	Activity      []string
	TxId          string
}

func (self *Context) InsertedTotal() currency.Amount { return self.InsertedCash.Total() }
