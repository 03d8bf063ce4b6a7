// Package machine is vending transaction state machine over cash ledger and drink catalog.
//
// Every operation takes machine lock, computes new values from copies, commits them together
// and releases lock before notifying subscribers. No reader sees stock decremented without
// cash inventory adjusted.
package machine

import (
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/vendsim/vender/currency"
	"github.com/vendsim/vender/helpers/atomic_clock"
	"github.com/vendsim/vender/internal/activity"
	"github.com/vendsim/vender/log2"
)

type Config struct {
	Catalog       Catalog
	CashInventory currency.CashMap
	ActivityMax   int
}

// DefaultConfig is seed catalog and cash inventory.
func DefaultConfig() Config {
	return Config{
		Catalog: Catalog{
			DrinkCola:   {Id: DrinkCola, Name: "Cola", Price: 1100, Stock: 5},
			DrinkWater:  {Id: DrinkWater, Name: "Water", Price: 600, Stock: 1},
			DrinkCoffee: {Id: DrinkCoffee, Name: "Coffee", Price: 700, Stock: 6},
		},
		CashInventory: currency.MustCashMap(map[currency.Nominal]uint32{
			100:   10,
			500:   0,
			1000:  6,
			5000:  2,
			10000: 1,
		}),
	}
}

type Machine struct {
	Log      *log2.Log
	Activity *activity.Log
	NewTxId  func() string

	lk        sync.Mutex
	catalog   Catalog
	state     State
	payment   PaymentMethod
	inserted  currency.CashMap
	inventory currency.CashMap
	txid      string
	txBegin   atomic_clock.Clock

	subLk sync.RWMutex
	subs  []Subscriber
}

func New(log *log2.Log, config Config) *Machine {
	self := &Machine{
		Log:       log,
		Activity:  activity.New(config.ActivityMax, log),
		NewTxId:   uuid.NewString,
		catalog:   config.Catalog,
		inventory: config.CashInventory,
	}
	for i := range self.catalog {
		self.catalog[i].Id = DrinkId(i)
	}
	return self
}

// Subscribe registers observer, called synchronously after each committed operation.
func (self *Machine) Subscribe(fun Subscriber) {
	self.subLk.Lock()
	self.subs = append(self.subs, fun)
	self.subLk.Unlock()
}

func (self *Machine) emit(e Event) {
	self.subLk.RLock()
	subs := self.subs
	self.subLk.RUnlock()
	for _, fun := range subs {
		fun(e)
	}
}

func (self *Machine) State() State {
	self.lk.Lock()
	defer self.lk.Unlock()
	return self.state
}

func (self *Machine) Snapshot() Context {
	self.lk.Lock()
	defer self.lk.Unlock()
	return self.locked_snapshot()
}

func (self *Machine) locked_snapshot() Context {
	c := self.locked_eventSnapshot()
	c.Activity = self.Activity.Lines()
	return c
}

// Event snapshot skips activity lines, copying whole log on every event is too much.
func (self *Machine) locked_eventSnapshot() Context {
	return Context{
		Catalog:       self.catalog,
		State:         self.state,
		PaymentMethod: self.payment,
		InsertedCash:  self.inserted,
		CashInventory: self.inventory,
		TxId:          self.txid,
	}
}

func (self *Machine) InsertedTotal() currency.Amount {
	self.lk.Lock()
	defer self.lk.Unlock()
	return self.inserted.Total()
}

func (self *Machine) IsPaymentReady() bool {
	self.lk.Lock()
	defer self.lk.Unlock()
	return self.locked_paymentReady()
}

func (self *Machine) locked_paymentReady() bool {
	return self.state == StateAwaitingCash || self.state == StateCardReady
}

// CanAfford is true for card payment, otherwise inserted total covers drink price.
func (self *Machine) CanAfford(id DrinkId) bool {
	self.lk.Lock()
	defer self.lk.Unlock()
	return self.locked_canAfford(id)
}

func (self *Machine) locked_canAfford(id DrinkId) bool {
	if !id.Valid() {
		return false
	}
	if self.payment == PaymentCard {
		return true
	}
	return self.inserted.Total() >= self.catalog[id].Price
}

// Availability reports whether purchase of drink is enabled and why not.
func (self *Machine) Availability(id DrinkId) (bool, Reason) {
	self.lk.Lock()
	defer self.lk.Unlock()
	return availability(self.locked_paymentReady(), self.catalog, id, self.locked_canAfford(id))
}

// Availability on snapshot, same rules as Machine.Availability.
func (self *Context) Availability(id DrinkId) (bool, Reason) {
	ready := self.State == StateAwaitingCash || self.State == StateCardReady
	afford := id.Valid() && (self.PaymentMethod == PaymentCard || self.InsertedCash.Total() >= self.Catalog[id].Price)
	return availability(ready, self.Catalog, id, afford)
}

func availability(ready bool, catalog Catalog, id DrinkId, afford bool) (bool, Reason) {
	switch {
	case !ready:
		return false, ReasonNoPayment
	case !id.Valid() || catalog[id].Stock == 0:
		return false, ReasonOutOfStock
	case !afford:
		return false, ReasonNoMoney
	}
	return true, ReasonNone
}

func (self *Machine) StartCashFlow() error { return self.startFlow("vm.cash", PaymentCash) }
func (self *Machine) StartCardFlow() error { return self.startFlow("vm.card", PaymentCard) }

func (self *Machine) startFlow(op string, method PaymentMethod) error {
	next := StateAwaitingCash
	if method == PaymentCard {
		next = StateCardReady
	}
	self.lk.Lock()
	if self.state != StateIdle || !canTransition(self.state, next) {
		err := &InvalidStateError{Op: op, State: self.state}
		self.lk.Unlock()
		return err
	}
	self.state = next
	self.payment = method
	self.txid = self.NewTxId()
	self.txBegin.SetNow()
	self.Activity.Pushf("payment: %s selected", method.String())
	self.Log.Debugf("%s txid=%s", op, self.txid)
	e := Event{Kind: EventPaymentSelected, Snapshot: self.locked_eventSnapshot()}
	self.lk.Unlock()

	self.emit(e)
	return nil
}

func (self *Machine) InsertCash(d currency.Denom) error {
	const op = "vm.insert"
	if !d.Valid() {
		return errors.Annotatef(currency.ErrNominalInvalid, "%s denom=%d", op, d)
	}
	self.lk.Lock()
	if self.state != StateAwaitingCash {
		err := &InvalidStateError{Op: op, State: self.state}
		self.lk.Unlock()
		return err
	}
	inventory, err := self.inventory.IncChecked(d, 1)
	if err != nil {
		self.lk.Unlock()
		return errors.Annotate(err, op)
	}
	self.inventory = inventory
	self.inserted = self.inserted.Inc(d, 1)
	self.Activity.Pushf("inserted %s (total %s)", d.String(), self.inserted.Total().Format())
	e := Event{Kind: EventCashInserted, Snapshot: self.locked_eventSnapshot()}
	self.lk.Unlock()

	self.emit(e)
	return nil
}

// Purchase dispenses drink and pays change, closing payment flow.
// Out of stock keeps flow open. Change impossible refunds all inserted cash and closes flow.
func (self *Machine) Purchase(id DrinkId) (Outcome, error) {
	self.lk.Lock()
	out, tx, err := self.locked_purchase(id)
	var e *Event
	if out.Kind != OutcomeNone {
		e = &Event{Kind: EventPurchase, Snapshot: self.locked_eventSnapshot(), Outcome: &out, Transaction: tx, Err: err}
	}
	self.lk.Unlock()

	if e != nil {
		self.emit(*e)
	}
	return out, err
}

func (self *Machine) locked_purchase(id DrinkId) (Outcome, *Transaction, error) {
	const op = "vm.buy"
	if !self.locked_paymentReady() {
		return Outcome{}, nil, &InvalidStateError{Op: op, State: self.state}
	}
	if !id.Valid() {
		return Outcome{}, nil, errors.Annotatef(ErrDrinkUnknown, "%s id=%d", op, id)
	}
	drink := self.catalog[id]
	out := Outcome{Drink: id, Method: self.payment}
	if drink.Stock == 0 {
		out.Kind = OutcomeOutOfStock
		return out, nil, errors.Annotatef(ErrOutOfStock, "%s drink=%s", op, id.String())
	}

	if self.payment == PaymentCard {
		self.catalog[id].Stock--
		self.Activity.Pushf("dispensed (card): %s", drink.Name)
		out.Kind = OutcomeDispensed
		return out, self.locked_finalizeToIdle(drink, out), nil
	}

	insertedTotal := self.inserted.Total()
	// Underfunded: reject and keep inserted cash, flow stays open for more coins.
	// No full refund here, unlike failed change plan below.
	if insertedTotal < drink.Price {
		return Outcome{}, nil, errors.Annotatef(ErrNeedMoreMoney, "%s drink=%s price=%s inserted=%s",
			op, id.String(), drink.Price.Format(), insertedTotal.Format())
	}
	changeAmount := insertedTotal - drink.Price
	if changeAmount == 0 {
		self.catalog[id].Stock--
		self.Activity.Pushf("dispensed (cash, change 0): %s", drink.Name)
		out.Kind = OutcomeDispensed
		return out, self.locked_finalizeToIdle(drink, out), nil
	}

	plan, planErr := currency.MakeChangePlan(changeAmount, self.inventory)
	if planErr != nil {
		refund := self.inserted
		inventory, err := self.inventory.SubChecked(refund)
		if err != nil {
			err = errors.Annotatef(err, "CRITICAL %s refund=%s inventory=%s", op, refund.String(), self.inventory.String())
			self.Log.Error(err)
			return Outcome{}, nil, err
		}
		self.inventory = inventory
		self.Activity.Pushf("change unavailable: refund %s", refund.Format())
		self.Log.Infof("%s drink=%s change=%s err=%v", op, id.String(), changeAmount.Format(), planErr)
		out.Kind = OutcomeInsufficientChange
		out.Refund = refund
		return out, self.locked_finalizeToIdle(drink, out), errors.Annotatef(planErr, "%s drink=%s", op, id.String())
	}

	inventory, err := self.inventory.SubChecked(plan)
	if err != nil {
		err = errors.Annotatef(err, "CRITICAL %s change=%s inventory=%s", op, plan.String(), self.inventory.String())
		self.Log.Error(err)
		return Outcome{}, nil, err
	}
	self.catalog[id].Stock--
	self.inventory = inventory
	self.Activity.Pushf("change paid: %s", plan.Format())
	out.Kind = OutcomeDispensed
	out.Change = plan
	return out, self.locked_finalizeToIdle(drink, out), nil
}

// Cancel refunds inserted cash, if any, and returns to idle.
func (self *Machine) Cancel() (Outcome, error) {
	const op = "vm.cancel"
	self.lk.Lock()
	if !self.locked_paymentReady() {
		err := &InvalidStateError{Op: op, State: self.state}
		self.lk.Unlock()
		return Outcome{}, err
	}
	out := Outcome{Kind: OutcomeRefund, Method: self.payment}
	if self.state == StateAwaitingCash && !self.inserted.IsZero() {
		refund := self.inserted
		inventory, err := self.inventory.SubChecked(refund)
		if err != nil {
			self.lk.Unlock()
			err = errors.Annotatef(err, "CRITICAL %s refund=%s", op, refund.String())
			self.Log.Error(err)
			return Outcome{}, err
		}
		self.inventory = inventory
		self.Activity.Pushf("cancel: refund %s", refund.Format())
		out.Refund = refund
	}
	tx := self.locked_finalizeToIdle(Drink{Id: DrinkCount}, out)
	e := Event{Kind: EventCancel, Snapshot: self.locked_eventSnapshot(), Outcome: &out, Transaction: tx}
	self.lk.Unlock()

	self.emit(e)
	return out, nil
}

// Caller must hold self.lk.
func (self *Machine) locked_finalizeToIdle(drink Drink, out Outcome) *Transaction {
	tx := &Transaction{
		Id:       self.txid,
		Drink:    drink.Id,
		Price:    drink.Price,
		Method:   self.payment,
		Inserted: self.inserted,
		Outcome:  out,
		Duration: atomic_clock.Since(&self.txBegin),
	}
	self.state = StateIdle
	self.payment = PaymentNone
	self.inserted = currency.CashMap{}
	self.txid = ""
	self.txBegin.Reset()
	self.Activity.Push("state -> idle")
	return tx
}

// AdminAddStock adds delta to drink stock, result is floored at zero. Allowed in any state.
func (self *Machine) AdminAddStock(id DrinkId, delta int) error {
	if !id.Valid() {
		return errors.Annotatef(ErrDrinkUnknown, "admin.stock id=%d", id)
	}
	self.lk.Lock()
	drink := &self.catalog[id]
	next := int64(drink.Stock) + int64(delta)
	if next < 0 {
		next = 0
	} else if next > math.MaxUint32 {
		self.lk.Unlock()
		return errors.NotValidf("admin.stock drink=%s stock=%d delta=%d overflow", id.String(), drink.Stock, delta)
	}
	drink.Stock = uint32(next)
	sign := ""
	if delta > 0 {
		sign = "+"
	}
	self.Activity.Pushf("admin: %s stock %s%d", drink.Name, sign, delta)
	e := Event{Kind: EventAdmin, Snapshot: self.locked_eventSnapshot()}
	self.lk.Unlock()

	self.emit(e)
	return nil
}

// AdminAddCash loads delta notes of denomination d into cash inventory. Allowed in any state.
func (self *Machine) AdminAddCash(d currency.Denom, delta uint32) error {
	if !d.Valid() {
		return errors.Annotatef(currency.ErrNominalInvalid, "admin.cash denom=%d", d)
	}
	self.lk.Lock()
	inventory, err := self.inventory.IncChecked(d, delta)
	if err != nil {
		self.lk.Unlock()
		return errors.NotValidf("admin.cash nominal=%s delta=%d: %v", d.String(), delta, err)
	}
	self.inventory = inventory
	self.Activity.Pushf("admin: %s x%d added", d.String(), delta)
	e := Event{Kind: EventAdmin, Snapshot: self.locked_eventSnapshot()}
	self.lk.Unlock()

	self.emit(e)
	return nil
}

func (self *Machine) String() string {
	c := self.Snapshot()
	return fmt.Sprintf("state=%s payment=%s inserted=%s inventory=%s",
		c.State.String(), c.PaymentMethod.String(), c.InsertedCash.String(), c.CashInventory.String())
}

