package currency

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/juju/errors"
)

// Amount is integer counting lowest currency unit, e.g. 1,100 = 1100
// 64 bit: full CashMap total never overflows.
type Amount uint64

func (self Amount) String() string { return self.Format() }

// Format renders amount with thousands separators: 1900 -> "1,900"
func (self Amount) Format() string {
	s := strconv.FormatUint(uint64(self), 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + len(s)/3)
	head := len(s) % 3
	if head != 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() != 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// Nominal is value of one coin or bill
type Nominal Amount

// Denom is index of supported nominal. Closed set, see nominals.
type Denom uint8

const (
	Denom100 Denom = iota
	Denom500
	Denom1000
	Denom5000
	Denom10000

	DenomCount = iota
)

var nominals = [DenomCount]Nominal{100, 500, 1000, 5000, 10000}

// DenomsDesc is greedy expend order, largest nominal first.
var DenomsDesc = [DenomCount]Denom{Denom10000, Denom5000, Denom1000, Denom500, Denom100}

// DenomsAsc is display order for buttons and inventory lines.
var DenomsAsc = [DenomCount]Denom{Denom100, Denom500, Denom1000, Denom5000, Denom10000}

var (
	ErrNominalInvalid     = errors.New("nominal is not valid")
	ErrNominalCount       = errors.New("not enough nominals")
	ErrInsufficientChange = errors.New("insufficient change")
	ErrCountOverflow      = errors.New("nominal count overflow")
)

func (self Denom) Nominal() Nominal {
	if self >= DenomCount {
		panic(fmt.Sprintf("code error Denom=%d out of range", self))
	}
	return nominals[self]
}
func (self Denom) Amount() Amount { return Amount(self.Nominal()) }
func (self Denom) Valid() bool    { return self < DenomCount }
func (self Denom) String() string { return self.Amount().Format() }

func ParseNominal(n Nominal) (Denom, error) {
	for d, x := range nominals {
		if x == n {
			return Denom(d), nil
		}
	}
	return 0, errors.Annotatef(ErrNominalInvalid, "nominal=%d", n)
}

func ParseNominalString(s string) (Denom, error) {
	s = strings.Replace(s, ",", "", -1)
	u, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, errors.Annotatef(ErrNominalInvalid, "nominal=%s", s)
	}
	return ParseNominal(Nominal(u))
}

// CashMap counts coins and bills by denomination.
// Every supported denomination is always present.
// Value type: assignment copies, methods never modify receiver.
// 100  : 9
// 1000 : 1
// total: 1900
type CashMap [DenomCount]uint32

func NewCashMap(counts map[Nominal]uint32) (CashMap, error) {
	var m CashMap
	for n, c := range counts {
		d, err := ParseNominal(n)
		if err != nil {
			return CashMap{}, err
		}
		m[d] = c
	}
	return m, nil
}

func MustCashMap(counts map[Nominal]uint32) CashMap {
	m, err := NewCashMap(counts)
	if err != nil {
		panic("code error " + err.Error())
	}
	return m
}

func (self CashMap) Get(d Denom) uint32 { return self[d] }

// Inc wraps around on overflow, see IncChecked.
func (self CashMap) Inc(d Denom, count uint32) CashMap {
	self[d] += count
	return self
}

func (self CashMap) IncChecked(d Denom, count uint32) (CashMap, error) {
	if uint64(self[d])+uint64(count) > math.MaxUint32 {
		return self, errors.Annotatef(ErrCountOverflow, "nominal=%s have=%d add=%d", d.String(), self[d], count)
	}
	return self.Inc(d, count), nil
}

func (self CashMap) Total() Amount {
	sum := Amount(0)
	for d, count := range self {
		sum += Denom(d).Amount() * Amount(count)
	}
	return sum
}

func (self CashMap) IsZero() bool { return self == CashMap{} }

func (self CashMap) Add(other CashMap) CashMap {
	for d := range self {
		self[d] += other[d]
	}
	return self
}

// Covers reports whether every count in other fits into self.
func (self CashMap) Covers(other CashMap) bool {
	for d := range self {
		if other[d] > self[d] {
			return false
		}
	}
	return true
}

// Sub returns self-other per denomination.
// Precondition: self.Covers(other). Not checked, counts wrap around otherwise.
// Use SubChecked where other is not known to come from self.
func (self CashMap) Sub(other CashMap) CashMap {
	for d := range self {
		self[d] -= other[d]
	}
	return self
}

func (self CashMap) SubChecked(other CashMap) (CashMap, error) {
	for d := range self {
		if other[d] > self[d] {
			return self, errors.Annotatef(ErrNominalCount, "sub nominal=%s have=%d want=%d",
				Denom(d).String(), self[d], other[d])
		}
	}
	return self.Sub(other), nil
}

// Format is human readable composition, largest nominal first: "1,000 x1, 100 x9".
// Empty map formats as "0".
func (self CashMap) Format() string {
	parts := make([]string, 0, DenomCount)
	for _, d := range DenomsDesc {
		if c := self[d]; c > 0 {
			parts = append(parts, fmt.Sprintf("%s x%d", d.String(), c))
		}
	}
	if len(parts) == 0 {
		return "0"
	}
	return strings.Join(parts, ", ")
}

func (self CashMap) String() string {
	parts := make([]string, 0, DenomCount+1)
	for _, d := range DenomsAsc {
		if c := self[d]; c > 0 {
			parts = append(parts, fmt.Sprintf("%d:%d", d.Nominal(), c))
		}
	}
	parts = append(parts, fmt.Sprintf("total:%d", self.Total()))
	return strings.Join(parts, ",")
}

// ToMapUint32 fills wire representation, nominal -> count, zero counts skipped.
func (self CashMap) ToMapUint32(m map[uint32]uint32) {
	for d, c := range self {
		if c > 0 {
			m[uint32(Denom(d).Nominal())] = c
		}
	}
}

// MakeChangePlan computes composition of amount from inventory.
// Greedy, largest nominal first, no backtracking: may fail although another
// combination exists. Callers rely on this exact behavior.
func MakeChangePlan(amount Amount, inventory CashMap) (CashMap, error) {
	var plan CashMap
	remaining := amount
	for _, d := range DenomsDesc {
		value := d.Amount()
		use := remaining / value
		if have := Amount(inventory[d]); have < use {
			use = have
		}
		if use > 0 {
			plan[d] += uint32(use)
			remaining -= value * use
		}
	}
	if remaining != 0 {
		return CashMap{}, errors.Annotatef(ErrInsufficientChange, "amount=%s missing=%s", amount.Format(), remaining.Format())
	}
	return plan, nil
}
