// Package ui renders machine snapshot as text panels for terminal.
package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/juju/errors"
	"github.com/skip2/go-qrcode"
	"github.com/vendsim/vender/currency"
	"github.com/vendsim/vender/internal/machine"
	ui_config "github.com/vendsim/vender/internal/ui/config"
	"github.com/vendsim/vender/log2"
)

const msgLogEmpty = "(log is empty)"

type UI struct {
	Log *log2.Log

	config ui_config.Config
	mu     sync.Mutex
	w      io.Writer
}

func New(log *log2.Log, config ui_config.Config, w io.Writer) *UI {
	return &UI{Log: log, config: config, w: w}
}

func (self *UI) money(a currency.Amount) string {
	return a.Format() + self.config.CurrencySuffix
}

// Render returns payment, products and admin panels.
func (self *UI) Render(c machine.Context) string {
	var b strings.Builder
	self.renderPayment(&b, &c)
	self.renderProducts(&b, &c)
	self.renderAdmin(&b, &c)
	return b.String()
}

func (self *UI) renderPayment(b *strings.Builder, c *machine.Context) {
	b.WriteString("== 1) payment ==\n")
	switch c.State {
	case machine.StateIdle:
		b.WriteString("select payment: vm.cash | vm.card\n")
	case machine.StateAwaitingCash:
		fmt.Fprintf(b, "inserted: %s\n", self.money(c.InsertedTotal()))
		b.WriteString("status: inserting cash, vm.insert(")
		for i, d := range currency.DenomsAsc {
			if i != 0 {
				b.WriteString("|")
			}
			fmt.Fprintf(b, "%d", d.Nominal())
		}
		b.WriteString(") or vm.cancel\n")
	case machine.StateCardReady:
		b.WriteString("method: card (approved)\n")
		b.WriteString("status: select product or vm.cancel\n")
	}
}

func (self *UI) renderProducts(b *strings.Builder, c *machine.Context) {
	b.WriteString("== 2) products ==\n")
	for _, d := range c.Catalog {
		stock := "sold out"
		if d.Stock > 0 {
			stock = fmt.Sprintf("stock %d", d.Stock)
		}
		action := "vm.buy." + d.Id.String()
		if ok, reason := c.Availability(d.Id); !ok {
			action = reason.String()
		}
		fmt.Fprintf(b, "%-8s %10s  %-9s  %s\n", d.Name, self.money(d.Price), stock, action)
	}
}

func (self *UI) renderAdmin(b *strings.Builder, c *machine.Context) {
	b.WriteString("== admin ==\n")
	lines := c.Activity
	if n := self.config.LogLines; n > 0 && len(lines) > n {
		lines = lines[:n]
	}
	if len(lines) == 0 {
		b.WriteString("  " + msgLogEmpty + "\n")
	}
	for _, line := range lines {
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("cash:")
	for _, d := range currency.DenomsAsc {
		fmt.Fprintf(b, " %s x %d", self.money(d.Amount()), c.CashInventory.Get(d))
	}
	b.WriteString("\n")
}

// OutcomeText is user notification for completed purchase or cancel.
func (self *UI) OutcomeText(c *machine.Context, out *machine.Outcome) string {
	name := ""
	if out.Drink.Valid() {
		name = c.Catalog[out.Drink].Name
	}
	switch out.Kind {
	case machine.OutcomeDispensed:
		if out.Change.IsZero() {
			return fmt.Sprintf("dispensed %s", name)
		}
		return fmt.Sprintf("dispensed %s, change %s (%s)", name, self.money(out.Change.Total()), out.Change.Format())
	case machine.OutcomeInsufficientChange:
		return fmt.Sprintf("cannot give change, refunded %s", self.money(out.Refund.Total()))
	case machine.OutcomeOutOfStock:
		return fmt.Sprintf("%s is out of stock", name)
	case machine.OutcomeRefund:
		if out.Refund.IsZero() {
			return "cancelled"
		}
		return fmt.Sprintf("cancelled, refunded %s", self.money(out.Refund.Total()))
	}
	return ""
}

// OnEvent is machine subscriber, prints outcome and optional receipt.
func (self *UI) OnEvent(e machine.Event) {
	if e.Outcome == nil {
		return
	}
	text := self.OutcomeText(&e.Snapshot, e.Outcome)
	if text == "" {
		return
	}
	self.mu.Lock()
	defer self.mu.Unlock()
	fmt.Fprintf(self.w, "* %s\n", text)
	if self.config.ReceiptQR && e.Transaction != nil && e.Outcome.Kind == machine.OutcomeDispensed {
		qr, err := Receipt(e.Transaction)
		if err != nil {
			self.Log.Error(errors.Annotate(err, "ui receipt"))
			return
		}
		io.WriteString(self.w, qr) //nolint:errcheck
	}
}

// ReceiptText is payload of receipt QR code.
func ReceiptText(tx *machine.Transaction) string {
	return fmt.Sprintf("tx=%s drink=%s price=%d method=%s change=%d",
		tx.Id, tx.Drink.String(), tx.Price, tx.Method.String(), tx.Outcome.Change.Total())
}

// Receipt renders transaction QR code with half block characters, two modules per line.
func Receipt(tx *machine.Transaction) (string, error) {
	qr, err := qrcode.New(ReceiptText(tx), qrcode.Medium)
	if err != nil {
		return "", errors.Annotatef(err, "qrcode tx=%s", tx.Id)
	}
	return renderBitmap(qr.Bitmap()), nil
}

func renderBitmap(bitmap [][]bool) string {
	var b strings.Builder
	for y := 0; y < len(bitmap); y += 2 {
		for x := range bitmap[y] {
			top := bitmap[y][x]
			bottom := y+1 < len(bitmap) && bitmap[y+1][x]
			switch {
			case top && bottom:
				b.WriteRune('█')
			case top:
				b.WriteRune('▀')
			case bottom:
				b.WriteRune('▄')
			default:
				b.WriteRune(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
