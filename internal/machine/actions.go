package machine

import (
	"context"
	"fmt"

	"github.com/juju/errors"
	"github.com/vendsim/vender/currency"
	"github.com/vendsim/vender/internal/engine"
)

// RegisterActions exposes machine operations as engine actions:
// vm.cash vm.card vm.cancel vm.insert(?) vm.buy.<drink> vm.show
// admin.stock.<drink>(?) admin.cash.<nominal>(?)
func (self *Machine) RegisterActions(e *engine.Engine) {
	e.Register("vm.cash", engine.Func0{Name: "vm.cash", F: self.StartCashFlow})
	e.Register("vm.card", engine.Func0{Name: "vm.card", F: self.StartCardFlow})
	e.RegisterNewFunc("vm.cancel", func(context.Context) error {
		_, err := self.Cancel()
		return err
	})
	e.RegisterNewFunc("vm.show", func(context.Context) error {
		self.Log.Infof("vm.show %s", self.String())
		return nil
	})
	e.RegisterNewFuncArg("vm.insert(?)", func(ctx context.Context, arg engine.Arg) error {
		if arg <= 0 {
			return errors.Annotatef(currency.ErrNominalInvalid, "vm.insert nominal=%d", arg)
		}
		d, err := currency.ParseNominal(currency.Nominal(arg))
		if err != nil {
			return errors.Annotate(err, "vm.insert")
		}
		return self.InsertCash(d)
	})

	for i := DrinkId(0); i < DrinkCount; i++ {
		id := i
		e.RegisterNewFunc("vm.buy."+id.String(), func(context.Context) error {
			_, err := self.Purchase(id)
			return err
		})
		e.RegisterNewFuncArg(fmt.Sprintf("admin.stock.%s(?)", id.String()), func(ctx context.Context, arg engine.Arg) error {
			return self.AdminAddStock(id, int(arg))
		})
	}

	for _, d := range currency.DenomsAsc {
		d := d
		e.RegisterNewFuncArg(fmt.Sprintf("admin.cash.%d(?)", d.Nominal()), func(ctx context.Context, arg engine.Arg) error {
			if arg < 0 {
				return errors.NotValidf("admin.cash nominal=%s count=%d", d.String(), arg)
			}
			return self.AdminAddCash(d, uint32(arg))
		})
	}
}
