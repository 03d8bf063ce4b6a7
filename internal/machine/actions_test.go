package machine

import (
	"context"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendsim/vender/currency"
	"github.com/vendsim/vender/internal/engine"
	"github.com/vendsim/vender/log2"
)

func TestActions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		scenario string
		err      error
		check    func(testing.TB, Context)
	}{
		{"buy-cola-cash", "vm.cash vm.insert(1000) vm.insert(1000) vm.buy.cola", nil,
			func(t testing.TB, c Context) {
				assert.Equal(t, StateIdle, c.State)
				assert.Equal(t, uint32(4), c.Catalog[DrinkCola].Stock)
				assert.Equal(t, uint32(10-9), c.CashInventory.Get(currency.Denom100))
			}},
		{"card-cancel", "vm.card vm.cancel", nil,
			func(t testing.TB, c Context) { assert.Equal(t, StateIdle, c.State) }},
		{"admin", "admin.stock.water(2) admin.stock.coffee(-1) admin.cash.500(4)", nil,
			func(t testing.TB, c Context) {
				assert.Equal(t, uint32(3), c.Catalog[DrinkWater].Stock)
				assert.Equal(t, uint32(5), c.Catalog[DrinkCoffee].Stock)
				assert.Equal(t, uint32(4), c.CashInventory.Get(currency.Denom500))
			}},
		{"insert-invalid-nominal", "vm.cash vm.insert(200)", currency.ErrNominalInvalid,
			func(t testing.TB, c Context) { assert.True(t, c.InsertedCash.IsZero()) }},
		{"insert-idle", "vm.insert(1000)", nil, nil},
		{"need-more", "vm.cash vm.insert(500) vm.buy.coffee", ErrNeedMoreMoney,
			func(t testing.TB, c Context) { assert.Equal(t, StateAwaitingCash, c.State) }},
		{"admin-cash-negative", "admin.cash.100(-1)", nil, nil},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			log := log2.NewTest(t, log2.LDebug)
			e := engine.NewEngine(log)
			ctx := context.WithValue(context.Background(), engine.ContextKey, e)
			m := newTestMachine(t, DefaultConfig())
			m.RegisterActions(e)

			d, err := e.ParseText(c.name, c.scenario)
			require.NoError(t, err)
			err = e.ValidateExec(ctx, d)
			switch {
			case c.err != nil:
				require.Error(t, err)
				assert.Equal(t, c.err, errors.Cause(err))
			case c.check == nil:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
			if c.check != nil {
				c.check(t, m.Snapshot())
			}
		})
	}
}

func TestActionNames(t *testing.T) {
	t.Parallel()
	e := engine.NewEngine(log2.NewTest(t, log2.LDebug))
	m := newTestMachine(t, DefaultConfig())
	m.RegisterActions(e)
	names := e.List()
	for _, expect := range []string{
		"vm.cash", "vm.card", "vm.cancel", "vm.show", "vm.insert(?)",
		"vm.buy.cola", "vm.buy.water", "vm.buy.coffee",
		"admin.stock.cola(?)", "admin.cash.100(?)", "admin.cash.10000(?)",
	} {
		assert.Contains(t, names, expect)
	}

	d := e.Resolve("vm.card")
	require.IsType(t, engine.Func0{}, d)
	assert.Equal(t, "vm.card", d.String())
	require.NoError(t, d.Do(context.Background()))
	assert.Equal(t, StateCardReady, m.State())
}
