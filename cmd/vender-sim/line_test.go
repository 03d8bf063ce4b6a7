package main

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendsim/vender/currency"
	"github.com/vendsim/vender/internal/engine"
	"github.com/vendsim/vender/internal/machine"
	state_new "github.com/vendsim/vender/internal/state/new"
)

func TestParseLine(t *testing.T) {
	t.Parallel()

	_, g := state_new.NewTestContext(t, "", "")
	cases := []struct {
		line      string
		expectErr string
		check     func(testing.TB, engine.Doer)
	}{
		{"", "", func(t testing.TB, d engine.Doer) { assert.IsType(t, engine.Nothing{}, d) }},
		{"   ", "", func(t testing.TB, d engine.Doer) { assert.IsType(t, engine.Nothing{}, d) }},
		{"vm.cash @vm.insert(1000) s10", "", func(t testing.TB, d engine.Doer) {
			require.IsType(t, &engine.Seq{}, d)
			assert.Equal(t, 3, d.(*engine.Seq).Len())
		}},
		{"loop=3 admin.stock.cola(1)", "", func(t testing.TB, d engine.Doer) {
			require.IsType(t, engine.RepeatN{}, d)
			assert.Equal(t, uint(3), d.(engine.RepeatN).N)
		}},
		{"loop=2 loop=3", "multiple loop", nil},
		{"loop=x", "word=loop=x not valid", nil},
		{"loop=0 vm.cash", "word=loop=0 not valid", nil},
		{"vm.cash @", "invalid command", nil},
	}
	for _, c := range cases {
		c := c
		t.Run(c.line, func(t *testing.T) {
			d, err := parseLine(g.Engine, c.line)
			if c.expectErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), c.expectErr)
				return
			}
			require.NoError(t, err)
			c.check(t, d)
		})
	}

	_, err := parseLine(g.Engine, "vm.cash help")
	assert.Equal(t, errUsage, err)
}

func TestExecLine(t *testing.T) {
	t.Parallel()

	ctx, g := state_new.NewTestContext(t, "", "")
	require.NoError(t, execLine(ctx, g.Engine, "loop=2 admin.stock.water(1) admin.cash.500(3)"))
	c := g.Machine.Snapshot()
	assert.Equal(t, uint32(3), c.Catalog[machine.DrinkWater].Stock)
	assert.Equal(t, uint32(6), c.CashInventory.Get(currency.Denom500))

	require.NoError(t, execLine(ctx, g.Engine, "vm.cash vm.insert(5000) vm.buy.coffee"))
	c = g.Machine.Snapshot()
	assert.Equal(t, machine.StateIdle, c.State)
	assert.Equal(t, uint32(5), c.Catalog[machine.DrinkCoffee].Stock)

	err := execLine(ctx, g.Engine, "vm.buy.cola")
	assert.True(t, machine.IsInvalidState(errors.Cause(err)), "err=%v", err)

	err = execLine(ctx, g.Engine, "vm.teleport")
	assert.True(t, engine.IsNotResolved(err), "err=%v", err)
}
