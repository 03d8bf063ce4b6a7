package tele_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendsim/vender/currency"
	"github.com/vendsim/vender/internal/machine"
	"github.com/vendsim/vender/internal/state"
	state_new "github.com/vendsim/vender/internal/state/new"
	"github.com/vendsim/vender/internal/tele"
	tele_api "github.com/vendsim/vender/tele"
)

const testVmId = 7

type tenv struct {
	ctx  context.Context
	g    *state.Global
	mock *transportMock
}

func newTenv(t testing.TB, extraConfig string) *tenv {
	mock := &transportMock{t: t, outBuffer: 32, networkTimeout: 2 * time.Second}
	config := fmt.Sprintf("tele { enable = true vm_id = %d }\n%s", testVmId, extraConfig)
	ctx, g := state_new.NewTestContextTele(t, "test-version", config, tele.NewWithTransporter(mock))
	return &tenv{ctx: ctx, g: g, mock: mock}
}

func (env *tenv) exec(t testing.TB, scenario string) {
	d, err := env.g.Engine.ParseText("test", scenario)
	require.NoError(t, err)
	require.NoError(t, env.g.Engine.ValidateExec(env.ctx, d))
}

func (env *tenv) command(t testing.TB, cmd *tele_api.Command) {
	payload, err := proto.Marshal(cmd)
	require.NoError(t, err)
	assert.True(t, env.mock.onCommand(env.ctx, payload))
}

func receiveTelemetry(t testing.TB, ch <-chan []byte) *tele_api.Telemetry {
	select {
	case b := <-ch:
		var tm tele_api.Telemetry
		require.NoError(t, proto.Unmarshal(b, &tm))
		return &tm
	case <-time.After(5 * time.Second):
		t.Fatal("telemetry timeout")
	}
	return nil
}

func receiveResponse(t testing.TB, ch <-chan []byte) *tele_api.Response {
	select {
	case b := <-ch:
		var r tele_api.Response
		require.NoError(t, proto.Unmarshal(b, &r))
		return &r
	case <-time.After(5 * time.Second):
		t.Fatal("response timeout")
	}
	return nil
}

func drainStates(ch <-chan []byte) []tele_api.State {
	ss := make([]tele_api.State, 0)
	for {
		select {
		case b := <-ch:
			ss = append(ss, tele_api.State(b[0]))
		default:
			return ss
		}
	}
}

func TestTransaction(t *testing.T) {
	t.Parallel()

	env := newTenv(t, "")
	defer env.g.Tele.Close()
	assert.Equal(t, []tele_api.State{tele_api.State_Boot, tele_api.State_Nominal}, drainStates(env.mock.outState))

	env.exec(t, "vm.cash vm.insert(1000) vm.insert(100) vm.buy.water")
	tm := receiveTelemetry(t, env.mock.outTelemetry)
	assert.Equal(t, int32(testVmId), tm.VmId)
	assert.Equal(t, "test-version", tm.BuildVersion)
	assert.NotZero(t, tm.Time)
	require.NotNil(t, tm.Transaction)
	tx := tm.Transaction
	assert.NotEmpty(t, tx.TxId)
	assert.Equal(t, "water", tx.Drink)
	assert.Equal(t, uint64(600), tx.Price)
	assert.Equal(t, "cash", tx.Method)
	assert.Equal(t, uint64(1100), tx.Inserted)
	assert.Equal(t, uint64(500), tx.Change)
	assert.Equal(t, "dispensed", tx.Outcome)
	assert.Equal(t, map[uint32]uint32{100: 5}, tx.ChangeCash)
	require.NotNil(t, tm.Stat)
	assert.Equal(t, uint32(1), tm.Stat.Transactions)

	assert.Equal(t, []tele_api.State{tele_api.State_Client, tele_api.State_Nominal}, drainStates(env.mock.outState))
}

func TestInsufficientChange(t *testing.T) {
	t.Parallel()

	env := newTenv(t, `money { cash "100" { count = 0 } }`)
	defer env.g.Tele.Close()

	env.exec(t, "vm.cash vm.insert(1000)")
	d, err := env.g.Engine.ParseText("test", "vm.buy.water")
	require.NoError(t, err)
	err = env.g.Engine.ValidateExec(env.ctx, d)
	assert.Equal(t, machine.ErrInsufficientChange, errors.Cause(err))
	tm := receiveTelemetry(t, env.mock.outTelemetry)
	require.NotNil(t, tm.Transaction)
	assert.Equal(t, "insufficient-change", tm.Transaction.Outcome)
	assert.Equal(t, uint64(1000), tm.Transaction.Refund)
	assert.Equal(t, uint64(0), tm.Transaction.Change)
	assert.Equal(t, uint32(1), tm.Stat.ChangeFailures)
	assert.Equal(t, uint32(1), tm.Stat.Refunds)
	assert.Equal(t, uint32(0), tm.Stat.Transactions)
}

func TestCommand(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		cmd   tele_api.Command
		check func(testing.TB, *tenv, *tele_api.Response)
	}{
		{name: "report",
			cmd: tele_api.Command{Report: &tele_api.Command_ArgReport{}},
			check: func(t testing.TB, env *tenv, r *tele_api.Response) {
				assert.Equal(t, "", r.Error)
				tm := receiveTelemetry(t, env.mock.outTelemetry)
				require.NotNil(t, tm.Inventory)
				assert.Equal(t, uint32(6), tm.Inventory.Cash[1000])
				assert.Equal(t, uint32(5), tm.Inventory.Stock["cola"])
				assert.Equal(t, uint32(1), tm.Inventory.Stock["water"])
			}},
		{name: "exec",
			cmd: tele_api.Command{Exec: &tele_api.Command_ArgExec{Scenario: "admin.stock.water(3) admin.cash.500(2)"}},
			check: func(t testing.TB, env *tenv, r *tele_api.Response) {
				assert.Equal(t, "", r.Error)
				c := env.g.Machine.Snapshot()
				assert.Equal(t, uint32(4), c.Catalog[machine.DrinkWater].Stock)
				assert.Equal(t, uint32(2), c.CashInventory.Get(currency.Denom500))
			}},
		{name: "exec-invalid-state",
			cmd: tele_api.Command{Exec: &tele_api.Command_ArgExec{Scenario: "vm.buy.cola"}},
			check: func(t testing.TB, env *tenv, r *tele_api.Response) {
				assert.Contains(t, r.Error, "not allowed in state=idle")
				assert.Equal(t, machine.StateIdle, env.g.Machine.State())
			}},
		{name: "exec-unknown",
			cmd: tele_api.Command{Exec: &tele_api.Command_ArgExec{Scenario: "vm.teleport"}},
			check: func(t testing.TB, env *tenv, r *tele_api.Response) {
				assert.Contains(t, r.Error, "not resolved")
			}},
		{name: "unsupported",
			cmd: tele_api.Command{},
			check: func(t testing.TB, env *tenv, r *tele_api.Response) {
				assert.Contains(t, r.Error, "not supported")
			}},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			env := newTenv(t, "")
			defer env.g.Tele.Close()

			cmd := c.cmd
			cmd.Id = 42
			cmd.ReplyTopic = "cmd-reply"
			env.command(t, &cmd)
			r := receiveResponse(t, env.mock.outResponse)
			assert.Equal(t, uint32(42), r.CommandId)
			assert.Equal(t, "", r.INTERNALTopic)
			c.check(t, env, r)
		})
	}
}

func TestCommandNoReplyTopic(t *testing.T) {
	t.Parallel()

	env := newTenv(t, "")
	defer env.g.Tele.Close()
	env.command(t, &tele_api.Command{Id: 1, Report: &tele_api.Command_ArgReport{}})
	// report telemetry still goes out, response is dropped
	tm := receiveTelemetry(t, env.mock.outTelemetry)
	assert.NotNil(t, tm.Inventory)
	select {
	case b := <-env.mock.outResponse:
		t.Fatalf("unexpected response=%x", b)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestError(t *testing.T) {
	t.Parallel()

	env := newTenv(t, "")
	defer env.g.Tele.Close()
	env.g.Error(errors.New("test-error"), "context=%d", 5)
	tm := receiveTelemetry(t, env.mock.outTelemetry)
	require.NotNil(t, tm.Error)
	assert.Equal(t, "context=5: test-error", tm.Error.Message)
}

func TestDisabled(t *testing.T) {
	t.Parallel()

	mock := &transportMock{t: t}
	ctx, g := state_new.NewTestContextTele(t, "", "", tele.NewWithTransporter(mock))
	defer g.Tele.Close()
	assert.Nil(t, mock.onCommand, "disabled tele must not init transport")
	require.NoError(t, g.Tele.Report(ctx, false))
	g.Tele.Error(errors.New("ignored"))
}
