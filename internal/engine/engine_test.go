package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendsim/vender/log2"
)

type mockdo struct {
	name   string
	called int32
	err    error
	lk     sync.Mutex
	v      ValidateFunc
}

func (self *mockdo) Validate() error { return useValidator(self.v) }
func (self *mockdo) Do(ctx context.Context) error {
	self.lk.Lock()
	self.called += 1
	self.lk.Unlock()
	return self.err
}
func (self *mockdo) String() string { return self.name }

func TestNotResolved(t *testing.T) {
	t.Parallel()

	_, e := newTestContext(t)
	require.NoError(t, e.RegisterParse("root", "vm.cash vm.insert(1000) vm.buy.cola"))
	e.Register("vm.cash", Nothing{})
	e.Register("vm.buy.cola", Nothing{})

	assert.True(t, IsNotResolved(NewErrNotResolved("vm.refill")))
	for _, s := range []string{"vm.cash", "vm.buy.cola"} {
		x := e.Resolve(s)
		assert.False(t, IsNotResolved(x), "x=%#v", x)
	}
	for _, s := range []string{"vm.refill", "vm.insert(1000)", "vm.buy.tea"} {
		x := e.Resolve(s)
		assert.True(t, IsNotResolved(x), "x=%#v", x)
	}
}

func TestResolveLazyArg(t *testing.T) {
	t.Parallel()

	ctx, e := newTestContext(t)

	// lazy reference step(?) before register
	require.NoError(t, e.RegisterParse("seq(?)", "sub step(?) fixed(2)"))
	require.NoError(t, e.RegisterParse("fixed(?)", "ignore(?) inc"))
	require.NoError(t, e.RegisterParse("sub", "fixed(3) fixed(4)"))

	success := 0
	e.RegisterNewFunc("inc", func(ctx context.Context) error { success++; return nil })
	e.Register("step(?)", FuncArg{Name: "step", F: func(ctx context.Context, arg Arg) error {
		if arg == 42 {
			success++
			return nil
		}
		err := errors.Errorf("unexpected arg=%v", arg)
		assert.NoError(t, err)
		return err
	}})

	e.TestDo(t, ctx, "seq(42)")
	assert.Equal(t, 1*4, success)
	e.TestDo(t, ctx, "seq(42)") // same arg again
	assert.Equal(t, 2*4, success)
}

func TestNegativeArg(t *testing.T) {
	t.Parallel()

	ctx, e := newTestContext(t)
	var got Arg
	e.RegisterNewFuncArg("admin.stock.cola(?)", func(ctx context.Context, arg Arg) error { got = arg; return nil })
	e.TestDo(t, ctx, "admin.stock.cola(-3)")
	assert.Equal(t, Arg(-3), got)

	d := e.Resolve("admin.stock.cola(?)")
	err := d.Validate()
	require.Error(t, err)
	assert.Equal(t, ErrArgNotApplied, errors.Cause(err))
}

func TestParseText(t *testing.T) {
	t.Parallel()

	ctx, e := newTestContext(t)
	doHello, doWorld := &mockdo{}, Func0{F: func() error { return nil }}
	e.Register("hello", doHello) // eager register
	require.NoError(t, e.RegisterParse("subseq", "hello subarg(42)"))
	require.NoError(t, e.RegisterParse("subarg(?)", "world funarg(?)"))

	d, err := e.ParseText("root", "\n  hello\n  \n world   \n\nsubseq")
	require.NoError(t, err, "ParseText")

	err = d.Validate() // second action is not resolved
	require.Error(t, err)
	assert.Contains(t, err.Error(), "world not resolved")

	e.Register("world", doWorld) // lazy register after parse
	e.Register("funarg(?)", IgnoreArg{Nothing{}})
	require.NoError(t, d.Validate())
	assert.Zero(t, doHello.called)
	require.NoError(t, e.Exec(ctx, d))
	assert.Equal(t, int32(2), doHello.called)
}

func TestParseSleep(t *testing.T) {
	t.Parallel()

	ctx, e := newTestContext(t)
	d, err := e.ParseText("pause", "sleep(5ms)")
	require.NoError(t, err)
	started := time.Now()
	require.NoError(t, e.ValidateExec(ctx, d))
	assert.True(t, time.Since(started) >= 5*time.Millisecond)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	assert.Equal(t, context.Canceled, Sleep{time.Hour}.Do(cctx))
}

func TestRegisterNewFunc(t *testing.T) {
	t.Parallel()

	ctx, e := newTestContext(t)
	mock := &mockdo{}
	e.RegisterNewFunc("vm.cancel", mock.Do)
	d := e.Resolve("vm.cancel")
	require.NoError(t, e.ValidateExec(ctx, d))
	assert.Equal(t, int32(1), mock.called)
}

func TestExecList(t *testing.T) {
	t.Parallel()

	ctx, e := newTestContext(t)
	ok := &mockdo{name: "ok"}
	bad := &mockdo{name: "bad", err: errors.New("jammed")}
	e.Register("ok", ok)
	e.Register("bad", bad)

	errs := e.ExecList(ctx, "on_boot", []string{"ok", "bad ok", "missing", "ok ok"})
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "on_boot:1")
	assert.Contains(t, errs[0].Error(), "jammed")
	assert.True(t, IsNotResolved(errs[1]), errs[1].Error())
	// seq aborts after error
	assert.Equal(t, int32(3), ok.called)
	assert.Equal(t, int32(1), bad.called)
}

func TestRepeatN(t *testing.T) {
	t.Parallel()

	ctx, e := newTestContext(t)
	mock := &mockdo{name: "tick"}
	require.NoError(t, e.Exec(ctx, RepeatN{N: 5, D: mock}))
	assert.Equal(t, int32(5), mock.called)

	mock.err = errors.New("stop")
	require.Error(t, e.Exec(ctx, RepeatN{N: 5, D: mock}))
	assert.Equal(t, int32(6), mock.called)
}

func newTestContext(t testing.TB) (context.Context, *Engine) {
	log := log2.NewTest(t, log2.LDebug)
	e := NewEngine(log)
	ctx := context.Background()
	ctx = context.WithValue(ctx, log2.ContextKey, log)
	ctx = context.WithValue(ctx, ContextKey, e)
	return ctx, e
}
