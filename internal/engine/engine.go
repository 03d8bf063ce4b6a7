// Package engine maps action names to Doers and runs text scenarios built of them.
// Machine operations, admin commands, config aliases and CLI input all go through Engine.
//
// Scenario syntax: whitespace separated action names.
// Action with integer argument: `vm.insert(1000)`, registered as `vm.insert(?)`.
package engine

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/juju/errors"
	"github.com/vendsim/vender/log2"
)

const ContextKey = "run/engine"

func GetGlobal(ctx context.Context) *Engine {
	v := ctx.Value(ContextKey)
	if v == nil {
		panic(fmt.Sprintf("context['%s'] is nil", ContextKey))
	}
	if e, ok := v.(*Engine); ok {
		return e
	}
	panic(fmt.Sprintf("context['%s'] expected type *Engine actual=%#v", ContextKey, v))
}

type ErrNotResolved struct{ msg string }

func NewErrNotResolved(action string) ErrNotResolved {
	return ErrNotResolved{msg: fmt.Sprintf("action=%s not resolved", action)}
}
func (e ErrNotResolved) Error() string { return e.msg }

type Engine struct {
	Log     *log2.Log
	lk      sync.RWMutex
	actions map[string]Doer
}

func NewEngine(log *log2.Log) *Engine {
	self := &Engine{
		Log:     log,
		actions: make(map[string]Doer, 64),
	}
	self.actions["ignore(?)"] = FuncArg{
		Name: "ignore(?)",
		F:    func(context.Context, Arg) error { return nil }}
	return self
}

func (self *Engine) Register(action string, d Doer) {
	self.lk.Lock()
	self.actions[action] = d
	self.lk.Unlock()
}

func (self *Engine) RegisterNewFunc(name string, fun func(context.Context) error) {
	self.Register(name, Func{Name: name, F: fun})
}

func (self *Engine) RegisterNewFuncArg(name string, fun func(context.Context, Arg) error) {
	self.Register(name, FuncArg{Name: name, F: fun})
}

func (self *Engine) RegisterParse(name, scenario string) error {
	d, err := self.ParseText(name, scenario)
	if err != nil {
		return errors.Annotatef(err, "engine.RegisterParse() name=%s scenario=%s", name, scenario)
	}
	self.Register(name, d)
	return nil
}

// List returns registered action names, unsorted.
func (self *Engine) List() []string {
	self.lk.RLock()
	r := make([]string, 0, len(self.actions))
	for k := range self.actions {
		r = append(r, k)
	}
	self.lk.RUnlock()
	return r
}

var reActionArg = regexp.MustCompile(`^(.+)\((-?\d+|\?)\)$`)

type token struct {
	norm string
	arg  string
	ok   bool
}

func parseArg(s string) token {
	match := reActionArg.FindStringSubmatch(s)
	if match == nil {
		return token{}
	}
	return token{norm: match[1] + "(?)", arg: match[2], ok: true}
}

func (self *Engine) resolve(action string) (Doer, error) {
	self.lk.RLock()
	defer self.lk.RUnlock()
	return self.locked_resolve(action)
}

func (self *Engine) locked_resolve(action string) (Doer, error) {
	if d, ok := self.actions[action]; ok {
		return d, nil
	}

	tok := parseArg(action)
	if !tok.ok {
		return nil, NewErrNotResolved(action)
	}
	d, ok := self.actions[tok.norm]
	if !ok {
		self.Log.Debugf("resolve action=%s normalized=%s not found", action, tok.norm)
		err := NewErrNotResolved(tok.norm)
		err.msg = fmt.Sprintf(FmtErrContext, action) + err.msg
		return nil, err
	}
	if tok.arg == "?" {
		return d, nil
	}
	argn, err := strconv.Atoi(tok.arg)
	if err != nil {
		return nil, errors.Annotatef(err, FmtErrContext, action)
	}
	d, applied, err := ArgApply(d, Arg(argn))
	if err != nil {
		return nil, errors.Annotatef(err, FmtErrContext, action)
	}
	if !applied {
		return nil, errors.Annotatef(ErrArgNotApplied, FmtErrContext, action)
	}
	return d, nil
}

// Resolve never returns nil, unknown action resolves to Fail.
func (self *Engine) Resolve(action string) Doer {
	d, err := self.resolve(action)
	if err != nil {
		self.Log.Errorf("engine.Resolve action=%s err=%v", action, err)
		return Fail{E: err}
	}
	return d
}

var reSleep = regexp.MustCompile(`^sleep\((\d+m?s)\)$`)

func (self *Engine) ResolveOrLazy(action string) (Doer, error) {
	self.lk.RLock()
	d, ok := self.actions[action]
	self.lk.RUnlock()
	if ok {
		return d, nil
	}

	if m := reSleep.FindStringSubmatch(action); len(m) == 2 {
		duration, err := time.ParseDuration(m[1])
		if err != nil {
			return nil, errors.Trace(err)
		}
		return Sleep{duration}, nil
	}
	return &Lazy{Name: action, r: self.resolve}, nil
}

var reNotSpace = regexp.MustCompile(`\S+`)

func (self *Engine) ParseText(tag, text string) (Doer, error) {
	words := reNotSpace.FindAllString(text, -1)
	seq := NewSeq(tag)
	for _, word := range words {
		d, err := self.ResolveOrLazy(word)
		if err != nil {
			return nil, errors.Annotatef(err, "scenario=%s unparsed=%s", text, word)
		}
		seq.Append(d)
	}
	return seq, nil
}

func (self *Engine) Exec(ctx context.Context, d Doer) error { return self.exec(ctx, d, false) }
func (self *Engine) ValidateExec(ctx context.Context, d Doer) error {
	return self.exec(ctx, d, true)
}

// ExecList runs every scenario independently, collecting errors.
func (self *Engine) ExecList(ctx context.Context, tag string, list []string) []error {
	errs := make([]error, 0, len(list))
	for i, text := range list {
		itemTag := fmt.Sprintf("%s:%d", tag, i)
		d, err := self.ParseText(itemTag, text)
		if err == nil {
			err = self.exec(ctx, d, true)
		}
		if err != nil {
			errs = append(errs, errors.Annotatef(err, "%s scenario=%s", itemTag, text))
		}
	}
	return errs
}

func (self *Engine) exec(ctx context.Context, d Doer, validate bool) error {
	if validate {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return d.Do(ctx)
}

// Test `error` or `Doer` against ErrNotResolved
func IsNotResolved(x interface{}) bool {
	if x == nil {
		return false
	}
	e, _ := x.(error)
	if e == nil {
		if f, ok := x.(Fail); ok {
			e = f.E
		}
	}
	if e == nil {
		return false
	}
	_, ok := errors.Cause(e).(ErrNotResolved)
	return ok
}
