package engine

import (
	"context"
	"fmt"
	"time"
)

const FmtErrContext = "`%s`" // errors.Annotatef(err, FmtErrContext, doer.String())

// Doer is one named action: machine operation, admin command or scenario built of them.
type Doer interface {
	Validate() error
	Do(context.Context) error
	String() string // for logs
}

type ValidateFunc func() error

func useValidator(v ValidateFunc) error {
	if v == nil {
		return nil
	}
	return v()
}

type Nothing struct{ Name string }

func (self Nothing) Do(ctx context.Context) error { return nil }
func (self Nothing) Validate() error              { return nil }
func (self Nothing) String() string               { return self.Name }

type Func struct {
	Name string
	F    func(context.Context) error
	V    ValidateFunc
}

func (self Func) Validate() error              { return useValidator(self.V) }
func (self Func) Do(ctx context.Context) error { return self.F(ctx) }
func (self Func) String() string               { return self.Name }

type Func0 struct {
	Name string
	F    func() error
	V    ValidateFunc
}

func (self Func0) Validate() error              { return useValidator(self.V) }
func (self Func0) Do(ctx context.Context) error { return self.F() }
func (self Func0) String() string               { return self.Name }

// Sleep pauses scenario, respects ctx cancel.
type Sleep struct{ time.Duration }

func (self Sleep) Validate() error { return nil }
func (self Sleep) Do(ctx context.Context) error {
	select {
	case <-time.After(self.Duration):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
func (self Sleep) String() string { return fmt.Sprintf("Sleep(%v)", self.Duration) }

type RepeatN struct {
	N uint
	D Doer
}

func (self RepeatN) Validate() error { return self.D.Validate() }
func (self RepeatN) Do(ctx context.Context) error {
	e := GetGlobal(ctx)
	var err error
	for i := uint(1); i <= self.N && err == nil; i++ {
		e.Log.Debugf("engine loop %d/%d", i, self.N)
		err = e.Exec(ctx, self.D)
	}
	return err
}
func (self RepeatN) String() string {
	return fmt.Sprintf("RepeatN(N=%d D=%s)", self.N, self.D.String())
}

type Fail struct{ E error }

func (self Fail) Validate() error              { return self.E }
func (self Fail) Do(ctx context.Context) error { return self.E }
func (self Fail) String() string               { return self.E.Error() }
