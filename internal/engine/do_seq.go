package engine

import (
	"context"
	"sync"

	"github.com/juju/errors"
	"github.com/vendsim/vender/helpers"
)

const seqBuffer uint = 8

// Seq executes actions in order. Error in one action aborts the rest.
// Build with NewSeq().Append()
type Seq struct {
	name  string
	_b    [seqBuffer]Doer
	items []Doer
}

func NewSeq(name string) *Seq {
	seq := &Seq{name: name}
	seq.items = seq._b[:0]
	return seq
}

func (seq *Seq) Append(d Doer) *Seq {
	seq.items = append(seq.items, d)
	return seq
}

func (seq *Seq) Len() int { return len(seq.items) }

func (seq *Seq) Validate() error {
	errs := make([]error, 0, len(seq.items))
	for _, d := range seq.items {
		if err := d.Validate(); err != nil {
			err = errors.Annotatef(err, "seq=%s node=%s validate", seq.String(), d.String())
			errs = append(errs, err)
		}
	}
	return helpers.FoldErrors(errs)
}

func (seq *Seq) Do(ctx context.Context) error {
	e := GetGlobal(ctx)
	for _, d := range seq.items {
		if err := e.Exec(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

func (seq *Seq) String() string { return seq.name }

func (seq *Seq) cloneEmpty() *Seq {
	new := NewSeq(seq.name)
	if n := len(seq.items); n > cap(new.items) {
		new.items = make([]Doer, 0, n)
	}
	return new
}

func (seq *Seq) Force() (Doer, bool, error) {
	result := seq.cloneEmpty()
	forcedAny := false
	for _, child := range seq.items {
		new, forced, err := Force(child)
		if err != nil {
			return nil, forced, errors.Annotatef(err, FmtErrContext, child.String())
		}
		forcedAny = forcedAny || forced
		result.Append(new)
	}
	if !forcedAny {
		return seq, false, nil
	}
	return result, true, nil
}

type Forcer interface{ Force() (Doer, bool, error) }

func Force(d Doer) (Doer, bool, error) {
	if f, ok := d.(Forcer); ok {
		new, forced, err := f.Force()
		if err != nil {
			return nil, forced, errors.Annotatef(err, "Force %s", d.String())
		}
		return new, forced, nil
	}
	return d, false, nil
}

// Lazy is reference to action by name, resolved on first use.
// Allows config aliases to mention actions registered later.
type Lazy struct {
	Name  string
	mu    sync.Mutex
	r     func(string) (Doer, error)
	cache Doer
}

func (l *Lazy) Force() (d Doer, forced bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	d = l.cache
	if d == nil {
		d, err = l.r(l.Name)
		if err == nil {
			l.cache = d
			forced = true
		}
	}
	return
}

func (l *Lazy) Validate() error {
	d, _, err := l.Force()
	if err != nil {
		return err
	}
	return d.Validate()
}

func (l *Lazy) Do(ctx context.Context) error {
	d, _, err := l.Force()
	if err != nil {
		return err
	}
	return d.Do(ctx)
}

func (l *Lazy) String() string { return l.Name }
