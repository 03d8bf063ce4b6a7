// Package atomic_clock is atomic int64 nanosecond timestamp.
// Transaction start/finish marks are read from subscriber goroutines without machine lock.
package atomic_clock

import (
	"sync/atomic"
	"time"
)

type Clock struct{ v int64 }

func source() int64 { return time.Now().UnixNano() }

func (c *Clock) get() int64 { return atomic.LoadInt64(&c.v) }

func (c *Clock) IsZero() bool { return c.get() == 0 }

func (c *Clock) Reset()              { atomic.StoreInt64(&c.v, 0) }
func (c *Clock) SetNow()             { atomic.StoreInt64(&c.v, source()) }
func (c *Clock) SetNowIfZero()       { atomic.CompareAndSwapInt64(&c.v, 0, source()) }
func (c *Clock) SetTime(t time.Time) { atomic.StoreInt64(&c.v, t.UnixNano()) }

func (c *Clock) Time() time.Time {
	if v := c.get(); v != 0 {
		return time.Unix(0, v)
	}
	return time.Time{}
}

func (c *Clock) UnixNano() int64 { return c.get() }

func Now() *Clock { return &Clock{v: source()} }

// Since returns zero for unset clock.
func Since(begin *Clock) time.Duration {
	v := begin.get()
	if v == 0 {
		return 0
	}
	return time.Duration(source() - v)
}
