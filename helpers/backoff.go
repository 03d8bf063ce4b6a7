package helpers

import (
	"sync/atomic"
	"time"
)

// Backoff is limited exponential retry delay.
// Failure multiplies next delay by K, Reset returns it to Min.
// Zero Min is replaced with Max/64 on first use.
type Backoff struct {
	next int64 // atomic

	Min time.Duration
	Max time.Duration
	K   float32
}

// Use scenario:
// for {
//   err := op()
//   sleep(backoff.DelayAfter(err == nil))
// }
func (b *Backoff) DelayAfter(success bool) time.Duration {
	if success {
		b.Reset()
		return 0
	}
	return b.Failure()
}

// Failure returns current delay and increases next one.
func (b *Backoff) Failure() time.Duration {
	for {
		cur := atomic.LoadInt64(&b.next)
		delay := b.limit(time.Duration(cur))
		k := b.K
		if k < 1 {
			k = 2
		}
		next := b.limit(time.Duration(float32(delay) * k))
		if atomic.CompareAndSwapInt64(&b.next, cur, int64(next)) {
			return delay
		}
	}
}

func (b *Backoff) Reset() { atomic.StoreInt64(&b.next, 0) }

func (b *Backoff) limit(d time.Duration) time.Duration {
	min := b.Min
	if min == 0 {
		min = b.Max / 64
	}
	if d < min {
		d = min
	}
	if b.Max != 0 && d > b.Max {
		d = b.Max
	}
	return d / time.Millisecond * time.Millisecond
}
