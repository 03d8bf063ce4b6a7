package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff(t *testing.T) {
	t.Parallel()

	b := Backoff{Min: 100 * time.Millisecond, Max: time.Second, K: 3}
	expect := []time.Duration{100, 300, 900, 1000, 1000}
	for i, e := range expect {
		assert.Equal(t, e*time.Millisecond, b.DelayAfter(false), "step=%d", i)
	}
	assert.Equal(t, time.Duration(0), b.DelayAfter(true))
	assert.Equal(t, 100*time.Millisecond, b.Failure())
}

func TestBackoffDefaults(t *testing.T) {
	t.Parallel()

	b := Backoff{Max: 640 * time.Millisecond}
	assert.Equal(t, 10*time.Millisecond, b.Failure())
	assert.Equal(t, 20*time.Millisecond, b.Failure())
}
