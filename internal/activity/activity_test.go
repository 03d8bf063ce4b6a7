package activity

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vendsim/vender/log2"
)

func fixedClock() func() time.Time {
	t0 := time.Date(2020, 1, 2, 15, 4, 5, 0, time.Local)
	return func() time.Time { return t0 }
}

func TestPushOrder(t *testing.T) {
	t.Parallel()
	l := New(0, log2.NewTest(t, log2.LDebug))
	l.Now = fixedClock()
	assert.Equal(t, 0, len(l.Lines()))

	l.Push("payment: cash selected")
	l.Pushf("inserted %s (total %s)", "1,000", "1,000")
	lines := l.Lines()
	assert.Equal(t, []string{
		"[15:04:05] inserted 1,000 (total 1,000)",
		"[15:04:05] payment: cash selected",
	}, lines)

	lines[0] = "mutated"
	assert.NotEqual(t, "mutated", l.Lines()[0], "Lines must return copy")
}

func TestMax(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		max    int
		push   int
		expect int
	}{
		{"unbounded", 0, 50, 50},
		{"bounded", 3, 10, 3},
		{"under", 5, 2, 2},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			l := New(c.max, nil)
			l.Now = fixedClock()
			for i := 0; i < c.push; i++ {
				l.Pushf("line %d", i)
			}
			assert.Equal(t, c.expect, l.Len())
			assert.Equal(t, "[15:04:05] line "+strconv.Itoa(c.push-1), l.Lines()[0])
		})
	}
}

func TestTailCompact(t *testing.T) {
	t.Parallel()
	l := New(3, nil)
	l.Now = fixedClock()
	for i := 0; i < 100; i++ {
		l.Pushf("line %d", i)
		assert.Less(t, len(l.lines), 2*l.Max, "storage must stay bounded")
	}
	assert.Equal(t, 3, l.Len())
	assert.Equal(t, []string{
		"[15:04:05] line 99",
		"[15:04:05] line 98",
		"[15:04:05] line 97",
	}, l.Lines())
	assert.Equal(t, []string{"[15:04:05] line 99", "[15:04:05] line 98"}, l.Tail(2))
	assert.Len(t, l.Tail(10), 3)

	empty := New(0, nil)
	assert.Empty(t, empty.Tail(5))
}
