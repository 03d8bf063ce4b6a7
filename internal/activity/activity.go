// Package activity is append-only trace of machine events for audit and display.
// Most recent line first.
package activity

import (
	"fmt"
	"sync"
	"time"

	"github.com/vendsim/vender/log2"
)

const TimeFormat = "15:04:05"

type Log struct {
	// Max=0 means unbounded, oldest lines are dropped above Max otherwise.
	Max int
	// Now is clock override for tests.
	Now func() time.Time
	// Mirror receives every line at info level, may be nil.
	Mirror *log2.Log

	mu    sync.RWMutex
	lines []string
}

func New(max int, mirror *log2.Log) *Log {
	return &Log{Max: max, Mirror: mirror}
}

func (self *Log) Push(msg string) {
	now := time.Now
	if self.Now != nil {
		now = self.Now
	}
	line := fmt.Sprintf("[%s] %s", now().Format(TimeFormat), msg)
	self.Mirror.Infof("activity: %s", msg)

	self.mu.Lock()
	defer self.mu.Unlock()
	// stored oldest first, Lines reverses
	self.lines = append(self.lines, line)
	if self.Max > 0 && len(self.lines) >= 2*self.Max {
		n := copy(self.lines, self.lines[len(self.lines)-self.Max:])
		self.lines = self.lines[:n]
	}
}

func (self *Log) Pushf(format string, args ...interface{}) {
	self.Push(fmt.Sprintf(format, args...))
}

// Lines returns copy, most recent first.
func (self *Log) Lines() []string { return self.Tail(0) }

// Tail returns copy of at most n most recent lines, newest first. n=0 means all.
func (self *Log) Tail(n int) []string {
	self.mu.RLock()
	defer self.mu.RUnlock()
	size := self.locked_len()
	if n > 0 && n < size {
		size = n
	}
	result := make([]string, size)
	last := len(self.lines) - 1
	for i := range result {
		result[i] = self.lines[last-i]
	}
	return result
}

func (self *Log) Len() int {
	self.mu.RLock()
	defer self.mu.RUnlock()
	return self.locked_len()
}

func (self *Log) locked_len() int {
	if self.Max > 0 && len(self.lines) > self.Max {
		return self.Max
	}
	return len(self.lines)
}
