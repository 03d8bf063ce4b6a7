// Package tele is telemetry API shared by machine side client and tests.
// Wire messages are described in tele.proto.
package tele

import (
	"context"
	"sync"

	"github.com/vendsim/vender/log2"
	tele_config "github.com/vendsim/vender/tele/config"
)

//go:generate protoc --go_out=paths=source_relative:./ tele.proto

// Teler is telemetry client, vending machine side.
type Teler interface {
	Init(context.Context, *log2.Log, tele_config.Config) error
	Close()
	State(State)
	Error(error)
	StatModify(func(*Stat))
	Report(ctx context.Context, serviceTag bool) error
	Transaction(*Telemetry_Transaction)
}

type Noop struct{}

var _ Teler = Noop{} // compile-time interface test

func (Noop) Init(context.Context, *log2.Log, tele_config.Config) error { return nil }
func (Noop) Close()                                                    {}
func (Noop) State(State)                                               {}
func (Noop) Error(error)                                               {}
func (Noop) StatModify(func(*Stat))                                    {}
func (Noop) Report(ctx context.Context, serviceTag bool) error         { return nil }
func (Noop) Transaction(*Telemetry_Transaction)                        {}

// Low priority counters. Sent together with next telemetry message.
type Stat struct {
	sync.Mutex
	Telemetry_Stat
}

// Caller must hold self.Mutex.
func (self *Stat) Locked_Reset() {
	self.Telemetry_Stat.Reset()
}
