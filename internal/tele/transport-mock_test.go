package tele_test

import (
	"context"
	"testing"
	"time"

	"github.com/vendsim/vender/internal/tele"
	"github.com/vendsim/vender/log2"
	tele_config "github.com/vendsim/vender/tele/config"
)

type transportMock struct {
	t              testing.TB
	onCommand      tele.CommandCallback
	networkTimeout time.Duration
	outBuffer      int
	outTelemetry   chan []byte
	outState       chan []byte
	outResponse    chan []byte
}

func (self *transportMock) Init(ctx context.Context, log *log2.Log, teleConfig tele_config.Config, onCommand tele.CommandCallback, willPayload []byte) error {
	self.onCommand = onCommand
	if self.networkTimeout == 0 {
		self.networkTimeout = tele.DefaultNetworkTimeout
	}
	self.outTelemetry = make(chan []byte, self.outBuffer)
	self.outState = make(chan []byte, self.outBuffer)
	self.outResponse = make(chan []byte, self.outBuffer)
	return nil
}

func (self *transportMock) Close() {}

func (self *transportMock) SendTelemetry(payload []byte) bool {
	return self.send(self.outTelemetry, "telemetry", payload)
}

func (self *transportMock) SendState(payload []byte) bool {
	return self.send(self.outState, "state", payload)
}

func (self *transportMock) SendCommandResponse(topicSuffix string, payload []byte) bool {
	self.t.Logf("mock response topic=%s", topicSuffix)
	return self.send(self.outResponse, "response", payload)
}

func (self *transportMock) send(ch chan<- []byte, kind string, payload []byte) bool {
	select {
	case ch <- copyBytes(payload):
		self.t.Logf("mock delivered %s=%x", kind, payload)
		return true
	case <-time.After(self.networkTimeout):
		self.t.Logf("mock network timeout %s", kind)
		return false
	}
}

// split send/receive buffer identity for safe concurrent access
func copyBytes(b []byte) []byte {
	new := make([]byte, len(b))
	copy(new, b)
	return new
}
