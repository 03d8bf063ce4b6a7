package tele

import (
	"context"

	"github.com/vendsim/vender/log2"
	tele_config "github.com/vendsim/vender/tele/config"
)

// Tele transport contract:
// - Init fails only with invalid config, ignores network errors
// - Send* returns false when message was not delivered and must be retried
// - application may start without network available
type Transporter interface {
	Init(ctx context.Context, log *log2.Log, teleConfig tele_config.Config, onCommand CommandCallback, willPayload []byte) error
	Close()
	SendState(payload []byte) bool
	SendTelemetry(payload []byte) bool
	SendCommandResponse(topicSuffix string, payload []byte) bool
}

type CommandCallback func(context.Context, []byte) bool
