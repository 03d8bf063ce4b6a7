package tele

import (
	"context"

	"github.com/juju/errors"
	"github.com/vendsim/vender/helpers"
	"github.com/vendsim/vender/internal/state"
	tele_api "github.com/vendsim/vender/tele"
)

const logMsgDisabled = "tele disabled"

func (self *tele) CommandReplyErr(c *tele_api.Command, e error) {
	if !self.config.Enabled {
		self.log.Debugf(logMsgDisabled)
		return
	}
	errText := ""
	if e != nil {
		errText = e.Error()
	}
	r := tele_api.Response{
		CommandId: c.Id,
		Error:     errText,
	}
	if err := self.qpushCommandResponse(c, &r); err != nil {
		self.log.Error(errors.Annotatef(err, "CRITICAL command=%s response=%s", c.String(), r.String()))
	}
}

func (self *tele) Error(e error) {
	if !self.config.Enabled {
		self.log.Debugf(logMsgDisabled)
		return
	}

	self.log.Debugf("tele.Error: " + errors.ErrorStack(e))
	tm := &tele_api.Telemetry{
		Error: &tele_api.Telemetry_Error{Message: e.Error()},
	}
	if err := self.qpushTelemetry(tm); err != nil {
		self.log.Errorf("CRITICAL qpushTelemetry telemetry_error=%s err=%v", tm.Error.String(), err)
	}
}

// Report sends machine cash and stock inventory.
func (self *tele) Report(ctx context.Context, serviceTag bool) error {
	if !self.config.Enabled {
		self.log.Debugf(logMsgDisabled)
		return nil
	}

	g := state.GetGlobal(ctx)
	snapshot := g.Machine.Snapshot()
	tm := &tele_api.Telemetry{
		Inventory: snapshot.TeleInventory(),
		AtService: serviceTag,
	}
	err := self.qpushTelemetry(tm)
	if err != nil {
		self.log.Errorf("CRITICAL qpushTelemetry tm=%s err=%v", tm.String(), err)
	}
	return err
}

func (self *tele) State(s tele_api.State) {
	if !self.config.Enabled {
		return
	}
	self.stateMu.Lock()
	defer self.stateMu.Unlock()
	if self.currentState != s {
		self.currentState = s
		self.transport.SendState([]byte{byte(s)})
	}
}

func (self *tele) StatModify(fun func(s *tele_api.Stat)) {
	if !self.config.Enabled {
		return
	}
	helpers.WithLock(&self.stat, func() { fun(&self.stat) })
}

func (self *tele) Transaction(tx *tele_api.Telemetry_Transaction) {
	if !self.config.Enabled {
		self.log.Debugf(logMsgDisabled)
		return
	}
	if err := self.qpushTelemetry(&tele_api.Telemetry{Transaction: tx}); err != nil {
		self.log.Errorf("CRITICAL transaction=%s err=%v", tx.String(), err)
	}
}
