package tele

import (
	"context"

	"github.com/golang/protobuf/proto"
	"github.com/juju/errors"
	"github.com/vendsim/vender/internal/state"
	tele_api "github.com/vendsim/vender/tele"
)

func (self *tele) onCommandMessage(ctx context.Context, payload []byte) bool {
	cmd := new(tele_api.Command)
	if err := proto.Unmarshal(payload, cmd); err != nil {
		self.log.Errorf("tele command parse raw=%x err=%v", payload, err)
		return true
	}
	self.log.Debugf("tele command raw=%x task=%s", payload, cmd.String())
	err := self.dispatchCommand(ctx, cmd)
	self.CommandReplyErr(cmd, err)
	return true
}

func (self *tele) dispatchCommand(ctx context.Context, cmd *tele_api.Command) error {
	switch {
	case cmd.Report != nil:
		return self.cmdReport(ctx, cmd)

	case cmd.Exec != nil:
		return self.cmdExec(ctx, cmd, cmd.Exec)

	default:
		err := errors.NotSupportedf("command=%s", cmd.String())
		self.log.Error(err)
		return err
	}
}

func (self *tele) cmdReport(ctx context.Context, cmd *tele_api.Command) error {
	return errors.Annotate(self.Report(ctx, false), "cmdReport")
}

// Remote scenario, same syntax as config aliases: "admin.stock.cola(5) admin.cash.1000(10)"
func (self *tele) cmdExec(ctx context.Context, cmd *tele_api.Command, arg *tele_api.Command_ArgExec) error {
	g := state.GetGlobal(ctx)
	doer, err := g.Engine.ParseText("tele-exec", arg.Scenario)
	if err != nil {
		return errors.Annotate(err, "parse")
	}
	if err = doer.Validate(); err != nil {
		return errors.Annotate(err, "validate")
	}
	return errors.Annotate(g.Engine.Exec(ctx, doer), "exec")
}
