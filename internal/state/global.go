package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	"github.com/vendsim/vender/helpers"
	"github.com/vendsim/vender/internal/engine"
	"github.com/vendsim/vender/internal/machine"
	"github.com/vendsim/vender/log2"
	tele_api "github.com/vendsim/vender/tele"
)

type Global struct {
	Alive        *alive.Alive
	BuildVersion string
	Config       *Config
	Engine       *engine.Engine
	Log          *log2.Log
	Machine      *machine.Machine
	Tele         tele_api.Teler
}

const ContextKey = "run/state-global"

func GetGlobal(ctx context.Context) *Global {
	v := ctx.Value(ContextKey)
	if v == nil {
		panic(fmt.Sprintf("context['%s'] is nil", ContextKey))
	}
	if g, ok := v.(*Global); ok {
		return g
	}
	panic(fmt.Sprintf("context['%s'] expected type *Global actual=%#v", ContextKey, v))
}

// If `Init` fails, consider `Global` is in broken state.
func (g *Global) Init(ctx context.Context, cfg *Config) error {
	g.Config = cfg
	g.Log.Infof("build version=%s", g.BuildVersion)

	// Since tele is remote error reporting mechanism, it must be inited before anything else
	g.Config.Tele.BuildVersion = g.BuildVersion
	if g.Config.Tele.PersistPath == "" && g.Config.Persist.Root != "" {
		g.Config.Tele.PersistPath = filepath.Join(g.Config.Persist.Root, "tele")
	}
	// Tele.Init gets g.Log clone before SetErrorFunc, so Tele.Log.Error doesn't recurse on itself
	if err := g.Tele.Init(ctx, g.Log.Clone(log2.LInfo), g.Config.Tele); err != nil {
		g.Tele = tele_api.Noop{}
		return errors.Annotate(err, "tele init")
	}
	g.Log.SetErrorFunc(g.Tele.Error)

	if g.Config.Money.Scale == 0 {
		g.Config.Money.Scale = 1
	} else if g.Config.Money.Scale < 0 {
		return errors.NotValidf("config: money.scale < 0")
	}

	mc, err := g.Config.MachineConfig()
	if err != nil {
		return errors.Annotate(err, "machine config")
	}
	g.Machine = machine.New(g.Log, mc)
	g.Machine.Subscribe(g.onMachineEvent)
	g.Machine.RegisterActions(g.Engine)
	g.RegisterCommands(ctx)

	if err := g.initEngine(); err != nil {
		return errors.Annotate(err, "engine init")
	}
	g.Tele.State(tele_api.State_Nominal)

	errs := g.Engine.ExecList(ctx, "on_boot", g.Config.Engine.OnBoot)
	return errors.Annotate(helpers.FoldErrors(errs), "on_boot")
}

func (g *Global) MustInit(ctx context.Context, cfg *Config) {
	err := g.Init(ctx, cfg)
	if err != nil {
		g.Fatal(err)
	}
}

func (g *Global) initEngine() error {
	errs := make([]error, 0)
	for _, x := range g.Config.Engine.Aliases {
		if err := g.Engine.RegisterParse(x.Name, x.Scenario); err != nil {
			errs = append(errs, err)
		}
	}
	return helpers.FoldErrors(errs)
}

func (g *Global) RegisterCommands(ctx context.Context) {
	g.Engine.RegisterNewFunc("tele.report", func(ctx context.Context) error {
		return g.Tele.Report(ctx, false)
	})
	g.Engine.RegisterNewFunc("vmc.stop!", func(ctx context.Context) error {
		g.Log.Infof("--- vmc stop ---")
		g.Stop()
		return nil
	})
}

// onMachineEvent forwards committed machine changes to telemetry.
func (g *Global) onMachineEvent(e machine.Event) {
	g.Tele.State(e.Snapshot.TeleState())
	if e.Outcome != nil {
		kind := e.Outcome.Kind
		g.Tele.StatModify(func(s *tele_api.Stat) {
			switch kind {
			case machine.OutcomeDispensed:
				s.Transactions++
			case machine.OutcomeRefund:
				s.Refunds++
			case machine.OutcomeInsufficientChange:
				s.ChangeFailures++
				s.Refunds++
			case machine.OutcomeOutOfStock:
				s.OutOfStock++
			}
		})
	}
	if e.Transaction != nil {
		g.Tele.Transaction(e.Transaction.Tele())
	}
}

func (g *Global) Error(err error, args ...interface{}) {
	if err != nil {
		if len(args) != 0 {
			msg := args[0].(string)
			args = args[1:]
			err = errors.Annotatef(err, msg, args...)
		}
		g.Log.Error(err)
	}
}

func (g *Global) Fatal(err error, args ...interface{}) {
	if err != nil {
		g.Error(err, args...)
		g.StopWait(5 * time.Second)
		g.Log.Fatal(errors.ErrorStack(err))
		os.Exit(1)
	}
}

func (g *Global) Stop() {
	g.Alive.Stop()
}

func (g *Global) StopWait(timeout time.Duration) bool {
	g.Alive.Stop()
	select {
	case <-g.Alive.WaitChan():
		return true
	case <-time.After(timeout):
		return false
	}
}
