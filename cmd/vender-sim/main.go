// Vending machine simulator: cash change ledger, drink catalog and payment flow
// driven by engine scenarios from terminal or stdin script.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/c-bata/go-prompt"
	"github.com/coreos/go-systemd/daemon"
	"github.com/juju/errors"
	"github.com/vendsim/vender/helpers/cli"
	"github.com/vendsim/vender/internal/engine"
	"github.com/vendsim/vender/internal/state"
	state_new "github.com/vendsim/vender/internal/state/new"
	"github.com/vendsim/vender/internal/tele"
	"github.com/vendsim/vender/internal/ui"
	"github.com/vendsim/vender/log2"
)

var BuildVersion string = "unknown" // set by ldflags -X

var log = log2.NewStderr(log2.LInfo)

func main() {
	cmdline := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	flagConfig := cmdline.String("config", "vender-sim.hcl", "config file path")
	flagDebug := cmdline.Bool("debug", false, "debug log level")
	flagPanels := cmdline.Bool("panels", true, "print machine panels after every line")
	flagVersion := cmdline.Bool("version", false, "print build version and exit")
	_ = cmdline.Parse(os.Args[1:])

	if *flagVersion {
		fmt.Println(BuildVersion)
		return
	}
	if sdnotify("start") {
		// under systemd, journal adds timestamp
		log.SetFlags(0)
	} else {
		log.SetFlags(log2.LInteractiveFlags)
	}
	if *flagDebug {
		log.SetLevel(log2.LDebug)
	}

	config := state.MustReadConfig(log, state.NewOsFullReader(), *flagConfig)
	log.Debugf("config=%+v", config)

	ctx, g := state_new.NewContext(log, tele.New())
	g.BuildVersion = BuildVersion
	g.MustInit(ctx, config)

	u := ui.New(g.Log, g.Config.UI, os.Stdout)
	g.Machine.Subscribe(u.OnEvent)

	var stopOnce sync.Once
	shutdown := func() {
		stopOnce.Do(func() {
			sdnotify(daemon.SdNotifyStopping)
			g.Stop()
			g.Tele.Close()
			log.Infof("bye")
		})
	}
	go func() {
		<-g.Alive.StopChan()
		shutdown()
		os.Exit(0)
	}()

	sdnotify(daemon.SdNotifyReady)
	if *flagPanels {
		fmt.Print(u.Render(g.Machine.Snapshot()))
	}
	cli.MainLoop("vender-sim", newExecutor(ctx, g, u, *flagPanels), newCompleter(g.Engine), func(os.Signal) {
		shutdown()
		os.Exit(1)
	})
	shutdown()
}

func newExecutor(ctx context.Context, g *state.Global, u *ui.UI, panels bool) cli.Executor {
	return func(line string) {
		err := execLine(ctx, g.Engine, line)
		switch {
		case err == errUsage:
			fmt.Print(usage)
			return
		case err != nil:
			fmt.Printf("! %v\n", err)
			g.Log.Debugf(errors.ErrorStack(err))
		}
		if panels {
			fmt.Print(u.Render(g.Machine.Snapshot()))
		}
	}
}

func newCompleter(eng *engine.Engine) cli.Completer {
	actions := eng.List()
	sort.Strings(actions)
	suggests := make([]prompt.Suggest, 0, len(actions)+2)
	suggests = append(suggests, prompt.Suggest{Text: "help"}, prompt.Suggest{Text: "loop="})
	for _, a := range actions {
		suggests = append(suggests, prompt.Suggest{Text: a})
	}
	return func(d prompt.Document) []prompt.Suggest {
		return cli.FilterSuggest(d, suggests)
	}
}

func sdnotify(s string) bool {
	ok, err := daemon.SdNotify(false, s)
	if err != nil {
		log.Fatal("sdnotify: ", errors.ErrorStack(err))
	}
	return ok
}
