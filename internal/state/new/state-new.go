// Sorry, workaround to import cycles.
package state_new

import (
	"context"
	"os"
	"testing"

	"github.com/temoto/alive/v2"
	"github.com/vendsim/vender/internal/engine"
	"github.com/vendsim/vender/internal/state"
	"github.com/vendsim/vender/log2"
	tele_api "github.com/vendsim/vender/tele"
)

func NewContext(log *log2.Log, teler tele_api.Teler) (context.Context, *state.Global) {
	if log == nil {
		panic("code error NewContext() log=nil")
	}

	g := &state.Global{
		Alive:  alive.NewAlive(),
		Engine: engine.NewEngine(log),
		Log:    log,
		Tele:   teler,
	}
	ctx := context.Background()
	ctx = context.WithValue(ctx, log2.ContextKey, log)
	ctx = context.WithValue(ctx, engine.ContextKey, g.Engine)
	ctx = context.WithValue(ctx, state.ContextKey, g)

	return ctx, g
}

func NewTestContext(t testing.TB, buildVersion string, confString string) (context.Context, *state.Global) {
	return NewTestContextTele(t, buildVersion, confString, tele_api.Noop{})
}

func NewTestContextTele(t testing.TB, buildVersion string, confString string, teler tele_api.Teler) (context.Context, *state.Global) {
	fs := state.NewMockFullReader(map[string]string{
		"test-inline": confString,
	})

	var log *log2.Log
	if os.Getenv("vender_test_log_stderr") == "1" {
		log = log2.NewStderr(log2.LDebug) // useful with panics
	} else {
		log = log2.NewTest(t, log2.LDebug)
	}
	log.SetFlags(log2.LTestFlags)
	ctx, g := NewContext(log, teler)
	g.BuildVersion = buildVersion
	cfg, err := state.ReadConfig(log, fs, "test-inline")
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Init(ctx, cfg); err != nil {
		t.Fatal(err)
	}
	return ctx, g
}
