package main

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/vendsim/vender/helpers"
	"github.com/vendsim/vender/internal/engine"
)

const usage = `syntax: commands separated by whitespace
(machine)
- vm.cash vm.card vm.cancel       select payment, cancel with refund
- vm.insert(N)                    insert one note, N = 100 500 1000 5000 10000
- vm.buy.cola|water|coffee        purchase
- admin.stock.DRINK(N)            add N to drink stock, negative allowed
- admin.cash.NOMINAL(N)           load N notes into cash inventory
- tele.report                     send inventory telemetry
- @ACTION                         same as ACTION, any registered name
- sN                              pause N milliseconds

(meta)
- loop=N   repeat N times all commands on this line
- help     this text
`

var errUsage = errors.New("usage requested")

// parseLine returns errUsage for help, engine.Nothing for empty line.
func parseLine(eng *engine.Engine, line string) (engine.Doer, error) {
	words := strings.Fields(line)
	if len(words) == 0 {
		return engine.Nothing{}, nil
	}

	loopn := uint(0)
	seq := engine.NewSeq("input: " + line)
	errs := make([]error, 0, len(words))
	for _, word := range words {
		switch {
		case word == "help":
			return nil, errUsage

		case strings.HasPrefix(word, "loop="):
			if loopn != 0 {
				return nil, errors.Errorf("multiple loop commands, expected at most one")
			}
			i, err := strconv.ParseUint(word[5:], 10, 32)
			if err != nil || i == 0 {
				return nil, errors.NotValidf("word=%s", word)
			}
			loopn = uint(i)

		default:
			d, err := parseCommand(eng, word)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			seq.Append(d)
		}
	}
	if len(errs) != 0 {
		return nil, helpers.FoldErrors(errs)
	}
	if loopn != 0 {
		return engine.RepeatN{N: loopn, D: seq}, nil
	}
	return seq, nil
}

func parseCommand(eng *engine.Engine, word string) (engine.Doer, error) {
	if len(word) > 1 && word[0] == 's' && word[1] >= '0' && word[1] <= '9' {
		i, err := strconv.ParseUint(word[1:], 10, 32)
		if err != nil {
			return nil, errors.Annotatef(err, "word=%s", word)
		}
		return engine.Sleep{Duration: time.Duration(i) * time.Millisecond}, nil
	}
	word = strings.TrimPrefix(word, "@")
	if word == "" {
		return nil, errors.Errorf("invalid command: '@'")
	}
	return eng.ResolveOrLazy(word)
}

func execLine(ctx context.Context, eng *engine.Engine, line string) error {
	d, err := parseLine(eng, line)
	if err != nil {
		return err
	}
	return eng.ValidateExec(ctx, d)
}
