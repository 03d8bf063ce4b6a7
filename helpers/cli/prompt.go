// Package cli runs interactive line loop: go-prompt on terminal, plain line reader otherwise.
package cli

import (
	"bufio"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/c-bata/go-prompt"
	"github.com/mattn/go-isatty"
)

type Executor func(line string)
type Completer func(d prompt.Document) []prompt.Suggest

// MainLoop blocks until stdin is exhausted or user exits prompt.
// onSignal is called once on SIGINT/SIGTERM/SIGHUP/SIGQUIT, nil means os.Exit(1).
func MainLoop(tag string, exec Executor, complete Completer, onSignal func(os.Signal)) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)
	go func() {
		s := <-signalCh
		if onSignal == nil {
			os.Exit(1)
		}
		onSignal(s)
	}()

	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		prompt.New(prompt.Executor(exec), prompt.Completer(complete),
			prompt.OptionPrefix(tag+"> "),
			prompt.OptionTitle(tag),
		).Run()
		return
	}
	ReadLines(os.Stdin, exec)
}

// ReadLines feeds trimmed non-empty lines to exec.
func ReadLines(r io.Reader, exec Executor) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			exec(line)
		}
	}
}

// FilterSuggest is prompt.FilterHasPrefix on word before cursor.
func FilterSuggest(d prompt.Document, all []prompt.Suggest) []prompt.Suggest {
	return prompt.FilterHasPrefix(all, d.GetWordBeforeCursor(), true)
}
