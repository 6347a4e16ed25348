// Command stairreg extracts stair limits from building-code PDFs into a
// JSON configuration and checks stair dimensions against it.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/sevigo/stairreg/chains"
	"github.com/sevigo/stairreg/config"
	"github.com/sevigo/stairreg/llms"
	"github.com/sevigo/stairreg/llms/provider"
	"github.com/sevigo/stairreg/pipeline"
)

// app carries the process collaborators so commands can run against
// buffers and fakes in tests.
type app struct {
	in           io.Reader
	out          io.Writer
	errOut       io.Writer
	isTerminal   func() bool
	newModel     func(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (llms.Model, error)
	newExtractor pipeline.ExtractorFactory
}

func defaultApp() *app {
	return &app{
		in:           os.Stdin,
		out:          os.Stdout,
		errOut:       os.Stderr,
		isTerminal:   func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
		newModel:     provider.New,
		newExtractor: pipeline.DefaultExtractorFactory,
	}
}

// exitError ends the process with code. A nil err means the command has
// already reported the problem.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func main() {
	os.Exit(execute(defaultApp(), os.Args[1:]))
}

func execute(a *app, args []string) int {
	cmd := newRootCmd(a)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		return 0
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			reportError(a.errOut, ee.err)
		}
		return ee.code
	}
	reportError(a.errOut, err)
	return 1
}

// reportError prints the error, the operator hint for request failures and
// every wrapped cause.
func reportError(w io.Writer, err error) {
	u := newUI(w)
	u.Error("错误: %v", err)

	var reqErr *chains.RequestError
	if errors.As(err, &reqErr) {
		if msg := reqErr.Hint.Message(); msg != "" {
			u.Warn("提示: %s", msg)
		}
	}

	causes := unwrapAll(err)
	if len(causes) > 1 {
		fmt.Fprintln(w, "诊断信息:")
		for i, c := range causes {
			fmt.Fprintf(w, "  %d. %T: %v\n", i, c, c)
		}
	}
}

func unwrapAll(err error) []error {
	var out []error
	queue := []error{err}
	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]
		if e == nil {
			continue
		}
		out = append(out, e)
		switch u := e.(type) {
		case interface{ Unwrap() error }:
			queue = append(queue, u.Unwrap())
		case interface{ Unwrap() []error }:
			queue = append(queue, u.Unwrap()...)
		}
	}
	return out
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
