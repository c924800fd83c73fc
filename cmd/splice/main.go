// Command splice exports node graphs to documents and compiles them back.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/splice/internal/cli"
	spliceerrors "github.com/matzehuels/splice/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.New(os.Stderr, cli.LogInfo).RootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(report(err))
	}
}

// report prints err and returns the process exit status for it.
func report(err error) int {
	if errors.Is(err, context.Canceled) {
		return 130
	}
	code := spliceerrors.GetCode(err)
	if code == "" {
		fmt.Fprintln(os.Stderr, "splice:", err)
		return 1
	}
	fmt.Fprintf(os.Stderr, "splice: %s [%s]\n", spliceerrors.UserMessage(err), code)
	return spliceerrors.ExitStatus(err)
}
