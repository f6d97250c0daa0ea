package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/encap/internal/cli"
	"github.com/arthur-debert/encap/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.NewRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		var exitErr *cli.ExitError
		if !stderrors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, cli.MsgErrPrefix+"\n", errors.Message(err))
		}
	}
	stop()
	os.Exit(cli.ExitCode(err))
}
