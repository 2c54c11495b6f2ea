package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/notorious-go/treewalk/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewRootCommand()
	err := cmd.ExecuteContext(ctx)
	if err != nil && !cli.IsReported(err) {
		formatter := &cli.OutputFormatter{Format: "text", Writer: os.Stderr}
		_ = formatter.Error(err)
	}
	stop()
	os.Exit(cli.GetExitCode(err))
}
