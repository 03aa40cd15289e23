package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	serve := newServeCommand()
	root := &cobra.Command{
		Use:   "helpdesk",
		Short: "IT helpdesk ticket service",
		Long: `Helpdesk tracks IT support tickets through their workflow, keeps the
notification log and serves the knowledge base over HTTP.`,
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	root.AddCommand(serve)
	root.AddCommand(newMigrateCommand())
	return root
}
