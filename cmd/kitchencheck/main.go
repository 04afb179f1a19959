package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, err)
	var ee *exitError
	if errors.As(err, &ee) {
		stop()
		os.Exit(ee.code)
	}
	stop()
	os.Exit(1)
}

func newRootCmd() *cobra.Command {
	var g globalFlags
	root := &cobra.Command{
		Use:           "kitchencheck",
		Short:         "HACCP and HMS compliance reports for professional kitchens",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.configFile, "config", "", "config file (default ./kitchencheck.yaml)")
	pf.StringVar(&g.company, "company", "", "company ID to act for (default from config)")
	pf.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")

	// open wires the application for one command run.
	open := func(cmd *cobra.Command) (*app, error) {
		return newApp(g, cmd.OutOrStdout())
	}

	root.AddCommand(
		newServeCmd(open),
		newReportCmd(open),
		newAnalyzeCmd(open),
		newAssistCmd(open),
		newSectionReportCmd(open),
		newSectionPDFCmd(open),
		newRenderCmd(open),
		newDemoCmd(open),
	)
	return root
}

// opener builds the app for a command.
type opener func(cmd *cobra.Command) (*app, error)

// run opens the app, calls fn and closes the app, mapping errors onto exit
// codes.
func run(cmd *cobra.Command, open opener, fn func(context.Context, *app) error) error {
	a, err := open(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	return classify(fn(cmd.Context(), a))
}
