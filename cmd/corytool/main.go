// Command corytool runs the ROI projection and Markdown renderer from the
// command line and manages the resource library.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "corytool",
		Short:         "Tools for the Cory marketing site",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newROICmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newImportCmd())
	root.AddCommand(newMigrateCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
