package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
	"github.com/MarcoAyalaT/Vicente/internal/ui/tui"
)

// Exit codes.
const (
	exitError         = 1
	exitInvalidConfig = 2
	exitCanceled      = 130
)

// Execute runs the thermosweep command line and exits non-zero on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", tui.UserMessage(err))
		fmt.Fprintln(os.Stderr, "  ", err)
		stop()
		os.Exit(exitCode(err))
	}
}

type globalFlags struct {
	workspace string
	config    string
	debug     bool
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "thermosweep",
		Short:         "thermosweep runs transient thermal FEA over a shape/width sweep (gmsh + CalculiX)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&g.workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	pf.StringVarP(&g.config, "config", "c", "", "Configuration file (default <workspace>/configThermo.yaml)")
	pf.BoolVar(&g.debug, "debug", false, "enable verbose logging to .thermosweep/logs/thermosweep.log")
	pf.StringVar(&g.logLevel, "log-level", "", "also log to stderr at this level: debug|info|warn|error")
	pf.StringVar(&g.logFormat, "log-format", "text", "stderr log format: text|json")

	cmd.AddCommand(
		runCmd(g),
		planCmd(g),
		validateCmd(g),
		runsCmd(g),
		initCmd(g),
		versionCmd(),
	)
	return cmd
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, context.Canceled), domain.IsKind(err, domain.KindCanceled):
		return exitCanceled
	case domain.IsKind(err, domain.KindInvalidConfig):
		return exitInvalidConfig
	default:
		return exitError
	}
}
