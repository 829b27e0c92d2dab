package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
	"github.com/MarcoAyalaT/Vicente/internal/ports"
	"github.com/MarcoAyalaT/Vicente/internal/ui/tui"
	"github.com/MarcoAyalaT/Vicente/internal/usecase"
)

func runCmd(g *globalFlags) *cobra.Command {
	var useTUI bool
	var noSave bool
	var firstOnly bool
	var format string

	c := &cobra.Command{
		Use:   "run",
		Short: "Mesh and solve every item of the sweep",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			ws, err := openWorkspace(g)
			if err != nil {
				return err
			}
			defer ws.Close()

			cfg, err := ws.loadConfig()
			if err != nil {
				return err
			}
			if firstOnly {
				cfg.Run.RunFirstOnly = true
			}

			var store ports.RunStore = ws.store
			if noSave {
				store = nil
			}

			sweep := func(ctx context.Context, obs ports.SweepObserver) (domain.SweepRun, string, error) {
				uc := usecase.NewRunSweep(ws.layout, ws.docs, ws.mesher, ws.meshes, ws.solver, store,
					usecase.WithObserver(obs),
					usecase.WithLogger(ws.log),
				)
				return uc.Execute(ctx, cfg, ws.configPath)
			}

			out := cmd.OutOrStdout()

			var run domain.SweepRun
			var runID string
			if useTUI {
				deps := tui.Deps{Title: ws.configPath, Logger: ws.log, Debug: g.debug}
				run, runID, err = tui.Run(cmd.Context(), deps, len(cfg.Sweep.Items()), sweep)
			} else {
				var obs ports.SweepObserver = usecase.NopObserver{}
				if format == "pretty" {
					obs = newConsoleObserver(out)
				}
				run, runID, err = sweep(cmd.Context(), obs)
			}

			if perr := printRun(out, run, runID, format); perr != nil && err == nil {
				return perr
			}
			return err
		},
	}

	c.Flags().BoolVar(&useTUI, "tui", false, "Show an interactive progress view")
	c.Flags().BoolVar(&noSave, "no-save", false, "Do not save run artifact under runs/")
	c.Flags().BoolVar(&firstOnly, "first-only", false, "Stop after the first solved item (overrides CONFIG.runFirstOnly)")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	return c
}

func checkFormat(format string) error {
	switch format {
	case "pretty", "json":
		return nil
	}
	return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
}

// consoleObserver prints progress lines while the sweep runs.
type consoleObserver struct {
	w io.Writer
}

func newConsoleObserver(w io.Writer) *consoleObserver {
	return &consoleObserver{w: w}
}

func (o *consoleObserver) ItemStarted(_, _ int, it domain.SweepItem) {
	fmt.Fprintf(o.w, "%s| RUNNING %s |\n", strings.Repeat("―", 70), it.Name())
}

func (o *consoleObserver) StageStarted(domain.SweepItem, domain.Stage) {}

func (o *consoleObserver) Info(_ domain.SweepItem, msg string) {
	fmt.Fprintf(o.w, "[INFO]: %s\n", msg)
}

func (o *consoleObserver) ItemFinished(_, _ int, res domain.ItemResult) {
	switch res.Status {
	case domain.ItemSolved:
		fmt.Fprintf(o.w, "[INFO]: Completed in %.2f [s]\n", res.Timings.Total.Seconds())
	case domain.ItemMeshFailed, domain.ItemFailed:
		msg := res.Reason
		if res.Error != nil {
			msg = res.Error.Message
		}
		fmt.Fprintf(o.w, "[Error]: %s\n", msg)
	}
}

var _ ports.SweepObserver = (*consoleObserver)(nil)

func printRun(w io.Writer, run domain.SweepRun, runID string, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		payload := map[string]any{
			"run_id": runID,
			"run":    run,
		}
		return enc.Encode(payload)
	case "pretty", "":
		printPrettyRun(w, run, runID)
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
	}
}

func printPrettyRun(w io.Writer, run domain.SweepRun, runID string) {
	fmt.Fprintln(w, strings.Repeat("―", 70))
	fmt.Fprintf(w, "Config:     %s\n", run.ConfigPath)
	if !run.StartedAt.IsZero() {
		fmt.Fprintf(w, "Started:    %s\n", run.StartedAt.Format(time.RFC3339))
	}
	if !run.EndedAt.IsZero() {
		fmt.Fprintf(w, "Ended:      %s\n", run.EndedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "Duration:   %s\n", run.Duration().Round(time.Millisecond))
	if runID != "" {
		fmt.Fprintf(w, "Run ID:     %s\n", runID)
	}
	if run.Stopped != "" {
		fmt.Fprintf(w, "Stopped:    %s\n", run.Stopped)
	}
	fmt.Fprintln(w)

	for _, r := range run.Items {
		fmt.Fprintf(w, "- [%s] %s", strings.ToUpper(string(r.Status)), r.Name)
		if r.Status == domain.ItemSolved {
			mesh := fmt.Sprintf("mesh %.2fs", r.Timings.Mesh.Seconds())
			if r.MeshReused {
				mesh = "mesh reused"
			}
			fmt.Fprintf(w, "  %s, solve %.2fs, total %.2fs", mesh, r.Timings.Solve.Seconds(), r.Timings.Total.Seconds())
		}
		fmt.Fprintln(w)

		if r.Result != nil {
			fmt.Fprintf(w, "  T at t=%g s: max %.2f K, min %.2f K (%d nodes)\n",
				r.Result.FinalTime, r.Result.MaxTemperature, r.Result.MinTemperature, r.Result.NodeCount)
		}
		if r.Error != nil {
			fmt.Fprintf(w, "  error: %s (%s)\n", r.Error.Message, r.Error.Kind)
		} else if r.Reason != "" {
			fmt.Fprintf(w, "  reason: %s\n", r.Reason)
		}
	}

	fmt.Fprintf(w, "\n%d item(s): %d solved, %d skipped, %d mesh failed, %d failed\n",
		len(run.Items),
		run.Count(domain.ItemSolved),
		run.Count(domain.ItemSkipped),
		run.Count(domain.ItemMeshFailed),
		run.Count(domain.ItemFailed),
	)
}
