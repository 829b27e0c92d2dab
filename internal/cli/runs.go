package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
	"github.com/MarcoAyalaT/Vicente/internal/usecase/query"
)

func runsCmd(g *globalFlags) *cobra.Command {
	c := &cobra.Command{
		Use:   "runs",
		Short: "Inspect stored sweep runs",
	}
	c.AddCommand(runsListCmd(g), runsShowCmd(g))
	return c
}

func runsListCmd(g *globalFlags) *cobra.Command {
	var format string

	c := &cobra.Command{
		Use:   "list",
		Short: "List stored runs, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			ws, err := openWorkspace(g)
			if err != nil {
				return err
			}
			defer ws.Close()

			refs, err := ws.runStore().ListRuns()
			if err != nil {
				return err
			}
			return printRunRefs(cmd.OutOrStdout(), refs, format)
		},
	}

	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	return c
}

func runsShowCmd(g *globalFlags) *cobra.Command {
	var expr string
	var format string

	c := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a stored run, optionally narrowed by a JSONPath query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			ws, err := openWorkspace(g)
			if err != nil {
				return err
			}
			defer ws.Close()

			run, raw, err := ws.runStore().LoadRun(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if expr != "" {
				v, err := query.Apply(raw, expr)
				if err != nil {
					return err
				}
				s, err := query.Format(v)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, s)
				return nil
			}

			if format == "json" {
				_, err := out.Write(raw)
				return err
			}
			printPrettyRun(out, run, run.ID)
			return nil
		},
	}

	c.Flags().StringVarP(&expr, "query", "q", "", `JSONPath expression, e.g. "$.items[*].timings.total"`)
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	return c
}

func printRunRefs(w io.Writer, refs []domain.RunRef, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(refs)
	}

	if len(refs) == 0 {
		fmt.Fprintln(w, "No runs.")
		return nil
	}
	for _, r := range refs {
		fmt.Fprintf(w, "%s  %s  %d/%d solved  %s\n",
			r.ID, r.StartedAt.Format(time.RFC3339), r.Solved, r.Items, r.ConfigPath)
	}
	return nil
}
