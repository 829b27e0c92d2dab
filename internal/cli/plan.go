package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
	"github.com/MarcoAyalaT/Vicente/internal/usecase"
)

func planCmd(g *globalFlags) *cobra.Command {
	var format string

	c := &cobra.Command{
		Use:   "plan",
		Short: "Show what a run would do with the cached artifacts (nothing is executed)",
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

			plan := usecase.NewPlanSweep(ws.layout).Execute(cfg)
			return printPlan(cmd.OutOrStdout(), plan, format)
		},
	}

	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	return c
}

func printPlan(w io.Writer, plan []domain.ItemPlan, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}

	if len(plan) == 0 {
		fmt.Fprintln(w, "No items.")
		return nil
	}
	fmt.Fprintf(w, "%-12s %-10s %-8s %-8s %s\n", "ITEM", "ACTION", "GEOMETRY", "MESH", "DOCUMENT")
	for _, p := range plan {
		fmt.Fprintf(w, "%-12s %-10s %-8s %-8s %s\n",
			p.Name, planAction(p), yesNo(p.GeometryExists), yesNo(p.MeshExists), yesNo(p.DocumentExists))
	}
	return nil
}

func planAction(p domain.ItemPlan) string {
	switch {
	case p.WillSkip:
		return "skip"
	case p.WillReuseMesh:
		return "solve"
	default:
		return "mesh+solve"
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
