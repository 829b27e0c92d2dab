package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
	"github.com/MarcoAyalaT/Vicente/internal/infra/config"
	"github.com/MarcoAyalaT/Vicente/internal/infra/layout"
	"github.com/MarcoAyalaT/Vicente/internal/ports"
	"github.com/MarcoAyalaT/Vicente/internal/usecase"
)

func validateCmd(g *globalFlags) *cobra.Command {
	c := &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration, geometry files and external tools (no meshing or solving)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := openWorkspace(g)
			if err != nil {
				return err
			}
			defer ws.Close()

			uc := usecase.NewValidateConfig(config.NewLoader(), ws.tools, func(cfg domain.Config) ports.ArtifactLayout {
				return layout.New(ws.root, cfg.Paths)
			})

			rep, err := uc.Execute(cmd.Context(), ws.configPath)
			if rep.Tools != nil {
				printReport(cmd.OutOrStdout(), rep)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}
	return c
}

func printReport(w io.Writer, rep usecase.ValidationReport) {
	fmt.Fprintf(w, "Items: %d\n", len(rep.Plan))

	keys := make([]string, 0, len(rep.Tools))
	for k := range rep.Tools {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "Tool %-5s %s\n", k+":", rep.Tools[k])
	}

	for _, p := range rep.Problems {
		fmt.Fprintf(w, "✗ %s\n", p)
	}
}
