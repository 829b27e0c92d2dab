package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MarcoAyalaT/Vicente/internal/infra/fsworkspace"
	"github.com/MarcoAyalaT/Vicente/internal/infra/logger"
	"github.com/MarcoAyalaT/Vicente/internal/usecase"
)

func initCmd(g *globalFlags) *cobra.Command {
	var force bool

	c := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a workspace with a sample configThermo.yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			} else if g.workspace != "" {
				dir = g.workspace
			}
			root, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("invalid workspace path: %w", err)
			}
			if err := os.MkdirAll(root, 0o755); err != nil {
				return err
			}

			if err := usecase.NewInitWorkspace(fsworkspace.NewInitializer()).Execute(root, force); err != nil {
				return err
			}

			if cleanup, err := logger.Setup(logger.Config{Root: root, Debug: g.debug}); err == nil {
				logger.L().Info("workspace.init", "root", root, "force", force)
				_ = cleanup()
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized thermosweep workspace at %s\n", root)
			return nil
		},
	}

	c.Flags().BoolVar(&force, "force", false, "Overwrite existing template files")
	return c
}
