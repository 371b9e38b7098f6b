package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/verdantqa/plantcheck/internal/assets"
	"github.com/verdantqa/plantcheck/internal/output"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a starter test cases CSV into the given directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		targetDir := "."
		if len(args) == 1 {
			targetDir = args[0]
		}

		if err := os.MkdirAll(targetDir, 0755); err != nil {
			return fmt.Errorf("failed to create target directory %s: %w", targetDir, err)
		}

		entries, err := fs.ReadDir(assets.Templates, "templates")
		if err != nil {
			return fmt.Errorf("failed to read embedded templates: %w", err)
		}

		count := 0
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}

			targetPath := filepath.Join(targetDir, entry.Name())
			if !initForce {
				if _, err := os.Stat(targetPath); err == nil {
					output.Logger.Warn("Skipping existing file (use --force to overwrite)", "path", targetPath)
					continue
				}
			}

			content, err := fs.ReadFile(assets.Templates, "templates/"+entry.Name())
			if err != nil {
				output.Logger.Error("Failed to read embedded file", "file", entry.Name(), "error", err)
				continue
			}

			if err := os.WriteFile(targetPath, content, 0644); err != nil {
				output.Logger.Error("Failed to write to target", "path", targetPath, "error", err)
				continue
			}

			output.Logger.Info("Wrote starter file", "name", entry.Name())
			count++
		}

		output.Logger.Info("Init complete", "total_files", count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")
}
