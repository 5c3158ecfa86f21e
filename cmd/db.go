package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"oops/internal/corrector"
	"oops/internal/db"
	"oops/internal/ui"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Export, import or locate the learned state",
}

var dbExportCmd = &cobra.Command{
	Use:     "export <file.yaml|file.json>",
	Short:   "Write the learned state to a YAML or JSON file",
	Example: "  oops db export ~/oops-backup.yaml",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := db.FormatFromPath(args[0])
		if err != nil {
			return err
		}
		if err := exportFile(args[0], state.engine.Snapshot(), format); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s exported to %s\n", ui.Green("✓"), args[0])
		return nil
	},
}

// exportFile writes snap to path, reporting a failed close.
func exportFile(path string, snap *corrector.Snapshot, format db.Format) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := db.Export(f, snap, format); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

var dbImportCmd = &cobra.Command{
	Use:   "import <file.yaml|file.json>",
	Short: "Replace the learned state with a YAML or JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := db.FormatFromPath(args[0])
		if err != nil {
			return err
		}
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer f.Close()

		snap, err := db.Import(f, format)
		if err != nil {
			return err
		}
		if err := state.engine.Restore(snap); err != nil {
			return err
		}
		state.dirty = true

		stats := state.engine.Stats()
		fmt.Fprintf(cmd.ErrOrStderr(), "%s imported %d commands, %d corrections\n",
			ui.Green("✓"), stats.Commands, stats.Corrections)
		return nil
	},
}

var dbPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the database file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), state.store.Path())
		return nil
	},
}

func init() {
	dbCmd.AddCommand(dbExportCmd, dbImportCmd, dbPathCmd)
	rootCmd.AddCommand(dbCmd)
}
