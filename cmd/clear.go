package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"oops/internal/ui"
)

var clearAll bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget remembered corrections",
	Long: `Forget every remembered correction and the correction history. With --all
the learned command vocabulary is dropped too and PATH is scanned again.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		state.dirty = true
		if !clearAll {
			state.engine.ClearCorrections()
			fmt.Fprintf(cmd.ErrOrStderr(), "%s cleared corrections\n", ui.Green("✓"))
			return nil
		}

		state.engine.ClearAll()
		if err := refreshCorpus(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s cleared all learned state (%d commands rescanned)\n",
			ui.Green("✓"), state.engine.Stats().Commands)
		return nil
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rescan PATH and shell aliases",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wasDirty := state.dirty
		state.dirty = false
		if err := refreshCorpus(); err != nil {
			return err
		}
		stats := state.engine.Stats()
		if !state.dirty {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s nothing changed (%d commands, %d aliases)\n",
				ui.HiBlack("·"), stats.Commands, stats.Aliases)
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %d commands, %d aliases\n",
				ui.Green("✓"), stats.Commands, stats.Aliases)
		}
		state.dirty = state.dirty || wasDirty
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVarP(&clearAll, "all", "a", false, "also forget learned commands, flags and arguments")
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(refreshCmd)
}
