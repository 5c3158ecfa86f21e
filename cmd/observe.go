package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

var observeCmd = &cobra.Command{
	Use:   "observe <command line>",
	Short: "Learn from a command that ran successfully",
	Long: `Feed a command line into learning. Shell hooks call this after every
command; lines that failed (non-zero --status) are ignored.`,
	Example: `  oops observe --status $? "$(fc -ln -1)"`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if observeStatus != 0 {
			return nil
		}
		line := strings.Join(args, " ")
		if strings.HasPrefix(strings.TrimSpace(line), rootCmd.Name()+" ") {
			return nil
		}
		state.engine.Observe(line)
		state.dirty = true
		return nil
	},
}

var observeStatus int

func init() {
	rootCmd.AddCommand(observeCmd)
	observeCmd.Flags().IntVar(&observeStatus, "status", 0, "exit status of the command")
}
