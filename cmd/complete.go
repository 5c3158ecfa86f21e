package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var completeLimit int

var completeCmd = &cobra.Command{
	Use:   "complete <partial> | complete <command> <partial>",
	Short: "Complete a command name or a command's learned words",
	Long: `With one argument, list known command names matching it. With two, list
the learned arguments (or flags, when the partial starts with "-") of the
command.`,
	Example: `  oops complete kube
  oops complete git che
  oops complete -- git --am`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var words []string
		if len(args) == 1 {
			words = state.engine.Complete("", args[0], completeLimit)
		} else {
			words = state.engine.Complete(args[0], args[1], completeLimit)
		}
		for _, w := range words {
			fmt.Fprintln(cmd.OutOrStdout(), w)
		}
		return nil
	},
}

func init() {
	completeCmd.Flags().IntVarP(&completeLimit, "limit", "n", 10, "maximum number of words")
	rootCmd.AddCommand(completeCmd)
}
