package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"oops/internal/ui"
)

var confirmCmd = &cobra.Command{
	Use:   "confirm <typo> <correction>",
	Short: "Remember a correction",
	Long: `Record that a mistyped line should become the given correction. Quote
multi-word lines. A typo that is a single word also corrects the command
name of longer lines.`,
	Example: `  oops confirm gti git
  oops confirm "gp" "git push origin main"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		typo, correction := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
		if typo == "" || correction == "" {
			return fmt.Errorf("typo and correction must not be empty")
		}
		state.engine.Confirm(typo, correction)
		state.dirty = true
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s → %s\n", ui.Green("✓"), ui.Red(typo), ui.Green(correction))
		return nil
	},
}

var forgetCmd = &cobra.Command{
	Use:   "forget <typo>",
	Short: "Forget a remembered correction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !state.engine.Forget(args[0]) {
			return fmt.Errorf("no correction remembered for %q", args[0])
		}
		state.dirty = true
		fmt.Fprintf(cmd.ErrOrStderr(), "%s forgot %s\n", ui.Green("✓"), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(confirmCmd)
	rootCmd.AddCommand(forgetCmd)
}
