package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"oops/internal/scanner"
	"oops/internal/ui"
)

var (
	learnFile  string
	learnShell string
)

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Learn from the shell history file",
	Long: `Replay the shell history into learning so flags and arguments you already
use are known before the first typo. Lines whose command is not on PATH or an
alias are skipped, as are lines that look like they carry secrets.`,
	Example: `  oops learn
  oops learn --shell fish
  oops learn --file ~/.bash_history.bak --shell bash`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		shell := learnShell
		if shell == "" {
			shell = state.cfg.Shell.Name
		}
		reader := scanner.HistoryReader{
			Shell: shell,
			Path:  learnFile,
			Skip:  []string{rootCmd.Name()},
		}
		lines, err := reader.ReadCommands(cmd.Context())
		if err != nil {
			return err
		}

		// History keeps failed lines too; only commands that exist are learned.
		learned := 0
		for _, line := range lines {
			if !state.engine.Known(strings.Fields(line)[0]) {
				continue
			}
			state.engine.Observe(line)
			learned++
		}
		if learned > 0 {
			state.dirty = true
		}
		state.log.Info("learned from history", "shell", shell, "lines", len(lines), "learned", learned)
		fmt.Fprintf(cmd.ErrOrStderr(), "%s learned from %d of %d history lines\n", ui.Green("✓"), learned, len(lines))
		return nil
	},
}

func init() {
	learnCmd.Flags().StringVarP(&learnFile, "file", "f", "", "history file to read (default: the shell's history file)")
	learnCmd.Flags().StringVar(&learnShell, "shell", "", "history format: bash, zsh or fish (default: configured shell)")
	rootCmd.AddCommand(learnCmd)
}
