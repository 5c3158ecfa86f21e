package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"oops/internal/corrector"
	"oops/internal/ui"
)

var fixCmd = &cobra.Command{
	Use:   "fix <command line>",
	Short: "Print the corrected version of a command line",
	Long: `Correct a mistyped command line. The corrected line is printed on stdout;
when there is nothing to correct, nothing is printed and the exit status is 1.`,
	Example: `  oops fix gti stauts
  oops fix "carg build --relase"
  oops fix --confirm "$(fc -ln -1)"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFix,
}

var (
	fixExplain bool
	fixConfirm bool
	fixCopy    bool
)

func init() {
	rootCmd.AddCommand(fixCmd)

	fixCmd.Flags().BoolVarP(&fixExplain, "explain", "e", false, "show how the correction was found")
	fixCmd.Flags().BoolVar(&fixConfirm, "confirm", false, "ask before accepting and remember the answer")
	fixCmd.Flags().BoolVarP(&fixCopy, "copy", "c", false, "copy the corrected command to the clipboard")
}

// errDangerous is returned instead of printing a destructive correction.
var errDangerous = errors.New("refusing to suggest a destructive command")

func runFix(cmd *cobra.Command, args []string) error {
	input := strings.Join(args, " ")
	stderr := cmd.ErrOrStderr()

	c := state.engine.Analyze(input)
	if c == nil {
		if fixExplain {
			printSuggestions(stderr, state.engine.Suggestions(input, 3))
		}
		return errNoCorrection
	}

	if d, ok := corrector.CheckDangerous(c.Corrected); ok {
		printDanger(stderr, d)
		return errDangerous
	}

	if fixExplain {
		displayCorrection(stderr, c)
	}

	corrected := c.Corrected
	if fixConfirm {
		if !ui.IsTerminal(os.Stdin) {
			state.log.Warn("not a terminal, skipping confirmation")
		} else {
			answer, err := askConfirmation(c)
			if err != nil {
				return err
			}
			if answer == "" {
				return errNoCorrection
			}
			if _, ok := corrector.CheckDangerous(answer); ok && answer != c.Corrected {
				return errDangerous
			}
			corrected = answer
			state.engine.Confirm(input, corrected)
			state.dirty = true
		}
	}

	if fixCopy {
		if err := clipboard.WriteAll(corrected); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		fmt.Fprintf(stderr, "%s copied to clipboard\n", ui.Green("✓"))
	}

	fmt.Fprintln(cmd.OutOrStdout(), corrected)
	return nil
}

// askConfirmation returns the accepted command line, or "" when the user
// declines.
func askConfirmation(c *corrector.Correction) (string, error) {
	const (
		choiceYes  = "yes"
		choiceNo   = "no"
		choiceEdit = "edit"
	)
	choice := choiceYes
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("Did you mean %s?", c.Corrected)).
				Options(
					huh.NewOption("Yes", choiceYes),
					huh.NewOption("No", choiceNo),
					huh.NewOption("Type the right command", choiceEdit),
				).
				Value(&choice),
		),
	).Run()
	if err != nil {
		return "", fmt.Errorf("confirmation prompt failed: %w", err)
	}

	switch choice {
	case choiceYes:
		return c.Corrected, nil
	case choiceEdit:
		typed := c.Corrected
		err := huh.NewInput().
			Title("Command").
			Value(&typed).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("command cannot be empty")
				}
				return nil
			}).
			Run()
		if err != nil {
			return "", fmt.Errorf("confirmation prompt failed: %w", err)
		}
		return strings.TrimSpace(typed), nil
	default:
		return "", nil
	}
}

func displayCorrection(w io.Writer, c *corrector.Correction) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, ui.TitleStyle.Render("Did you mean:"))
	fmt.Fprintf(w, "  Original:  %s\n", ui.Red(c.Original))
	fmt.Fprintf(w, "  Corrected: %s\n", ui.Green(c.Corrected))
	fmt.Fprintf(w, "  Stage:     %s\n", ui.Cyan(c.Stage.String()))
	if c.Explanation != "" {
		fmt.Fprintf(w, "  %s\n", ui.HiBlack(c.Explanation))
	}

	var color lipgloss.Color
	switch {
	case c.Confidence >= 0.9:
		color = ui.ColorGreen
	case c.Confidence >= 0.7:
		color = ui.ColorYellow
	default:
		color = ui.ColorGray
	}
	confidence := lipgloss.NewStyle().Foreground(color).Render(fmt.Sprintf("Confidence: %.0f%%", c.Confidence*100))
	fmt.Fprintf(w, "  %s\n\n", confidence)
}

func printSuggestions(w io.Writer, suggestions []string) {
	if len(suggestions) == 0 {
		fmt.Fprintln(w, ui.HiBlack("No correction found."))
		return
	}
	fmt.Fprintln(w, ui.TitleStyle.Render("No correction found. Similar past corrections:"))
	for _, s := range suggestions {
		fmt.Fprintf(w, "  • %s\n", ui.Cyan(s))
	}
}

func printDanger(w io.Writer, d corrector.Danger) {
	banner := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#DC2626")).
		Padding(0, 1)
	fmt.Fprintln(w)
	fmt.Fprintln(w, banner.Render("⚠  DANGEROUS COMMAND"))
	fmt.Fprintf(w, "  %s: %s\n\n", ui.WarningStyle.Render(d.Command), d.Reason)
}
