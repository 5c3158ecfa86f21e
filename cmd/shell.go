package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"oops/internal/shell"
	"oops/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init [bash|zsh|fish]",
	Short: "Print the shell integration script",
	Long: `Print the script that reports finished commands to oops and defines a
function that reruns the previous command corrected. The function name comes
from the shell.alias setting.`,
	Example: `  eval "$(oops init bash)"
  oops init fish | source`,
	Args:        cobra.MaximumNArgs(1),
	ValidArgs:   []string{string(shell.Bash), string(shell.Zsh), string(shell.Fish)},
	Annotations: map[string]string{noEngine: ""},
	RunE: func(cmd *cobra.Command, args []string) error {
		sh, err := targetShell(args)
		if err != nil {
			return err
		}
		script, err := shell.Script(sh, rootCmd.Name(), state.cfg.Shell.Alias)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), script)
		return nil
	},
}

var uninstallShell bool

var installCmd = &cobra.Command{
	Use:         "install [bash|zsh|fish]",
	Short:       "Load the shell integration from your rc file",
	Args:        cobra.MaximumNArgs(1),
	ValidArgs:   []string{string(shell.Bash), string(shell.Zsh), string(shell.Fish)},
	Annotations: map[string]string{noEngine: ""},
	RunE: func(cmd *cobra.Command, args []string) error {
		sh, err := targetShell(args)
		if err != nil {
			return err
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		inst := shell.NewInstaller(sh, home, rootCmd.Name())
		errOut := cmd.ErrOrStderr()

		if uninstallShell {
			removed, err := inst.Uninstall()
			if err != nil {
				return fmt.Errorf("failed to update %s: %w", inst.RCFile, err)
			}
			if !removed {
				fmt.Fprintf(errOut, "%s not installed in %s\n", ui.HiBlack("·"), inst.RCFile)
				return nil
			}
			fmt.Fprintf(errOut, "%s removed from %s\n", ui.Green("✓"), inst.RCFile)
			return nil
		}

		added, err := inst.Install()
		if err != nil {
			return fmt.Errorf("failed to update %s: %w", inst.RCFile, err)
		}
		if !added {
			fmt.Fprintf(errOut, "%s already installed in %s\n", ui.HiBlack("·"), inst.RCFile)
			return nil
		}
		state.log.Info("installed shell integration", "shell", sh, "rc", inst.RCFile)
		fmt.Fprintf(errOut, "%s added to %s; restart the shell or run: %s\n",
			ui.Green("✓"), inst.RCFile, ui.Cyan(inst.Line()))
		return nil
	},
}

// targetShell picks the shell named in args, then the configured one.
func targetShell(args []string) (shell.Shell, error) {
	if len(args) == 1 {
		return shell.Parse(args[0])
	}
	if state.cfg.Shell.Name != "" {
		return shell.Parse(state.cfg.Shell.Name)
	}
	return shell.Detect()
}

func init() {
	installCmd.Flags().BoolVarP(&uninstallShell, "uninstall", "u", false, "remove the integration instead")
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(installCmd)
}
