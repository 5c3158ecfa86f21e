package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"oops/internal/config"
	"oops/internal/ui"
)

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Read or change settings",
	Annotations: map[string]string{noEngine: ""},
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one setting, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 1 {
			value, err := config.Value(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, value)
			return nil
		}

		var rows [][]string
		for _, key := range config.Keys() {
			value, _ := config.Value(key)
			rows = append(rows, []string{key, fmt.Sprint(value)})
		}
		fmt.Fprintln(out, ui.Table([]string{"key", "value"}, rows, 0))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:     "set <key> <value>",
	Short:   "Change a setting",
	Example: "  oops config set correction.threshold 0.7\n  oops config set correction.lenient_commands git,hg",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := config.ParseValue(args[0], args[1])
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", args[0], err)
		}
		if err := config.Set(args[0], value); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s = %v\n", ui.Green("✓"), args[0], value)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), config.Path())
		return nil
	},
}

var configToggleHistoryCmd = &cobra.Command{
	Use:   "toggle-history",
	Short: "Turn correction history on or off",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		enabled := !config.Get().History.Enabled
		if err := config.Set("history.enabled", enabled); err != nil {
			return err
		}
		status := ui.Red("off")
		if enabled {
			status = ui.Green("on")
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "history is %s\n", status)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd, configSetCmd, configPathCmd, configToggleHistoryCmd)
	rootCmd.AddCommand(configCmd)
}
