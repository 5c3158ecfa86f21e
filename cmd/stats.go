package cmd

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"oops/internal/ui"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show what oops has learned",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		stats := state.engine.Stats()

		if statsJSON {
			data, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		history := "off"
		if stats.HistoryEnabled {
			history = "on"
		}
		rows := [][]string{
			{"commands", strconv.Itoa(stats.Commands)},
			{"aliases", strconv.Itoa(stats.Aliases)},
			{"remembered corrections", strconv.Itoa(stats.Corrections)},
			{"learned commands", strconv.Itoa(stats.Patterns)},
			{"history entries", strconv.Itoa(stats.History)},
			{"history", history},
			{"corpus fingerprint", stats.Fingerprint},
		}
		fmt.Fprintln(out, ui.TitleStyle.Render("Stores"))
		fmt.Fprintln(out, ui.Table([]string{"store", "size"}, rows, 0))

		if names := stats.Metrics.StageNames(); len(names) > 0 {
			var stageRows [][]string
			for _, name := range names {
				stageRows = append(stageRows, []string{name, strconv.FormatInt(stats.Metrics.Stages[name], 10)})
			}
			fmt.Fprintln(out, ui.TitleStyle.Render("Decisions"))
			fmt.Fprintln(out, ui.Table([]string{"stage", "count"}, stageRows, 0))
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print as JSON")
	rootCmd.AddCommand(statsCmd)
}
