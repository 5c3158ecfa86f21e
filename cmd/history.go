package cmd

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"oops/internal/history"
	"oops/internal/ui"
)

var (
	historyLimit int
	historyJSON  bool
)

var typosCmd = &cobra.Command{
	Use:   "typos",
	Short: "List your most frequent typos",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printFrequencies(cmd, "typo", state.engine.FrequentTypos(historyLimit))
	},
}

var correctionsCmd = &cobra.Command{
	Use:   "corrections",
	Short: "List the commands you most often needed corrected to",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printFrequencies(cmd, "correction", state.engine.FrequentCorrections(historyLimit))
	},
}

var learnedCmd = &cobra.Command{
	Use:   "learned",
	Short: "List the typo corrections oops has learned",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		all := state.engine.Corrections()
		typos := make([]string, 0, len(all))
		for typo := range all {
			typos = append(typos, typo)
		}
		slices.Sort(typos)
		typos = limited(typos, historyLimit)

		out := cmd.OutOrStdout()
		if historyJSON {
			pairs := make([]learnedPair, len(typos))
			for i, typo := range typos {
				pairs[i] = learnedPair{Typo: typo, Correction: all[typo]}
			}
			return printJSON(cmd, pairs)
		}
		if len(typos) == 0 {
			fmt.Fprintln(out, ui.HiBlack("Nothing learned yet (oops confirm <typo> <correction>)."))
			return nil
		}
		rows := make([][]string, len(typos))
		for i, typo := range typos {
			rows[i] = []string{typo, all[typo]}
		}
		width := ui.Width(stdoutFile(cmd), 80) / 2
		fmt.Fprintln(out, ui.Table([]string{"typo", "correction"}, rows, width))
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently confirmed corrections, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries := state.engine.History()
		slices.Reverse(entries)
		entries = limited(entries, historyLimit)

		out := cmd.OutOrStdout()
		if historyJSON {
			return printJSON(cmd, entries)
		}
		if len(entries) == 0 {
			if !state.engine.HistoryEnabled() {
				fmt.Fprintln(out, ui.HiBlack("History is disabled (oops config toggle-history)."))
				return nil
			}
			fmt.Fprintln(out, ui.HiBlack("No corrections recorded yet."))
			return nil
		}
		rows := make([][]string, len(entries))
		for i, e := range entries {
			rows[i] = []string{e.Timestamp.Local().Format(time.DateTime), e.Typo, e.Correction}
		}
		width := (ui.Width(stdoutFile(cmd), 80) - 20) / 2
		fmt.Fprintln(out, ui.Table([]string{"when", "typo", "correction"}, rows, width))
		return nil
	},
}

type learnedPair struct {
	Typo       string `json:"typo"`
	Correction string `json:"correction"`
}

// limited returns the first n items, or all of them when n is negative.
func limited[T any](items []T, n int) []T {
	if n >= 0 && n < len(items) {
		return items[:n]
	}
	return items
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func init() {
	for _, c := range []*cobra.Command{typosCmd, correctionsCmd, learnedCmd, historyCmd} {
		c.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of entries to show (-1 for all)")
		c.Flags().BoolVar(&historyJSON, "json", false, "print as JSON")
		rootCmd.AddCommand(c)
	}
}

func printFrequencies(cmd *cobra.Command, heading string, freqs []history.Frequency) error {
	out := cmd.OutOrStdout()
	if historyJSON {
		return printJSON(cmd, freqs)
	}

	if len(freqs) == 0 {
		if !state.engine.HistoryEnabled() {
			fmt.Fprintln(out, ui.HiBlack("History is disabled (oops config toggle-history)."))
			return nil
		}
		fmt.Fprintln(out, ui.HiBlack("No corrections recorded yet."))
		return nil
	}

	rows := make([][]string, len(freqs))
	for i, f := range freqs {
		rows[i] = []string{strconv.Itoa(i + 1), f.Value, strconv.FormatUint(f.Count, 10)}
	}
	width := ui.Width(stdoutFile(cmd), 80) - 20
	fmt.Fprintln(out, ui.Table([]string{"#", heading, "count"}, rows, width))
	return nil
}
