// Package cmd provides the oops command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"oops/internal/config"
	"oops/internal/corrector"
	"oops/internal/db"
	"oops/internal/logger"
	"oops/internal/metrics"
	"oops/internal/scanner"
	"oops/internal/ui"
)

// noEngine marks commands that run without opening the database.
const noEngine = "no-engine"

var (
	// Version is set during build
	Version = "dev"
	// Commit is set during build
	Commit = "unknown"

	cfgFile string
	dbFile  string
	debug   bool

	state *app

	// errNoCorrection exits with status 1 and prints nothing.
	errNoCorrection = errors.New("no correction")

	rootCmd = &cobra.Command{
		Use:   "oops",
		Short: "Correct mistyped shell commands",
		Long: `oops suggests the command you meant to type. It learns from the commands
that succeed in your shell and from the corrections you confirm.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initialize(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return persist(cmd.Context())
		},
	}
)

// app is the state shared by the commands of one invocation.
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	store  *db.Storage
	engine *corrector.Engine
	dirty  bool
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/oops/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbFile, "db", "", "database file (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "log debug output to stderr")
}

// Execute runs the root command and exits with its status.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd.Version = fmt.Sprintf("%s (%s)", Version, Commit)
	applyHelp(rootCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if perr := persist(ctx); perr != nil {
			logger.Error("failed to save state", "error", perr)
		}
		if errors.Is(err, errNoCorrection) {
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.Red("Error:"), err)
		os.Exit(2)
	}
}

func initialize(cmd *cobra.Command) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logCfg := cfg.LoggerConfig()
	if debug {
		logCfg.Level = "debug"
		logCfg.Console = true
	}
	if err := logger.Initialize(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.Yellow("warning:"), err)
	}
	log := logger.With("cli")

	state = &app{cfg: cfg, log: log}
	if skipsEngine(cmd) {
		return nil
	}

	path := cfg.Database.Path
	if dbFile != "" {
		path = dbFile
	}
	store, err := db.NewStorage(path)
	if err != nil {
		return err
	}
	state.store = store

	m := metrics.New()
	if prev, err := store.LoadMetrics(cmd.Context()); err != nil {
		log.Warn("failed to load metrics", "error", err)
	} else {
		m.Merge(prev)
	}
	state.engine = corrector.New(cfg.EngineConfig(),
		corrector.WithLogger(logger.With("engine")),
		corrector.WithMetrics(m),
	)

	snap, err := store.LoadSnapshot(cmd.Context())
	switch {
	case errors.Is(err, db.ErrNoSnapshot):
		log.Info("no saved state, scanning commands", "db", store.Path())
		return refreshCorpus()
	case err != nil:
		log.Error("failed to load saved state, starting empty", "error", err)
		return refreshCorpus()
	}
	if err := state.engine.Restore(snap); err != nil {
		log.Error("failed to restore saved state, starting empty", "error", err)
		return refreshCorpus()
	}
	// The configured history switch wins over the stored one.
	state.engine.SetHistoryEnabled(cfg.History.Enabled)
	if state.engine.Stats().Commands == 0 {
		return refreshCorpus()
	}
	return nil
}

func skipsEngine(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[noEngine]; ok {
			return true
		}
	}
	return cmd.Name() == "help" || cmd.Name() == "completion"
}

// refreshCorpus rescans PATH and the shell rc files.
func refreshCorpus() error {
	changed, err := state.engine.Refresh(
		scanner.PathScanner{Workers: state.cfg.Correction.Workers, Log: state.log},
		scanner.AliasScanner{Shell: state.cfg.Shell.Name, Files: state.cfg.Shell.RCFiles},
	)
	if err != nil {
		return fmt.Errorf("failed to scan commands: %w", err)
	}
	if changed {
		state.dirty = true
	}
	return nil
}

func persist(ctx context.Context) error {
	defer closeState()
	if state == nil || state.engine == nil {
		return nil
	}
	if err := state.store.SaveMetrics(ctx, state.engine.Metrics().Snapshot()); err != nil {
		state.log.Warn("failed to save metrics", "error", err)
	}
	if !state.dirty {
		return nil
	}
	if err := state.store.SaveSnapshot(ctx, state.engine.Snapshot()); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	state.dirty = false
	return nil
}

func closeState() {
	if state == nil {
		return
	}
	if state.engine != nil {
		state.engine.Close()
	}
	if state.store != nil {
		if err := state.store.Close(); err != nil {
			state.log.Warn("failed to close database", "error", err)
		}
	}
	state = nil
}

// stdoutFile returns the command's output when it is a file.
func stdoutFile(cmd *cobra.Command) *os.File {
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		return f
	}
	return nil
}

func applyHelp(c *cobra.Command) {
	setupHelp(c)
	for _, sub := range c.Commands() {
		applyHelp(sub)
	}
}

func setupHelp(cmd *cobra.Command) {
	cmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		out := c.OutOrStdout()
		width := ui.Width(os.Stdout, 80)

		if c == c.Root() {
			banner := lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(ui.ColorPurple).
				Padding(0, 2).
				MarginBottom(1)
			fmt.Fprintf(out, "\n%s\n", banner.Render("oops · "+c.Short))
		} else {
			fmt.Fprintf(out, "\n%s\n", ui.TitleStyle.Render(fmt.Sprintf("%s - %s", c.CommandPath(), c.Short)))
		}
		if c.Long != "" && c.Long != c.Short {
			fmt.Fprintf(out, "%s\n\n", ui.HiBlack(c.Long))
		}

		fmt.Fprintln(out, ui.TitleStyle.Render("Usage:"))
		if c.Runnable() {
			fmt.Fprintf(out, "  %s\n", ui.Cyan(c.UseLine()))
		}
		if c.HasAvailableSubCommands() {
			fmt.Fprintf(out, "  %s %s\n", ui.Cyan(c.CommandPath()), ui.Green("[command]"))
		}
		fmt.Fprintln(out)

		if c.Example != "" {
			fmt.Fprintln(out, ui.TitleStyle.Render("Examples:"))
			fmt.Fprintf(out, "%s\n\n", c.Example)
		}

		if c.HasAvailableSubCommands() {
			fmt.Fprintln(out, ui.TitleStyle.Render("Commands:"))
			for _, sub := range c.Commands() {
				if !sub.IsAvailableCommand() {
					continue
				}
				pad := max(20-len(sub.Name()), 2)
				short := ui.Truncate(sub.Short, width-24)
				fmt.Fprintf(out, "  %s%s%s\n", ui.Green(sub.Name()), strings.Repeat(" ", pad), ui.HiBlack(short))
			}
			fmt.Fprintln(out)
		}

		printFlags := func(title string, flags *pflag.FlagSet) {
			visible := 0
			flags.VisitAll(func(f *pflag.Flag) {
				if !f.Hidden {
					visible++
				}
			})
			if visible == 0 {
				return
			}
			fmt.Fprintln(out, ui.TitleStyle.Render(title))
			flags.VisitAll(func(f *pflag.Flag) {
				if f.Hidden {
					return
				}
				name := fmt.Sprintf("      --%s", f.Name)
				if f.Shorthand != "" {
					name = fmt.Sprintf("  -%s, --%s", f.Shorthand, f.Name)
				}
				if t := f.Value.Type(); t != "bool" {
					name += " " + t
				}
				pad := max(28-len(name), 2)
				fmt.Fprintf(out, "%s%s%s\n", ui.Yellow(name), strings.Repeat(" ", pad), ui.HiBlack(f.Usage))
			})
			fmt.Fprintln(out)
		}
		if c.HasAvailableLocalFlags() {
			printFlags("Flags:", c.LocalFlags())
		}
		if c.HasAvailableInheritedFlags() {
			printFlags("Global Flags:", c.InheritedFlags())
		}
	})
}
