package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/skim/internal/api"
	"github.com/pders01/skim/internal/config"
	"github.com/pders01/skim/internal/debuglog"
	"github.com/pders01/skim/internal/prefs"
	"github.com/pders01/skim/internal/storage"
	"github.com/pders01/skim/internal/tui"
)

// Version is the version of the application, set at build time
var Version = "dev"

type options struct {
	configPath   string
	dbPath       string
	baseURL      string
	logLevel     string
	profileFiles []string
	quiet        bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "skim",
		Short:        "Browse a paginated post feed in the terminal",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	f.StringVar(&opts.dbPath, "db", "", "Path to preferences database (overrides config)")
	f.StringVar(&opts.baseURL, "base-url", "", "Posts API base URL (overrides config)")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level: off, error, warn, info, debug")
	f.StringSliceVar(&opts.profileFiles, "profile-file", nil, "Extra endpoint profile files (TOML)")
	root.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Skip startup banner")

	root.AddCommand(
		newVersionCmd(),
		newConfigCmd(),
		newPrefsCmd(opts),
		newHistoryCmd(opts),
	)
	return root
}

// loadConfig applies flag overrides on top of the config file.
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.dbPath != "" {
		cfg.Database.Path = opts.dbPath
	}
	if opts.baseURL != "" {
		cfg.API.BaseURL = opts.baseURL
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (*storage.Store, error) {
	if cfg.Database.Path == "" {
		return nil, errors.New("no database path configured")
	}
	return storage.NewStore(cfg.Database.Path, cfg.Database.Timeout)
}

func runTUI(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.Path); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}
	defer debuglog.Close()

	client, err := api.NewClient(cfg, opts.profileFiles...)
	if err != nil {
		return err
	}

	// A locked or unreadable database still lets the feed run; preferences
	// then live only for this session.
	store, err := openStore(cfg)
	if err != nil {
		debuglog.Warnf("preferences are memory-only: %v", err)
		store = nil
	} else {
		defer store.Close()
	}

	var backend prefs.Backend
	if store != nil {
		backend = store
	}

	if !opts.quiet {
		fmt.Fprintln(cmd.OutOrStdout(), tui.Banner(Version))
	}

	debuglog.WithFields(map[string]any{"component": "main"}).
		With("base_url", client.BaseURL(), "profile", cfg.API.Profile).
		Infof("starting %s %s", config.AppName, Version)

	app := tui.NewApp(cfg, client, store, prefs.New(backend))
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, tui.Banner(Version))
			fmt.Fprintf(out, "%s %s\n", config.AppName, Version)
			fmt.Fprintln(out, "github.com/pders01/skim")
		},
	}
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var output string
	gen := &cobra.Command{
		Use:   "generate",
		Short: "Write the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := output
			if path == "" {
				path = config.DefaultConfigPath()
			}
			if err := config.GenerateDefaultConfig(path); err != nil {
				return fmt.Errorf("failed to generate config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated default configuration at: %s\n", path)
			return nil
		},
	}
	gen.Flags().StringVarP(&output, "output", "o", "", "Where to write the file (default: XDG config dir)")

	cmd.AddCommand(gen)
	return cmd
}

func newPrefsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change stored preferences",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(opts, func(st *storage.Store) error {
				return printEntries(cmd.OutOrStdout(), prefs.New(st).Entries())
			})
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a preference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := prefs.Parse(args[0], args[1])
			if err != nil {
				return err
			}
			return withStore(opts, func(st *storage.Store) error {
				if err := prefs.New(st).Set(args[0], value); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
				return nil
			})
		},
	}

	cmd.AddCommand(listCmd, setCmd)
	return cmd
}

func printEntries(w io.Writer, entries []prefs.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\n", e.Key, e.Value)
	}
	return tw.Flush()
}

func newHistoryCmd(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently opened posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(opts, func(st *storage.Store) error {
				visits, err := st.RecentVisits(limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(visits) == 0 {
					fmt.Fprintln(out, "No posts opened yet")
					return nil
				}
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				for _, v := range visits {
					fmt.Fprintf(tw, "#%d\t%s\t%dx\t%s\n", v.PostID, v.Title, v.Count, v.VisitedAt.Format("2006-01-02 15:04"))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "How many entries to show (0 for all)")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget every opened post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(opts, func(st *storage.Store) error {
				if err := st.ClearVisits(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
				return nil
			})
		},
	}
	cmd.AddCommand(clearCmd)
	return cmd
}

func withStore(opts *options, fn func(*storage.Store) error) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}
