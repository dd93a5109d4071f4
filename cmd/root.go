package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/quantiz/internal/api"
	"github.com/abhisek/quantiz/internal/catalog"
	"github.com/abhisek/quantiz/internal/config"
	"github.com/abhisek/quantiz/internal/logging"
	"github.com/abhisek/quantiz/internal/progress"
	"github.com/abhisek/quantiz/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "quantiz",
	Short: "Quant interview trainer",
	Long:  "Quantiz: terminal client for practicing quant interview questions against a trainer backend.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("api", "", "Trainer backend base URL (overrides QUANTIZ_API_URL env var)")
	pf.String("db", "", "Path to SQLite credential database (overrides QUANTIZ_DB env var)")
	pf.String("config", "", "Path to YAML config file")
	pf.String("log-file", "", "Path to log file (overrides QUANTIZ_LOG_FILE env var)")
	pf.String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the config file, .env and environment, then applies
// flags on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if v, _ := cmd.Flags().GetString("api"); v != "" {
		cfg.API.BaseURL = v
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.Store.Path = v
	}
	if v, _ := cmd.Flags().GetString("log-file"); v != "" {
		cfg.Log.File = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// resolveDBPath returns the configured database path, falling back to the
// default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if p := cfg.Store.Path; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// deps is everything a command needs to talk to the backend.
type deps struct {
	cfg      config.Config
	logger   *slog.Logger
	store    *store.Store
	client   *api.Client
	svc      api.Service
	catalog  *catalog.Store
	mediator *progress.Mediator

	closers []io.Closer
}

// openDeps loads config, opens the credential store and builds the remote
// service with its retry and logging decorators. tui selects file logging;
// plain subcommands log warnings to stderr.
func openDeps(cmd *cobra.Command, tui bool) (*deps, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	d := &deps{cfg: cfg}

	if tui {
		logger, f, err := logging.OpenFile(cfg.Log.File, cfg.Log.Level)
		if err != nil {
			return nil, fmt.Errorf("open log: %w", err)
		}
		d.logger = logger
		d.closers = append(d.closers, f)
	} else {
		d.logger = logging.New(os.Stderr, slog.LevelWarn)
	}

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	d.store = st
	d.closers = append(d.closers, st)

	d.client = api.NewClient(cfg.API.BaseURL,
		api.WithCredentialStore(st.Credentials()),
		api.WithTimeout(cfg.API.Timeout),
	)
	if err := d.client.Restore(cmd.Context()); err != nil {
		d.logger.Warn("discarding saved credential", "error", err)
	}
	d.svc = api.WithRetry(api.WithLogging(d.client, d.logger), cfg.APIRetry())
	d.catalog = catalog.NewStore(d.svc)
	d.mediator = progress.NewMediator(d.svc, d.catalog, d.logger)
	return d, nil
}

// Close releases everything openDeps opened, last opened first.
func (d *deps) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		errs = append(errs, d.closers[i].Close())
	}
	d.closers = nil
	return errors.Join(errs...)
}

// requireLogin fails with a hint when no valid credential is held.
func (d *deps) requireLogin(cmd *cobra.Command) (*api.User, error) {
	u, err := d.svc.CurrentUser(cmd.Context())
	if err != nil {
		if api.IsAuth(err) {
			return nil, fmt.Errorf("not signed in (%s); run: quantiz login", api.Message(err))
		}
		return nil, err
	}
	return u, nil
}
