package main

import (
	"fmt"
	"io"
	"os"

	"folio/api"
	"folio/config"
	"folio/session"
	"folio/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app carries the flags and the services built from them for one run.
type app struct {
	// Global flags
	verbose bool
	output  string
	apiURL  string

	cfg    *config.Config
	logger *zap.Logger
	tokens *session.FileStore
	client *api.Client
	store  *store.Store
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "folio",
		Short: "Browse and manage a portfolio backend",
		Long: `folio talks to the portfolio backend.

Public commands read the project list and send contact messages.
Admin commands need a session: run 'folio login' first.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&a.output, "output", "o", formatTable, "Output format: table, json or yaml")
	rootCmd.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "Backend origin (overrides FOLIO_API_URL)")

	rootCmd.AddCommand(
		a.projectsCmd(),
		a.contactCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.statusCmd(),
		a.adminCmd(),
	)

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	if err := checkFormat(a.output); err != nil {
		return err
	}

	cfg, err := config.LoadWith(config.Overrides{APIURL: a.apiURL})
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	a.logger, err = newLogger(cfg.App.LogLevel, a.verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	endpoints, err := cfg.Endpoints()
	if err != nil {
		return err
	}

	a.tokens = session.NewFileStore(cfg.Session.TokenPath)
	a.client = api.NewClient(endpoints,
		api.WithTimeout(cfg.API.Timeout),
		api.WithTokens(a.tokens),
		api.WithLogger(a.logger),
	)
	a.store = store.New(a.client,
		store.WithLogger(a.logger),
		store.WithNotifier(noticePrinter(cmd.ErrOrStderr())),
	)

	a.logger.Debug("configured",
		zap.String("api", endpoints.Base()),
		zap.String("env", cfg.App.Environment),
		zap.String("token_path", a.tokens.Path()),
	)
	return nil
}

func newLogger(level string, verbose bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	return config.Build()
}

// noticePrinter shows store notices on w, one per line.
func noticePrinter(w io.Writer) store.Notifier {
	return store.NotifierFunc(func(n store.Notice) {
		if n.Destructive {
			fmt.Fprintf(w, "%s: %s\n", n.Title, n.Description)
			return
		}
		fmt.Fprintf(w, "%s %s\n", n.Title, n.Description)
	})
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
