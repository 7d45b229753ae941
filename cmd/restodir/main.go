// Package main is the entry point for the restodir CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/restodir/restodir/internal/config"
	"github.com/restodir/restodir/internal/domain/geo"
	logpkg "github.com/restodir/restodir/internal/logger"
	"github.com/restodir/restodir/internal/metrics"
	"github.com/restodir/restodir/internal/usecase/directory"
	"github.com/restodir/restodir/internal/version"
)

// app is the state shared by every subcommand, built in PersistentPreRunE.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger
	dir    *directory.Service
}

var (
	state app

	flagEnv string
	flagURI string
	flagDB  string
	flagRef string
)

var rootCmd = &cobra.Command{
	Use:   "restodir",
	Short: "Browse, search and edit a restaurant directory",
	Long: `restodir manages restaurant records in a MongoDB collection. Search results
are ordered by distance from a reference point; records can be imported from
line-delimited extended JSON, edited field by field and deleted.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return state.init(cmd)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		state.close()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagEnv, "env", "", "config environment (default: $ENV or local)")
	pf.StringVar(&flagURI, "uri", "", "MongoDB connection URI (overrides database.uri)")
	pf.StringVar(&flagDB, "db", "", "database name (overrides database.name)")
	pf.StringVar(&flagRef, "ref", "", `reference point "<lon>,<lat>", e.g. 73.9W,40.9N`)
}

func (a *app) init(cmd *cobra.Command) error {
	a.env = flagEnv
	if a.env == "" {
		a.env = config.GetEnv()
	}

	cfg, err := config.Load(a.env)
	if err != nil {
		return err
	}
	if flagURI != "" {
		cfg.Database.URI = flagURI
	}
	if flagDB != "" {
		cfg.Database.Name = flagDB
	}
	if flagRef != "" {
		p, err := geo.ParsePoint(flagRef)
		if err != nil {
			return fmt.Errorf("--ref: %w", err)
		}
		cfg.Reference = config.ReferenceConfig{Longitude: p.Lon, Latitude: p.Lat}
	}
	a.cfg = cfg

	logger, err := logpkg.NewLogger(a.env, cfg.Logging.Level)
	if err != nil {
		return err
	}
	a.logger = logger

	metrics.RegisterStoreMetrics()
	metrics.RegisterImportMetrics()
	metrics.RegisterHTTPMetrics()

	ref := geo.Point{Lon: cfg.Reference.Longitude, Lat: cfg.Reference.Latitude}
	a.dir = directory.New(newConnector(cfg, logger), ref, logger)

	logger.Debug("Starting restodir",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", a.env),
		zap.String("command", cmd.Name()),
		zap.String("database", cfg.Database.Name),
	)
	return nil
}

// connect opens the configured database.
func (a *app) connect(ctx context.Context) error {
	return a.dir.Connect(ctx, a.cfg.Database.URI, a.cfg.Database.Name) //nolint:wrapcheck // already wrapped
}

func (a *app) close() {
	if a.dir != nil {
		a.dir.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		state.close()
		os.Exit(1)
	}
}
