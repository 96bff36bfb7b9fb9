package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spanlens/spanlens/internal/config"
	"github.com/spanlens/spanlens/internal/config/data"
	"github.com/spanlens/spanlens/internal/dao"
	"github.com/spanlens/spanlens/internal/logging"
	"github.com/spanlens/spanlens/internal/view"
)

const appName = config.AppName

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	slFlags *data.Flags
	cfg     *config.Config
	logger  = zap.NewNop()

	rootCmd = &cobra.Command{
		Use:   appName,
		Short: "A terminal browser for LLM spans and dataset examples",
		Long: `spanlens browses the spans of a project and the examples of a dataset
as paged tables, fetching more rows as you scroll.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(*cobra.Command, []string) { _ = logger.Sync() },
		RunE:              run,
	}
)

func init() {
	slFlags = config.NewFlags()
	initSpanLensFlags()
	rootCmd.AddCommand(versionCmd(), dumpCmd(), importCmd())
}

func initSpanLensFlags() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(slFlags.LogLevel, "logLevel", "l", "", "Log level (debug, info, warn, error)")
	pf.StringVar(slFlags.LogFile, "logFile", "", "Log file path")
	pf.StringVar(slFlags.Source, "source", "", "Data source (graphql, s3, sqlite)")
	pf.StringVar(slFlags.Endpoint, "endpoint", "", "GraphQL endpoint")
	pf.StringVarP(slFlags.Project, "project", "p", "", "Project id scoping spans")
	pf.StringVarP(slFlags.Dataset, "dataset", "d", "", "Dataset id scoping examples")
	pf.IntVar(slFlags.PageSize, "pageSize", 0, "Rows fetched per page")
	pf.StringVar(slFlags.DBPath, "db", "", "Offline store path")
	pf.BoolVarP(slFlags.Wide, "wide", "w", false, "Show wide columns")

	// S3 export flags
	pf.StringVar(slFlags.Profile, "profile", "", "AWS profile to use")
	pf.StringVar(slFlags.Region, "region", "", "AWS region to use")
	pf.StringVar(slFlags.Bucket, "bucket", "", "Span export bucket")

	rootCmd.Flags().StringVarP(slFlags.Command, "command", "c", "", "Startup view, e.g. spans or examples@<dataset>")
	rootCmd.Flags().IntVar(slFlags.Threshold, "threshold", 0, "Rows left before fetching the next page")
	rootCmd.Flags().BoolVar(slFlags.Logoless, "logoless", false, "Hide the key hints")
	rootCmd.Flags().BoolVar(slFlags.Crumbsless, "crumbsless", false, "Hide breadcrumbs")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup(*cobra.Command, []string) error {
	if err := config.InitLocs(); err != nil {
		return fmt.Errorf("failed to initialize locations: %w", err)
	}

	cfg = config.NewConfig()
	if err := cfg.Load(config.AppConfigFile, false); err != nil {
		return err
	}
	if err := cfg.Refine(slFlags); err != nil {
		return err
	}
	sl := cfg.SpanLens
	if sl.Source.Kind == data.SourceSQLite && sl.Source.DBPath == "" {
		sl.Source.DBPath = config.AppDBFile
	}

	logFile := sl.Logger.File
	if logFile == "" {
		logFile = config.AppLogFile
	}
	l, err := logging.New(sl.Logger.Level, logFile)
	if err != nil {
		return err
	}
	logger = l.With(zap.String("version", version))

	return nil
}

func run(cmd *cobra.Command, _ []string) error {
	f, err := openSource(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("Source close failed", zap.Error(err))
		}
	}()

	app := view.NewApp(cfg, f, logger, version)
	if err := app.Init(); err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	if err := app.Run(); err != nil {
		logger.Error("Application exited", zap.Error(err))
		return err
	}

	return nil
}

func openSource(ctx context.Context) (*dao.Factory, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	timeout, err := cfg.SpanLens.GetAPITimeout()
	if err != nil {
		return nil, err
	}
	f, err := dao.SourceFor(ctx, cfg.SpanLens.Source, timeout, logger)
	if err != nil {
		return nil, errors.Join(dao.ErrNoSource, err)
	}

	return f, nil
}
