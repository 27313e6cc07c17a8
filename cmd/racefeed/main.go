package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/keibalab/racefeed/pkg/config"
	"github.com/keibalab/racefeed/pkg/coordinator"
	"github.com/keibalab/racefeed/pkg/driver"
	"github.com/keibalab/racefeed/pkg/driver/postgres"
	"github.com/keibalab/racefeed/pkg/driver/sqlite"
	"github.com/keibalab/racefeed/pkg/errors"
	"github.com/keibalab/racefeed/pkg/feed"
	"github.com/keibalab/racefeed/pkg/logger"
	"github.com/keibalab/racefeed/pkg/session"
	"github.com/keibalab/racefeed/pkg/stats"
)

var version = "0.3.0"

const dateLayout = "20060102"

type rootFlags struct {
	configPath string
	feedName   string
	replayDir  string
}

func main() {
	_ = godotenv.Load()

	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "racefeed",
		Short: "racefeed - race data ingestion pipeline",
		Long: `racefeed ingests fixed-length binary race-data records from the
central and regional vendor feeds and materialises them into a relational
database with upsert semantics.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (YAML)")
	root.PersistentFlags().StringVar(&flags.feedName, "feed", "central", "feed: central or regional")
	root.PersistentFlags().StringVar(&flags.replayDir, "replay-dir", os.Getenv("RACEFEED_REPLAY_DIR"),
		"replay vendor dumps from a directory instead of the platform component")

	root.AddCommand(versionCmd())
	root.AddCommand(backfillCmd(flags))
	root.AddCommand(monitorCmd(flags))
	root.AddCommand(workerCmd(flags))

	if err := root.Execute(); err != nil {
		if remedy := errors.Remedy(err); remedy != "" {
			fmt.Fprintf(os.Stderr, "remedy: %s\n", remedy)
		}
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("racefeed v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func backfillCmd(flags *rootFlags) *cobra.Command {
	var (
		spec      string
		from, to  string
		batchSize int
		chunkDays int
	)
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Run a historical backfill over a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, f, err := setup(flags)
			if err != nil {
				return err
			}
			defer logger.Sync()

			fromDate, err := time.Parse(dateLayout, from)
			if err != nil {
				return errors.Newf(errors.ErrorTypeConfig, "invalid from date %q (want YYYYMMDD)", from)
			}
			var toDate time.Time
			if to != "" {
				toDate, err = time.Parse(dateLayout, to)
				if err != nil {
					return errors.Newf(errors.ErrorTypeConfig, "invalid to date %q (want YYYYMMDD)", to)
				}
			}

			drv, err := openDriver(cfg.Database)
			if err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()
			if err := drv.Connect(ctx); err != nil {
				return err
			}
			defer drv.Close()

			factory, err := vendorFactory(flags)
			if err != nil {
				return err
			}

			coord := coordinator.New(cfg, f, drv, factory)
			coord.OnProgress(printProgress)

			result, err := coord.RunBackfill(ctx, coordinator.BackfillParams{
				Spec:      spec,
				From:      fromDate,
				To:        toDate,
				BatchSize: batchSize,
				ChunkDays: chunkDays,
			})
			report(result, err)
			return err
		},
	}
	cmd.Flags().StringVar(&spec, "spec", feed.SpecRace, "data spec (RACE, DIFF, YSCH, O1..O6, ...)")
	cmd.Flags().StringVar(&from, "from", "", "start date YYYYMMDD (required)")
	cmd.Flags().StringVar(&to, "to", "", "end date YYYYMMDD (default today)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "records per upsert batch")
	cmd.Flags().IntVar(&chunkDays, "chunk-days", 0, "days per session chunk (regional default 1)")
	cmd.MarkFlagRequired("from")
	return cmd
}

func monitorCmd(flags *rootFlags) *cobra.Command {
	var (
		specs    []string
		httpAddr string
	)
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Run the live monitor with the HTTP control surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, f, err := setup(flags)
			if err != nil {
				return err
			}
			defer logger.Sync()

			drv, err := openDriver(cfg.Database)
			if err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()
			if err := drv.Connect(ctx); err != nil {
				return err
			}
			defer drv.Close()

			factory, err := vendorFactory(flags)
			if err != nil {
				return err
			}

			coord := coordinator.New(cfg, f, drv, factory)

			events, err := coord.Monitor(ctx, specs)
			if err != nil {
				return err
			}
			go func() {
				for e := range events {
					logger.Info("monitor progress",
						zap.String("phase", string(e.Phase)),
						zap.Int64("imported", e.Snapshot.Imported),
						zap.Int64("failed", e.Snapshot.Failed))
				}
			}()

			return coord.StartControlServer(ctx, httpAddr)
		},
	}
	cmd.Flags().StringSliceVar(&specs, "spec", nil, "real-time data specs (default the standard set)")
	cmd.Flags().StringVar(&httpAddr, "http-addr", "", "control surface listen address (default :8765)")
	return cmd
}

func workerCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:    "worker",
		Short:  "Run one backfill chunk as a child process (internal)",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(flags)
			if err != nil {
				return err
			}
			factory, err := vendorFactory(flags)
			if err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()
			return coordinator.RunWorker(ctx, cfg, factory, os.Stdin, os.Stdout)
		},
	}
}

func setup(flags *rootFlags) (*config.Config, feed.Feed, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, "", err
	}

	if err := logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Encoding:    cfg.Logging.Encoding,
		Development: cfg.Logging.Development,
	}); err != nil {
		return nil, "", err
	}

	f := feed.Feed(flags.feedName)
	if !f.Valid() {
		return nil, "", errors.Newf(errors.ErrorTypeConfig, "unknown feed %q", flags.feedName)
	}
	return cfg, f, nil
}

func openDriver(cfg config.DatabaseConfig) (driver.Driver, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.New(cfg.DSN), nil
	case "sqlite":
		return sqlite.New(cfg.Path), nil
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unknown database driver %q", cfg.Driver)
	}
}

// vendorFactory resolves the vendor session source: the replay directory
// when configured, otherwise the platform-native component registered by
// a platform build.
func vendorFactory(flags *rootFlags) (session.Factory, error) {
	if flags.replayDir != "" {
		return session.ReplayFactory(flags.replayDir), nil
	}
	if f := session.PlatformFactory(); f != nil {
		return f, nil
	}
	return nil, errors.New(errors.ErrorTypeConfig,
		"no vendor component available on this platform").
		WithRemedy("install the vendor component, or pass --replay-dir to import from dump files")
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func printProgress(e stats.ProgressEvent) {
	logger.Info("progress",
		zap.String("phase", string(e.Phase)),
		zap.String("chunk", e.Chunk),
		zap.Int64("fetched", e.Snapshot.Fetched),
		zap.Int64("parsed", e.Snapshot.Parsed),
		zap.Int64("imported", e.Snapshot.Imported),
		zap.Int64("failed", e.Snapshot.Failed),
		zap.Int64("batches", e.Snapshot.Batches),
		zap.Int64("retries", e.Snapshot.Retries))
}

func report(result coordinator.RunResult, err error) {
	s := result.Stats
	switch {
	case err != nil:
		logger.Error("run failed",
			zap.String("last_chunk", result.LastChunk),
			zap.Int64("imported", s.Imported),
			zap.Int64("failed", s.Failed),
			zap.Error(err))
	case result.CompletedWithErrors:
		logger.Warn("run completed with errors",
			zap.Int64("imported", s.Imported),
			zap.Int64("failed", s.Failed),
			zap.Int64("batches", s.Batches))
	default:
		logger.Info("run completed",
			zap.Int64("imported", s.Imported),
			zap.Int64("batches", s.Batches))
	}
}
