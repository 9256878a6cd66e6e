// Command catalog-sync runs catalog synchronization outside the API server.
// It shares the run lock with the api-server scheduler, so a cron invocation
// never overlaps a scheduled run.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"animeschedule/database"
	"animeschedule/internal/config"
	"animeschedule/internal/ingestion/jikan"
	"animeschedule/internal/logging"
	"animeschedule/internal/metrics"
	"animeschedule/internal/microservices/http-api/models"
	"animeschedule/internal/microservices/http-api/repository"
	"animeschedule/internal/shared"
	"animeschedule/internal/zonetime"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	resolution string        // overrides CATALOG_RESOLUTION for one run
	timeout    time.Duration // upper bound for a single run
)

// rootCmd runs one synchronization when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:          "catalog-sync",
	Short:        "Synchronize the indexed anime catalog",
	Long:         `catalog-sync fetches the currently airing season from the catalog source and reconciles it with the database.`,
	SilenceUsage: true,
	RunE:         runSync,
}

var runCmd = &cobra.Command{
	Use:          "run",
	Short:        "Run one catalog synchronization and exit",
	SilenceUsage: true,
	RunE:         runSync,
}

var statusCmd = &cobra.Command{
	Use:          "status",
	Short:        "Show the last recorded synchronization",
	SilenceUsage: true,
	RunE:         showStatus,
}

func init() {
	for _, cmd := range []*cobra.Command{rootCmd, runCmd} {
		cmd.Flags().StringVar(&resolution, "resolution", "", "release instant resolution: strict or lenient")
		cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Minute, "abort the run after this long")
	}
	rootCmd.AddCommand(runCmd, statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type env struct {
	cfg    *config.Config
	logger zerolog.Logger
	db     *gorm.DB
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}
	if resolution != "" {
		cfg.CatalogResolution = resolution
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, "catalog-sync")

	db, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, db: db}, nil
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer database.Close(e.db)

	if err := database.Migrate(e.db, e.logger); err != nil {
		return err
	}

	lock := jikan.NewLocalRunLock()
	if rdb, err := database.ConnectRedis(ctx, e.cfg); err != nil {
		e.logger.Warn().Err(err).Msg("redis unavailable, run lock is process-local")
	} else {
		defer rdb.Close()
		lock = jikan.NewRedisRunLock(rdb, e.cfg.CatalogLockTTL)
	}

	animeRepo := repository.NewAnimeRepository(e.db)
	syncStateRepo := repository.NewSyncStateRepository(e.db)

	syncService, err := jikan.NewSyncServiceFromConfig(e.cfg, zonetime.NewRegistry(), animeRepo, syncStateRepo, metrics.Noop(), e.logger)
	if err != nil {
		return err
	}

	// the scheduler is never started; RunNow alone applies the overlap guard
	scheduler := jikan.NewScheduler(syncService, lock, syncStateRepo, jikan.SchedulerConfig{}, e.logger)
	result, err := scheduler.RunNow(ctx)
	if errors.Is(err, shared.ErrSyncInProgress) {
		e.logger.Warn().Msg("catalog synchronization already running elsewhere, nothing to do")
		return nil
	}
	if err != nil {
		e.logger.Error().Err(err).Msg("catalog synchronization failed")
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "inserted=%d updated=%d deleted=%d unchanged=%d skipped=%d regressions=%d\n",
		result.Inserted, result.Updated, result.Deleted, result.Unchanged, result.Skipped, result.Regressions)
	return nil
}

func showStatus(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer database.Close(e.db)

	state, err := repository.NewSyncStateRepository(e.db).Get(ctx, models.SyncTypeCatalog)
	if errors.Is(err, shared.ErrNotFound) {
		fmt.Fprintln(cmd.OutOrStdout(), "no synchronization recorded yet")
		return nil
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "status:       %s\n", state.Status)
	fmt.Fprintf(out, "last run:     %s\n", formatTime(state.LastRunAt))
	fmt.Fprintf(out, "last success: %s\n", formatTime(state.LastSuccessAt))
	if state.ErrorMessage != "" {
		fmt.Fprintf(out, "last error:   %s\n", state.ErrorMessage)
	}
	fmt.Fprintf(out, "result:       %s\n", state.Metadata)
	return nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Format(time.RFC3339)
}
