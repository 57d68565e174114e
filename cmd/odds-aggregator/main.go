// Package main provides the entry point for the odds aggregator.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/odds-aggregator/internal/analytics"
	"github.com/yourusername/odds-aggregator/internal/config"
	"github.com/yourusername/odds-aggregator/internal/database"
	"github.com/yourusername/odds-aggregator/internal/logger"
	"github.com/yourusername/odds-aggregator/internal/metrics"
	"github.com/yourusername/odds-aggregator/internal/provider"
	"github.com/yourusername/odds-aggregator/internal/repository"
	"github.com/yourusername/odds-aggregator/internal/scheduler"
	"github.com/yourusername/odds-aggregator/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	appLogger  *logrus.Logger
	cfg        *config.Config
	db         *database.DB
	svc        *service.OddsService
)

var rootCmd = &cobra.Command{
	Use:   "odds-aggregator",
	Short: "Aggregate sports betting odds from multiple providers",
	Long:  `Fetches odds from multiple upstream providers, normalizes them into a canonical schema, persists them and tracks line movements over time.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync [sport-key]",
	Short: "Run one sync cycle, for all configured sports or a single one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
		defer cancel()

		if len(args) == 1 {
			result, err := svc.SyncSportByKey(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(result)
		}

		results, err := svc.SyncAll(ctx)
		if printErr := printJSON(results); printErr != nil {
			return printErr
		}
		return err
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the recurring sync scheduler until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		sched := scheduler.NewScheduler(svc, cfg.SyncInterval(), appLogger)
		if err := sched.Start(); err != nil {
			return err
		}

		if cfg.Metrics.Enabled {
			go func() {
				appLogger.WithField("port", cfg.Metrics.Port).Info("Metrics server listening")
				if err := metrics.Serve(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
					appLogger.WithError(err).Error("Metrics server stopped")
				}
			}()
		}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		sig := <-sigChan

		appLogger.WithField("signal", sig.String()).Info("Shutting down")
		sched.Stop()
		return nil
	},
}

var sportsCmd = &cobra.Command{
	Use:   "sports",
	Short: "List sports available across enabled providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 1*time.Minute)
		defer cancel()

		sports, err := svc.ListSports(ctx)
		if err != nil {
			return err
		}
		return printJSON(sports)
	},
}

var (
	moversWindowHours float64
	moversMin         float64
	moversLimit       int
)

var moversCmd = &cobra.Command{
	Use:   "movers",
	Short: "Show the biggest recent line movements",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		query := analytics.MoversQuery{
			Window: time.Duration(moversWindowHours * float64(time.Hour)),
			Limit:  moversLimit,
		}
		if moversMin > 0 {
			query.MinMovement = decimal.NewFromFloat(moversMin)
		}

		movements, err := svc.GetBigMovers(ctx, query)
		if err != nil {
			return err
		}
		return printJSON(movements)
	},
}

var bestOddsCmd = &cobra.Command{
	Use:   "best-odds <game-id>",
	Short: "Show the best available price per outcome for a game",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		game, quotes, err := svc.GetBestOdds(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(map[string]any{
			"game":      game,
			"best_odds": quotes,
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("odds-aggregator %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")

	moversCmd.Flags().Float64Var(&moversWindowHours, "window", 24, "Trailing window in hours")
	moversCmd.Flags().Float64Var(&moversMin, "min", 0, "Minimum absolute movement (0 uses the configured default)")
	moversCmd.Flags().IntVar(&moversLimit, "limit", 0, "Maximum rows to return (0 uses the configured default)")

	rootCmd.AddCommand(syncCmd, serveCmd, sportsCmd, moversCmd, bestOddsCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func setup(ctx context.Context) error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	appLogger = logger.NewLogger(cfg.App.LogLevel)

	db, err = database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	repos, err := repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	factory := provider.NewFactory(cfg.HTTP, appLogger)
	providers, provErrs := factory.NewAll(cfg.Providers)
	for _, provErr := range provErrs {
		appLogger.WithError(provErr).Warn("Provider unavailable")
	}
	if len(providers) == 0 {
		return fmt.Errorf("no providers could be constructed")
	}

	svc = service.NewOddsService(cfg, providers, repos, appLogger)
	return nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
