package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/phrazzld/registry-api/internal/config"
	"github.com/phrazzld/registry-api/internal/domain"
	"github.com/phrazzld/registry-api/internal/platform/logger"
	"github.com/phrazzld/registry-api/internal/platform/postgres"
)

// loadConfig reads configuration from path, or from the default locations
// when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// newRootCmd builds the command tree. Running the binary without a
// subcommand starts the server.
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "registry",
		Short:         "Person registry API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (default ./config.yaml)")

	root.AddCommand(
		newServeCmd(&configPath),
		newMigrateCmd(&configPath),
		newAgeCmd(),
	)
	return root
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, *configPath)
		},
	}
}

func runServe(cmd *cobra.Command, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("cache_enabled", cfg.Cache.RedisURL != ""))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.cleanup()

	return app.startHTTPServer(ctx, app.setupRouter())
}

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|reset|status|version]",
		Short:     "Run database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: postgres.MigrationCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			command := args[0]

			cfg, err := loadConfig(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			log, err := logger.Setup(cfg.Server)
			if err != nil {
				return fmt.Errorf("failed to set up logger: %w", err)
			}

			db, err := postgres.Open(cmd.Context(), cfg.Database, log)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := db.Close(); cerr != nil {
					log.Error("failed to close database connection", slog.String("error", cerr.Error()))
				}
			}()

			return postgres.Migrate(cmd.Context(), db, command, log)
		},
	}
}

func newAgeCmd() *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "age BIRTH_DATE",
		Short: "Print the age in whole years for a YYYY-MM-DD birth date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			birth, err := domain.ParseBirthDate(args[0])
			if err != nil {
				return fmt.Errorf("birth date %q: %w", args[0], err)
			}

			ref := domain.Today()
			if asOf != "" {
				ref, err = domain.ParseBirthDate(asOf)
				if err != nil {
					return fmt.Errorf("--as-of %q: %w", asOf, err)
				}
			}

			age, err := domain.ComputeAge(birth, ref)
			if err != nil {
				return err
			}

			label, err := domain.AgeRangeFor(age)
			if err != nil {
				return err
			}
			cmd.Printf("%d (%s)\n", age, label)
			return nil
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "reference date, YYYY-MM-DD (default today, UTC)")
	return cmd
}
