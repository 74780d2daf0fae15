package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/adminparrot/adminparrot/internal/profile"
	"github.com/adminparrot/adminparrot/plugin/llm"
	"github.com/adminparrot/adminparrot/server"
	"github.com/adminparrot/adminparrot/store"
	"github.com/adminparrot/adminparrot/store/db"
)

const version = "0.2.0"

var rootCmd = &cobra.Command{
	Use:   "adminparrot",
	Short: "Admin chat and dashboard server for a Telegram bot",
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		instanceProfile, err := profile.FromViper(viper.GetViper(), version)
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}

		driver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			return fmt.Errorf("failed to create db driver: %w", err)
		}

		storeInstance := store.New(driver, instanceProfile)
		if err := storeInstance.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}

		completion := llm.NewProvider(llm.Config{
			BaseURL:     instanceProfile.LLMBaseURL,
			APIKey:      instanceProfile.LLMAPIKey,
			Model:       instanceProfile.LLMModel,
			Temperature: instanceProfile.LLMTemperature,
			MaxTokens:   instanceProfile.LLMMaxTokens,
			Timeout:     instanceProfile.LLMTimeout,
		})

		srv, err := server.NewServer(instanceProfile, storeInstance, completion)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start(ctx)
		}()

		select {
		case <-ctx.Done():
			slog.Info("shutdown signal received")
		case err := <-errCh:
			if err != nil {
				slog.Error("server failed", "error", err)
			}
		}
		srv.Shutdown(context.Background())
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("mode", "dev", `mode of the server, can be "prod" or "dev"`)
	flags.String("addr", "", "address of the server")
	flags.Int("port", 8081, "port of the server")
	flags.String("data", "", "data directory")
	flags.String("driver", "sqlite", `database driver, can be "sqlite" or "postgres"`)
	flags.String("dsn", "", "database connection string")
	flags.String("llm-base-url", "https://openrouter.ai/api/v1", "base URL of the completion endpoint")
	flags.String("llm-api-key", "", "API key for the completion endpoint")
	flags.String("llm-model", "openai/gpt-4o-mini", "completion model")
	flags.Float32("llm-temperature", 0.7, "completion temperature")
	flags.Int("llm-max-tokens", 1000, "completion max tokens")
	flags.Duration("llm-timeout", 0, "completion timeout (default 60s)")
	flags.Int("history-context-limit", 10, "number of recent turns sent as LLM context")
	flags.Bool("mock-stats", false, "serve fixed dashboard numbers instead of querying the database")

	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	if err := rootCmd.Execute(); err != nil {
		slog.Error("failed to run server", "error", err)
		os.Exit(1)
	}
}
