package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/typetrace/internal/config"
	"github.com/Zuo-Peng/typetrace/internal/log"
	"github.com/Zuo-Peng/typetrace/internal/sessionapi"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:          "typetrace",
		Short:        "Typing practice with keystroke timing sent to a session service",
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(practiceCmd())
	rootCmd.AddCommand(replayCmd())
	rootCmd.AddCommand(promptsCmd())
	rootCmd.AddCommand(doctorCmd())
	rootCmd.AddCommand(configCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config and configures the global logger to write to
// out, or to stderr when out is nil.
func loadConfig(out io.Writer) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if out == nil {
		out = zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}
	}
	log.Configure(log.Config{Level: cfg.LogLevel, Output: out})
	return cfg, nil
}

func newClient(cfg *config.Config) *sessionapi.Client {
	return sessionapi.New(cfg.ServiceURL,
		sessionapi.WithToken(cfg.Token),
		sessionapi.WithTimeout(cfg.RequestTimeout),
		sessionapi.WithLogger(log.WithComponent("sessionapi")),
	)
}
