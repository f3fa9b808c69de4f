// Package main runs the DuelScope HTTP server: the JSON API, the dashboard
// and the background statistics refresher.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ramonehamilton/duelscope/internal/api"
	"github.com/ramonehamilton/duelscope/internal/config"
	"github.com/ramonehamilton/duelscope/internal/facade"
	"github.com/ramonehamilton/duelscope/internal/version"
)

var (
	configPath = flag.String("config", "", "Config file (default: $DUELSCOPE_CONFIG or duelscope.toml)")
	port       = flag.Int("port", 0, "API server port, overrides the config file")
	dataDir    = flag.String("data-dir", "", "Battle log directory, overrides the config file")
	writeTo    = flag.String("write-config", "", "Write the effective configuration to this file and exit")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "duelscope: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the command line overrides.
func loadConfig(path string, portOverride int, dataDirOverride string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if portOverride != 0 {
		cfg.Server.Port = portOverride
	}
	if dataDirOverride != "" {
		cfg.Data.Dir = dataDirOverride
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func run() error {
	cfg, err := loadConfig(*configPath, *port, *dataDir)
	if err != nil {
		return err
	}

	if *writeTo != "" {
		if err := cfg.Save(*writeTo); err != nil {
			return err
		}
		fmt.Printf("Configuration written to %s\n", *writeTo)
		return nil
	}

	level := slog.LevelInfo
	if cfg.App.DebugMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	fmt.Printf("DuelScope %s - Battle Statistics Server\n", version.GetVersion())
	fmt.Println("==========================================")
	fmt.Printf("Data directory: %s\n", cfg.Data.Dir)
	fmt.Println()

	services, err := facade.NewServices(cfg, facade.ServicesOptions{Logger: logger})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := services.Refresher.Start(ctx); err != nil {
		return fmt.Errorf("start refresher: %w", err)
	}
	defer services.Refresher.Stop()

	timeout, err := cfg.GetRequestTimeout()
	if err != nil {
		return err
	}
	server := api.NewServer(&api.Config{
		Port:           cfg.Server.Port,
		CORSOrigins:    cfg.Server.CORSOrigins,
		RateLimit:      cfg.Server.RateLimit,
		RateBurst:      cfg.Server.RateBurst,
		RequestTimeout: timeout,
		Logger:         logger,
	}, facade.NewStatsFacade(services))

	if err := server.Start(); err != nil {
		return fmt.Errorf("start API server: %w", err)
	}

	fmt.Printf("Dashboard running at http://localhost:%d\n", server.Port())
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", "error", err)
	}
	return nil
}
