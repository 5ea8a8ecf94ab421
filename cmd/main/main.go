package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cli "github.com/jawher/mow.cli"

	"github.com/Houeta/pricewatch/internal/config"
	"github.com/Houeta/pricewatch/internal/services/tracker"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

const shutdownTimeout = 10 * time.Second

// main is the entry point of the application.
func main() {
	app := cli.App("pricewatch", "Track product prices and get notified when they drop")

	app.Command("serve", "Run the HTTP API, the Telegram bot and the periodic price checker", func(cmd *cli.Cmd) {
		cmd.Action = func() { run(serve) }
	})

	app.Command("track", "Scrape a product page once and print its price record", func(cmd *cli.Cmd) {
		cmd.Spec = "URL"
		rawURL := cmd.StringArg("URL", "", "Product page URL")
		cmd.Action = func() {
			run(func(ctx context.Context, a *application) error { return trackOnce(ctx, a, *rawURL) })
		}
	})

	app.Command("check", "Check the prices of all watched products once", func(cmd *cli.Cmd) {
		cmd.Action = func() { run(checkOnce) }
	})

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Failed to run command: %v", err)
	}
}

// run loads the configuration, wires the application and executes fn until it returns or
// an interrupt signal is received.
func run(fn func(ctx context.Context, a *application) error) {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	a, err := newApplication(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to init application: %v", err)
	}
	defer a.Close()

	if err = fn(ctx, a); err != nil {
		logger.ErrorContext(ctx, "Command failed", "error", err)
		a.Close()
		cli.Exit(1)
	}
}

func serve(ctx context.Context, a *application) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTP.Addr,
		Handler:           a.router(),
		ReadHeaderTimeout: 10 * time.Second, //nolint:mnd // header read limit
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.InfoContext(ctx, "HTTP server is listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	go a.checker.Run(ctx, a.cfg.Checker.Interval)

	if a.bot != nil {
		// Start the bot in a goroutine to allow main to listen for signals.
		go a.bot.Start()
	}

	// Log that the application has started.
	a.log.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	var serveErr error
	select {
	case <-ctx.Done():
		// Log that a shutdown signal has been received.
		a.log.InfoContext(ctx, "Shutdown signal received. Stopping application...")
	case serveErr = <-errCh:
		a.log.ErrorContext(ctx, "HTTP server failed", "error", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.ErrorContext(shutdownCtx, "Failed to shut down HTTP server", "error", err)
	}

	if a.bot != nil {
		// Stop the bot gracefully.
		a.bot.Stop()
	}

	// Log graceful shutdown completion.
	a.log.InfoContext(shutdownCtx, "Application stopped gracefully.")

	if serveErr != nil {
		return fmt.Errorf("http server: %w", serveErr)
	}
	return nil
}

func trackOnce(ctx context.Context, a *application, rawURL string) error {
	res, err := a.tracker.Track(ctx, rawURL, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, tracker.UserMessage(err, "Tracking failed."))
		return err
	}

	if res.State == tracker.NotFound {
		fmt.Fprintln(os.Stderr, tracker.MsgPriceNotFound)
		return tracker.ErrPriceNotFound
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(res.Product)
}

func checkOnce(ctx context.Context, a *application) error {
	report, err := a.checker.CheckPrices(ctx)
	if err != nil {
		return fmt.Errorf("price check: %w", err)
	}

	fmt.Fprintf(os.Stdout, "checked=%d updated=%d triggered=%d failed=%d\n",
		report.Checked, report.Updated, report.Triggered, report.Failed)

	return nil
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelWarn,
				ReplaceAttr: dropTime,
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelError,
				ReplaceAttr: dropTime,
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}

func dropTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}
