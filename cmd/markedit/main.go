// Command markedit builds a Markdown book project into EPUB, PDF, and HTML,
// or serves the editor's admin API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/novohool/markedit"
	"github.com/novohool/markedit/internal/config"
	"github.com/novohool/markedit/internal/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	flags, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if flags.version {
		fmt.Println("markedit " + Version)
		return 0
	}

	// Local overrides for converter paths and the like; a missing .env is
	// the normal case.
	_ = godotenv.Load()

	level := slog.LevelInfo
	if flags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues.
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		logger.Debug(fmt.Sprintf(format, args...))
	}))

	conf, err := config.Load(flags.config)
	if err != nil {
		logger.Error("loading config", "path", flags.config, "error", err)
		return 1
	}

	svc, err := markedit.New(conf, markedit.WithLogger(logger))
	if err != nil {
		logger.Error("creating build service", "error", err)
		return 1
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("closing build service", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flags.serve {
		return serve(ctx, flags.addr, svc, logger)
	}
	return build(ctx, flags.format, svc, logger)
}

// build runs a one-shot build and maps the outcome to an exit code.
func build(ctx context.Context, format string, svc *markedit.Service, logger *slog.Logger) int {
	var results []markedit.BuildResult

	if format == "all" {
		var err error
		results, err = svc.BuildAll(ctx)
		if err != nil {
			logger.Error("build rejected", "error", err)
			return 1
		}
	} else {
		f, err := markedit.ParseFormat(format)
		if err != nil {
			logger.Error("invalid format", "format", format, "error", err)
			return 2
		}
		res, err := svc.Build(ctx, f)
		if err != nil {
			logger.Error("build rejected", "error", err)
			return 1
		}
		results = append(results, res)
	}

	exit := 0
	for _, res := range results {
		if res.Success {
			fmt.Printf("%s: %s (%s)\n", res.Format, res.OutputPath, res.Duration.Round(time.Millisecond))
			continue
		}
		exit = 1
		fmt.Fprintf(os.Stderr, "%s: build failed\n%s\n", res.Format, res.Stderr)
	}
	return exit
}

// serve runs the admin API until the context is canceled.
func serve(ctx context.Context, addr string, svc *markedit.Service, logger *slog.Logger) int {
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(svc, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("admin server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		logger.Error("admin server failed", "error", err)
		return 1
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
		return 1
	}
	return 0
}
