package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"lanshare/internal/config"
	"lanshare/internal/events"
	"lanshare/internal/files"
	"lanshare/internal/logging"
	"lanshare/internal/netinfo"
	"lanshare/internal/qr"
	"lanshare/internal/storage"
	"lanshare/internal/web"
)

const shutdownTimeout = 30 * time.Second

func printHelp(w io.Writer) {
	writer := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(writer, "Share files with any device on the local network from a browser.")
	fmt.Fprintln(writer, "=============================")
	fmt.Fprintln(writer, "Usage:")
	fmt.Fprintln(writer, "  lanshare [OPTIONS]")
	fmt.Fprintln(writer, "")
	fmt.Fprintln(writer, "Options:")
	fmt.Fprintln(writer, "  -h\t\tShow this help message and exit")
	fmt.Fprintln(writer, "  -host ADDR\tInterface to bind (env HOST, default 0.0.0.0)")
	fmt.Fprintln(writer, "  -port N\tPort to listen on (env PORT, default 8080)")
	fmt.Fprintln(writer, "  -dir PATH\tDirectory holding shared files (env UPLOAD_DIR, default uploads)")
	fmt.Fprintln(writer, "  -max MB\tMaximum size per uploaded file (env MAX_FILE_SIZE, default 50)")
	fmt.Fprintln(writer, "  -refresh MS\tPage auto-refresh interval (env REFRESH_INTERVAL, default 30000)")
	fmt.Fprintln(writer, "  -clients N\tMaximum concurrent requests (env MAX_CLIENTS, default 256)")
	fmt.Fprintln(writer, "  -cleanup\tRemove partial files of rejected uploads (env CLEANUP_REJECTED)")
	fmt.Fprintln(writer, "  -log-level L\tdebug, info, warn or error (env LOG_LEVEL)")
	fmt.Fprintln(writer, "  -log-format F\ttext or json (env LOG_FORMAT)")
	fmt.Fprintln(writer, "  -no-qr\tDo not print the QR code at startup")
	fmt.Fprintln(writer, "")
	fmt.Fprintln(writer, "Settings may also be placed in a .env file in the working directory.")
	fmt.Fprintln(writer, "")
	fmt.Fprintln(writer, "Access:")
	fmt.Fprintln(writer, "  Share Page: http://localhost:8080")
	fmt.Fprintln(writer, "  File List (JSON): http://localhost:8080/api/files")
	fmt.Fprintln(writer, "  Direct Download: http://localhost:8080/download/[filename]")
	writer.Flush()
}

func printBanner(w io.Writer, cfg config.Config, root string, urls []string) {
	writer := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(writer, "LAN Share is running")
	fmt.Fprintln(writer, "=============================")
	for _, u := range urls {
		fmt.Fprintf(writer, "  URL:\t%s\n", u)
	}
	fmt.Fprintf(writer, "  Port:\t%d\n", cfg.Port)
	fmt.Fprintf(writer, "  Interface:\t%s\n", cfg.Host)
	fmt.Fprintf(writer, "  Storage:\t%s\n", root)
	fmt.Fprintf(writer, "  Max size:\t%d MB\n", files.LimitMB(cfg.MaxUploadBytes()))
	fmt.Fprintf(writer, "  Refresh:\t%ds\n", int(cfg.Refresh()/time.Second))
	fmt.Fprintln(writer, "")
	writer.Flush()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run serves until ctx is cancelled. Human-facing output goes to stdout, logs to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	if cfg.ShowHelp {
		printHelp(stdout)
		return nil
	}

	log, err := logging.New(stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	store, err := storage.NewLocal(cfg.UploadDir)
	if err != nil {
		return fmt.Errorf("prepare storage: %w", err)
	}
	root, err := filepath.Abs(store.Root())
	if err != nil {
		root = store.Root()
	}

	svc := files.New(store, cfg.MaxUploadBytes(),
		files.WithLogger(log),
		files.WithCleanupRejected(cfg.CleanupRejected),
	)

	ips, err := netinfo.Discover(log)
	if err != nil {
		// Still reachable through localhost
		log.Warn("failed to discover local addresses", logging.Error(err))
	}
	urls := netinfo.URLs(ips, cfg.Port)

	hub := events.NewHub(log)
	handler, err := web.New(svc, hub, web.PageInfo{URLs: urls, Refresh: cfg.Refresh()}, log)
	if err != nil {
		return err
	}

	printBanner(stdout, cfg, root, urls)
	if !cfg.NoQR {
		fmt.Fprintln(stdout, "Scan to open on your phone:")
		qr.Terminal(stdout, urls[0])
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler.Routes(int64(cfg.MaxClients)),
		ReadHeaderTimeout: 10 * time.Second,
		// Large uploads on slow links need long body timeouts
		ReadTimeout:  6 * time.Hour,
		WriteTimeout: 6 * time.Hour,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(log.Handler(), slog.LevelWarn),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", slog.String("addr", srv.Addr), slog.String("dir", root))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
