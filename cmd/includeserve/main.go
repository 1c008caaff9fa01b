// Command includeserve serves a static site over HTTP for local development.
// Fragments cannot be fetched from pages opened as file:// URLs; this is the
// server the loader's diagnostics point to.
//
// Usage:
//
//	includeserve [-dir .] [-addr :8000] [-include-dir html-includes]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "includeserve:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stderr io.Writer, args []string) error {
	flags := flag.NewFlagSet("includeserve", flag.ContinueOnError)
	flags.SetOutput(stderr)
	dir := flags.String("dir", ".", "The directory to serve.")
	addr := flags.String("addr", ":8000", "The address to listen on.")
	includeDir := flags.String("include-dir", "html-includes", "The fragment directory, checked at startup.")
	if err := flags.Parse(args); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root, err := filepath.Abs(*dir)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", *dir, err)
	}
	if info, err := os.Stat(filepath.Join(root, *includeDir)); err != nil || !info.IsDir() {
		logger.Warn("Fragment directory not found; component requests will fail", "dir", filepath.Join(root, *includeDir))
	}

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", *addr, err)
	}
	return serve(ctx, ln, newHandler(root, logger), logger)
}

// newHandler serves files from root, logging every request.
func newHandler(root string, logger *slog.Logger) http.Handler {
	// Browsers refuse to compile WASM streamed with the wrong content type.
	if err := mime.AddExtensionType(".wasm", "application/wasm"); err != nil {
		logger.Warn("Failed to register the WASM MIME type", "error", err)
	}

	files := http.FileServer(http.Dir(root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		// Fragments change while developing; never let the browser cache them.
		w.Header().Set("Cache-Control", "no-store")
		files.ServeHTTP(rec, r)

		level := slog.LevelInfo
		if rec.status >= 400 {
			level = slog.LevelWarn
		}
		logger.Log(r.Context(), level, "Served request", "method", r.Method, "path", r.URL.Path, "status", rec.status)
	})
}

func serve(ctx context.Context, ln net.Listener, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Serving", "url", "http://"+ln.Addr().String()+"/")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("Server stopped")
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
