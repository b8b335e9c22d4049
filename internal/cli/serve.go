package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"sheetpress/pkg/observability"
	"sheetpress/pkg/pipeline"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr     string // listen address
	dir      string // pre-published directory to serve as-is
	format   string
	scale    int
	title    string
	catalog  string
	noCache  bool
	redisURL string
}

// newServeCmd creates the serve command: a local preview server for a
// published sheet set. Given a source file it generates the set into a
// temporary directory first; given --dir it serves an existing set.
func newServeCmd() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve [source]",
		Short: "Serve a sheet set over HTTP for preview",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var source string
			if len(args) == 1 {
				source = args[0]
			}
			if source == "" && opts.dir == "" {
				return errors.New("either a source file or --dir is required")
			}
			return runServe(cmd.Context(), source, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "localhost:8077", "listen address")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "serve an already published directory")
	cmd.Flags().StringVarP(&opts.format, "sheet-format", "f", "", "sheet format name (default: auto)")
	cmd.Flags().IntVarP(&opts.scale, "scale", "s", 0, "scale denominator (default: auto)")
	cmd.Flags().StringVar(&opts.title, "title", "", "override the drawing title")
	cmd.Flags().StringVar(&opts.catalog, "catalog", "", "external sheet format catalog (TOML)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the stage cache")
	cmd.Flags().StringVar(&opts.redisURL, "redis", "", "Redis URL for the stage cache")

	return cmd
}

func runServe(ctx context.Context, source string, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	dir := opts.dir
	if source != "" {
		tmp, err := os.MkdirTemp("", appName+"-serve-*")
		if err != nil {
			return err
		}
		defer os.RemoveAll(tmp)
		dir = tmp

		runner, err := newRunner(ctx, opts.noCache, opts.redisURL)
		if err != nil {
			return err
		}
		defer runner.Close()

		prog := newProgress(logger)
		result, err := runner.Execute(ctx, pipeline.Options{
			Source:  source,
			OutDir:  dir,
			Format:  opts.format,
			Scale:   opts.scale,
			Title:   opts.title,
			Catalog: opts.catalog,
			Logger:  logger,
		})
		if err != nil {
			return err
		}
		prog.done(fmt.Sprintf("generated %d sheet(s) for preview", result.Stats.PageCount))
	}

	router := newPreviewRouter(dir, logger)

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	printInfo("Serving sheet set on http://%s", opts.addr)
	printNextStep("Stop the server", "Ctrl+C")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// newPreviewRouter builds the chi router for the preview server: request
// IDs, structured request logging, panic recovery, a health endpoint and
// the published files themselves.
func newPreviewRouter(dir string, logger *charmlog.Logger) chi.Router {
	router := chi.NewRouter()
	router.Use(requestID)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	})

	fs := http.FileServer(http.Dir(dir))
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, dir+"/index.html")
	})
	router.Get("/*", fs.ServeHTTP)

	return router
}

// requestIDHeader carries the per-request UUID assigned by the preview
// server, for correlating access logs.
const requestIDHeader = "X-Request-Id"

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(withRequestID(r.Context(), id)))
	})
}

func requestLogger(logger *charmlog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			observability.Server().OnRequest(r.Context(), r.Method, r.URL.Path)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			observability.Server().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), time.Since(start))
			logger.Info("request",
				"id", requestIDFromContext(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).Round(time.Microsecond))
		})
	}
}

const requestIDKey ctxKey = 1

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func requestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
