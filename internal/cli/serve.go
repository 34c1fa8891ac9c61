package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pluginrelease/pkg/errors"
	"github.com/matzehuels/pluginrelease/pkg/registry"
)

const shutdownTimeout = 5 * time.Second

func (c *CLI) serveCommand() *cobra.Command {
	var dir, addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Preview an update site over HTTP",
		Long: `Serve exposes a built update site: the registry at /plugins.json, a small JSON
API under /api/plugins and every other file (artifacts, updates.xml, images)
as static content.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.OutputDir
			}
			if _, err := os.Stat(dir); err != nil {
				return errors.Wrap(errors.ErrCodeFileNotFound, err, "site directory %s", dir)
			}
			srv := &http.Server{
				Addr:              addr,
				Handler:           newSiteHandler(dir, cfg.RegistryFile, c.Logger),
				ReadHeaderTimeout: 10 * time.Second,
			}
			printSuccess("Serving %s", StyleValue.Render(dir))
			printKeyValue("Address", StyleLink.Render("http://localhost"+addr))
			return serve(cmd.Context(), srv)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "update site directory (default: output_dir)")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

// serve runs srv until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server) error {
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

// =============================================================================
// Site Handler
// =============================================================================

// pluginSummary is the list entry returned by /api/plugins.
type pluginSummary struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Releases []string `json:"releases"`
}

func newSiteHandler(dir, registryFile string, logger *log.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	registryPath := filepath.Join(dir, registryFile)
	loadRegistry := func() (*registry.Registry, error) {
		data, err := os.ReadFile(registryPath)
		if os.IsNotExist(err) {
			return registry.New(), nil
		}
		if err != nil {
			return nil, err
		}
		return registry.Load(data)
	}

	r.Get("/plugins.json", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, req, registryPath)
	})

	r.Route("/api/plugins", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			reg, err := loadRegistry()
			if err != nil {
				writeError(logger, w, http.StatusInternalServerError, err)
				return
			}
			list := make([]pluginSummary, 0, reg.Len())
			for _, p := range reg.Plugins {
				list = append(list, pluginSummary{ID: p.ID, Name: p.Name, Category: p.Category, Releases: p.ReleaseLines()})
			}
			writeJSON(logger, w, http.StatusOK, list)
		})
		r.Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
			reg, err := loadRegistry()
			if err != nil {
				writeError(logger, w, http.StatusInternalServerError, err)
				return
			}
			id := chi.URLParam(req, "id")
			p, ok := reg.Find(id)
			if !ok {
				writeError(logger, w, http.StatusNotFound, errors.New(errors.ErrCodePluginNotFound, "plugin %q not found", id))
				return
			}
			writeJSON(logger, w, http.StatusOK, p)
		})
	})

	r.Handle("/*", http.FileServer(http.Dir(dir)))
	return r
}

// writeJSON encodes v as the response body. Write failures are logged, the
// status line is already out.
func writeJSON(logger *log.Logger, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger.Debug("write response failed", "status", status, "err", err)
	}
}

func writeError(logger *log.Logger, w http.ResponseWriter, status int, err error) {
	writeJSON(logger, w, status, map[string]string{
		"code":  string(errors.GetCode(err)),
		"error": errors.UserMessage(err),
	})
}

// requestLogger logs every request at debug level.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, req)
			logger.Debug("http request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(req.Context()))
		})
	}
}
