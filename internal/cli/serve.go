package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gitdot/pkg/buildinfo"
	"github.com/matzehuels/gitdot/pkg/errors"
	"github.com/matzehuels/gitdot/pkg/observability"
	"github.com/matzehuels/gitdot/pkg/pipeline"
	"github.com/matzehuels/gitdot/pkg/render/dot"
	"github.com/matzehuels/gitdot/pkg/source"
)

// serveHead loads svg-pan-zoom from a CDN, as the viewer serves no
// scripts of its own.
const serveHead = `<script src="https://cdn.jsdelivr.net/npm/svg-pan-zoom@3.6.1/dist/svg-pan-zoom.min.js"></script>`

// viewerDotFile names the in-memory graph; nothing is written unless a
// DOT_FILE argument is given.
const viewerDotFile = "gitdot.dot"

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags    generateFlags
		addr     string
		debounce time.Duration
		noWatch  bool
	)

	cmd := &cobra.Command{
		Use:   "serve [DOT_FILE]",
		Short: "Serve the commit graph and redraw it when the repository changes",
		Long: `Serve renders the commit graph to SVG and serves it on a pan/zoom page.
The repository's refs are watched and the graph is regenerated whenever a
commit, branch or tag changes; open pages reload by themselves.

Given a DOT_FILE, every regeneration also writes the files generate would.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := c.loadConfig(flags.repo)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Serve.Addr
			}
			if !cmd.Flags().Changed("debounce") {
				debounce = cfg.Serve.Debounce
			}
			if !cmd.Flags().Changed("html-head") {
				flags.htmlHead = []string{serveHead}
			}

			dotFile := viewerDotFile
			if len(args) == 1 {
				dotFile = args[0]
			}
			opts, err := flags.options(cfg, dotFile)
			if err != nil {
				return err
			}
			src, err := flags.source()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, cfg.Cache, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			v := newViewer(runner, src, opts, len(args) == 1, logger)
			if err := v.refresh(ctx); err != nil {
				logger.Error("initial render failed", "err", err)
			}

			if !noWatch && flags.input == "" {
				dir, err := gitDir(flags.repo)
				if err != nil {
					return err
				}
				go func() {
					err := watchRepo(ctx, dir, debounce, logger, func() {
						if err := v.refresh(ctx); err != nil && ctx.Err() == nil {
							logger.Error("render failed", "err", err)
						}
					})
					if err != nil {
						logger.Error("watcher stopped", "err", err)
					}
				}()
			}

			return serve(ctx, addr, v.routes(), logger)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default 127.0.0.1:8080)")
	cmd.Flags().DurationVar(&debounce, "debounce", defaultDebounce, "wait this long after the last change before redrawing")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "render once and do not watch the repository")
	return cmd
}

// serve runs the HTTP server until ctx is done.
func serve(ctx context.Context, addr string, h http.Handler, logger *log.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "listen on %s", addr)
	}
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}

	printSuccess("Serving on %s", styleLink.Render("http://"+ln.Addr().String()))
	printDetail("Press Ctrl+C to stop")

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Debug("shutting down")
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// =============================================================================
// viewer - In-memory graph state behind the HTTP routes
// =============================================================================

// viewer holds the latest rendering. Regenerations are serialized; readers
// see either the previous or the new graph, never a mix.
type viewer struct {
	runner *pipeline.Runner
	src    source.Source
	opts   pipeline.Options
	write  bool
	logger *log.Logger

	regen sync.Mutex

	mu       sync.RWMutex
	version  int
	svg      []byte
	dotText  string
	summary  dot.Summary
	stats    pipeline.Stats
	warnings []string
	lastErr  error
	updated  time.Time
}

func newViewer(runner *pipeline.Runner, src source.Source, opts pipeline.Options, write bool, logger *log.Logger) *viewer {
	if !hasSVG(opts.Formats) {
		opts.Formats = append(opts.Formats, string(dot.SVG))
	}
	return &viewer{runner: runner, src: src, opts: opts, write: write, logger: logger}
}

func hasSVG(formats []string) bool {
	for _, f := range formats {
		if got, err := dot.ParseFormat(f); err == nil && got == dot.SVG {
			return true
		}
	}
	return false
}

// refresh regenerates the graph. A failure keeps the previous image and is
// reported by /api/summary.
func (v *viewer) refresh(ctx context.Context) error {
	v.regen.Lock()
	defer v.regen.Unlock()

	opts := v.opts
	opts.Refresh = true
	var (
		res *pipeline.Result
		err error
	)
	if v.write {
		res, err = v.runner.Execute(ctx, v.src, opts)
	} else {
		res, err = v.runner.Generate(ctx, v.src, opts)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastErr = err
	if err != nil {
		return err
	}
	v.version++
	v.svg = res.Artifacts[dot.SVG]
	v.dotText = res.DOT
	v.summary = res.Output.Summary
	v.stats = res.Stats
	v.warnings = res.Warnings
	v.updated = time.Now()
	v.logger.Info("graph updated", "version", v.version, "commits", v.summary.Logical)
	return nil
}

// routes returns the viewer's HTTP handler.
func (v *viewer) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(hooksMiddleware)

	r.Get("/", v.handleIndex)
	r.Get("/graph.svg", v.handleSVG)
	r.Get("/graph.dot", v.handleDOT)
	r.Get("/api/version", v.handleVersion)
	r.Get("/api/summary", v.handleSummary)
	return r
}

func (v *viewer) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := v.opts.Page
	if page.Title == "" {
		page = dot.DefaultPage("")
	}
	page.SVG = "/graph.svg"
	page.Reload = "/api/version"
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dot.WriteHTML(w, page); err != nil {
		v.logger.Error("write page", "err", err)
	}
}

func (v *viewer) handleSVG(w http.ResponseWriter, r *http.Request) {
	v.mu.RLock()
	svg := v.svg
	v.mu.RUnlock()
	if svg == nil {
		http.Error(w, "graph not rendered yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(svg)
}

func (v *viewer) handleDOT(w http.ResponseWriter, r *http.Request) {
	v.mu.RLock()
	text := v.dotText
	v.mu.RUnlock()
	if text == "" {
		http.Error(w, "graph not rendered yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	_, _ = w.Write([]byte(text))
}

func (v *viewer) handleVersion(w http.ResponseWriter, r *http.Request) {
	v.mu.RLock()
	version := v.version
	v.mu.RUnlock()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write([]byte(strconv.Itoa(version)))
}

// summaryResponse is the body of /api/summary.
type summaryResponse struct {
	Version  int         `json:"version"`
	Updated  time.Time   `json:"updated,omitzero"`
	Commits  int         `json:"commits"`
	Visible  int         `json:"visible"`
	Merges   int         `json:"merges"`
	Squashed int         `json:"squashed"`
	Chains   int         `json:"chains"`
	Pruned   int         `json:"pruned"`
	Warnings []string    `json:"warnings,omitempty"`
	Error    *errorField `json:"error,omitempty"`
	Gitdot   string      `json:"gitdot"`
}

type errorField struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (v *viewer) handleSummary(w http.ResponseWriter, r *http.Request) {
	v.mu.RLock()
	resp := summaryResponse{
		Version:  v.version,
		Updated:  v.updated,
		Commits:  v.summary.Logical,
		Visible:  v.summary.Visible,
		Merges:   v.summary.Merge,
		Squashed: v.stats.Hidden,
		Chains:   v.stats.Chains,
		Pruned:   v.stats.NodesPruned,
		Warnings: v.warnings,
		Gitdot:   buildinfo.Version,
	}
	if v.lastErr != nil {
		resp.Error = &errorField{
			Code:    string(errors.GetCode(v.lastErr)),
			Message: errors.UserMessage(v.lastErr),
		}
	}
	v.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		v.logger.Error("encode summary", "err", err)
	}
}

// hooksMiddleware reports every request to the HTTP hooks.
func hooksMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, time.Since(start))
	})
}

