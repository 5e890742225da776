// Package preview serves the built site locally, rebuilding on source
// changes.
package preview

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/report"
	"git.home.luguber.info/inful/sitebuilder/internal/result"
)

const defaultDebounce = 300 * time.Millisecond

// RebuildFunc runs one full site build and returns its outcome.
type RebuildFunc func(ctx context.Context) result.Status

// Server serves the output directory and triggers rebuilds from file watches
// and an optional periodic schedule.
type Server struct {
	cfg      *config.Config
	rebuild  RebuildFunc
	renderer *report.Renderer
	metrics  http.Handler
	debounce time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithMetricsHandler exposes a /metrics endpoint.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithRenderer overrides how rebuild outcomes are presented.
func WithRenderer(r *report.Renderer) Option {
	return func(s *Server) { s.renderer = r }
}

// WithDebounce overrides the watch debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(s *Server) { s.debounce = d }
}

// New creates a preview server.
func New(cfg *config.Config, rebuild RebuildFunc, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		rebuild:  rebuild,
		renderer: report.New(),
		debounce: defaultDebounce,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler: the output tree plus /metrics when
// enabled.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	if s.metrics != nil && s.cfg.Preview.Metrics {
		mux.Handle("/metrics", s.metrics)
	}
	mux.Handle("/", http.FileServer(http.Dir(s.cfg.Build.Output)))
	return mux
}

// Run builds once, then serves until ctx is canceled. Rebuilds triggered by
// watches or the schedule are serialized on the main loop.
func (s *Server) Run(ctx context.Context) error {
	s.renderer.Show(s.rebuild(ctx))

	ln, err := net.Listen("tcp", s.cfg.Preview.Addr)
	if err != nil {
		return err
	}
	slog.Info("Preview server listening", logfields.Addr(ln.Addr().String()))

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	rebuildCh := make(chan struct{}, 1)

	var watcher *fsnotify.Watcher
	if s.cfg.Preview.Watch {
		watcher, err = s.startWatcher(rebuildCh)
		if err != nil {
			slog.Warn("File watching disabled", logfields.Error(err))
		} else {
			defer watcher.Close()
		}
	}

	if interval := s.cfg.Preview.RebuildEvery(); interval > 0 {
		scheduler, err := s.startScheduler(interval, rebuildCh)
		if err != nil {
			slog.Warn("Periodic rebuilds disabled", logfields.Error(err))
		} else {
			defer func() {
				_ = scheduler.Shutdown()
			}()
		}
	}

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-serveErr:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-rebuildCh:
			slog.Info("Rebuilding site")
			s.renderer.Show(s.rebuild(ctx))
		}
	}
}

// startWatcher watches the content, layouts, and static trees and signals a
// debounced rebuild on changes.
func (s *Server) startWatcher(rebuildCh chan<- struct{}) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, root := range []string{s.cfg.Content.Dir, s.cfg.Content.Layouts, s.cfg.Content.Static} {
		if root == "" {
			continue
		}
		if err := watchTree(watcher, root); err != nil {
			slog.Warn("Cannot watch directory", logfields.Path(root), logfields.Error(err))
		}
	}

	go func() {
		var timer *time.Timer
		signal := func() {
			select {
			case rebuildCh <- struct{}{}:
			default:
			}
		}
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				// New directories need their own watch before their files
				// produce events.
				if ev.Op&fsnotify.Create != 0 {
					if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
						_ = watchTree(watcher, ev.Name)
					}
				}
				if timer == nil {
					timer = time.AfterFunc(s.debounce, signal)
				} else {
					timer.Reset(s.debounce)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("File watch error", logfields.Error(err))
			}
		}
	}()

	return watcher, nil
}

func (s *Server) startScheduler(interval time.Duration, rebuildCh chan<- struct{}) (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			select {
			case rebuildCh <- struct{}{}:
			default:
			}
		}),
		gocron.WithName("periodic-rebuild"),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	scheduler.Start()
	return scheduler, nil
}

func watchTree(watcher *fsnotify.Watcher, root string) error {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil
	}
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
