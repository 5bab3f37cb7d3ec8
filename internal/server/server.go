package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tartampluch/go-timeline/internal/config"
	"github.com/tartampluch/go-timeline/internal/engine"
	"github.com/tartampluch/go-timeline/internal/metrics"
)

// cacheItem stores a rendered representation and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// Converter converts an uploaded delimited file. *engine.Generator implements it.
type Converter interface {
	Convert(ctx context.Context, r io.Reader, delim rune) (engine.Result, error)
}

// TimelineServer serves the latest synchronized timeline and converts uploads.
type TimelineServer struct {
	// Snapshots use atomic.Pointer for lock-free reads on the hot path.
	document atomic.Pointer[cacheItem]
	calendar atomic.Pointer[cacheItem]

	Port            string
	DefaultLanguage string

	converter Converter
	metrics   *metrics.Metrics
	router    *chi.Mux
}

// NewTimelineServer creates a server. converter and m may be nil; the
// conversion endpoint then answers 503 and /metrics 404.
func NewTimelineServer(port string, converter Converter, m *metrics.Metrics) *TimelineServer {
	s := &TimelineServer{
		Port:            port,
		DefaultLanguage: config.DefaultLanguage,
		converter:       converter,
		metrics:         m,
		router:          chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *TimelineServer) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(noSniff)
}

func (s *TimelineServer) setupRoutes() {
	s.router.Get(config.RouteTimeline, s.serveSnapshot(&s.document, config.MimeJSON))
	s.router.Head(config.RouteTimeline, s.serveSnapshot(&s.document, config.MimeJSON))
	s.router.Get(config.RouteICS, s.serveSnapshot(&s.calendar, config.MimeTextCalendar))
	s.router.Head(config.RouteICS, s.serveSnapshot(&s.calendar, config.MimeTextCalendar))
	s.router.Post(config.RouteConvert, s.handleConvert)
	s.router.Get(config.RouteExample, s.handleExample)
	s.router.Get(config.RouteHealth, s.handleHealth)
	s.router.Handle(config.RouteMetrics, s.metrics.Handler())

	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
	})
}

// Handler exposes the router, mainly for tests and embedding.
func (s *TimelineServer) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server and blocks until the context is cancelled.
func (s *TimelineServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.router,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Publish atomically replaces both served representations.
func (s *TimelineServer) Publish(res engine.Result) {
	modTime := res.GeneratedAt
	if modTime.IsZero() {
		modTime = time.Now()
	}
	s.document.Store(newCacheItem(res.JSON, modTime))
	s.calendar.Store(newCacheItem(res.ICS, modTime))
}

func newCacheItem(data []byte, modTime time.Time) *cacheItem {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
	return &cacheItem{
		data:         data,
		etag:         etag,
		lastModified: modTime.UTC().Format(http.TimeFormat),
	}
}

// serveSnapshot serves a cached representation with HTTP caching support.
func (s *TimelineServer) serveSnapshot(slot *atomic.Pointer[cacheItem], mime string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item := slot.Load()
		if item == nil {
			w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
			http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
			return
		}

		w.Header().Set(config.HeaderContentType, mime)
		w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
		w.Header().Set(config.HeaderETag, item.etag)
		w.Header().Set(config.HeaderLastModified, item.lastModified)

		if notModified(r, item) {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		if r.Method == http.MethodGet {
			if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
				slog.Error(config.ErrWriteResp,
					config.LogKeyComponent, config.CompServer,
					config.LogKeyError, err,
				)
			}
		}
	}
}

func notModified(r *http.Request, item *cacheItem) bool {
	if match := r.Header.Get(config.HeaderIfNoneMatch); match != "" {
		return match == item.etag
	}
	since := r.Header.Get(config.HeaderIfModifiedSince)
	if since == "" {
		return false
	}
	clientTime, err := time.Parse(http.TimeFormat, since)
	if err != nil {
		return false
	}
	serverTime, err := time.Parse(http.TimeFormat, item.lastModified)
	if err != nil {
		return false
	}
	return !serverTime.After(clientTime)
}

func (s *TimelineServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(config.HeaderContentType, config.MimeTextPlain)
	_, _ = io.WriteString(w, config.HTTPMsgOK)
}

func noSniff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
		next.ServeHTTP(w, r)
	})
}
