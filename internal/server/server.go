package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/engine"
	"github.com/tartampluch/go-contacts/internal/metrics"
	"github.com/tartampluch/go-contacts/internal/ui"
)

// Store is the contact store as seen by the HTTP layer.
type Store interface {
	engine.ContactStore
	Ping(ctx context.Context) error
}

// Deps carries the collaborators of a Server. Store, Renderer, Translator and
// Metrics are required.
type Deps struct {
	Store      Store
	Renderer   *ui.Renderer
	Translator *ui.Translator
	Metrics    *metrics.Metrics

	// Optional collaborators.
	Picker  engine.ContactPicker
	Fetcher engine.VCardFetcher
	Clock   engine.Clock

	// Secret resolves the password of the configured import user. It is only
	// called for requests to the ImportURL origin.
	Secret func(user string) (string, error)
}

// ContactServer serves the public page, the admin page and their JSON API.
type ContactServer struct {
	settings config.Settings

	store    Store
	editor   *engine.Editor
	exporter *engine.Exporter
	importer *engine.Importer
	sessions *SessionStore

	render     *ui.Renderer
	translator *ui.Translator
	metrics    *metrics.Metrics
	secret     func(string) (string, error)

	// qr holds the last rendered QR code; reads are lock-free.
	qr atomic.Pointer[cacheItem]

	handler http.Handler
}

// New wires a ContactServer and builds its router.
func New(settings config.Settings, d Deps) *ContactServer {
	clock := d.Clock
	if clock == nil {
		clock = engine.RealClock{}
	}
	ttl := settings.SessionTTL
	if ttl <= 0 {
		ttl = config.DefaultSessionTTL
	}

	s := &ContactServer{
		settings:   settings,
		store:      d.Store,
		editor:     &engine.Editor{Store: d.Store},
		exporter:   &engine.Exporter{Picker: d.Picker},
		importer:   &engine.Importer{Store: d.Store, Fetcher: d.Fetcher},
		sessions:   NewSessionStore(ttl, clock),
		render:     d.Renderer,
		translator: d.Translator,
		metrics:    d.Metrics,
		secret:     d.Secret,
	}
	s.sessions.OnChange = func(n int) { s.metrics.Sessions.Set(float64(n)) }
	s.handler = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *ContactServer) Handler() http.Handler {
	return s.handler
}

func (s *ContactServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Public page
	r.Get(config.RouteRoot, s.handlePublic)
	r.Post(config.RouteToggle, s.handleToggle)
	r.Post(config.RouteReload, s.handleReload)
	r.Post(config.RouteExport, s.handleExport)
	r.Get(config.RouteExportOne, s.handleExportOne)

	// Admin page
	r.Get(config.RouteAdmin, s.handleAdmin)
	r.Post(config.RouteAdminSave, s.handleAdminSave)
	r.Post(config.RouteAdminDelete, s.handleAdminDelete)
	r.Post(config.RouteAdminImport, s.handleAdminImport)

	// JSON API
	r.Route(config.RouteAPI, func(api chi.Router) {
		api.Use(cors.New(cors.Options{
			AllowedOrigins: s.settings.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{config.HeaderContentType, config.HeaderAcceptLanguage},
			MaxAge:         config.CORSMaxAgeSeconds,
		}).Handler)

		api.Get(config.RouteAPIContacts, s.apiListContacts)
		api.Post(config.RouteAPIToggle, s.apiToggle)
		api.Post(config.RouteAPIExport, s.apiExport)

		api.Get(config.RouteAPIAdmin, s.apiAdminList)
		api.Post(config.RouteAPIAdmin, s.apiAdminCreate)
		api.Put(config.RouteAPIAdminNamed, s.apiAdminUpdate)
		api.Delete(config.RouteAPIAdminNamed, s.apiAdminDelete)
	})

	// Operations
	r.Get(config.RouteQRCode, s.handleQRCode)
	r.Get(config.RouteHealth, s.handleHealth)
	r.Method(http.MethodGet, config.RouteMetrics, s.metrics.Handler())

	return r
}

// Start listens on the configured address and blocks until ctx is cancelled.
func (s *ContactServer) Start(ctx context.Context) error {
	if s.settings.Addr == "" {
		return errors.New(config.ErrAddrRequired)
	}
	ln, err := net.Listen("tcp", s.settings.Addr)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the HTTP server and the session janitor on ln until ctx is
// cancelled, then shuts down within ShutdownTimeout.
func (s *ContactServer) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go s.sessions.Run(janitorCtx, config.SessionSweepInterval)

	serverError := make(chan error, config.ChannelBufferSize)
	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyAddr, ln.Addr().String(),
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// localizer picks the request language.
func (s *ContactServer) localizer(r *http.Request) *ui.Localizer {
	return s.translator.Localizer(r.Header.Get(config.HeaderAcceptLanguage))
}
