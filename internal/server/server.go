package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"doorctl/internal/config"
	"doorctl/internal/events"
	"doorctl/internal/isapi"
	"doorctl/internal/logging"
	"doorctl/internal/oplog"
	"doorctl/internal/poller"
	"doorctl/internal/registry"
)

// Server is the doorctl HTTP front-end. It exposes a JSON API for door
// commands and device management plus a WebSocket event feed.
type Server struct {
	cfg    config.Server
	store  *registry.Store
	ctrl   *isapi.Controller
	hub    *events.Hub
	bcast  *events.Broadcaster
	poller *poller.Poller
	http   *http.Server

	// control is swapped out by tests
	control func(ctx context.Context, target isapi.DeviceTarget, cmd isapi.DoorCommand, doorNo int) (isapi.ControlResult, error)
}

// New wires up a server from its configuration. The registry is loaded
// from cfg.RegistryPath (or the default location when empty).
func New(cfg config.Server) (*Server, error) {
	path := cfg.RegistryPath
	if path == "" {
		var err error
		path, err = registry.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve registry path: %w", err)
		}
	}

	store, err := registry.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open device registry: %w", err)
	}

	hub := events.NewHub()
	bcast := events.NewBroadcaster(hub)

	ctrl := isapi.NewController(oplog.New(cfg.LogDir))
	ctrl.Timeout = cfg.PanelTimeout()

	s := &Server{
		cfg:     cfg,
		store:   store,
		ctrl:    ctrl,
		hub:     hub,
		bcast:   bcast,
		control: ctrl.SetDoorState,
	}

	if cfg.PollSchedule != "" {
		p, err := poller.New(cfg.PollSchedule, store, bcast)
		if err != nil {
			return nil, fmt.Errorf("failed to configure device poller: %w", err)
		}
		s.poller = p
	}

	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/healthz"))
	r.Use(s.logRequests)

	r.Route("/api", func(api chi.Router) {
		api.Post("/door", s.handleDoorCommand)
		api.Get("/devices", s.handleListDevices)
		api.Get("/events", s.handleEvents)
	})

	return r
}

// Start runs the server and blocks until a shutdown signal arrives or
// the listener fails.
func (s *Server) Start() error {
	go s.hub.Run()
	if s.poller != nil {
		s.poller.Start()
	}

	s.http = &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logging.Info("Starting doorctl server",
		zap.String("addr", s.cfg.Listen),
		zap.String("registry", s.store.Path()),
		zap.String("log_dir", s.cfg.LogDir),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping server...")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown stops the poller, disconnects event subscribers and drains
// in-flight HTTP requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.poller != nil {
		s.poller.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var err error
	if s.http != nil {
		err = s.http.Shutdown(shutdownCtx)
	}

	s.hub.Stop()
	logging.Sync()
	return err
}

// logRequests emits one structured log line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, ww.Status())
	})
}
