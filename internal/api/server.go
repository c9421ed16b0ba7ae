package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/bryanchriswhite/EdgeViewer/internal/bootstrap"
	"github.com/bryanchriswhite/EdgeViewer/internal/frame"
	"github.com/bryanchriswhite/EdgeViewer/internal/logger"
	"github.com/bryanchriswhite/EdgeViewer/internal/page"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Options names the page elements the API acts on.
type Options struct {
	ContainerID     string
	RefreshButtonID string
}

// Server represents the HTTP API server
type Server struct {
	router   *mux.Router
	loop     *page.Loop
	doc      *page.Document
	session  *bootstrap.Session
	opts     Options
	upgrader websocket.Upgrader
	log      *zerolog.Logger
	srv      *http.Server
}

// pageUpdate is pushed to stream clients after each page mutation.
type pageUpdate struct {
	Version uint64 `json:"version"`
	HTML    string `json:"html"`
}

// NewServer creates a new API server for a bootstrapped page.
func NewServer(loop *page.Loop, doc *page.Document, session *bootstrap.Session, opts Options) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		loop:    loop,
		doc:     doc,
		session: session,
		opts:    opts,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for development
			},
		},
		log: logger.WithComponent("api"),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Frame state
	api.HandleFunc("/frame/current", s.handleGetCurrentFrame).Methods("GET")
	api.HandleFunc("/frame", s.handleClearFrame).Methods("DELETE")
	api.HandleFunc("/refresh", s.handleRefresh).Methods("POST")

	// Live page updates
	api.HandleFunc("/page/stream", s.handlePageStream)

	// Health check
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	s.router.PathPrefix("/").HandlerFunc(s.handleIndex)
}

// Handler returns the router wrapped in the CORS middleware.
func (s *Server) Handler() http.Handler {
	return s.enableCORS(s.router)
}

// Start serves on port until Shutdown is called.
func (s *Server) Start(port int) error {
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.Handler(),
	}
	s.log.Info().Msgf("Starting server on http://localhost%s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops a server started with Start.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// enableCORS adds CORS headers
func (s *Server) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// onLoop runs fn on the page loop, answering 503 if the loop is gone.
func (s *Server) onLoop(w http.ResponseWriter, r *http.Request, fn func()) bool {
	if err := s.loop.Do(r.Context(), fn); err != nil {
		http.Error(w, "page unavailable: "+err.Error(), http.StatusServiceUnavailable)
		return false
	}
	return true
}

// HTTP Handlers

func (s *Server) handleGetCurrentFrame(w http.ResponseWriter, r *http.Request) {
	var (
		current frame.ProcessedFrame
		ok      bool
		started bool
	)
	if !s.onLoop(w, r, func() {
		started = s.session.Viewer != nil
		if started {
			current, ok = s.session.Viewer.CurrentFrame()
		}
	}) {
		return
	}

	if !started {
		http.Error(w, "Viewer not initialized", http.StatusServiceUnavailable)
		return
	}
	if !ok {
		http.Error(w, "No frame loaded", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, current)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var (
		found, handled, ok bool
		current            frame.ProcessedFrame
	)
	if !s.onLoop(w, r, func() {
		btn := s.doc.GetElementByID(s.opts.RefreshButtonID)
		if btn == nil {
			return
		}
		found = true
		handled = btn.Dispatch("click")
		if s.session.Viewer != nil {
			current, ok = s.session.Viewer.CurrentFrame()
		}
	}) {
		return
	}

	switch {
	case !found:
		http.Error(w, "No refresh control on page", http.StatusNotFound)
	case !handled || !ok:
		http.Error(w, "Refresh control is inactive", http.StatusConflict)
	default:
		writeJSON(w, http.StatusOK, current)
	}
}

func (s *Server) handleClearFrame(w http.ResponseWriter, r *http.Request) {
	started := false
	if !s.onLoop(w, r, func() {
		if s.session.Viewer != nil {
			started = true
			s.session.Viewer.Clear()
		}
	}) {
		return
	}

	if !started {
		http.Error(w, "Viewer not initialized", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) containerUpdate() pageUpdate {
	u := pageUpdate{Version: s.doc.Version()}
	if c := s.doc.GetElementByID(s.opts.ContainerID); c != nil {
		u.HTML = c.OuterHTML()
	}
	return u
}

func (s *Server) handlePageStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("WebSocket upgrade error")
		return
	}
	defer conn.Close()

	clientID := uuid.NewString()
	log := s.log.With().Str("client", clientID).Logger()
	log.Info().Msg("Page stream client connected")
	defer log.Info().Msg("Page stream client disconnected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Drain incoming frames so close messages are seen.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	updates := s.doc.Subscribe()
	defer s.doc.Unsubscribe(updates)

	var lastSent uint64
	push := func() bool {
		var u pageUpdate
		if err := s.loop.Do(ctx, func() { u = s.containerUpdate() }); err != nil {
			return false
		}
		lastSent = u.Version
		if err := conn.WriteJSON(u); err != nil {
			log.Debug().Err(err).Msg("WebSocket write error")
			return false
		}
		return true
	}

	if !push() {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-updates:
			if !ok {
				return
			}
			// one render covers every mutation up to lastSent
			if m.Version <= lastSent {
				continue
			}
			if !push() {
				return
			}
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": Version,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	var body string
	if !s.onLoop(w, r, func() { body = s.doc.String() }) {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(body))
}
