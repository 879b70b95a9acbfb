package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/muurk/orbis-ime/internal/config"
	"github.com/muurk/orbis-ime/internal/discovery"
	"github.com/muurk/orbis-ime/internal/imedialog"
	"github.com/muurk/orbis-ime/internal/logging"
	"github.com/muurk/orbis-ime/internal/metrics"
	"github.com/muurk/orbis-ime/internal/version"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// DefaultIdleTimeout closes dialogs whose client sends nothing for this long
	DefaultIdleTimeout = 5 * time.Minute

	// Maximum frame message size allowed from peer
	maxMessageSize = 64 * 1024

	// Time allowed for open dialogs to wind down on shutdown
	shutdownTimeout = 10 * time.Second
)

// ErrServerClosed is returned for dialogs requested after Shutdown
var ErrServerClosed = errors.New("remote: server closed")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// ConfigSource resolves preset names into dialog configurations.
// *config.Registry satisfies it.
type ConfigSource interface {
	DialogConfig(preset string) (*imedialog.Config, error)
	PresetNames() []string
}

// Option configures a Server
type Option func(*Server)

// WithMetrics records dialog events in c and serves it on /metrics
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Server) {
		s.metrics = c
	}
}

// WithIdleTimeout overrides DefaultIdleTimeout
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.idleTimeout = d
		}
	}
}

// Server hosts IME dialogs for WebSocket clients
type Server struct {
	source      ConfigSource
	metrics     *metrics.Collector
	idleTimeout time.Duration

	mu     sync.Mutex
	active map[string]*imedialog.Controller
	closed bool
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewServer creates a server resolving presets through source
func NewServer(source ConfigSource, opts ...Option) *Server {
	s := &Server{
		source:      source,
		idleTimeout: DefaultIdleTimeout,
		active:      make(map[string]*imedialog.Controller),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns the HTTP handler for all endpoints
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Get("/presets", s.handlePresets)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}
	r.Get(discovery.DefaultPath, s.handleDialog)
	return r
}

// ListenAndServe listens on addr and serves until ctx is done
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully: open dialogs are aborted and their clients told why.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: writeWait,
	}

	logging.Info("Remote IME host listening", zap.String("addr", ln.Addr().String()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logging.Info("Shutting down remote IME host...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logging.Error("Error shutting down HTTP server", zap.Error(err))
		}
		return s.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Shutdown aborts every open dialog and waits for their handlers to return.
// Dialogs requested afterwards are refused.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
	s.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		logging.Info("All dialogs closed gracefully")
		return nil
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, dialogs still open", zap.Int("active", s.ActiveDialogs()))
		return ctx.Err()
	}
}

// ActiveDialogs returns the number of connected dialogs
func (s *Server) ActiveDialogs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

func (s *Server) track(remoteAddr string, ctrl *imedialog.Controller) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrServerClosed
	}
	s.active[remoteAddr] = ctrl
	s.wg.Add(1)
	return nil
}

func (s *Server) untrack(remoteAddr string) {
	s.mu.Lock()
	delete(s.active, remoteAddr)
	s.mu.Unlock()
	s.wg.Done()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"dialogs": s.ActiveDialogs(),
		"version": version.Version,
	})
}

func (s *Server) handlePresets(w http.ResponseWriter, _ *http.Request) {
	names := s.source.PresetNames()
	presets := make([]PresetInfo, 0, len(names))
	for _, name := range names {
		cfg, err := s.source.DialogConfig(name)
		if err != nil {
			logging.Warn("Skipping invalid preset", zap.String("preset", name), zap.Error(err))
			continue
		}
		presets = append(presets, PresetInfo{
			Name:          name,
			Title:         cfg.Title,
			MaxTextLength: cfg.MaxTextLength,
			MultiLine:     cfg.MultiLine,
			Numeric:       cfg.Mode().Numeric,
			EnterLabel:    cfg.EnterLabel.String(),
		})
	}
	writeJSON(w, http.StatusOK, presets)
}

func (s *Server) handleDialog(w http.ResponseWriter, r *http.Request) {
	remoteAddr := r.RemoteAddr
	query := r.URL.Query()
	preset := query.Get("preset")

	cfg, err := s.source.DialogConfig(preset)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, config.ErrPresetNotFound) {
			status = http.StatusNotFound
		}
		logging.Warn("Dialog request refused",
			zap.String("remote_addr", remoteAddr),
			zap.String("preset", preset),
			zap.Error(err),
		)
		http.Error(w, err.Error(), status)
		return
	}
	if user := query.Get("user"); user != "" {
		id, err := strconv.ParseInt(user, 10, 32)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid user id %q", user), http.StatusBadRequest)
			return
		}
		cfg.UserID = int32(id)
	}

	session, err := imedialog.NewSession(cfg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var opts []imedialog.Option
	if s.metrics != nil {
		opts = append(opts, imedialog.WithObserver(s.metrics.Observer()))
	}
	ctrl := imedialog.NewController(session, opts...)
	defer ctrl.Close()

	if err := s.track(remoteAddr, ctrl); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer s.untrack(remoteAddr)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client
		logging.Error("WebSocket upgrade failed",
			zap.String("remote_addr", remoteAddr),
			zap.Error(err),
		)
		return
	}
	conn.SetReadLimit(maxMessageSize)

	d := &dialogConn{
		conn:        conn,
		ctrl:        ctrl,
		remoteAddr:  remoteAddr,
		label:       cfg.EnterLabel,
		idleTimeout: s.idleTimeout,
	}
	logging.LogConnection(remoteAddr, "dialog_opened", zap.String("preset", preset))
	s.serveDialog(r.Context(), d)
}

// serveDialog owns the controller for one connection. Frames are drawn on
// the read goroutine; this goroutine only waits and aborts.
func (s *Server) serveDialog(ctx context.Context, d *dialogConn) {
	defer func() {
		_ = d.conn.Close()
		logging.LogConnection(d.remoteAddr, "dialog_closed")
	}()

	// Seed the widget before the client sends anything
	if err := d.drawAndSend(&FrameMessage{}); err != nil {
		logging.Info("Failed to send initial view",
			zap.String("remote_addr", d.remoteAddr),
			zap.Error(err),
		)
		d.ctrl.Abort()
		return
	}

	readDone := make(chan error, 1)
	go func() {
		readDone <- d.readLoop()
	}()

	select {
	case err := <-readDone:
		if err != nil {
			logging.Info("Connection closed or error reading frame",
				zap.String("remote_addr", d.remoteAddr),
				zap.Error(err),
			)
		}
		d.ctrl.Abort()
	case <-s.done:
		d.ctrl.Abort()
		d.closeWith(websocket.CloseGoingAway, "server shutting down")
		_ = d.conn.Close()
		<-readDone
	case <-ctx.Done():
		d.ctrl.Abort()
		_ = d.conn.Close()
		<-readDone
	}

	state, _ := d.ctrl.Poll()
	logging.LogConnection(d.remoteAddr, "dialog_"+state.String())
}

type dialogConn struct {
	conn        *websocket.Conn
	ctrl        *imedialog.Controller
	remoteAddr  string
	label       imedialog.EnterLabel
	idleTimeout time.Duration
	widget      imedialog.WidgetState
}

// readLoop reads frames until the dialog finishes or the client goes away.
// It is the only goroutine writing data messages.
func (d *dialogConn) readLoop() error {
	for {
		if err := d.conn.SetReadDeadline(time.Now().Add(d.idleTimeout)); err != nil {
			return err
		}

		msgType, data, err := d.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		logging.LogWebSocketMessage(d.remoteAddr, "in", msgType, data)

		if msgType != websocket.TextMessage {
			if err := d.sendError("frames must be text messages"); err != nil {
				return err
			}
			continue
		}

		var frame FrameMessage
		if err := json.Unmarshal(data, &frame); err != nil {
			if err := d.sendError(fmt.Sprintf("invalid frame: %v", err)); err != nil {
				return err
			}
			continue
		}

		if err := d.drawAndSend(&frame); err != nil {
			return err
		}
		if state, _ := d.ctrl.Poll(); state.Terminal() {
			d.closeWith(websocket.CloseNormalClosure, state.String())
			return nil
		}
	}
}

func (d *dialogConn) drawAndSend(frame *FrameMessage) error {
	d.ctrl.Draw(frame.Input(&d.widget))
	return d.send(d.view())
}

func (d *dialogConn) view() ViewMessage {
	state, result := d.ctrl.Poll()
	return newView(state, result, &d.widget, d.label)
}

func (d *dialogConn) sendError(msg string) error {
	v := d.view()
	v.Error = msg
	return d.send(v)
}

func (d *dialogConn) send(v ViewMessage) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode view: %w", err)
	}
	if err := d.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	logging.LogWebSocketMessage(d.remoteAddr, "out", websocket.TextMessage, data)
	return d.conn.WriteMessage(websocket.TextMessage, data)
}

// closeWith sends a close frame. WriteControl is safe alongside the reader's
// writes.
func (d *dialogConn) closeWith(code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	_ = d.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("Failed to encode response", zap.Error(err))
	}
}
