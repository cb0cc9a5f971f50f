package bridge

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Server accepts bridge connections and dispatches their requests
type Server struct {
	mu sync.Mutex

	token   string
	invoker Invoker
	logger  *zap.Logger

	upgrader websocket.Upgrader
	listener net.Listener
	srv      *http.Server
	conns    map[*websocket.Conn]struct{}
	closed   bool

	wg sync.WaitGroup
}

// NewServer creates a bridge server that requires token on every connection
func NewServer(token string, invoker Invoker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		token:   token,
		invoker: invoker,
		logger:  logger,
		conns:   make(map[*websocket.Conn]struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// browsers always send an Origin; local CLI clients never do
		CheckOrigin: func(r *http.Request) bool {
			return r.Header.Get("Origin") == ""
		},
	}
	return s
}

// Handler returns the HTTP handler serving Path
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(Path, s.handleInvoke)
	return mux
}

// Start listens on addr, which must be a loopback address, and serves until
// ctx is cancelled or Close is called
func (s *Server) Start(ctx context.Context, addr string) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("failed to parse bridge address: %w", err)
	}
	if ip := net.ParseIP(host); ip == nil || !ip.IsLoopback() {
		return ErrNotLoopback
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.mu.Lock()
	s.listener = ln
	s.srv = srv
	s.mu.Unlock()

	s.logger.Info("Bridge listening", zap.String("addr", ln.Addr().String()))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Bridge server stopped", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()

	return nil
}

// Addr returns the listening address, or "" before Start
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) authorized(r *http.Request) bool {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, prefix) {
		return false
	}
	got := strings.TrimPrefix(h, prefix)
	return subtle.ConstantTimeCompare([]byte(got), []byte(s.token)) == 1
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	if s.token == "" || !s.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("Bridge upgrade failed", zap.Error(err))
		return
	}
	conn.SetReadLimit(readLimit)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	s.mu.Unlock()

	go s.readMessages(conn)
}

func (s *Server) readMessages(conn *websocket.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("Bridge read error", zap.Error(err))
			}
			return
		}

		resp := s.handleMessage(data)

		out, err := json.Marshal(resp)
		if err != nil {
			return
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
			s.logger.Debug("Bridge write error", zap.Error(err))
			return
		}
	}
}

func (s *Server) handleMessage(data []byte) Response {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Response{OK: false, Error: "malformed request"}
	}

	if err := s.invoker.Invoke(req.Cmd, req.Args); err != nil {
		s.logger.Debug("Bridge command failed", zap.String("cmd", req.Cmd), zap.Error(err))
		return Response{ID: req.ID, OK: false, Error: err.Error()}
	}
	return Response{ID: req.ID, OK: true}
}

// Close stops the listener, closes open connections and waits for their
// goroutines
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	srv := s.srv
	conns := make([]*websocket.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	var err error
	if srv != nil {
		err = srv.Close()
	}

	for _, conn := range conns {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	}

	s.wg.Wait()
	return err
}
