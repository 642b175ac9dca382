package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/paintgalaxy/server/internal/logger"
	"github.com/paintgalaxy/server/internal/mapfile"
	"github.com/paintgalaxy/server/internal/scenario"
)

const (
	previewWriteWait = 10 * time.Second
	previewPongWait  = 60 * time.Second
	previewPingEvery = previewPongWait * 9 / 10
)

// handleWebSocketUpgrade upgrades a live preview request. The painter sends
// its map as JSON after every edit and gets the scenario text back.
func (s *Server) handleWebSocketUpgrade(w http.ResponseWriter, r *http.Request) {
	clientIP := s.clientIPs.Of(r)

	release, ok := s.connLimiter.TryAcquire(clientIP)
	if !ok {
		logger.Warning("WebSocket connection rejected - limit exceeded",
			"remote_addr", r.RemoteAddr,
			"client_ip", clientIP)
		http.Error(w, "Too many connections. Please try again later.", http.StatusTooManyRequests)
		return
	}

	var seed *int64
	if v := r.URL.Query().Get("seed"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			release()
			http.Error(w, "seed must be an integer", http.StatusBadRequest)
			return
		}
		seed = &n
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := s.cfg.WebSocket.IsOriginAllowed(origin, r.Host)
			if !allowed {
				logger.Warning("WebSocket connection rejected - origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote_addr", r.RemoteAddr)
			}
			return allowed
		},
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", "error", err)
		release()
		return
	}

	if !s.previews.add(wsConn) {
		wsConn.Close()
		release()
		return
	}

	go func() {
		defer s.previews.remove(wsConn)
		defer release()
		s.servePreview(wsConn, clientIP, seed)
	}()
}

// previewSet tracks open preview sockets so Shutdown can close them;
// http.Server.Shutdown does not touch hijacked connections.
type previewSet struct {
	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
	wg     sync.WaitGroup
	closed bool
}

func (p *previewSet) add(conn *websocket.Conn) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	if p.conns == nil {
		p.conns = make(map[*websocket.Conn]struct{})
	}
	p.conns[conn] = struct{}{}
	p.wg.Add(1)
	return true
}

func (p *previewSet) remove(conn *websocket.Conn) {
	p.mu.Lock()
	delete(p.conns, conn)
	p.mu.Unlock()
	p.wg.Done()
}

// closeAll closes every open socket, refuses new ones, and waits for their
// goroutines to finish or ctx to end.
func (p *previewSet) closeAll(ctx context.Context) (int, error) {
	p.mu.Lock()
	p.closed = true
	n := len(p.conns)
	for conn := range p.conns {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		conn.Close()
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return n, nil
	case <-ctx.Done():
		return n, ctx.Err()
	}
}

// servePreview answers map messages until the client goes away. A nil seed
// gives every message a fresh one.
func (s *Server) servePreview(conn *websocket.Conn, clientIP string, seed *int64) {
	defer conn.Close()

	conn.SetReadLimit(s.cfg.WebSocket.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(previewPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(previewPongWait))
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.pingLoop(ctx, conn)

	logger.Debug("Preview connected", "client_ip", clientIP)
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warning("Preview connection dropped", "client_ip", clientIP, "error", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(previewPongWait))

		if !s.rateLimiter.Allow(clientIP) {
			if err := writePreview(conn, "# error: rate limit exceeded"); err != nil {
				return
			}
			continue
		}

		if err := writePreview(conn, s.preview(ctx, message, seed)); err != nil {
			return
		}
	}
}

// preview renders one map message. Failures come back as a comment line so
// the painter can show them in place of the scenario.
func (s *Server) preview(ctx context.Context, message []byte, seed *int64) string {
	m, err := mapfile.Parse(message, mapfile.FormatJSON)
	if err != nil {
		return fmt.Sprintf("# error: %v", err)
	}
	res, err := s.service.Generate(ctx, scenario.Request{Map: m, Seed: seed})
	if err != nil {
		return fmt.Sprintf("# error: %v", err)
	}
	return res.Scenario
}

func writePreview(conn *websocket.Conn, text string) error {
	conn.SetWriteDeadline(time.Now().Add(previewWriteWait))
	return conn.WriteMessage(websocket.TextMessage, []byte(text))
}

func (s *Server) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(previewPingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(previewWriteWait)); err != nil {
				return
			}
		}
	}
}
