package sink

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/chase3718/lou-dome/internal/frame"
	"github.com/chase3718/lou-dome/internal/layout"
)

const (
	previewSendBuffer = 4
	previewWriteWait  = time.Second
)

// Message is what preview clients receive: one "layout" message on connect,
// then a "frame" message per published frame.
type Message struct {
	Type   string         `json:"type"`
	Points []layout.Point `json:"points,omitempty"`
	Colors []string       `json:"colors,omitempty"`
}

type previewClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Preview serves published frames to websocket viewers. Slow viewers miss
// frames; they never hold up the consumer.
type Preview struct {
	upgrader websocket.Upgrader
	log      *slog.Logger
	layout   []byte

	mu      sync.Mutex
	clients map[*previewClient]struct{}
}

// NewPreview sends points, indexed by unit, to every viewer on connect.
func NewPreview(points []layout.Point, logger *slog.Logger) (*Preview, error) {
	if logger == nil {
		logger = slog.Default()
	}
	msg, err := json.Marshal(Message{Type: "layout", Points: points})
	if err != nil {
		return nil, err
	}
	return &Preview{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log:     logger,
		layout:  msg,
		clients: make(map[*previewClient]struct{}),
	}, nil
}

func (p *Preview) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := p.upgrader.Upgrade(w, r, nil)
	if err != nil {
		p.log.Warn("preview: upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	c := &previewClient{conn: conn, send: make(chan []byte, previewSendBuffer)}
	c.send <- p.layout

	p.mu.Lock()
	p.clients[c] = struct{}{}
	n := len(p.clients)
	p.mu.Unlock()
	p.log.Info("preview: viewer connected", "remote", r.RemoteAddr, "viewers", n)

	go p.writeLoop(c)
	// Viewers never send anything; reading only notices the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	p.remove(c)
	p.log.Info("preview: viewer left", "remote", r.RemoteAddr)
}

func (p *Preview) writeLoop(c *previewClient) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(previewWriteWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			p.remove(c)
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (p *Preview) remove(c *previewClient) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.clients[c]; ok {
		delete(p.clients, c)
		close(c.send)
	}
}

// Viewers is the number of connected viewers.
func (p *Preview) Viewers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clients)
}

func (p *Preview) Publish(colors []frame.RGB) error {
	hex := make([]string, len(colors))
	for i, c := range colors {
		hex[i] = c.String()
	}
	msg, err := json.Marshal(Message{Type: "frame", Colors: hex})
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for c := range p.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
	return nil
}

// Close disconnects every viewer.
func (p *Preview) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for c := range p.clients {
		delete(p.clients, c)
		close(c.send)
	}
	return nil
}
