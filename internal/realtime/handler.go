package realtime

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/websocket"
)

const (
	maxFramePayloadBytes   = 16 * 1024
	maxDecodeErrorsPerConn = 3
	writeTimeout           = 5 * time.Second
)

const invalidUserIDMessage = "Invalid userId"

// clientFrame is anything a client may send. Only "register" and "ping" are understood.
type clientFrame struct {
	Type   string          `json:"type"`
	UserID json.RawMessage `json:"userId"`
}

type registeredFrame struct {
	Type    string `json:"type"`
	Success bool   `json:"success"`
	UserID  int64  `json:"userId"`
}

type errorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type pongFrame struct {
	Type string `json:"type"`
}

// wsConn serializes writes to one websocket and remembers whether it is still open.
type wsConn struct {
	mu     sync.Mutex
	ws     *websocket.Conn
	closed bool
}

func newWSConn(ws *websocket.Conn) *wsConn {
	return &wsConn{ws: ws}
}

func (c *wsConn) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errConnClosed
	}
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return websocket.Message.Send(c.ws, string(payload))
}

func (c *wsConn) Open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

func (c *wsConn) markClosed() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *wsConn) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Send(b)
}

// HandlerOptions configures the websocket endpoint.
type HandlerOptions struct {
	// AllowedOrigin is matched against the Origin header; "*" or empty accepts any.
	AllowedOrigin string
}

// NewHandler serves the connection endpoint. A client registers with
// {"type":"register","userId":N}; on close the connection is unregistered from
// whichever user it last registered under.
func NewHandler(reg *Registry, opts HandlerOptions) http.Handler {
	allowed := strings.TrimSpace(opts.AllowedOrigin)
	return websocket.Server{
		Handshake: func(cfg *websocket.Config, r *http.Request) error {
			if allowed == "" || allowed == "*" {
				return nil
			}
			if !strings.EqualFold(r.Header.Get("Origin"), allowed) {
				return errors.New("origin not allowed")
			}
			return nil
		},
		Handler: func(ws *websocket.Conn) {
			ws.MaxPayloadBytes = maxFramePayloadBytes
			serveConn(ws, reg)
		},
	}
}

func serveConn(ws *websocket.Conn, reg *Registry) {
	conn := newWSConn(ws)
	var (
		registered bool
		userID     int64
	)
	defer func() {
		conn.markClosed()
		if registered {
			reg.Unregister(userID, conn)
		}
		_ = ws.Close()
	}()

	decodeErrors := 0
	for {
		var raw string
		if err := websocket.Message.Receive(ws, &raw); err != nil {
			if !errors.Is(err, io.EOF) {
				log.Printf("realtime: receive failed remote=%s: %v", ws.Request().RemoteAddr, err)
			}
			return
		}
		var frame clientFrame
		if err := json.Unmarshal([]byte(raw), &frame); err != nil {
			decodeErrors++
			_ = conn.writeJSON(errorFrame{Type: "error", Message: "Invalid message"})
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			continue
		}
		decodeErrors = 0

		switch frame.Type {
		case "register":
			id, ok := ParseUserID(frame.UserID)
			if !ok {
				_ = conn.writeJSON(errorFrame{Type: "error", Message: invalidUserIDMessage})
				continue
			}
			if registered && id != userID {
				reg.Unregister(userID, conn)
			}
			reg.Register(id, conn)
			registered, userID = true, id
			_ = conn.writeJSON(registeredFrame{Type: "registered", Success: true, UserID: id})
		case "ping":
			_ = conn.writeJSON(pongFrame{Type: "pong"})
		default:
			_ = conn.writeJSON(errorFrame{Type: "error", Message: "Unsupported message type"})
		}
	}
}

// ParseUserID accepts a positive integer given as a JSON number or a numeric string.
func ParseUserID(raw json.RawMessage) (int64, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, false
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0, false
		}
		s = strings.TrimSpace(str)
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
