package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mordilloSan/go-logger/logger"

	"github.com/mordilloSan/hostnodes/common/flow"
)

// WebSocket keepalive configuration
const (
	// How often to send ping frames to the client
	pingInterval = 25 * time.Second

	// Read deadline; must be longer than pingInterval
	pongWait = 35 * time.Second

	// Maximum time allowed to write a message (ping or data)
	writeWait = 10 * time.Second
)

// Frame types sent to the client
const (
	FrameMessage = "message"
	FrameError   = "error"
	FrameFatal   = "fatal"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// wsInput is what the client sends: a node type and an optional message.
type wsInput struct {
	Node string        `json:"node"`
	Msg  *flow.Message `json:"msg,omitempty"`
}

// wsFrame is what the server sends back.
type wsFrame struct {
	Type  string        `json:"type"`
	Node  string        `json:"node,omitempty"`
	Msg   *flow.Message `json:"msg,omitempty"`
	Error string        `json:"error,omitempty"`
}

type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) write(f wsFrame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(f)
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// wsOutput streams a node's results straight to the socket.
type wsOutput struct {
	c    *wsConn
	node string
}

func (o wsOutput) Send(msg *flow.Message) error {
	return o.c.write(wsFrame{Type: FrameMessage, Node: o.node, Msg: msg})
}

func (o wsOutput) Error(err error, msg *flow.Message) {
	logger.WarnKV("node reported error", "node", o.node, "error", err)
	if werr := o.c.write(wsFrame{Type: FrameError, Node: o.node, Msg: msg, Error: err.Error()}); werr != nil {
		logger.Debugf("[ws] write error frame: %v", werr)
	}
}

// WebSocketHandler accepts node inputs over a socket. Each input runs in its
// own goroutine; results come back in completion order.
func WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warnf("[ws] upgrade failed: %v", err)
		return
	}
	c := &wsConn{conn: conn}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
		_ = conn.Close()
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	wg.Go(func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := c.ping(); err != nil {
					logger.Debugf("[ws] ping failed: %v", err)
					return
				}
			}
		}
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debugf("[ws] read: %v", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		// A bad frame is answered, not fatal to the socket.
		var in wsInput
		if err := json.Unmarshal(data, &in); err != nil {
			_ = c.write(wsFrame{Type: FrameError, Error: fmt.Sprintf("%v: %v", flow.ErrInvalidMessage, err)})
			continue
		}
		if in.Node == "" {
			_ = c.write(wsFrame{Type: FrameError, Error: flow.ErrInvalidMessage.Error() + ": missing node"})
			continue
		}

		wg.Go(func() {
			runNode(ctx, c, in)
		})
	}
}

func runNode(ctx context.Context, c *wsConn, in wsInput) {
	err := flow.Dispatch(ctx, in.Node, in.Msg, wsOutput{c: c, node: in.Node})
	if err == nil {
		return
	}
	frameType := FrameError
	if flow.IsFatal(err) {
		frameType = FrameFatal
		logger.ErrorKV("node failed", "node", in.Node, "error", err)
	}
	if werr := c.write(wsFrame{Type: frameType, Node: in.Node, Error: err.Error()}); werr != nil {
		logger.Debugf("[ws] write %s frame: %v", frameType, werr)
	}
}
