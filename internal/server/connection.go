package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/cardwar/internal/game"
)

// Connection represents a WebSocket client and the game it is playing
type Connection struct {
	conn        *websocket.Conn
	send        chan *Message
	engine      *game.Engine
	unsubscribe func()
	logger      *log.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	closeOnce   sync.Once
}

// NewConnection wraps conn and subscribes it to engine events
func NewConnection(conn *websocket.Conn, logger *log.Logger, engine *game.Engine) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Connection{
		conn:   conn,
		send:   make(chan *Message, 256),
		engine: engine,
		logger: logger.WithPrefix("conn"),
		ctx:    ctx,
		cancel: cancel,
	}
	c.unsubscribe = engine.Events().Subscribe(game.SubscriberFunc(c.forwardEvent))
	return c
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close stops the engine and closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.unsubscribe()
		c.engine.Close()
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// Done is closed once the connection has shut down
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *Message) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

// ErrConnectionClosed is returned when sending on a connection that has shut down
var ErrConnectionClosed = errors.New("connection closed")

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError("", ErrCodeInvalidMessage, "Malformed message")
			continue
		}
		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	switch msg.Type {
	case MessageTypeNewGame:
		var data NewGameData
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				c.sendError(msg.RequestID, ErrCodeInvalidMessage, "Failed to parse new game data")
				return
			}
		}
		if data.WinThreshold < 0 {
			c.sendError(msg.RequestID, ErrCodeInvalidMessage, "winThreshold must not be negative")
			return
		}
		id := c.engine.StartNewGame(data.WinThreshold)
		c.logger.Info("New game", "gameId", id)

	case MessageTypePlayRound:
		c.handlePlayRound(msg.RequestID)

	case MessageTypeGetState:
		c.sendState(msg.RequestID)

	default:
		c.sendError(msg.RequestID, ErrCodeInvalidMessage, "Unknown message type: "+string(msg.Type))
	}
}

func (c *Connection) handlePlayRound(requestID string) {
	round, err := c.engine.PlayRound()
	switch {
	case errors.Is(err, game.ErrNoActiveGame):
		c.sendError(requestID, ErrCodeNoActiveGame, err.Error())
	case errors.Is(err, game.ErrRoundInProgress):
		c.sendError(requestID, ErrCodeRoundInProgress, err.Error())
	case err != nil:
		c.sendError(requestID, ErrCodeInvalidMessage, err.Error())
	default:
		c.logger.Debug("Round started", "round", round)
	}
}

// sendState replies with a snapshot, echoing the request ID
func (c *Connection) sendState(requestID string) {
	msg, err := NewMessage(MessageTypeState, StateDataFromSnapshot(c.engine.Snapshot()))
	if err != nil {
		c.logger.Error("Failed to create state message", "error", err)
		return
	}
	msg.RequestID = requestID
	_ = c.SendMessage(msg)
}

// forwardEvent relays engine events to the client. It runs on the engine's
// publishing goroutine.
func (c *Connection) forwardEvent(event game.GameEvent) {
	msg, err := MessageFromEvent(event)
	if err != nil {
		c.logger.Error("Failed to convert event", "type", event.EventType(), "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

// sendError sends an error message to the client. requestID is echoed when
// the failing request carried one.
func (c *Connection) sendError(requestID, code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}
	errorMsg.RequestID = requestID

	_ = c.SendMessage(errorMsg)
}
