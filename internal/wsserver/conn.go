package wsserver

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout   = 10 * time.Second
	pingInterval   = 60 * time.Second
	sendBufferSize = 32
)

var (
	errConnClosed     = errors.New("connection closed")
	errSendBufferFull = errors.New("send buffer full")
)

// conn adapts one websocket to broadcast.Conn. Writes go through a buffered
// channel drained by a single write pump so broadcasts never block a mutating
// request; a full buffer counts as a failed delivery.
type conn struct {
	socket *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
}

func newConn(socket *websocket.Conn) *conn {
	return &conn{
		socket: socket,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// Send enqueues one payload for delivery. It never retries and never waits
// for a slow consumer.
func (connection *conn) Send(payload []byte) error {
	select {
	case <-connection.done:
		return errConnClosed
	default:
	}
	select {
	case connection.send <- payload:
		return nil
	default:
		return errSendBufferFull
	}
}

// Close makes the write pump drain out and closes the socket. Safe to call
// more than once.
func (connection *conn) Close() error {
	connection.once.Do(func() {
		close(connection.done)
	})
	return nil
}

// writePump serializes all socket writes. It owns the socket's write side and
// closes the socket when it exits.
func (connection *conn) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer func() { _ = connection.socket.Close() }()

	for {
		select {
		case <-connection.done:
			_ = connection.socket.SetWriteDeadline(time.Now().Add(writeTimeout))
			_ = connection.socket.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case payload := <-connection.send:
			_ = connection.socket.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := connection.socket.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = connection.socket.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := connection.socket.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				return
			}
		}
	}
}
