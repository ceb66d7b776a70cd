// Package broadcast keeps the set of open listener connections and fans
// change notifications out to them after successful mutations.
package broadcast

import (
	"sync"

	"go.uber.org/zap"
)

// Notifier is the narrow dependency injected into the resource services.
// A nil Notifier is a valid no-op wiring.
type Notifier interface {
	Notify(notification Notification)
}

// Conn is one open duplex channel to an external listener. Send must not
// block indefinitely; a send failure marks the connection dead.
type Conn interface {
	Send(payload []byte) error
	Close() error
}

// Registry is the process-wide set of live connections. Membership changes
// and fan-outs may race freely; the registry serializes them internally.
type Registry struct {
	logger *zap.Logger

	mu    sync.Mutex
	conns map[Conn]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		logger: logger,
		conns:  make(map[Conn]struct{}),
	}
}

// Register adds a connection. Registering an already present connection is a
// no-op. A connection registered while a fan-out is in flight receives only
// subsequent notifications.
func (registry *Registry) Register(conn Conn) {
	if conn == nil {
		return
	}
	registry.mu.Lock()
	registry.conns[conn] = struct{}{}
	registry.mu.Unlock()
}

// Unregister removes a connection. Removing an absent connection is a no-op.
func (registry *Registry) Unregister(conn Conn) {
	registry.mu.Lock()
	delete(registry.conns, conn)
	registry.mu.Unlock()
}

// Len reports the current number of registered connections.
func (registry *Registry) Len() int {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	return len(registry.conns)
}

// Notify serializes the notification once and attempts a single best-effort
// delivery to every connection registered at call time. A failed send evicts
// and closes that connection; delivery to the remaining connections continues.
func (registry *Registry) Notify(notification Notification) {
	payload, err := notification.MarshalPayload()
	if err != nil {
		registry.logger.Error("notification marshal failed",
			zap.String("resource", string(notification.Resource)),
			zap.String("action", string(notification.Action)),
			zap.Error(err))
		return
	}

	registry.mu.Lock()
	snapshot := make([]Conn, 0, len(registry.conns))
	for conn := range registry.conns {
		snapshot = append(snapshot, conn)
	}
	registry.mu.Unlock()

	for _, conn := range snapshot {
		if sendErr := conn.Send(payload); sendErr != nil {
			registry.logger.Warn("listener send failed, dropping connection",
				zap.String("resource", string(notification.Resource)),
				zap.String("action", string(notification.Action)),
				zap.Error(sendErr))
			registry.Unregister(conn)
			_ = conn.Close()
		}
	}
}

// CloseAll evicts and closes every connection. Called on shutdown.
func (registry *Registry) CloseAll() {
	registry.mu.Lock()
	snapshot := make([]Conn, 0, len(registry.conns))
	for conn := range registry.conns {
		snapshot = append(snapshot, conn)
	}
	registry.conns = make(map[Conn]struct{})
	registry.mu.Unlock()

	for _, conn := range snapshot {
		_ = conn.Close()
	}
}
