// Package wsserver accepts persistent listener connections on a dedicated
// port, registers them for change notifications, and mirrors the REST
// mutation operations over JSON action envelopes.
package wsserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"wedplan/internal/broadcast"
	"wedplan/internal/finance"
	"wedplan/internal/guest"
)

// Config aggregates runtime settings for the websocket surface.
type Config struct {
	ListenAddr string
}

// Validate ensures the configuration contains sane values.
func (cfg *Config) Validate() error {
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		return fmt.Errorf("listen addr is required")
	}
	return nil
}

// Server upgrades inbound connections and dispatches their envelopes to the
// resource services.
type Server struct {
	logger   *zap.Logger
	registry *broadcast.Registry
	guests   *guest.Service
	finances *finance.Service
	upgrader websocket.Upgrader
}

// New wires a Server.
func New(logger *zap.Logger, registry *broadcast.Registry, guests *guest.Service, finances *finance.Service) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		logger:   logger,
		registry: registry,
		guests:   guests,
		finances: finances,
		upgrader: websocket.Upgrader{
			// Listeners are the first-party frontend served from another
			// origin, so the browser origin check stays open.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler returns the upgrade endpoint.
func (server *Server) Handler() http.Handler {
	return http.HandlerFunc(server.handleConnection)
}

func (server *Server) handleConnection(writer http.ResponseWriter, request *http.Request) {
	socket, err := server.upgrader.Upgrade(writer, request, nil)
	if err != nil {
		server.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	connection := newConn(socket)
	go connection.writePump()

	server.registry.Register(connection)
	server.logger.Info("listener connected", zap.String("remote_addr", request.RemoteAddr))

	server.readLoop(request.Context(), connection)

	server.registry.Unregister(connection)
	_ = connection.Close()
	server.logger.Info("listener disconnected", zap.String("remote_addr", request.RemoteAddr))
}

// readLoop processes inbound envelopes until the peer goes away. Malformed
// messages produce an error reply to the sender only; the connection stays
// registered.
func (server *Server) readLoop(ctx context.Context, connection *conn) {
	for {
		messageType, raw, err := connection.socket.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		reply := server.dispatch(ctx, raw)
		if sendErr := connection.Send(reply); sendErr != nil {
			return
		}
	}
}

// Run serves the websocket surface until the context is cancelled.
func Run(ctx context.Context, cfg Config, server *Server) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		server.logger.Info("websocket server listening", zap.String("addr", cfg.ListenAddr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
			server.logger.Warn("websocket server shutdown error", zap.Error(shutdownErr))
		}
		server.registry.CloseAll()
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
