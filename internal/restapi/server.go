// Package restapi exposes the guest and finance resources over HTTP.
package restapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wedplan/internal/auth0"
	"wedplan/internal/finance"
	"wedplan/internal/guest"
)

// Handler holds the dependencies shared by all REST endpoints. The idp client
// may be nil when the Auth0 pass-through is not configured.
type Handler struct {
	logger   *zap.Logger
	guests   *guest.Service
	finances *finance.Service
	idp      *auth0.Client
}

// NewHandler wires a Handler.
func NewHandler(logger *zap.Logger, guests *guest.Service, finances *finance.Service, idp *auth0.Client) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		logger:   logger,
		guests:   guests,
		finances: finances,
		idp:      idp,
	}
}

// NewRouter builds the gin engine with all public routes mounted under /api.
func NewRouter(handler *Handler, allowedOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Origin", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	api.GET("/guest", handler.handleListGuests)
	api.GET("/guest/:id", handler.handleGetGuest)
	api.POST("/guest", handler.handleCreateGuest)
	api.PUT("/guest/:id", handler.handleUpdateGuest)
	api.DELETE("/guest/:id", handler.handleDeleteGuest)

	api.GET("/finance", handler.handleListFinances)
	api.GET("/finance/totals", handler.handleFinanceTotals)
	api.GET("/finance/:id", handler.handleGetFinance)
	api.POST("/finance", handler.handleCreateFinance)
	api.PUT("/finance/:id", handler.handleUpdateFinance)
	api.DELETE("/finance/:id", handler.handleDeleteFinance)

	api.GET("/auth0/idp-token/:userId", handler.handleIdentityProviderToken)

	return router
}

// Run serves the REST surface until the context is cancelled.
func Run(ctx context.Context, cfg Config, handler *Handler) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	router := NewRouter(handler, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		handler.logger.Info("rest api listening", zap.String("addr", cfg.ListenAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			handler.logger.Warn("rest api shutdown error", zap.Error(shutdownErr))
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
