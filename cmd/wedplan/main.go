package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/glebarez/sqlite"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"wedplan/internal/auth0"
	"wedplan/internal/broadcast"
	"wedplan/internal/finance"
	"wedplan/internal/guest"
	"wedplan/internal/restapi"
	"wedplan/internal/store/gormstore"
	"wedplan/internal/wsserver"
)

const (
	flagDatabaseURL       = "database-url"
	flagHTTPListenAddr    = "http-listen-addr"
	flagWSListenAddr      = "ws-listen-addr"
	flagAllowedOrigins    = "allowed-origins"
	flagAuth0Domain       = "auth0-domain"
	flagAuth0ClientID     = "auth0-client-id"
	flagAuth0ClientSecret = "auth0-client-secret"

	configKeyDatabaseURL       = "database_url"
	configKeyHTTPListenAddr    = "http_listen_addr"
	configKeyWSListenAddr      = "ws_listen_addr"
	configKeyAllowedOrigins    = "allowed_origins"
	configKeyAuth0Domain       = "auth0_domain"
	configKeyAuth0ClientID     = "auth0_client_id"
	configKeyAuth0ClientSecret = "auth0_client_secret"

	defaultDatabaseURL    = "sqlite://wedplan.db"
	defaultHTTPListenAddr = ":8080"
	defaultWSListenAddr   = ":8082"
	defaultOrigins        = "http://localhost:3000"
)

type runtimeConfig struct {
	DatabaseURL    string
	HTTPListenAddr string
	WSListenAddr   string
	AllowedOrigins string
	Auth0          auth0.Config
}

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "wedplan: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := &runtimeConfig{}
	cmd := &cobra.Command{
		Use:           "wedplan",
		Short:         "Wedding planner backend with a live change feed",
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg)
		},
	}

	cmd.Flags().String(flagDatabaseURL, defaultDatabaseURL, "PostgreSQL or SQLite connection string")
	cmd.Flags().String(flagHTTPListenAddr, defaultHTTPListenAddr, "REST listen address")
	cmd.Flags().String(flagWSListenAddr, defaultWSListenAddr, "websocket listen address")
	cmd.Flags().String(flagAllowedOrigins, defaultOrigins, "comma-delimited CORS origins")
	cmd.Flags().String(flagAuth0Domain, "", "Auth0 tenant domain")
	cmd.Flags().String(flagAuth0ClientID, "", "Auth0 management client id")
	cmd.Flags().String(flagAuth0ClientSecret, "", "Auth0 management client secret")

	return cmd
}

func loadConfig(cmd *cobra.Command, cfg *runtimeConfig) error {
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	bindings := []struct {
		configKey string
		envName   string
		flagName  string
	}{
		{configKeyDatabaseURL, "DATABASE_URL", flagDatabaseURL},
		{configKeyHTTPListenAddr, "HTTP_LISTEN_ADDR", flagHTTPListenAddr},
		{configKeyWSListenAddr, "WS_LISTEN_ADDR", flagWSListenAddr},
		{configKeyAllowedOrigins, "ALLOWED_ORIGINS", flagAllowedOrigins},
		{configKeyAuth0Domain, "AUTH0_DOMAIN", flagAuth0Domain},
		{configKeyAuth0ClientID, "AUTH0_CLIENT_ID", flagAuth0ClientID},
		{configKeyAuth0ClientSecret, "AUTH0_CLIENT_SECRET", flagAuth0ClientSecret},
	}
	for _, binding := range bindings {
		if err := viper.BindEnv(binding.configKey, binding.envName); err != nil {
			return err
		}
		if err := viper.BindPFlag(binding.configKey, cmd.Flags().Lookup(binding.flagName)); err != nil {
			return err
		}
	}

	cfg.DatabaseURL = viper.GetString(configKeyDatabaseURL)
	cfg.HTTPListenAddr = viper.GetString(configKeyHTTPListenAddr)
	cfg.WSListenAddr = viper.GetString(configKeyWSListenAddr)
	cfg.AllowedOrigins = viper.GetString(configKeyAllowedOrigins)
	cfg.Auth0 = auth0.Config{
		Domain:       viper.GetString(configKeyAuth0Domain),
		ClientID:     viper.GetString(configKeyAuth0ClientID),
		ClientSecret: viper.GetString(configKeyAuth0ClientSecret),
	}

	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database url is required")
	}
	if cfg.HTTPListenAddr == "" {
		return fmt.Errorf("http listen addr is required")
	}
	if cfg.WSListenAddr == "" {
		return fmt.Errorf("ws listen addr is required")
	}
	return nil
}

func runServer(ctx context.Context, cfg *runtimeConfig) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	gormDB, cleanup, err := openDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database open: %w", err)
	}
	defer func() { _ = cleanup() }()

	if err := gormstore.AutoMigrate(gormDB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	registry := broadcast.NewRegistry(logger)

	guestService, err := guest.NewService(gormstore.NewGuestStore(gormDB), registry)
	if err != nil {
		return fmt.Errorf("guest service init: %w", err)
	}
	financeService, err := finance.NewService(gormstore.NewFinanceStore(gormDB), registry)
	if err != nil {
		return fmt.Errorf("finance service init: %w", err)
	}

	var idpClient *auth0.Client
	if cfg.Auth0.Enabled() {
		idpClient, err = auth0.New(cfg.Auth0)
		if err != nil {
			return fmt.Errorf("auth0 client init: %w", err)
		}
	} else {
		logger.Info("auth0 pass-through disabled, credentials not configured")
	}

	restConfig := restapi.Config{
		ListenAddr:     cfg.HTTPListenAddr,
		AllowedOrigins: restapi.ParseAllowedOrigins(cfg.AllowedOrigins),
	}
	restHandler := restapi.NewHandler(logger, guestService, financeService, idpClient)

	wsConfig := wsserver.Config{ListenAddr: cfg.WSListenAddr}
	wsServer := wsserver.New(logger, registry, guestService, financeService)

	errCh := make(chan error, 2)
	go func() { errCh <- restapi.Run(ctx, restConfig, restHandler) }()
	go func() { errCh <- wsserver.Run(ctx, wsConfig, wsServer) }()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
		<-errCh
		<-errCh
		return nil
	case err := <-errCh:
		return err
	}
}

func openDatabase(ctx context.Context, dsn string) (*gorm.DB, func() error, error) {
	driver, sqlitePath, err := resolveDriver(dsn)
	if err != nil {
		return nil, nil, err
	}

	var db *gorm.DB
	switch driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(sqlitePath), &gorm.Config{})
	default:
		return nil, nil, fmt.Errorf("unsupported database scheme %q", driver)
	}
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() error { return sqlDB.Close() }
	return db.WithContext(ctx), cleanup, nil
}

func resolveDriver(dsn string) (string, string, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres", "", nil
	}
	if strings.HasPrefix(dsn, "sqlite://") {
		parsed, err := url.Parse(dsn)
		if err != nil {
			return "", "", fmt.Errorf("parse sqlite url: %w", err)
		}
		path := parsed.Path
		if path == "" {
			path = parsed.Host
		}
		if path == "" || path == "/" {
			path = "wedplan.db"
		}
		sqlitePath, err := normalizeSQLitePath(path)
		return "sqlite", sqlitePath, err
	}
	// Treat everything else as a direct sqlite path.
	sqlitePath, err := normalizeSQLitePath(dsn)
	return "sqlite", sqlitePath, err
}

func normalizeSQLitePath(path string) (string, error) {
	if path == ":memory:" {
		return path, nil
	}
	if strings.HasPrefix(path, "/") {
		return path, nil
	}
	absolute, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve sqlite path: %w", err)
	}
	return absolute, nil
}
