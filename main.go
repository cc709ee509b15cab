package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rahulraut1220/LegalEase/config"
	"github.com/rahulraut1220/LegalEase/handler"
	"github.com/rahulraut1220/LegalEase/metrics"
	"github.com/rahulraut1220/LegalEase/middleware"
	"github.com/rahulraut1220/LegalEase/model"
	"github.com/rahulraut1220/LegalEase/pkg/logger"
	"github.com/rahulraut1220/LegalEase/service"
	"github.com/rahulraut1220/LegalEase/service/mongostore"
	"github.com/rahulraut1220/LegalEase/service/sqlstore"
	"github.com/rahulraut1220/LegalEase/signaling"
	"github.com/urfave/cli/v3"
)

func main() {
	root := &cli.Command{
		Name:  "legalease",
		Usage: "Legal contract workflow and call signaling server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to the YAML configuration file",
				Sources: cli.EnvVars("LEGALEASE_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			seedCommand(),
			userCommand(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runServer(ctx, cfg)
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig reads the file named by --config and initializes the logger
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	path := cmd.String("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	slog.Info("configuration loaded successfully", "path", path, "store", cfg.Store.Driver)
	return cfg, nil
}

// openStore connects the configured backend. The sqlite store is migrated on open.
func openStore(ctx context.Context, cfg *config.StoreConfig) (service.Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlstore.OpenAndMigrate(ctx, cfg.SQLitePath)
	case config.DriverMongo:
		return mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case config.DriverMemory:
		return service.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP and WebSocket server",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Usage: "override server.port"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if port := cmd.Int("port"); port > 0 {
				cfg.Server.Port = int(port)
			}
			return runServer(ctx, cfg)
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply database migrations and exit",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			switch cfg.Store.Driver {
			case config.DriverSQLite:
				db, err := sqlstore.Open(cfg.Store.SQLitePath)
				if err != nil {
					return err
				}
				store := sqlstore.New(db)
				defer store.Close()
				if err := sqlstore.RunMigrations(ctx, db); err != nil {
					return err
				}
			default:
				// mongo indexes are created on connect; memory has no schema
				store, err := openStore(ctx, &cfg.Store)
				if err != nil {
					return err
				}
				defer store.Close()
			}

			slog.Info("migrations applied", "store", cfg.Store.Driver)
			return nil
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Replace all contract types with the built-in catalogue",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store, err := openStore(ctx, &cfg.Store)
			if err != nil {
				return err
			}
			defer store.Close()

			types, err := service.SeedContractTypes(ctx, store)
			if err != nil {
				return err
			}
			for _, ct := range types {
				fmt.Printf("%s\t%s\n", ct.ID, ct.Name)
			}
			slog.Info("contract types seeded", "count", len(types))
			return nil
		},
	}
}

func userCommand() *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Manage accounts",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create an account of any role, including admin",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
					&cli.StringFlag{Name: "role", Value: string(model.RoleClient), Usage: "client, lawyer or admin"},
					&cli.StringFlag{Name: "specialization", Usage: "required for lawyers"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					store, err := openStore(ctx, &cfg.Store)
					if err != nil {
						return err
					}
					defer store.Close()

					role := model.Role(cmd.String("role"))
					if role == model.RoleLawyer && cmd.String("specialization") == "" {
						return errors.New("--specialization is required for lawyers")
					}

					auth := service.NewAuthService(store, middleware.TokenIssuer(&cfg.Auth))
					u, created, err := auth.EnsureUser(ctx, service.RegisterInput{
						Name:           cmd.String("name"),
						Email:          cmd.String("email"),
						Password:       cmd.String("password"),
						Role:           role,
						Specialization: cmd.String("specialization"),
					})
					if err != nil {
						return err
					}
					if !created {
						return fmt.Errorf("user %s already exists", u.Email)
					}
					fmt.Printf("%s\t%s\t%s\n", u.ID, u.Email, u.Role)
					return nil
				},
			},
		},
	}
}

func runServer(ctx context.Context, cfg *config.Config) error {
	store, err := openStore(ctx, &cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	if err := ensureContractTypes(ctx, store); err != nil {
		return err
	}

	m := metrics.New()

	// Initialize services
	auth := service.NewAuthService(store, middleware.TokenIssuer(&cfg.Auth))
	if err := bootstrapUsers(ctx, auth, cfg.Users); err != nil {
		return err
	}
	contracts := service.NewContractService(store, m)

	var documents handler.Documents
	if cfg.Minio.Enabled() {
		minioSvc, err := service.NewMinioService(&cfg.Minio)
		if err != nil {
			return err
		}
		if err := minioSvc.EnsureBucket(ctx); err != nil {
			return err
		}
		documents = service.NewDocumentService(contracts, minioSvc, service.NewPDFGenerator())
		slog.Info("contract documents enabled", "endpoint", cfg.Minio.Endpoint, "bucket", cfg.Minio.Bucket)
	} else {
		slog.Warn("object storage not configured, contract documents disabled")
	}

	hub := signaling.NewHub(signaling.HubConfig{
		MaxMessageBytes:   cfg.Relay.MaxMessageBytes,
		MessagesPerSecond: cfg.Relay.MessagesPerSecond,
		SendQueue:         cfg.Relay.SendQueue,
		AllowedOrigins:    cfg.Relay.AllowedOrigins,
	})
	relay := signaling.NewRelay(hub, signaling.NewMemoryDirectory(), cfg.Relay.MaxRoomSize, m)

	// Initialize handlers
	contractHandler := handler.NewContractHandler(contracts, documents)
	handlers := handler.Handlers{
		Auth:      handler.NewAuthHandler(auth),
		Contracts: contractHandler,
		Catalog:   handler.NewCatalogHandler(contracts, store),
	}

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(m.Middleware())
	router.Use(middleware.RequestLogger("/health", "/metrics"))
	router.Use(middleware.CORS(cfg.Server.FrontendURL))
	router.Use(middleware.RateLimit(cfg.RateLimit.Requests, time.Duration(cfg.RateLimit.WindowSeconds)*time.Second))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"peers":     hub.Len(),
		})
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))
	router.GET("/ws", middleware.WebSocketAuth(&cfg.Auth, cfg.Relay.RequireAuth), gin.WrapF(hub.HandleWS(relay)))

	handler.Register(router.Group("/api"), &cfg.Auth, handlers)

	// Create server. No write timeout, WebSocket connections are long lived.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		errCh <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server...", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Hijacked WebSocket connections are not tracked by Shutdown.
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	contractHandler.Wait()

	slog.Info("server exited gracefully")
	return nil
}

// ensureContractTypes seeds the catalogue into an empty store
func ensureContractTypes(ctx context.Context, store service.Store) error {
	types, err := store.ListContractTypes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list contract types: %w", err)
	}
	if len(types) > 0 {
		return nil
	}
	seeded, err := service.SeedContractTypes(ctx, store)
	if err != nil {
		return err
	}
	slog.Info("contract types seeded", "count", len(seeded))
	return nil
}

func bootstrapUsers(ctx context.Context, auth *service.AuthService, users []config.User) error {
	for _, u := range users {
		if u.Password == "" {
			slog.Warn("bootstrap user has no password, skipped", "email", u.Email, "role", u.Role)
			continue
		}
		user, created, err := auth.EnsureUser(ctx, service.RegisterInput{
			Name:     u.Name,
			Email:    u.Email,
			Password: u.Password,
			Role:     model.Role(u.Role),
		})
		if err != nil {
			return fmt.Errorf("failed to bootstrap user %s: %w", u.Email, err)
		}
		if created {
			slog.Info("bootstrap user created", "email", user.Email, "role", user.Role)
		}
	}
	return nil
}
