package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"todo-app/db"
	"todo-app/internal/auth"
	"todo-app/internal/config"
	"todo-app/internal/logging"
	"todo-app/internal/todo"
	"todo-app/internal/user"
	"todo-app/internal/web"
	"todo-app/middleware"
)

func main() {
	bootLogger := logging.New(os.Stderr, logging.Options{Level: "info"})

	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger.Fatal("Failed to load configuration", "err", err)
	}

	logger := logging.New(os.Stderr, logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.SetDefault(logger)

	logger.Info("Starting todo server", "pid", os.Getpid(), "go", runtime.Version(), "os", runtime.GOOS, "arch", runtime.GOARCH)
	if cfg.GeneratedSecret {
		logger.Warn("SECRET_KEY is not set; using a random key, sessions will not survive a restart")
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer database.Close()
	logger.Info("Connected to database", "dialect", database.Dialect)

	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = db.InitializeSchema(initCtx, database)
	cancel()
	if err != nil {
		logger.Fatal("Failed to initialize database schema", "err", err)
	}

	repoFactory := db.NewRepositoryFactory(database)

	// Create database manager for serialized writes
	dbManager := db.NewDBManager(logger)
	defer dbManager.Stop()

	userService := user.NewUserService(repoFactory.NewUserRepository(), dbManager, logger)
	todoService := todo.NewTodoService(repoFactory.NewTodoRepository(), dbManager, logger)

	sessions := auth.NewSessionManager(cfg.SecretKey, cfg.SessionName, cfg.SessionSecure)
	mw := middleware.NewMiddleware(sessions, userService, logger)

	webHandler, err := web.NewWebHandler(userService, todo.NewTodoHandlers(todoService, logger), mw, sessions, database, logger)
	if err != nil {
		logger.Fatal("Failed to initialize web handlers", "err", err)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           webHandler.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server is starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	go checkReady(logger, cfg.Port)

	waitForShutdown(logger, server, serverErr)
}

// checkReady polls /healthz until the server answers or gives up after a
// few seconds.
func checkReady(logger *log.Logger, port string) {
	client := &http.Client{Timeout: time.Second}
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := client.Get("http://localhost:" + port + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				logger.Info("Server is ready and accepting connections", "port", port)
				return
			}
		}
		time.Sleep(250 * time.Millisecond)
	}
	logger.Warn("Startup check timed out; server may still be initializing", "port", port)
}

func waitForShutdown(logger *log.Logger, server *http.Server, serverErr <-chan error) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("Received shutdown signal", "signal", sig)
	case err, ok := <-serverErr:
		if ok {
			logger.Error("Server ListenAndServe error", "err", err)
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("Shutting down the server...")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "err", err)
		return
	}
	logger.Info("Server stopped")
}
