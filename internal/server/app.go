// Package server initializes and runs the dashboard server.
// It opens the configured storage backend, applies migrations, optionally
// connects the S3 picture store and serves the HTTP API until a shutdown
// signal arrives.
package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/projdash/internal/logging"
	"github.com/dmitrijs2005/projdash/internal/server/blobstore"
	"github.com/dmitrijs2005/projdash/internal/server/config"
	"github.com/dmitrijs2005/projdash/internal/server/httpapi"
	"github.com/dmitrijs2005/projdash/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/projdash/internal/server/services"
	"github.com/gin-gonic/gin"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	logCloser      io.Closer
	repomanager    repomanager.Manager
	userService    *services.UserService
	projectService *services.ProjectService
	avatarService  *services.AvatarService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger, logCloser := logging.New(logging.Options{Level: c.LogLevel, File: c.LogFile})

	rm, err := repomanager.Open(ctx, c)
	if err != nil {
		_ = logCloser.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		_ = logCloser.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	var blobs blobstore.Store
	if c.S3Bucket != "" {
		s3, err := blobstore.NewS3Store(ctx, c)
		if err != nil {
			_ = rm.Close()
			_ = logCloser.Close()
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			_ = rm.Close()
			_ = logCloser.Close()
			return nil, fmt.Errorf("s3 bucket error: %w", err)
		}
		blobs = s3
	}

	as := services.NewAvatarService(rm, blobs, c, logger.With("module", "avatars"))
	us := services.NewUserService(rm, as, c)
	ps := services.NewProjectService(rm, c)

	logger.Info(ctx, "Storage ready", "backend", c.StorageBackend, "s3", c.S3Bucket != "")

	return &App{
		config:         c,
		logger:         logger,
		logCloser:      logCloser,
		repomanager:    rm,
		userService:    us,
		projectService: ps,
		avatarService:  as,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.logger,
		app.userService, app.projectService, app.avatarService,
		app.config.SecretKey, app.config.AvatarMaxBytes)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// releases the storage backend.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	if logging.ParseLevel(app.config.LogLevel) != slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.Close()
}

// Close releases the storage backend and the log file.
func (app *App) Close() {
	if err := app.repomanager.Close(); err != nil {
		app.logger.Error(context.Background(), "close storage", "error", err)
	}
	app.logger.Info(context.Background(), "Stopped")
	_ = app.logCloser.Close()
}
