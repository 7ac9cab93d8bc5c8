// Package httpapi exposes the dashboard over a JSON REST API built on gin.
package httpapi

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/projdash/internal/logging"
	"github.com/dmitrijs2005/projdash/internal/server/models"
	"github.com/dmitrijs2005/projdash/internal/server/services"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

type UserService interface {
	Register(ctx context.Context, req services.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, login, password string) (*services.LoginResult, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type ProjectService interface {
	Create(ctx context.Context, userID string, f services.ProjectFields) (*models.Project, error)
	List(ctx context.Context, userID string) ([]models.Project, error)
	Update(ctx context.Context, userID, projectID string, patch models.ProjectPatch) error
	Delete(ctx context.Context, userID, projectID string) error
	ExportPDF(ctx context.Context, userID string, w io.Writer) error
}

type AvatarService interface {
	Upload(ctx context.Context, userID string, data []byte) error
	Get(ctx context.Context, userID string) ([]byte, string, error)
	PresignedURL(ctx context.Context, userID string) (string, error)
}

type Server struct {
	address        string
	logger         logging.Logger
	users          UserService
	projects       ProjectService
	avatars        AvatarService
	jwtSecret      []byte
	maxUploadBytes int64
}

// NewServer builds the API server. maxUploadBytes caps picture uploads;
// anything longer is rejected before decoding.
func NewServer(address string, l logging.Logger, us UserService, ps ProjectService, as AvatarService, secretKey string, maxUploadBytes int64) *Server {
	return &Server{
		address:        address,
		logger:         l.With("module", "http_server"),
		users:          us,
		projects:       ps,
		avatars:        as,
		jwtSecret:      []byte(secretKey),
		maxUploadBytes: maxUploadBytes,
	}
}

// Handler returns the gin engine with every route registered.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	api := r.Group("/api")
	api.GET("/health", s.health)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", s.register)
	authGroup.POST("/login", s.login)
	authGroup.GET("/me", s.requireToken(), s.me)

	profile := api.Group("/profile", s.requireToken())
	profile.PUT("/picture", s.uploadPicture)
	profile.GET("/picture", s.getPicture)
	profile.GET("/picture/url", s.pictureURL)

	projects := api.Group("/projects", s.requireToken())
	projects.GET("", s.listProjects)
	projects.POST("", s.createProject)
	projects.GET("/export.pdf", s.exportPDF)
	projects.PATCH("/:project_id", s.updateProject)
	projects.DELETE("/:project_id", s.deleteProject)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
