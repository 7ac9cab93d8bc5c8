package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/projdash/internal/common"
	"github.com/dmitrijs2005/projdash/internal/cryptox"
	"github.com/dmitrijs2005/projdash/internal/server/auth"
	"github.com/dmitrijs2005/projdash/internal/server/config"
	"github.com/dmitrijs2005/projdash/internal/server/models"
	"github.com/dmitrijs2005/projdash/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// RegisterRequest carries the sign-up form. Picture is optional.
type RegisterRequest struct {
	Login       string
	Password    string
	DisplayName string
	Affiliation string
	TeamID      string
	Mode        string
	Picture     []byte
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	AccessToken string
	User        *models.User
}

// UserService provides registration, authentication and token issuing.
type UserService struct {
	repomanager                 repomanager.Manager
	avatars                     *AvatarService
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	kdf                         cryptox.Params
}

// NewUserService constructs a UserService. avatars handles an optional
// picture supplied at registration.
func NewUserService(m repomanager.Manager, avatars *AvatarService, cfg *config.Config) *UserService {
	return &UserService{
		repomanager:                 m,
		avatars:                     avatars,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		kdf:                         cryptox.DefaultParams,
	}
}

// Register creates a user. A taken login yields common.ErrorAlreadyExists and
// leaves the store unchanged; the user and the picture are saved atomically.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	login := strings.TrimSpace(req.Login)
	if login == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: login and password are required", common.ErrorInvalidInput)
	}

	mode := req.Mode
	if mode == "" {
		mode = models.ModeIndividual
	}
	if mode != models.ModeIndividual && mode != models.ModeTeam {
		return nil, fmt.Errorf("%w: mode must be %q or %q", common.ErrorInvalidInput, models.ModeIndividual, models.ModeTeam)
	}

	salt, hash := cryptox.HashPassword([]byte(req.Password), s.kdf)
	user := &models.User{
		ID:           uuid.NewString(),
		Login:        login,
		PasswordSalt: salt,
		PasswordHash: hash,
		DisplayName:  req.DisplayName,
		Affiliation:  req.Affiliation,
		TeamID:       req.TeamID,
		Mode:         mode,
		CreatedAt:    now(),
	}

	var avatar *models.Avatar
	if len(req.Picture) > 0 {
		var err error
		if avatar, err = s.avatars.prepare(ctx, user.ID, req.Picture); err != nil {
			return nil, err
		}
	}

	err := s.repomanager.WithTx(ctx, func(ctx context.Context, repos repomanager.Repositories) error {
		if _, err := repos.Users().Create(ctx, user); err != nil {
			return err
		}
		if avatar != nil {
			return repos.Avatars().Save(ctx, avatar)
		}
		return nil
	})
	if err != nil {
		s.avatars.discard(ctx, avatar)
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Authenticate returns the stored user when password matches. Unknown logins
// and wrong passwords both yield common.ErrorUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	user, err := s.repomanager.Users().GetUserByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// burn the same time as a real check
			cryptox.CheckPassword([]byte(password), dummySalt, dummyHash, s.kdf)
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	if !cryptox.CheckPassword([]byte(password), user.PasswordSalt, user.PasswordHash, s.kdf) {
		return nil, common.ErrorUnauthorized
	}
	return user, nil
}

// Login authenticates and issues an access token.
func (s *UserService) Login(ctx context.Context, login, password string) (*LoginResult, error) {
	user, err := s.Authenticate(ctx, login, password)
	if err != nil {
		return nil, err
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return &LoginResult{AccessToken: token, User: user}, nil
}

// GetByID returns the user with id or common.ErrorNotFound.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repomanager.Users().GetByID(ctx, id)
}

// GetByLogin returns the user with login or common.ErrorNotFound.
func (s *UserService) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	return s.repomanager.Users().GetUserByLogin(ctx, strings.TrimSpace(login))
}

var (
	dummySalt = common.GenerateRandByteArray(cryptox.SaltSize)
	dummyHash = common.GenerateRandByteArray(32)
)
