package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/projdash/internal/common"
	"github.com/dmitrijs2005/projdash/internal/imagex"
	"github.com/dmitrijs2005/projdash/internal/logging"
	"github.com/dmitrijs2005/projdash/internal/server/blobstore"
	"github.com/dmitrijs2005/projdash/internal/server/config"
	"github.com/dmitrijs2005/projdash/internal/server/models"
	"github.com/dmitrijs2005/projdash/internal/server/repositories/repomanager"
)

// presignTTL is the lifetime of presigned avatar URLs.
const presignTTL = 15 * time.Minute

// AvatarService stores profile pictures as normalised PNGs, inline in the
// avatar record or, when a blob store is configured, as S3 objects.
type AvatarService struct {
	repomanager repomanager.Manager
	blobs       blobstore.Store
	limits      imagex.Limits
	logger      logging.Logger
}

// NewAvatarService constructs an AvatarService. blobs may be nil, in which
// case pictures are kept inline.
func NewAvatarService(m repomanager.Manager, blobs blobstore.Store, cfg *config.Config, logger logging.Logger) *AvatarService {
	return &AvatarService{
		repomanager: m,
		blobs:       blobs,
		limits:      imagex.Limits{MaxBytes: cfg.AvatarMaxBytes, MaxDimension: cfg.AvatarMaxDimension},
		logger:      logger,
	}
}

// Upload replaces the user's profile picture.
func (s *AvatarService) Upload(ctx context.Context, userID string, data []byte) error {
	avatar, err := s.prepare(ctx, userID, data)
	if err != nil {
		return err
	}

	var previous string
	err = s.repomanager.WithTx(ctx, func(ctx context.Context, repos repomanager.Repositories) error {
		old, err := repos.Avatars().Get(ctx, userID)
		switch {
		case err == nil:
			previous = old.StorageKey
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}
		return repos.Avatars().Save(ctx, avatar)
	})
	if err != nil {
		s.discard(ctx, avatar)
		return fmt.Errorf("error saving avatar: %w", err)
	}

	if previous != "" && previous != avatar.StorageKey {
		s.discard(ctx, &models.Avatar{StorageKey: previous})
	}
	return nil
}

// Get returns the PNG bytes of the user's picture and their content type.
func (s *AvatarService) Get(ctx context.Context, userID string) ([]byte, string, error) {
	avatar, err := s.repomanager.Avatars().Get(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	if avatar.StorageKey == "" {
		return avatar.Data, avatar.ContentType, nil
	}
	if s.blobs == nil {
		return nil, "", fmt.Errorf("%w: avatar %s is in object storage but none is configured", common.ErrorInternal, avatar.StorageKey)
	}

	data, err := s.blobs.Get(ctx, avatar.StorageKey)
	if err != nil {
		return nil, "", err
	}
	return data, avatar.ContentType, nil
}

// PresignedURL returns a temporary download URL for an S3-backed picture.
// Inline pictures have no URL and yield common.ErrorNotFound.
func (s *AvatarService) PresignedURL(ctx context.Context, userID string) (string, error) {
	avatar, err := s.repomanager.Avatars().Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if avatar.StorageKey == "" || s.blobs == nil {
		return "", common.ErrorNotFound
	}
	return s.blobs.PresignGet(ctx, avatar.StorageKey, presignTTL)
}

// prepare normalises data and, with a blob store, uploads it. The returned
// record is not yet saved.
func (s *AvatarService) prepare(ctx context.Context, userID string, data []byte) (*models.Avatar, error) {
	normalized, err := imagex.NormalizePNG(data, s.limits)
	if err != nil {
		return nil, err
	}

	avatar := &models.Avatar{UserID: userID, ContentType: imagex.ContentTypePNG, UpdatedAt: now()}
	if s.blobs == nil {
		avatar.Data = normalized
		return avatar, nil
	}

	key := blobstore.AvatarKey(userID)
	if err := s.blobs.Put(ctx, key, normalized, imagex.ContentTypePNG); err != nil {
		return nil, err
	}
	avatar.StorageKey = key
	return avatar, nil
}

// discard removes an uploaded object that no record points to.
func (s *AvatarService) discard(ctx context.Context, avatar *models.Avatar) {
	if avatar == nil || avatar.StorageKey == "" || s.blobs == nil {
		return
	}
	if err := s.blobs.Delete(ctx, avatar.StorageKey); err != nil {
		s.logger.Warn(ctx, "orphaned avatar object", "key", avatar.StorageKey, "error", err)
	}
}
