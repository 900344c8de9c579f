package images

import (
	"context"
	"errors"
	"time"

	"serwer-obrazow/internal/models"
)

// ErrDuplicateToken is returned by repositories when an insert trips the
// unique constraint on a token column. The pipeline treats it as retriable
// and regenerates the token; it never reaches a client.
var ErrDuplicateToken = errors.New("token already in use")

var ErrDuplicateTierName = errors.New("an account tier with this name already exists")

type CreateImageParams struct {
	OwnerID    int64
	StorageKey string
	Token      string
	URL        string
}

type CreateThumbnailParams struct {
	ImageID    int64
	Size       string
	StorageKey string
	Token      string
	URL        string
	ExpiresAt  *time.Time
}

type CreateTierParams struct {
	Name               string
	ThumbnailSizes     []models.ThumbnailSize
	IncludeOriginal    bool
	AllowExpiringLinks bool
}

// ImageRepository persists original image records. Lookups return (nil, nil)
// when the token does not resolve.
type ImageRepository interface {
	CreateImage(ctx context.Context, arg CreateImageParams) (*models.UploadedImage, error)
	GetImageByToken(ctx context.Context, token string) (*models.UploadedImage, error)
	ListImagesByOwner(ctx context.Context, ownerID int64) ([]models.UploadedImage, error)
}

// ThumbnailRepository persists derived thumbnails. GetThumbnailByToken also
// reports the owning user of the parent image, since a thumbnail's ownership
// is defined by its image.
type ThumbnailRepository interface {
	CreateThumbnail(ctx context.Context, arg CreateThumbnailParams) (*models.Thumbnail, error)
	GetThumbnailByToken(ctx context.Context, token string) (*models.Thumbnail, int64, error)
	ListThumbnailsByImageIDs(ctx context.Context, imageIDs []int64) (map[int64][]models.Thumbnail, error)
}

// TierRepository resolves and manages account tiers. GetTierForUser returns
// (nil, nil) when no tier is bound to the user.
type TierRepository interface {
	GetTierForUser(ctx context.Context, userID int64) (*models.AccountTier, error)
	ListTiers(ctx context.Context) ([]models.AccountTier, error)
	CreateTier(ctx context.Context, arg CreateTierParams) (*models.AccountTier, error)
}

// Repository is the full persistence surface the service needs; implemented
// by database.Store and by the in-memory fakes in tests.
type Repository interface {
	ImageRepository
	ThumbnailRepository
	TierRepository
}
