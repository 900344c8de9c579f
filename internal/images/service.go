// Package images implements the upload pipeline and the token-based
// retrieval model: tier resolution, thumbnail fan-out, token issuance and
// the ownership/expiry access guard.
package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"serwer-obrazow/internal/models"
	"serwer-obrazow/internal/storage"
	"serwer-obrazow/internal/thumbnailer"
	"serwer-obrazow/internal/token"
)

// Bounds for the caller-supplied expiring-link window, in seconds.
const (
	MinExpireSeconds = 300
	MaxExpireSeconds = 30000
)

// How many fresh tokens to try before giving up on a uniqueness conflict.
const maxTokenRetries = 10

// Principal identifies the requesting user for ownership checks.
type Principal struct {
	UserID  int64
	IsAdmin bool
}

type Service struct {
	repo     Repository
	blobs    storage.BlobStore
	deriver  *thumbnailer.Deriver
	newToken token.Generator
	baseURL  string
	workers  int
	now      func() time.Time
}

func NewService(repo Repository, blobs storage.BlobStore, deriver *thumbnailer.Deriver, gen token.Generator, baseURL string, workers int) *Service {
	if workers < 1 {
		workers = 1
	}
	return &Service{
		repo:     repo,
		blobs:    blobs,
		deriver:  deriver,
		newToken: gen,
		baseURL:  baseURL,
		workers:  workers,
		now:      time.Now,
	}
}

type ThumbnailResult struct {
	URL       string     `json:"url"`
	Size      string     `json:"size" example:"200x200"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type UploadResult struct {
	Thumbnails []ThumbnailResult `json:"thumbnails"`
	Image      *string           `json:"image,omitempty"`
}

// Upload validates the payload, resolves the uploader's tier and derives one
// thumbnail per configured size. A user without a bound tier still gets the
// original stored, just with no thumbnails and no original URL in the
// response. expireSeconds only applies when the tier allows expiring links.
func (s *Service) Upload(ctx context.Context, requester Principal, payload []byte, expireSeconds *int) (*UploadResult, error) {
	img, err := s.deriver.Decode(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	tier, err := s.repo.GetTierForUser(ctx, requester.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account tier: %w", err)
	}

	var expiresAt *time.Time
	if tier != nil && tier.AllowExpiringLinks && expireSeconds != nil {
		secs := *expireSeconds
		if secs < MinExpireSeconds || secs > MaxExpireSeconds {
			return nil, fmt.Errorf("%w: expire_seconds must be between %d and %d", ErrValidation, MinExpireSeconds, MaxExpireSeconds)
		}
		t := s.now().Add(time.Duration(secs) * time.Second)
		expiresAt = &t
	}

	// Derive every rendition up front so nothing is persisted when any size
	// fails. Sizes are independent, so they run on a bounded worker pool.
	var sizes []models.ThumbnailSize
	if tier != nil {
		sizes = tier.ThumbnailSizes
	}
	renditions, err := s.deriveAll(ctx, img, sizes)
	if err != nil {
		return nil, err
	}

	record, err := s.persistImage(ctx, requester.UserID, payload)
	if err != nil {
		return nil, err
	}

	result := &UploadResult{Thumbnails: make([]ThumbnailResult, 0, len(renditions))}
	for i, data := range renditions {
		thumb, err := s.persistThumbnail(ctx, record.ID, sizes[i], data, expiresAt)
		if err != nil {
			return nil, err
		}
		result.Thumbnails = append(result.Thumbnails, ThumbnailResult{
			URL:       thumb.URL,
			Size:      thumb.Size,
			ExpiresAt: thumb.ExpiresAt,
		})
	}

	if tier != nil && tier.IncludeOriginal {
		url := record.URL
		result.Image = &url
	}

	return result, nil
}

func (s *Service) deriveAll(ctx context.Context, img image.Image, sizes []models.ThumbnailSize) ([][]byte, error) {
	renditions := make([][]byte, len(sizes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, size := range sizes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := s.deriver.Derive(img, size)
			if err != nil {
				return fmt.Errorf("failed to derive %s thumbnail: %w", size.Label(), err)
			}
			renditions[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return renditions, nil
}

func (s *Service) persistImage(ctx context.Context, ownerID int64, payload []byte) (*models.UploadedImage, error) {
	storageKey := s.newToken()
	if err := s.blobs.Save(ctx, storageKey, bytes.NewReader(payload), int64(len(payload))); err != nil {
		return nil, fmt.Errorf("failed to store image payload: %w", err)
	}

	for i := 0; i < maxTokenRetries; i++ {
		tok := s.newToken()
		record, err := s.repo.CreateImage(ctx, CreateImageParams{
			OwnerID:    ownerID,
			StorageKey: storageKey,
			Token:      tok,
			URL:        s.imageURL(tok),
		})
		if err == nil {
			return record, nil
		}
		if !errors.Is(err, ErrDuplicateToken) {
			return nil, fmt.Errorf("failed to create image record: %w", err)
		}
	}

	return nil, fmt.Errorf("failed to generate a unique image token after %d attempts", maxTokenRetries)
}

func (s *Service) persistThumbnail(ctx context.Context, imageID int64, size models.ThumbnailSize, data []byte, expiresAt *time.Time) (*models.Thumbnail, error) {
	storageKey := s.newToken()
	if err := s.blobs.Save(ctx, storageKey, bytes.NewReader(data), int64(len(data))); err != nil {
		return nil, fmt.Errorf("failed to store thumbnail payload: %w", err)
	}

	for i := 0; i < maxTokenRetries; i++ {
		tok := s.newToken()
		thumb, err := s.repo.CreateThumbnail(ctx, CreateThumbnailParams{
			ImageID:    imageID,
			Size:       size.Label(),
			StorageKey: storageKey,
			Token:      tok,
			URL:        s.thumbnailURL(tok),
			ExpiresAt:  expiresAt,
		})
		if err == nil {
			return thumb, nil
		}
		if !errors.Is(err, ErrDuplicateToken) {
			return nil, fmt.Errorf("failed to create thumbnail record: %w", err)
		}
	}

	return nil, fmt.Errorf("failed to generate a unique thumbnail token after %d attempts", maxTokenRetries)
}

// RetrieveImage resolves an image token, enforces ownership and streams the
// stored payload. Originals never expire.
func (s *Service) RetrieveImage(ctx context.Context, requester Principal, tok string) (io.ReadCloser, string, error) {
	record, err := s.repo.GetImageByToken(ctx, tok)
	if err != nil {
		return nil, "", err
	}
	if record == nil {
		return nil, "", ErrNotFound
	}

	if err := s.guardOwnership(requester, record.OwnerID); err != nil {
		return nil, "", err
	}

	stream, err := s.blobs.Open(ctx, record.StorageKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image payload: %w", err)
	}
	return stream, thumbnailer.ContentType, nil
}

// RetrieveThumbnail is the thumbnail counterpart of RetrieveImage, with the
// additional expiry check. An expired token is denied even for the owner.
func (s *Service) RetrieveThumbnail(ctx context.Context, requester Principal, tok string) (io.ReadCloser, string, error) {
	thumb, ownerID, err := s.repo.GetThumbnailByToken(ctx, tok)
	if err != nil {
		return nil, "", err
	}
	if thumb == nil {
		return nil, "", ErrNotFound
	}

	if err := s.guardOwnership(requester, ownerID); err != nil {
		return nil, "", err
	}
	if thumb.Expired(s.now()) {
		return nil, "", ErrTokenExpired
	}

	stream, err := s.blobs.Open(ctx, thumb.StorageKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open thumbnail payload: %w", err)
	}
	return stream, thumbnailer.ContentType, nil
}

// guardOwnership is the object-level permission check: the resource owner and
// administrators pass, everyone else is denied without leaking existence.
func (s *Service) guardOwnership(requester Principal, ownerID int64) error {
	if requester.UserID == ownerID || requester.IsAdmin {
		return nil
	}
	return ErrPermissionDenied
}

type ThumbnailListItem struct {
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type ImageListItem struct {
	URL        string              `json:"url"`
	Thumbnails []ThumbnailListItem `json:"thumbnails"`
}

// ListUserImages returns every image the requester owns with its thumbnails.
func (s *Service) ListUserImages(ctx context.Context, requester Principal) ([]ImageListItem, error) {
	records, err := s.repo.ListImagesByOwner(ctx, requester.UserID)
	if err != nil {
		return nil, err
	}

	imageIDs := make([]int64, 0, len(records))
	for _, rec := range records {
		imageIDs = append(imageIDs, rec.ID)
	}

	grouped, err := s.repo.ListThumbnailsByImageIDs(ctx, imageIDs)
	if err != nil {
		return nil, err
	}

	items := make([]ImageListItem, 0, len(records))
	for _, rec := range records {
		item := ImageListItem{URL: rec.URL, Thumbnails: []ThumbnailListItem{}}
		for _, thumb := range grouped[rec.ID] {
			item.Thumbnails = append(item.Thumbnails, ThumbnailListItem{
				URL:       thumb.URL,
				ExpiresAt: thumb.ExpiresAt,
			})
		}
		items = append(items, item)
	}

	return items, nil
}

func (s *Service) ListTiers(ctx context.Context) ([]models.AccountTier, error) {
	return s.repo.ListTiers(ctx)
}

// CreateTier validates and persists a new account tier. Admin-only; the
// transport layer enforces the privilege check.
func (s *Service) CreateTier(ctx context.Context, arg CreateTierParams) (*models.AccountTier, error) {
	if arg.Name == "" {
		return nil, fmt.Errorf("%w: tier name cannot be empty", ErrValidation)
	}
	if len(arg.ThumbnailSizes) == 0 {
		return nil, fmt.Errorf("%w: tier must configure at least one thumbnail size", ErrValidation)
	}
	for _, size := range arg.ThumbnailSizes {
		if size.Width <= 0 || size.Height <= 0 {
			return nil, fmt.Errorf("%w: thumbnail size %q must have positive dimensions", ErrValidation, size.Label())
		}
	}

	tier, err := s.repo.CreateTier(ctx, arg)
	if err != nil {
		if errors.Is(err, ErrDuplicateTierName) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil, err
	}
	return tier, nil
}

func (s *Service) imageURL(tok string) string {
	return fmt.Sprintf("%s/api/v1/image/%s", s.baseURL, tok)
}

func (s *Service) thumbnailURL(tok string) string {
	return fmt.Sprintf("%s/api/v1/thumbnail/%s", s.baseURL, tok)
}
