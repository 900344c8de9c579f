package images

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"serwer-obrazow/internal/models"
)

// In-memory repository fake. Token uniqueness is enforced the way the real
// store does it, by refusing inserts with an already-used token.
type fakeRepo struct {
	mu          sync.Mutex
	nextID      int64
	images      []*models.UploadedImage
	thumbnails  []*models.Thumbnail
	tiers       []*models.AccountTier
	tiersByUser map[int64]*models.AccountTier
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{tiersByUser: make(map[int64]*models.AccountTier)}
}

func (r *fakeRepo) bindTier(userID int64, tier *models.AccountTier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tiersByUser[userID] = tier
}

func (r *fakeRepo) tokenInUse(token string) bool {
	for _, img := range r.images {
		if img.Token == token {
			return true
		}
	}
	for _, thumb := range r.thumbnails {
		if thumb.Token == token {
			return true
		}
	}
	return false
}

func (r *fakeRepo) CreateImage(ctx context.Context, arg CreateImageParams) (*models.UploadedImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tokenInUse(arg.Token) {
		return nil, ErrDuplicateToken
	}

	r.nextID++
	img := &models.UploadedImage{
		ID:         r.nextID,
		OwnerID:    arg.OwnerID,
		StorageKey: arg.StorageKey,
		Token:      arg.Token,
		URL:        arg.URL,
		CreatedAt:  time.Now(),
	}
	r.images = append(r.images, img)
	return img, nil
}

func (r *fakeRepo) GetImageByToken(ctx context.Context, token string) (*models.UploadedImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, img := range r.images {
		if img.Token == token {
			copied := *img
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) ListImagesByOwner(ctx context.Context, ownerID int64) ([]models.UploadedImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []models.UploadedImage{}
	for _, img := range r.images {
		if img.OwnerID == ownerID {
			result = append(result, *img)
		}
	}
	return result, nil
}

func (r *fakeRepo) CreateThumbnail(ctx context.Context, arg CreateThumbnailParams) (*models.Thumbnail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tokenInUse(arg.Token) {
		return nil, ErrDuplicateToken
	}

	r.nextID++
	thumb := &models.Thumbnail{
		ID:         r.nextID,
		ImageID:    arg.ImageID,
		Size:       arg.Size,
		StorageKey: arg.StorageKey,
		Token:      arg.Token,
		URL:        arg.URL,
		ExpiresAt:  arg.ExpiresAt,
		CreatedAt:  time.Now(),
	}
	r.thumbnails = append(r.thumbnails, thumb)
	return thumb, nil
}

func (r *fakeRepo) GetThumbnailByToken(ctx context.Context, token string) (*models.Thumbnail, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, thumb := range r.thumbnails {
		if thumb.Token == token {
			var ownerID int64
			for _, img := range r.images {
				if img.ID == thumb.ImageID {
					ownerID = img.OwnerID
				}
			}
			copied := *thumb
			return &copied, ownerID, nil
		}
	}
	return nil, 0, nil
}

func (r *fakeRepo) ListThumbnailsByImageIDs(ctx context.Context, imageIDs []int64) (map[int64][]models.Thumbnail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	grouped := make(map[int64][]models.Thumbnail)
	for _, id := range imageIDs {
		for _, thumb := range r.thumbnails {
			if thumb.ImageID == id {
				grouped[id] = append(grouped[id], *thumb)
			}
		}
	}
	return grouped, nil
}

func (r *fakeRepo) GetTierForUser(ctx context.Context, userID int64) (*models.AccountTier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tiersByUser[userID], nil
}

func (r *fakeRepo) ListTiers(ctx context.Context) ([]models.AccountTier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []models.AccountTier{}
	for _, tier := range r.tiers {
		result = append(result, *tier)
	}
	return result, nil
}

func (r *fakeRepo) CreateTier(ctx context.Context, arg CreateTierParams) (*models.AccountTier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tier := range r.tiers {
		if tier.Name == arg.Name {
			return nil, ErrDuplicateTierName
		}
	}
	tier := &models.AccountTier{
		ID:                 int64(len(r.tiers) + 1),
		Name:               arg.Name,
		ThumbnailSizes:     arg.ThumbnailSizes,
		IncludeOriginal:    arg.IncludeOriginal,
		AllowExpiringLinks: arg.AllowExpiringLinks,
	}
	r.tiers = append(r.tiers, tier)
	copied := *tier
	return &copied, nil
}

// In-memory blob store fake.
type fakeBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: make(map[string][]byte)}
}

func (s *fakeBlobStore) Save(ctx context.Context, key string, data io.Reader, size int64) error {
	payload, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = payload
	return nil
}

func (s *fakeBlobStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, ok := s.blobs[key]
	if !ok {
		return nil, fmt.Errorf("blob with key %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(payload)), nil
}

func (s *fakeBlobStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}
