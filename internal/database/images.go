package database

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"serwer-obrazow/internal/images"
	"serwer-obrazow/internal/models"
)

func (q *Queries) CreateImage(ctx context.Context, arg images.CreateImageParams) (*models.UploadedImage, error) {
	query := `
		INSERT INTO images (owner_id, storage_key, token, url, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, owner_id, storage_key, token, url, created_at
	`
	row := q.db.QueryRow(ctx, query, arg.OwnerID, arg.StorageKey, arg.Token, arg.URL, time.Now())

	var img models.UploadedImage
	err := row.Scan(
		&img.ID,
		&img.OwnerID,
		&img.StorageKey,
		&img.Token,
		&img.URL,
		&img.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, images.ErrDuplicateToken
		}
		return nil, err
	}

	return &img, nil
}

func (q *Queries) GetImageByToken(ctx context.Context, token string) (*models.UploadedImage, error) {
	query := `
		SELECT id, owner_id, storage_key, token, url, created_at
		FROM images
		WHERE token = $1
	`
	var img models.UploadedImage
	err := q.db.QueryRow(ctx, query, token).Scan(
		&img.ID, &img.OwnerID, &img.StorageKey, &img.Token, &img.URL, &img.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &img, nil
}

func (q *Queries) ListImagesByOwner(ctx context.Context, ownerID int64) ([]models.UploadedImage, error) {
	query := `
		SELECT id, owner_id, storage_key, token, url, created_at
		FROM images
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := q.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var imgs []models.UploadedImage
	for rows.Next() {
		var img models.UploadedImage
		err := rows.Scan(
			&img.ID, &img.OwnerID, &img.StorageKey, &img.Token, &img.URL, &img.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		imgs = append(imgs, img)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if imgs == nil {
		return []models.UploadedImage{}, nil
	}

	return imgs, nil
}

func (q *Queries) CreateThumbnail(ctx context.Context, arg images.CreateThumbnailParams) (*models.Thumbnail, error) {
	query := `
		INSERT INTO thumbnails (image_id, size, storage_key, token, url, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, image_id, size, storage_key, token, url, expires_at, created_at
	`
	row := q.db.QueryRow(ctx, query, arg.ImageID, arg.Size, arg.StorageKey, arg.Token, arg.URL, arg.ExpiresAt, time.Now())

	var thumb models.Thumbnail
	err := row.Scan(
		&thumb.ID,
		&thumb.ImageID,
		&thumb.Size,
		&thumb.StorageKey,
		&thumb.Token,
		&thumb.URL,
		&thumb.ExpiresAt,
		&thumb.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, images.ErrDuplicateToken
		}
		return nil, err
	}

	return &thumb, nil
}

// GetThumbnailByToken also returns the owning user of the parent image;
// thumbnail ownership follows the image it was derived from.
func (q *Queries) GetThumbnailByToken(ctx context.Context, token string) (*models.Thumbnail, int64, error) {
	query := `
		SELECT t.id, t.image_id, t.size, t.storage_key, t.token, t.url, t.expires_at, t.created_at, i.owner_id
		FROM thumbnails t
		JOIN images i ON t.image_id = i.id
		WHERE t.token = $1
	`
	var thumb models.Thumbnail
	var ownerID int64
	err := q.db.QueryRow(ctx, query, token).Scan(
		&thumb.ID, &thumb.ImageID, &thumb.Size, &thumb.StorageKey,
		&thumb.Token, &thumb.URL, &thumb.ExpiresAt, &thumb.CreatedAt,
		&ownerID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, nil
		}
		return nil, 0, err
	}
	return &thumb, ownerID, nil
}

// ListThumbnailsByImageIDs fetches thumbnails for a batch of images in one
// query and groups them by image, for the user-images listing.
func (q *Queries) ListThumbnailsByImageIDs(ctx context.Context, imageIDs []int64) (map[int64][]models.Thumbnail, error) {
	grouped := make(map[int64][]models.Thumbnail)
	if len(imageIDs) == 0 {
		return grouped, nil
	}

	query := `
		SELECT id, image_id, size, storage_key, token, url, expires_at, created_at
		FROM thumbnails
		WHERE image_id = ANY($1)
		ORDER BY image_id, id
	`
	rows, err := q.db.Query(ctx, query, imageIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var thumb models.Thumbnail
		err := rows.Scan(
			&thumb.ID, &thumb.ImageID, &thumb.Size, &thumb.StorageKey,
			&thumb.Token, &thumb.URL, &thumb.ExpiresAt, &thumb.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		grouped[thumb.ImageID] = append(grouped[thumb.ImageID], thumb)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return grouped, nil
}
