package models

import "time"

// UploadedImage is the original uploaded file. The token is the only public
// addressing mechanism; the numeric ID never leaves the database layer.
type UploadedImage struct {
	ID         int64     `json:"-"`
	OwnerID    int64     `json:"-"`
	StorageKey string    `json:"-"`
	Token      string    `json:"token"`
	URL        string    `json:"url"`
	CreatedAt  time.Time `json:"created_at"`
}

type Thumbnail struct {
	ID         int64      `json:"-"`
	ImageID    int64      `json:"-"`
	Size       string     `json:"size" example:"200x200"`
	StorageKey string     `json:"-"`
	Token      string     `json:"token"`
	URL        string     `json:"url"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Expired reports whether the thumbnail's access window has closed.
// Thumbnails without an expiry never expire.
func (t *Thumbnail) Expired(now time.Time) bool {
	if t.ExpiresAt == nil {
		return false
	}
	return t.ExpiresAt.Before(now)
}
