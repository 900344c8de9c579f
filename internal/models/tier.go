package models

import "fmt"

// ThumbnailSize is a single bounding box from a tier's configured size list.
// The JSON keys match the seeded tier definitions in db/init.sql.
type ThumbnailSize struct {
	Width  int `json:"x"`
	Height int `json:"y"`
}

// Label renders the size the way it is stored on a thumbnail record, e.g. "200x200".
func (s ThumbnailSize) Label() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

type AccountTier struct {
	ID                 int64           `json:"id"`
	Name               string          `json:"name" example:"Premium"`
	ThumbnailSizes     []ThumbnailSize `json:"thumbnail_sizes"`
	IncludeOriginal    bool            `json:"include_original"`
	AllowExpiringLinks bool            `json:"allow_expiring_links"`
}
