package domain

import (
	"path"
	"strings"
	"time"
)

// Post is one submission pulled from the feed.
type Post struct {
	ID       string
	Fullname string // thing id used when replying, e.g. "t3_abc123"
	Title    string
	IsSelf   bool
	URL      string
	Created  time.Time
	// GalleryURLs holds the largest available image URL per gallery item,
	// in gallery order. Empty for non-gallery posts.
	GalleryURLs []string
}

// imageExtensions are the URL path suffixes recognized as direct images.
var imageExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif",
	".webp",
	".bmp", ".tiff", ".tif",
	".heic", ".heif",
}

// IsImageURL reports whether the URL path ends with a known image extension.
// The check is case-insensitive and ignores query strings.
func IsImageURL(rawURL string) bool {
	trimmed := rawURL
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	ext := strings.ToLower(path.Ext(trimmed))
	for _, e := range imageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ImageURLs returns all image locators a post yields: gallery items for
// gallery posts, the post URL itself for direct image link posts, nothing
// otherwise.
func (p Post) ImageURLs() []string {
	if len(p.GalleryURLs) > 0 {
		return p.GalleryURLs
	}
	if !p.IsSelf && IsImageURL(p.URL) {
		return []string{p.URL}
	}
	return nil
}
