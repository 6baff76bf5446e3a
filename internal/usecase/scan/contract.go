package scan

import (
	"context"

	"github.com/skytagbot/skytag/internal/domain"
)

// FeedSource yields the newest posts of a named feed, in feed order.
type FeedSource interface {
	ListNew(ctx context.Context, subreddit string, limit int) ([]domain.Post, error)
}

// TextExtractor turns one image locator into a single OCR text blob.
type TextExtractor interface {
	ExtractText(ctx context.Context, imageURL string) (string, error)
}

// FlightLookup enriches a registration with flight status. On failure the
// returned result still identifies the registration.
type FlightLookup interface {
	Enrich(ctx context.Context, registration string) (domain.EnrichmentResult, error)
}

// Publisher submits the composite reply on a post and returns its permalink.
type Publisher interface {
	Reply(ctx context.Context, fullname, markdown string) (string, error)
}

// DedupStore gatekeeps post processing. Membership is monotonic.
type DedupStore interface {
	Contains(ctx context.Context, id string) (bool, error)
	Record(ctx context.Context, id string) error
}
