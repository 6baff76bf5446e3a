package health

import "context"

// DedupPinger checks the processed-post store.
type DedupPinger interface {
	Ping(ctx context.Context) error
}

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}
