package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// QueueDepther reports how many extraction tasks are waiting.
type QueueDepther interface {
	Depth(ctx context.Context) (int64, error)
}
