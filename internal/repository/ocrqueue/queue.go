// Package ocrqueue feeds the text-extraction worker pool through a Redis
// list. Producers push tasks; workers pop from the other side.
package ocrqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultKey is the Redis list the extraction workers consume.
const DefaultKey = "queue:ocr"

// store is the consumer interface for queue operations (ISP).
type store interface {
	LPush(ctx context.Context, key string, values ...string) error
	LLen(ctx context.Context, key string) (int64, error)
}

// Task is the wire form of one queued extraction request.
type Task struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	DocumentID string    `json:"documentId"`
	DatasetID  string    `json:"datasetId"`
	Priority   string    `json:"priority"`
	QueuedAt   time.Time `json:"queuedAt"`
}

// Queue implements usecase/dataset.OCRQueue.
type Queue struct {
	store store
	key   string
	now   func() time.Time
}

// New creates a queue producer on the given list key. An empty key falls
// back to DefaultKey.
func New(s store, key string) *Queue {
	if key == "" {
		key = DefaultKey
	}
	return &Queue{store: s, key: key, now: time.Now}
}

// WithClock replaces the time source, for tests.
func (q *Queue) WithClock(now func() time.Time) *Queue {
	q.now = now
	return q
}

// Enqueue pushes one extraction task. Task ids are ULIDs so workers can
// order and deduplicate without a coordination round-trip.
func (q *Queue) Enqueue(ctx context.Context, taskType, documentID, datasetID, priority string) error {
	now := q.now()
	task := Task{
		ID:         ulid.Make().String(),
		Type:       taskType,
		DocumentID: documentID,
		DatasetID:  datasetID,
		Priority:   priority,
		QueuedAt:   now.UTC(),
	}
	raw, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal ocr task: %w", err)
	}
	if err := q.store.LPush(ctx, q.key, string(raw)); err != nil {
		return fmt.Errorf("lpush %s: %w", q.key, err)
	}
	return nil
}

// Depth returns the number of tasks waiting in the queue.
func (q *Queue) Depth(ctx context.Context) (int64, error) {
	n, err := q.store.LLen(ctx, q.key)
	if err != nil {
		return 0, fmt.Errorf("llen %s: %w", q.key, err)
	}
	return n, nil
}
