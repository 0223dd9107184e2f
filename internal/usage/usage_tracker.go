// Package usage records token consumption of generative-service calls.
// Aggregates live in memory and are written to the profile's KV store on
// Flush, so they survive restarts and session resets.
package usage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"numerologyx/internal/logging"
	"numerologyx/internal/store"
)

// Key is the KV key holding the usage record.
const Key = "numerologyx_usage"

const dataVersion = "1.0"

// Tracker manages usage recording and persistence.
type Tracker struct {
	mu    sync.Mutex
	data  Data
	kv    store.KV
	dirty bool
	now   func() time.Time
}

// NewTracker loads the usage record from kv. A corrupt record is discarded.
func NewTracker(ctx context.Context, kv store.KV) (*Tracker, error) {
	t := &Tracker{kv: kv, now: time.Now}
	t.data = t.empty()

	raw, err := kv.Get(ctx, Key)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return t, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load usage: %w", err)
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		logging.StoreWarn("Discarding corrupt usage record: %v", err)
		return t, nil
	}
	if data.Aggregate.ByModel == nil {
		data.Aggregate.ByModel = make(map[string]Counts)
	}
	if data.Aggregate.ByOperation == nil {
		data.Aggregate.ByOperation = make(map[string]Counts)
	}
	t.data = data
	return t, nil
}

func (t *Tracker) empty() Data {
	return Data{
		Version: dataVersion,
		Since:   t.now().UTC(),
		Aggregate: Stats{
			ByModel:     make(map[string]Counts),
			ByOperation: make(map[string]Counts),
		},
	}
}

// Track records one call.
func (t *Tracker) Track(model, operation string, input, output int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.data.Aggregate.Total.Add(input, output)
	addToMap(t.data.Aggregate.ByModel, model, input, output)
	addToMap(t.data.Aggregate.ByOperation, operation, input, output)
	t.dirty = true
}

// Stats returns a copy of the aggregated stats.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	stats := t.data.Aggregate
	stats.ByModel = copyCountsMap(stats.ByModel)
	stats.ByOperation = copyCountsMap(stats.ByOperation)
	return stats
}

// Since returns when recording started.
func (t *Tracker) Since() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.data.Since
}

// Flush writes the record if anything changed since the last flush.
func (t *Tracker) Flush(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.dirty {
		return nil
	}
	raw, err := json.Marshal(t.data)
	if err != nil {
		return err
	}
	if err := t.kv.Put(ctx, Key, raw); err != nil {
		return fmt.Errorf("failed to save usage: %w", err)
	}
	t.dirty = false
	return nil
}

// Reset discards every counter and the persisted record.
func (t *Tracker) Reset(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data = t.empty()
	t.dirty = false
	return t.kv.Delete(ctx, Key)
}

func copyCountsMap(src map[string]Counts) map[string]Counts {
	if src == nil {
		return nil
	}
	dst := make(map[string]Counts, len(src))
	for key, counts := range src {
		dst[key] = counts
	}
	return dst
}

func addToMap(m map[string]Counts, key string, input, output int) {
	entry := m[key]
	entry.Add(input, output)
	m[key] = entry
}
