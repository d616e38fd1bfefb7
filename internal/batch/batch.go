// Package batch fetches per-id records in fixed-size concurrent chunks.
package batch

import (
	"context"
	"sync"

	"tourkorea/explorer/internal/metrics"

	log "github.com/sirupsen/logrus"
)

const DefaultBatchSize = 10

// FetchFunc loads the record for one id. A nil result with nil error means "no record".
type FetchFunc[T any] func(ctx context.Context, id string) (*T, error)

// Fetch partitions ids into chunks of at most batchSize. Ids inside a chunk are fetched
// concurrently and the chunk is awaited before the next one starts, which bounds the number of
// simultaneous upstream requests. A failed fetch yields a nil entry; it is logged, never returned.
// The result holds one entry per distinct id.
func Fetch[T any](ctx context.Context, ids []string, batchSize int, fetch FetchFunc[T]) map[string]*T {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	ids = distinct(ids)

	results := make(map[string]*T, len(ids))
	var mu sync.Mutex

	for start := 0; start < len(ids); start += batchSize {
		end := min(start+batchSize, len(ids))
		chunk := ids[start:end]

		var wg sync.WaitGroup
		for _, id := range chunk {
			wg.Add(1)

			go func(id string) {
				defer wg.Done()

				record, err := fetch(ctx, id)
				if err != nil {
					metrics.BatchFailures.Inc()
					log.Warnf("⚠️ Batch fetch failed for %s: %v", id, err)
					record = nil
				}

				mu.Lock()
				results[id] = record
				mu.Unlock()
			}(id)
		}
		wg.Wait()

		log.Debugf("Batch %d-%d of %d done", start+1, end, len(ids))
	}

	return results
}

// distinct drops repeated ids, keeping first occurrences in order.
func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
