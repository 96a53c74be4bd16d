package listing

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultBulkConcurrency caps in-flight calls of a bulk action
const DefaultBulkConcurrency = 8

// BulkFailure is one id whose call failed
type BulkFailure struct {
	ID    uint   `json:"id"`
	Error string `json:"error"`
}

// BulkResult reports a bulk action. Succeeded calls are not rolled back
// when others fail.
type BulkResult struct {
	Requested int           `json:"requested"`
	Succeeded int           `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
	Message   string        `json:"message"`
}

// Bulk runs fn once per id with at most concurrency calls in flight and
// collects the outcome. Order between calls is not defined.
func Bulk(ctx context.Context, verb string, ids []uint, concurrency int, fn func(ctx context.Context, id uint) error) BulkResult {
	if concurrency <= 0 {
		concurrency = DefaultBulkConcurrency
	}

	var (
		mu  sync.Mutex
		res = BulkResult{Requested: len(ids), Failed: []BulkFailure{}}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			err := gctx.Err()
			if err == nil {
				err = fn(gctx, id)
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed = append(res.Failed, BulkFailure{ID: id, Error: err.Error()})
				return nil
			}
			res.Succeeded++
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(res.Failed, func(i, j int) bool { return res.Failed[i].ID < res.Failed[j].ID })
	res.Message = fmt.Sprintf("%s %d of %d", verb, res.Succeeded, res.Requested)
	if len(res.Failed) > 0 {
		log.Printf("Bulk: %s (%d failed)", res.Message, len(res.Failed))
	}
	return res
}
