// Package seed fills a roster backend with random classmates through the API
// client and checks that the backend accounted for every one of them.
package seed

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/classmates/internal/domain/model"
	"github.com/okian/classmates/pkg/logger"
	"github.com/okian/classmates/pkg/metrics"
)

// Roster is the subset of the API client the seeder drives.
type Roster interface {
	Create(ctx context.Context, p model.Person) (model.Person, error)
	Statistics(ctx context.Context) (model.Statistics, error)
}

// Run creates cfg.Count random classmates concurrently and verifies the
// roster total afterwards. Individual create failures are counted, not fatal.
func Run(ctx context.Context, roster Roster, cfg Config, log logger.Logger) (Stats, error) {
	if cfg.Count <= 0 {
		return Stats{}, fmt.Errorf("%w: %d", ErrInvalidCount, cfg.Count)
	}
	if log == nil {
		log = logger.Nop()
	}

	stats := Stats{Batch: uuid.NewString(), Requested: cfg.Count}
	start := time.Now()

	before, err := roster.Statistics(ctx)
	if err != nil {
		return stats, fmt.Errorf("%w: %w", ErrBaseline, err)
	}
	stats.TotalBefore = before.Total

	log.Info(ctx, "seeding roster",
		logger.String("batch", stats.Batch),
		logger.Int("count", cfg.Count),
		logger.Int("workers", cfg.workers()),
		logger.Int("totalBefore", before.Total),
	)

	people := Generate(cfg.Count, cfg.Seed)
	ids, created, failed := submit(ctx, roster, people, cfg.workers(), log)

	stats.Created = int(created)
	stats.Failed = int(failed)
	stats.CreatedIDs = ids

	after, err := roster.Statistics(ctx)
	stats.Duration = time.Since(start)
	if err != nil {
		return stats, fmt.Errorf("failed to read roster statistics after seeding: %w", err)
	}
	stats.TotalAfter = after.Total

	log.Info(ctx, "seeding finished",
		logger.String("batch", stats.Batch),
		logger.Int("created", stats.Created),
		logger.Int("failed", stats.Failed),
		logger.Int("totalAfter", after.Total),
		logger.String("duration", stats.Duration.String()),
	)

	if grown := after.Total - before.Total; grown < stats.Created {
		return stats, fmt.Errorf("%w: grew by %d, created %d", ErrVerification, grown, stats.Created)
	}
	return stats, nil
}

// submit fans people out to a fixed number of workers.
func submit(ctx context.Context, roster Roster, people []model.Person, workers int, log logger.Logger) ([]int64, int64, int64) {
	var (
		created, failed atomic.Int64
		mu              sync.Mutex
		ids             = make([]int64, 0, len(people))
		wg              sync.WaitGroup
	)

	work := make(chan model.Person, workers*2)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range work {
				out, err := roster.Create(ctx, p)
				if err != nil {
					failed.Add(1)
					metrics.RecordSeedFailed()
					continue
				}
				created.Add(1)
				metrics.RecordSeedCreated()

				mu.Lock()
				ids = append(ids, out.ID)
				mu.Unlock()
			}
		}()
	}

	sent := 0
feed:
	for _, p := range people {
		select {
		case <-ctx.Done():
			break feed
		case work <- p:
			sent++
		}
	}
	close(work)
	wg.Wait()

	if skipped := len(people) - sent; skipped > 0 {
		failed.Add(int64(skipped))
		log.Warn(ctx, "seeding interrupted", logger.Int("skipped", skipped), logger.Error(ctx.Err()))
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, created.Load(), failed.Load()
}
