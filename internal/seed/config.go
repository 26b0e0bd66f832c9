package seed

import (
	"runtime"
	"time"
)

// Config holds the parameters of one seeding run.
type Config struct {
	Count   int    // Number of classmates to create
	Workers int    // Concurrent Create calls
	Seed    uint64 // Generator seed; 0 picks a random one
}

// Stats holds the outcome of one seeding run.
type Stats struct {
	Batch       string        `json:"batch"`
	Requested   int           `json:"requested"`
	Created     int           `json:"created"`
	Failed      int           `json:"failed"`
	TotalBefore int           `json:"total_before"`
	TotalAfter  int           `json:"total_after"`
	CreatedIDs  []int64       `json:"created_ids"`
	Duration    time.Duration `json:"duration"`
}

func (c Config) workers() int {
	w := c.Workers
	if w <= 0 {
		w = runtime.NumCPU() * 2
	}
	if w > c.Count {
		w = c.Count
	}
	return w
}
