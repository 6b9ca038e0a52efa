package app

import (
	"context"

	"tabreport/internal/errors"
	"tabreport/ports"

	"golang.org/x/sync/semaphore"
)

// LimitedLoader bounds how many files are parsed at once. Workbook parsing
// holds the whole file and its cell grid in memory.
type LimitedLoader struct {
	next ports.TableLoaderPort
	sem  *semaphore.Weighted
}

// NewLimitedLoader wraps next so at most n loads run concurrently.
func NewLimitedLoader(next ports.TableLoaderPort, n int64) *LimitedLoader {
	if n <= 0 {
		n = 1
	}
	return &LimitedLoader{next: next, sem: semaphore.NewWeighted(n)}
}

// Load waits for a free slot, then delegates.
func (l *LimitedLoader) Load(ctx context.Context, fileName string, data []byte, sheet string) (*ports.LoadedFile, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, errors.Wrap(err, "waiting for a free loader slot")
	}
	defer l.sem.Release(1)
	return l.next.Load(ctx, fileName, data, sheet)
}
