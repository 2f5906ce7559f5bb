package normalize

import (
	"strconv"
	"sync"
	"time"
)

// IDGenerator hands out creation-ordered result ids. Ids are unix
// milliseconds, bumped past the previous value when two results land in the
// same millisecond, so they stay strictly increasing within a process.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
}

// Next returns the next id for a result created at now.
func (g *IDGenerator) Next(now time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := now.UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return strconv.FormatInt(ms, 10)
}
