package dispatch

import (
	"errors"
	"sync"
	"time"

	"github.com/mikey/cold-outreach/internal/core"
)

// ErrDailyCapReached is returned when today's send quota is exhausted
var ErrDailyCapReached = errors.New("daily email cap reached")

// DailyQuota is the process-wide send counter for the current calendar
// day. It resets the first time it is touched on a new date and is
// deliberately not persisted: quota resets follow the wall clock, not
// any job. All mutation goes through the internal mutex.
type DailyQuota struct {
	mu    sync.Mutex
	limit int
	clock core.Clock
	count int
	day   string
}

// NewDailyQuota creates a quota with the given daily cap
func NewDailyQuota(limit int, clock core.Clock) *DailyQuota {
	return &DailyQuota{limit: limit, clock: clock}
}

// Check returns ErrDailyCapReached when the cap is already met.
// Callers check before attempting network I/O.
func (q *DailyQuota) Check() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.rollover()
	if q.count >= q.limit {
		return ErrDailyCapReached
	}
	return nil
}

// Record counts one successful send against today's quota
func (q *DailyQuota) Record() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.rollover()
	q.count++
}

// Used returns the number of sends counted today
func (q *DailyQuota) Used() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.rollover()
	return q.count
}

// Remaining returns how many sends are left today
func (q *DailyQuota) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.rollover()
	if remaining := q.limit - q.count; remaining > 0 {
		return remaining
	}
	return 0
}

// Limit returns the configured daily cap
func (q *DailyQuota) Limit() int {
	return q.limit
}

// rollover resets the counter when the calendar date has changed.
// Callers must hold q.mu.
func (q *DailyQuota) rollover() {
	today := q.clock.Now().Format(time.DateOnly)
	if q.day != today {
		q.day = today
		q.count = 0
	}
}
