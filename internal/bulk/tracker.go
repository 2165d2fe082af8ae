package bulk

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrAlreadyRunning is returned when a bulk operation of the same kind
// is still in flight
var ErrAlreadyRunning = errors.New("a bulk operation of this kind is already running")

// ErrNotFound is returned for an unknown operation id
var ErrNotFound = errors.New("bulk operation not found")

// Progress is a point-in-time snapshot of a bulk operation
type Progress struct {
	ID        string   `json:"id"`
	Kind      string   `json:"kind"`
	Total     int      `json:"total"`
	Completed int      `json:"completed"`
	Current   string   `json:"current,omitempty"`
	Errors    []string `json:"errors,omitempty"`
	Running   bool     `json:"running"`
	Stopped   bool     `json:"stopped"`
}

// ItemFunc processes one item of a bulk operation. It receives the
// operation id so it can report progress back through the tracker.
// Returned errors are collected on the operation, they do not abort it.
type ItemFunc func(ctx context.Context, opID string, index int) error

type operation struct {
	mu        sync.Mutex
	id        string
	kind      string
	total     int
	completed int
	current   string
	errs      []string
	running   bool
	stopped   bool
	cancel    context.CancelFunc
}

func (op *operation) snapshot() Progress {
	op.mu.Lock()
	defer op.mu.Unlock()

	errs := make([]string, len(op.errs))
	copy(errs, op.errs)
	return Progress{
		ID:        op.id,
		Kind:      op.kind,
		Total:     op.total,
		Completed: op.completed,
		Current:   op.current,
		Errors:    errs,
		Running:   op.running,
		Stopped:   op.stopped,
	}
}

// Tracker runs bulk operations over lead sets and exposes their
// progress by id. At most one operation per kind runs at a time.
type Tracker struct {
	mu      sync.Mutex
	ops     map[string]*operation
	byKind  map[string]*operation
	workers int
	logger  *zap.Logger
}

// NewTracker creates a tracker with the given per-operation worker count
func NewTracker(workers int, logger *zap.Logger) *Tracker {
	if workers < 1 {
		workers = 1
	}
	return &Tracker{
		ops:     make(map[string]*operation),
		byKind:  make(map[string]*operation),
		workers: workers,
		logger:  logger,
	}
}

// Start launches a bulk operation of the given kind over total items,
// processing them with fn on a bounded worker pool. workers <= 0 uses
// the tracker default; pass 1 for operations that must stay sequential.
// It returns the operation id immediately.
func (t *Tracker) Start(kind string, total int, workers int, fn ItemFunc) (string, error) {
	t.mu.Lock()
	if existing, ok := t.byKind[kind]; ok && existing.snapshotRunning() {
		t.mu.Unlock()
		return "", ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	op := &operation{
		id:      uuid.NewString(),
		kind:    kind,
		total:   total,
		running: true,
		cancel:  cancel,
	}
	t.ops[op.id] = op
	t.byKind[kind] = op
	t.mu.Unlock()

	if workers <= 0 {
		workers = t.workers
	}
	go t.run(ctx, op, workers, fn)

	t.logger.Info("Bulk operation started",
		zap.String("id", op.id),
		zap.String("kind", kind),
		zap.Int("total", total))
	return op.id, nil
}

// Progress returns a snapshot of the operation's state
func (t *Tracker) Progress(id string) (Progress, error) {
	t.mu.Lock()
	op, ok := t.ops[id]
	t.mu.Unlock()

	if !ok {
		return Progress{}, ErrNotFound
	}
	return op.snapshot(), nil
}

// Stop requests a cooperative stop. In-flight items finish; queued
// items are skipped.
func (t *Tracker) Stop(id string) error {
	t.mu.Lock()
	op, ok := t.ops[id]
	t.mu.Unlock()

	if !ok {
		return ErrNotFound
	}

	op.mu.Lock()
	op.stopped = true
	op.mu.Unlock()
	op.cancel()
	return nil
}

func (t *Tracker) run(ctx context.Context, op *operation, workers int, fn ItemFunc) {
	defer op.cancel()

	indexes := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				err := fn(ctx, op.id, i)

				op.mu.Lock()
				op.completed++
				if err != nil && !errors.Is(err, context.Canceled) {
					op.errs = append(op.errs, err.Error())
				}
				op.mu.Unlock()
			}
		}()
	}

feed:
	for i := 0; i < op.total; i++ {
		select {
		case indexes <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(indexes)
	wg.Wait()

	op.mu.Lock()
	op.running = false
	op.current = ""
	completed, errCount := op.completed, len(op.errs)
	op.mu.Unlock()

	t.logger.Info("Bulk operation finished",
		zap.String("id", op.id),
		zap.String("kind", op.kind),
		zap.Int("completed", completed),
		zap.Int("errors", errCount))
}

// SetCurrent labels what an operation is working on right now, for
// progress displays
func (t *Tracker) SetCurrent(id, current string) {
	t.mu.Lock()
	op, ok := t.ops[id]
	t.mu.Unlock()
	if !ok {
		return
	}

	op.mu.Lock()
	op.current = current
	op.mu.Unlock()
}

func (op *operation) snapshotRunning() bool {
	op.mu.Lock()
	defer op.mu.Unlock()
	return op.running
}
