package coordinator

import (
	"context"
	"hash/fnv"
	"log/slog"

	"golang.org/x/sync/errgroup"

	id "helix/pkg/domain"
)

// Task is one unit of per-user work.
type Task func(ctx context.Context)

// Pool drains events in parallel, partitioned by user id: every event for
// one user lands on the same worker, so per-user processing is serialized
// with no global lock.
type Pool struct {
	inboxes []chan Task
	logger  *slog.Logger
}

func NewPool(workers int, logger *slog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	inboxes := make([]chan Task, workers)
	for i := range inboxes {
		inboxes[i] = make(chan Task, 64)
	}
	return &Pool{inboxes: inboxes, logger: logger}
}

// Submit queues a task on the user's partition. Blocks when the partition's
// inbox is full, applying backpressure to the producer.
func (p *Pool) Submit(ctx context.Context, userID id.UserID, task Task) error {
	select {
	case p.inboxes[p.partition(userID)] <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes tasks until the context is cancelled, then drains what was
// already queued.
func (p *Pool) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))
	for _, inbox := range p.inboxes {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					p.drain(gctx, inbox)
					return nil
				case task := <-inbox:
					task(gctx)
				}
			}
		})
	}
	return g.Wait()
}

func (p *Pool) drain(ctx context.Context, inbox chan Task) {
	for {
		select {
		case task := <-inbox:
			task(ctx)
		default:
			return
		}
	}
}

func (p *Pool) partition(userID id.UserID) int {
	h := fnv.New32a()
	h.Write([]byte(userID.String()))
	return int(h.Sum32() % uint32(len(p.inboxes)))
}
