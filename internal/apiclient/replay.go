package apiclient

import (
	"context"
	"net/http/httptrace"
	"sync"
)

// replayQueue hands out replay turns in the order requests were rejected.
// A turn ends once its replay has been written to the wire, so replays reach
// the backend in queue order while their responses are still read
// concurrently.
type replayQueue struct {
	mu      sync.Mutex
	waiting []*replayTurn
}

type replayTurn struct {
	ready chan struct{}
	once  sync.Once
}

func (q *replayQueue) join() *replayTurn {
	q.mu.Lock()
	defer q.mu.Unlock()
	turn := &replayTurn{ready: make(chan struct{})}
	q.waiting = append(q.waiting, turn)
	if len(q.waiting) == 1 {
		close(turn.ready)
	}
	return turn
}

// leave gives up turn. Safe to call more than once.
func (q *replayQueue) leave(turn *replayTurn) {
	turn.once.Do(func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		for i, t := range q.waiting {
			if t != turn {
				continue
			}
			q.waiting = append(q.waiting[:i], q.waiting[i+1:]...)
			if i == 0 && len(q.waiting) > 0 {
				close(q.waiting[0].ready)
			}
			return
		}
	})
}

func (q *replayQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}

func (t *replayTurn) wait(ctx context.Context) error {
	select {
	case <-t.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// releaseOnWrite ends turn as soon as the request carrying ctx is written.
func (q *replayQueue) releaseOnWrite(ctx context.Context, turn *replayTurn) context.Context {
	return httptrace.WithClientTrace(ctx, &httptrace.ClientTrace{
		WroteRequest: func(httptrace.WroteRequestInfo) { q.leave(turn) },
	})
}
