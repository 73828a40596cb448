package memory

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/rocketscienceinc/blitz-tictactoe/internal/entity"
)

// TimeoutQueue - in-process pending timeouts ordered by due time.
type TimeoutQueue struct {
	mu      sync.Mutex
	nextID  uint64
	pending timeoutHeap
}

func NewTimeoutQueue() *TimeoutQueue {
	return &TimeoutQueue{}
}

func (that *TimeoutQueue) Schedule(_ context.Context, timeout *entity.ScheduledTimeout) (*entity.ScheduledTimeout, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.nextID++

	scheduled := *timeout
	scheduled.ID = that.nextID

	heap.Push(&that.pending, scheduled)

	return &scheduled, nil
}

func (that *TimeoutQueue) ClaimDue(_ context.Context, now time.Time, limit int) ([]*entity.ScheduledTimeout, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	var claimed []*entity.ScheduledTimeout
	for len(that.pending) > 0 && len(claimed) < limit {
		if that.pending[0].DueAt.After(now) {
			break
		}

		timeout := heap.Pop(&that.pending).(entity.ScheduledTimeout) //nolint: forcetypeassert // heap holds only timeouts
		claimed = append(claimed, &timeout)
	}

	return claimed, nil
}

// Len - number of timeouts not yet claimed.
func (that *TimeoutQueue) Len() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.pending)
}

type timeoutHeap []entity.ScheduledTimeout

func (h timeoutHeap) Len() int { return len(h) }

func (h timeoutHeap) Less(i, j int) bool {
	if h[i].DueAt.Equal(h[j].DueAt) {
		return h[i].ID < h[j].ID
	}
	return h[i].DueAt.Before(h[j].DueAt)
}

func (h timeoutHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *timeoutHeap) Push(x any) {
	*h = append(*h, x.(entity.ScheduledTimeout)) //nolint: forcetypeassert // heap holds only timeouts
}

func (h *timeoutHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
