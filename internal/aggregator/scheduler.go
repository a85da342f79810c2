package aggregator

import (
	"time"

	marketv1 "github.com/quantick/barpipe/internal/domain/market/v1"
)

// deadline is one scheduled finalize action: the bucket key and the instant
// its bucket ends. Deadlines are computed from tick timestamps, not from the
// wall clock at arrival, so back-dated and replayed ticks schedule correctly.
type deadline struct {
	at  time.Time
	key marketv1.BucketKey
}

// deadlineHeap is a min-heap ordered by deadline time. One loop drains it
// instead of arming a timer per bucket; entries whose bucket was already
// flushed are skipped when popped.
type deadlineHeap []deadline

func (h deadlineHeap) Len() int { return len(h) }

func (h deadlineHeap) Less(i, j int) bool { return h[i].at.Before(h[j].at) }

func (h deadlineHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *deadlineHeap) Push(x any) {
	*h = append(*h, x.(deadline))
}

func (h *deadlineHeap) Pop() any {
	old := *h
	n := len(old)
	d := old[n-1]
	*h = old[:n-1]
	return d
}
