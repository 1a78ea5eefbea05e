package game

import "container/heap"

// TimerHandle identifies a scheduled action. The zero handle is never issued.
type TimerHandle uint64

type timer struct {
	deadline int64
	seq      uint64
	handle   TimerHandle
	fn       func()
	index    int
}

// timerQueue is a min-heap ordered by deadline, then insertion order.
type timerQueue []*timer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].deadline != q[j].deadline {
		return q[i].deadline < q[j].deadline
	}
	return q[i].seq < q[j].seq
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*timer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}

// Scheduler runs deferred actions on the game clock. It is driven by the
// tick loop and is not safe for concurrent use.
type Scheduler struct {
	queue   timerQueue
	pending map[TimerHandle]*timer
	seq     uint64
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{pending: make(map[TimerHandle]*timer)}
}

// Schedule registers fn to run on the first Run whose now reaches deadline.
func (s *Scheduler) Schedule(deadline int64, fn func()) TimerHandle {
	s.seq++
	t := &timer{
		deadline: deadline,
		seq:      s.seq,
		handle:   TimerHandle(s.seq),
		fn:       fn,
	}
	heap.Push(&s.queue, t)
	s.pending[t.handle] = t
	return t.handle
}

// Cancel removes a pending action. It reports false if the action already
// ran or was cancelled.
func (s *Scheduler) Cancel(h TimerHandle) bool {
	t, ok := s.pending[h]
	if !ok {
		return false
	}
	delete(s.pending, h)
	heap.Remove(&s.queue, t.index)
	return true
}

// Pending reports whether h is still waiting to run.
func (s *Scheduler) Pending(h TimerHandle) bool {
	_, ok := s.pending[h]
	return ok
}

// Run executes every action whose deadline is <= now, earliest first.
// Actions may schedule or cancel others; newly due ones run in the same call.
func (s *Scheduler) Run(now int64) int {
	ran := 0
	for len(s.queue) > 0 && s.queue[0].deadline <= now {
		t := heap.Pop(&s.queue).(*timer)
		delete(s.pending, t.handle)
		t.fn()
		ran++
	}
	return ran
}

// Len returns the number of pending actions.
func (s *Scheduler) Len() int {
	return len(s.queue)
}

// Clear drops every pending action.
func (s *Scheduler) Clear() {
	for i := range s.queue {
		s.queue[i] = nil
	}
	s.queue = s.queue[:0]
	clear(s.pending)
}
