// Package sched runs delayed and recurring work on the simulation clock.
//
// Tasks are keyed by (owner, name) so that an entity's pending work can be found,
// replaced or cancelled when the entity is deactivated. Time only moves when
// Advance is called, once per frame, from the simulation goroutine.
package sched

import (
	"container/heap"
	"time"

	"github.com/tomz197/driftfield/internal/pool"
)

// RepeatFunc is a recurring task body. dt is the simulated time since the task
// last ran (or was scheduled). Returning false stops the recurrence.
type RepeatFunc func(dt time.Duration) bool

type key struct {
	owner pool.ID
	name  string
}

type task struct {
	key       key
	due       time.Duration
	last      time.Duration // when the task last ran or was scheduled
	period    time.Duration
	repeat    RepeatFunc
	once      func()
	seq       uint64
	index     int // heap position, -1 when not queued
	cancelled bool
}

// Scheduler is a frame-driven timer queue. It is not safe for concurrent use.
type Scheduler struct {
	now   time.Duration
	seq   uint64
	queue taskQueue
	tasks map[key]*task
	due   []*task // scratch buffer reused by Advance
}

// New creates a scheduler whose clock starts at zero.
func New() *Scheduler {
	return &Scheduler{tasks: make(map[key]*task)}
}

// Now returns the simulated time.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// After runs fn once, delay from now. An existing task with the same key is replaced.
func (s *Scheduler) After(owner pool.ID, name string, delay time.Duration, fn func()) {
	s.push(&task{key: key{owner, name}, due: s.now + delay, last: s.now, once: fn})
}

// Every runs fn every period until it returns false or is cancelled. The first
// run happens one period from now. A zero period runs fn once per Advance.
// An existing task with the same key is replaced.
func (s *Scheduler) Every(owner pool.ID, name string, period time.Duration, fn RepeatFunc) {
	if period < 0 {
		period = 0
	}
	s.push(&task{key: key{owner, name}, due: s.now + period, last: s.now, period: period, repeat: fn})
}

func (s *Scheduler) push(t *task) {
	if old, ok := s.tasks[t.key]; ok {
		s.drop(old)
	}
	s.seq++
	t.seq = s.seq
	s.tasks[t.key] = t
	heap.Push(&s.queue, t)
}

// Cancel removes the named task for owner, if any.
func (s *Scheduler) Cancel(owner pool.ID, name string) {
	if t, ok := s.tasks[key{owner, name}]; ok {
		s.drop(t)
	}
}

// CancelOwner removes every task belonging to owner.
func (s *Scheduler) CancelOwner(owner pool.ID) {
	for k, t := range s.tasks {
		if k.owner == owner {
			s.drop(t)
		}
	}
}

func (s *Scheduler) drop(t *task) {
	t.cancelled = true
	if s.tasks[t.key] == t {
		delete(s.tasks, t.key)
	}
	if t.index >= 0 {
		heap.Remove(&s.queue, t.index)
	}
}

// Pending returns how many tasks owner has scheduled.
func (s *Scheduler) Pending(owner pool.ID) int {
	n := 0
	for k := range s.tasks {
		if k.owner == owner {
			n++
		}
	}
	return n
}

// Scheduled reports whether the named task for owner is pending.
func (s *Scheduler) Scheduled(owner pool.ID, name string) bool {
	_, ok := s.tasks[key{owner, name}]
	return ok
}

// Len returns the number of pending tasks.
func (s *Scheduler) Len() int {
	return len(s.tasks)
}

// Advance moves the clock forward by dt and runs every task that is due.
// Tasks run in due-time order, ties in scheduling order. Work scheduled while
// advancing runs on a later Advance at the earliest.
func (s *Scheduler) Advance(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	s.now += dt

	s.due = s.due[:0]
	for s.queue.Len() > 0 && s.queue[0].due <= s.now {
		s.due = append(s.due, heap.Pop(&s.queue).(*task))
	}

	for i, t := range s.due {
		s.due[i] = nil
		if t.cancelled {
			continue
		}
		s.run(t)
	}
}

func (s *Scheduler) run(t *task) {
	elapsed := s.now - t.last
	t.last = s.now

	if t.once != nil {
		if s.tasks[t.key] == t {
			delete(s.tasks, t.key)
		}
		t.once()
		return
	}

	again := t.repeat(elapsed)
	// The task may have been cancelled or replaced under its key while running.
	if !again || t.cancelled || s.tasks[t.key] != t {
		if s.tasks[t.key] == t {
			delete(s.tasks, t.key)
		}
		return
	}
	t.due = s.now + t.period
	s.seq++
	t.seq = s.seq
	heap.Push(&s.queue, t)
}

// taskQueue is a min-heap ordered by due time, then sequence.
type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].due != q[j].due {
		return q[i].due < q[j].due
	}
	return q[i].seq < q[j].seq
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x any) {
	t := x.(*task)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
