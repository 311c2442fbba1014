// scheduler/scheduler.go
package scheduler

import (
	"container/heap"
	"sync"
	"time"
)

// task 一个待执行的任务，interval > 0 时周期性重复
type task struct {
	id       int64
	runAt    time.Time
	interval time.Duration
	fn       func()
	index    int
}

type taskHeap []*task

func (h taskHeap) Len() int            { return len(h) }
func (h taskHeap) Less(i, j int) bool  { return h[i].runAt.Before(h[j].runAt) }
func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x interface{}) {
	t := x.(*task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() interface{} {
	old := *h
	n := len(old)
	t := old[n-1]
	t.index = -1
	*h = old[:n-1]
	return t
}

// Scheduler 小根堆驱动的延迟任务执行器，分辨率 tick 一档。
// 用于会话空闲回收、指标刷新这类后台周期任务。
type Scheduler struct {
	tasks  taskHeap
	nextID int64
	mutex  sync.Mutex
	stop   chan struct{}
	once   sync.Once
}

const tick = 100 * time.Millisecond

func New() *Scheduler {
	s := &Scheduler{
		tasks:  make(taskHeap, 0),
		nextID: 1,
		stop:   make(chan struct{}),
	}
	heap.Init(&s.tasks)
	go s.run()
	return s
}

// Schedule 注册任务。delay 后首次执行；interval > 0 则周期重复。
// 返回可用于 Cancel 的任务ID。
func (s *Scheduler) Schedule(delay, interval time.Duration, fn func()) int64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	t := &task{
		id:       s.nextID,
		runAt:    time.Now().Add(delay),
		interval: interval,
		fn:       fn,
	}
	s.nextID++
	heap.Push(&s.tasks, t)
	return t.id
}

// Cancel 移除尚未执行（或周期性）的任务
func (s *Scheduler) Cancel(id int64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i, t := range s.tasks {
		if t.id == id {
			heap.Remove(&s.tasks, i)
			return
		}
	}
}

// Stop 停止调度循环，已触发的任务不受影响
func (s *Scheduler) Stop() {
	s.once.Do(func() {
		close(s.stop)
	})
}

func (s *Scheduler) run() {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.runDue(time.Now())
		}
	}
}

func (s *Scheduler) runDue(now time.Time) {
	s.mutex.Lock()
	var due []*task
	for s.tasks.Len() > 0 {
		t := s.tasks[0]
		if t.runAt.After(now) {
			break
		}
		heap.Pop(&s.tasks)
		due = append(due, t)
		if t.interval > 0 {
			t.runAt = now.Add(t.interval)
			heap.Push(&s.tasks, t)
		}
	}
	s.mutex.Unlock()

	for _, t := range due {
		go t.fn()
	}
}
