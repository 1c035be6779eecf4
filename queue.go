// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flow

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
)

// Queue schedules tasks for deferred execution.
//
// Channels schedule waiter resolutions and resume hooks on their
// default queue; reactors expose one queue running on the loop
// goroutine and one running on user workers.
type Queue interface {
	// Push enqueues task. Push may be called from any goroutine and
	// must not run task inline.
	Push(task func())
}

// TaskQueue is a bounded multi-producer run queue.
//
// Producers Push from any goroutine; consumption (RunOne, Drain,
// Serve) is single-consumer and must stay on one goroutine at a time.
// Transport is a bounded lock-free MPSC queue from lfq; the Compact
// (CAS) variant keeps the dequeue path free of FAA threshold stalls,
// which the stepping drain relies on.
type TaskQueue struct {
	tasks lfq.Queue[func()]
}

// NewTaskQueue creates a task queue holding up to capacity pending
// tasks. Capacity rounds up to the next power of two (lfq semantics).
func NewTaskQueue(capacity int) *TaskQueue {
	return &TaskQueue{
		tasks: lfq.BuildMPSC[func()](lfq.New(capacity).SingleConsumer().Compact()),
	}
}

// Push enqueues task, waiting with adaptive backoff while the queue
// is full.
func (q *TaskQueue) Push(task func()) {
	var bo iox.Backoff
	for q.tasks.Enqueue(&task) != nil {
		bo.Wait()
	}
}

// RunOne executes the next pending task.
// Returns false without blocking when no task is pending.
func (q *TaskQueue) RunOne() bool {
	task, err := q.tasks.Dequeue()
	if err != nil {
		return false
	}
	task()
	return true
}

// Drain executes pending tasks until the queue is empty, including
// tasks pushed by the tasks it runs. Returns the number executed.
func (q *TaskQueue) Drain() int {
	n := 0
	for q.RunOne() {
		n++
	}
	return n
}

// Serve executes tasks until stop becomes nonzero, backing off
// adaptively while idle.
func (q *TaskQueue) Serve(stop *atomix.Uint32) {
	var bo iox.Backoff
	for stop.Load() == 0 {
		if q.RunOne() {
			bo.Reset()
			continue
		}
		bo.Wait()
	}
}
