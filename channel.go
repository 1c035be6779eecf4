// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flow

import (
	"sync"

	"code.hybscloud.com/atomix"
)

// DefaultResumeCount returns the low watermark paired with a buffer
// of bufferCount items: the full capacity for small buffers, 3/4 of
// capacity otherwise. Resuming only below 3/4 amortizes the cost of
// flipping OS reads on and off; tiny buffers have no room for
// hysteresis.
func DefaultResumeCount(bufferCount int) int {
	if bufferCount < 3 {
		return bufferCount
	}
	return bufferCount * 3 / 4
}

// Channel is a bounded FIFO of values delivered through promises,
// with pause/resume backpressure toward the producer.
//
// One sender and one receiver are assumed per channel; additional
// handles of either side serialize on the channel mutex without
// fairness guarantees. At any instant either the buffer or the waiter
// list is empty: a send finding a parked waiter resolves it directly,
// bypassing the buffer.
//
// The buffer is cooperative: Send never blocks and never refuses a
// value on a full channel. Producers are expected to consult
// ShouldSend and stop at the high watermark; the resume notification
// reports the paused→unpaused transition once per transition.
type Channel[V any] struct {
	queue Queue

	mu      sync.Mutex
	buf     []V
	waiters []*Deferred[V]
	scopes  []Scope

	closed atomix.Uint32
	paused atomix.Uint32

	bufferCount int
	resumeCount int

	notify     func()
	notifyOnce bool
	cause      error
}

// New creates a channel with capacity bufferCount and the default low
// watermark. Waiter resolutions and resume hooks are scheduled on q.
func New[V any](q Queue, bufferCount int) *Channel[V] {
	return NewWatermark[V](q, bufferCount, DefaultResumeCount(bufferCount))
}

// NewWatermark creates a channel with explicit high and low
// watermarks. resumeCount is clamped to [1, bufferCount].
func NewWatermark[V any](q Queue, bufferCount, resumeCount int) *Channel[V] {
	if bufferCount < 1 {
		panic("flow: channel buffer count must be positive")
	}
	if resumeCount < 1 {
		resumeCount = 1
	}
	if resumeCount > bufferCount {
		resumeCount = bufferCount
	}
	return &Channel[V]{
		queue:       q,
		bufferCount: bufferCount,
		resumeCount: resumeCount,
	}
}

// Readable returns a consumer handle sharing this channel.
func (c *Channel[V]) Readable() Readable[V] {
	return Readable[V]{ch: c}
}

// Writable returns a producer handle sharing this channel.
func (c *Channel[V]) Writable() Writable[V] {
	return Writable[V]{ch: c}
}

// Queue returns the executor queue resolutions are scheduled on.
func (c *Channel[V]) Queue() Queue {
	return c.queue
}

// IsClosed reports whether the channel has been closed.
func (c *Channel[V]) IsClosed() bool {
	return c.closed.Load() != 0
}

// ShouldSend reports whether the producer should keep sending:
// not paused and not closed. The hint is stale by nature but flips
// conservatively (pause is observed no later than the send that
// filled the buffer returns).
func (c *Channel[V]) ShouldSend() bool {
	return c.paused.Load() == 0 && c.closed.Load() == 0
}

// Send enqueues v. If a receiver is already parked, v resolves its
// promise directly and is never buffered. Sending on a closed channel
// fails with ErrChannelClosed; the value is dropped.
//
// Send itself never blocks: a send beyond the high watermark is
// accepted, sets paused, and relies on the producer honoring
// ShouldSend.
func (c *Channel[V]) Send(v V) error {
	c.mu.Lock()
	if c.closed.Load() != 0 {
		c.mu.Unlock()
		return ErrChannelClosed
	}
	if len(c.waiters) > 0 {
		w := c.waiters[0]
		c.waiters[0] = nil
		c.waiters = c.waiters[1:]
		c.mu.Unlock()
		w.Resolve(v)
		return nil
	}
	c.buf = append(c.buf, v)
	if len(c.buf) >= c.bufferCount {
		c.paused.Store(1)
	}
	c.mu.Unlock()
	return nil
}

// Receive returns a promise for the next value.
//
// A buffered value resolves immediately; draining below the low
// watermark schedules an asynchronous resume on the default queue
// rather than running it inline, so a resume handler that triggers
// further receives cannot recurse through the stack. On an empty open
// channel the receiver is parked and resume runs synchronously. On an
// empty closed channel the promise rejects with the attached close
// cause, or ErrChannelClosed if none.
func (c *Channel[V]) Receive() Promise[V] {
	c.mu.Lock()
	if len(c.buf) > 0 {
		v := c.buf[0]
		var zero V
		c.buf[0] = zero
		c.buf = c.buf[1:]
		schedule := len(c.buf) < c.resumeCount
		c.mu.Unlock()
		if schedule {
			c.queue.Push(c.resume)
		}
		return Resolved(c.queue, v)
	}
	if c.closed.Load() != 0 {
		cause := c.cause
		c.mu.Unlock()
		if cause == nil {
			cause = ErrChannelClosed
		}
		return Rejected[V](c.queue, cause)
	}
	d := NewDeferred[V](c.queue)
	c.waiters = append(c.waiters, d)
	fn := c.resumeLocked()
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
	return d.Promise()
}

// Close closes the channel cleanly. Parked and future receives reject
// with ErrChannelClosed; future sends fail. Idempotent.
func (c *Channel[V]) Close() {
	c.CloseWithError(nil)
}

// CloseWithError closes the channel with an attached cause. Parked
// and future receives reject with cause instead of ErrChannelClosed;
// sends still fail with ErrChannelClosed. A nil cause is a clean
// close. Only the first close wins; later calls are no-ops.
func (c *Channel[V]) CloseWithError(cause error) {
	reject := cause
	if reject == nil {
		reject = ErrChannelClosed
	}
	c.mu.Lock()
	if !c.closed.CompareAndSwap(0, 1) {
		c.mu.Unlock()
		return
	}
	c.cause = cause
	waiters := c.waiters
	c.waiters = nil
	for _, w := range waiters {
		w.Reject(reject)
	}
	scopes := c.scopes
	c.scopes = nil
	for _, s := range scopes {
		s.Release()
	}
	fn := c.notify
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// SetResumeNotification installs fn as the hook invoked on each
// paused→unpaused transition, replacing any previous hook. The hook
// is also invoked once when the channel closes, so a paused producer
// wakes and observes the closure. Installing does not itself invoke.
func (c *Channel[V]) SetResumeNotification(fn func()) {
	c.mu.Lock()
	c.notify = fn
	c.notifyOnce = false
	c.mu.Unlock()
}

// SetResumeNotificationOnce installs fn as a one-shot hook: it is
// cleared when it fires.
func (c *Channel[V]) SetResumeNotificationOnce(fn func()) {
	c.mu.Lock()
	c.notify = fn
	c.notifyOnce = true
	c.mu.Unlock()
}

// UnsetResumeNotification removes any installed hook.
func (c *Channel[V]) UnsetResumeNotification() {
	c.mu.Lock()
	c.notify = nil
	c.notifyOnce = false
	c.mu.Unlock()
}

// AddScopeUntilClosed retains scope until the channel closes. Adding
// to a closed channel releases the scope immediately.
func (c *Channel[V]) AddScopeUntilClosed(scope Scope) {
	c.mu.Lock()
	if c.closed.Load() != 0 {
		c.mu.Unlock()
		scope.Release()
		return
	}
	c.scopes = append(c.scopes, scope)
	c.mu.Unlock()
}

// resume flips paused off and fires the notification outside the
// mutex. Between any two paused→unpaused transitions there is an
// intervening paused store, so the notification cannot double-fire
// for one transition.
func (c *Channel[V]) resume() {
	c.mu.Lock()
	fn := c.resumeLocked()
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// resumeLocked performs the paused swap under the channel mutex and
// returns the notification for the caller to invoke after unlock, or
// nil. One-shot notifications are cleared here.
func (c *Channel[V]) resumeLocked() func() {
	if !c.paused.CompareAndSwap(1, 0) {
		return nil
	}
	fn := c.notify
	if c.notifyOnce {
		c.notify = nil
		c.notifyOnce = false
	}
	return fn
}
