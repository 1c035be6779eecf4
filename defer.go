// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flow

import (
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// Deferred is a one-shot completion slot resolving to either a value
// or a failure, represented as kont.Either[error, V].
//
// A deferred is created pending, settled exactly once via Resolve or
// Reject, and schedules registered continuations on its executor
// queue at settlement. Settling twice panics (affine semantics, as
// kont.Suspension.Resume).
type Deferred[V any] struct {
	queue    Queue
	mu       sync.Mutex
	resolved atomix.Uint32
	result   kont.Either[error, V]
	conts    []func(kont.Either[error, V])
}

// NewDeferred creates a pending deferred whose continuations run on q.
func NewDeferred[V any](q Queue) *Deferred[V] {
	return &Deferred[V]{queue: q}
}

// Resolve settles the deferred with a value.
func (d *Deferred[V]) Resolve(v V) {
	d.settle(kont.Right[error](v))
}

// Reject settles the deferred with a failure.
func (d *Deferred[V]) Reject(err error) {
	d.settle(kont.Left[error, V](err))
}

// Promise returns the consumer handle of this deferred.
func (d *Deferred[V]) Promise() Promise[V] {
	return Promise[V]{d: d}
}

func (d *Deferred[V]) settle(e kont.Either[error, V]) {
	d.mu.Lock()
	if d.resolved.Load() != 0 {
		d.mu.Unlock()
		panic("flow: deferred settled twice")
	}
	d.result = e
	d.resolved.Store(1)
	conts := d.conts
	d.conts = nil
	d.mu.Unlock()
	for _, f := range conts {
		d.schedule(f, e)
	}
}

func (d *Deferred[V]) schedule(f func(kont.Either[error, V]), e kont.Either[error, V]) {
	d.queue.Push(func() { f(e) })
}

// Resolved returns a promise already settled with v, scheduling on q.
func Resolved[V any](q Queue, v V) Promise[V] {
	d := NewDeferred[V](q)
	d.result = kont.Right[error](v)
	d.resolved.Store(1)
	return d.Promise()
}

// Rejected returns a promise already settled with err, scheduling on q.
func Rejected[V any](q Queue, err error) Promise[V] {
	d := NewDeferred[V](q)
	d.result = kont.Left[error, V](err)
	d.resolved.Store(1)
	return d.Promise()
}

// Promise is the consumer handle of a Deferred. The zero Promise is
// invalid; promises are obtained from Deferred.Promise, Resolved,
// Rejected, or Channel.Receive.
type Promise[V any] struct {
	d *Deferred[V]
}

// Done registers f to run on the deferred's executor queue once the
// promise settles. If the promise is already settled, f is scheduled
// immediately. Continuations run in registration order.
func (p Promise[V]) Done(f func(kont.Either[error, V])) {
	d := p.d
	d.mu.Lock()
	if d.resolved.Load() != 0 {
		e := d.result
		d.mu.Unlock()
		d.schedule(f, e)
		return
	}
	d.conts = append(d.conts, f)
	d.mu.Unlock()
}

// Then registers separate value and failure continuations.
// Either callback may be nil.
func (p Promise[V]) Then(onValue func(V), onFailure func(error)) {
	p.Done(func(e kont.Either[error, V]) {
		if v, ok := e.GetRight(); ok {
			if onValue != nil {
				onValue(v)
			}
			return
		}
		err, _ := e.GetLeft()
		if onFailure != nil {
			onFailure(err)
		}
	})
}

// Await blocks until the promise settles, using adaptive backoff, and
// returns the result. Await does not require the executor queue to be
// drained: it reads the settled slot directly.
func (p Promise[V]) Await() (V, error) {
	d := p.d
	var bo iox.Backoff
	for d.resolved.Load() == 0 {
		bo.Wait()
	}
	d.mu.Lock()
	e := d.result
	d.mu.Unlock()
	if v, ok := e.GetRight(); ok {
		return v, nil
	}
	err, _ := e.GetLeft()
	var zero V
	return zero, err
}
