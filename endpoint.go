// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flow

// Readable is the consumer handle of a channel. Copies share the
// channel; closing any copy closes the whole channel.
type Readable[V any] struct {
	ch *Channel[V]
}

// Receive returns a promise for the next value. See Channel.Receive.
func (r Readable[V]) Receive() Promise[V] {
	return r.ch.Receive()
}

// IsClosed reports whether the channel has been closed.
func (r Readable[V]) IsClosed() bool {
	return r.ch.IsClosed()
}

// Close closes the channel cleanly.
func (r Readable[V]) Close() {
	r.ch.Close()
}

// CloseWithError closes the channel with an attached cause.
func (r Readable[V]) CloseWithError(cause error) {
	r.ch.CloseWithError(cause)
}

// AddScopeUntilClosed retains scope until the channel closes.
func (r Readable[V]) AddScopeUntilClosed(scope Scope) {
	r.ch.AddScopeUntilClosed(scope)
}

// Queue returns the channel's executor queue.
func (r Readable[V]) Queue() Queue {
	return r.ch.Queue()
}

// Writable is the producer handle of a channel. Copies share the
// channel; closing any copy closes the whole channel.
type Writable[V any] struct {
	ch *Channel[V]
}

// Send enqueues v. See Channel.Send.
func (w Writable[V]) Send(v V) error {
	return w.ch.Send(v)
}

// ShouldSend reports whether the producer should keep sending.
func (w Writable[V]) ShouldSend() bool {
	return w.ch.ShouldSend()
}

// SetResumeNotification installs the paused→unpaused hook.
func (w Writable[V]) SetResumeNotification(fn func()) {
	w.ch.SetResumeNotification(fn)
}

// SetResumeNotificationOnce installs a one-shot paused→unpaused hook.
func (w Writable[V]) SetResumeNotificationOnce(fn func()) {
	w.ch.SetResumeNotificationOnce(fn)
}

// UnsetResumeNotification removes any installed hook.
func (w Writable[V]) UnsetResumeNotification() {
	w.ch.UnsetResumeNotification()
}

// IsClosed reports whether the channel has been closed.
func (w Writable[V]) IsClosed() bool {
	return w.ch.IsClosed()
}

// Close closes the channel cleanly.
func (w Writable[V]) Close() {
	w.ch.Close()
}

// CloseWithError closes the channel with an attached cause.
func (w Writable[V]) CloseWithError(cause error) {
	w.ch.CloseWithError(cause)
}

// AddScopeUntilClosed retains scope until the channel closes.
func (w Writable[V]) AddScopeUntilClosed(scope Scope) {
	w.ch.AddScopeUntilClosed(scope)
}

// Queue returns the channel's executor queue.
func (w Writable[V]) Queue() Queue {
	return w.ch.Queue()
}
