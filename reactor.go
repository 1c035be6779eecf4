// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flow

// Reactor is the event-loop contract this package consumes. A reactor
// owns the OS handles, runs their callbacks on a single loop
// goroutine, and exposes two executor queues.
type Reactor interface {
	// InternalQueue runs tasks on the reactor loop goroutine.
	InternalQueue() Queue
	// UserQueue runs tasks on user worker goroutines.
	UserQueue() Queue
}

// StreamReader receives read-side callbacks for an attached stream.
// Both callbacks are invoked on the reactor loop goroutine; no two
// callbacks for one stream run concurrently.
type StreamReader interface {
	// Alloc returns a buffer for the next read. Ownership of the
	// buffer transfers to ReadDone.
	Alloc(suggested int) []byte
	// ReadDone reports a completed read. err nil delivers buf (sliced
	// to the bytes read), io.EOF reports a clean end of stream, and
	// any other error is the reactor-translated domain error.
	ReadDone(buf []byte, err error)
}

// Stream is an attached OS stream handle managed by a reactor.
// All methods may only be called from the reactor loop goroutine,
// or via tasks pushed onto the reactor's internal queue.
type Stream interface {
	// ReadStart begins reading, delivering completions to r until
	// ReadStop or Close.
	ReadStart(r StreamReader)
	// ReadStop halts reading. Buffers already handed to r stay with r.
	ReadStop()
	// Write submits buf. done fires exactly once with the same req
	// pointer when the OS accepts or rejects the bytes. buf must stay
	// alive until done fires.
	Write(req *WriteReq, buf []byte, done func(req *WriteReq, err error))
	// Close releases the OS handle; done fires once no further
	// callbacks will be invoked.
	Close(done func())
}

// WriteReq is the per-write request record handed to the reactor.
// Pointer identity correlates a submitted write with its completion.
type WriteReq struct {
	// Data is a scratch slot for the reactor; this package does not
	// touch it.
	Data any
}
