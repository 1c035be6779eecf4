// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flow_test

import (
	"io"

	"code.hybscloud.com/flow"
)

// stubQueue is a deterministic executor: tasks run only when the test
// drains them. Single-goroutine use only.
type stubQueue struct {
	tasks []func()
}

func (q *stubQueue) Push(task func()) {
	q.tasks = append(q.tasks, task)
}

// run executes queued tasks, including tasks they push, until the
// queue is empty. Returns the number executed.
func (q *stubQueue) run() int {
	n := 0
	for len(q.tasks) > 0 {
		task := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		task()
		n++
	}
	return n
}

// testReactor pairs two stub queues. The test goroutine plays both
// execution contexts: draining internal stands in for the reactor
// loop, draining user for the worker pool.
type testReactor struct {
	internal *stubQueue
	user     *stubQueue
}

func newTestReactor() *testReactor {
	return &testReactor{internal: &stubQueue{}, user: &stubQueue{}}
}

func (r *testReactor) InternalQueue() flow.Queue { return r.internal }
func (r *testReactor) UserQueue() flow.Queue     { return r.user }

// step drains both queues until neither holds a task.
func (r *testReactor) step() {
	for r.internal.run()+r.user.run() > 0 {
	}
}

// testStream is a scripted in-memory stream. The test goroutine
// drives completions, standing in for the reactor loop.
type testStream struct {
	reader     flow.StreamReader
	reading    bool
	readStarts int
	readStops  int

	pending []pendingWrite
	written []byte

	closeCalls int
	closeDone  func()
}

type pendingWrite struct {
	req  *flow.WriteReq
	buf  []byte
	done func(*flow.WriteReq, error)
}

func (st *testStream) ReadStart(r flow.StreamReader) {
	st.reader = r
	st.reading = true
	st.readStarts++
}

func (st *testStream) ReadStop() {
	st.reading = false
	st.readStops++
}

func (st *testStream) Write(req *flow.WriteReq, buf []byte, done func(*flow.WriteReq, error)) {
	st.written = append(st.written, buf...)
	st.pending = append(st.pending, pendingWrite{req: req, buf: buf, done: done})
}

func (st *testStream) Close(done func()) {
	st.closeCalls++
	st.closeDone = done
}

// deliver hands data to the socket as one read completion.
// Reports whether the stream was reading.
func (st *testStream) deliver(data []byte) bool {
	if !st.reading {
		return false
	}
	buf := st.reader.Alloc(len(data))
	n := copy(buf, data)
	st.reader.ReadDone(buf[:n], nil)
	return true
}

// deliverEOF reports a clean end of stream.
func (st *testStream) deliverEOF() {
	st.reader.ReadDone(nil, io.EOF)
}

// fail reports a translated read error.
func (st *testStream) fail(err error) {
	st.reader.ReadDone(nil, err)
}

// completeWrite completes the oldest pending write with err.
func (st *testStream) completeWrite(err error) pendingWrite {
	w := st.pending[0]
	st.pending[0] = pendingWrite{}
	st.pending = st.pending[1:]
	w.done(w.req, err)
	return w
}

// outstandingBytes sums the bytes of all pending writes.
func (st *testStream) outstandingBytes() int {
	n := 0
	for _, w := range st.pending {
		n += len(w.buf)
	}
	return n
}

// finishClose acknowledges handle shutdown: the reactor drops its
// callback references and fires the close callback.
func (st *testStream) finishClose() {
	done := st.closeDone
	st.closeDone = nil
	st.reader = nil
	if done != nil {
		done()
	}
}
