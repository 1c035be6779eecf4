// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package flow provides promise-bearing bounded channels with hysteretic
// pause/resume backpressure, and a stream socket adapter that bridges
// reactor-driven OS byte streams to a pair of such channels.
//
// # Architecture
//
//   - Channel: [Channel] is a bounded FIFO of values with a high watermark
//     (pause) and a low watermark (resume). [Readable] and [Writable] are thin
//     value handles over one channel, one per direction (SPSC assumed).
//   - Completion: [Channel.Receive] returns a [Promise] backed by a [Deferred]
//     one-shot slot. Results are [code.hybscloud.com/kont.Either] values;
//     continuations are scheduled on the channel's executor [Queue].
//   - Execution: [TaskQueue] is a bounded multi-producer run queue via
//     [code.hybscloud.com/lfq]. Blocking anywhere in the package is adaptive
//     backoff ([code.hybscloud.com/iox.Backoff]); the package spawns no
//     goroutines and creates no Go channels.
//   - Socket: [Attach] wires an attached [Stream] handle to an inbound and an
//     outbound channel. Inbound flow control is item-count backpressure
//     (reads stop at the high watermark and re-arm at the low watermark);
//     outbound flow control is byte-level hysteresis over in-flight writes.
//   - Lifetime: the reactor's callback registration is the keep-alive hold
//     on a socket; the handle close callback ends it. [Socket.Detach]
//     transfers socket ownership to its channels.
//
// # API Topologies
//
//   - Channel: [New], [NewWatermark], [Channel.Readable], [Channel.Writable].
//   - Consumer side: [Readable.Receive], [Readable.Close],
//     [Readable.CloseWithError], [Readable.AddScopeUntilClosed].
//   - Producer side: [Writable.Send], [Writable.ShouldSend],
//     [Writable.SetResumeNotification], [Writable.Close].
//   - Socket: [Attach], [AttachBuffered], [Socket.In], [Socket.Out],
//     [Socket.Detach], [Socket.Close].
//
// # Integration
//
//   - Stepping: [TaskQueue.RunOne] and [TaskQueue.Drain] execute scheduled
//     continuations one at a time, making the package easy to drive from a
//     reactor loop or a deterministic test harness.
//   - Blocking: [Promise.Await] and [TaskQueue.Serve] wait past empty-queue
//     boundaries using adaptive backoff.
//
// # Example
//
//	internal := flow.NewTaskQueue(256)
//	ch := flow.New[int](internal, 4)
//	w, r := ch.Writable(), ch.Readable()
//	_ = w.Send(42)
//	v, err := r.Receive().Await()
//	// v == 42, err == nil
package flow
