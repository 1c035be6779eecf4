// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flow

import (
	"errors"
	"io"
	"weak"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/kont"
)

const (
	// DefaultBacklogIn is the inbound channel capacity in blocks.
	DefaultBacklogIn = 6
	// DefaultBacklogOut is the outbound channel capacity in blocks.
	DefaultBacklogOut = 10
	// DefaultCacheSize is the outbound high watermark in bytes: the
	// pump stops pulling blocks while at least this many bytes are in
	// flight toward the OS.
	DefaultCacheSize = 64 << 10
)

// Socket bridges an attached OS stream to two channels: in carries
// bytes from the peer, out carries bytes to the peer.
//
// Inbound flow control is item-count backpressure: OS reads stop when
// the inbound channel pauses and re-arm when the consumer drains it
// below the low watermark. Outbound flow control is byte-level
// hysteresis: the pump keeps at most cacheSize bytes (plus one block)
// in flight.
//
// Apart from the channels themselves, socket state is confined to the
// reactor loop goroutine; Close marshals onto the internal queue. The
// reactor's callback registration keeps the socket alive while any
// callback may still fire; the handle close callback ends that hold.
type Socket struct {
	stream  Stream
	reactor Reactor

	readableIn  Readable[Block]
	writableOut Writable[Block]

	writableIn  *Writable[Block]
	readableOut *Readable[Block]

	writeReqs   []writeInfo
	cachedBytes int
	cacheSize   int

	closed   atomix.Uint32
	detached atomix.Uint32
}

// writeInfo is an in-flight write: the request handed to the reactor,
// the block kept alive for the buffer pointer, and the buffer length.
type writeInfo struct {
	req   *WriteReq
	block Block
	n     int
}

// Attach wires an attached stream handle to a new socket with default
// backlogs and byte watermark.
func Attach(r Reactor, stream Stream) *Socket {
	return AttachBuffered(r, stream, DefaultBacklogIn, DefaultBacklogOut, DefaultCacheSize)
}

// AttachBuffered wires an attached stream handle to a new socket with
// explicit inbound/outbound backlogs (blocks) and outbound byte
// watermark. The inbound channel resolves consumers on the reactor's
// user queue; the outbound channel runs its pump on the internal
// queue. Reading and the outbound pump start immediately.
func AttachBuffered(r Reactor, stream Stream, backlogIn, backlogOut, cacheSize int) *Socket {
	in := New[Block](r.UserQueue(), backlogIn)
	out := New[Block](r.InternalQueue(), backlogOut)

	wi := in.Writable()
	ro := out.Readable()
	s := &Socket{
		stream:      stream,
		reactor:     r,
		readableIn:  in.Readable(),
		writableOut: out.Writable(),
		writableIn:  &wi,
		readableOut: &ro,
		cacheSize:   cacheSize,
	}
	s.startRead()
	s.beginWrite()
	return s
}

// In returns the channel carrying bytes from the peer.
func (s *Socket) In() Readable[Block] {
	return s.readableIn
}

// Out returns the channel carrying bytes to the peer.
func (s *Socket) Out() Writable[Block] {
	return s.writableOut
}

// IsClosed reports whether the socket has begun closing.
func (s *Socket) IsClosed() bool {
	return s.closed.Load() != 0
}

// Close shuts the socket down cleanly: both channels close, reads
// stop, and the OS handle is released. In-flight writes complete or
// fail naturally; their completions become no-ops. Idempotent.
func (s *Socket) Close() {
	s.reactor.InternalQueue().Push(func() { s.iClose(nil) })
}

// Detach transfers ownership of the socket to its channels. The user
// may then drop every socket reference: the socket stays alive until
// both channels are closed, at which point the outbound pump shuts it
// down and the reactor's close callback releases the last hold.
func (s *Socket) Detach() {
	if !s.detached.CompareAndSwap(0, 1) {
		return
	}
	s.readableIn.AddScopeUntilClosed(&socketOwner{s: s})
	s.writableOut.AddScopeUntilClosed(&socketOwner{s: s})
}

// socketOwner keeps a detached socket alive on behalf of a channel.
type socketOwner struct {
	s *Socket
}

func (o *socketOwner) Release() { o.s = nil }

// socketReader adapts the socket to the read-side reactor callbacks
// without exposing them on the Socket API.
type socketReader struct {
	s *Socket
}

// Alloc returns a fresh buffer of the suggested size; its ownership
// moves into the block handed to the inbound channel.
func (r socketReader) Alloc(suggested int) []byte {
	return make([]byte, suggested)
}

// ReadDone is the inbound completion. Data transfers into the inbound
// channel; a send refused because the user closed the inbound side
// stops reads without re-arming, while a paused channel stops reads
// and re-arms at the low watermark. EOF and errors close the socket.
func (r socketReader) ReadDone(buf []byte, err error) {
	s := r.s
	switch {
	case err == nil:
		wi := s.writableIn
		if wi == nil {
			return
		}
		if wi.Send(Block(buf)) != nil {
			s.stopRead(false)
		} else if !wi.ShouldSend() {
			s.stopRead(true)
		}
	case errors.Is(err, io.EOF):
		s.iClose(nil)
	default:
		s.iClose(err)
	}
}

func (s *Socket) startRead() {
	if s.closed.Load() != 0 {
		return
	}
	s.stream.ReadStart(socketReader{s: s})
}

// stopRead halts OS reads. With reschedule, a one-shot resume
// notification re-arms reading once the consumer drains the inbound
// channel below the low watermark. The notification holds only a weak
// reference: a socket abandoned while paused stays collectible.
func (s *Socket) stopRead(reschedule bool) {
	s.stream.ReadStop()
	if !reschedule {
		return
	}
	self := weak.Make(s)
	internal := s.reactor.InternalQueue()
	s.writableIn.SetResumeNotificationOnce(func() {
		sock := self.Value()
		if sock == nil {
			return
		}
		internal.Push(sock.startRead)
	})
}

// beginWrite pulls the next block from the outbound channel. The
// receive continuation runs on the internal queue, so the pump never
// recurses through the stack even when blocks are already buffered.
func (s *Socket) beginWrite() {
	ro := s.readableOut
	if ro == nil {
		// Already closed
		return
	}
	ro.Receive().Done(func(e kont.Either[error, Block]) {
		block, ok := e.GetRight()
		if !ok {
			// Channel closed, or the receive chain failed; either way
			// the pump is done and the socket shuts down nicely.
			s.iClose(nil)
			return
		}
		s.submitWrite(block)
	})
}

// submitWrite submits one block to the OS and pipelines the next pull
// while in-flight bytes stay under the watermark.
func (s *Socket) submitWrite(block Block) {
	if s.closed.Load() != 0 {
		return
	}
	req := &WriteReq{}
	s.cachedBytes += block.Len()
	readMore := s.cachedBytes < s.cacheSize
	s.writeReqs = append(s.writeReqs, writeInfo{req: req, block: block, n: block.Len()})
	s.stream.Write(req, block, s.writeDone)
	if readMore {
		s.beginWrite()
	}
}

// writeDone is the outbound completion. It retires the descriptor,
// and pulls again when the in-flight byte level crossed back under
// the watermark. Completions arriving after close retire their
// descriptors and otherwise do nothing.
func (s *Socket) writeDone(req *WriteReq, err error) {
	idx := -1
	for i := range s.writeReqs {
		if s.writeReqs[i].req == req {
			idx = i
			break
		}
	}
	if idx < 0 {
		panic("flow: write completion for unknown request")
	}
	n := s.writeReqs[idx].n
	s.writeReqs = append(s.writeReqs[:idx], s.writeReqs[idx+1:]...)

	before := s.cachedBytes
	s.cachedBytes -= n
	writeMore := before >= s.cacheSize && s.cachedBytes < s.cacheSize

	if err != nil {
		// Failed write: propagate a close upstream. The specific error
		// is not surfaced; the peer-visible closure is clean.
		s.iClose(nil)
		return
	}
	if writeMore {
		s.beginWrite()
	}
}

// iClose is the close protocol. User-visible channel closure happens
// before the OS handle is relinquished, so a consumer observing the
// close can trust no further bytes arrive. Idempotent.
func (s *Socket) iClose(cause error) {
	if !s.closed.CompareAndSwap(0, 1) {
		return
	}

	wi := s.writableIn
	ro := s.readableOut

	if wi != nil {
		wi.UnsetResumeNotification()
		wi.CloseWithError(cause)
	}
	if ro != nil {
		ro.CloseWithError(cause)
	}

	s.stream.ReadStop()

	s.writableIn = nil
	s.readableOut = nil

	s.stream.Close(s.handleClosed)
}

// handleClosed runs when the reactor acknowledges handle shutdown.
// No further stream callbacks will fire: the reactor's registration,
// the keep-alive hold on this socket, is gone, and the socket drops
// its side of it.
func (s *Socket) handleClosed() {
	s.stream = nil
}
