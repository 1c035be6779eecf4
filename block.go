// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flow

// Block is an owned contiguous byte sequence with known length.
//
// Blocks move through channels by ownership transfer: the sender must
// not retain or mutate a block after Send, and the socket adapter
// hands read buffers over without copying.
type Block []byte

// Len returns the number of bytes in the block.
func (b Block) Len() int { return len(b) }
