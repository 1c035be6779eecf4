// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flow

import "errors"

// ErrChannelClosed is returned by Send, and rejects Receive promises,
// once a channel has been closed without an attached cause.
//
// A channel closed via CloseWithError rejects receives with that cause
// instead; sends always fail with ErrChannelClosed.
var ErrChannelClosed = errors.New("flow: channel closed")

// IsChannelClosed reports whether err is (or wraps) ErrChannelClosed.
// A receive rejected with an attached close cause is not classified as
// channel-closed; the cause is the error the consumer should see.
func IsChannelClosed(err error) bool {
	return errors.Is(err, ErrChannelClosed)
}
