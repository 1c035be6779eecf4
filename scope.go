// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flow

// Scope is a resource retained by its owner until released.
//
// A channel retains scopes added via AddScopeUntilClosed and releases
// them when it closes. Release is called at most once per retained
// scope.
type Scope interface {
	Release()
}

// ScopeFunc adapts a function to Scope.
type ScopeFunc func()

// Release implements Scope.
func (f ScopeFunc) Release() { f() }
