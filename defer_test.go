// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flow_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/flow"
	"code.hybscloud.com/kont"
)

func TestDeferredSchedulesContinuationsOnQueue(t *testing.T) {
	q := &stubQueue{}
	d := flow.NewDeferred[int](q)

	got := 0
	d.Promise().Then(func(v int) { got = v }, nil)

	d.Resolve(7)
	if got != 0 {
		t.Fatal("continuation ran inline at resolution")
	}
	q.run()
	if got != 7 {
		t.Fatalf("continuation saw %d, want 7", got)
	}
}

func TestPromiseDoneAfterSettle(t *testing.T) {
	q := &stubQueue{}
	p := flow.Resolved(q, "ready")

	var got string
	p.Done(func(e kont.Either[error, string]) {
		got, _ = e.GetRight()
	})
	if got != "" {
		t.Fatal("late continuation ran inline")
	}
	q.run()
	if got != "ready" {
		t.Fatalf("late continuation saw %q, want %q", got, "ready")
	}
}

func TestContinuationsRunInRegistrationOrder(t *testing.T) {
	q := &stubQueue{}
	d := flow.NewDeferred[int](q)

	var order []int
	p := d.Promise()
	p.Then(func(int) { order = append(order, 1) }, nil)
	p.Then(func(int) { order = append(order, 2) }, nil)
	d.Resolve(0)
	q.run()

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("continuations ran in order %v, want [1 2]", order)
	}
}

func TestRejectedPromise(t *testing.T) {
	q := &stubQueue{}
	cause := errors.New("boom")

	failed := error(nil)
	flow.Rejected[int](q, cause).Then(nil, func(err error) { failed = err })
	q.run()
	if !errors.Is(failed, cause) {
		t.Fatalf("failure continuation saw %v, want %v", failed, cause)
	}

	if _, err := flow.Rejected[int](q, cause).Await(); !errors.Is(err, cause) {
		t.Fatalf("Await returned %v, want %v", err, cause)
	}
}

func TestDeferredDoubleSettlePanics(t *testing.T) {
	q := &stubQueue{}
	d := flow.NewDeferred[int](q)
	d.Resolve(1)

	defer func() {
		if recover() == nil {
			t.Fatal("second settle did not panic")
		}
	}()
	d.Reject(errors.New("late"))
}
