package chat

import "testing"

func TestRegistryDispatchOrder(t *testing.T) {
	r := NewRegistry[int](testLogger(), "test")

	var got []string
	r.Subscribe(func(int) { got = append(got, "a") })
	r.Subscribe(func(int) { got = append(got, "b") })
	r.Subscribe(func(int) { got = append(got, "c") })

	r.Dispatch(1)

	want := "abc"
	joined := ""
	for _, s := range got {
		joined += s
	}
	if joined != want {
		t.Fatalf("dispatch order = %q, want %q", joined, want)
	}
}

func TestRegistryUnsubscribe(t *testing.T) {
	r := NewRegistry[int](testLogger(), "test")

	calls := 0
	off := r.Subscribe(func(int) { calls++ })

	r.Dispatch(1)
	off()
	r.Dispatch(2)

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}

	// Unsubscribe is idempotent.
	off()
	if r.Len() != 0 {
		t.Fatalf("len = %d, want 0", r.Len())
	}
}

func TestRegistryUnsubscribeDuringDispatch(t *testing.T) {
	r := NewRegistry[int](testLogger(), "test")

	var offB func()
	aCalls, bCalls := 0, 0
	r.Subscribe(func(int) {
		aCalls++
		offB()
	})
	offB = r.Subscribe(func(int) { bCalls++ })

	r.Dispatch(1)
	r.Dispatch(2)

	if aCalls != 2 {
		t.Fatalf("a calls = %d, want 2", aCalls)
	}
	// b was part of the first dispatch's snapshot, then removed.
	if bCalls != 1 {
		t.Fatalf("b calls = %d, want 1", bCalls)
	}
}

func TestRegistrySubscribeDuringDispatchDeferred(t *testing.T) {
	r := NewRegistry[int](testLogger(), "test")

	lateCalled := 0
	r.Subscribe(func(int) {
		r.Subscribe(func(int) { lateCalled++ })
	})

	r.Dispatch(1)
	if lateCalled != 0 {
		t.Fatal("listener added during dispatch ran in the same dispatch")
	}
	r.Dispatch(2)
	if lateCalled != 1 {
		t.Fatalf("late listener calls = %d, want 1", lateCalled)
	}
}

func TestRegistryPanicIsolated(t *testing.T) {
	r := NewRegistry[int](testLogger(), "test")

	var got []int
	r.Subscribe(func(int) { panic("listener bug") })
	r.Subscribe(func(v int) { got = append(got, v) })

	r.Dispatch(7)

	if len(got) != 1 || got[0] != 7 {
		t.Fatalf("surviving listener got %v, want [7]", got)
	}
}

func TestRegistryClear(t *testing.T) {
	r := NewRegistry[int](testLogger(), "test")

	calls := 0
	r.Subscribe(func(int) { calls++ })
	r.Subscribe(func(int) { calls++ })

	r.Clear()
	r.Dispatch(1)

	if calls != 0 || r.Len() != 0 {
		t.Fatalf("calls = %d, len = %d after clear", calls, r.Len())
	}
}
