package queue

import (
	"errors"
	"testing"
)

func TestTrySendAndReceive(t *testing.T) {
	q := New[int](2)

	if err := q.TrySend(1); err != nil {
		t.Fatalf("TrySend(1): unexpected error: %v", err)
	}
	if err := q.TrySend(2); err != nil {
		t.Fatalf("TrySend(2): unexpected error: %v", err)
	}

	if err := q.TrySend(3); !errors.Is(err, ErrFull) {
		t.Fatalf("TrySend(3) on a full queue: got %v, want ErrFull", err)
	}

	item, ok := q.Receive()
	if !ok || item != 1 {
		t.Fatalf("Receive: got (%v, %v), want (1, true)", item, ok)
	}

	if err := q.TrySend(3); err != nil {
		t.Fatalf("TrySend(3) after drain: unexpected error: %v", err)
	}
}

func TestReceiveAfterClose(t *testing.T) {
	q := New[int](1)
	if err := q.TrySend(42); err != nil {
		t.Fatalf("TrySend: unexpected error: %v", err)
	}
	q.Close()

	item, ok := q.Receive()
	if !ok || item != 42 {
		t.Fatalf("Receive after close, buffered item: got (%v, %v), want (42, true)", item, ok)
	}

	item, ok = q.Receive()
	if ok {
		t.Fatalf("Receive after close and drain: got ok=true with item %v, want ok=false", item)
	}
}

func TestTrySendAfterClose(t *testing.T) {
	q := New[int](1)
	q.Close()

	if err := q.TrySend(1); !errors.Is(err, ErrClosed) {
		t.Fatalf("TrySend on closed queue: got %v, want ErrClosed", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	q := New[int](1)
	q.Close()
	q.Close() // must not panic on double close
}
