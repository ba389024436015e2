package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// TestSpawnAndReply_DeliversResult tests the happy path
// Main test items:
// 1. work runs off the owning goroutine
// 2. reply observes work's result on the owning goroutine
// 3. work finishes before reply starts
func TestSpawnAndReply_DeliversResult(t *testing.T) {
	pool := New()
	defer pool.Close()

	var got int
	var gotErr error
	done := false
	err := SpawnAndReply(pool.Spawner(),
		func() (int, error) {
			return 42, nil
		},
		func(result int, err error) {
			got = result
			gotErr = err
			done = true
		})
	if err != nil {
		t.Fatalf("SpawnAndReply failed: %v", err)
	}

	drainUntil(t, pool, 2*time.Second, func() bool { return done })

	if got != 42 {
		t.Errorf("Reply result = %d, want 42", got)
	}
	if gotErr != nil {
		t.Errorf("Reply error = %v, want nil", gotErr)
	}
}

// TestSpawnAndReply_DeliversWorkError tests error propagation
func TestSpawnAndReply_DeliversWorkError(t *testing.T) {
	pool := New()
	defer pool.Close()

	wantErr := errors.New("work failed")
	var gotErr error
	done := false
	err := SpawnAndReply(pool.Spawner(),
		func() (string, error) {
			return "", wantErr
		},
		func(result string, err error) {
			gotErr = err
			done = true
		})
	if err != nil {
		t.Fatalf("SpawnAndReply failed: %v", err)
	}

	drainUntil(t, pool, 2*time.Second, func() bool { return done })

	if !errors.Is(gotErr, wantErr) {
		t.Errorf("Reply error = %v, want %v", gotErr, wantErr)
	}
}

// TestSpawnAndReply_WorkPanicBecomesError tests panic containment
// Main test items:
// 1. A panic in work does not crash the process
// 2. reply receives the panic as an error
func TestSpawnAndReply_WorkPanicBecomesError(t *testing.T) {
	pool := New()
	defer pool.Close()

	var gotErr error
	done := false
	err := SpawnAndReply(pool.Spawner(),
		func() (int, error) {
			panic("worker exploded")
		},
		func(result int, err error) {
			gotErr = err
			done = true
		})
	if err != nil {
		t.Fatalf("SpawnAndReply failed: %v", err)
	}

	drainUntil(t, pool, 2*time.Second, func() bool { return done })

	if gotErr == nil {
		t.Fatal("Reply error = nil, want panic error")
	}
	if !strings.Contains(gotErr.Error(), "worker exploded") {
		t.Errorf("Reply error = %v, want it to carry the panic value", gotErr)
	}
}

// TestSpawnAndReply_DisconnectedPool tests failing fast before work starts
func TestSpawnAndReply_DisconnectedPool(t *testing.T) {
	pool := New()
	spawner := pool.Spawner()
	pool.Close()

	workStarted := make(chan struct{}, 1)
	err := SpawnAndReply(spawner,
		func() (int, error) {
			workStarted <- struct{}{}
			return 0, nil
		},
		func(result int, err error) {})
	if !errors.Is(err, ErrDisconnected) {
		t.Fatalf("SpawnAndReply on closed pool = %v, want ErrDisconnected", err)
	}

	select {
	case <-workStarted:
		t.Error("work started despite disconnected pool")
	case <-time.After(50 * time.Millisecond):
	}
}

// TestSpawnAndReply_NilArgs tests argument validation
func TestSpawnAndReply_NilArgs(t *testing.T) {
	pool := New()
	defer pool.Close()
	spawner := pool.Spawner()

	if err := SpawnAndReply[int](spawner, nil, func(int, error) {}); !errors.Is(err, ErrNilFuture) {
		t.Errorf("SpawnAndReply(nil work) = %v, want ErrNilFuture", err)
	}
	if err := SpawnAndReply(spawner, func() (int, error) { return 0, nil }, nil); !errors.Is(err, ErrNilFuture) {
		t.Errorf("SpawnAndReply(nil reply) = %v, want ErrNilFuture", err)
	}
}
