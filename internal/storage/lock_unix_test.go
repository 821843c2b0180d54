//go:build unix

package storage

import (
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestFileLock_Blocks(t *testing.T) {
	t.Parallel()

	lockPath := filepath.Join(t.TempDir(), "test.lock")

	lock1 := NewFileLock(lockPath)
	if err := lock1.Lock(); err != nil {
		t.Fatalf("lock1 Lock() error = %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		lock2 := NewFileLock(lockPath)
		if err := lock2.Lock(); err != nil {
			t.Errorf("lock2 Lock() error = %v", err)
			return
		}
		lock2.Unlock()
	}()

	select {
	case <-done:
		t.Error("lock2 should have blocked while lock1 is held")
	case <-time.After(30 * time.Millisecond):
	}

	if err := lock1.Unlock(); err != nil {
		t.Fatalf("lock1 Unlock() error = %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("lock2 should have acquired lock after lock1 released")
	}
}

func TestWithLock_Serializes(t *testing.T) {
	t.Parallel()

	lockPath := filepath.Join(t.TempDir(), "test.lock")

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := WithLock(lockPath, func() error {
				mu.Lock()
				inside++
				maxSeen = max(maxSeen, inside)
				mu.Unlock()

				time.Sleep(5 * time.Millisecond)

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
			if err != nil {
				t.Errorf("WithLock() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("%d holders at once, want 1", maxSeen)
	}
}
