package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileLock_LockUnlock(t *testing.T) {
	t.Parallel()

	lockPath := filepath.Join(t.TempDir(), "test.lock")
	lock := NewFileLock(lockPath)

	if err := lock.Lock(); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	if _, err := os.Stat(lockPath); os.IsNotExist(err) {
		t.Error("lock file should exist after locking")
	}
	if lock.file == nil {
		t.Error("expected file handle to be set after locking")
	}

	if err := lock.Unlock(); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	if lock.file != nil {
		t.Error("expected file handle to be nil after unlocking")
	}

	// Unlocking twice is a no-op.
	if err := lock.Unlock(); err != nil {
		t.Errorf("second Unlock() should not error, got %v", err)
	}
}

func TestFileLock_UnlockWithoutLock(t *testing.T) {
	t.Parallel()

	lock := NewFileLock(filepath.Join(t.TempDir(), "never-locked.lock"))
	if err := lock.Unlock(); err != nil {
		t.Errorf("Unlock() without Lock() should not error, got %v", err)
	}
}

func TestFileLock_InvalidPath(t *testing.T) {
	t.Parallel()

	lock := NewFileLock(filepath.Join(t.TempDir(), "missing", "test.lock"))
	if err := lock.Lock(); err == nil {
		lock.Unlock()
		t.Error("expected error for lock in non-existent directory")
	}
}

func TestWithLock(t *testing.T) {
	t.Parallel()

	lockPath := filepath.Join(t.TempDir(), "test.lock")
	errBoom := errors.New("boom")

	called := false
	err := WithLock(lockPath, func() error {
		called = true
		return errBoom
	})
	if !called {
		t.Fatal("WithLock did not call fn")
	}
	if !errors.Is(err, errBoom) {
		t.Errorf("WithLock() = %v, want %v", err, errBoom)
	}

	// The lock is released afterwards.
	if err := WithLock(lockPath, func() error { return nil }); err != nil {
		t.Errorf("second WithLock() = %v, want nil", err)
	}
}
