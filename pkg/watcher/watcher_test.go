package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalescesRapidTriggers(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	var calls atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("expected 1 callback, got %d", n)
	}
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	var called atomic.Bool
	d.Trigger(func() { called.Store(true) })
	d.Cancel()
	time.Sleep(120 * time.Millisecond)
	if called.Load() {
		t.Error("callback fired after cancel")
	}
}

func TestDebouncerDefaultDuration(t *testing.T) {
	if d := NewDebouncer(0); d.Duration() != DefaultDebounceDuration {
		t.Errorf("Duration() = %v", d.Duration())
	}
}

func waitChanged(t *testing.T, w *Watcher, timeout time.Duration) bool {
	t.Helper()
	select {
	case <-w.Changed():
		return true
	case <-time.After(timeout):
		return false
	}
}

func TestWatcherDetectsFileChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(path, WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte(`[{"id":"1"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if !waitChanged(t, w, 2*time.Second) {
		t.Error("change was not signalled")
	}
}

func TestWatcherPollingFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(path,
		WithForcePoll(true),
		WithDebounce(50*time.Millisecond),
		WithPollInterval(50*time.Millisecond),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Fatal("expected polling mode")
	}
	// Content change with a bumped mtime.
	later := time.Now().Add(2 * time.Second)
	if err := os.WriteFile(path, []byte(`[{"id":"1"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	if !waitChanged(t, w, 2*time.Second) {
		t.Error("polling did not signal the change")
	}
}

func TestWatcherDirectorySource(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "new.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !waitChanged(t, w, 2*time.Second) {
		t.Error("directory change was not signalled")
	}
}

func TestWatcherRemovalReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	errCh := make(chan error, 4)
	w, err := New(path,
		WithForcePoll(true),
		WithPollInterval(50*time.Millisecond),
		WithOnError(func(err error) { errCh <- err }),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-errCh:
		if err != ErrSourceRemoved {
			t.Errorf("got %v, want ErrSourceRemoved", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("removal was not reported")
	}
}

func TestWatcherStartTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := New(path, WithForcePoll(true))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if err := w.Start(); err != ErrAlreadyStarted {
		t.Errorf("second Start = %v, want ErrAlreadyStarted", err)
	}
}

func TestFilesystemTypeString(t *testing.T) {
	cases := map[FilesystemType]string{
		FSTypeUnknown: "unknown",
		FSTypeLocal:   "local",
		FSTypeNFS:     "nfs",
		FSTypeSMB:     "smb",
		FSTypeFUSE:    "fuse",
	}
	for typ, want := range cases {
		if typ.String() != want {
			t.Errorf("%d.String() = %s, want %s", typ, typ.String(), want)
		}
	}
}

func TestDetectFilesystemTypeEmptyPath(t *testing.T) {
	if got := DetectFilesystemType(""); got != FSTypeUnknown {
		t.Errorf("DetectFilesystemType(\"\") = %v", got)
	}
}
