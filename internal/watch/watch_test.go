package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/verte-zerg/celestat/internal/save"
)

func TestWatcherReloadsSlotFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	got := make(chan save.Slot, 8)
	w, err := New(dir, 50*time.Millisecond, func(_ context.Context, slot save.Slot) {
		got <- slot
	}, nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()

	if err := os.WriteFile(filepath.Join(dir, "settings.celeste"), []byte("<Settings />"), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	slotPath := filepath.Join(dir, "0.celeste")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(slotPath, []byte("<NotASave />"), 0o644); err != nil {
			t.Fatalf("write slot: %v", err)
		}
	}

	select {
	case slot := <-got:
		if slot.Path != slotPath {
			t.Fatalf("expected %s, got %s", slotPath, slot.Path)
		}
		if slot.Err == nil {
			t.Fatalf("expected decode error for invalid slot")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for slot reload")
	}

	// Burst writes collapse into one reload.
	select {
	case slot := <-got:
		t.Fatalf("unexpected second reload of %s", slot.Path)
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("watcher did not stop")
	}
}

func TestNewMissingDir(t *testing.T) {
	defer goleak.VerifyNone(t)

	if _, err := New(filepath.Join(t.TempDir(), "missing"), 0, func(context.Context, save.Slot) {}, nil); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}
