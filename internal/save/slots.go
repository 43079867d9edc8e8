package save

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/celestat/internal/model"
)

const (
	slotExt      = ".celeste"
	settingsFile = "settings.celeste"
)

// Slot is one save file and the result of decoding it.
type Slot struct {
	Path   string
	Name   string
	Digest string
	Report model.Report
	Err    error
}

// SlotError ties a decode failure to the file it came from.
type SlotError struct {
	Path string
	Err  error
}

func (e *SlotError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *SlotError) Unwrap() error {
	return e.Err
}

// IsSlotFile reports whether path names a save slot rather than the settings file.
func IsSlotFile(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, slotExt) && base != settingsFile
}

// SlotName returns the slot name for a save path, e.g. "0" for "0.celeste".
func SlotName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), slotExt)
}

// ListSlots returns the save slot files in dir, sorted by name.
func ListSlots(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !IsSlotFile(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadSlot reads and decodes a single save file. Failures are recorded on the
// returned slot as a *SlotError.
func LoadSlot(path string) Slot {
	slot := Slot{Path: path, Name: SlotName(path)}
	data, err := os.ReadFile(path)
	if err != nil {
		slot.Err = &SlotError{Path: path, Err: err}
		return slot
	}
	sum := sha256.Sum256(data)
	slot.Digest = hex.EncodeToString(sum[:])
	report, err := Decode(data)
	if err != nil {
		slot.Err = &SlotError{Path: path, Err: err}
		return slot
	}
	slot.Report = report
	return slot
}

// LoadFiles decodes the given files in parallel, at most limit at a time.
// Slots come back in input order; one slot failing does not affect the others.
func LoadFiles(ctx context.Context, paths []string, limit int) ([]Slot, error) {
	slots := make([]Slot, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i] = LoadSlot(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slots, nil
}

// LoadDir decodes every save slot in dir.
func LoadDir(ctx context.Context, dir string, limit int) ([]Slot, error) {
	paths, err := ListSlots(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}
	return LoadFiles(ctx, paths, limit)
}
