// Package archive records decoded save slots as history snapshots.
package archive

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/celestat/internal/model"
	"github.com/verte-zerg/celestat/internal/save"
	"github.com/verte-zerg/celestat/internal/stats"
)

// Recorder persists snapshots.
type Recorder interface {
	InsertSnapshot(ctx context.Context, snap model.Snapshot, areas []model.AreaSnapshot) (int64, bool, error)
}

// Archiver turns slots into snapshots tagged with one run ID.
type Archiver struct {
	rec    Recorder
	runID  string
	logger *zap.Logger
	now    func() time.Time
}

// New creates an archiver writing to rec.
func New(rec Recorder, runID string, logger *zap.Logger) *Archiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archiver{rec: rec, runID: runID, logger: logger, now: time.Now}
}

// Archive stores one slot. It reports false when the same content is
// already stored for the slot.
func (a *Archiver) Archive(ctx context.Context, slot save.Slot) (bool, error) {
	if slot.Err != nil {
		return false, slot.Err
	}
	areas, err := stats.SnapshotAreas(slot.Report)
	if err != nil {
		return false, fmt.Errorf("%s: %w", slot.Path, err)
	}
	// The trailing Sum of Bests row is derived and is not stored.
	stored := areas[:0:0]
	for _, area := range areas {
		if area.Area != model.SumOfBests {
			stored = append(stored, area)
		}
	}
	snap := model.Snapshot{
		RunID:        a.runID,
		Slot:         slot.Name,
		TakenAt:      a.now(),
		Digest:       slot.Digest,
		Version:      slot.Report.Version,
		Name:         slot.Report.Name,
		TotalBerries: slot.Report.TotalBerries,
		Gems:         slot.Report.Gems,
		CheatMode:    slot.Report.CheatMode,
		AssistMode:   slot.Report.AssistMode,
		VariantMode:  slot.Report.VariantMode,
	}
	id, inserted, err := a.rec.InsertSnapshot(ctx, snap, stored)
	if err != nil {
		return false, fmt.Errorf("failed to store snapshot of slot %s: %w", slot.Name, err)
	}
	if !inserted {
		a.logger.Debug("slot unchanged", zap.String("slot", slot.Name), zap.String("digest", slot.Digest))
		return false, nil
	}
	a.logger.Info("archived slot",
		zap.String("slot", slot.Name),
		zap.Int64("snapshot_id", id),
		zap.Uint32("berries", slot.Report.TotalBerries))
	return true, nil
}

// ArchiveAll stores every slot that decoded, returning how many were new.
// Slots that failed to decode are logged and skipped.
func (a *Archiver) ArchiveAll(ctx context.Context, slots []save.Slot) (int, error) {
	added := 0
	for _, slot := range slots {
		if slot.Err != nil {
			a.logger.Warn("skipping slot", zap.String("path", slot.Path), zap.Error(slot.Err))
			continue
		}
		ok, err := a.Archive(ctx, slot)
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}
	return added, nil
}
