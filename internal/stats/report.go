package stats

import (
	"context"

	"github.com/verte-zerg/celestat/internal/model"
	"github.com/verte-zerg/celestat/internal/store"
)

// History contains precomputed data for history rendering.
type History struct {
	Snapshots []model.Snapshot
	// Latest holds the per-area rows of the newest snapshot of each slot.
	Latest map[string][]model.AreaSnapshot
	// LatestIDs maps each slot to its newest snapshot ID.
	LatestIDs map[string]int64
}

// BuildHistory loads and prepares stored snapshots for rendering.
func BuildHistory(ctx context.Context, st *store.Store, filter model.HistoryFilter) (History, error) {
	snapshots, err := st.ListSnapshots(ctx, filter)
	if err != nil {
		return History{}, err
	}
	if filter.Last > 0 && len(snapshots) > filter.Last {
		snapshots = snapshots[len(snapshots)-filter.Last:]
	}

	latestIDs := latestSnapshotIDs(snapshots)
	latest := make(map[string][]model.AreaSnapshot, len(latestIDs))
	for slot, id := range latestIDs {
		areas, err := st.ListAreaSnapshots(ctx, id)
		if err != nil {
			return History{}, err
		}
		latest[slot] = areas
	}

	return History{
		Snapshots: snapshots,
		Latest:    latest,
		LatestIDs: latestIDs,
	}, nil
}

// SnapshotAreas derives the stored per-area rows from a decoded report.
func SnapshotAreas(r model.Report) ([]model.AreaSnapshot, error) {
	out := make([]model.AreaSnapshot, 0, len(r.Areas))
	for _, s := range r.Areas {
		red, err := s.RedBerries()
		if err != nil {
			return nil, err
		}
		goldens := 0
		for _, ok := range []bool{s.HasGoldenA(), s.HasWingedGolden(), s.HasGoldenB(), s.HasGoldenC()} {
			if ok {
				goldens++
			}
		}
		out = append(out, model.AreaSnapshot{
			Area:        s.Area,
			RedBerries:  red,
			ACompleted:  s.A.Completed,
			BCompleted:  s.B.Completed,
			CCompleted:  s.C.Completed,
			ASingleRun:  s.A.SingleRun,
			FullClear:   s.A.FullClear,
			Cassette:    s.A.Cassette,
			Heart:       s.A.Heart,
			GoldenCount: goldens,
		})
	}
	return out, nil
}

func latestSnapshotIDs(snapshots []model.Snapshot) map[string]int64 {
	ids := map[string]int64{}
	for _, s := range snapshots {
		ids[s.Slot] = s.ID
	}
	return ids
}
