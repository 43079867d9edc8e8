// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"time"

	"github.com/verte-zerg/celestat/internal/model"
)

type summable interface {
	~int64 | ~uint32
}

// SumOfBests combines the best recorded stats of every area into one synthetic
// area. A statistic is only present when every contributing area recorded it.
//
// The crystal heart is combined over all given areas, while every other field
// only looks at areas with unlockables. The Prologue has no heart, so in real
// saves the combined heart is always false.
// TODO: confirm whether the heart should use the unlockable subset like the cassette does.
func SumOfBests(areas []model.AreaStats) (model.AreaStats, error) {
	eligible := make([]model.AreaStats, 0, len(areas))
	for _, s := range areas {
		if s.Area.HasUnlockables() {
			eligible = append(eligible, s)
		}
	}

	out := model.AreaStats{Area: model.SumOfBests}
	out.A.SideStats = sumSides(eligible, func(s model.AreaStats) model.SideStats { return s.A.SideStats })
	out.A.Cassette = all(eligible, func(s model.AreaStats) bool { return s.A.Cassette })
	out.A.Heart = all(areas, func(s model.AreaStats) bool { return s.A.Heart })
	out.A.FullClear = sumOptional(eligible, func(s model.AreaStats) *time.Duration { return s.A.FullClear })

	for _, s := range eligible {
		n, err := s.RedBerries()
		if err != nil {
			return model.AreaStats{}, fmt.Errorf("%s: %w", s.Area.Name(), err)
		}
		for i := uint32(0); i < n; i++ {
			out.A.Berries[fmt.Sprintf("%d:%s", i, s.Area.Name())] = struct{}{}
		}
	}

	out.B = sumSides(eligible, func(s model.AreaStats) model.SideStats { return s.B })
	out.C = sumSides(eligible, func(s model.AreaStats) model.SideStats { return s.C })
	return out, nil
}

// sumSides combines one side across areas. Berry identities are not carried over.
func sumSides(areas []model.AreaStats, side func(model.AreaStats) model.SideStats) model.SideStats {
	return model.SideStats{
		Completed:    all(areas, func(s model.AreaStats) bool { return side(s).Completed }),
		SingleRun:    sumOptional(areas, func(s model.AreaStats) *time.Duration { return side(s).SingleRun }),
		FewestDashes: sumOptional(areas, func(s model.AreaStats) *uint32 { return side(s).FewestDashes }),
		FewestDeaths: sumOptional(areas, func(s model.AreaStats) *uint32 { return side(s).FewestDeaths }),
		Berries:      map[string]struct{}{},
	}
}

func all(areas []model.AreaStats, pred func(model.AreaStats) bool) bool {
	for _, s := range areas {
		if !pred(s) {
			return false
		}
	}
	return true
}

// sumOptional returns nil as soon as one area lacks the value.
func sumOptional[T summable](areas []model.AreaStats, field func(model.AreaStats) *T) *T {
	var total T
	for _, s := range areas {
		v := field(s)
		if v == nil {
			return nil
		}
		total += *v
	}
	return &total
}
