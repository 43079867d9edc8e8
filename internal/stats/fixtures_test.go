package stats

import (
	"fmt"
	"time"

	"github.com/verte-zerg/celestat/internal/model"
)

func dur(d time.Duration) *time.Duration { return &d }

func u32(n uint32) *uint32 { return &n }

func berries(n int) map[string]struct{} {
	out := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		out[fmt.Sprintf("%d:%d", i/4, i)] = struct{}{}
	}
	return out
}

func run(d time.Duration, dashes, deaths uint32) model.SideStats {
	return model.SideStats{
		Completed:    true,
		SingleRun:    dur(d),
		FewestDashes: u32(dashes),
		FewestDeaths: u32(deaths),
		Berries:      map[string]struct{}{},
	}
}

func segmented() model.SideStats {
	return model.SideStats{Completed: true, Berries: map[string]struct{}{}}
}

func untouched() model.SideStats {
	return model.SideStats{Berries: map[string]struct{}{}}
}

func area(a model.Area, side model.SideStats, redAndGolden int) model.AreaStats {
	s := model.AreaStats{Area: a, B: untouched(), C: untouched()}
	s.A.SideStats = side
	s.A.Berries = berries(redAndGolden)
	return s
}

// sampleReport is a partly finished save: prologue, chapter 1 with a golden,
// chapter 2 segmented with some berries, the summit unfinished and core done.
func sampleReport() model.Report {
	prologue := area(model.Prologue, run(2*time.Minute+3400*time.Millisecond, 0, 0), 0)

	city := area(model.ForsakenCity, run(5*time.Minute, 30, 2), 21)
	city.A.Cassette = true
	city.A.Heart = true
	city.A.FullClear = dur(9 * time.Minute)
	city.B = run(4*time.Minute, 120, 40)

	site := area(model.OldSite, segmented(), 12)

	summit := area(model.TheSummit, untouched(), 0)

	core := area(model.Core, run(20*time.Minute, 300, 0), 5)
	core.A.Cassette = true
	core.A.Heart = true
	core.C = run(3*time.Minute, 80, 1)
	core.C.Berries = berries(1)

	areas := []model.AreaStats{prologue, city, site, summit, core}
	best, err := SumOfBests(areas)
	if err != nil {
		panic(err)
	}
	return model.Report{
		Version:      "1.4.0.0",
		Name:         "Madeline",
		TotalBerries: 38,
		Gems:         3,
		Areas:        append(areas, best),
	}
}
