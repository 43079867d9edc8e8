// Package model defines shared data structures.
package model

import (
	"errors"
	"time"
)

// ErrImpossibleBerryCount reports an A side holding more berries than the area allows.
var ErrImpossibleBerryCount = errors.New("impossible collectible count")

// SideStats captures progress in one side (A, B or C) of an area.
//
// SingleRun, FewestDashes and FewestDeaths are either all set or all nil.
// All nil means the side was only ever finished segmented.
type SideStats struct {
	Completed    bool
	SingleRun    *time.Duration
	FewestDashes *uint32
	FewestDeaths *uint32
	Berries      map[string]struct{}
}

// BerryCount returns the number of distinct berries collected.
func (s SideStats) BerryCount() uint32 {
	return uint32(len(s.Berries))
}

// Segmented reports whether no single-run completion was recorded.
func (s SideStats) Segmented() bool {
	return s.SingleRun == nil
}

// ASideStats adds the A-side only unlockables.
type ASideStats struct {
	SideStats
	Cassette  bool
	Heart     bool
	FullClear *time.Duration
}

// AreaStats holds the decoded stats of one area.
type AreaStats struct {
	Area Area
	A    ASideStats
	B    SideStats
	C    SideStats
}

// RedBerries returns the A-side red berry count, excluding golden berries.
// Golden berries show up as extra entries beyond the area maximum: one for every
// area, two for the area with a winged golden. Anything beyond that is invalid.
func (s AreaStats) RedBerries() (uint32, error) {
	actual := s.A.BerryCount()
	limit := s.Area.MaxRedBerries()
	switch {
	case actual <= limit:
		return actual, nil
	case actual == limit+1:
		return limit, nil
	case s.Area.HasWingedGolden() && actual == limit+2:
		return limit, nil
	}
	return 0, ErrImpossibleBerryCount
}

// HasGoldenA reports whether the A-side golden berry was collected.
func (s AreaStats) HasGoldenA() bool {
	return s.A.BerryCount() > s.Area.MaxRedBerries()
}

// HasGoldenB reports whether the B-side golden berry was collected.
func (s AreaStats) HasGoldenB() bool {
	return s.B.BerryCount() > 0
}

// HasGoldenC reports whether the C-side golden berry was collected.
func (s AreaStats) HasGoldenC() bool {
	return s.C.BerryCount() > 0
}

// HasWingedGolden reports whether the winged golden berry was collected.
func (s AreaStats) HasWingedGolden() bool {
	return s.Area.HasWingedGolden() && s.A.BerryCount() > s.Area.MaxRedBerries()+1
}

// Report is the decoded content of one save slot.
//
// Areas lists the standard areas in save order without the Epilogue,
// followed by the SumOfBests aggregate.
type Report struct {
	Version      string
	Name         string
	CheatMode    bool
	AssistMode   bool
	VariantMode  bool
	TotalBerries uint32
	Gems         uint8
	Areas        []AreaStats
}

// Area returns the stats for the given area, if present.
func (r Report) Area(area Area) (AreaStats, bool) {
	for _, s := range r.Areas {
		if s.Area == area {
			return s, true
		}
	}
	return AreaStats{}, false
}

// HistoryFilter selects stored snapshots.
type HistoryFilter struct {
	Slot  string
	Since *time.Time
	Last  int
}

// Snapshot is one archived decode of a save slot.
type Snapshot struct {
	ID           int64
	RunID        string
	Slot         string
	TakenAt      time.Time
	Digest       string
	Version      string
	Name         string
	TotalBerries uint32
	Gems         uint8
	CheatMode    bool
	AssistMode   bool
	VariantMode  bool
}

// AreaSnapshot stores the headline numbers of one area in a snapshot.
type AreaSnapshot struct {
	Area        Area
	RedBerries  uint32
	ACompleted  bool
	BCompleted  bool
	CCompleted  bool
	ASingleRun  *time.Duration
	FullClear   *time.Duration
	Cassette    bool
	Heart       bool
	GoldenCount int
}
