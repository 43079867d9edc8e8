package model

import "fmt"

// Area identifies one chapter of the game, or the synthetic sum-of-bests entry.
type Area int

// Areas in the order the game lists them in save data.
const (
	Prologue Area = iota
	ForsakenCity
	OldSite
	CelestialResort
	GoldenRidge
	MirrorTemple
	Reflection
	TheSummit
	Epilogue
	Core
	Farewell
	SumOfBests
)

type areaInfo struct {
	id           uint32
	name         string
	chapter      int
	unlockables  bool
	redBerries   uint32
	wingedGolden bool
}

// areaTable is the only place area metadata lives; lookups in both directions go through it.
var areaTable = [...]areaInfo{
	Prologue:        {id: 0, name: "Prologue"},
	ForsakenCity:    {id: 1, name: "Forsaken City", chapter: 1, unlockables: true, redBerries: 20, wingedGolden: true},
	OldSite:         {id: 2, name: "Old Site", chapter: 2, unlockables: true, redBerries: 18},
	CelestialResort: {id: 3, name: "Celestial Resort", chapter: 3, unlockables: true, redBerries: 25},
	GoldenRidge:     {id: 4, name: "Golden Ridge", chapter: 4, unlockables: true, redBerries: 29},
	MirrorTemple:    {id: 5, name: "Mirror Temple", chapter: 5, unlockables: true, redBerries: 31},
	Reflection:      {id: 6, name: "Reflection", chapter: 6, unlockables: true},
	TheSummit:       {id: 7, name: "The Summit", chapter: 7, unlockables: true, redBerries: 47},
	Epilogue:        {id: 8, name: "Epilogue"},
	Core:            {id: 9, name: "Core", chapter: 8, unlockables: true, redBerries: 5},
	Farewell:        {id: 10, name: "Farewell", chapter: 9, unlockables: true},
	SumOfBests:      {id: 100, name: "Sum of Bests", unlockables: true, redBerries: 20 + 18 + 25 + 29 + 31 + 47 + 5},
}

// StandardAreas returns every real area in canonical order.
func StandardAreas() []Area {
	out := make([]Area, 0, len(areaTable)-1)
	for a := Prologue; a < SumOfBests; a++ {
		out = append(out, a)
	}
	return out
}

// AreaFromID resolves the numeric ID used in save data.
func AreaFromID(id uint32) (Area, bool) {
	for a, info := range areaTable {
		if info.id == id {
			return Area(a), true
		}
	}
	return 0, false
}

func (a Area) info() areaInfo {
	if a < 0 || int(a) >= len(areaTable) {
		return areaInfo{name: fmt.Sprintf("Area(%d)", int(a))}
	}
	return areaTable[a]
}

// ID returns the numeric ID used in save data.
func (a Area) ID() uint32 { return a.info().id }

// Name returns the display name.
func (a Area) Name() string { return a.info().name }

// Chapter returns the number shown on the chapter select screen.
// Prologue, Epilogue and SumOfBests are unnumbered.
func (a Area) Chapter() (int, bool) {
	n := a.info().chapter
	return n, n > 0
}

// Label returns the name prefixed with the chapter number, aligned for listings.
func (a Area) Label() string {
	if n, ok := a.Chapter(); ok {
		return fmt.Sprintf("%d.  %s", n, a.Name())
	}
	return "    " + a.Name()
}

// HasUnlockables reports whether the area has a cassette, crystal heart and B/C sides.
func (a Area) HasUnlockables() bool { return a.info().unlockables }

// MaxRedBerries returns the number of red berries placed in the A side.
func (a Area) MaxRedBerries() uint32 { return a.info().redBerries }

// HasWingedGolden reports whether the A side holds a second golden berry on top of the regular one.
func (a Area) HasWingedGolden() bool { return a.info().wingedGolden }

// String implements fmt.Stringer.
func (a Area) String() string { return a.Name() }

// MarshalText encodes the area by display name.
func (a Area) MarshalText() ([]byte, error) {
	return []byte(a.Name()), nil
}

// UnmarshalText decodes an area from its display name.
func (a *Area) UnmarshalText(text []byte) error {
	for i, info := range areaTable {
		if info.name == string(text) {
			*a = Area(i)
			return nil
		}
	}
	return fmt.Errorf("unknown area %q", text)
}
