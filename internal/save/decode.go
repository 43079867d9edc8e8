// Package save decodes Celeste save files into stats reports.
package save

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/beevik/etree"

	"github.com/verte-zerg/celestat/internal/model"
	"github.com/verte-zerg/celestat/internal/savedoc"
	"github.com/verte-zerg/celestat/internal/stats"
)

// Element and attribute names are fixed by the game's save format.
const (
	elemSaveData      = "SaveData"
	elemVersion       = "Version"
	elemName          = "Name"
	elemCheatMode     = "CheatMode"
	elemAssistMode    = "AssistMode"
	elemVariantMode   = "VariantMode"
	elemTotalBerries  = "TotalStrawberries"
	elemSummitGems    = "SummitGems"
	elemAreas         = "Areas"
	elemAreaStats     = "AreaStats"
	elemModes         = "Modes"
	elemAreaModeStats = "AreaModeStats"
	elemStrawberries  = "Strawberries"

	attrID                 = "ID"
	attrCassette           = "Cassette"
	attrHeartGem           = "HeartGem"
	attrBestFullClearTime  = "BestFullClearTime"
	attrCompleted          = "Completed"
	attrSingleRunCompleted = "SingleRunCompleted"
	attrBestTime           = "BestTime"
	attrBestDashes         = "BestDashes"
	attrBestDeaths         = "BestDeaths"
	attrKey                = "Key"
)

const (
	singleRunMarker = "true"
	modeCount       = 3
	maxGems         = 6
	nanosPerTick    = 100
)

var (
	errUnknownArea  = errors.New("unknown area ID")
	errTooManyGems  = fmt.Errorf("more than %d summit gems", maxGems)
	errTimeOverflow = errors.New("time out of range")
)

// Decode parses raw save bytes and decodes the report.
func Decode(data []byte) (model.Report, error) {
	root, err := savedoc.Parse(data)
	if err != nil {
		return model.Report{}, err
	}
	return DecodeDocument(root)
}

// DecodeDocument decodes a parsed SaveData document. Any violation aborts the
// whole decode; there is no partial report.
func DecodeDocument(root *etree.Element) (model.Report, error) {
	if err := savedoc.RequireElement(root, elemSaveData); err != nil {
		return model.Report{}, err
	}

	var r model.Report
	var err error
	if r.Version, err = savedoc.RequireChildText(root, elemVersion, savedoc.String); err != nil {
		return model.Report{}, err
	}
	if r.Name, err = savedoc.RequireChildText(root, elemName, savedoc.String); err != nil {
		return model.Report{}, err
	}
	if r.Gems, err = decodeGems(root); err != nil {
		return model.Report{}, err
	}
	if r.CheatMode, err = savedoc.RequireChildText(root, elemCheatMode, savedoc.Bool); err != nil {
		return model.Report{}, err
	}
	if r.AssistMode, err = savedoc.RequireChildText(root, elemAssistMode, savedoc.Bool); err != nil {
		return model.Report{}, err
	}
	if r.VariantMode, err = savedoc.RequireChildText(root, elemVariantMode, savedoc.Bool); err != nil {
		return model.Report{}, err
	}
	if r.TotalBerries, err = savedoc.RequireChildText(root, elemTotalBerries, savedoc.Uint32); err != nil {
		return model.Report{}, err
	}

	areasEl, err := savedoc.RequireChild(root, elemAreas)
	if err != nil {
		return model.Report{}, err
	}
	children := areasEl.ChildElements()
	areas := make([]model.AreaStats, 0, len(children)+1)
	for _, child := range children {
		area, err := DecodeArea(child)
		if err != nil {
			return model.Report{}, err
		}
		if area.Area == model.Epilogue {
			continue
		}
		areas = append(areas, area)
	}

	best, err := stats.SumOfBests(areas)
	if err != nil {
		return model.Report{}, err
	}
	r.Areas = append(areas, best)
	return r, nil
}

// decodeGems counts collected summit gems. A missing section means none.
func decodeGems(root *etree.Element) (uint8, error) {
	el := savedoc.OptionalChild(root, elemSummitGems)
	if el == nil {
		return 0, nil
	}
	count := 0
	for _, gem := range el.ChildElements() {
		if gem.Text() == "true" {
			count++
		}
	}
	if count > maxGems {
		return 0, savedoc.NewFormatError(root, elemSummitGems, fmt.Sprint(count), errTooManyGems)
	}
	return uint8(count), nil
}

// DecodeArea decodes one AreaStats element.
func DecodeArea(el *etree.Element) (model.AreaStats, error) {
	if err := savedoc.RequireElement(el, elemAreaStats); err != nil {
		return model.AreaStats{}, err
	}
	id, err := savedoc.RequireAttr(el, attrID, savedoc.Uint32)
	if err != nil {
		return model.AreaStats{}, err
	}
	area, ok := model.AreaFromID(id)
	if !ok || area == model.SumOfBests {
		return model.AreaStats{}, savedoc.NewFormatError(el, attrID, fmt.Sprint(id), errUnknownArea)
	}

	modesEl, err := savedoc.RequireChild(el, elemModes)
	if err != nil {
		return model.AreaStats{}, err
	}
	modes := modesEl.ChildElements()
	if len(modes) != modeCount {
		return model.AreaStats{}, savedoc.NewStructureError(modesEl, elemAreaModeStats,
			fmt.Sprintf("expected exactly %d modes, found %d", modeCount, len(modes)))
	}

	var sides [modeCount]model.SideStats
	for i, mode := range modes {
		if sides[i], err = DecodeSide(mode); err != nil {
			return model.AreaStats{}, err
		}
	}

	out := model.AreaStats{Area: area, B: sides[1], C: sides[2]}
	out.A.SideStats = sides[0]
	if out.A.Cassette, err = savedoc.RequireAttr(el, attrCassette, savedoc.Bool); err != nil {
		return model.AreaStats{}, err
	}
	if out.A.Heart, err = savedoc.RequireAttr(modes[0], attrHeartGem, savedoc.Bool); err != nil {
		return model.AreaStats{}, err
	}
	fullClear, err := requireTicks(modes[0], attrBestFullClearTime)
	if err != nil {
		return model.AreaStats{}, err
	}
	if fullClear != 0 {
		out.A.FullClear = &fullClear
	}

	if _, err := out.RedBerries(); err != nil {
		return model.AreaStats{}, savedoc.NewFormatError(modes[0], elemStrawberries, fmt.Sprint(out.A.BerryCount()), err)
	}
	return out, nil
}

// DecodeSide decodes one AreaModeStats element.
func DecodeSide(el *etree.Element) (model.SideStats, error) {
	if err := savedoc.RequireElement(el, elemAreaModeStats); err != nil {
		return model.SideStats{}, err
	}
	var s model.SideStats
	var err error
	if s.Completed, err = savedoc.RequireAttr(el, attrCompleted, savedoc.Bool); err != nil {
		return model.SideStats{}, err
	}

	if savedoc.AttrEquals(el, attrSingleRunCompleted, singleRunMarker) {
		best, err := requireTicks(el, attrBestTime)
		if err != nil {
			return model.SideStats{}, err
		}
		dashes, err := savedoc.RequireAttr(el, attrBestDashes, savedoc.Uint32)
		if err != nil {
			return model.SideStats{}, err
		}
		deaths, err := savedoc.RequireAttr(el, attrBestDeaths, savedoc.Uint32)
		if err != nil {
			return model.SideStats{}, err
		}
		s.SingleRun = &best
		s.FewestDashes = &dashes
		s.FewestDeaths = &deaths
	}

	berriesEl, err := savedoc.RequireChild(el, elemStrawberries)
	if err != nil {
		return model.SideStats{}, err
	}
	entries := berriesEl.ChildElements()
	s.Berries = make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		key, err := savedoc.RequireAttr(entry, attrKey, savedoc.String)
		if err != nil {
			return model.SideStats{}, err
		}
		s.Berries[key] = struct{}{}
	}
	return s, nil
}

// requireTicks reads a time attribute stored in 100ns ticks.
func requireTicks(el *etree.Element, name string) (time.Duration, error) {
	ticks, err := savedoc.RequireAttr(el, name, savedoc.Uint64)
	if err != nil {
		return 0, err
	}
	if ticks > math.MaxInt64/nanosPerTick {
		return 0, savedoc.NewFormatError(el, name, fmt.Sprint(ticks), errTimeOverflow)
	}
	return TicksToDuration(ticks), nil
}

// TicksToDuration converts 100ns save-file ticks into a duration.
func TicksToDuration(ticks uint64) time.Duration {
	return time.Duration(ticks * nanosPerTick)
}
