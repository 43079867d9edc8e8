package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/celestat/internal/model"
)

// Summary is the exported form of a report, with derived values filled in.
type Summary struct {
	Slot         string        `json:"slot,omitempty" yaml:"slot,omitempty"`
	Version      string        `json:"version" yaml:"version"`
	Name         string        `json:"name" yaml:"name"`
	CheatMode    bool          `json:"cheat_mode" yaml:"cheat_mode"`
	AssistMode   bool          `json:"assist_mode" yaml:"assist_mode"`
	VariantMode  bool          `json:"variant_mode" yaml:"variant_mode"`
	TotalBerries uint32        `json:"total_berries" yaml:"total_berries"`
	Gems         uint8         `json:"summit_gems" yaml:"summit_gems"`
	Areas        []AreaSummary `json:"areas" yaml:"areas"`
}

// AreaSummary is the exported form of one area.
type AreaSummary struct {
	Area          model.Area  `json:"area" yaml:"area"`
	ID            uint32      `json:"id" yaml:"id"`
	RedBerries    uint32      `json:"red_berries" yaml:"red_berries"`
	MaxRedBerries uint32      `json:"max_red_berries" yaml:"max_red_berries"`
	Cassette      bool        `json:"cassette" yaml:"cassette"`
	Heart         bool        `json:"heart" yaml:"heart"`
	FullClear     string      `json:"full_clear,omitempty" yaml:"full_clear,omitempty"`
	GoldenA       bool        `json:"golden_a" yaml:"golden_a"`
	GoldenB       bool        `json:"golden_b" yaml:"golden_b"`
	GoldenC       bool        `json:"golden_c" yaml:"golden_c"`
	WingedGolden  bool        `json:"winged_golden" yaml:"winged_golden"`
	A             SideSummary `json:"a" yaml:"a"`
	B             SideSummary `json:"b" yaml:"b"`
	C             SideSummary `json:"c" yaml:"c"`
}

// SideSummary is the exported form of one side.
type SideSummary struct {
	Completed    bool    `json:"completed" yaml:"completed"`
	Segmented    bool    `json:"segmented" yaml:"segmented"`
	SingleRun    string  `json:"single_run,omitempty" yaml:"single_run,omitempty"`
	FewestDashes *uint32 `json:"fewest_dashes,omitempty" yaml:"fewest_dashes,omitempty"`
	FewestDeaths *uint32 `json:"fewest_deaths,omitempty" yaml:"fewest_deaths,omitempty"`
	Berries      uint32  `json:"berries" yaml:"berries"`
}

// Summarize builds the exported form of a report.
func Summarize(slot string, r model.Report) (Summary, error) {
	out := Summary{
		Slot:         slot,
		Version:      r.Version,
		Name:         r.Name,
		CheatMode:    r.CheatMode,
		AssistMode:   r.AssistMode,
		VariantMode:  r.VariantMode,
		TotalBerries: r.TotalBerries,
		Gems:         r.Gems,
		Areas:        make([]AreaSummary, 0, len(r.Areas)),
	}
	for _, s := range r.Areas {
		red, err := s.RedBerries()
		if err != nil {
			return Summary{}, fmt.Errorf("%s: %w", s.Area.Name(), err)
		}
		out.Areas = append(out.Areas, AreaSummary{
			Area:          s.Area,
			ID:            s.Area.ID(),
			RedBerries:    red,
			MaxRedBerries: s.Area.MaxRedBerries(),
			Cassette:      s.A.Cassette,
			Heart:         s.A.Heart,
			FullClear:     optionalDuration(s.A.FullClear),
			GoldenA:       s.HasGoldenA(),
			GoldenB:       s.HasGoldenB(),
			GoldenC:       s.HasGoldenC(),
			WingedGolden:  s.HasWingedGolden(),
			A:             summarizeSide(s.A.SideStats),
			B:             summarizeSide(s.B),
			C:             summarizeSide(s.C),
		})
	}
	return out, nil
}

func summarizeSide(s model.SideStats) SideSummary {
	return SideSummary{
		Completed:    s.Completed,
		Segmented:    s.Segmented(),
		SingleRun:    optionalDuration(s.SingleRun),
		FewestDashes: s.FewestDashes,
		FewestDeaths: s.FewestDeaths,
		Berries:      s.BerryCount(),
	}
}

func optionalDuration(d *time.Duration) string {
	if d == nil {
		return ""
	}
	return strings.TrimSpace(FormatDuration(*d))
}

// RenderJSON writes summaries as an indented JSON array.
func RenderJSON(w io.Writer, summaries []Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summaries)
}

// RenderYAML writes summaries as a YAML sequence.
func RenderYAML(w io.Writer, summaries []Summary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(summaries); err != nil {
		return err
	}
	return enc.Close()
}
