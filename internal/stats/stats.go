package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/verte-zerg/celestat/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderProgress prints one summary line per slot: snapshot count, berry
// progress between the first and last snapshot, and a berry sparkline.
func RenderProgress(w io.Writer, snapshots []model.Snapshot) error {
	if len(snapshots) == 0 {
		_, err := fmt.Fprintln(w, "No snapshots found.")
		return err
	}
	bySlot := map[string][]model.Snapshot{}
	for _, s := range snapshots {
		bySlot[s.Slot] = append(bySlot[s.Slot], s)
	}
	slots := make([]string, 0, len(bySlot))
	for slot := range bySlot {
		slots = append(slots, slot)
	}
	sort.Strings(slots)

	if _, err := fmt.Fprintln(w, "Progress"); err != nil {
		return err
	}
	for _, slot := range slots {
		list := bySlot[slot]
		first, last := list[0], list[len(list)-1]
		series := make([]float64, len(list))
		for i, s := range list {
			series[i] = float64(s.TotalBerries)
		}
		if _, err := fmt.Fprintf(w, "Slot %s (%s): %d snapshots, berries %d -> %d (%+d) %s\n",
			slot, last.Name, len(list), first.TotalBerries, last.TotalBerries,
			int64(last.TotalBerries)-int64(first.TotalBerries), Sparkline(series)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderSnapshotTable prints stored snapshots, oldest first.
func RenderSnapshotTable(w io.Writer, snapshots []model.Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	headers := []string{"ID", "Slot", "Taken", "Player", "Berries", "Gems", "Modes", "Digest"}
	rows := make([][]string, 0, len(snapshots))
	for _, s := range snapshots {
		rows = append(rows, []string{
			fmt.Sprintf("%d", s.ID),
			s.Slot,
			s.TakenAt.Local().Format(time.DateTime),
			s.Name,
			fmt.Sprintf("%d", s.TotalBerries),
			fmt.Sprintf("%d", s.Gems),
			modeFlags(s),
			shortDigest(s.Digest),
		})
	}
	rightAlign := map[int]bool{0: true, 4: true, 5: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderAreaTable prints the per-area numbers of one snapshot.
func RenderAreaTable(w io.Writer, title string, areas []model.AreaSnapshot) error {
	if len(areas) == 0 {
		_, err := fmt.Fprintln(w, "No area stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	headers := []string{"Area", "A", "B", "C", "Any%", "Full clear", "Berries", "Goldens", "Cassette", "Heart"}
	rows := make([][]string, 0, len(areas))
	for _, a := range areas {
		rows = append(rows, []string{
			strings.TrimSpace(a.Area.Label()),
			checkMark(a.ACompleted),
			checkMark(a.BCompleted),
			checkMark(a.CCompleted),
			optionalDuration(a.ASingleRun),
			optionalDuration(a.FullClear),
			fmt.Sprintf("%d/%d", a.RedBerries, a.Area.MaxRedBerries()),
			fmt.Sprintf("%d", a.GoldenCount),
			checkMark(a.Cassette),
			checkMark(a.Heart),
		})
	}
	rightAlign := map[int]bool{4: true, 5: true, 6: true, 7: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

func checkMark(ok bool) string {
	if ok {
		return "x"
	}
	return "-"
}

func modeFlags(s model.Snapshot) string {
	var flags []string
	if s.CheatMode {
		flags = append(flags, "cheat")
	}
	if s.AssistMode {
		flags = append(flags, "assist")
	}
	if s.VariantMode {
		flags = append(flags, "variant")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}

func shortDigest(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}
