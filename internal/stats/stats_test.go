package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/celestat/internal/model"
)

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil); got != "" {
		t.Fatalf("expected empty sparkline, got %q", got)
	}
	if got := Sparkline([]float64{3, 3, 3}); got != "+++" {
		t.Fatalf("expected flat sparkline, got %q", got)
	}
	got := Sparkline([]float64{0, 50, 100})
	if len(got) != 3 || got[0] != ' ' || got[2] != '@' {
		t.Fatalf("unexpected sparkline %q", got)
	}
}

func snapshotsFixture() []model.Snapshot {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return []model.Snapshot{
		{ID: 1, Slot: "0", TakenAt: base, Name: "Madeline", TotalBerries: 10, Digest: strings.Repeat("a", 64)},
		{ID: 2, Slot: "1", TakenAt: base.Add(time.Hour), Name: "Theo", TotalBerries: 3, AssistMode: true, Digest: "short"},
		{ID: 3, Slot: "0", TakenAt: base.Add(2 * time.Hour), Name: "Madeline", TotalBerries: 25, Gems: 2},
	}
}

func TestRenderProgress(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderProgress(&buf, snapshotsFixture()); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Slot 0 (Madeline): 2 snapshots, berries 10 -> 25 (+15)") {
		t.Fatalf("unexpected progress output:\n%s", out)
	}
	if !strings.Contains(out, "Slot 1 (Theo): 1 snapshots, berries 3 -> 3 (+0)") {
		t.Fatalf("unexpected progress output:\n%s", out)
	}

	buf.Reset()
	if err := RenderProgress(&buf, nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.String() != "No snapshots found.\n" {
		t.Fatalf("unexpected empty output %q", buf.String())
	}
}

func TestRenderSnapshotTable(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSnapshotTable(&buf, snapshotsFixture()); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header and 3 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "ID Slot") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[1], "aaaaaaaaaaaa") || strings.Contains(lines[1], strings.Repeat("a", 13)) {
		t.Fatalf("expected shortened digest in %q", lines[1])
	}
	if !strings.Contains(lines[2], "assist") {
		t.Fatalf("expected mode flags in %q", lines[2])
	}
}

func TestRenderAreaTable(t *testing.T) {
	areas := []model.AreaSnapshot{
		{Area: model.Prologue, ACompleted: true, ASingleRun: dur(2 * time.Minute)},
		{Area: model.ForsakenCity, ACompleted: true, RedBerries: 20, Cassette: true, GoldenCount: 2},
	}
	var buf bytes.Buffer
	if err := RenderAreaTable(&buf, "Latest", areas); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Latest\n", "Prologue", "Forsaken City", "20/20", "2m00.000s"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}
