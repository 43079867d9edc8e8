package statsui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/celestat/internal/model"
	"github.com/verte-zerg/celestat/internal/save"
	"github.com/verte-zerg/celestat/internal/store"
)

func testSlot(name, player string) save.Slot {
	return save.Slot{
		Path:   "/saves/" + name + ".celeste",
		Name:   name,
		Digest: "digest-" + name,
		Report: model.Report{
			Version:      "1.4.0.0",
			Name:         player,
			TotalBerries: 3,
			Gems:         1,
			AssistMode:   true,
			Areas:        []model.AreaStats{{Area: model.Prologue}, {Area: model.SumOfBests}},
		},
	}
}

func staticLoader(slots ...save.Slot) Loader {
	return func(context.Context) ([]save.Slot, error) {
		return slots, nil
	}
}

func sized(m *Model) *Model {
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

func TestViewShowsSlotTabs(t *testing.T) {
	broken := save.Slot{Path: "/saves/1.celeste", Name: "1", Err: errors.New("bad save")}
	m := sized(NewModel(staticLoader(testSlot("0", "Madeline"), broken), nil, model.HistoryFilter{}))

	if len(m.tabs) != 2 {
		t.Fatalf("expected 2 tabs without a store, got %v", m.tabs)
	}
	out := m.View()
	if !containsAll(out, []string{"0: Madeline", "Slot 1", "berries 3", "gems 1/6", "[assist]"}) {
		t.Fatalf("view missing expected segments:\n%s", out)
	}
	if strings.Contains(out, historyTabName) {
		t.Fatalf("expected no history tab without a store")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")})
	if m.activeTab != 1 {
		t.Fatalf("expected tab 1, got %d", m.activeTab)
	}
	if out := m.View(); !strings.Contains(out, "bad save") {
		t.Fatalf("expected slot error in view:\n%s", out)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")})
	if m.activeTab != 0 {
		t.Fatalf("expected tab navigation to wrap, got %d", m.activeTab)
	}
}

func TestViewBeforeResizeIsEmpty(t *testing.T) {
	m := NewModel(staticLoader(testSlot("0", "Madeline")), nil, model.HistoryFilter{})
	if out := m.View(); out != "" {
		t.Fatalf("expected empty view before the first resize, got %q", out)
	}
}

func TestLoaderError(t *testing.T) {
	m := sized(NewModel(func(context.Context) ([]save.Slot, error) {
		return nil, errors.New("saves directory missing")
	}, nil, model.HistoryFilter{}))
	out := m.View()
	if !containsAll(out, []string{"No save slots found.", "saves directory missing"}) {
		t.Fatalf("view missing expected segments:\n%s", out)
	}
}

func TestSlotUpdatedMsg(t *testing.T) {
	m := sized(NewModel(staticLoader(testSlot("0", "Madeline")), nil, model.HistoryFilter{}))

	m.Update(SlotUpdatedMsg{Slot: testSlot("0", "Theo")})
	if len(m.slots) != 1 || m.tabs[0] != "0: Theo" {
		t.Fatalf("expected slot 0 to be replaced, got tabs %v", m.tabs)
	}

	m.Update(SlotUpdatedMsg{Slot: testSlot("2", "Granny")})
	if len(m.slots) != 2 || m.tabs[1] != "2: Granny" {
		t.Fatalf("expected slot 2 to be added, got tabs %v", m.tabs)
	}
	if len(m.viewports) != 2 {
		t.Fatalf("expected 2 viewports, got %d", len(m.viewports))
	}
}

func TestQuitKeys(t *testing.T) {
	m := sized(NewModel(staticLoader(), nil, model.HistoryFilter{}))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestHistoryTabAndFilter(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "celestat.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	ctx := context.Background()
	for i, slot := range []string{"0", "1"} {
		snap := model.Snapshot{
			RunID:        "run",
			Slot:         slot,
			TakenAt:      time.Date(2024, 5, 1+i, 0, 0, 0, 0, time.UTC),
			Digest:       "d" + slot,
			Name:         "Madeline",
			TotalBerries: 10,
		}
		if _, _, err := st.InsertSnapshot(ctx, snap, nil); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	m := sized(NewModel(staticLoader(testSlot("0", "Madeline")), st, model.HistoryFilter{}))
	if len(m.tabs) != 2 || m.tabs[1] != historyTabName {
		t.Fatalf("expected a history tab, got %v", m.tabs)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")})
	if !m.onHistoryTab() {
		t.Fatalf("expected history tab to be active")
	}
	if out := m.View(); !strings.Contains(out, "snapshots=2") {
		t.Fatalf("expected 2 snapshots in summary:\n%s", out)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if !m.filterMode {
		t.Fatalf("expected q to be typed into the filter, not quit")
	}
	m.filterInputs[0].SetValue("1")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filterMode {
		t.Fatalf("expected filter to be applied")
	}
	if m.filter.Slot != "1" {
		t.Fatalf("expected slot filter 1, got %q", m.filter.Slot)
	}
	if out := m.View(); !containsAll(out, []string{"slot=1", "snapshots=1"}) {
		t.Fatalf("expected filtered summary:\n%s", out)
	}
}

func TestApplyFilterRejectsBadInput(t *testing.T) {
	m := NewModel(staticLoader(), nil, model.HistoryFilter{})
	m.filterInputs[1].SetValue("yesterday")
	if err := m.applyFilter(); err == nil {
		t.Fatalf("expected error for invalid date")
	}
	m.filterInputs[1].SetValue("2024-05-01")
	m.filterInputs[2].SetValue("-1")
	if err := m.applyFilter(); err == nil {
		t.Fatalf("expected error for negative last")
	}
	m.filterInputs[2].SetValue("5")
	if err := m.applyFilter(); err != nil {
		t.Fatalf("apply filter: %v", err)
	}
	if m.filter.Last != 5 || m.filter.Since == nil {
		t.Fatalf("unexpected filter %+v", m.filter)
	}
}

func TestTruncateLine(t *testing.T) {
	if got := truncateLine("abcdefgh", 6); got != "abc..." {
		t.Fatalf("expected abc..., got %q", got)
	}
	if got := truncateLine("abc", 2); got != "ab" {
		t.Fatalf("expected ab, got %q", got)
	}
	if got := truncateLine("abc", 10); got != "abc" {
		t.Fatalf("expected abc, got %q", got)
	}
}
