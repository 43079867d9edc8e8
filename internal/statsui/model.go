// Package statsui provides the Bubble Tea save viewer.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/celestat/internal/model"
	"github.com/verte-zerg/celestat/internal/save"
	"github.com/verte-zerg/celestat/internal/stats"
	"github.com/verte-zerg/celestat/internal/store"
)

const historyTabName = "History"

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Loader reads every save slot.
type Loader func(ctx context.Context) ([]save.Slot, error)

// SlotUpdatedMsg replaces one slot with a freshly loaded copy.
type SlotUpdatedMsg struct {
	Slot save.Slot
}

// Model implements the Bubble Tea save viewer. One tab per slot shows its
// report; a trailing history tab lists archived snapshots when a store is set.
type Model struct {
	load   Loader
	store  *store.Store
	filter model.HistoryFilter

	slots   []save.Slot
	history stats.History
	errMsg  string

	tabs         []string
	activeTab    int
	viewports    []viewport.Model
	historyTable table.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a viewer. st may be nil, in which case there is no history tab.
func NewModel(load Loader, st *store.Store, filter model.HistoryFilter) *Model {
	m := &Model{
		load:   load,
		store:  st,
		filter: filter,
	}
	m.initInputs()
	m.historyTable = buildHistoryTable(nil, 0, 1)
	m.reload()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case SlotUpdatedMsg:
		m.replaceSlot(msg.Slot)
		m.refreshHistory()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || (!m.filterMode && msg.String() == "q") {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "r":
			m.reload()
			return m, nil
		case "/":
			if m.store == nil {
				return m, nil
			}
			return m.startFilter()
		case "g", "home":
			if m.onHistoryTab() {
				m.historyTable.GotoTop()
			} else if len(m.viewports) > 0 {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.onHistoryTab() {
				m.historyTable.GotoBottom()
			} else if len(m.viewports) > 0 {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.onHistoryTab() {
				var cmd tea.Cmd
				m.historyTable, cmd = m.historyTable.Update(msg)
				return m, cmd
			}
			if len(m.viewports) == 0 {
				return m, nil
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Slot: "),
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Last: "),
	}
	m.setInputsFromFilter()
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromFilter() {
	m.filterInputs[0].SetValue(m.filter.Slot)
	if m.filter.Since != nil {
		m.filterInputs[1].SetValue(m.filter.Since.Format("2006-01-02"))
	} else {
		m.filterInputs[1].SetValue("")
	}
	if m.filter.Last > 0 {
		m.filterInputs[2].SetValue(strconv.Itoa(m.filter.Last))
	} else {
		m.filterInputs[2].SetValue("")
	}
}

func (m *Model) reload() {
	slots, err := m.load(context.Background())
	if err != nil {
		m.errMsg = err.Error()
	} else {
		m.errMsg = ""
		m.slots = slots
	}
	m.rebuildTabs()
	m.refreshHistory()
	m.renderTabContents()
}

func (m *Model) replaceSlot(slot save.Slot) {
	replaced := false
	for i := range m.slots {
		if m.slots[i].Name == slot.Name {
			m.slots[i] = slot
			replaced = true
			break
		}
	}
	if !replaced {
		m.slots = append(m.slots, slot)
	}
	m.rebuildTabs()
}

func (m *Model) rebuildTabs() {
	m.tabs = m.tabs[:0]
	for _, slot := range m.slots {
		m.tabs = append(m.tabs, slotTabName(slot))
	}
	if m.store != nil {
		m.tabs = append(m.tabs, historyTabName)
	}
	if len(m.viewports) != len(m.slots) {
		m.viewports = make([]viewport.Model, len(m.slots))
		for i := range m.viewports {
			m.viewports[i] = viewport.New(0, 0)
		}
	}
	if m.activeTab >= len(m.tabs) {
		m.activeTab = 0
	}
	m.updateLayout()
}

func slotTabName(slot save.Slot) string {
	if slot.Err != nil || slot.Report.Name == "" {
		return "Slot " + slot.Name
	}
	return fmt.Sprintf("%s: %s", slot.Name, slot.Report.Name)
}

func (m *Model) refreshHistory() {
	if m.store == nil {
		return
	}
	history, err := stats.BuildHistory(context.Background(), m.store, m.filter)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.history = history
	_, bodyHeight, _ := m.layoutHeights()
	m.historyTable = buildHistoryTable(history.Snapshots, m.width, bodyHeight)
}

func (m *Model) onHistoryTab() bool {
	return m.store != nil && m.activeTab == len(m.slots)
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.historyTable.SetWidth(m.width)
	m.historyTable.SetHeight(maxInt(1, vpHeight-1))
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.onHistoryTab() {
		m.historyTable.Focus()
	} else {
		m.historyTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	summary := padLines(m.renderSummary(), m.width)
	return tabs + "\n" + summary
}

func (m *Model) renderSummary() string {
	if m.onHistoryTab() {
		slot := m.filter.Slot
		if slot == "" {
			slot = "any"
		}
		since := "any"
		if m.filter.Since != nil {
			since = m.filter.Since.Format("2006-01-02")
		}
		last := "all"
		if m.filter.Last > 0 {
			last = strconv.Itoa(m.filter.Last)
		}
		summary := fmt.Sprintf("Filter: slot=%s  since=%s  last=%s  snapshots=%d", slot, since, last, len(m.history.Snapshots))
		return headerStyle.Render(truncateLine(summary, m.width))
	}
	if len(m.slots) == 0 {
		return headerStyle.Render("No save slots found.")
	}
	slot := m.slots[m.activeTab]
	if slot.Err != nil {
		return headerStyle.Render(truncateLine(slot.Path, m.width))
	}
	r := slot.Report
	summary := fmt.Sprintf("%s  version %s  berries %d  gems %d/6%s", slot.Path, r.Version, r.TotalBerries, r.Gems, modeSuffix(r))
	return headerStyle.Render(truncateLine(summary, m.width))
}

func modeSuffix(r model.Report) string {
	var modes []string
	if r.CheatMode {
		modes = append(modes, "cheat")
	}
	if r.AssistMode {
		modes = append(modes, "assist")
	}
	if r.VariantMode {
		modes = append(modes, "variant")
	}
	if len(modes) == 0 {
		return ""
	}
	return "  [" + strings.Join(modes, ", ") + "]"
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Reload: r  Quit: q"
	if m.store != nil {
		help = "Nav: left/right  Scroll: up/down/pgup/pgdn  Reload: r  History filter: /  Quit: q"
	}
	return headerStyle.Render(help)
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderFilterForm() string {
	lines := []string{"History filter (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	if m.onHistoryTab() {
		if len(m.history.Snapshots) == 0 {
			return fitLines("No snapshots found. Run `celestat archive` to record one.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.historyTable.View()), m.width, height)
	}
	if len(m.viewports) == 0 {
		return fitLines("No save slots found.", m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) renderTabContents() {
	for i, slot := range m.slots {
		if i >= len(m.viewports) {
			break
		}
		m.viewports[i].SetContent(renderSlot(slot))
	}
}

func renderSlot(slot save.Slot) string {
	if slot.Err != nil {
		return errorStyle.Render(slot.Err.Error())
	}
	var buf bytes.Buffer
	if err := stats.RenderText(&buf, slot.Report, true); err != nil {
		return errorStyle.Render(err.Error())
	}
	return buf.String()
}

func buildHistoryTable(snapshots []model.Snapshot, width, height int) table.Model {
	columns := []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Slot", Width: 5},
		{Title: "Taken", Width: 19},
		{Title: "Player", Width: 12},
		{Title: "Berries", Width: 7},
		{Title: "Gems", Width: 4},
		{Title: "Digest", Width: 12},
	}
	rows := make([]table.Row, 0, len(snapshots))
	// Newest first.
	for i := len(snapshots) - 1; i >= 0; i-- {
		s := snapshots[i]
		digest := s.Digest
		if len(digest) > 12 {
			digest = digest[:12]
		}
		rows = append(rows, table.Row{
			strconv.FormatInt(s.ID, 10),
			s.Slot,
			s.TakenAt.Local().Format(time.DateTime),
			s.Name,
			strconv.FormatUint(uint64(s.TotalBerries), 10),
			strconv.Itoa(int(s.Gems)),
			digest,
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
	)
	if width > 0 {
		t.SetWidth(width)
	}
	t.SetStyles(historyTableStyles())
	return t
}

func historyTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromFilter()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.refreshHistory()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if count == 0 {
		return nil
	}
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.filterIndex = idx
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	slot := strings.TrimSpace(m.filterInputs[0].Value())
	sinceInput := strings.TrimSpace(m.filterInputs[1].Value())
	var since *time.Time
	if sinceInput != "" {
		parsed, err := time.ParseInLocation("2006-01-02", sinceInput, time.Local)
		if err != nil {
			return fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		since = &parsed
	}

	lastInput := strings.TrimSpace(m.filterInputs[2].Value())
	last := 0
	if lastInput != "" {
		parsed, err := strconv.Atoi(lastInput)
		if err != nil || parsed < 0 {
			return fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		last = parsed
	}

	m.filter = model.HistoryFilter{
		Slot:  slot,
		Since: since,
		Last:  last,
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
