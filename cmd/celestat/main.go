// Package main provides the CLI entrypoint for celestat.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/verte-zerg/celestat/internal/archive"
	"github.com/verte-zerg/celestat/internal/config"
	"github.com/verte-zerg/celestat/internal/logging"
	"github.com/verte-zerg/celestat/internal/model"
	"github.com/verte-zerg/celestat/internal/save"
	"github.com/verte-zerg/celestat/internal/stats"
	"github.com/verte-zerg/celestat/internal/statsui"
	"github.com/verte-zerg/celestat/internal/store"
	"github.com/verte-zerg/celestat/internal/watch"
)

const (
	defaultFormat     = "text"
	defaultColor      = "auto"
	defaultWorkers    = 4
	defaultDebounceMs = 500
	markdownWrap      = 100
)

var reportFormats = []string{"text", "html", "markdown", "json", "yaml"}

var (
	verbose bool
	logger  = zap.NewNop()
	runID   string
	fileCfg config.FileConfig

	savesDir string
	workers  int
	dbPath   string

	reportFormat string
	reportColor  string
	reportCopy   bool

	historySlot  string
	historySince string
	historyLast  int

	watchDebounceMs int
	watchArchive    bool

	viewWatch bool

	configPrint bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "celestat [files...]",
		Short:             "Celeste save file statistics",
		SilenceUsage:      true,
		SilenceErrors:     false,
		Args:              cobra.ArbitraryArgs,
		PersistentPreRunE: setup,
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = logger.Sync()
		},
		RunE: runReportCmd,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&savesDir, "dir", config.DefaultSavesDir(), "saves directory")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", defaultWorkers, "number of slots decoded in parallel")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", config.DefaultDBPath(), "snapshot database path")
	addReportFlags(rootCmd)

	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newArchiveCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newViewCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	fileCfg = cfg
	applyStringConfig(cmd, "dir", &savesDir, fileCfg.Saves.Dir)
	applyIntConfig(cmd, "workers", &workers, fileCfg.Saves.Workers)
	applyStringConfig(cmd, "db", &dbPath, fileCfg.History.DB)

	level := ""
	if fileCfg.Log.Level != nil {
		level = *fileCfg.Log.Level
	}
	return initLogger(level)
}

func initLogger(level string) error {
	base, err := logging.New(level, verbose)
	if err != nil {
		return err
	}
	runID = uuid.NewString()
	logger = base.With(zap.String("run", runID))
	return nil
}

func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&reportFormat, "format", "f", defaultFormat, "output format: "+strings.Join(reportFormats, ", "))
	cmd.Flags().StringVar(&reportColor, "color", defaultColor, "color mode: auto, always, never or html")
	cmd.Flags().BoolVar(&reportCopy, "copy", false, "also copy the plain output to the clipboard")
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [files...]",
		Short: "Print statistics for save files",
		Long:  "Print statistics for the named save files, or for every slot in the saves directory.",
		Args:  cobra.ArbitraryArgs,
		RunE:  runReportCmd,
	}
	addReportFlags(cmd)
	return cmd
}

func runReportCmd(cmd *cobra.Command, args []string) error {
	applyStringConfig(cmd, "format", &reportFormat, fileCfg.Report.Format)
	applyStringConfig(cmd, "color", &reportColor, fileCfg.Report.Color)
	if err := validateFormat(reportFormat); err != nil {
		return err
	}

	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	mode, err := stats.ResolveColorMode(reportColor, os.LookupEnv, isTTY)
	if err != nil {
		return err
	}
	if reportCopy {
		mode = stats.ColorNone
	}

	ctx := cmd.Context()
	slots, err := loadSlots(ctx, args)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		return fmt.Errorf("no save slots found in %s", savesDir)
	}

	var buf bytes.Buffer
	out := cmd.OutOrStdout()
	if reportCopy {
		out = io.MultiWriter(out, &buf)
	}
	renderErr := writeReports(out, slots, reportFormat, mode, isTTY)
	if reportCopy && buf.Len() > 0 {
		if err := clipboard.WriteAll(buf.String()); err != nil {
			logger.Warn("failed to copy report to clipboard", zap.Error(err))
		} else {
			logger.Info("copied report to clipboard", zap.Int("bytes", buf.Len()))
		}
	}
	return renderErr
}

func loadSlots(ctx context.Context, paths []string) ([]save.Slot, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(paths) > 0 {
		return save.LoadFiles(ctx, paths, workers)
	}
	return save.LoadDir(ctx, savesDir, workers)
}

func validateFormat(format string) error {
	for _, f := range reportFormats {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("--format must be one of %s", strings.Join(reportFormats, ", "))
}

// writeReports renders every decoded slot. Slots that failed to decode are
// logged and counted; the others are still rendered.
func writeReports(w io.Writer, slots []save.Slot, format string, mode stats.ColorMode, isTTY bool) error {
	var ok []save.Slot
	failed := 0
	for _, slot := range slots {
		if slot.Err != nil {
			failed++
			logger.Error("failed to decode slot", zap.String("path", slot.Path), zap.Error(slot.Err))
			continue
		}
		ok = append(ok, slot)
	}

	var err error
	switch format {
	case "json", "yaml":
		err = writeSummaries(w, ok, format)
	default:
		err = writeDocuments(w, ok, format, mode, isTTY)
	}
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d slots failed to decode", failed, len(slots))
	}
	return nil
}

func writeSummaries(w io.Writer, slots []save.Slot, format string) error {
	summaries := make([]stats.Summary, 0, len(slots))
	for _, slot := range slots {
		s, err := stats.Summarize(slot.Name, slot.Report)
		if err != nil {
			return fmt.Errorf("%s: %w", slot.Path, err)
		}
		summaries = append(summaries, s)
	}
	if format == "yaml" {
		return stats.RenderYAML(w, summaries)
	}
	return stats.RenderJSON(w, summaries)
}

func writeDocuments(w io.Writer, slots []save.Slot, format string, mode stats.ColorMode, isTTY bool) error {
	for i, slot := range slots {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		var err error
		switch {
		case format == "html" || (format == "text" && mode == stats.ColorHTML):
			err = stats.RenderHTML(w, slot.Report)
		case format == "markdown":
			err = writeMarkdown(w, slot.Report, isTTY && mode == stats.ColorTerminal)
		default:
			err = stats.RenderText(w, slot.Report, mode == stats.ColorTerminal)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", slot.Path, err)
		}
	}
	return nil
}

func writeMarkdown(w io.Writer, r model.Report, styled bool) error {
	var md strings.Builder
	if err := stats.RenderMarkdown(&md, r); err != nil {
		return err
	}
	if !styled {
		_, err := io.WriteString(w, md.String())
		return err
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(markdownWrap),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := renderer.Render(md.String())
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

func openStore() (*store.Store, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logger.Warn("failed to close db", zap.Error(cerr))
	}
}

func newArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive [files...]",
		Short: "Store a snapshot of every save slot",
		Args:  cobra.ArbitraryArgs,
		RunE:  runArchiveCmd,
	}
}

func runArchiveCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	slots, err := loadSlots(ctx, args)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	added, err := archive.New(st, runID, logger).ArchiveAll(ctx, slots)
	if err != nil {
		return err
	}
	if added == 0 {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "No changes to save")
	} else {
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Archived %d snapshot(s)\n", added)
	}
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show archived snapshots",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historySlot, "slot", "", "slot filter")
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N snapshots")
	return cmd
}

func parseSince(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --since value: %w", err)
	}
	return &parsed, nil
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	since, err := parseSince(historySince)
	if err != nil {
		return err
	}
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	filter := model.HistoryFilter{Slot: historySlot, Since: since, Last: historyLast}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	history, err := stats.BuildHistory(cmd.Context(), st, filter)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	return writeHistory(cmd.OutOrStdout(), history)
}

func writeHistory(w io.Writer, history stats.History) error {
	if err := stats.RenderProgress(w, history.Snapshots); err != nil {
		return err
	}
	if err := stats.RenderSnapshotTable(w, history.Snapshots); err != nil {
		return err
	}
	slots := make([]string, 0, len(history.Latest))
	for slot := range history.Latest {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	for _, slot := range slots {
		title := fmt.Sprintf("Slot %s, snapshot #%d", slot, history.LatestIDs[slot])
		if err := stats.RenderAreaTable(w, title, history.Latest[slot]); err != nil {
			return err
		}
	}
	return nil
}

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-read save slots whenever the game writes them",
		Args:  cobra.NoArgs,
		RunE:  runWatchCmd,
	}
	cmd.Flags().IntVar(&watchDebounceMs, "debounce-ms", defaultDebounceMs, "quiet period before a changed slot is read")
	cmd.Flags().BoolVar(&watchArchive, "archive", true, "store a snapshot of every changed slot")
	return cmd
}

func runWatchCmd(cmd *cobra.Command, _ []string) error {
	applyIntConfig(cmd, "debounce-ms", &watchDebounceMs, fileCfg.Watch.DebounceMs)
	applyBoolConfig(cmd, "archive", &watchArchive, fileCfg.Watch.Archive)
	if watchDebounceMs <= 0 {
		return fmt.Errorf("--debounce-ms must be > 0")
	}
	applyStringConfig(cmd, "color", &reportColor, fileCfg.Report.Color)
	mode, err := stats.ResolveColorMode(reportColor, os.LookupEnv, term.IsTerminal(int(os.Stdout.Fd())))
	if err != nil {
		return err
	}

	var archiver *archive.Archiver
	if watchArchive {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore(st)
		archiver = archive.New(st, runID, logger)
	}

	out := cmd.OutOrStdout()
	handler := func(ctx context.Context, slot save.Slot) {
		if slot.Err != nil {
			return
		}
		if err := stats.RenderText(out, slot.Report, mode == stats.ColorTerminal); err != nil {
			logger.Error("failed to render slot", zap.String("slot", slot.Name), zap.Error(err))
		}
		if archiver == nil {
			return
		}
		if _, err := archiver.Archive(ctx, slot); err != nil {
			logger.Error("failed to archive slot", zap.String("slot", slot.Name), zap.Error(err))
		}
	}

	w, err := watch.New(savesDir, time.Duration(watchDebounceMs)*time.Millisecond, handler, logger)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return w.Run(ctx)
}

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse save slots and history interactively",
		Args:  cobra.NoArgs,
		RunE:  runViewCmd,
	}
	cmd.Flags().BoolVar(&viewWatch, "watch", false, "refresh slots when the game writes them")
	return cmd
}

func runViewCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	loader := func(ctx context.Context) ([]save.Slot, error) {
		return save.LoadDir(ctx, savesDir, workers)
	}
	m := statsui.NewModel(loader, st, model.HistoryFilter{})
	program := tea.NewProgram(m, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if viewWatch {
		applyIntConfig(cmd, "debounce-ms", &watchDebounceMs, fileCfg.Watch.DebounceMs)
		archiver := archive.New(st, runID, logger)
		w, err := watch.New(savesDir, time.Duration(watchDebounceMs)*time.Millisecond, func(ctx context.Context, slot save.Slot) {
			if slot.Err == nil {
				if _, err := archiver.Archive(ctx, slot); err != nil {
					logger.Error("failed to archive slot", zap.String("slot", slot.Name), zap.Error(err))
				}
			}
			program.Send(statsui.SlotUpdatedMsg{Slot: slot})
		}, logger)
		if err != nil {
			return err
		}
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := w.Run(ctx); err != nil {
				logger.Error("watcher stopped", zap.Error(err))
			}
		}()
		defer func() {
			cancel()
			<-done
		}()
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run viewer: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		// The config file may be broken; do not load it before editing.
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initLogger("")
		},
		RunE: runConfigCmd,
	}
	cmd.Flags().BoolVar(&configPrint, "print", false, "print the values set in the config file instead of opening it")
	return cmd
}

func runConfigCmd(cmd *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if configPrint {
		cfg, err := config.LoadConfig(path)
		if err != nil {
			return err
		}
		return config.Encode(cmd.OutOrStdout(), cfg)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		logger.Info("created config", zap.String("path", path))
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	c := exec.Command(parts[0], append(parts[1:], path)...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# celestat configuration
# Uncomment a value to enable it. CLI flags override config values.

[saves]
# dir = %q
# workers = %d            # Slots decoded in parallel

[report]
# format = %q          # text, html, markdown, json or yaml
# color = %q           # auto, always, never or html

[history]
# db = %q

[watch]
# debounce-ms = %d        # Quiet period before a changed slot is read
# archive = true          # Store a snapshot of every changed slot

[log]
# level = "info"          # debug, info, warn or error
`,
		config.DefaultSavesDir(),
		defaultWorkers,
		defaultFormat,
		defaultColor,
		config.DefaultDBPath(),
		defaultDebounceMs,
	)
}
