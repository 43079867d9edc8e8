package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/celestat/internal/config"
	"github.com/verte-zerg/celestat/internal/model"
	"github.com/verte-zerg/celestat/internal/save"
	"github.com/verte-zerg/celestat/internal/stats"
)

func testSlot(name, player string) save.Slot {
	prologue := model.AreaStats{Area: model.Prologue}
	prologue.A.Completed = true
	return save.Slot{
		Path:   "/saves/" + name + ".celeste",
		Name:   name,
		Digest: "digest-" + name,
		Report: model.Report{
			Version: "1.4.0.0",
			Name:    player,
			Gems:    2,
			Areas:   []model.AreaStats{prologue, {Area: model.SumOfBests}},
		},
	}
}

func TestValidateFormat(t *testing.T) {
	for _, f := range reportFormats {
		require.NoError(t, validateFormat(f))
	}
	require.Error(t, validateFormat("csv"))
}

func TestWriteReportsJSONSkipsFailedSlots(t *testing.T) {
	slots := []save.Slot{
		testSlot("0", "Madeline"),
		{Path: "/saves/1.celeste", Name: "1", Err: errors.New("bad save")},
		testSlot("2", "Theo"),
	}
	var buf bytes.Buffer
	err := writeReports(&buf, slots, "json", stats.ColorNone, false)
	require.EqualError(t, err, "1 of 3 slots failed to decode")

	var summaries []stats.Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &summaries))
	require.Len(t, summaries, 2)
	require.Equal(t, "0", summaries[0].Slot)
	require.Equal(t, "Theo", summaries[1].Name)
	require.Equal(t, uint8(2), summaries[1].Gems)
}

func TestWriteReportsText(t *testing.T) {
	var buf bytes.Buffer
	err := writeReports(&buf, []save.Slot{testSlot("0", "Madeline"), testSlot("1", "Theo")}, "text", stats.ColorNone, false)
	require.NoError(t, err)
	out := buf.String()
	require.Contains(t, out, "Madeline")
	require.Contains(t, out, "Theo")
	require.NotContains(t, out, "\x1b[")
}

func TestWriteReportsYAMLAndMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReports(&buf, []save.Slot{testSlot("0", "Madeline")}, "yaml", stats.ColorNone, false))
	require.Contains(t, buf.String(), "name: Madeline")

	buf.Reset()
	require.NoError(t, writeReports(&buf, []save.Slot{testSlot("0", "Madeline")}, "markdown", stats.ColorNone, false))
	require.True(t, strings.HasPrefix(buf.String(), "# Madeline"), buf.String())
}

func TestParseSince(t *testing.T) {
	since, err := parseSince("")
	require.NoError(t, err)
	require.Nil(t, since)

	since, err = parseSince("2024-05-01")
	require.NoError(t, err)
	require.Equal(t, 2024, since.Year())
	require.Equal(t, 1, since.Day())

	_, err = parseSince("May 1st")
	require.Error(t, err)
}

func TestApplyConfigKeepsExplicitFlags(t *testing.T) {
	var format, color string
	cmd := &cobra.Command{}
	cmd.Flags().StringVar(&format, "format", "text", "")
	cmd.Flags().StringVar(&color, "color", "auto", "")
	require.NoError(t, cmd.Flags().Set("format", "html"))

	fromFile := "json"
	applyStringConfig(cmd, "format", &format, &fromFile)
	applyStringConfig(cmd, "color", &color, &fromFile)
	applyStringConfig(cmd, "color", &color, nil)
	require.Equal(t, "html", format)
	require.Equal(t, "json", color)
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	var cfg config.FileConfig
	md, err := toml.Decode(defaultConfigTemplate(), &cfg)
	require.NoError(t, err)
	require.Empty(t, md.Undecoded())
	require.Nil(t, cfg.Report.Format)
}

func TestHistoryCommandEmptyDatabase(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"history", "--db", filepath.Join(dir, "celestat.db")})
	require.NoError(t, root.Execute())
	require.Contains(t, out.String(), "No snapshots found.")
}

func TestConfigPrint(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	path := filepath.Join(home, "celestat", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("[report]\nformat = \"yaml\"\n"), 0o644))

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"config", "--print"})
	require.NoError(t, root.Execute())
	require.Contains(t, out.String(), `format = "yaml"`)
}

func TestReportCommandRejectsUnknownFormat(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"report", "--format", "csv", "--dir", t.TempDir()})
	err := root.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "--format must be one of")
}
