package stats

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/celestat/internal/model"
)

const (
	cellWidth    = 19
	dividerWidth = 69
)

type gradedCell struct {
	left  string
	right string
	grade Grade
}

type reportRow struct {
	side  string
	grade Grade
	cells [3]gradedCell
}

type section struct {
	title string
	rows  []reportRow
}

type document struct {
	name       string
	berries    uint32
	berryGrade Grade
	sections   []section
}

// layout turns a report into rows of graded cells. Areas without any completed
// side are left out.
func layout(r model.Report) (document, error) {
	grade, err := BerryGrade(r.TotalBerries)
	if err != nil {
		return document{}, err
	}
	doc := document{name: r.Name, berries: r.TotalBerries, berryGrade: grade}
	for _, s := range r.Areas {
		if !s.A.Completed && !s.B.Completed && !s.C.Completed {
			continue
		}
		sec := section{title: s.Area.Label()}
		if s.Area == model.Prologue {
			sec.rows = append(sec.rows, prologueRow(s))
			doc.sections = append(doc.sections, sec)
			continue
		}
		if s.A.Completed {
			sec.rows = append(sec.rows, aSideRow(s))
			if s.Area.HasUnlockables() {
				full, err := fullClearRow(s, r.Gems)
				if err != nil {
					return document{}, fmt.Errorf("%s: %w", s.Area.Name(), err)
				}
				sec.rows = append(sec.rows, full)
			}
		}
		if s.B.Completed {
			sec.rows = append(sec.rows, sideRow("B", GradeGood, s.B, s.HasGoldenB()))
		}
		if s.C.Completed {
			sec.rows = append(sec.rows, sideRow("C", GradeBest, s.C, s.HasGoldenC()))
		}
		doc.sections = append(doc.sections, sec)
	}
	return doc, nil
}

func segmentedRow(side string, grade Grade) reportRow {
	seg := gradedCell{left: "segmented", grade: GradeSubpar}
	return reportRow{side: side, grade: grade, cells: [3]gradedCell{seg, seg, seg}}
}

func timeCell(label string, s model.SideStats) gradedCell {
	return gradedCell{left: label, right: FormatDuration(*s.SingleRun), grade: GradeNormal}
}

func countCell(label string, n uint32) gradedCell {
	return gradedCell{left: label, right: fmt.Sprintf("%4d", n), grade: CountGrade(n)}
}

func prologueRow(s model.AreaStats) reportRow {
	if s.A.Segmented() {
		return segmentedRow("p", GradeIrrelevant)
	}
	return reportRow{side: "p", grade: GradeIrrelevant, cells: [3]gradedCell{
		timeCell("any%:", s.A.SideStats),
		{left: "can't dash", grade: GradeIrrelevant},
		countCell("min deaths:", *s.A.FewestDeaths),
	}}
}

func aSideRow(s model.AreaStats) reportRow {
	if s.A.Segmented() {
		return segmentedRow("A", GradeNormal)
	}
	r := reportRow{side: "A", grade: GradeNormal}
	r.cells[0] = timeCell("any%:", s.A.SideStats)
	if s.HasWingedGolden() {
		r.cells[1] = gradedCell{left: "has winged berry", grade: GradeBest}
	} else {
		r.cells[1] = countCell("min dashes:", *s.A.FewestDashes)
	}
	if s.HasGoldenA() {
		r.cells[2] = gradedCell{left: "has golden berry", grade: GradeBest}
	} else {
		r.cells[2] = countCell("min deaths:", *s.A.FewestDeaths)
	}
	return r
}

func sideRow(side string, grade Grade, s model.SideStats, golden bool) reportRow {
	if s.Segmented() {
		return segmentedRow(side, grade)
	}
	r := reportRow{side: side, grade: grade}
	r.cells[0] = timeCell("any%:", s)
	r.cells[1] = countCell("min dashes:", *s.FewestDashes)
	if golden {
		r.cells[2] = gradedCell{left: "has golden berry", grade: GradeBest}
	} else {
		r.cells[2] = countCell("min deaths:", *s.FewestDeaths)
	}
	return r
}

func fullClearRow(s model.AreaStats, gems uint8) (reportRow, error) {
	r := reportRow{side: "A", grade: GradeNormal}
	core := s.Area == model.Core
	if s.A.FullClear != nil {
		r.cells[0] = gradedCell{left: "full:", right: FormatDuration(*s.A.FullClear), grade: GradeBest}
		if core {
			r.cells[1] = gradedCell{left: "can't skip cassette", grade: GradeIrrelevant}
			r.cells[2] = gradedCell{left: "can't skip heart", grade: GradeIrrelevant}
		} else {
			r.cells[1] = gradedCell{left: "has cassette", grade: GradeBest}
			r.cells[2] = gradedCell{left: "has crystal heart", grade: GradeBest}
		}
		return r, nil
	}

	limit := s.Area.MaxRedBerries()
	if limit > 0 {
		have, err := s.RedBerries()
		if err != nil {
			return reportRow{}, err
		}
		label := fmt.Sprintf("%2d / %-2d", have, limit)
		if limit >= 99 {
			label = fmt.Sprintf("%3d/%-3d", have, limit)
		}
		r.cells[0] = gradedCell{left: label, right: "red berries", grade: RedBerryGrade(have, limit)}
	} else {
		r.cells[0] = gradedCell{left: "no red berries here", grade: GradeIrrelevant}
	}

	switch {
	case core:
		r.cells[1] = gradedCell{left: "can't skip cassette", grade: GradeIrrelevant}
	case s.A.Cassette:
		r.cells[1] = gradedCell{left: "has cassette", grade: GradeGood}
	default:
		r.cells[1] = gradedCell{left: "no cassette", grade: GradeNormal}
	}

	switch {
	case core:
		r.cells[2] = gradedCell{left: "can't skip heart", grade: GradeIrrelevant}
	case s.A.Heart:
		r.cells[2] = gradedCell{left: "has crystal heart", grade: GradeGood}
	case s.Area == model.TheSummit:
		g := GradeSubpar
		if gems > 0 {
			g = GradeNormal
		}
		r.cells[2] = gradedCell{left: fmt.Sprintf("%d / 6 heart gems", gems), grade: g}
	default:
		r.cells[2] = gradedCell{left: "no crystal heart", grade: GradeNormal}
	}
	return r, nil
}

// cellText lays out left and right parts in a fixed-width cell, cutting the
// right part first when they do not fit.
func cellText(left, right string) string {
	lw, rw := runewidth.StringWidth(left), runewidth.StringWidth(right)
	if lw+rw > cellWidth {
		right = runewidth.Truncate(right, max(cellWidth-lw, 0), "")
		rw = runewidth.StringWidth(right)
		if lw+rw > cellWidth {
			left = runewidth.Truncate(left, cellWidth, "")
			lw = runewidth.StringWidth(left)
		}
	}
	return left + strings.Repeat(" ", cellWidth-lw-rw) + right
}

func writeLines(w io.Writer, doc document, p painter) error {
	berries := p.paint(doc.berryGrade, fmt.Sprintf("%d🍓", doc.berries))
	if _, err := fmt.Fprintf(w, " %s %s\n", p.paint(GradeNormal, doc.name), berries); err != nil {
		return err
	}
	for _, sec := range doc.sections {
		title := fmt.Sprintf("  %-*s", dividerWidth, sec.title)
		if _, err := fmt.Fprintln(w, p.header(title)); err != nil {
			return err
		}
		for _, r := range sec.rows {
			var b strings.Builder
			b.WriteString(p.bar())
			b.WriteString(" ")
			b.WriteString(p.paint(r.grade, r.side))
			b.WriteString(" ")
			b.WriteString(p.bar())
			for _, c := range r.cells {
				b.WriteString(" ")
				b.WriteString(p.paint(c.grade, cellText(c.left, c.right)))
				b.WriteString("  ")
			}
			if _, err := fmt.Fprintln(w, strings.TrimRight(b.String(), " ")); err != nil {
				return err
			}
		}
	}
	return nil
}

// RenderText prints the report as an aligned text table, colored when color is set.
func RenderText(w io.Writer, r model.Report, color bool) error {
	doc, err := layout(r)
	if err != nil {
		return err
	}
	var p painter = plainPainter{}
	if color {
		p = newANSIPainter(w)
	}
	return writeLines(w, doc, p)
}

var htmlPage = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { background: #000; color: #fff; }
.header { background: #fff; color: #000; }
.bar { background: #555; }
.irrelevant { color: #555; }
.subpar { color: #a00; }
.normal { color: #fff; }
.good { color: #f5f; }
.best { color: #ff5; }
</style>
</head>
<body>
<pre>
{{.Body}}</pre>
</body>
</html>
`))

// RenderHTML prints the report as a standalone HTML page.
func RenderHTML(w io.Writer, r model.Report) error {
	doc, err := layout(r)
	if err != nil {
		return err
	}
	var body strings.Builder
	if err := writeLines(&body, doc, htmlPainter{}); err != nil {
		return err
	}
	return htmlPage.Execute(w, struct {
		Title string
		Body  template.HTML
	}{
		Title: r.Name,
		Body:  template.HTML(body.String()),
	})
}

// RenderMarkdown prints the report as a Markdown table.
func RenderMarkdown(w io.Writer, r model.Report) error {
	doc, err := layout(r)
	if err != nil {
		return err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s — %d berries\n\n", doc.name, doc.berries)
	if len(doc.sections) == 0 {
		b.WriteString("No completed areas.\n")
	} else {
		b.WriteString("| Area | Side | Time / Berries | Dashes / Cassette | Deaths / Heart |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, sec := range doc.sections {
			title := strings.TrimSpace(sec.title)
			for _, r := range sec.rows {
				fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", title, r.side,
					markdownCell(r.cells[0]), markdownCell(r.cells[1]), markdownCell(r.cells[2]))
				title = ""
			}
		}
	}
	_, err = io.WriteString(w, b.String())
	return err
}

func markdownCell(c gradedCell) string {
	return strings.Join(strings.Fields(c.left+" "+c.right), " ")
}
