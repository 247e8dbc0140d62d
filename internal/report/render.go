package report

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/alesfias96/student-performance-ai/internal/profile"
	"github.com/alesfias96/student-performance-ai/internal/recommend"
	"github.com/alesfias96/student-performance-ai/internal/scoring"
	"github.com/alesfias96/student-performance-ai/internal/store"
)

// DefaultWidth is used when the terminal width is unknown.
const DefaultWidth = 80

const timeLayout = "2006-01-02 15:04"

func pct(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}

// Student renders one student's profile and recommendations as a card.
func Student(sp profile.StudentProfile, recs []recommend.Recommendation, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	inner := width - 4 // border and padding

	var b strings.Builder
	b.WriteString(Title.Render("Student " + sp.Summary.StudentID))
	b.WriteString("\n")
	b.WriteString(Subtitle.Render(fmt.Sprintf("overall %s · %s · %s · %d attempts · avg %.0fs",
		pct(sp.Summary.Accuracy), sp.Level.DisplayName(), sp.Label.DisplayName(),
		sp.Summary.Attempts, sp.Summary.MeanTime)))
	b.WriteString("\n")

	labels := make(map[profile.Label]int)
	for _, tp := range sp.Topics {
		labels[tp.Label]++
	}
	var labelCounts []string
	for _, l := range profile.AllLabels() {
		labelCounts = append(labelCounts, fmt.Sprintf("%d %s", labels[l], l))
	}
	b.WriteString(Section.Render("Topics") + " " + Hint.Render(strings.Join(labelCounts, " · ")))
	b.WriteString("\n")
	nameWidth := 0
	for _, tp := range sp.Topics {
		nameWidth = max(nameWidth, len(tp.Score.Topic))
	}
	for _, tp := range sp.Topics {
		tag := lipgloss.NewStyle().Foreground(LabelColor(tp.Label)).
			Render(fmt.Sprintf(" %-12s %s", tp.Level.DisplayName(), tp.Label.DisplayName()))
		bar := Bar{
			Label:   fmt.Sprintf("%-*s", nameWidth, tp.Score.Topic),
			Percent: tp.Score.Accuracy,
			Width:   inner - lipgloss.Width(tag),
			Fill:    LabelColor(tp.Label),
		}
		b.WriteString(bar.View() + tag + "\n")
	}

	if len(sp.Gaps) > 0 {
		b.WriteString(Section.Render("Not attempted"))
		b.WriteString("\n")
		for _, g := range sp.Gaps {
			b.WriteString(Hint.Render(fmt.Sprintf("%s: %s", g, scoring.GapStatus)) + "\n")
		}
	}

	b.WriteString(Section.Render("Recommendations"))
	if len(recs) > 0 {
		tiers := make(map[recommend.Priority]int)
		for _, r := range recs {
			tiers[r.Priority]++
		}
		var tierCounts []string
		for _, p := range recommend.AllPriorities() {
			tierCounts = append(tierCounts, fmt.Sprintf("%d %s", tiers[p], p))
		}
		b.WriteString(" " + Hint.Render(strings.Join(tierCounts, " · ")))
	}
	b.WriteString("\n")
	if len(recs) == 0 {
		b.WriteString(Hint.Render("No weak topics. Keep practising at the current level.") + "\n")
	}
	for i, r := range recs {
		tier := lipgloss.NewStyle().Bold(true).Foreground(PriorityColor(r.Priority)).
			Render(strings.ToUpper(r.Priority.String()))
		b.WriteString(fmt.Sprintf("%d. %s %s %s\n", i+1, tier, Body.Render(string(r.Topic)),
			Subtitle.Render(fmt.Sprintf("(score %.2f)", r.Score))))
		b.WriteString(Hint.Width(inner).Render("   "+r.Justification) + "\n")
		for _, a := range r.Actions {
			b.WriteString(Body.Width(inner).Render("   - "+a) + "\n")
		}
	}

	return Card.Width(width).Render(strings.TrimRight(b.String(), "\n"))
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Border)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(Primary).Padding(0, 1)
			}
			return lipgloss.NewStyle().Foreground(Text).Padding(0, 1)
		})
}

// Class renders the class overview table with a level distribution line.
func Class(ov profile.ClassOverview) string {
	t := newTable("student", "accuracy", "avg time", "attempts", "level", "label", "strengths", "weaknesses")
	for _, r := range ov.Rows {
		t.Row(r.StudentID, pct(r.Accuracy), fmt.Sprintf("%.0fs", r.MeanTime), strconv.Itoa(r.Attempts),
			r.Level.DisplayName(), r.Label.DisplayName(), strconv.Itoa(r.Strengths), strconv.Itoa(r.Weaknesses))
	}

	var dist []string
	for _, l := range profile.AllLevels() {
		dist = append(dist, fmt.Sprintf("%s %d", l.DisplayName(), ov.LevelCounts[l]))
	}
	footer := Subtitle.Render(fmt.Sprintf("%d students · mean accuracy %s · %s",
		len(ov.Rows), pct(ov.MeanAccuracy), strings.Join(dist, " · ")))
	return t.String() + "\n" + footer
}

// Runs renders stored run headers.
func Runs(runs []store.Run) string {
	if len(runs) == 0 {
		return Hint.Render("No runs recorded yet.")
	}
	t := newTable("#", "run", "started", "source", "students", "records", "rejected", "excluded")
	for _, r := range runs {
		t.Row(strconv.FormatInt(r.Sequence, 10), shortID(r.ID), r.StartedAt.Local().Format(timeLayout), r.Source,
			strconv.Itoa(r.Students), strconv.Itoa(r.Records), strconv.Itoa(r.Rejected), strconv.Itoa(r.Excluded))
	}
	return t.String()
}

// History renders one student's summaries across runs.
func History(studentID string, history []store.StudentRun) string {
	if len(history) == 0 {
		return Hint.Render(fmt.Sprintf("No stored runs include %s.", studentID))
	}
	t := newTable("#", "started", "accuracy", "avg time", "attempts", "level", "label")
	for _, h := range history {
		t.Row(strconv.FormatInt(h.Run.Sequence, 10), h.Run.StartedAt.Local().Format(timeLayout),
			pct(h.Summary.Accuracy), fmt.Sprintf("%.0fs", h.Summary.MeanTime), strconv.Itoa(h.Summary.Attempts),
			h.Summary.Level, h.Summary.Label)
	}
	return Title.Render("History for "+studentID) + "\n" + t.String()
}

// Issues renders a run's issue lines, or nothing when there are none.
func Issues(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(Warning).Render(fmt.Sprintf("%d issues", len(lines))))
	for _, l := range lines {
		b.WriteString("\n" + Hint.Render("  "+l))
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
