// Package report renders evaluation results for the terminal.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/seo-optimizer/contentgate/analyzer"
	"github.com/seo-optimizer/contentgate/lexicon"
	"github.com/seo-optimizer/contentgate/remediate"
)

var (
	accent  = lipgloss.Color("#0EA5E9") // sky
	fg      = lipgloss.Color("#E5E7EB")
	dim     = lipgloss.Color("#6B7280")
	faint   = lipgloss.Color("#3F3F46")
	success = lipgloss.Color("#22C55E")
	danger  = lipgloss.Color("#EF4444")
	warning = lipgloss.Color("#F59E0B")
	info    = lipgloss.Color("#8B949E")
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(64)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	critTagStyle  = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	infoTagStyle  = lipgloss.NewStyle().Foreground(info)
	separatorLine = faintStyle.Render(strings.Repeat("─", 60))
)

func scoreColor(score float64) lipgloss.Color {
	switch {
	case score >= 80:
		return success
	case score >= 50:
		return warning
	default:
		return danger
	}
}

// RenderResult formats a result with its breakdown, issues and gates.
// minScore is the translation threshold shown in the gate line.
func RenderResult(res analyzer.Result, minScore float64) string {
	var b strings.Builder

	scoreLine := lipgloss.NewStyle().Bold(true).Foreground(scoreColor(res.Score)).
		Render(fmt.Sprintf("%.1f / 100", res.Score))
	stats := dimStyle.Render(fmt.Sprintf("%d words  ·  keyword %.2f%%  ·  %d banned phrases",
		res.Metrics.Words, res.Metrics.KeywordDensity, res.Metrics.BannedPhrases))
	b.WriteString(boxStyle.Render(headerStyle.Render("contentgate") + "\n" +
		dimStyle.Render("Content quality score") + "\n\n" + scoreLine + "\n" + stats))
	b.WriteString("\n\n")

	b.WriteString("  " + titleStyle.Render(fmt.Sprintf("%-18s %6s %7s  %s", "Dimension", "Score", "Penalty", "Detail")) + "\n")
	b.WriteString("  " + separatorLine + "\n")
	for _, d := range res.Breakdown {
		mark := passStyle.Render("✓")
		if !d.Passed {
			mark = failStyle.Render("✗")
		}
		fmt.Fprintf(&b, "  %s %-16s %6.1f %7.1f  %s\n", mark, d.Dimension, d.Score, d.Penalty, dimStyle.Render(d.Detail))
	}
	b.WriteString("\n")

	if len(res.Issues) == 0 {
		b.WriteString("  " + passStyle.Render("No issues found.") + "\n\n")
	} else {
		b.WriteString("  " + titleStyle.Render(fmt.Sprintf("Issues (%d)", len(res.Issues))) + "\n")
		b.WriteString("  " + separatorLine + "\n")
		for _, iss := range res.Issues {
			line := fmt.Sprintf("  %s %s", severityTag(iss.Severity), iss.Message)
			if iss.CurrentValue != "" || iss.ExpectedValue != "" {
				line += dimStyle.Render(fmt.Sprintf("  (%s, expected %s)", iss.CurrentValue, iss.ExpectedValue))
			}
			if iss.AutoFixable {
				line += " " + infoTagStyle.Render("[auto-fixable]")
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("  " + gate("Can proceed", res.CanProceed) + "   " +
		gate(fmt.Sprintf("Ready for translation (>= %.0f)", minScore), res.ReadyForTranslation(minScore)) + "   " +
		gate("Humanization", res.PassedHumanization()) + "\n\n")

	return b.String()
}

func severityTag(s analyzer.Severity) string {
	switch s {
	case analyzer.SeverityCritical:
		return critTagStyle.Render("CRITICAL")
	case analyzer.SeverityWarning:
		return warnTagStyle.Render("WARNING ")
	default:
		return infoTagStyle.Render("INFO    ")
	}
}

func gate(label string, ok bool) string {
	if ok {
		return passStyle.Render("✓ " + label)
	}
	return failStyle.Render("✗ " + label)
}

// RenderEnforcement summarizes a keyword-limit run.
func RenderEnforcement(e remediate.Enforcement, keyword string, limit int) string {
	status := passStyle.Render("target reached")
	if !e.Achieved {
		status = failStyle.Render("target not reached")
	}
	return fmt.Sprintf("  %s %q: %d → %d occurrences (max %d), %d replaced, %s\n",
		titleStyle.Render("Keyword"), keyword, e.Before, e.After, limit, e.Replaced, status)
}

// RenderLexicon lists the categories of a lexicon with their phrase counts.
func RenderLexicon(lex lexicon.Lexicon) string {
	var b strings.Builder
	b.WriteString("  " + titleStyle.Render(fmt.Sprintf("%-20s %s", "Category", "Phrases")) + "\n")
	b.WriteString("  " + separatorLine + "\n")
	for _, c := range lex.Categories {
		fmt.Fprintf(&b, "  %-20s %d\n", c.Name, len(c.Phrases))
	}
	b.WriteString("  " + separatorLine + "\n")
	fmt.Fprintf(&b, "  %-20s %d\n", "total", lex.Size())
	return b.String()
}
