// Package report renders analytics results as terminal tables for finctl.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	ColorBorder = lipgloss.Color("#3A3A3A")
	ColorMuted  = lipgloss.Color("#8A8A8A")
	ColorText   = lipgloss.Color("#F2F2F2")
	ColorAccent = lipgloss.Color("#5FAFAF")
	ColorGreen  = lipgloss.Color("#87AF5F")
	ColorOrange = lipgloss.Color("#D7875F")
	ColorRed    = lipgloss.Color("#D75F5F")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().Foreground(ColorText)
	dimStyle   = lipgloss.NewStyle().Foreground(ColorBorder)
	mutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	positiveStyle = lipgloss.NewStyle().Foreground(ColorGreen)
	warnStyle     = lipgloss.NewStyle().Foreground(ColorOrange)
	negativeStyle = lipgloss.NewStyle().Foreground(ColorRed)
)

// Separator is a row value that renders as a horizontal rule.
const Separator = "---"

// Table is a bordered text table. The first column is left-aligned, the
// rest right-aligned.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // computed from content when nil
}

// RenderTitle renders title centered in a rounded box.
func RenderTitle(title string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(50).
		Align(lipgloss.Center).
		Padding(0, 1)
	return box.Render(titleStyle.Render(title))
}

func RenderTable(t Table) string {
	numCols := len(t.Headers)
	if numCols == 0 {
		for _, row := range t.Rows {
			if len(row) > numCols {
				numCols = len(row)
			}
		}
	}
	if numCols == 0 {
		return ""
	}

	widths := columnWidths(t, numCols)

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	b.WriteString(rule(widths, "╭", "┬", "╮"))
	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(fmt.Sprintf(" %-*s ", widths[i], h)))
			b.WriteString(dimStyle.Render("│"))
		}
		b.WriteString("\n")
		b.WriteString(rule(widths, "├", "┼", "┤"))
	}

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == Separator {
			b.WriteString(rule(widths, "├", "┼", "┤"))
			continue
		}
		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			var padded string
			if i == 0 {
				padded = fmt.Sprintf(" %-*s ", widths[i], cell)
			} else {
				padded = fmt.Sprintf(" %*s ", widths[i], cell)
			}
			b.WriteString(valueStyle.Render(padded))
			b.WriteString(dimStyle.Render("│"))
		}
		b.WriteString("\n")
	}

	b.WriteString(rule(widths, "╰", "┴", "╯"))
	return b.String()
}

func columnWidths(t Table, numCols int) []int {
	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
		return widths
	}
	for i, h := range t.Headers {
		widths[i] = max(widths[i], len([]rune(h)))
	}
	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == Separator {
			continue
		}
		for i, cell := range row {
			if i < numCols {
				widths[i] = max(widths[i], len([]rune(cell)))
			}
		}
	}
	return widths
}

func rule(widths []int, left, mid, right string) string {
	var b strings.Builder
	b.WriteString(dimStyle.Render(left))
	for i, w := range widths {
		b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
		if i < len(widths)-1 {
			b.WriteString(dimStyle.Render(mid))
		}
	}
	b.WriteString(dimStyle.Render(right))
	b.WriteString("\n")
	return b.String()
}

// FormatAmount formats a unit amount with two decimals and thousands
// separators, e.g. "-1,234.50".
func FormatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac
}

// FormatPercent formats a whole percentage.
func FormatPercent(p int) string {
	return strconv.Itoa(p) + "%"
}

// Signed colors v green when positive and red when negative.
func Signed(v float64) string {
	switch {
	case v > 0:
		return positiveStyle.Render(FormatAmount(v))
	case v < 0:
		return negativeStyle.Render(FormatAmount(v))
	}
	return FormatAmount(v)
}

// Badge renders an insight severity label.
func Badge(kind string) string {
	switch kind {
	case "warning":
		return warnStyle.Render("WARN")
	case "success":
		return positiveStyle.Render("OK")
	}
	return mutedStyle.Render("INFO")
}

// Muted renders secondary text.
func Muted(s string) string {
	return mutedStyle.Render(s)
}
