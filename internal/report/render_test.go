package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Title:   "By category",
		Headers: []string{"Category", "Total"},
		Rows: [][]string{
			{"Rent", "900.00"},
			{Separator},
			{"Food", "200.00"},
		},
	})

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 8)
	assert.Contains(t, lines[0], "By category")
	assert.Contains(t, lines[2], "Category")
	assert.Contains(t, lines[4], "Rent")
	assert.Contains(t, lines[4], "900.00")
	assert.Contains(t, lines[5], "┼")
	assert.Contains(t, lines[6], "Food")
	// Data columns after the first are right-aligned.
	assert.Contains(t, lines[4], "│ Rent     │ 900.00 │")
	assert.Contains(t, lines[7], "╰")
}

func TestRenderTableEmpty(t *testing.T) {
	assert.Empty(t, RenderTable(Table{}))
}

func TestRenderTableShortRowsArePadded(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"A", "B", "C"},
		Rows:    [][]string{{"x"}},
	})
	assert.Equal(t, 4, strings.Count(strings.Split(out, "\n")[3], "│"))
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{12.3, "12.30"},
		{999.999, "1,000.00"},
		{1234.5, "1,234.50"},
		{-1234567.891, "-1,234,567.89"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatAmount(tt.in), "FormatAmount(%v)", tt.in)
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "42%", FormatPercent(42))
}

func TestBadgeText(t *testing.T) {
	assert.Contains(t, Badge("warning"), "WARN")
	assert.Contains(t, Badge("success"), "OK")
	assert.Contains(t, Badge("info"), "INFO")
}
