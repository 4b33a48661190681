package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

// execute runs finctl with args against an empty memory ledger and returns
// what it printed to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("SEED_DIR", t.TempDir())
	t.Setenv("FORECAST_DEFAULT_MONTHS", "3")
	t.Cleanup(func() {
		flagJSON, flagBackend, flagSeedDir, flagDBPath, flagVerbose = false, "", "", "", false
		flagMonths, flagForecastMonths, flagNoRecurring, flagSavingsGoal = 6, 0, false, 0
		forecastCmd.Flags().Lookup("savings-goal").Changed = false
	})

	r, w, err := os.Pipe()
	require.NoError(t, err)
	stdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = stdout }()

	rootCmd.SetArgs(args)
	runErr := rootCmd.Execute()
	require.NoError(t, w.Close())

	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)
	return buf.String(), runErr
}

func TestForecastJSON(t *testing.T) {
	out, err := execute(t, "forecast", "--json", "--savings-goal", "100")
	require.NoError(t, err)

	var f core.Forecast
	require.NoError(t, json.Unmarshal([]byte(out), &f))
	assert.Len(t, f.Months, 3)
	assert.Nil(t, f.MonthsToGoal, "no savings means the goal is unreachable")
}

func TestForecastRejectsTooManyMonths(t *testing.T) {
	_, err := execute(t, "forecast", "--months", "500")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--months")
}

func TestInsightsJSONEmptyLedger(t *testing.T) {
	out, err := execute(t, "insights", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestSummaryTable(t *testing.T) {
	out, err := execute(t, "summary", "--months", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Monthly")
	assert.Contains(t, out, "Total")
	assert.Contains(t, out, "No expenses recorded.")
}

func TestUnknownBackend(t *testing.T) {
	_, err := execute(t, "insights", "--backend", "postgres")
	assert.Error(t, err)
}
