package handlers

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"dailybrief/internal/config"
	"dailybrief/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate clears credentials and config lookups so commands run in mock mode.
func isolate(t *testing.T) {
	t.Helper()
	for _, name := range config.CredentialEnvNames {
		t.Setenv(name, "")
	}
	t.Setenv("HOME", t.TempDir())
	t.Setenv("STORE_DSN", "")
	t.Setenv("DATABASE_URL", "")
	cfgFile = ""
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGenerateCmd_JSON(t *testing.T) {
	isolate(t)

	out, err := run(t, "generate", "--date", "2025-01-01", "--json")
	require.NoError(t, err)

	var res core.GenerationResult
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	assert.Equal(t, core.StatusMock, res.Status)
	assert.Contains(t, res.Research.Title, "2025-01-01")
	assert.Len(t, res.Concepts, 3)
}

func TestGenerateCmd_TerminalAndMarkdown(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	out, err := run(t, "generate", "--date", "2025-01-01", "--output-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "[mock]")
	assert.Contains(t, out, "Concepts")

	_, err = os.Stat(filepath.Join(dir, "brief_2025-01-01.md"))
	assert.NoError(t, err)
}

func TestDayCmd_JournalAndShow(t *testing.T) {
	isolate(t)
	t.Setenv("STORE_DSN", filepath.Join(t.TempDir(), "days.db"))

	out, err := run(t, "day", "journal", "2025-01-01", "Felt calm.", "--user", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Journal saved for 2025-01-01 (alice)")

	out, err = run(t, "day", "show", "2025-01-01", "--user", "alice", "--json")
	require.NoError(t, err)
	var rec core.DayRecord
	require.NoError(t, json.Unmarshal([]byte(out), &rec), out)
	assert.Equal(t, "Felt calm.", rec.Journal)
	assert.False(t, rec.HasBrief())

	out, err = run(t, "day", "list", "--user", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "(journal only)")

	_, err = run(t, "day", "show", "2025-01-02", "--user", "alice")
	assert.ErrorContains(t, err, "no record for 2025-01-02")
}

func TestDayCmd_NoStore(t *testing.T) {
	isolate(t)

	_, err := run(t, "day", "show", "2025-01-01")
	assert.ErrorContains(t, err, "store not configured")
}

func TestParseDay(t *testing.T) {
	day, err := parseDay("2025-01-01")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", day)

	_, err = parseDay("01/01/2025")
	assert.Error(t, err)
}
