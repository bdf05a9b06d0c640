package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/tada/internal/model"
)

func plain(t *testing.T) {
	t.Helper()
	require.NoError(t, SetColorMode(ColorNever))
	t.Cleanup(func() {
		lipgloss.SetColorProfile(termenv.Ascii)
		SetTheme(ThemeClassic)
	})
}

func TestSetTheme(t *testing.T) {
	plain(t)
	assert.Equal(t, ThemeNeon, SetTheme("NEON").Name)
	assert.Equal(t, ThemeNeon, Current().Name)
	assert.Equal(t, ThemeClassic, SetTheme("bogus").Name)
}

func TestNextTheme(t *testing.T) {
	assert.Equal(t, ThemeNeon, NextTheme(ThemeClassic))
	assert.Equal(t, ThemeMono, NextTheme(ThemeNeon))
	assert.Equal(t, ThemeClassic, NextTheme(ThemeMono))
	assert.Equal(t, ThemeClassic, NextTheme("unknown"))
}

func TestSetColorMode(t *testing.T) {
	plain(t)
	assert.NoError(t, SetColorMode(ColorAlways))
	assert.NoError(t, SetColorMode(""))
	assert.Error(t, SetColorMode("sometimes"))
}

func TestMessages(t *testing.T) {
	plain(t)
	var buf bytes.Buffer
	OK(&buf, "saved")
	Fail(&buf, "broken")
	Warn(&buf, "careful")
	assert.Equal(t, "✔ saved\n✖ broken\n! careful\n", buf.String())
}

func TestProgressBar(t *testing.T) {
	plain(t)
	assert.Equal(t, "[█████░░░░░] 1/2", ProgressBar(1, 2, 10))
	assert.Equal(t, "[░░░░] 0/0", ProgressBar(0, 0, 4))
	assert.Equal(t, "[████] 5/4", ProgressBar(5, 4, 4))
}

func TestPanel_MonoUsesASCII(t *testing.T) {
	plain(t)
	SetTheme(ThemeMono)
	out := Panel([]string{"hello"})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "+-------+", lines[0])
	assert.Equal(t, "| hello |", lines[1])
}

func TestTaskLine(t *testing.T) {
	plain(t)
	SetTheme(ThemeMono)
	line := TaskLine(1, model.Task{ID: "a", Title: "Buy milk", Description: "2%"})
	assert.Equal(t, " 1. [ ] Buy milk - 2%", line)
	line = TaskLine(2, model.Task{ID: "b", IsDone: true, Title: "Walk dog"})
	assert.Equal(t, " 2. [x] Walk dog", line)
}
