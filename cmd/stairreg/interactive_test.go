package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPrompter(input string) (*prompter, *bytes.Buffer) {
	var out bytes.Buffer
	return newPrompter(strings.NewReader(input), newUI(&out)), &out
}

func TestPrompter_Confirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   bool
		want  bool
	}{
		{"empty takes default yes", "\n", true, true},
		{"empty takes default no", "\n", false, false},
		{"yes", "y\n", false, true},
		{"chinese yes", "是\n", false, true},
		{"no", "NO\n", true, false},
		{"retries on garbage", "maybe\nn\n", true, false},
		{"last line without newline", "yes", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestPrompter(tt.input)
			got, err := p.Confirm("继续?", tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("closed input", func(t *testing.T) {
		p, _ := newTestPrompter("")
		_, err := p.Confirm("继续?", true)
		assert.ErrorIs(t, err, errInputClosed)
	})
}

func TestRunInteractive(t *testing.T) {
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "规范.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF"), 0o644))
	defaultOutput := func(p string) string { return "output/" + filepath.Base(p) + ".json" }

	t.Run("default output", func(t *testing.T) {
		p, out := newTestPrompter(`"` + pdfPath + "\"\n\n\n")

		got, err := runInteractive(p, defaultOutput)

		require.NoError(t, err)
		assert.Equal(t, interactiveAnswers{PDFPath: pdfPath, OutputPath: "output/规范.pdf.json"}, got)
		assert.Contains(t, out.String(), "output/规范.pdf.json")
	})

	t.Run("re-prompts for missing file and directories", func(t *testing.T) {
		p, out := newTestPrompter(strings.Join([]string{"", dir, pdfPath, "y", "y"}, "\n") + "\n")

		got, err := runInteractive(p, defaultOutput)

		require.NoError(t, err)
		assert.Equal(t, pdfPath, got.PDFPath)
		assert.True(t, got.Header)
		assert.Equal(t, 2, strings.Count(out.String(), "文件不存在"))
	})

	t.Run("input ends before a file is named", func(t *testing.T) {
		p, _ := newTestPrompter("missing.pdf\n")

		_, err := runInteractive(p, defaultOutput)

		assert.ErrorIs(t, err, errInputClosed)
	})
}
