package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"studyassistant/internal/pdftext"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := rootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestReportCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "quiz.json")
	require.NoError(t, os.WriteFile(in, []byte(`{"score":1,"totalQuestions":2,"percentage":50,"answers":[
		{"question":{"question":"Capital of the Cholas?","options":["Thanjavur","Madurai"],"answer":"A"},"userAnswer":"A","correctAnswer":"A","isCorrect":true,"questionIndex":0}
	]}`), 0o600))
	out := filepath.Join(dir, "quiz.pdf")

	stdout, err := run(t, "report", in, "--type", "quiz-results", "--title", "Mock Test", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "wrote "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	text, err := pdftext.ExtractBytes(data)
	require.NoError(t, err)
	assert.Contains(t, text, "Mock Test")
}

func TestReportCommandRejectsBadContent(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(in, []byte(`[1, 2]`), 0o600))
	out := filepath.Join(dir, "bad.pdf")

	_, err := run(t, "report", in, "--type", "quiz-results", "--out", out)
	assert.Error(t, err)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExtractCommand(t *testing.T) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	for _, line := range []string{"Vijayanagara", "Nayaks", "Marathas"} {
		pdf.AddPage()
		pdf.Text(20, 20, line)
	}
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	path := filepath.Join(t.TempDir(), "rulers.pdf")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	stdout, err := run(t, "extract", path, "--start", "2")
	require.NoError(t, err)
	assert.False(t, strings.Contains(stdout, "Vijayanagara"))
	assert.Contains(t, stdout, pdftext.Marker(2))
	assert.Contains(t, stdout, "Marathas")
}
