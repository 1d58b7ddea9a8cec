package pdftext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sample = `--- Page 1 ---
Indus valley civilisation.

--- Page 2 ---
Sangam literature.

--- Page 4 ---
Chola administration.
`

func TestFindTotalPages(t *testing.T) {
	assert.Equal(t, 4, FindTotalPages(sample))
	assert.Equal(t, 0, FindTotalPages("plain text without markers"))
	assert.Equal(t, 0, FindTotalPages(""))
}

func TestPageNumbers(t *testing.T) {
	assert.Equal(t, []int{1, 2, 4}, PageNumbers(sample))
}

func TestExtractPageRange(t *testing.T) {
	got := ExtractPageRange(sample, 2, 4)
	assert.Equal(t, "--- Page 2 ---\nSangam literature.\n\n--- Page 4 ---\nChola administration.", got)

	assert.Equal(t, "--- Page 1 ---\nIndus valley civilisation.", ExtractPageRange(sample, 1, 1))
	assert.Empty(t, ExtractPageRange(sample, 3, 3))
	assert.Empty(t, ExtractPageRange(sample, 4, 2))
	assert.Empty(t, ExtractPageRange(sample, 0, 2))
}

func TestPageContent(t *testing.T) {
	assert.Equal(t, "Chola administration.", PageContent(sample, 4))
	assert.Empty(t, PageContent(sample, 9))
}

func TestMarkerMustStartLine(t *testing.T) {
	text := "inline --- Page 7 --- mention\n" + Marker(2) + "\nreal page"
	assert.Equal(t, 2, FindTotalPages(text))
}

func TestExtractBytesRejectsGarbage(t *testing.T) {
	_, err := ExtractBytes([]byte("not a pdf"))
	assert.Error(t, err)
}
