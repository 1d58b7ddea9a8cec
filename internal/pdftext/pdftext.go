// Package pdftext turns PDF files into plain text with page markers and
// slices that text back into page ranges.
package pdftext

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

var markerPattern = regexp.MustCompile(`(?m)^--- Page (\d+) ---$`)

// Marker returns the line that opens page n.
func Marker(n int) string {
	return fmt.Sprintf("--- Page %d ---", n)
}

// Extract reads every page of the PDF and returns its text, each non-empty
// page preceded by its marker line. Pages without extractable text (scanned
// images) are skipped.
func Extract(r io.ReaderAt, size int64) (string, error) {
	rdr, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= rdr.NumPage(); i++ {
		page := rdr.Page(i)
		if page.V.IsNull() {
			continue
		}
		txt, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		txt = strings.TrimSpace(txt)
		if txt == "" {
			continue
		}
		sb.WriteString(Marker(i))
		sb.WriteByte('\n')
		sb.WriteString(txt)
		sb.WriteString("\n\n")
	}
	return sb.String(), nil
}

// ExtractBytes is Extract over an in-memory file.
func ExtractBytes(data []byte) (string, error) {
	return Extract(bytes.NewReader(data), int64(len(data)))
}

type section struct {
	page       int
	start, end int
}

func sections(text string) []section {
	locs := markerPattern.FindAllStringSubmatchIndex(text, -1)
	out := make([]section, 0, len(locs))
	for i, loc := range locs {
		n, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		out = append(out, section{page: n, start: loc[0], end: end})
	}
	return out
}

// FindTotalPages returns the highest page number marked in text, or 0 when
// text carries no markers.
func FindTotalPages(text string) int {
	total := 0
	for _, s := range sections(text) {
		if s.page > total {
			total = s.page
		}
	}
	return total
}

// PageNumbers lists the marked pages in ascending order.
func PageNumbers(text string) []int {
	secs := sections(text)
	out := make([]int, 0, len(secs))
	for _, s := range secs {
		out = append(out, s.page)
	}
	sort.Ints(out)
	return out
}

// ExtractPageRange returns the marked sections of pages start..end
// inclusive, markers kept, in document order.
func ExtractPageRange(text string, start, end int) string {
	if start < 1 || end < start {
		return ""
	}
	var sb strings.Builder
	for _, s := range sections(text) {
		if s.page < start || s.page > end {
			continue
		}
		sb.WriteString(text[s.start:s.end])
	}
	return strings.TrimSpace(sb.String())
}

// PageContent returns the text of page n without its marker line.
func PageContent(text string, n int) string {
	return strings.TrimSpace(strings.TrimPrefix(ExtractPageRange(text, n, n), Marker(n)))
}
