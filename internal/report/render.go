// Package report lays study analyses, question sets and quiz results out as
// paginated A4 PDF documents.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

const unicodeFamily = "report"

// Options configures a Renderer.
type Options struct {
	// FontPath is a UTF-8 TrueType font used for every style. Empty means
	// the core Helvetica font, which only covers Latin-1.
	FontPath string
	Now      func() time.Time
}

// Renderer turns Documents into PDF bytes.
type Renderer struct {
	opts Options
}

// NewRenderer returns a Renderer; a nil clock means time.Now.
func NewRenderer(opts Options) *Renderer {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Renderer{opts: opts}
}

// Render writes doc as a PDF to w and returns the number of pages.
func (r *Renderer) Render(w io.Writer, doc Document) (int, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("studyassistant", true)

	family := "Helvetica"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if r.opts.FontPath != "" {
		for _, st := range []string{"", "B", "I"} {
			pdf.AddUTF8Font(unicodeFamily, st, r.opts.FontPath)
		}
		if err := pdf.Error(); err != nil {
			return 0, fmt.Errorf("failed to load report font %s: %w", r.opts.FontPath, err)
		}
		family = unicodeFamily
		tr = func(s string) string { return s }
	}

	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()
	l := &layout{
		c:      pdf,
		pageW:  pageW,
		pageH:  pageH,
		family: family,
		tr:     tr,
		now:    r.opts.Now,
	}
	l.render(doc)

	if err := pdf.Error(); err != nil {
		return 0, fmt.Errorf("failed to lay out report: %w", err)
	}
	pages := pdf.PageNo()
	if err := pdf.Output(w); err != nil {
		return 0, fmt.Errorf("failed to write report: %w", err)
	}
	return pages, nil
}
