package render

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

// ErrRender reports that the document could not be produced.
var ErrRender = errors.New("pdf render failed")

// Renderer turns a generated letter into a PDF document.
type Renderer struct{}

// NewRenderer constructs a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render lays out the title and the justified body and returns the PDF bytes.
func (r *Renderer) Render(letter string) (out []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = fmt.Errorf("%w: %v", ErrRender, rec)
		}
	}()

	paragraphs := Paragraphs(letter)
	if len(paragraphs) == 0 {
		return nil, fmt.Errorf("%w: empty letter", ErrRender)
	}

	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetMargins(MarginLeft, MarginTop, MarginRight)
	doc.SetAutoPageBreak(false, MarginBottom)
	doc.SetTitle(Title, true)
	doc.AddPage()

	tr := doc.UnicodeTranslatorFromDescriptor("")
	pageW, pageH := doc.GetPageSize()
	width := pageW - MarginLeft - MarginRight

	doc.SetFont(FontFamily, "U", TitleSize)
	doc.CellFormat(width, LineHeight+4, tr(Title), "", 1, "C", false, 0, "")
	doc.Ln(titleBlankGap)

	doc.SetFont(FontFamily, "", BodySize)
	l := &layout{
		doc:    doc,
		y:      doc.GetY(),
		left:   MarginLeft,
		width:  width,
		bottom: pageH - MarginBottom,
	}
	for i, p := range paragraphs {
		if i > 0 {
			l.y += ParagraphGap
		}
		l.paragraph(tr(p))
	}

	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return buf.Bytes(), nil
}

type layout struct {
	doc    *fpdf.Fpdf
	y      float64
	left   float64
	width  float64
	bottom float64
}

func (l *layout) paragraph(text string) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return
	}
	space := l.doc.GetStringWidth(" ")
	first := true
	for len(words) > 0 {
		indent := 0.0
		if first {
			indent = FirstIndent
		}
		avail := l.width - indent
		n, used := fitLine(l.doc, words, avail, space)
		last := n == len(words)
		l.line(words[:n], indent, avail, used, space, last)
		words = words[n:]
		first = false
	}
}

// fitLine returns how many words fit in avail and their summed width.
// A single word wider than the line is placed alone.
func fitLine(doc *fpdf.Fpdf, words []string, avail, space float64) (int, float64) {
	total := 0.0
	n := 0
	for i, w := range words {
		ww := doc.GetStringWidth(w)
		next := total + ww
		if i > 0 {
			next += space
		}
		if i > 0 && next > avail {
			break
		}
		total = next
		n++
	}
	return n, total
}

func (l *layout) line(words []string, indent, avail, used, space float64, last bool) {
	if l.y+LineHeight > l.bottom {
		l.doc.AddPage()
		l.y = MarginTop
	}
	baseline := l.y + BodySize
	gap := space
	if !last && len(words) > 1 {
		gap = space + (avail-used)/float64(len(words)-1)
	}
	x := l.left + indent
	for _, w := range words {
		l.doc.Text(x, baseline, w)
		x += l.doc.GetStringWidth(w) + gap
	}
	l.y += LineHeight
}

// Paragraphs normalizes the letter and splits it on line breaks.
// Markdown bold markers are removed; blank lines are dropped.
func Paragraphs(letter string) []string {
	cleaned := strings.ReplaceAll(letter, "**", "")
	cleaned = strings.ReplaceAll(cleaned, "\r\n", "\n")
	var out []string
	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
