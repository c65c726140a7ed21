package export

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/signintech/gopdf"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	fontFamily   = "body"
	pageMargin   = 50.0
	footerOffset = 30.0
	titleSize    = 18
	headingSize  = 13
	bodySize     = 11
	footerSize   = 8
)

// ErrFontUnavailable is returned when no usable TrueType font could be loaded.
var ErrFontUnavailable = errors.New("export: font unavailable")

// PDFOptions configures PDF rendering.
type PDFOptions struct {
	// FontPath is a TrueType font covering the quiz text. Empty or missing
	// paths fall back to the embedded Go Regular font.
	FontPath string
}

// fontData returns the TTF bytes for path, or the embedded font when path
// is empty or does not exist.
func fontData(path string) ([]byte, error) {
	if path == "" {
		return goregular.TTF, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return goregular.TTF, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFontUnavailable, err)
	}
	return data, nil
}

type pdfWriter struct {
	pdf    *gopdf.GoPdf
	page   gopdf.Rect
	y      float64
	size   float64
	footer string
}

// PDF renders the questions with lettered options, followed by an answer
// key page. Every page carries a footer with the brand and date.
func PDF(doc Document, opts PDFOptions) ([]byte, error) {
	font, err := fontData(opts.FontPath)
	if err != nil {
		return nil, err
	}

	w := &pdfWriter{
		pdf:    &gopdf.GoPdf{},
		page:   *gopdf.PageSizeA4,
		footer: doc.footer(),
	}
	w.pdf.Start(gopdf.Config{PageSize: w.page})
	w.pdf.SetInfo(gopdf.PdfInfo{Title: doc.title(), Author: Brand, Creator: Brand, CreationDate: doc.GeneratedAt})
	if err := w.pdf.AddTTFFontData(fontFamily, font); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFontUnavailable, err)
	}

	if err := w.newPage(); err != nil {
		return nil, err
	}
	if err := w.write(doc.title(), titleSize, 0); err != nil {
		return nil, err
	}
	w.gap(12)

	for i, q := range doc.Questions {
		if err := w.write(fmt.Sprintf("%d. %s", i+1, q.Prompt), headingSize, 0); err != nil {
			return nil, err
		}
		if err := w.write("("+kindLabel(q.Kind())+")", footerSize+1, 14); err != nil {
			return nil, err
		}
		for _, line := range bodyLines(q) {
			if err := w.write(line, bodySize, 14); err != nil {
				return nil, err
			}
		}
		w.gap(10)
	}

	if err := w.newPage(); err != nil {
		return nil, err
	}
	if err := w.write("Answer Key", titleSize, 0); err != nil {
		return nil, err
	}
	w.gap(12)
	for i, q := range doc.Questions {
		if err := w.write(fmt.Sprintf("%d. %s", i+1, answerText(q)), bodySize, 0); err != nil {
			return nil, err
		}
		w.gap(4)
	}

	var buf bytes.Buffer
	if _, err := w.pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *pdfWriter) setSize(size float64) error {
	w.size = size
	return w.pdf.SetFont(fontFamily, "", size)
}

func (w *pdfWriter) newPage() error {
	w.pdf.AddPage()
	if err := w.setSize(footerSize); err != nil {
		return err
	}
	w.pdf.SetTextColor(128, 128, 128)
	w.pdf.SetXY(pageMargin, w.page.H-footerOffset)
	if err := w.pdf.Cell(nil, w.footer); err != nil {
		return err
	}
	w.pdf.SetTextColor(0, 0, 0)
	w.y = pageMargin
	return nil
}

func (w *pdfWriter) gap(h float64) { w.y += h }

// write wraps text to the content width and breaks pages as needed.
func (w *pdfWriter) write(text string, size, indent float64) error {
	if err := w.setSize(size); err != nil {
		return err
	}
	lineHeight := size * 1.4
	if strings.TrimSpace(text) == "" {
		w.y += lineHeight
		return nil
	}

	lines, err := w.pdf.SplitText(text, w.page.W-2*pageMargin-indent)
	if err != nil {
		return fmt.Errorf("split text: %w", err)
	}
	for _, line := range lines {
		if w.y+lineHeight > w.page.H-footerOffset-pageMargin/2 {
			if err := w.newPage(); err != nil {
				return err
			}
			if err := w.setSize(size); err != nil {
				return err
			}
		}
		w.pdf.SetXY(pageMargin+indent, w.y)
		if err := w.pdf.Cell(nil, line); err != nil {
			return err
		}
		w.y += lineHeight
	}
	return nil
}
