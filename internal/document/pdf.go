package document

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	fitz "github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

var (
	errEmptyPDFPath   = errors.New("pdf path is empty")
	errNilPDFDocument = errors.New("pdf document is nil")
)

// renderDPI renders pages at 2x the PDF's native 72 dpi so small print
// in scanned documents stays legible to the oracle
const renderDPI = 144

// extractPDF pulls text from a PDF. At or above MinTextChars of text the
// result is StatusExtracted plus any embedded raster images; below it the
// document counts as image-based and every page is rendered instead. The
// two branches are mutually exclusive.
func extractPDF(path, imagesDir string) (*Extraction, error) {
	text, err := pdfText(path)
	if err != nil {
		// A broken text layer is not fatal; the render branch still works
		slog.Warn("pdf text layer unreadable", "path", path, "error", err)
		text = ""
	}
	text = strings.TrimSpace(text)

	if textSufficient(text) {
		images, imgErr := extractEmbeddedImages(path, imagesDir)
		if imgErr != nil {
			slog.Warn("embedded image extraction failed", "path", path, "error", imgErr)
		}
		return &Extraction{
			Status: StatusExtracted,
			Text:   text,
			Images: images,
		}, nil
	}

	images, pageCount, err := renderPages(path, imagesDir)
	if err != nil {
		return nil, fmt.Errorf("render pages of %s: %w", filepath.Base(path), err)
	}

	slog.Info("image-based pdf, rendered pages", "path", path, "pages", pageCount)
	return &Extraction{
		Status:    StatusRenderedPending,
		Images:    images,
		PageCount: pageCount,
	}, nil
}

// textSufficient decides the branch: a trimmed text layer of at least
// MinTextChars means the PDF is text-bearing, anything less is treated
// as a scan
func textSufficient(text string) bool {
	return len(strings.TrimSpace(text)) >= MinTextChars
}

// pdfText extracts the text layer of a PDF
func pdfText(path string) (string, error) {
	if path == "" {
		return "", errEmptyPDFPath
	}

	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if reader == nil {
		return "", errNilPDFDocument
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, textReader); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// renderPages rasterizes every page to a PNG under imagesDir, named
// page_1.png onward
func renderPages(path, imagesDir string) ([]string, int, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	if err := os.MkdirAll(imagesDir, 0755); err != nil {
		return nil, 0, err
	}

	pageCount := doc.NumPage()
	var written []string
	for i := 0; i < pageCount; i++ {
		img, err := doc.ImageDPI(i, renderDPI)
		if err != nil {
			slog.Warn("page render failed", "page", i+1, "error", err)
			continue
		}

		outPath := filepath.Join(imagesDir, fmt.Sprintf("page_%d.png", i+1))
		f, err := os.Create(outPath)
		if err != nil {
			return written, pageCount, err
		}
		if err := png.Encode(f, img); err != nil {
			f.Close()
			return written, pageCount, err
		}
		f.Close()
		written = append(written, outPath)
	}

	return written, pageCount, nil
}

// extractEmbeddedImages pulls raster objects out of a text PDF so charts
// and photos travel with the extracted text
func extractEmbeddedImages(path, imagesDir string) ([]string, error) {
	if err := os.MkdirAll(imagesDir, 0755); err != nil {
		return nil, err
	}

	if err := api.ExtractImagesFile(path, imagesDir, nil, nil); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(imagesDir)
	if err != nil {
		return nil, err
	}

	var images []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg", ".tif", ".tiff":
			images = append(images, filepath.Join(imagesDir, e.Name()))
		}
	}
	sort.Strings(images)
	return images, nil
}
