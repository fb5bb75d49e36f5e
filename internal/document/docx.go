package document

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// extractDOCX reads the main document part of an OOXML package and joins
// paragraph text. A .docx file is a zip; the body lives in
// word/document.xml.
func extractDOCX(path string) (*Extraction, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer zr.Close()

	var body io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			body, err = f.Open()
			if err != nil {
				return nil, err
			}
			break
		}
	}
	if body == nil {
		return nil, fmt.Errorf("docx has no word/document.xml")
	}
	defer body.Close()

	text, err := docxBodyText(body)
	if err != nil {
		return nil, err
	}

	return &Extraction{
		Status: StatusExtracted,
		Text:   text,
	}, nil
}

// docxBodyText streams the XML, collecting <w:t> runs and breaking lines
// at paragraph ends
func docxBodyText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var b strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	return strings.TrimSpace(b.String()), nil
}
