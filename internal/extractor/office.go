package extractor

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// xmlLayout names the elements of a zipped XML document format that carry text.
type xmlLayout struct {
	part      string
	text      map[string]bool // character data is kept only inside these
	paragraph map[string]bool // newline after each
	tab       map[string]bool
	lineBreak map[string]bool
	space     map[string]bool
}

var docxLayout = xmlLayout{
	part:      "word/document.xml",
	text:      map[string]bool{"t": true},
	paragraph: map[string]bool{"p": true},
	tab:       map[string]bool{"tab": true},
	lineBreak: map[string]bool{"br": true, "cr": true},
}

var odtLayout = xmlLayout{
	part:      "content.xml",
	text:      map[string]bool{"p": true, "h": true},
	paragraph: map[string]bool{"p": true, "h": true},
	tab:       map[string]bool{"tab": true},
	lineBreak: map[string]bool{"line-break": true},
	space:     map[string]bool{"s": true},
}

// DOCXBackend extracts text from Office Open XML word-processing documents.
type DOCXBackend struct{}

func (DOCXBackend) Extract(_ context.Context, data []byte, _ string) (string, error) {
	return extractZippedXML(data, docxLayout)
}

// ODTBackend extracts text from OpenDocument text documents.
type ODTBackend struct{}

func (ODTBackend) Extract(_ context.Context, data []byte, _ string) (string, error) {
	return extractZippedXML(data, odtLayout)
}

func extractZippedXML(data []byte, layout xmlLayout) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening archive: %w", err)
	}

	for _, f := range zr.File {
		if f.Name != layout.part {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("opening %s: %w", layout.part, err)
		}
		defer rc.Close()
		return xmlText(rc, layout)
	}

	return "", fmt.Errorf("archive has no %s", layout.part)
}

func xmlText(r io.Reader, layout xmlLayout) (string, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false

	var b strings.Builder
	depth := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decoding xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			if layout.text[name] {
				depth++
			}
			switch {
			case layout.tab[name]:
				b.WriteByte('\t')
			case layout.lineBreak[name]:
				b.WriteByte('\n')
			case layout.space[name]:
				b.WriteByte(' ')
			}
		case xml.EndElement:
			name := t.Name.Local
			if layout.text[name] && depth > 0 {
				depth--
			}
			if layout.paragraph[name] {
				b.WriteByte('\n')
			}
		case xml.CharData:
			if depth > 0 {
				b.Write(t)
			}
		}
	}

	return b.String(), nil
}
