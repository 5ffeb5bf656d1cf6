package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// docxParser extracts text from DOCX archives. The structured tier walks
// document.xml properly; the stripped tier tolerates malformed XML by
// deleting tags wholesale.
type docxParser struct{}

func (docxParser) Extract(data []byte) (string, int, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("failed to open docx archive: %w", err)
	}

	docXML, err := readZipEntry(zr, "word/document.xml")
	if err != nil {
		return "", 0, err
	}

	decoder := xml.NewDecoder(bytes.NewReader(docXML))
	var sb strings.Builder
	inText := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", 0, fmt.Errorf("failed to parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write([]byte(t))
			}
		}
	}

	text := normalizeWhitespace(sb.String())
	if text == "" {
		return "", 0, fmt.Errorf("no text content found in DOCX")
	}

	return text, docxPageCount(zr), nil
}

var docxTagPattern = regexp.MustCompile(`<[^>]+>`)

// ExtractStripped converts paragraph boundaries to newlines and strips every
// remaining tag. Naive but survives documents the XML decoder rejects.
func (docxParser) ExtractStripped(data []byte) (string, int, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("failed to open docx archive: %w", err)
	}

	docXML, err := readZipEntry(zr, "word/document.xml")
	if err != nil {
		return "", 0, err
	}

	raw := string(docXML)
	raw = strings.ReplaceAll(raw, "</w:p>", "\n")
	raw = strings.ReplaceAll(raw, "<w:tab/>", "\t")
	text := normalizeWhitespace(docxTagPattern.ReplaceAllString(raw, " "))
	if text == "" {
		return "", 0, fmt.Errorf("no text content found in DOCX")
	}

	return text, docxPageCount(zr), nil
}

// Images returns the embedded media images for the OCR tier.
func (docxParser) Images(data []byte) [][]byte {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil
	}

	var images [][]byte
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, "word/media/") {
			continue
		}
		switch strings.ToLower(path.Ext(f.Name)) {
		case ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp":
		default:
			continue
		}

		rc, err := f.Open()
		if err != nil {
			continue
		}
		img, err := io.ReadAll(rc)
		rc.Close()
		if err == nil && len(img) > 0 {
			images = append(images, img)
		}
	}

	return images
}

func readZipEntry(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", name, err)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		return data, nil
	}

	return nil, fmt.Errorf("no %s found in docx", name)
}

var docxPagesPattern = regexp.MustCompile(`<Pages>(\d+)</Pages>`)

func docxPageCount(zr *zip.Reader) int {
	appXML, err := readZipEntry(zr, "docProps/app.xml")
	if err != nil {
		return 1
	}
	if m := docxPagesPattern.FindSubmatch(appXML); len(m) == 2 {
		if n, err := strconv.Atoi(string(m[1])); err == nil && n > 0 {
			return n
		}
	}
	return 1
}

func normalizeWhitespace(s string) string {
	re := regexp.MustCompile(`[ \t\r\f\v]+`)
	s = re.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, " ", " ")
	reN := regexp.MustCompile(`\n+`)
	s = reN.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}
