package services

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

const docxHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`

// buildDocx assembles an in-memory DOCX archive from the given entries.
func buildDocx(t *testing.T, entries map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to create zip entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return buf.Bytes()
}

func TestDocxExtract(t *testing.T) {
	doc := docxHeader + `<w:body>` +
		`<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Senior Go Engineer</w:t></w:r></w:p>` +
		`</w:body></w:document>`
	data := buildDocx(t, map[string]string{"word/document.xml": doc})

	text, pages, err := docxParser{}.Extract(data)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if text != "Jane Doe\nSenior Go Engineer" {
		t.Errorf("unexpected text: %q", text)
	}
	if pages != 1 {
		t.Errorf("expected 1 page without app.xml, got %d", pages)
	}
}

func TestDocxExtract_TabsAndBreaks(t *testing.T) {
	doc := docxHeader + `<w:body>` +
		`<w:p><w:r><w:t>Go</w:t><w:tab/><w:t>Python</w:t><w:br/><w:t>Kubernetes</w:t></w:r></w:p>` +
		`</w:body></w:document>`
	data := buildDocx(t, map[string]string{"word/document.xml": doc})

	text, _, err := docxParser{}.Extract(data)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	// Tabs collapse to spaces, breaks survive as newlines.
	if text != "Go Python\nKubernetes" {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestDocxExtract_PageCountFromAppXML(t *testing.T) {
	doc := docxHeader + `<w:body><w:p><w:r><w:t>Content</w:t></w:r></w:p></w:body></w:document>`
	data := buildDocx(t, map[string]string{
		"word/document.xml": doc,
		"docProps/app.xml":  `<Properties><Pages>3</Pages></Properties>`,
	})

	_, pages, err := docxParser{}.Extract(data)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if pages != 3 {
		t.Errorf("expected 3 pages, got %d", pages)
	}
}

func TestDocxExtract_IgnoresTextOutsideRuns(t *testing.T) {
	doc := docxHeader + `<w:body><w:p>stray<w:r><w:t>Kept</w:t></w:r></w:p></w:body></w:document>`
	data := buildDocx(t, map[string]string{"word/document.xml": doc})

	text, _, err := docxParser{}.Extract(data)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if text != "Kept" {
		t.Errorf("expected only run text, got %q", text)
	}
}

func TestDocxExtract_NoText(t *testing.T) {
	doc := docxHeader + `<w:body><w:p/></w:body></w:document>`
	data := buildDocx(t, map[string]string{"word/document.xml": doc})

	if _, _, err := docxParser{}.Extract(data); err == nil {
		t.Error("expected error for document without text")
	}
}

func TestDocxExtract_NotAZip(t *testing.T) {
	if _, _, err := docxParser{}.Extract([]byte("plain text, not a zip")); err == nil {
		t.Error("expected error for non-zip input")
	}
}

func TestDocxExtract_MissingDocumentXML(t *testing.T) {
	data := buildDocx(t, map[string]string{"word/styles.xml": "<w:styles/>"})

	_, _, err := docxParser{}.Extract(data)
	if err == nil {
		t.Fatal("expected error for archive without document.xml")
	}
	if !strings.Contains(err.Error(), "word/document.xml") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDocxExtractStripped_SurvivesMalformedXML(t *testing.T) {
	// Unclosed elements break the XML decoder but not the tag stripper.
	doc := docxHeader + `<w:body><w:p><w:r><w:t>Rescued text</w:t></w:r></w:p>`
	data := buildDocx(t, map[string]string{"word/document.xml": doc})

	if _, _, err := (docxParser{}).Extract(data); err == nil {
		t.Fatal("expected the structured parser to reject unclosed elements")
	}

	text, _, err := docxParser{}.ExtractStripped(data)
	if err != nil {
		t.Fatalf("ExtractStripped failed: %v", err)
	}
	if text != "Rescued text" {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestDocxImages(t *testing.T) {
	data := buildDocx(t, map[string]string{
		"word/document.xml":      docxHeader + `<w:body/></w:document>`,
		"word/media/image1.png":  "png-bytes",
		"word/media/image2.jpeg": "jpeg-bytes",
		"word/media/notes.txt":   "not an image",
	})

	images := docxParser{}.Images(data)
	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(images))
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a  b\t\tc", "a b c"},
		{"a\n\n\nb", "a\nb"},
		{"  padded  ", "padded"},
		{"non breaking", "non breaking"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalizeWhitespace(tt.in); got != tt.want {
			t.Errorf("normalizeWhitespace(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
