package services

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"encoding/hex"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// rawPDFParser is the fallback PDF text extractor. It walks object
// definitions directly, inflates FlateDecode streams, and collects the
// string operands of BT/ET text blocks. Standard library only, so it still
// works when the structured parser chokes on a malformed file.
//
// Known limits: no encrypted PDFs, no CMap font mapping, no XRef streams.
type rawPDFParser struct{}

type rawPDFObject struct {
	id     int
	dict   string
	stream []byte
}

var pdfObjPattern = regexp.MustCompile(`(\d+)\s+\d+\s+obj\b`)

func (rawPDFParser) Extract(data []byte) (string, int, error) {
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return "", 0, fmt.Errorf("not a PDF file")
	}

	objects := scanPDFObjects(data)
	pageCount := 0
	var sb strings.Builder

	for _, obj := range objects {
		if isPDFPage(obj.dict) {
			pageCount++
		}
		if len(obj.stream) == 0 || isPDFImage(obj.dict) {
			continue
		}

		content := obj.stream
		if strings.Contains(obj.dict, "/FlateDecode") {
			inflated, err := inflatePDFStream(content)
			if err != nil {
				continue
			}
			content = inflated
		}

		text := parseContentStream(content)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(text)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", pageCount, fmt.Errorf("no text operators found in PDF")
	}
	if pageCount == 0 {
		pageCount = 1
	}

	return text, pageCount, nil
}

// Images returns the raw bytes of embedded JPEG images (DCTDecode streams),
// in document order. Used by the OCR tier on scanned documents.
func (rawPDFParser) Images(data []byte) [][]byte {
	var images [][]byte
	for _, obj := range scanPDFObjects(data) {
		if len(obj.stream) > 0 && strings.Contains(obj.dict, "/DCTDecode") {
			images = append(images, obj.stream)
		}
	}
	return images
}

func scanPDFObjects(data []byte) []rawPDFObject {
	var objects []rawPDFObject

	for _, loc := range pdfObjPattern.FindAllIndex(data, -1) {
		endIdx := bytes.Index(data[loc[1]:], []byte("endobj"))
		if endIdx < 0 {
			continue
		}
		raw := data[loc[1] : loc[1]+endIdx]

		id, _ := strconv.Atoi(string(bytes.Fields(data[loc[0]:loc[1]])[0]))
		obj := rawPDFObject{id: id}

		streamIdx := bytes.Index(raw, []byte("stream"))
		if streamIdx < 0 {
			obj.dict = string(raw)
			objects = append(objects, obj)
			continue
		}

		obj.dict = string(raw[:streamIdx])

		// Stream data starts after the EOL following the stream keyword and
		// ends before the EOL preceding endstream.
		body := raw[streamIdx+len("stream"):]
		if len(body) > 0 && body[0] == '\r' {
			body = body[1:]
		}
		if len(body) > 0 && body[0] == '\n' {
			body = body[1:]
		}
		if end := bytes.Index(body, []byte("endstream")); end >= 0 {
			body = body[:end]
			body = bytes.TrimSuffix(body, []byte("\n"))
			body = bytes.TrimSuffix(body, []byte("\r"))
			obj.stream = body
		}

		objects = append(objects, obj)
	}

	return objects
}

var pdfPagePattern = regexp.MustCompile(`/Type\s*/Page\b`)

func isPDFPage(dict string) bool {
	return pdfPagePattern.MatchString(dict)
}

func isPDFImage(dict string) bool {
	return strings.Contains(dict, "/Subtype") && strings.Contains(dict, "/Image")
}

// inflatePDFStream decompresses a FlateDecode stream. The filter is zlib
// framed (RFC 1950) but some producers emit raw deflate, so try both.
func inflatePDFStream(data []byte) ([]byte, error) {
	if r, err := zlib.NewReader(bytes.NewReader(data)); err == nil {
		var buf bytes.Buffer
		_, copyErr := io.Copy(&buf, r)
		r.Close()
		if buf.Len() > 0 {
			return buf.Bytes(), nil
		}
		if copyErr != nil {
			return nil, fmt.Errorf("failed to inflate stream: %w", copyErr)
		}
	}

	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil && buf.Len() == 0 {
		return nil, fmt.Errorf("failed to inflate stream: %w", err)
	}
	return buf.Bytes(), nil
}

// parseContentStream collects the text drawn inside BT/ET blocks: Tj and TJ
// string operands, with ', ", T* and Td treated as line breaks.
func parseContentStream(data []byte) string {
	s := string(data)
	var sb strings.Builder

	for {
		btIdx := strings.Index(s, "BT")
		if btIdx < 0 {
			break
		}
		etIdx := strings.Index(s[btIdx:], "ET")
		if etIdx < 0 {
			break
		}

		block := s[btIdx : btIdx+etIdx]
		text := parseTextBlock(block)
		if text != "" {
			if sb.Len() > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(text)
		}

		s = s[btIdx+etIdx+2:]
	}

	return strings.TrimSpace(sb.String())
}

func parseTextBlock(block string) string {
	var sb strings.Builder

	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "" || line == "BT":
			continue
		case line == "T*":
			sb.WriteByte('\n')
		case strings.HasSuffix(line, "Tj"):
			sb.WriteString(extractStringOperand(line))
		case strings.HasSuffix(line, "TJ"):
			sb.WriteString(extractArrayOperands(line))
		case strings.HasSuffix(line, "'") || strings.HasSuffix(line, `"`):
			if strings.Contains(line, "(") || strings.Contains(line, "<") {
				sb.WriteByte('\n')
				sb.WriteString(extractStringOperand(line))
			}
		case strings.HasSuffix(line, "Td") || strings.HasSuffix(line, "TD"):
			if sb.Len() > 0 {
				sb.WriteByte('\n')
			}
		}
	}

	return strings.TrimSpace(sb.String())
}

func extractStringOperand(line string) string {
	if start := strings.Index(line, "("); start >= 0 {
		if end := findClosingParen(line, start); end > start {
			return decodePDFLiteral(line[start+1 : end])
		}
	}
	if start := strings.Index(line, "<"); start >= 0 && !strings.HasPrefix(line[start:], "<<") {
		if end := strings.Index(line[start:], ">"); end > 0 {
			return decodePDFHex(line[start+1 : start+end])
		}
	}
	return ""
}

// extractArrayOperands handles TJ arrays: [(He) -30 (llo)] TJ. Large
// negative kerning values represent word spaces.
func extractArrayOperands(line string) string {
	start := strings.Index(line, "[")
	end := strings.LastIndex(line, "]")
	if start < 0 || end <= start {
		return ""
	}

	arr := line[start+1 : end]
	var sb strings.Builder

	for i := 0; i < len(arr); {
		switch arr[i] {
		case '(':
			closing := findClosingParen(arr, i)
			if closing <= i {
				return sb.String()
			}
			sb.WriteString(decodePDFLiteral(arr[i+1 : closing]))
			i = closing + 1
		case '<':
			closing := strings.Index(arr[i:], ">")
			if closing <= 0 {
				return sb.String()
			}
			sb.WriteString(decodePDFHex(arr[i+1 : i+closing]))
			i += closing + 1
		case '-', '.', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			j := i + 1
			for j < len(arr) && (arr[j] == '.' || (arr[j] >= '0' && arr[j] <= '9')) {
				j++
			}
			if v, err := strconv.ParseFloat(arr[i:j], 64); err == nil && v < -200 {
				sb.WriteByte(' ')
			}
			i = j
		default:
			i++
		}
	}

	return sb.String()
}

func findClosingParen(s string, start int) int {
	depth := 0
	for i := start; i < len(s); i++ {
		if i > start && s[i-1] == '\\' {
			continue
		}
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func decodePDFLiteral(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			break
		}
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '(', ')', '\\':
			sb.WriteByte(s[i])
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i
			for j < len(s) && j < i+3 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			if v, err := strconv.ParseInt(s[i:j], 8, 16); err == nil {
				sb.WriteByte(byte(v))
			}
			i = j - 1
		}
	}
	return sb.String()
}

func decodePDFHex(s string) string {
	clean := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
			return -1
		}
		return r
	}, s)
	if len(clean)%2 != 0 {
		clean += "0"
	}

	decoded, err := hex.DecodeString(clean)
	if err != nil {
		return ""
	}

	var sb strings.Builder
	for _, b := range decoded {
		if b >= 32 && b < 127 || b == '\n' {
			sb.WriteByte(b)
		}
	}
	return sb.String()
}
