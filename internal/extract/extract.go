// Package extract turns uploaded resume files into plain text.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeDOC  = "application/msword"
)

var (
	// ErrUnsupportedType is returned for files that are neither PDF nor DOCX.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrNoText is returned when a document parses but yields no text, e.g. a scanned PDF.
	ErrNoText = errors.New("no readable text found; the file might be scanned images or corrupted")
	// ErrCorrupt wraps parser failures.
	ErrCorrupt = errors.New("invalid or corrupted file")
)

// Extractor reads PDF and DOCX payloads.
// Libraries used: github.com/ledongthuc/pdf (PDF) and github.com/nguyenthenguyen/docx (DOCX).
type Extractor struct{}

// ExtractText detects the file type from its name and leading bytes and returns its text.
func (Extractor) ExtractText(ctx context.Context, fileName string, data []byte) (string, error) {
	return ExtractTextFromBytes(ctx, data, "", fileName)
}

// ExtractTextFromBytes extracts text from an in-memory payload.
func ExtractTextFromBytes(ctx context.Context, data []byte, mimeType string, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrCorrupt)
	}
	var (
		text string
		err  error
	)
	switch normalized := DetectMimeType(mimeType, fileName, data); normalized {
	case mimePDF:
		text, err = extractPDF(data)
	case mimeDOCX:
		text, err = extractDOCX(data)
	case mimeDOC:
		return "", fmt.Errorf("%w: legacy .doc files cannot be read, save the resume as PDF or DOCX", ErrUnsupportedType)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, normalized)
	}
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

func extractPDF(data []byte) (text string, err error) {
	// ledongthuc/pdf panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: pdf: %v", ErrCorrupt, rec)
		}
	}()
	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: pdf: %v", ErrCorrupt, err)
	}
	if pdfReader.NumPage() == 0 {
		return "", fmt.Errorf("%w: pdf has no pages", ErrCorrupt)
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: pdf: %v", ErrCorrupt, err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("%w: pdf: %v", ErrCorrupt, err)
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err == nil {
		defer r.Close()
		return stripDocxXML(r.Editable().GetContent()), nil
	}
	// Some generators omit word/_rels; fall back to reading document.xml directly.
	raw, zipErr := readZipEntry(data, "word/document.xml")
	if zipErr != nil {
		return "", fmt.Errorf("%w: docx: %v", ErrCorrupt, err)
	}
	return stripDocxXML(raw), nil
}

func readZipEntry(data []byte, entry string) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") != entry {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		raw, err := io.ReadAll(rc)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	return "", fmt.Errorf("%s not found", entry)
}

func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.StartElement:
			if t.Name.Local == "tab" {
				buf.WriteString("\t")
			}
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

// DetectMimeType resolves the effective type from a declared MIME type, the
// file extension and the payload's leading bytes.
func DetectMimeType(mimeType string, fileName string, data []byte) string {
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return mimePDF
	}
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	if bytes.HasPrefix(data, []byte("PK")) {
		if readableAsDOCX(data) {
			return mimeDOCX
		}
		if clean == "" {
			return "application/zip"
		}
		return clean
	}
	if clean != "" && clean != "application/octet-stream" {
		return clean
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return mimePDF
	case ".docx":
		return mimeDOCX
	case ".doc":
		return mimeDOC
	default:
		return "application/octet-stream"
	}
}

func readableAsDOCX(data []byte) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return true
		}
	}
	return false
}
