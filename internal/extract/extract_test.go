package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>
<w:p><w:r><w:t>Senior Backend Engineer</w:t></w:r><w:r><w:tab/><w:t>Go, Postgres</w:t></w:r></w:p>
</w:body>
</w:document>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry: %v", err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractDOCX(t *testing.T) {
	data := buildZip(t, map[string]string{
		"word/document.xml":            documentXML,
		"word/_rels/document.xml.rels": relsXML,
	})
	text, err := Extractor{}.ExtractText(context.Background(), "resume.docx", data)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(text, "Jane Doe\n") || !strings.Contains(text, "Senior Backend Engineer\tGo, Postgres") {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractDOCXWithoutRelsFallsBack(t *testing.T) {
	data := buildZip(t, map[string]string{"word/document.xml": documentXML})
	text, err := ExtractTextFromBytes(context.Background(), data, "application/zip", "resume.docx")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.HasPrefix(text, "Jane Doe") {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractRealZipRejected(t *testing.T) {
	data := buildZip(t, map[string]string{"notes.txt": "hello"})
	_, err := ExtractTextFromBytes(context.Background(), data, "application/zip", "notes.zip")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected unsupported type, got %v", err)
	}
	if !strings.Contains(err.Error(), "application/zip") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExtractCorruptPDF(t *testing.T) {
	_, err := Extractor{}.ExtractText(context.Background(), "resume.pdf", []byte("%PDF-1.4\nthis is not really a pdf"))
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestExtractLegacyDoc(t *testing.T) {
	_, err := Extractor{}.ExtractText(context.Background(), "resume.doc", []byte{0xD0, 0xCF, 0x11, 0xE0})
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected unsupported type, got %v", err)
	}
}

func TestExtractEmpty(t *testing.T) {
	if _, err := (Extractor{}).ExtractText(context.Background(), "resume.pdf", nil); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt for empty payload, got %v", err)
	}
}

func TestDetectMimeType(t *testing.T) {
	tests := []struct {
		name     string
		mime     string
		fileName string
		data     []byte
		want     string
	}{
		{name: "pdf magic wins", mime: "text/plain", fileName: "x.txt", data: []byte("%PDF-1.7"), want: mimePDF},
		{name: "extension pdf", fileName: "x.PDF", data: []byte("??"), want: mimePDF},
		{name: "extension doc", fileName: "x.doc", data: []byte("??"), want: mimeDOC},
		{name: "declared", mime: "image/png; q=1", fileName: "x", data: []byte("??"), want: "image/png"},
		{name: "unknown", fileName: "x.bin", data: []byte("??"), want: "application/octet-stream"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectMimeType(tt.mime, tt.fileName, tt.data); got != tt.want {
				t.Fatalf("DetectMimeType = %q, want %q", got, tt.want)
			}
		})
	}
}
