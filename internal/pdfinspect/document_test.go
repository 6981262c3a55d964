package pdfinspect

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"strings"
	"testing"
)

// buildTestPDF assembles a one-page PDF with a classic xref table. The
// content stream is inserted verbatim unless compress is set, in which
// case it is flate-encoded.
func buildTestPDF(t *testing.T, content string, compress bool) []byte {
	t.Helper()

	streamData := []byte(content)
	streamDict := fmt.Sprintf("<< /Length %d >>", len(streamData))
	if compress {
		var buf bytes.Buffer
		zw := zlib.NewWriter(&buf)
		if _, err := zw.Write(streamData); err != nil {
			t.Fatalf("compressing stream: %v", err)
		}
		if err := zw.Close(); err != nil {
			t.Fatalf("closing compressor: %v", err)
		}
		streamData = buf.Bytes()
		streamDict = fmt.Sprintf("<< /Length %d /Filter /FlateDecode >>", len(streamData))
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
			"/Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		streamDict + "\nstream\n" + string(streamData) + "\nendstream",
	}

	var pdf bytes.Buffer
	pdf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = pdf.Len()
		fmt.Fprintf(&pdf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xrefOffset := pdf.Len()
	fmt.Fprintf(&pdf, "xref\n0 %d\n", len(objects)+1)
	pdf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&pdf, "%010d %05d n \n", off, 0)
	}
	fmt.Fprintf(&pdf, "trailer\n<< /Size %d /Root 1 0 R >>\n", len(objects)+1)
	fmt.Fprintf(&pdf, "startxref\n%d\n%%%%EOF\n", xrefOffset)
	return pdf.Bytes()
}

const helloContent = "BT /F1 12 Tf 72 720 Td (Hello, world) Tj ET"

func TestLoadRejectsNonPDF(t *testing.T) {
	if _, err := Load([]byte("not a pdf at all")); err == nil {
		t.Fatal("expected error for non-PDF input")
	}
}

func TestDocumentGeometry(t *testing.T) {
	doc, err := Load(buildTestPDF(t, helloContent, false))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := doc.Version(); got != "1.4" {
		t.Errorf("Version() = %q, want %q", got, "1.4")
	}
	count, err := doc.PageCount()
	if err != nil {
		t.Fatalf("PageCount: %v", err)
	}
	if count != 1 {
		t.Fatalf("PageCount() = %d, want 1", count)
	}

	info, err := doc.Page(0)
	if err != nil {
		t.Fatalf("Page(0): %v", err)
	}
	if info.Width != 612 || info.Height != 792 {
		t.Errorf("Page(0) = %gx%g points, want 612x792", info.Width, info.Height)
	}

	if _, err := doc.Page(1); err == nil {
		t.Error("Page(1) on one-page document should fail")
	}
}

func TestPageTextSimple(t *testing.T) {
	doc, err := Load(buildTestPDF(t, helloContent, false))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	text, err := doc.PageText(0)
	if err != nil {
		t.Fatalf("PageText: %v", err)
	}
	if !strings.Contains(text, "Hello, world") {
		t.Errorf("PageText = %q, want it to contain %q", text, "Hello, world")
	}
}

func TestPageTextFlateContent(t *testing.T) {
	doc, err := Load(buildTestPDF(t, helloContent, true))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	text, err := doc.PageText(0)
	if err != nil {
		t.Fatalf("PageText: %v", err)
	}
	if !strings.Contains(text, "Hello, world") {
		t.Errorf("PageText = %q, want it to contain %q", text, "Hello, world")
	}
}

func TestPageTextLines(t *testing.T) {
	content := "BT /F1 12 Tf 72 720 Td (first line) Tj 0 -20 Td (second line) Tj ET"
	doc, err := Load(buildTestPDF(t, content, false))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	text, err := doc.PageText(0)
	if err != nil {
		t.Fatalf("PageText: %v", err)
	}
	want := "first line\nsecond line"
	if text != want {
		t.Errorf("PageText = %q, want %q", text, want)
	}
}

func TestPageTextTJArray(t *testing.T) {
	content := "BT /F1 12 Tf 72 720 Td [(Hel) -10 (lo)] TJ ET"
	doc, err := Load(buildTestPDF(t, content, false))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	text, err := doc.PageText(0)
	if err != nil {
		t.Fatalf("PageText: %v", err)
	}
	if !strings.Contains(text, "Hello") {
		t.Errorf("PageText = %q, want it to contain %q", text, "Hello")
	}
}

func TestTextJoinsPages(t *testing.T) {
	doc, err := Load(buildTestPDF(t, helloContent, false))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	text, err := doc.Text()
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if !strings.Contains(text, "Hello, world") {
		t.Errorf("Text = %q, want it to contain %q", text, "Hello, world")
	}
}
