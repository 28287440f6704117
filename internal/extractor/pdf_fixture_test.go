package extractor

import (
	"bytes"
	"fmt"
	"strings"
)

// buildPDF writes a minimal uncompressed PDF with one Helvetica text run per
// line, top to bottom.
func buildPDF(pages ...[]string) []byte {
	streams := make([]string, len(pages))
	for i, lines := range pages {
		var content strings.Builder
		content.WriteString("BT\n/F1 12 Tf\n")
		y := 720
		for _, line := range lines {
			fmt.Fprintf(&content, "1 0 0 1 72 %d Tm\n(%s) Tj\n", y, line)
			y -= 14
		}
		content.WriteString("ET")
		streams[i] = content.String()
	}
	return buildPDFStreams(streams...)
}

// buildPDFStreams writes one page per raw content stream. Byte offsets in
// the xref table are computed while writing.
func buildPDFStreams(pages ...string) []byte {
	var buf bytes.Buffer
	var offsets []int

	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, content := range pages {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	return buf.Bytes()
}
