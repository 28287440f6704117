package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/BerylCAtieno/documind/internal/utils"
)

// MinPDFTextLength is the shortest PDF extraction accepted. Anything less
// usually means a scanned or image-only document.
const MinPDFTextLength = 50

// ExtractPDF parses the document with ledongthuc/pdf. Each page contributes
// its text runs, in content-stream order, joined by a space; pages are
// separated by a newline before whitespace is collapsed.
func ExtractPDF(data []byte) (text string, err error) {
	// the parser panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = utils.NewExtractionError("Error processing file", fmt.Errorf("pdf parser: %v", r))
		}
	}()

	reader := bytes.NewReader(data)

	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", utils.NewExtractionError("Error processing file", fmt.Errorf("failed to create PDF reader: %w", err))
	}

	var textBuilder strings.Builder
	numPages := pdfReader.NumPage()

	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() || page.V.Key("Contents").IsNull() {
			continue
		}

		textBuilder.WriteString(strings.Join(pageRuns(page), " "))
		textBuilder.WriteString("\n")
	}

	extractedText := collapseWhitespace(textBuilder.String())

	if runeLen(extractedText) < MinPDFTextLength {
		return "", utils.NewExtractionError("Could not extract sufficient text from PDF. The PDF may be image-based.", nil)
	}

	return extractedText, nil
}

// pageRuns returns the decoded operand of every text-showing operator on
// the page in the order the content stream issues them. No positional
// sorting is applied.
func pageRuns(page pdf.Page) []string {
	fonts := make(map[string]pdf.TextEncoding)
	for _, name := range page.Fonts() {
		fonts[name] = page.Font(name).Encoder()
	}

	var enc pdf.TextEncoding
	decode := func(raw string) string {
		if enc == nil {
			return raw
		}
		return enc.Decode(raw)
	}

	var runs []string
	pdf.Interpret(page.V.Key("Contents"), func(stk *pdf.Stack, op string) {
		n := stk.Len()
		args := make([]pdf.Value, n)
		for i := n - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}

		switch op {
		case "Tf":
			if n == 2 {
				enc = fonts[args[0].Name()]
			}
		case "Tj", "'":
			if n == 1 {
				runs = append(runs, decode(args[0].RawString()))
			}
		case "\"":
			if n == 3 {
				runs = append(runs, decode(args[2].RawString()))
			}
		case "TJ":
			if n != 1 {
				return
			}
			var run strings.Builder
			for j := 0; j < args[0].Len(); j++ {
				if part := args[0].Index(j); part.Kind() == pdf.String {
					run.WriteString(decode(part.RawString()))
				}
			}
			runs = append(runs, run.String())
		}
	})

	return runs
}
