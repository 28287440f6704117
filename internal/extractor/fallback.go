package extractor

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/BerylCAtieno/documind/internal/utils"
)

var (
	stringLiteralPattern = regexp.MustCompile(`\(([^)]{2,})\)`)
	alphanumericPattern  = regexp.MustCompile(`[a-zA-Z0-9]`)
)

// ExtractPDFFallback scrapes literal string operands out of the raw file.
//
// It is a heuristic, not a PDF parser: compressed content streams, hex
// strings and text drawn through anything other than a literal "( ... )"
// operand are skipped silently. It runs only when the parsing library is
// switched off.
func ExtractPDFFallback(data []byte) (string, error) {
	raw, err := latin1(data)
	if err != nil {
		return "", utils.NewExtractionError("Error processing file", err)
	}

	var b strings.Builder
	for _, match := range stringLiteralPattern.FindAllStringSubmatch(raw, -1) {
		text := match[1]
		if !alphanumericPattern.MatchString(text) {
			continue
		}
		b.WriteString(unescapeLiteral(text))
		b.WriteString(" ")
	}

	extractedText := collapseWhitespace(b.String())

	if runeLen(extractedText) < MinPDFTextLength {
		return "", utils.NewExtractionError("Could not extract text from PDF. Try using a TXT file or enable the PDF library.", nil)
	}

	return extractedText, nil
}

// unescapeLiteral applies the replacements one after another, so the order
// matters for inputs such as `\\n`.
func unescapeLiteral(s string) string {
	s = strings.ReplaceAll(s, `\n`, " ")
	s = strings.ReplaceAll(s, `\r`, "")
	s = strings.ReplaceAll(s, `\t`, " ")
	s = strings.ReplaceAll(s, `\(`, "(")
	s = strings.ReplaceAll(s, `\)`, ")")
	s = strings.ReplaceAll(s, `\\`, `\`)
	return s
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
