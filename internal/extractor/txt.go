package extractor

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/BerylCAtieno/documind/internal/utils"
)

// ExtractTXT decodes the file and trims surrounding whitespace. Interior
// layout is preserved exactly.
func ExtractTXT(data []byte) (string, error) {
	text, err := decodeText(data)
	if err != nil {
		return "", utils.NewExtractionError("Failed to read file", err)
	}

	text = strings.TrimSpace(text)

	if text == "" {
		return "", utils.NewExtractionError("No text could be extracted from the document", nil)
	}

	return text, nil
}

func decodeText(data []byte) (string, error) {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return string(data[3:]), nil
	}

	if len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE {
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		decoded, _, err := transform.Bytes(decoder, data)
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	}

	if len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF {
		decoder := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		decoded, _, err := transform.Bytes(decoder, data)
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err == nil {
		return string(decoded), nil
	}

	return latin1(data)
}

// latin1 maps every byte to the code point of the same value.
func latin1(data []byte) (string, error) {
	decoded, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
