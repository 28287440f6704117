// Package intake decides whether an uploaded file may enter the pipeline.
// Only the file name suffix and byte size are checked; content sniffing is
// left to the extractors.
package intake

import (
	"fmt"
	"strings"

	"github.com/BerylCAtieno/documind/internal/models"
	"github.com/BerylCAtieno/documind/internal/utils"
)

const DefaultMaxFileSize int64 = 10 * 1024 * 1024

type Kind string

const (
	KindTXT Kind = "txt"
	KindPDF Kind = "pdf"
)

type Validator struct {
	maxFileSize int64
}

func NewValidator(maxFileSize int64) *Validator {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &Validator{maxFileSize: maxFileSize}
}

func (v *Validator) MaxFileSize() int64 {
	return v.maxFileSize
}

// Accept validates name and size and returns the immutable Document.
func (v *Validator) Accept(name string, data []byte) (*models.Document, error) {
	if _, ok := KindOf(name); !ok {
		return nil, utils.NewValidationError("Please upload a PDF or TXT file only.")
	}

	if int64(len(data)) > v.maxFileSize {
		return nil, utils.NewValidationError(SizeLimitMessage(v.maxFileSize))
	}

	raw := make([]byte, len(data))
	copy(raw, data)

	return &models.Document{
		Name:      name,
		SizeBytes: int64(len(raw)),
		RawBytes:  raw,
	}, nil
}

// SizeLimitMessage tells the user the largest accepted size. The unit is the
// largest of MB, KB and bytes that divides max evenly, so it never shows 0.
func SizeLimitMessage(max int64) string {
	const kib, mib = 1024, 1024 * 1024
	switch {
	case max >= mib && max%mib == 0:
		return fmt.Sprintf("File size must be less than %dMB", max/mib)
	case max >= kib && max%kib == 0:
		return fmt.Sprintf("File size must be less than %dKB", max/kib)
	}
	return fmt.Sprintf("File size must be less than %d bytes", max)
}

// KindOf maps a file name to its input kind using the lowercase suffix.
func KindOf(name string) (Kind, bool) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return KindPDF, true
	case strings.HasSuffix(lower, ".txt"):
		return KindTXT, true
	}
	return "", false
}
