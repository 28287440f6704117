package intake

import (
	"bytes"
	"testing"

	"github.com/BerylCAtieno/documind/internal/utils"
)

func TestAccept(t *testing.T) {
	v := NewValidator(DefaultMaxFileSize)

	tests := []struct {
		name     string
		filename string
		size     int
		wantErr  bool
	}{
		{"txt lowercase", "notes.txt", 100, false},
		{"pdf uppercase suffix", "REPORT.PDF", 2048, false},
		{"exactly at limit", "big.txt", int(DefaultMaxFileSize), false},
		{"one byte over limit", "big.txt", int(DefaultMaxFileSize) + 1, true},
		{"twelve megabytes", "huge.txt", 12 * 1024 * 1024, true},
		{"docx rejected", "letter.docx", 10, true},
		{"no extension", "README", 10, true},
		{"suffix only in middle", "file.pdf.exe", 10, true},
		{"empty file accepted by intake", "empty.txt", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := v.Accept(tt.filename, bytes.Repeat([]byte("a"), tt.size))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Accept(%q, %d bytes) should fail", tt.filename, tt.size)
				}
				if utils.KindOf(err) != utils.KindValidation {
					t.Errorf("error kind = %q, want %q", utils.KindOf(err), utils.KindValidation)
				}
				if doc != nil {
					t.Errorf("rejected file should not produce a document")
				}
				return
			}
			if err != nil {
				t.Fatalf("Accept returned error: %v", err)
			}
			if doc.SizeBytes != int64(tt.size) {
				t.Errorf("SizeBytes = %d, want %d", doc.SizeBytes, tt.size)
			}
		})
	}
}

func TestAcceptCopiesBytes(t *testing.T) {
	data := []byte("Hello world")
	doc, err := NewValidator(0).Accept("a.txt", data)
	if err != nil {
		t.Fatalf("Accept returned error: %v", err)
	}
	data[0] = 'J'
	if string(doc.RawBytes) != "Hello world" {
		t.Errorf("document bytes changed with caller buffer: %q", doc.RawBytes)
	}
}

func TestKindOf(t *testing.T) {
	if k, ok := KindOf("Scan.Pdf"); !ok || k != KindPDF {
		t.Errorf("KindOf(Scan.Pdf) = %q, %v", k, ok)
	}
	if k, ok := KindOf("a.TXT"); !ok || k != KindTXT {
		t.Errorf("KindOf(a.TXT) = %q, %v", k, ok)
	}
	if _, ok := KindOf("a.md"); ok {
		t.Errorf("KindOf(a.md) should not match")
	}
}

func TestSizeLimitMessage(t *testing.T) {
	tests := []struct {
		max  int64
		want string
	}{
		{DefaultMaxFileSize, "File size must be less than 10MB"},
		{512 * 1024, "File size must be less than 512KB"},
		{1536 * 1024, "File size must be less than 1536KB"},
		{100, "File size must be less than 100 bytes"},
		{1025, "File size must be less than 1025 bytes"},
	}
	for _, tt := range tests {
		if got := SizeLimitMessage(tt.max); got != tt.want {
			t.Errorf("SizeLimitMessage(%d) = %q, want %q", tt.max, got, tt.want)
		}
	}
}

func TestAcceptSmallLimitMessage(t *testing.T) {
	_, err := NewValidator(512*1024).Accept("a.txt", bytes.Repeat([]byte("a"), 512*1024+1))
	if got := utils.Message(err); got != "File size must be less than 512KB" {
		t.Errorf("message = %q", got)
	}
}
