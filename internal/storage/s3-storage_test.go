package storage

import "testing"

func TestExportKey(t *testing.T) {
	tests := []struct {
		session, filename, want string
	}{
		{"abc", "analysis_2026-03-14.md", "exports/abc/analysis_2026-03-14.md"},
		{"abc", "../../etc/passwd", "exports/abc/passwd"},
		{"abc", "nested/chat_2026-03-14.txt", "exports/abc/chat_2026-03-14.txt"},
	}

	for _, tt := range tests {
		if got := ExportKey(tt.session, tt.filename); got != tt.want {
			t.Errorf("ExportKey(%q, %q) = %q, want %q", tt.session, tt.filename, got, tt.want)
		}
	}
}
