package session

import (
	"strings"

	"github.com/BerylCAtieno/documind/internal/utils"
)

type Export struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ExportAnalysis packages the current result as analysis_<date>.md.
func (s *Session) ExportAnalysis() (*Export, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result == "" {
		return nil, utils.NewNotFoundError("No analysis result to export")
	}

	return &Export{
		Filename:    "analysis_" + s.isoDate() + ".md",
		ContentType: "text/markdown; charset=utf-8",
		Content:     []byte(s.result),
	}, nil
}

// ExportChat packages the transcript as chat_<date>.txt, one
// "ROLE: content" block per turn.
func (s *Session) ExportChat() (*Export, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.transcript) == 0 {
		return nil, utils.NewNotFoundError("No chat messages to export")
	}

	blocks := make([]string, 0, len(s.transcript))
	for _, turn := range s.transcript {
		blocks = append(blocks, strings.ToUpper(string(turn.Role))+": "+turn.Content)
	}

	return &Export{
		Filename:    "chat_" + s.isoDate() + ".txt",
		ContentType: "text/plain; charset=utf-8",
		Content:     []byte(strings.Join(blocks, "\n\n")),
	}, nil
}

func (s *Session) isoDate() string {
	return s.deps.now().UTC().Format("2006-01-02")
}
