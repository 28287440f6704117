// Package session runs the document pipeline for one caller: intake,
// extraction, analysis, chat and the advanced report. A session owns the
// derived state of exactly one document at a time; accepting a new document
// invalidates everything derived from the previous one.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/BerylCAtieno/documind/internal/analyzer"
	"github.com/BerylCAtieno/documind/internal/extractor"
	"github.com/BerylCAtieno/documind/internal/intake"
	"github.com/BerylCAtieno/documind/internal/models"
	"github.com/BerylCAtieno/documind/internal/utils"
)

type State string

const (
	StateEmpty      State = "empty"
	StateValidating State = "validating"
	StateExtracting State = "extracting"
	StateReady      State = "ready"
	StateAnalyzing  State = "analyzing"
)

const errorMarker = "❌ Error: "

// ErrStale is returned when a response arrives after the session moved on
// to another document. The response is dropped.
var ErrStale = utils.NewConflictError("document changed while the request was in flight; result discarded")

type Dependencies struct {
	Validator *intake.Validator
	Extractor extractor.Extractor
	Generator analyzer.Generator
	Logger    *utils.Logger

	DefaultModel       string
	DefaultTemperature float64
	DefaultAPIKey      string

	ErrorNoticeTTL   time.Duration
	SuccessNoticeTTL time.Duration

	// Now is replaceable in tests.
	Now func() time.Time
}

func (d *Dependencies) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

type Session struct {
	ID string

	deps    *Dependencies
	logger  *utils.Logger
	notices *Notifier

	mu         sync.Mutex
	state      State
	generation uint64
	document   *models.Document
	text       *models.ExtractedText
	result     string
	progress   string
	transcript []models.ChatTurn
	extracting bool
	analyzing  bool
	lastActive time.Time
	createdAt  time.Time
}

func New(id string, deps *Dependencies) *Session {
	now := deps.now()
	return &Session{
		ID:         id,
		deps:       deps,
		logger:     deps.Logger.With("session_id", id),
		notices:    NewNotifier(deps.ErrorNoticeTTL, deps.SuccessNoticeTTL),
		state:      StateEmpty,
		lastActive: now,
		createdAt:  now,
	}
}

// Load validates and extracts a new document. A rejected file leaves the
// session untouched; an accepted one clears text, result and transcript
// before extraction starts.
func (s *Session) Load(ctx context.Context, name string, data []byte) (*models.ExtractedText, error) {
	s.mu.Lock()
	if s.extracting {
		s.mu.Unlock()
		return nil, utils.NewConflictError("A document is already being processed")
	}
	s.touchLocked()
	prior := s.state
	s.state = StateValidating

	doc, err := s.deps.Validator.Accept(name, data)
	if err != nil {
		s.state = prior
		s.mu.Unlock()
		s.Reject(name, int64(len(data)), err)
		return nil, err
	}

	s.generation++
	gen := s.generation
	s.document = doc
	s.text = nil
	s.result = ""
	s.progress = ""
	s.transcript = nil
	s.extracting = true
	s.state = StateExtracting
	s.mu.Unlock()

	s.logger.Info("Document accepted", "filename", doc.Name, "size", doc.SizeBytes, "generation", gen)

	text, err := s.deps.Extractor.Extract(ctx, doc)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.extracting = false

	if gen != s.generation {
		return nil, ErrStale
	}

	if err != nil {
		s.state = StateEmpty
		s.document = nil
		s.notices.Post(NoticeError, "Error processing file: "+utils.Message(err))
		return nil, err
	}

	s.text = text
	s.state = StateReady
	s.notices.Post(NoticeSuccess, fmt.Sprintf("Successfully extracted %d characters from '%s'!", text.CharCount, doc.Name))

	return text, nil
}

// generationRequest resolves caller overrides against the configured
// defaults.
func (s *Session) generationRequest(opts models.GenerationOptions, prompt string) analyzer.Request {
	req := analyzer.Request{
		Prompt:      prompt,
		Model:       opts.Model,
		Temperature: s.deps.DefaultTemperature,
		APIKey:      opts.APIKey,
	}
	if req.Model == "" {
		req.Model = s.deps.DefaultModel
	}
	if opts.Temperature != nil {
		req.Temperature = *opts.Temperature
	}
	if req.APIKey == "" {
		req.APIKey = s.deps.DefaultAPIKey
	}
	return req
}

// beginRequestLocked checks the preconditions shared by every analysis
// call and marks the session busy. Callers hold s.mu.
func (s *Session) beginRequestLocked(req analyzer.Request) (uint64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}
	if s.text == nil || len(strings.TrimSpace(s.text.Content)) < 10 {
		return 0, utils.NewValidationError("Please upload and process a document first!")
	}
	if s.analyzing {
		return 0, utils.NewConflictError("Another analysis request is still running")
	}

	s.touchLocked()
	s.analyzing = true
	s.state = StateAnalyzing
	return s.generation, nil
}

// finishRequestLocked clears the busy flag and reports whether gen is still
// the current document.
func (s *Session) finishRequestLocked(gen uint64) bool {
	s.analyzing = false
	s.progress = ""
	if gen != s.generation {
		return false
	}
	s.state = StateReady
	return true
}

func (s *Session) failLocked(prefix string, err error) {
	s.notices.Post(NoticeError, prefix+utils.Message(err))
}

func (s *Session) touchLocked() {
	s.lastActive = s.deps.now()
}

// Busy reports whether an extraction or request is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.extracting || s.analyzing
}

func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Reject reports a file that never reached intake, such as an upload cut
// off at the transport, the same way Load reports a file intake refused.
func (s *Session) Reject(name string, size int64, err error) {
	s.logger.Warn("File rejected", "filename", name, "size", size, "error", err)
	s.notices.Post(NoticeError, utils.Message(err))
}

func (s *Session) DismissNotices() {
	s.notices.Dismiss()
}

func (s *Session) Notices() []Notice {
	return s.notices.Current()
}

type DocumentInfo struct {
	Name      string               `json:"name"`
	SizeBytes int64                `json:"size_bytes"`
	Strategy  string               `json:"strategy,omitempty"`
	Stats     models.DocumentStats `json:"stats"`
}

type Snapshot struct {
	ID         string            `json:"id"`
	State      State             `json:"state"`
	Generation uint64            `json:"generation"`
	Document   *DocumentInfo     `json:"document,omitempty"`
	Result     string            `json:"result,omitempty"`
	Transcript []models.ChatTurn `json:"transcript"`
	Notices    []Notice          `json:"notices,omitempty"`
	Extracting bool              `json:"extracting"`
	Analyzing  bool              `json:"analyzing"`
	CreatedAt  time.Time         `json:"created_at"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:         s.ID,
		State:      s.state,
		Generation: s.generation,
		Result:     s.renderedResultLocked(),
		Transcript: append([]models.ChatTurn{}, s.transcript...),
		Extracting: s.extracting,
		Analyzing:  s.analyzing,
		CreatedAt:  s.createdAt,
	}

	if s.document != nil {
		info := &DocumentInfo{Name: s.document.Name, SizeBytes: s.document.SizeBytes}
		if s.text != nil {
			info.Strategy = s.text.Strategy
			info.Stats = Stats(s.text.Content)
		}
		snap.Document = info
	}
	snap.Notices = s.notices.Current()

	return snap
}

// Result returns the analysis buffer, including the progress line while
// an advanced report is running.
func (s *Session) Result() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderedResultLocked()
}

func (s *Session) renderedResultLocked() string {
	if s.progress == "" {
		return s.result
	}
	return s.result + "\n⏳ Processing: " + s.progress + "..."
}

func (s *Session) Transcript() []models.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChatTurn{}, s.transcript...)
}

// Text returns the extracted text of the current document.
func (s *Session) Text() (*models.ExtractedText, *models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.text == nil {
		return nil, nil, utils.NewNotFoundError("No document has been processed")
	}
	t := *s.text
	return &t, s.document, nil
}

func Stats(text string) models.DocumentStats {
	return models.DocumentStats{
		Characters: utf8.RuneCountInString(text),
		Words:      len(strings.Fields(text)),
		Lines:      len(strings.Split(text, "\n")),
	}
}

type Preview struct {
	Text      string `json:"text"`
	Truncated bool   `json:"truncated"`
}

// Preview returns the first length characters of the document.
func (s *Session) Preview(length int) (*Preview, error) {
	text, _, err := s.Text()
	if err != nil {
		return nil, err
	}
	if length <= 0 {
		length = 1000
	}
	out := firstRunes(text.Content, length)
	return &Preview{Text: out, Truncated: len(out) < len(text.Content)}, nil
}

type DebugInfo struct {
	Model      string `json:"model"`
	Endpoint   string `json:"endpoint"`
	Characters int    `json:"characters"`
	Words      int    `json:"words"`
	Head       string `json:"head"`
	Tail       string `json:"tail"`
}

func (s *Session) Debug() (*DebugInfo, error) {
	text, _, err := s.Text()
	if err != nil {
		return nil, err
	}
	stats := Stats(text.Content)
	return &DebugInfo{
		Model:      s.deps.DefaultModel,
		Endpoint:   "v1beta/models/" + s.deps.DefaultModel + ":generateContent",
		Characters: stats.Characters,
		Words:      stats.Words,
		Head:       firstRunes(text.Content, 300),
		Tail:       lastRunes(text.Content, 200),
	}, nil
}

func firstRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func lastRunes(s string, n int) string {
	count := utf8.RuneCountInString(s)
	if count <= n {
		return s
	}
	skip := count - n
	i := 0
	for pos := range s {
		if i == skip {
			return s[pos:]
		}
		i++
	}
	return ""
}

// IsStale reports whether err is ErrStale.
func IsStale(err error) bool {
	return errors.Is(err, ErrStale)
}
