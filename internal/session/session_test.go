package session

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/BerylCAtieno/documind/internal/analyzer"
	"github.com/BerylCAtieno/documind/internal/config"
	"github.com/BerylCAtieno/documind/internal/extractor"
	"github.com/BerylCAtieno/documind/internal/intake"
	"github.com/BerylCAtieno/documind/internal/models"
	"github.com/BerylCAtieno/documind/internal/prompt"
	"github.com/BerylCAtieno/documind/internal/utils"
)

// fakeGenerator answers from a script. A nil error with an empty reply in
// the script means "echo the call number".
type fakeGenerator struct {
	mu      sync.Mutex
	replies []string
	errs    map[int]error
	calls   []analyzer.Request
	gate    chan struct{}
	entered chan struct{}
}

func (f *fakeGenerator) Generate(ctx context.Context, req analyzer.Request) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	n := len(f.calls)
	gate, entered := f.gate, f.entered
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}

	if err, ok := f.errs[n]; ok {
		return "", err
	}
	if n <= len(f.replies) {
		return f.replies[n-1], nil
	}
	return "reply", nil
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeGenerator) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1].Prompt
}

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestSession(gen analyzer.Generator) *Session {
	return New("test-session", &Dependencies{
		Validator:          intake.NewValidator(intake.DefaultMaxFileSize),
		Extractor:          extractor.New(true, utils.NewNopLogger()),
		Generator:          gen,
		Logger:             utils.NewNopLogger(),
		DefaultModel:       config.ModelFlashExp,
		DefaultTemperature: 0.3,
		DefaultAPIKey:      "test-key",
		ErrorNoticeTTL:     time.Minute,
		SuccessNoticeTTL:   time.Minute,
		Now:                func() time.Time { return fixedNow },
	})
}

func loadText(t *testing.T, s *Session, content string) {
	t.Helper()
	if _, err := s.Load(context.Background(), "doc.txt", []byte(content)); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
}

func TestLoadHelloWorld(t *testing.T) {
	s := newTestSession(&fakeGenerator{})

	data := append([]byte("  Hello world  "), bytes.Repeat([]byte(" "), 85)...)
	text, err := s.Load(context.Background(), "hello.txt", data)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if text.Content != "Hello world" || text.CharCount != 11 {
		t.Errorf("extracted = %+v", text)
	}
	if got := s.Snapshot().State; got != StateReady {
		t.Errorf("state = %q, want ready", got)
	}
}

func TestLoadRejectedLeavesSessionUntouched(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"first result"}}
	s := newTestSession(gen)
	loadText(t, s, "An existing document with plenty of readable text.")
	if _, err := s.RunAnalysis(context.Background(), models.AnalysisRequest{Task: models.TaskSummary}); err != nil {
		t.Fatalf("RunAnalysis returned error: %v", err)
	}
	before := s.Snapshot()

	_, err := s.Load(context.Background(), "huge.txt", bytes.Repeat([]byte("a"), 12*1024*1024))
	if utils.KindOf(err) != utils.KindValidation {
		t.Fatalf("kind = %q, want validation", utils.KindOf(err))
	}

	after := s.Snapshot()
	if after.State != StateReady || after.Generation != before.Generation || after.Result != "first result" {
		t.Errorf("session changed after rejected upload: %+v", after)
	}
	if after.Document == nil || after.Document.Name != "doc.txt" {
		t.Errorf("previous document lost: %+v", after.Document)
	}
	if !hasNotice(after.Notices, NoticeError, "less than 10MB") {
		t.Errorf("missing size notice: %+v", after.Notices)
	}
}

func TestLoadClearsDerivedState(t *testing.T) {
	s := newTestSession(&fakeGenerator{})
	loadText(t, s, "First document with enough text to analyze.")

	if _, err := s.RunAnalysis(context.Background(), models.AnalysisRequest{Task: models.TaskTopics}); err != nil {
		t.Fatalf("RunAnalysis returned error: %v", err)
	}
	if _, err := s.SendChat(context.Background(), models.ChatRequest{Message: "What is this?"}); err != nil {
		t.Fatalf("SendChat returned error: %v", err)
	}

	loadText(t, s, "Second document, unrelated to the first one.")

	snap := s.Snapshot()
	if snap.Result != "" || len(snap.Transcript) != 0 {
		t.Errorf("derived state survived a new document: result=%q transcript=%v", snap.Result, snap.Transcript)
	}
	if snap.Generation != 2 {
		t.Errorf("generation = %d, want 2", snap.Generation)
	}
}

func TestLoadExtractionFailureReturnsToEmpty(t *testing.T) {
	s := newTestSession(&fakeGenerator{})

	_, err := s.Load(context.Background(), "blank.txt", []byte("   \n  "))
	if utils.KindOf(err) != utils.KindExtraction {
		t.Fatalf("kind = %q, want extraction", utils.KindOf(err))
	}
	snap := s.Snapshot()
	if snap.State != StateEmpty || snap.Document != nil {
		t.Errorf("state = %q document = %+v, want empty", snap.State, snap.Document)
	}
	if !hasNotice(snap.Notices, NoticeError, "Error processing file") {
		t.Errorf("missing extraction notice: %+v", snap.Notices)
	}
}

func TestRunAnalysisTruncatesAndStoresResult(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"## Summary\nMocked."}}
	s := newTestSession(gen)
	loadText(t, s, strings.Repeat("abcde", 10000))

	got, err := s.RunAnalysis(context.Background(), models.AnalysisRequest{Task: models.TaskSummary})
	if err != nil {
		t.Fatalf("RunAnalysis returned error: %v", err)
	}
	if got != "## Summary\nMocked." || s.Result() != got {
		t.Errorf("result = %q", s.Result())
	}

	doc, ok := prompt.EmbeddedDocument(gen.lastPrompt())
	if !ok {
		t.Fatal("prompt has no embedded document")
	}
	if utf8.RuneCountInString(doc) != 40000 {
		t.Errorf("embedded document length = %d, want 40000", utf8.RuneCountInString(doc))
	}
	if s.Snapshot().State != StateReady {
		t.Errorf("state = %q, want ready", s.Snapshot().State)
	}
}

func TestRunAnalysisAppliesOptions(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestSession(gen)
	loadText(t, s, "A document long enough to be analyzed by the model.")

	temp := 0.9
	_, err := s.RunAnalysis(context.Background(), models.AnalysisRequest{
		Task:              models.TaskCustom,
		CustomPrompt:      "List the verbs.",
		GenerationOptions: models.GenerationOptions{Model: config.ModelExp1206, Temperature: &temp, APIKey: "caller-key"},
	})
	if err != nil {
		t.Fatalf("RunAnalysis returned error: %v", err)
	}

	call := gen.calls[0]
	if call.Model != config.ModelExp1206 || call.Temperature != 0.9 || call.APIKey != "caller-key" {
		t.Errorf("request = %+v", call)
	}
	if !strings.HasPrefix(call.Prompt, "List the verbs.") {
		t.Errorf("custom prompt not used: %q", call.Prompt[:40])
	}
}

func TestRunAnalysisRemoteError(t *testing.T) {
	gen := &fakeGenerator{errs: map[int]error{1: utils.NewRemoteResponseError(429, "quota exceeded")}}
	s := newTestSession(gen)
	loadText(t, s, "Some document text that is long enough.")

	_, err := s.RunAnalysis(context.Background(), models.AnalysisRequest{Task: models.TaskSentiment})
	if err == nil {
		t.Fatal("RunAnalysis should fail")
	}

	snap := s.Snapshot()
	if !strings.HasPrefix(snap.Result, "❌ Error: ") || !strings.Contains(snap.Result, "quota exceeded") {
		t.Errorf("result = %q", snap.Result)
	}
	if !hasNotice(snap.Notices, NoticeError, "quota exceeded") {
		t.Errorf("notices = %+v", snap.Notices)
	}
	if snap.State != StateReady {
		t.Errorf("state = %q, want ready", snap.State)
	}
}

func TestRunAnalysisRequiresDocumentAndKey(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestSession(gen)

	_, err := s.RunAnalysis(context.Background(), models.AnalysisRequest{Task: models.TaskSummary})
	if utils.KindOf(err) != utils.KindValidation {
		t.Errorf("no document: kind = %q", utils.KindOf(err))
	}

	s.deps.DefaultAPIKey = ""
	loadText(t, s, "A perfectly fine document for analysis.")
	_, err = s.RunAnalysis(context.Background(), models.AnalysisRequest{Task: models.TaskSummary})
	if utils.Message(err) != "API key is required" {
		t.Errorf("no key: err = %v", err)
	}

	_, err = s.RunAnalysis(context.Background(), models.AnalysisRequest{Task: "poem"})
	if utils.KindOf(err) != utils.KindValidation {
		t.Errorf("bad task: kind = %q", utils.KindOf(err))
	}

	if gen.callCount() != 0 {
		t.Errorf("generator called %d times", gen.callCount())
	}
}

func TestChatTranscriptOrder(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"answer one", "answer two", "answer three"}}
	s := newTestSession(gen)
	loadText(t, s, "The contract was signed by Alice and Bob in Lisbon.")

	questions := []string{"Who signed?", "Where?", "When?"}
	for _, q := range questions {
		if _, err := s.SendChat(context.Background(), models.ChatRequest{Message: q}); err != nil {
			t.Fatalf("SendChat(%q) returned error: %v", q, err)
		}
	}

	transcript := s.Transcript()
	if len(transcript) != 2*len(questions) {
		t.Fatalf("len(transcript) = %d, want %d", len(transcript), 2*len(questions))
	}
	for i, q := range questions {
		user, assistant := transcript[2*i], transcript[2*i+1]
		if user.Role != models.RoleUser || user.Content != q {
			t.Errorf("turn %d user = %+v", i, user)
		}
		if assistant.Role != models.RoleAssistant || assistant.Content != gen.replies[i] {
			t.Errorf("turn %d assistant = %+v", i, assistant)
		}
	}

	if !strings.Contains(gen.lastPrompt(), "USER QUESTION: When?") {
		t.Errorf("chat prompt missing question")
	}
}

func TestChatFailureAppendsErrorTurn(t *testing.T) {
	gen := &fakeGenerator{errs: map[int]error{1: utils.NewRemoteRequestError(errors.New("connection reset"))}}
	s := newTestSession(gen)
	loadText(t, s, "Any document with some text inside it.")

	if _, err := s.SendChat(context.Background(), models.ChatRequest{Message: "Hello?"}); err == nil {
		t.Fatal("SendChat should fail")
	}

	transcript := s.Transcript()
	if len(transcript) != 2 {
		t.Fatalf("len(transcript) = %d, want 2", len(transcript))
	}
	if transcript[0].Content != "Hello?" || !strings.HasPrefix(transcript[1].Content, "❌ Error: ") {
		t.Errorf("transcript = %+v", transcript)
	}

	if _, err := s.SendChat(context.Background(), models.ChatRequest{Message: "  "}); err == nil {
		t.Error("blank message should be rejected")
	}
	if len(s.Transcript()) != 2 {
		t.Error("blank message changed the transcript")
	}
}

func TestRunAdvancedSequential(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"S1", "S2", "S3", "S4", "S5"}}
	s := newTestSession(gen)
	loadText(t, s, strings.Repeat("0123456789", 4000))

	report, err := s.RunAdvanced(context.Background(), models.GenerationOptions{})
	if err != nil {
		t.Fatalf("RunAdvanced returned error: %v", err)
	}
	if gen.callCount() != 5 {
		t.Errorf("calls = %d, want 5", gen.callCount())
	}

	if !strings.HasPrefix(report, "# 📊 Advanced Analytics Report") {
		t.Errorf("missing header: %q", report[:60])
	}
	last := -1
	for i, step := range prompt.AdvancedSteps {
		heading := "## " + string(rune('1'+i)) + ". " + step.Name + "\n\nS" + string(rune('1'+i))
		idx := strings.Index(report, heading)
		if idx < 0 || idx < last {
			t.Errorf("section %q missing or out of order", heading)
		}
		last = idx

		doc, _ := prompt.EmbeddedDocument(gen.calls[i].Prompt)
		if len(doc) != prompt.BatchCap {
			t.Errorf("step %d embedded length = %d, want %d", i+1, len(doc), prompt.BatchCap)
		}
	}
	if strings.Contains(s.Result(), "⏳") {
		t.Errorf("progress line left in finished report")
	}
}

func TestRunAdvancedAbortsOnFailure(t *testing.T) {
	gen := &fakeGenerator{
		replies: []string{"first section", "second section"},
		errs:    map[int]error{3: utils.NewRemoteResponseError(500, "backend unavailable")},
	}
	s := newTestSession(gen)
	loadText(t, s, "A report about the northern region and its quarterly numbers.")

	partial, err := s.RunAdvanced(context.Background(), models.GenerationOptions{})
	if err == nil {
		t.Fatal("RunAdvanced should fail")
	}
	if gen.callCount() != 3 {
		t.Errorf("calls = %d, want 3", gen.callCount())
	}

	result := s.Result()
	if result != partial {
		t.Errorf("returned partial differs from session buffer")
	}
	for _, want := range []string{"## 1. Executive Summary\n\nfirst section", "## 2. Key Insights\n\nsecond section"} {
		if !strings.Contains(result, want) {
			t.Errorf("partial report missing %q", want)
		}
	}
	for _, unwanted := range []string{"## 3.", "## 4.", "## 5.", "⏳"} {
		if strings.Contains(result, unwanted) {
			t.Errorf("partial report contains %q", unwanted)
		}
	}
	if !hasNotice(s.Notices(), NoticeError, "backend unavailable") {
		t.Errorf("notices = %+v", s.Notices())
	}
}

func TestRunAdvancedShowsProgress(t *testing.T) {
	gen := &fakeGenerator{gate: make(chan struct{}), entered: make(chan struct{})}
	s := newTestSession(gen)
	loadText(t, s, "Enough document text to start the advanced report.")

	done := make(chan error, 1)
	go func() {
		_, err := s.RunAdvanced(context.Background(), models.GenerationOptions{})
		done <- err
	}()

	<-gen.entered
	if !strings.HasSuffix(s.Result(), "⏳ Processing: Executive Summary...") {
		t.Errorf("progress not rendered: %q", s.Result())
	}
	gen.gate <- struct{}{}

	for i := 1; i < len(prompt.AdvancedSteps); i++ {
		<-gen.entered
		gen.gate <- struct{}{}
	}
	if err := <-done; err != nil {
		t.Fatalf("RunAdvanced returned error: %v", err)
	}
}

func TestBusySessionRejectsSecondRequest(t *testing.T) {
	gen := &fakeGenerator{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	s := newTestSession(gen)
	loadText(t, s, "Document text for the concurrency check goes here.")

	done := make(chan error, 1)
	go func() {
		_, err := s.SendChat(context.Background(), models.ChatRequest{Message: "first"})
		done <- err
	}()
	<-gen.entered

	_, err := s.SendChat(context.Background(), models.ChatRequest{Message: "second"})
	if utils.KindOf(err) != utils.KindConflict {
		t.Errorf("kind = %q, want conflict", utils.KindOf(err))
	}
	if s.Snapshot().State != StateAnalyzing {
		t.Errorf("state = %q, want analyzing", s.Snapshot().State)
	}

	close(gen.gate)
	if err := <-done; err != nil {
		t.Fatalf("first SendChat returned error: %v", err)
	}
	if n := len(s.Transcript()); n != 2 {
		t.Errorf("len(transcript) = %d, want 2", n)
	}
}

func TestStaleResponseDiscarded(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"late answer"}, gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	s := newTestSession(gen)
	loadText(t, s, "The first document, soon to be replaced by another.")

	done := make(chan error, 1)
	go func() {
		_, err := s.RunAnalysis(context.Background(), models.AnalysisRequest{Task: models.TaskSummary})
		done <- err
	}()
	<-gen.entered

	loadText(t, s, "The second document, which must not see the late answer.")
	close(gen.gate)

	if err := <-done; !IsStale(err) {
		t.Fatalf("err = %v, want ErrStale", err)
	}

	snap := s.Snapshot()
	if snap.Result != "" {
		t.Errorf("stale response written to new session: %q", snap.Result)
	}
	if snap.State != StateReady || snap.Analyzing {
		t.Errorf("state = %q analyzing = %v", snap.State, snap.Analyzing)
	}
}

func TestExports(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"Answer A", "# Report"}}
	s := newTestSession(gen)

	if _, err := s.ExportAnalysis(); utils.KindOf(err) != utils.KindNotFound {
		t.Errorf("empty analysis export: kind = %q", utils.KindOf(err))
	}
	if _, err := s.ExportChat(); utils.KindOf(err) != utils.KindNotFound {
		t.Errorf("empty chat export: kind = %q", utils.KindOf(err))
	}

	loadText(t, s, "Text of a document we will chat about and analyze.")
	if _, err := s.SendChat(context.Background(), models.ChatRequest{Message: "Question A"}); err != nil {
		t.Fatalf("SendChat returned error: %v", err)
	}
	if _, err := s.RunAnalysis(context.Background(), models.AnalysisRequest{Task: models.TaskQA}); err != nil {
		t.Fatalf("RunAnalysis returned error: %v", err)
	}

	chat, err := s.ExportChat()
	if err != nil {
		t.Fatalf("ExportChat returned error: %v", err)
	}
	if chat.Filename != "chat_2026-03-14.txt" {
		t.Errorf("chat filename = %q", chat.Filename)
	}
	if string(chat.Content) != "USER: Question A\n\nASSISTANT: Answer A" {
		t.Errorf("chat content = %q", chat.Content)
	}

	analysis, err := s.ExportAnalysis()
	if err != nil {
		t.Fatalf("ExportAnalysis returned error: %v", err)
	}
	if analysis.Filename != "analysis_2026-03-14.md" || string(analysis.Content) != "# Report" {
		t.Errorf("analysis export = %q %q", analysis.Filename, analysis.Content)
	}
}

func TestPreviewAndDebug(t *testing.T) {
	s := newTestSession(&fakeGenerator{})
	if _, err := s.Preview(10); err == nil {
		t.Error("Preview without a document should fail")
	}

	loadText(t, s, strings.Repeat("word ", 400)+"END")

	p, err := s.Preview(0)
	if err != nil {
		t.Fatalf("Preview returned error: %v", err)
	}
	if len(p.Text) != 1000 || !p.Truncated {
		t.Errorf("preview length = %d truncated = %v", len(p.Text), p.Truncated)
	}

	d, err := s.Debug()
	if err != nil {
		t.Fatalf("Debug returned error: %v", err)
	}
	if d.Words != 401 || len(d.Head) != 300 || len(d.Tail) != 200 || !strings.HasSuffix(d.Tail, "END") {
		t.Errorf("debug = words %d head %d tail %d", d.Words, len(d.Head), len(d.Tail))
	}
}

func TestStats(t *testing.T) {
	got := Stats("one two\nthree\n\nfour")
	if got.Characters != 19 || got.Words != 4 || got.Lines != 4 {
		t.Errorf("Stats = %+v", got)
	}
}

func hasNotice(notices []Notice, level NoticeLevel, substr string) bool {
	for _, n := range notices {
		if n.Level == level && strings.Contains(n.Message, substr) {
			return true
		}
	}
	return false
}
