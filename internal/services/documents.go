package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/BerylCAtieno/documind/internal/config"
	"github.com/BerylCAtieno/documind/internal/models"
	"github.com/BerylCAtieno/documind/internal/repository"
	"github.com/BerylCAtieno/documind/internal/session"
	"github.com/BerylCAtieno/documind/internal/storage"
	"github.com/BerylCAtieno/documind/internal/utils"
)

const (
	ExportAnalysis = "analysis"
	ExportChat     = "chat"
)

type DocumentService interface {
	CreateSession() session.Snapshot
	GetSession(id string) (*session.Snapshot, error)
	CloseSession(id string) error
	DismissNotices(id string) error

	UploadDocument(ctx context.Context, sessionID string, req *models.UploadRequest) (*models.UploadResponse, error)
	RejectUpload(sessionID string, size int64, err error) error
	Preview(sessionID string, length int) (*session.Preview, error)
	Debug(sessionID string) (*session.DebugInfo, error)

	AnalyzeDocument(ctx context.Context, sessionID string, req models.AnalysisRequest) (*models.AnalysisResponse, error)
	RunAdvanced(ctx context.Context, sessionID string, opts models.GenerationOptions) (*models.AnalysisResponse, error)
	Chat(ctx context.Context, sessionID string, req models.ChatRequest) (*models.ChatResponse, error)

	Export(ctx context.Context, sessionID, kind string) (*session.Export, string, error)
	DownloadArchive(ctx context.Context, sessionID, filename string) ([]byte, error)

	History(ctx context.Context, limit int) ([]models.HistoryEntry, error)
	Reports(ctx context.Context, sessionID string) ([]models.Report, error)
}

type documentService struct {
	sessions *session.Manager
	repo     repository.Repository
	archive  storage.Storage
	model    string
	logger   *utils.Logger
	now      func() time.Time
}

// NewService wires the session manager to persistence. archive may be nil,
// in which case exports are not archived.
func NewService(sessions *session.Manager, repo repository.Repository, archive storage.Storage, cfg *config.Config, logger *utils.Logger) DocumentService {
	return &documentService{
		sessions: sessions,
		repo:     repo,
		archive:  archive,
		model:    cfg.GeminiModel,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *documentService) CreateSession() session.Snapshot {
	return s.sessions.Create().Snapshot()
}

func (s *documentService) GetSession(id string) (*session.Snapshot, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	snap := sess.Snapshot()
	return &snap, nil
}

func (s *documentService) CloseSession(id string) error {
	if err := s.sessions.Delete(id); err != nil {
		return err
	}
	s.logger.Info("Session closed", "session_id", id)
	return nil
}

func (s *documentService) DismissNotices(id string) error {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return err
	}
	sess.DismissNotices()
	return nil
}

func (s *documentService) UploadDocument(ctx context.Context, sessionID string, req *models.UploadRequest) (*models.UploadResponse, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	text, err := sess.Load(ctx, req.Filename, req.File)
	if err != nil {
		s.logger.Warn("Document not loaded", "session_id", sessionID, "filename", req.Filename, "error", err)
		return nil, err
	}

	sum := sha256.Sum256(req.File)
	hash := hex.EncodeToString(sum[:])

	entry := &models.HistoryEntry{
		ID:          utils.GenerateID(),
		SessionID:   sessionID,
		Filename:    req.Filename,
		SizeBytes:   int64(len(req.File)),
		CharCount:   text.CharCount,
		ContentHash: hash,
		Strategy:    text.Strategy,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.RecordDocument(ctx, entry); err != nil {
		s.logger.Error("Failed to record processing history", "error", err, "session_id", sessionID)
	}

	s.logger.Info("Document processed",
		"session_id", sessionID,
		"filename", req.Filename,
		"strategy", text.Strategy,
		"char_count", text.CharCount)

	return &models.UploadResponse{
		SessionID:   sessionID,
		Filename:    req.Filename,
		SizeBytes:   entry.SizeBytes,
		CharCount:   text.CharCount,
		Strategy:    text.Strategy,
		ContentHash: hash,
		Stats:       session.Stats(text.Content),
		Message:     fmt.Sprintf("Successfully extracted %d characters from '%s'!", text.CharCount, req.Filename),
	}, nil
}

// RejectUpload posts err on the session and returns it, or returns the
// lookup error when the session does not exist.
func (s *documentService) RejectUpload(sessionID string, size int64, err error) error {
	sess, lookupErr := s.sessions.Get(sessionID)
	if lookupErr != nil {
		return lookupErr
	}
	sess.Reject("", size, err)
	return err
}

func (s *documentService) Preview(sessionID string, length int) (*session.Preview, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Preview(length)
}

func (s *documentService) Debug(sessionID string) (*session.DebugInfo, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Debug()
}

func (s *documentService) AnalyzeDocument(ctx context.Context, sessionID string, req models.AnalysisRequest) (*models.AnalysisResponse, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	result, err := sess.RunAnalysis(ctx, req)
	if err != nil {
		return nil, err
	}

	report := s.saveReport(ctx, sessionID, models.ReportAnalysis, string(req.Task), req.GenerationOptions, result)
	return &models.AnalysisResponse{
		SessionID: sessionID,
		Kind:      report.Kind,
		Task:      report.Task,
		Model:     report.Model,
		Result:    result,
		CreatedAt: report.CreatedAt,
	}, nil
}

func (s *documentService) RunAdvanced(ctx context.Context, sessionID string, opts models.GenerationOptions) (*models.AnalysisResponse, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	result, err := sess.RunAdvanced(ctx, opts)
	if err != nil {
		return nil, err
	}

	report := s.saveReport(ctx, sessionID, models.ReportAdvanced, "", opts, result)
	return &models.AnalysisResponse{
		SessionID: sessionID,
		Kind:      report.Kind,
		Model:     report.Model,
		Result:    result,
		CreatedAt: report.CreatedAt,
	}, nil
}

func (s *documentService) Chat(ctx context.Context, sessionID string, req models.ChatRequest) (*models.ChatResponse, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	turn, err := sess.SendChat(ctx, req)
	if err != nil {
		return nil, err
	}

	s.saveReport(ctx, sessionID, models.ReportChat, "", req.GenerationOptions, turn.Content)
	return &models.ChatResponse{
		SessionID: sessionID,
		Reply:     *turn,
		Turns:     len(sess.Transcript()),
	}, nil
}

// saveReport persists a finished result. Persistence failures are logged
// and never fail the request.
func (s *documentService) saveReport(ctx context.Context, sessionID, kind, task string, opts models.GenerationOptions, content string) *models.Report {
	report := &models.Report{
		ID:        utils.GenerateID(),
		SessionID: sessionID,
		Kind:      kind,
		Task:      task,
		Model:     opts.Model,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}
	if report.Model == "" {
		report.Model = s.model
	}

	if err := s.repo.SaveReport(ctx, report); err != nil {
		s.logger.Error("Failed to save report", "error", err, "session_id", sessionID, "kind", kind)
	}
	return report
}

// Export renders the requested export. When archiving is enabled the file
// is also stored and its object key returned.
func (s *documentService) Export(ctx context.Context, sessionID, kind string) (*session.Export, string, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, "", err
	}

	var export *session.Export
	switch kind {
	case ExportAnalysis:
		export, err = sess.ExportAnalysis()
	case ExportChat:
		export, err = sess.ExportChat()
	default:
		return nil, "", utils.NewBadRequestError(fmt.Sprintf("unknown export %q", kind))
	}
	if err != nil {
		return nil, "", err
	}

	if s.archive == nil {
		return export, "", nil
	}

	key := storage.ExportKey(sessionID, export.Filename)
	if err := s.archive.Upload(ctx, key, export.Content, export.ContentType); err != nil {
		s.logger.Error("Failed to archive export", "error", err, "key", key)
		return export, "", nil
	}

	s.logger.Info("Export archived", "session_id", sessionID, "key", key)
	return export, key, nil
}

func (s *documentService) DownloadArchive(ctx context.Context, sessionID, filename string) ([]byte, error) {
	if s.archive == nil {
		return nil, utils.NewNotFoundError("Export archive is not enabled")
	}

	data, err := s.archive.Download(ctx, storage.ExportKey(sessionID, filename))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, utils.NewNotFoundError("Archived export not found")
	}
	if err != nil {
		s.logger.Error("Failed to download archived export", "error", err, "session_id", sessionID)
		return nil, utils.NewInternalError("Failed to retrieve archived export")
	}
	return data, nil
}

func (s *documentService) History(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	entries, err := s.repo.ListHistory(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to list history", "error", err)
		return nil, utils.NewInternalError("Failed to retrieve processing history")
	}
	return entries, nil
}

func (s *documentService) Reports(ctx context.Context, sessionID string) ([]models.Report, error) {
	reports, err := s.repo.ListReports(ctx, sessionID)
	if err != nil {
		s.logger.Error("Failed to list reports", "error", err, "session_id", sessionID)
		return nil, utils.NewInternalError("Failed to retrieve reports")
	}
	return reports, nil
}
