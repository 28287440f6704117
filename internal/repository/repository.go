package repository

import (
	"context"

	"github.com/BerylCAtieno/documind/internal/models"
	"github.com/jmoiron/sqlx"
)

const DefaultHistoryLimit = 50

// Repository stores the processing history and the reports produced by
// sessions.
type Repository interface {
	RecordDocument(ctx context.Context, entry *models.HistoryEntry) error
	ListHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error)
	SaveReport(ctx context.Context, report *models.Report) error
	ListReports(ctx context.Context, sessionID string) ([]models.Report, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) RecordDocument(ctx context.Context, entry *models.HistoryEntry) error {
	query := `
		INSERT INTO documents_history (id, session_id, filename, size_bytes, char_count, content_hash, strategy, created_at)
		VALUES (:id, :session_id, :filename, :size_bytes, :char_count, :content_hash, :strategy, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, entry)
	return err
}

// ListHistory returns the most recent entries first.
func (r *repository) ListHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	query := `
		SELECT id, session_id, filename, size_bytes, char_count, content_hash, strategy, created_at
		FROM documents_history
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`

	entries := []models.HistoryEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) SaveReport(ctx context.Context, report *models.Report) error {
	query := `
		INSERT INTO reports (id, session_id, kind, task, model, content, created_at)
		VALUES (:id, :session_id, :kind, :task, :model, :content, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, report)
	return err
}

// ListReports returns the reports of a session in creation order.
func (r *repository) ListReports(ctx context.Context, sessionID string) ([]models.Report, error) {
	query := `
		SELECT id, session_id, kind, task, model, content, created_at
		FROM reports
		WHERE session_id = ?
		ORDER BY created_at ASC, rowid ASC
	`

	reports := []models.Report{}
	if err := r.db.SelectContext(ctx, &reports, query, sessionID); err != nil {
		return nil, err
	}
	return reports, nil
}
