package models

import (
	"time"
)

// Document is an accepted upload. It is never mutated after intake.
type Document struct {
	Name      string
	SizeBytes int64
	RawBytes  []byte
}

type ExtractedText struct {
	Content   string `json:"content"`
	CharCount int    `json:"char_count"`
	Strategy  string `json:"strategy"`
}

type DocumentStats struct {
	Characters int `json:"characters"`
	Words      int `json:"words"`
	Lines      int `json:"lines"`
}

type HistoryEntry struct {
	ID          string    `json:"id" db:"id"`
	SessionID   string    `json:"session_id" db:"session_id"`
	Filename    string    `json:"filename" db:"filename"`
	SizeBytes   int64     `json:"size_bytes" db:"size_bytes"`
	CharCount   int       `json:"char_count" db:"char_count"`
	ContentHash string    `json:"content_hash" db:"content_hash"`
	Strategy    string    `json:"strategy" db:"strategy"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

const (
	ReportAnalysis = "analysis"
	ReportAdvanced = "advanced"
	ReportChat     = "chat"
)

type Report struct {
	ID        string    `json:"id" db:"id"`
	SessionID string    `json:"session_id" db:"session_id"`
	Kind      string    `json:"kind" db:"kind"`
	Task      string    `json:"task,omitempty" db:"task"`
	Model     string    `json:"model" db:"model"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type UploadRequest struct {
	File     []byte
	Filename string
}

type UploadResponse struct {
	SessionID   string        `json:"session_id"`
	Filename    string        `json:"filename"`
	SizeBytes   int64         `json:"size_bytes"`
	CharCount   int           `json:"char_count"`
	Strategy    string        `json:"strategy"`
	ContentHash string        `json:"content_hash"`
	Stats       DocumentStats `json:"stats"`
	Message     string        `json:"message"`
}

type AnalysisResponse struct {
	SessionID string    `json:"session_id"`
	Kind      string    `json:"kind"`
	Task      string    `json:"task,omitempty"`
	Model     string    `json:"model"`
	Result    string    `json:"result"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatResponse struct {
	SessionID string   `json:"session_id"`
	Reply     ChatTurn `json:"reply"`
	Turns     int      `json:"turns"`
}
