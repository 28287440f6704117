package models

import "time"

type AnalysisTask string

const (
	TaskSummary        AnalysisTask = "summary"
	TaskKeyPoints      AnalysisTask = "keypoints"
	TaskSentiment      AnalysisTask = "sentiment"
	TaskQA             AnalysisTask = "qa"
	TaskEntities       AnalysisTask = "entities"
	TaskClassification AnalysisTask = "classification"
	TaskTopics         AnalysisTask = "topics"
	TaskCustom         AnalysisTask = "custom"
)

var AnalysisTasks = []AnalysisTask{
	TaskSummary,
	TaskKeyPoints,
	TaskSentiment,
	TaskQA,
	TaskEntities,
	TaskClassification,
	TaskTopics,
	TaskCustom,
}

func (t AnalysisTask) Valid() bool {
	for _, known := range AnalysisTasks {
		if t == known {
			return true
		}
	}
	return false
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ChatTurn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// GenerationOptions are the per-request knobs a caller may override.
// Zero values fall back to the configured defaults.
type GenerationOptions struct {
	APIKey      string   `json:"-"`
	Model       string   `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

type AnalysisRequest struct {
	Task         AnalysisTask `json:"task"`
	CustomPrompt string       `json:"custom_prompt,omitempty"`
	GenerationOptions
}

type ChatRequest struct {
	Message string `json:"message"`
	GenerationOptions
}

type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
