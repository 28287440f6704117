package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/BerylCAtieno/documind/internal/models"
	"github.com/BerylCAtieno/documind/internal/prompt"
	"github.com/BerylCAtieno/documind/internal/utils"
)

// RunAnalysis sends one analysis request and replaces the result buffer
// with the reply. On failure the buffer holds the error marker instead.
func (s *Session) RunAnalysis(ctx context.Context, req models.AnalysisRequest) (string, error) {
	if !req.Task.Valid() {
		return "", utils.NewValidationError(fmt.Sprintf("unknown analysis type %q", req.Task))
	}

	s.mu.Lock()
	var text string
	if s.text != nil {
		text = s.text.Content
	}
	p, err := prompt.Analysis(req.Task, req.CustomPrompt, text)
	if err != nil {
		s.mu.Unlock()
		return "", err
	}
	genReq := s.generationRequest(req.GenerationOptions, p)
	gen, err := s.beginRequestLocked(genReq)
	if err != nil {
		s.failLocked("", err)
		s.mu.Unlock()
		return "", err
	}
	s.result = ""
	s.mu.Unlock()

	s.logger.Info("Running analysis", "task", req.Task, "model", genReq.Model, "text_length", len(text))

	reply, err := s.deps.Generator.Generate(ctx, genReq)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.finishRequestLocked(gen) {
		s.logger.Warn("Discarding stale analysis response", "task", req.Task)
		return "", ErrStale
	}

	if err != nil {
		s.result = errorMarker + utils.Message(err)
		s.failLocked("Analysis failed: ", err)
		return "", err
	}

	s.result = reply
	s.notices.Post(NoticeSuccess, "Analysis complete!")
	return reply, nil
}

// SendChat appends the question immediately and the reply once it
// arrives. A failed request appends an error turn in place of a reply.
func (s *Session) SendChat(ctx context.Context, req models.ChatRequest) (*models.ChatTurn, error) {
	question := req.Message
	if strings.TrimSpace(question) == "" {
		return nil, utils.NewBadRequestError("Message is required")
	}

	s.mu.Lock()
	var text string
	if s.text != nil {
		text = s.text.Content
	}
	genReq := s.generationRequest(req.GenerationOptions, prompt.Chat(question, text))
	gen, err := s.beginRequestLocked(genReq)
	if err != nil {
		s.failLocked("", err)
		s.mu.Unlock()
		return nil, err
	}
	s.transcript = append(s.transcript, models.ChatTurn{
		Role:      models.RoleUser,
		Content:   question,
		CreatedAt: s.deps.now(),
	})
	s.mu.Unlock()

	s.logger.Info("Processing chat question", "model", genReq.Model, "question_length", len(question))

	reply, err := s.deps.Generator.Generate(ctx, genReq)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.finishRequestLocked(gen) {
		s.logger.Warn("Discarding stale chat response")
		return nil, ErrStale
	}

	turn := models.ChatTurn{Role: models.RoleAssistant, CreatedAt: s.deps.now()}
	if err != nil {
		turn.Content = errorMarker + utils.Message(err)
		s.transcript = append(s.transcript, turn)
		s.failLocked("Chat failed: ", err)
		return nil, err
	}

	turn.Content = reply
	s.transcript = append(s.transcript, turn)
	return &turn, nil
}

// RunAdvanced runs the five report steps one after another. Each finished
// step is appended to the result buffer before the next one starts. The
// first failure stops the batch and the partial report stays in place.
func (s *Session) RunAdvanced(ctx context.Context, opts models.GenerationOptions) (string, error) {
	s.mu.Lock()
	genReq := s.generationRequest(opts, "")
	gen, err := s.beginRequestLocked(genReq)
	if err != nil {
		s.failLocked("", err)
		s.mu.Unlock()
		return "", err
	}
	text := s.text.Content
	s.result = reportHeader(s.document.Name, s.deps.now().Format("2006-01-02 15:04:05"), genReq.Model, s.text.CharCount)
	s.mu.Unlock()

	for i, step := range prompt.AdvancedSteps {
		s.mu.Lock()
		if gen != s.generation {
			s.finishRequestLocked(gen)
			s.mu.Unlock()
			return "", ErrStale
		}
		s.progress = step.Name
		s.mu.Unlock()

		s.logger.Info("Running advanced step", "step", i+1, "of", len(prompt.AdvancedSteps), "name", step.Name)

		stepReq := genReq
		stepReq.Prompt = prompt.Batch(step, text)
		reply, err := s.deps.Generator.Generate(ctx, stepReq)

		s.mu.Lock()
		if gen != s.generation {
			s.finishRequestLocked(gen)
			s.mu.Unlock()
			s.logger.Warn("Discarding stale advanced report", "step", step.Name)
			return "", ErrStale
		}
		if err != nil {
			s.finishRequestLocked(gen)
			partial := s.result
			s.failLocked("Advanced analytics failed: ", err)
			s.mu.Unlock()
			return partial, err
		}
		s.result += fmt.Sprintf("## %d. %s\n\n%s\n\n---\n\n", i+1, step.Name, reply)
		s.mu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishRequestLocked(gen)
	s.notices.Post(NoticeSuccess, "Advanced analytics complete!")
	return s.result, nil
}

func reportHeader(name, generated, model string, chars int) string {
	return fmt.Sprintf("# 📊 Advanced Analytics Report\n\n**Document:** %s\n**Generated:** %s\n**Model:** %s\n**Text Size:** %d characters\n\n---\n\n",
		name, generated, model, chars)
}
