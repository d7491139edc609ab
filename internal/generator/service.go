// Package generator builds prompts from a student profile, calls the
// completion service and validates the shape of its JSON reply.
package generator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jonesrussell/north-cloud/extracurricular/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/domain"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/llm"
)

const (
	projectTemperature = 0.8
	emailTemperature   = 0.7
	defaultMaxTokens   = 2048
)

// Service generates project ideas and outreach emails.
type Service struct {
	completer llm.Completer
	maxTokens int
	logger    logger.Logger
}

// NewService creates a Service. maxTokens <= 0 uses a default.
func NewService(completer llm.Completer, maxTokens int, log logger.Logger) *Service {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{completer: completer, maxTokens: maxTokens, logger: log}
}

// GenerateProjects returns exactly ProjectCount ideas for in.
func (s *Service) GenerateProjects(ctx context.Context, in domain.UserInput) ([]domain.ProjectIdea, error) {
	in = in.Clean()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	text, err := s.complete(ctx, "projects", llm.Request{
		System:      projectSystemPrompt,
		Prompt:      BuildProjectPrompt(in),
		Temperature: projectTemperature,
		MaxTokens:   s.maxTokens,
		JSON:        true,
	})
	if err != nil {
		return nil, err
	}

	ideas, err := ParseProjects(text)
	if err != nil {
		s.logger.Warn("Discarding malformed project reply",
			logger.Int("reply_length", len(text)),
			logger.Error(err),
		)
		return nil, err
	}
	return ideas, nil
}

// GenerateEmail drafts an outreach email about opportunity.
func (s *Service) GenerateEmail(ctx context.Context, in domain.UserInput, opportunity string) (domain.Email, error) {
	in = in.Clean()
	if err := in.Validate(); err != nil {
		return domain.Email{}, err
	}
	opportunity = strings.TrimSpace(opportunity)
	if opportunity == "" {
		return domain.Email{}, domain.NewValidationError("opportunity", "is required")
	}

	text, err := s.complete(ctx, "email", llm.Request{
		System:      emailSystemPrompt,
		Prompt:      BuildEmailPrompt(in, opportunity),
		Temperature: emailTemperature,
		MaxTokens:   s.maxTokens,
		JSON:        true,
	})
	if err != nil {
		return domain.Email{}, err
	}

	email, err := ParseEmail(text)
	if err != nil {
		s.logger.Warn("Discarding malformed email reply",
			logger.Int("reply_length", len(text)),
			logger.Error(err),
		)
		return domain.Email{}, err
	}
	return email, nil
}

func (s *Service) complete(ctx context.Context, op string, req llm.Request) (string, error) {
	start := time.Now()
	text, err := s.completer.Complete(ctx, req)
	if err != nil {
		s.logger.Error("Completion failed",
			logger.String("op", op),
			logger.Duration("duration", time.Since(start)),
			logger.Error(err),
		)

		var upErr *domain.UpstreamError
		if errors.As(err, &upErr) {
			return "", err
		}
		return "", &domain.UpstreamError{Op: op, Message: "completion failed", Err: err}
	}

	s.logger.Debug("Completion received",
		logger.String("op", op),
		logger.Duration("duration", time.Since(start)),
	)
	return text, nil
}
