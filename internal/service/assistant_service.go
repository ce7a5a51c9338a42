package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/takumi/banter/internal/domain"
	"github.com/takumi/banter/internal/repository"
)

// DailyLimit is the number of assistant conversations a user gets per
// calendar day.
const DailyLimit = 3

var ErrQuotaExceeded = errors.New("daily assistant limit reached")

// Responder produces the assistant's reply for a user message.
type Responder interface {
	Respond(ctx context.Context, message string) (string, error)
}

type AssistantService struct {
	usageRepo repository.AIUsageRepository
	responder Responder
	metrics   Metrics

	// now is the clock used for the quota window. Overridable in tests.
	now func() time.Time
}

func NewAssistantService(usageRepo repository.AIUsageRepository, responder Responder) *AssistantService {
	return &AssistantService{
		usageRepo: usageRepo,
		responder: responder,
		now:       time.Now,
	}
}

// SetMetrics sets the metrics recorder (optional dependency).
func (s *AssistantService) SetMetrics(m Metrics) {
	s.metrics = m
}

// UsageCount returns how many conversations the user has recorded since
// the start of the current day. Computed on demand from the append-only
// log rather than maintained incrementally, so it cannot drift.
func (s *AssistantService) UsageCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.usageRepo.CountByUserSince(ctx, userID, startOfDay(s.now()))
}

// Remaining returns how many conversations the user has left today.
func (s *AssistantService) Remaining(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.UsageCount(ctx, userID)
	if err != nil {
		return 0, err
	}
	return max(0, DailyLimit-count), nil
}

// IsExceeded reports whether the user has used up today's quota.
func (s *AssistantService) IsExceeded(ctx context.Context, userID uuid.UUID) (bool, error) {
	count, err := s.UsageCount(ctx, userID)
	if err != nil {
		return false, err
	}
	return count >= DailyLimit, nil
}

// RecordConversation appends a usage record unconditionally. Enforcement
// is the caller's job: check IsExceeded before invoking the assistant.
// Keeping recording unconditional leaves room to audit over-limit
// attempts.
func (s *AssistantService) RecordConversation(ctx context.Context, userID uuid.UUID, prompt, response string) error {
	rec := &domain.AIUsageRecord{
		ID:        uuid.New(),
		UserID:    userID,
		Message:   prompt,
		Response:  response,
		CreatedAt: s.now(),
	}
	if err := s.usageRepo.Create(ctx, rec); err != nil {
		return fmt.Errorf("recording conversation: %w", err)
	}
	return nil
}

// Chat runs one quota-gated assistant turn: reject if the daily limit is
// reached, otherwise ask the responder and record the exchange.
func (s *AssistantService) Chat(ctx context.Context, userID uuid.UUID, message string) (string, error) {
	exceeded, err := s.IsExceeded(ctx, userID)
	if err != nil {
		return "", err
	}
	if exceeded {
		if s.metrics != nil {
			s.metrics.AssistantQuotaRejected()
		}
		return "", ErrQuotaExceeded
	}

	response, err := s.responder.Respond(ctx, message)
	if err != nil {
		return "", fmt.Errorf("assistant response: %w", err)
	}

	if err := s.RecordConversation(ctx, userID, message, response); err != nil {
		return "", err
	}

	if s.metrics != nil {
		s.metrics.AssistantCall()
	}

	return response, nil
}

// History returns the user's assistant conversation log, oldest first.
func (s *AssistantService) History(ctx context.Context, userID uuid.UUID) ([]domain.AIUsageRecord, error) {
	records, err := s.usageRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.AIUsageRecord{}
	}
	return records, nil
}

// startOfDay is the quota window boundary: midnight in the clock's own
// location (server-local by default).
func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
