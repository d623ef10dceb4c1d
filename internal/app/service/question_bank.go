package service

import (
	"context"
	"time"

	"github.com/safedine/safedine-backend/internal/app/model"
	"github.com/safedine/safedine-backend/internal/app/repository"
	"github.com/safedine/safedine-backend/pkg/logger"
	"github.com/safedine/safedine-backend/pkg/redis"
)

const (
	questionCacheKey = "reference:questions:active"
	questionCacheTTL = 10 * time.Minute
)

// QuestionBank validates submitted yes/no answers against the currently
// active, versioned question set. Unknown or retired codes come from older
// clients and are dropped with a log, never an error.
type QuestionBank struct {
	refRepo repository.ReferenceRepository
}

func NewQuestionBank(refRepo repository.ReferenceRepository) *QuestionBank {
	return &QuestionBank{refRepo: refRepo}
}

// ActiveQuestions returns the active question set, read through the redis
// cache when available.
func (qb *QuestionBank) ActiveQuestions(ctx context.Context) ([]model.Question, error) {
	var questions []model.Question
	if err := redis.GetJSON(ctx, questionCacheKey, &questions); err == nil {
		return questions, nil
	}

	questions, err := qb.refRepo.ActiveQuestions()
	if err != nil {
		return nil, err
	}

	redis.SetJSON(ctx, questionCacheKey, questions, questionCacheTTL)
	return questions, nil
}

// RefreshCache drops the cached question set, forcing the next read to hit
// the database. Called when the bank changes.
func (qb *QuestionBank) RefreshCache(ctx context.Context) {
	redis.Delete(ctx, questionCacheKey)
}

// ValidateAnswers filters raw answers down to rows that may be persisted:
// the code (after alias translation) must be active, and the value must be
// an actual answer. A nil value means "not answered", not "answered nil",
// and is dropped regardless of code validity.
func (qb *QuestionBank) ValidateAnswers(ctx context.Context, rawAnswers map[string]*bool) ([]model.Answer, error) {
	if len(rawAnswers) == 0 {
		return nil, nil
	}

	questions, err := qb.ActiveQuestions(ctx)
	if err != nil {
		return nil, err
	}

	activeByCode := make(map[string]model.Question, len(questions))
	for _, q := range questions {
		activeByCode[q.Code] = q
	}

	answers := make([]model.Answer, 0, len(rawAnswers))
	for clientCode, value := range rawAnswers {
		if value == nil {
			continue
		}

		canonical := ToCanonicalQuestion(clientCode)
		question, ok := activeByCode[canonical]
		if !ok {
			logger.Debug("Dropping answer for unknown or inactive question code", map[string]interface{}{
				"client_code":    clientCode,
				"canonical_code": canonical,
			})
			continue
		}

		v := *value
		answers = append(answers, model.Answer{
			QuestionCode:    question.Code,
			QuestionVersion: question.Version,
			Value:           &v,
		})
	}

	return answers, nil
}
