package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lernquiz/backend/internal/db/store"
)

type questionStore interface {
	InsertQuestion(ctx context.Context, arg store.InsertQuestionParams) (store.Question, error)
	SelectReviewPool(ctx context.Context, limit int32) ([]store.ReviewPoolRow, error)
	CountReviewEligible(ctx context.Context) (int64, error)
	TouchQuestion(ctx context.Context, questionID pgtype.UUID) error
}

// QuestionRepository wraps store queries for the question bank.
type QuestionRepository struct {
	store questionStore
}

// NewQuestionRepository constructs a new question repository.
func NewQuestionRepository(store questionStore) *QuestionRepository {
	return &QuestionRepository{store: store}
}

// Insert stores a newly generated question.
func (r *QuestionRepository) Insert(ctx context.Context, params store.InsertQuestionParams) (store.Question, error) {
	return r.store.InsertQuestion(ctx, params)
}

// ReviewPool returns questions eligible for review, least-used first.
func (r *QuestionRepository) ReviewPool(ctx context.Context, limit int32) ([]store.ReviewPoolRow, error) {
	return r.store.SelectReviewPool(ctx, limit)
}

// CountEligible reports how many stored questions are currently in the
// review pool.
func (r *QuestionRepository) CountEligible(ctx context.Context) (int64, error) {
	return r.store.CountReviewEligible(ctx)
}

// MarkUsed bumps use_count and last_used for a served question.
func (r *QuestionRepository) MarkUsed(ctx context.Context, questionID pgtype.UUID) error {
	return r.store.TouchQuestion(ctx, questionID)
}
