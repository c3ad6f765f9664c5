package repository

import (
	"context"

	"github.com/lernquiz/backend/internal/db/store"
)

type usageStore interface {
	InsertQuestionUsage(ctx context.Context, arg store.InsertQuestionUsageParams) error
}

// UsageRepository appends to the question answer ledger.
type UsageRepository struct {
	store usageStore
}

// NewUsageRepository constructs a new usage repository.
func NewUsageRepository(store usageStore) *UsageRepository {
	return &UsageRepository{store: store}
}

// Append records one answer submission against a stored question.
func (r *UsageRepository) Append(ctx context.Context, params store.InsertQuestionUsageParams) error {
	return r.store.InsertQuestionUsage(ctx, params)
}
