package repository

import (
	"context"

	"github.com/lernquiz/backend/internal/db/store"
)

type documentStore interface {
	UpsertDocument(ctx context.Context, arg store.UpsertDocumentParams) (store.Document, error)
}

// DocumentRepository contains DB helpers for uploaded source documents.
type DocumentRepository struct {
	store documentStore
}

// NewDocumentRepository constructs a new document repository.
func NewDocumentRepository(store documentStore) *DocumentRepository {
	return &DocumentRepository{store: store}
}

// Upsert persists an uploaded document, overwriting a previous upload with
// the same filename.
func (r *DocumentRepository) Upsert(ctx context.Context, filename, content string) (store.Document, error) {
	return r.store.UpsertDocument(ctx, store.UpsertDocumentParams{
		Filename: filename,
		Content:  content,
	})
}
