package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lernquiz/backend/internal/db/store"
)

type topicStore interface {
	InsertTopic(ctx context.Context, arg store.InsertTopicParams) (store.Topic, error)
	GetTopicByName(ctx context.Context, name string) (store.Topic, error)
}

// TopicRepository contains DB helpers for lazily created topics.
type TopicRepository struct {
	store topicStore
}

// NewTopicRepository constructs a new topic repository.
func NewTopicRepository(store topicStore) *TopicRepository {
	return &TopicRepository{store: store}
}

// GetOrCreate inserts a topic by name, falling back to lookup when another
// request created the same name concurrently.
func (r *TopicRepository) GetOrCreate(ctx context.Context, name, description string) (store.Topic, error) {
	desc := pgtype.Text{String: description, Valid: description != ""}
	topic, err := r.store.InsertTopic(ctx, store.InsertTopicParams{
		Name:        name,
		Description: desc,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return r.store.GetTopicByName(ctx, name)
	}
	return topic, err
}
