package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lernquiz/backend/internal/db/store"
)

type fakeTopicStore struct {
	insertArg store.InsertTopicParams
	insertErr error
	lookups   []string
}

func (f *fakeTopicStore) InsertTopic(_ context.Context, arg store.InsertTopicParams) (store.Topic, error) {
	f.insertArg = arg
	if f.insertErr != nil {
		return store.Topic{}, f.insertErr
	}
	return store.Topic{TopicID: somePGUUID(), Name: arg.Name, Description: arg.Description}, nil
}

func (f *fakeTopicStore) GetTopicByName(_ context.Context, name string) (store.Topic, error) {
	f.lookups = append(f.lookups, name)
	return store.Topic{TopicID: somePGUUID(), Name: name}, nil
}

func somePGUUID() pgtype.UUID {
	id := uuid.New()
	var pgID pgtype.UUID
	copy(pgID.Bytes[:], id[:])
	pgID.Valid = true
	return pgID
}

func TestTopicGetOrCreateInserts(t *testing.T) {
	fake := &fakeTopicStore{}
	repo := NewTopicRepository(fake)

	topic, err := repo.GetOrCreate(context.Background(), "Sachenrecht", "Besitz und Eigentum")
	require.NoError(t, err)
	assert.Equal(t, "Sachenrecht", topic.Name)
	assert.True(t, topic.TopicID.Valid)
	assert.True(t, fake.insertArg.Description.Valid)
	assert.Empty(t, fake.lookups)
}

func TestTopicGetOrCreateFallsBackToLookup(t *testing.T) {
	// ON CONFLICT DO NOTHING yields no row when the topic already exists.
	fake := &fakeTopicStore{insertErr: pgx.ErrNoRows}
	repo := NewTopicRepository(fake)

	topic, err := repo.GetOrCreate(context.Background(), "Sachenrecht", "")
	require.NoError(t, err)
	assert.Equal(t, "Sachenrecht", topic.Name)
	assert.Equal(t, []string{"Sachenrecht"}, fake.lookups)
}

func TestTopicGetOrCreatePropagatesOtherErrors(t *testing.T) {
	fake := &fakeTopicStore{insertErr: errors.New("connection refused")}
	repo := NewTopicRepository(fake)

	_, err := repo.GetOrCreate(context.Background(), "Sachenrecht", "")
	assert.Error(t, err)
	assert.Empty(t, fake.lookups)
}

func TestTopicGetOrCreateEmptyDescription(t *testing.T) {
	fake := &fakeTopicStore{}
	repo := NewTopicRepository(fake)

	_, err := repo.GetOrCreate(context.Background(), "Sachenrecht", "")
	require.NoError(t, err)
	assert.False(t, fake.insertArg.Description.Valid, "empty descriptions are stored as NULL")
}
