package question

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lernquiz/backend/internal/db/repository"
	"github.com/lernquiz/backend/internal/db/store"
)

type stubQuestionStore struct {
	inserted  []store.InsertQuestionParams
	pool      []store.ReviewPoolRow
	poolErr   error
	eligible  int64
	touched   []pgtype.UUID
	insertErr error
}

func (s *stubQuestionStore) InsertQuestion(_ context.Context, arg store.InsertQuestionParams) (store.Question, error) {
	if s.insertErr != nil {
		return store.Question{}, s.insertErr
	}
	s.inserted = append(s.inserted, arg)
	return store.Question{
		QuestionID:    newPGUUID(),
		DocumentID:    arg.DocumentID,
		TopicID:       arg.TopicID,
		Type:          arg.Type,
		QuestionText:  arg.QuestionText,
		Options:       arg.Options,
		CorrectAnswer: arg.CorrectAnswer,
		Explanation:   arg.Explanation,
		Difficulty:    arg.Difficulty,
	}, nil
}

func (s *stubQuestionStore) SelectReviewPool(_ context.Context, limit int32) ([]store.ReviewPoolRow, error) {
	if s.poolErr != nil {
		return nil, s.poolErr
	}
	if int(limit) < len(s.pool) {
		return s.pool[:limit], nil
	}
	return s.pool, nil
}

func (s *stubQuestionStore) CountReviewEligible(_ context.Context) (int64, error) {
	return s.eligible, nil
}

func (s *stubQuestionStore) TouchQuestion(_ context.Context, questionID pgtype.UUID) error {
	s.touched = append(s.touched, questionID)
	return nil
}

type stubUsageStore struct {
	appended []store.InsertQuestionUsageParams
	err      error
}

func (s *stubUsageStore) InsertQuestionUsage(_ context.Context, arg store.InsertQuestionUsageParams) error {
	if s.err != nil {
		return s.err
	}
	s.appended = append(s.appended, arg)
	return nil
}

func newService(qs *stubQuestionStore, us *stubUsageStore) *Service {
	return NewService(
		repository.NewQuestionRepository(qs),
		repository.NewUsageRepository(us),
		zerolog.New(io.Discard),
	)
}

func TestSelectReviewQuestionsTagsSnapshots(t *testing.T) {
	opts, err := json.Marshal([]Option{{ID: "a", Text: "right", IsCorrect: true}, {ID: "b", Text: "wrong"}})
	require.NoError(t, err)

	qs := &stubQuestionStore{pool: []store.ReviewPoolRow{{
		Question: store.Question{
			QuestionID:   newPGUUID(),
			Type:         TypeDefinition,
			QuestionText: "What is X?",
			Options:      opts,
			Explanation:  "because",
			Difficulty:   DifficultyBasic,
		},
		TopicName:    pgtype.Text{String: "Networking", Valid: true},
		TimesAsked:   3,
		CorrectCount: 1,
		LastCorrect:  false,
	}}}

	svc := newService(qs, &stubUsageStore{})
	snaps, err := svc.SelectReviewQuestions(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, snaps, 1)

	snap := snaps[0]
	assert.True(t, snap.IsReviewQuestion)
	assert.Equal(t, ReviewSourceName, snap.SourceFile)
	assert.Equal(t, 3, snap.TimesAsked)
	assert.False(t, snap.LastCorrect)
	assert.Equal(t, 1, snap.CorrectRemaining)
	assert.Equal(t, "Networking", snap.Topic)
	assert.Equal(t, snap.ID, snap.StoredQuestionID)
	require.Len(t, snap.Options, 2)
	assert.Equal(t, "a", snap.Options[0].ID)
}

func TestSelectReviewQuestionsEmptyLedger(t *testing.T) {
	svc := newService(&stubQuestionStore{}, &stubUsageStore{})

	for _, limit := range []int{0, 1, 50} {
		snaps, err := svc.SelectReviewQuestions(context.Background(), limit)
		assert.NoError(t, err)
		assert.Empty(t, snaps)
	}
}

func TestSelectReviewQuestionsSkipsMalformedRows(t *testing.T) {
	qs := &stubQuestionStore{pool: []store.ReviewPoolRow{{
		Question: store.Question{
			QuestionID:   newPGUUID(),
			Type:         TypeDefinition,
			QuestionText: "corrupt",
			Options:      []byte("{not json"),
		},
	}}}

	svc := newService(qs, &stubUsageStore{})
	snaps, err := svc.SelectReviewQuestions(context.Background(), 5)
	assert.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestStoreGeneratedChoiceQuestion(t *testing.T) {
	qs := &stubQuestionStore{}
	svc := newService(qs, &stubUsageStore{})

	snap, err := svc.StoreGenerated(context.Background(), StoredDraft{
		Draft: Draft{
			Type:        TypeCase,
			Text:        "Given Y, what now?",
			Options:     []Option{{ID: "a", Text: "do this", IsCorrect: true}, {ID: "b", Text: "do that"}},
			Explanation: "a is right",
		},
		DocumentID: newPGUUID(),
		TopicName:  "Law",
		SourceFile: "notes.txt",
		Difficulty: DifficultyProfi,
	})
	require.NoError(t, err)

	require.Len(t, qs.inserted, 1)
	params := qs.inserted[0]
	assert.False(t, params.CorrectAnswer.Valid)
	assert.NotEmpty(t, params.Options)

	assert.False(t, snap.IsReviewQuestion)
	assert.Equal(t, "notes.txt", snap.SourceFile)
	assert.Equal(t, snap.ID, snap.StoredQuestionID)
}

func TestStoreGeneratedOpenQuestion(t *testing.T) {
	qs := &stubQuestionStore{}
	svc := newService(qs, &stubUsageStore{})

	_, err := svc.StoreGenerated(context.Background(), StoredDraft{
		Draft: Draft{
			Type:          TypeOpen,
			Text:          "Explain Z.",
			CorrectAnswer: "Z is the thing.",
		},
		DocumentID: newPGUUID(),
		Difficulty: DifficultyBasic,
	})
	require.NoError(t, err)

	require.Len(t, qs.inserted, 1)
	params := qs.inserted[0]
	assert.True(t, params.CorrectAnswer.Valid)
	assert.Equal(t, "Z is the thing.", params.CorrectAnswer.String)
	assert.Nil(t, params.Options)
}

func TestRecordUsageAppendsLedgerAndTouches(t *testing.T) {
	qs := &stubQuestionStore{}
	us := &stubUsageStore{}
	svc := newService(qs, us)

	id := uuid.NewString()
	err := svc.RecordUsage(context.Background(), "sess-1", id, true, 1)
	require.NoError(t, err)

	require.Len(t, us.appended, 1)
	assert.Equal(t, "sess-1", us.appended[0].SessionID)
	assert.True(t, us.appended[0].WasCorrectFirstTry)
	assert.Equal(t, int32(1), us.appended[0].AttemptsCount)
	assert.Len(t, qs.touched, 1)
}

func TestRecordUsageRejectsBadID(t *testing.T) {
	svc := newService(&stubQuestionStore{}, &stubUsageStore{})
	err := svc.RecordUsage(context.Background(), "sess-1", "not-a-uuid", false, 1)
	assert.Error(t, err)
}

func TestRecordUsagePropagatesLedgerError(t *testing.T) {
	us := &stubUsageStore{err: errors.New("db down")}
	svc := newService(&stubQuestionStore{}, us)

	err := svc.RecordUsage(context.Background(), "sess-1", uuid.NewString(), false, 2)
	assert.Error(t, err)
}

func newPGUUID() pgtype.UUID {
	id := uuid.New()
	var pgID pgtype.UUID
	copy(pgID.Bytes[:], id[:])
	pgID.Valid = true
	return pgID
}
