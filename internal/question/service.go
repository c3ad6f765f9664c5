package question

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/lernquiz/backend/internal/db/repository"
	"github.com/lernquiz/backend/internal/db/store"
)

// Retirement threshold: a question leaves the review pool permanently once it
// has been answered correctly on the first try this many times.
const retireAfterCorrect = 2

// Service is the question bank: it stores generated questions, selects the
// review pool and records usage against the answer ledger.
type Service struct {
	questions *repository.QuestionRepository
	usage     *repository.UsageRepository
	logger    zerolog.Logger
}

// NewService creates the question bank service.
func NewService(questions *repository.QuestionRepository, usage *repository.UsageRepository, logger zerolog.Logger) *Service {
	return &Service{
		questions: questions,
		usage:     usage,
		logger:    logger.With().Str("component", "question_bank").Logger(),
	}
}

// StoredDraft describes where a validated draft belongs before storage.
type StoredDraft struct {
	Draft      Draft
	DocumentID pgtype.UUID
	TopicID    pgtype.UUID
	TopicName  string
	SourceFile string
	Difficulty string
}

// StoreGenerated persists an accepted draft and returns its session snapshot.
func (s *Service) StoreGenerated(ctx context.Context, sd StoredDraft) (Snapshot, error) {
	params := store.InsertQuestionParams{
		DocumentID:   sd.DocumentID,
		TopicID:      sd.TopicID,
		Type:         sd.Draft.Type,
		QuestionText: sd.Draft.Text,
		Explanation:  sd.Draft.Explanation,
		Difficulty:   sd.Difficulty,
	}
	if sd.Draft.Type == TypeOpen {
		params.CorrectAnswer = pgtype.Text{String: sd.Draft.CorrectAnswer, Valid: true}
	} else {
		encoded, err := json.Marshal(sd.Draft.Options)
		if err != nil {
			return Snapshot{}, fmt.Errorf("encode options: %w", err)
		}
		params.Options = encoded
	}

	row, err := s.questions.Insert(ctx, params)
	if err != nil {
		return Snapshot{}, fmt.Errorf("insert question: %w", err)
	}

	id := uuidString(row.QuestionID)
	return Snapshot{
		ID:               id,
		StoredQuestionID: id,
		Type:             sd.Draft.Type,
		Text:             sd.Draft.Text,
		Options:          sd.Draft.Options,
		CorrectAnswer:    sd.Draft.CorrectAnswer,
		Explanation:      sd.Draft.Explanation,
		Difficulty:       sd.Difficulty,
		Topic:            sd.TopicName,
		SourceFile:       sd.SourceFile,
		IsReviewQuestion: false,
	}, nil
}

// EphemeralSnapshot builds a session snapshot for a draft that could not be
// stored. It is served once and never enters the review pool.
func EphemeralSnapshot(d Draft, difficulty, topicName, sourceFile string) Snapshot {
	return Snapshot{
		ID:            uuid.NewString(),
		Type:          d.Type,
		Text:          d.Text,
		Options:       d.Options,
		CorrectAnswer: d.CorrectAnswer,
		Explanation:   d.Explanation,
		Difficulty:    difficulty,
		Topic:         topicName,
		SourceFile:    sourceFile,
	}
}

// SelectReviewQuestions returns up to limit previously missed questions,
// least-used and least-recently-used first. Fewer may be returned when the
// pool is smaller than limit; the caller backfills with fresh questions.
func (s *Service) SelectReviewQuestions(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.questions.ReviewPool(ctx, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("select review pool: %w", err)
	}

	snapshots := make([]Snapshot, 0, len(rows))
	for _, row := range rows {
		snap, err := reviewSnapshot(row)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("question_id", uuidString(row.QuestionID)).
				Msg("skip malformed stored question")
			continue
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

// ReviewPoolSize counts stored questions currently eligible for review.
func (s *Service) ReviewPoolSize(ctx context.Context) (int64, error) {
	return s.questions.CountEligible(ctx)
}

// RecordUsage appends a ledger row for an answered stored question and bumps
// its use counters.
func (s *Service) RecordUsage(ctx context.Context, sessionID, storedQuestionID string, wasCorrectFirstTry bool, attempts int) error {
	pgID, err := pgUUID(storedQuestionID)
	if err != nil {
		return fmt.Errorf("parse question id: %w", err)
	}
	if err := s.usage.Append(ctx, store.InsertQuestionUsageParams{
		SessionID:          sessionID,
		QuestionID:         pgID,
		WasCorrectFirstTry: wasCorrectFirstTry,
		AttemptsCount:      int32(attempts),
	}); err != nil {
		return fmt.Errorf("append usage: %w", err)
	}
	if err := s.questions.MarkUsed(ctx, pgID); err != nil {
		return fmt.Errorf("mark used: %w", err)
	}
	return nil
}

func reviewSnapshot(row store.ReviewPoolRow) (Snapshot, error) {
	var opts []Option
	if len(row.Options) > 0 {
		if err := json.Unmarshal(row.Options, &opts); err != nil {
			return Snapshot{}, fmt.Errorf("decode options: %w", err)
		}
	}

	remaining := retireAfterCorrect - int(row.CorrectCount)
	if remaining < 0 {
		remaining = 0
	}

	id := uuidString(row.QuestionID)
	return Snapshot{
		ID:               id,
		StoredQuestionID: id,
		Type:             row.Type,
		Text:             row.QuestionText,
		Options:          opts,
		CorrectAnswer:    row.CorrectAnswer.String,
		Explanation:      row.Explanation,
		Difficulty:       row.Difficulty,
		Topic:            row.TopicName.String,
		SourceFile:       ReviewSourceName,
		IsReviewQuestion: true,
		TimesAsked:       int(row.TimesAsked),
		LastCorrect:      row.LastCorrect,
		CorrectRemaining: remaining,
	}, nil
}

func uuidString(id pgtype.UUID) string {
	u, err := uuid.FromBytes(id.Bytes[:])
	if err != nil {
		return uuid.NewString()
	}
	return u.String()
}

func pgUUID(id string) (pgtype.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, err
	}
	var pgID pgtype.UUID
	copy(pgID.Bytes[:], parsed[:])
	pgID.Valid = true
	return pgID, nil
}
