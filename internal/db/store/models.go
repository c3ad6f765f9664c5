package store

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// Document is one uploaded source text.
type Document struct {
	DocumentID pgtype.UUID
	Filename   string
	Content    string
	UploadedAt pgtype.Timestamptz
}

// Topic is a lazily created subject extracted from a document.
type Topic struct {
	TopicID     pgtype.UUID
	Name        string
	Description pgtype.Text
	CreatedAt   pgtype.Timestamptz
}

// Question is a stored generated question. Options holds the JSONB-encoded
// option list for choice questions and is NULL for open questions.
type Question struct {
	QuestionID    pgtype.UUID
	DocumentID    pgtype.UUID
	TopicID       pgtype.UUID
	Type          string
	QuestionText  string
	Options       []byte
	CorrectAnswer pgtype.Text
	Explanation   string
	Difficulty    string
	UseCount      int32
	LastUsed      pgtype.Timestamptz
	CreatedAt     pgtype.Timestamptz
}

// QuestionUsage is one row of the append-only answer ledger.
type QuestionUsage struct {
	UsageID            pgtype.UUID
	SessionID          string
	QuestionID         pgtype.UUID
	WasCorrectFirstTry bool
	AttemptsCount      int32
	UsedAt             pgtype.Timestamptz
}

// ReviewPoolRow is a question joined with its aggregated usage history and
// topic name, as returned by the review pool query.
type ReviewPoolRow struct {
	Question
	TopicName    pgtype.Text
	TimesAsked   int64
	CorrectCount int64
	LastCorrect  bool
}
