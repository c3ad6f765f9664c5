package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertQuestionUsage = `
INSERT INTO question_usage (session_id, question_id, was_correct_first_try, attempts_count)
VALUES ($1, $2, $3, $4)
`

type InsertQuestionUsageParams struct {
	SessionID          string
	QuestionID         pgtype.UUID
	WasCorrectFirstTry bool
	AttemptsCount      int32
}

// InsertQuestionUsage appends one row to the answer ledger.
func (q *Queries) InsertQuestionUsage(ctx context.Context, arg InsertQuestionUsageParams) error {
	_, err := q.db.Exec(ctx, insertQuestionUsage,
		arg.SessionID, arg.QuestionID, arg.WasCorrectFirstTry, arg.AttemptsCount)
	return err
}
