package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertQuestion = `
INSERT INTO questions (document_id, topic_id, type, question_text, options, correct_answer, explanation, difficulty)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING question_id, document_id, topic_id, type, question_text, options, correct_answer, explanation, difficulty, use_count, last_used, created_at
`

type InsertQuestionParams struct {
	DocumentID    pgtype.UUID
	TopicID       pgtype.UUID
	Type          string
	QuestionText  string
	Options       []byte
	CorrectAnswer pgtype.Text
	Explanation   string
	Difficulty    string
}

func (q *Queries) InsertQuestion(ctx context.Context, arg InsertQuestionParams) (Question, error) {
	row := q.db.QueryRow(ctx, insertQuestion,
		arg.DocumentID, arg.TopicID, arg.Type, arg.QuestionText,
		arg.Options, arg.CorrectAnswer, arg.Explanation, arg.Difficulty)
	var qu Question
	err := row.Scan(&qu.QuestionID, &qu.DocumentID, &qu.TopicID, &qu.Type,
		&qu.QuestionText, &qu.Options, &qu.CorrectAnswer, &qu.Explanation,
		&qu.Difficulty, &qu.UseCount, &qu.LastUsed, &qu.CreatedAt)
	return qu, err
}

// selectReviewPool aggregates the usage ledger per question and returns
// questions that have been attempted but not yet answered correctly twice on
// a first try, least-used and least-recently-used first.
const selectReviewPool = `
SELECT q.question_id, q.document_id, q.topic_id, q.type, q.question_text, q.options,
       q.correct_answer, q.explanation, q.difficulty, q.use_count, q.last_used, q.created_at,
       t.name,
       u.times_asked, u.correct_count, u.last_correct
FROM questions q
JOIN (
    SELECT question_id,
           COUNT(*) AS times_asked,
           COUNT(*) FILTER (WHERE was_correct_first_try) AS correct_count,
           (ARRAY_AGG(was_correct_first_try ORDER BY used_at DESC))[1] AS last_correct
    FROM question_usage
    GROUP BY question_id
) u ON u.question_id = q.question_id
LEFT JOIN topics t ON t.topic_id = q.topic_id
WHERE u.correct_count < 2
ORDER BY q.use_count ASC, q.last_used ASC NULLS FIRST
LIMIT $1
`

func (q *Queries) SelectReviewPool(ctx context.Context, limit int32) ([]ReviewPoolRow, error) {
	rows, err := q.db.Query(ctx, selectReviewPool, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ReviewPoolRow
	for rows.Next() {
		var r ReviewPoolRow
		if err := rows.Scan(&r.QuestionID, &r.DocumentID, &r.TopicID, &r.Type,
			&r.QuestionText, &r.Options, &r.CorrectAnswer, &r.Explanation,
			&r.Difficulty, &r.UseCount, &r.LastUsed, &r.CreatedAt,
			&r.TopicName, &r.TimesAsked, &r.CorrectCount, &r.LastCorrect); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

const countReviewEligible = `
SELECT COUNT(*)
FROM (
    SELECT question_id
    FROM question_usage
    GROUP BY question_id
    HAVING COUNT(*) FILTER (WHERE was_correct_first_try) < 2
) eligible
`

func (q *Queries) CountReviewEligible(ctx context.Context) (int64, error) {
	var total int64
	err := q.db.QueryRow(ctx, countReviewEligible).Scan(&total)
	return total, err
}

const touchQuestion = `
UPDATE questions
SET use_count = use_count + 1, last_used = now()
WHERE question_id = $1
`

// TouchQuestion bumps use_count and last_used after a question was answered
// in a session.
func (q *Queries) TouchQuestion(ctx context.Context, questionID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, touchQuestion, questionID)
	return err
}
