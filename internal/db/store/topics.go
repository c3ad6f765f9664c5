package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertTopic = `
INSERT INTO topics (name, description)
VALUES ($1, $2)
ON CONFLICT (name) DO NOTHING
RETURNING topic_id, name, description, created_at
`

type InsertTopicParams struct {
	Name        string
	Description pgtype.Text
}

// InsertTopic creates a topic. When the name already exists no row is
// returned (pgx.ErrNoRows); the caller resolves the race via GetTopicByName.
func (q *Queries) InsertTopic(ctx context.Context, arg InsertTopicParams) (Topic, error) {
	row := q.db.QueryRow(ctx, insertTopic, arg.Name, arg.Description)
	var t Topic
	err := row.Scan(&t.TopicID, &t.Name, &t.Description, &t.CreatedAt)
	return t, err
}

const getTopicByName = `
SELECT topic_id, name, description, created_at
FROM topics
WHERE name = $1
`

func (q *Queries) GetTopicByName(ctx context.Context, name string) (Topic, error) {
	row := q.db.QueryRow(ctx, getTopicByName, name)
	var t Topic
	err := row.Scan(&t.TopicID, &t.Name, &t.Description, &t.CreatedAt)
	return t, err
}
