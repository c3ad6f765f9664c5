package store

import (
	"context"
)

const upsertDocument = `
INSERT INTO documents (filename, content)
VALUES ($1, $2)
ON CONFLICT (filename)
DO UPDATE SET content = EXCLUDED.content, uploaded_at = now()
RETURNING document_id, filename, content, uploaded_at
`

type UpsertDocumentParams struct {
	Filename string
	Content  string
}

// UpsertDocument stores an uploaded document; re-uploading the same filename
// overwrites the content.
func (q *Queries) UpsertDocument(ctx context.Context, arg UpsertDocumentParams) (Document, error) {
	row := q.db.QueryRow(ctx, upsertDocument, arg.Filename, arg.Content)
	var d Document
	err := row.Scan(&d.DocumentID, &d.Filename, &d.Content, &d.UploadedAt)
	return d, err
}
