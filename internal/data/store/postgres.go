package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver

	"github.com/paperchat/paperchat/internal/domain/chatModel"
	"github.com/paperchat/paperchat/internal/domain/docModel"
	"github.com/paperchat/paperchat/pkg/logx"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	name          TEXT NOT NULL,
	key           TEXT NOT NULL,
	url           TEXT NOT NULL,
	page_count    INTEGER NOT NULL DEFAULT 0,
	upload_status TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_user ON documents (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS messages (
	id              TEXT PRIMARY KEY,
	document_id     TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	user_id         TEXT NOT NULL,
	text            TEXT NOT NULL,
	is_user_message BOOLEAN NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_document ON messages (document_id, created_at DESC, id DESC);
`

// OpenPostgres opens and pings the database, then makes sure the two tables
// exist. There is no migration history here, the schema is applied
// idempotently on startup.
func OpenPostgres(ctx context.Context, databaseURL string) (*sql.DB, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is empty")
	}
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}

type PGDocumentStore struct {
	db     *sql.DB
	logger *logx.Logger
}

func NewPGDocumentStore(db *sql.DB) *PGDocumentStore {
	return &PGDocumentStore{db: db, logger: logx.NewLogger("DocumentStore")}
}

func (s *PGDocumentStore) Create(ctx context.Context, doc docModel.Document) error {
	const query = `
INSERT INTO documents (id, user_id, name, key, url, page_count, upload_status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := s.db.ExecContext(ctx, query,
		doc.Id, doc.UserId, doc.Name, doc.Key, doc.URL,
		doc.PageCount, string(doc.Status), doc.CreatedAt, doc.UpdatedAt,
	)
	return err
}

func (s *PGDocumentStore) GetByID(ctx context.Context, id string, userId string) (docModel.Document, error) {
	const query = `
SELECT id, user_id, name, key, url, page_count, upload_status, created_at, updated_at
FROM documents WHERE id = $1 AND user_id = $2`
	return s.scanDocument(s.db.QueryRowContext(ctx, query, id, userId))
}

func (s *PGDocumentStore) ListByUser(ctx context.Context, userId string) ([]docModel.Document, error) {
	const query = `
SELECT id, user_id, name, key, url, page_count, upload_status, created_at, updated_at
FROM documents WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, userId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []docModel.Document
	for rows.Next() {
		doc, err := s.scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *PGDocumentStore) Delete(ctx context.Context, id string, userId string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1 AND user_id = $2`, id, userId)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGDocumentStore) UpdateStatus(ctx context.Context, id string, status docModel.UploadStatus, pageCount int) error {
	const query = `
UPDATE documents SET upload_status = $2, page_count = $3, updated_at = $4 WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, id, string(status), pageCount, time.Now().UTC())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	s.logger.Debug("status updated", "docId", id, "status", status)
	return nil
}

func (s *PGDocumentStore) GetStatus(ctx context.Context, id string, userId string) (docModel.UploadStatus, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT upload_status FROM documents WHERE id = $1 AND user_id = $2`, id, userId,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return docModel.ParseUploadStatus(raw)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PGDocumentStore) scanDocument(row rowScanner) (docModel.Document, error) {
	var doc docModel.Document
	var rawStatus string
	err := row.Scan(&doc.Id, &doc.UserId, &doc.Name, &doc.Key, &doc.URL,
		&doc.PageCount, &rawStatus, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return docModel.Document{}, ErrNotFound
	}
	if err != nil {
		return docModel.Document{}, err
	}
	doc.Status, err = docModel.ParseUploadStatus(rawStatus)
	return doc, err
}

type PGMessageStore struct {
	db     *sql.DB
	logger *logx.Logger
}

func NewPGMessageStore(db *sql.DB) *PGMessageStore {
	return &PGMessageStore{db: db, logger: logx.NewLogger("MessageStore")}
}

func (s *PGMessageStore) Create(ctx context.Context, msg chatModel.Message) error {
	const query = `
INSERT INTO messages (id, document_id, user_id, text, is_user_message, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.db.ExecContext(ctx, query,
		msg.Id, msg.DocumentId, msg.UserId, msg.Text, msg.IsUserMessage, msg.CreatedAt)
	return err
}

func (s *PGMessageStore) ListByDocument(ctx context.Context, docId string, limit int, cursor string) ([]chatModel.Message, string, error) {
	args := []any{docId, limit + 1}
	query := `
SELECT id, document_id, user_id, text, is_user_message, created_at
FROM messages WHERE document_id = $1`

	if cursor != "" {
		// Keyset pagination anchored on the cursor message's position.
		var anchor time.Time
		err := s.db.QueryRowContext(ctx,
			`SELECT created_at FROM messages WHERE id = $1 AND document_id = $2`, cursor, docId,
		).Scan(&anchor)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		if err != nil {
			return nil, "", err
		}
		query += ` AND (created_at, id) <= ($3, $4)`
		args = append(args, anchor, cursor)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var messages []chatModel.Message
	for rows.Next() {
		var m chatModel.Message
		if err := rows.Scan(&m.Id, &m.DocumentId, &m.UserId, &m.Text, &m.IsUserMessage, &m.CreatedAt); err != nil {
			return nil, "", err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(messages) > limit {
		nextCursor = messages[limit].Id
		messages = messages[:limit]
	}
	return messages, nextCursor, nil
}

func (s *PGMessageStore) RecentWindow(ctx context.Context, docId string, n int) ([]chatModel.Message, error) {
	const query = `
SELECT id, document_id, user_id, text, is_user_message, created_at
FROM (
	SELECT id, document_id, user_id, text, is_user_message, created_at
	FROM messages WHERE document_id = $1
	ORDER BY created_at DESC, id DESC LIMIT $2
) recent
ORDER BY created_at ASC, id ASC`
	rows, err := s.db.QueryContext(ctx, query, docId, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []chatModel.Message
	for rows.Next() {
		var m chatModel.Message
		if err := rows.Scan(&m.Id, &m.DocumentId, &m.UserId, &m.Text, &m.IsUserMessage, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (s *PGMessageStore) DeleteByDocument(ctx context.Context, docId string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE document_id = $1`, docId)
	return err
}
