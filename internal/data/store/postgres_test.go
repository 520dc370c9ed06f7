package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/paperchat/paperchat/internal/domain/chatModel"
	"github.com/paperchat/paperchat/internal/domain/docModel"
)

func newDocStoreMock(t *testing.T) (*PGDocumentStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPGDocumentStore(db), mock
}

func newMsgStoreMock(t *testing.T) (*PGMessageStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPGMessageStore(db), mock
}

func docColumns() []string {
	return []string{"id", "user_id", "name", "key", "url", "page_count", "upload_status", "created_at", "updated_at"}
}

func msgColumns() []string {
	return []string{"id", "document_id", "user_id", "text", "is_user_message", "created_at"}
}

func TestPGDocumentStore_GetByID(t *testing.T) {
	s, mock := newDocStoreMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, name, key, url, page_count, upload_status, created_at, updated_at
FROM documents WHERE id = $1 AND user_id = $2`)).
		WithArgs("doc-1", "user-1").
		WillReturnRows(sqlmock.NewRows(docColumns()).
			AddRow("doc-1", "user-1", "a.pdf", "k", "http://u", 5, "SUCCESS", now, now))

	doc, err := s.GetByID(context.Background(), "doc-1", "user-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if doc.Status != docModel.StatusSuccess || doc.PageCount != 5 {
		t.Errorf("scanned document wrong: %+v", doc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPGDocumentStore_GetByIDNotFound(t *testing.T) {
	s, mock := newDocStoreMock(t)

	mock.ExpectQuery("SELECT id, user_id, name").
		WithArgs("doc-1", "user-2").
		WillReturnRows(sqlmock.NewRows(docColumns()))

	if _, err := s.GetByID(context.Background(), "doc-1", "user-2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestPGDocumentStore_UpdateStatus(t *testing.T) {
	s, mock := newDocStoreMock(t)

	mock.ExpectExec("UPDATE documents SET upload_status").
		WithArgs("doc-1", "FAILED", 9, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.UpdateStatus(context.Background(), "doc-1", docModel.StatusFailed, 9); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPGDocumentStore_UpdateStatusMissingRow(t *testing.T) {
	s, mock := newDocStoreMock(t)

	mock.ExpectExec("UPDATE documents SET upload_status").
		WithArgs("ghost", "SUCCESS", 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.UpdateStatus(context.Background(), "ghost", docModel.StatusSuccess, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestPGDocumentStore_DeleteScopedByOwner(t *testing.T) {
	s, mock := newDocStoreMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM documents WHERE id = $1 AND user_id = $2`)).
		WithArgs("doc-1", "intruder").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.Delete(context.Background(), "doc-1", "intruder"); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign delete should be ErrNotFound, got %v", err)
	}
}

func TestPGMessageStore_FirstPageSetsCursor(t *testing.T) {
	s, mock := newMsgStoreMock(t)
	now := time.Now()

	rows := sqlmock.NewRows(msgColumns())
	for _, id := range []string{"m3", "m2", "m1"} {
		rows.AddRow(id, "doc-1", "user-1", "text "+id, true, now)
	}
	// limit+1 rows back means there is a next page
	mock.ExpectQuery("SELECT id, document_id, user_id, text, is_user_message, created_at").
		WithArgs("doc-1", 3).
		WillReturnRows(rows)

	msgs, cursor, err := s.ListByDocument(context.Background(), "doc-1", 2, "")
	if err != nil {
		t.Fatalf("ListByDocument: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Id != "m3" {
		t.Errorf("page wrong: %+v", msgs)
	}
	if cursor != "m1" {
		t.Errorf("cursor = %q, want m1", cursor)
	}
}

func TestPGMessageStore_UnknownCursor(t *testing.T) {
	s, mock := newMsgStoreMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT created_at FROM messages WHERE id = $1 AND document_id = $2`)).
		WithArgs("ghost", "doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}))

	if _, _, err := s.ListByDocument(context.Background(), "doc-1", 2, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown cursor should be ErrNotFound, got %v", err)
	}
}

func TestPGMessageStore_Create(t *testing.T) {
	s, mock := newMsgStoreMock(t)
	now := time.Now()

	mock.ExpectExec("INSERT INTO messages").
		WithArgs("m1", "doc-1", "user-1", "hello", true, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Create(context.Background(), chatModel.Message{
		Id: "m1", DocumentId: "doc-1", UserId: "user-1",
		Text: "hello", IsUserMessage: true, CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPGMessageStore_RecentWindow(t *testing.T) {
	s, mock := newMsgStoreMock(t)
	now := time.Now()

	rows := sqlmock.NewRows(msgColumns()).
		AddRow("m1", "doc-1", "user-1", "older", true, now.Add(-time.Minute)).
		AddRow("m2", "doc-1", "user-1", "newer", false, now)
	mock.ExpectQuery("ORDER BY created_at ASC, id ASC").
		WithArgs("doc-1", 6).
		WillReturnRows(rows)

	msgs, err := s.RecentWindow(context.Background(), "doc-1", 6)
	if err != nil {
		t.Fatalf("RecentWindow: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Id != "m1" {
		t.Errorf("window wrong: %+v", msgs)
	}
}
