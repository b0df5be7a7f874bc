package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fwojciec/guji"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ guji.DocumentWriter = (*DocumentStore)(nil)

// DocumentStore archives documents in SQLite. Writing the same book again
// adds a new archive entry; reads return the latest one.
type DocumentStore struct {
	db *DB
}

// NewDocumentStore creates a new DocumentStore.
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// WriteDocument stores the document and its chapters in one transaction.
// Chapters without a content hash get one computed.
func (s *DocumentStore) WriteDocument(ctx context.Context, doc *guji.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	fetchedAt := doc.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	docID := uuid.New().String()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO documents (id, book_id, title, source_url, fetched_at)
		VALUES (?, ?, ?, ?, ?)
	`, docID, string(doc.BookID), doc.Title, doc.SourceURL, formatRFC3339(fetchedAt)); err != nil {
		return err
	}

	for i, ch := range doc.Chapters {
		hash := ch.ContentHash
		if hash == "" {
			hash = hashContent(ch.Text)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO chapters (id, document_id, position, url, title, content, content_hash)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, uuid.New().String(), docID, i, ch.Ref.URL, ch.Ref.Title, ch.Text, hash); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindDocument returns the most recently archived document of the book.
// Returns ENOTFOUND if the book was never archived.
func (s *DocumentStore) FindDocument(ctx context.Context, bookID guji.BookID) (*guji.Document, error) {
	var docID, fetchedAt string
	doc := &guji.Document{BookID: bookID}

	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, source_url, fetched_at
		FROM documents
		WHERE book_id = ?
		ORDER BY fetched_at DESC, rowid DESC
		LIMIT 1
	`, string(bookID)).Scan(&docID, &doc.Title, &doc.SourceURL, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, guji.Errorf(guji.ENOTFOUND, "book %s not archived", bookID)
	}
	if err != nil {
		return nil, err
	}

	if doc.FetchedAt, err = parseRFC3339(fetchedAt, "fetched_at"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT url, title, content, content_hash
		FROM chapters
		WHERE document_id = ?
		ORDER BY position ASC
	`, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ch guji.CleanedChapter
		if err := rows.Scan(&ch.Ref.URL, &ch.Ref.Title, &ch.Text, &ch.ContentHash); err != nil {
			return nil, err
		}
		doc.Chapters = append(doc.Chapters, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return doc, nil
}

// CountDocuments returns how many archive entries exist for the book.
func (s *DocumentStore) CountDocuments(ctx context.Context, bookID guji.BookID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents WHERE book_id = ?", string(bookID)).Scan(&n)
	return n, err
}

// DeleteDocuments removes every archive entry of the book with its
// chapters and returns how many entries were removed.
func (s *DocumentStore) DeleteDocuments(ctx context.Context, bookID guji.BookID) (int, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE book_id = ?", string(bookID))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
