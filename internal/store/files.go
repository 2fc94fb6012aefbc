package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/HunterLewis000/newspaper-app/internal/model"
)

// Files lists an article's attachments. Contents stay in the database; the
// list carries metadata only.
func (s *Store) Files(ctx context.Context, articleID int64) ([]model.FileAttachment, error) {
	if err := s.exists(ctx, articleID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, article_id, filename FROM files WHERE article_id = ? ORDER BY id`, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.FileAttachment
	for rows.Next() {
		var f model.FileAttachment
		if err := rows.Scan(&f.ID, &f.ArticleID, &f.Filename); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *Store) AddFile(ctx context.Context, articleID int64, filename string, content []byte) (model.FileAttachment, error) {
	if err := s.exists(ctx, articleID); err != nil {
		return model.FileAttachment{}, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO files (article_id, filename, content, created_at) VALUES (?, ?, ?, ?)`,
		articleID, filename, content, nowUTC())
	if err != nil {
		return model.FileAttachment{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.FileAttachment{}, err
	}
	return model.FileAttachment{ID: id, ArticleID: articleID, Filename: filename}, nil
}

// DeleteFile removes one attachment and reports which article owned it, so
// the caller can broadcast against the right row.
func (s *Store) DeleteFile(ctx context.Context, fileID int64) (int64, error) {
	var articleID int64
	err := s.db.QueryRowContext(ctx, `SELECT article_id FROM files WHERE id = ?`, fileID).Scan(&articleID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, NotFoundError{Kind: "file", ID: fileID}
	}
	if err != nil {
		return 0, err
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, fileID)
	return articleID, err
}

func (s *Store) FileContent(ctx context.Context, fileID int64) (string, []byte, error) {
	var filename string
	var content []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT filename, content FROM files WHERE id = ?`, fileID).Scan(&filename, &content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, NotFoundError{Kind: "file", ID: fileID}
	}
	return filename, content, err
}
