package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/HunterLewis000/newspaper-app/internal/model"
	"github.com/HunterLewis000/newspaper-app/internal/statusutil"
)

// nowUTC formats the insertion instant the way the wire expects: a UTC
// instant without a zone suffix. Clients normalize before parsing.
func nowUTC() string {
	return time.Now().UTC().Format("2006-01-02 15:04:05")
}

const articleCols = `a.id, a.title, a.author, a.cat, a.editor, a.deadline, a.status, a.status_color, a.archived,
	(SELECT COUNT(*) FROM files f WHERE f.article_id = a.id) AS file_count`

func scanArticle(row interface{ Scan(...any) error }) (model.Article, error) {
	var a model.Article
	var archived int
	err := row.Scan(&a.ID, &a.Title, &a.Author, &a.Cat, &a.Editor, &a.Deadline,
		&a.Status, &a.StatusColor, &archived, &a.FileCount)
	a.Archived = archived != 0
	return a, err
}

// ListActive returns the non-archived articles in display order. Articles
// missing an order row (created before ordering existed) sort last by id.
func (s *Store) ListActive(ctx context.Context) ([]model.Article, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+articleCols+`
		FROM articles a
		LEFT JOIN article_order o ON o.article_id = a.id
		WHERE a.archived = 0
		ORDER BY COALESCE(o.position, 1<<30), a.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) GetArticle(ctx context.Context, id int64) (model.Article, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+articleCols+` FROM articles a WHERE a.id = ?`, id)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Article{}, NotFoundError{Kind: "article", ID: id}
	}
	return a, err
}

// CreateArticle inserts a new article at the end of the display order and
// seeds its history with Not Started.
func (s *Store) CreateArticle(ctx context.Context, title, author, deadline, userName string) (model.Article, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Article{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO articles (title, author, deadline) VALUES (?, ?, ?)`,
		title, author, deadline)
	if err != nil {
		return model.Article{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Article{}, err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO article_order (article_id, position)
		VALUES (?, COALESCE((SELECT MAX(position) FROM article_order), 0) + 1)`, id); err != nil {
		return model.Article{}, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO status_history (article_id, status, timestamp, user_name) VALUES (?, ?, ?, ?)`,
		id, model.StatusNotStarted, nowUTC(), userName); err != nil {
		return model.Article{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Article{}, err
	}
	return s.GetArticle(ctx, id)
}

func (s *Store) exists(ctx context.Context, id int64) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles WHERE id = ?`, id).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return NotFoundError{Kind: "article", ID: id}
	}
	return nil
}

func (s *Store) isPublished(ctx context.Context, id int64) (bool, error) {
	var status model.Status
	err := s.db.QueryRowContext(ctx, `SELECT status FROM articles WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return false, NotFoundError{Kind: "article", ID: id}
	}
	if err != nil {
		return false, err
	}
	return statusutil.IsPublished(status), nil
}

func (s *Store) UpdateFields(ctx context.Context, id int64, title, author, deadline string) error {
	if err := s.exists(ctx, id); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE articles SET title = ?, author = ?, deadline = ? WHERE id = ?`,
		title, author, deadline, id)
	return err
}

// lockedFieldUpdate guards the fields that freeze on Published.
func (s *Store) lockedFieldUpdate(ctx context.Context, id int64, query string, val any) error {
	published, err := s.isPublished(ctx, id)
	if err != nil {
		return err
	}
	if published {
		return ErrPublishedLocked
	}
	_, err = s.db.ExecContext(ctx, query, val, id)
	return err
}

func (s *Store) UpdateCat(ctx context.Context, id int64, cat model.Category) error {
	return s.lockedFieldUpdate(ctx, id, `UPDATE articles SET cat = ? WHERE id = ?`, cat)
}

func (s *Store) UpdateEditor(ctx context.Context, id int64, editor model.Editor) error {
	return s.lockedFieldUpdate(ctx, id, `UPDATE articles SET editor = ? WHERE id = ?`, editor)
}

func (s *Store) UpdateStatusColor(ctx context.Context, id int64, color model.StatusColor) error {
	return s.lockedFieldUpdate(ctx, id, `UPDATE articles SET status_color = ? WHERE id = ?`, color)
}

// AppendStatus appends one history entry and moves the article's status.
// History is append-only; nothing here ever rewrites earlier entries.
func (s *Store) AppendStatus(ctx context.Context, id int64, status model.Status, userName string) error {
	if !statusutil.Valid(status) {
		return errors.New("invalid status")
	}
	if err := s.exists(ctx, id); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO status_history (article_id, status, timestamp, user_name) VALUES (?, ?, ?, ?)`,
		id, status, nowUTC(), userName); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE articles SET status = ? WHERE id = ?`, status, id); err != nil {
		return err
	}
	return tx.Commit()
}

// History returns the entries in insertion order (rowid order, not
// timestamp): the last row is the current status by definition.
func (s *Store) History(ctx context.Context, id int64) ([]model.StatusHistoryEntry, error) {
	if err := s.exists(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT article_id, status, timestamp, user_name FROM status_history WHERE article_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.StatusHistoryEntry
	for rows.Next() {
		var h model.StatusHistoryEntry
		if err := rows.Scan(&h.ArticleID, &h.Status, &h.Timestamp, &h.UserName); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// SaveOrder replaces the display order wholesale.
func (s *Store) SaveOrder(ctx context.Context, order []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM article_order`); err != nil {
		return err
	}
	for i, id := range order {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO article_order (article_id, position) VALUES (?, ?)`, id, i+1); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Order returns the persisted display order.
func (s *Store) Order(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT article_id FROM article_order ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Delete removes the article permanently, along with its history, files and
// order slot.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return NotFoundError{Kind: "article", ID: id}
	}
	return nil
}

// Archive marks a Published article complete: it leaves the active list but
// keeps its record and status.
func (s *Store) Archive(ctx context.Context, id int64) error {
	published, err := s.isPublished(ctx, id)
	if err != nil {
		return err
	}
	if !published {
		return ErrNotPublished
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `UPDATE articles SET archived = 1 WHERE id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM article_order WHERE article_id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// Activate returns an archived article to the active list, at the end of the
// display order.
func (s *Store) Activate(ctx context.Context, id int64) (model.Article, error) {
	if err := s.exists(ctx, id); err != nil {
		return model.Article{}, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Article{}, err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `UPDATE articles SET archived = 0 WHERE id = ?`, id); err != nil {
		return model.Article{}, err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO article_order (article_id, position)
		VALUES (?, COALESCE((SELECT MAX(position) FROM article_order), 0) + 1)`, id); err != nil {
		return model.Article{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Article{}, err
	}
	return s.GetArticle(ctx, id)
}

// ListArchived returns archived articles, most recently archived unspecified;
// sorted by id for stability.
func (s *Store) ListArchived(ctx context.Context) ([]model.Article, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+articleCols+` FROM articles a WHERE a.archived = 1 ORDER BY a.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
