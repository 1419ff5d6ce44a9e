package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/StoryBuilderAi/storybuilder/internal/database"
	"github.com/StoryBuilderAi/storybuilder/internal/model"
)

const resumeColumns = "id, user_id, title, file_name, file_path, file_size, mime_type, status, created_at, updated_at"

// ResumeRepo encapsulates all queries against the resumes table.
type ResumeRepo struct {
	db *sql.DB
}

// NewResumeRepo constructs a ResumeRepo with the provided DB handle.
func NewResumeRepo(db *sql.DB) *ResumeRepo {
	return &ResumeRepo{db: db}
}

func scanResume(s scanner) (*model.Resume, error) {
	var r model.Resume
	err := s.Scan(&r.ID, &r.UserID, &r.Title, &r.FileName, &r.FilePath, &r.FileSize, &r.MimeType, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Create inserts a resume. On success the ID and timestamps are populated
// from a follow-up SELECT.
func (r *ResumeRepo) Create(ctx context.Context, res *model.Resume) error {
	const q = `INSERT INTO resumes (user_id, title, file_name, file_path, file_size, mime_type, status)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	out, err := r.db.ExecContext(ctx, q, res.UserID, res.Title, res.FileName, res.FilePath, res.FileSize, res.MimeType, res.Status)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return ErrInvalidReference
		}
		return err
	}
	id, err := out.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*res = *created
	return nil
}

// GetByID fetches a resume by its ID. ErrNotFound when absent.
func (r *ResumeRepo) GetByID(ctx context.Context, id uint64) (*model.Resume, error) {
	res, err := scanResume(r.db.QueryRowContext(ctx, "SELECT "+resumeColumns+" FROM resumes WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return res, err
}

// ResumeFilter narrows List. Zero values mean "any".
type ResumeFilter struct {
	UserID uint64
	Status string
}

// List returns resumes matching f ordered by creation time ascending.
func (r *ResumeRepo) List(ctx context.Context, f ResumeFilter) ([]*model.Resume, error) {
	q := "SELECT " + resumeColumns + " FROM resumes WHERE 1=1"
	var args []any
	if f.UserID != 0 {
		q += " AND user_id = ?"
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		q += " AND status = ?"
		args = append(args, f.Status)
	}
	q += " ORDER BY created_at, id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Resume{}
	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// Update writes title and status and touches updated_at.
func (r *ResumeRepo) Update(ctx context.Context, res *model.Resume) error {
	const q = `UPDATE resumes SET title = ?, status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	out, err := r.db.ExecContext(ctx, q, res.Title, res.Status, res.ID)
	if err != nil {
		return err
	}
	if n, _ := out.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a resume; its analyses and applications cascade. It
// reports whether a row existed.
func (r *ResumeRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	return deleteByID(ctx, r.db, "DELETE FROM resumes WHERE id = ?", id)
}
