package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/StoryBuilderAi/storybuilder/internal/database"
	"github.com/StoryBuilderAi/storybuilder/internal/model"
)

const applicationColumns = "id, user_id, job_id, resume_id, status, match_score, notes, applied_at, updated_at"

// ApplicationRepo persists job_applications, the join between users, jobs
// and resumes.
type ApplicationRepo struct {
	db *sql.DB
}

func NewApplicationRepo(db *sql.DB) *ApplicationRepo { return &ApplicationRepo{db: db} }

func scanApplication(s scanner) (*model.JobApplication, error) {
	var (
		a     model.JobApplication
		score sql.NullInt64
		notes sql.NullString
	)
	if err := s.Scan(&a.ID, &a.UserID, &a.JobID, &a.ResumeID, &a.Status, &score, &notes, &a.AppliedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.MatchScore = intPtr(score)
	a.Notes = notes.String
	return &a, nil
}

// Create inserts an application. A missing user, job or resume surfaces as
// ErrInvalidReference.
func (r *ApplicationRepo) Create(ctx context.Context, a *model.JobApplication) error {
	const q = `INSERT INTO job_applications (user_id, job_id, resume_id, status, match_score, notes)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, a.UserID, a.JobID, a.ResumeID, a.Status, nullInt(a.MatchScore), a.Notes)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return ErrInvalidReference
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*a = *created
	return nil
}

// GetByID fetches one application.
func (r *ApplicationRepo) GetByID(ctx context.Context, id uint64) (*model.JobApplication, error) {
	a, err := scanApplication(r.db.QueryRowContext(ctx, "SELECT "+applicationColumns+" FROM job_applications WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

// ListByUser returns a user's applications oldest first.
func (r *ApplicationRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.JobApplication, error) {
	return r.list(ctx, "user_id", userID)
}

// ListByJob returns the applications for a job oldest first.
func (r *ApplicationRepo) ListByJob(ctx context.Context, jobID uint64) ([]*model.JobApplication, error) {
	return r.list(ctx, "job_id", jobID)
}

func (r *ApplicationRepo) list(ctx context.Context, column string, id uint64) ([]*model.JobApplication, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+applicationColumns+" FROM job_applications WHERE "+column+" = ? ORDER BY applied_at, id", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.JobApplication{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Update writes status, match score and notes.
func (r *ApplicationRepo) Update(ctx context.Context, a *model.JobApplication) error {
	const q = `UPDATE job_applications
	           SET status = ?, match_score = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, a.Status, nullInt(a.MatchScore), a.Notes, a.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an application and reports whether it existed.
func (r *ApplicationRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	return deleteByID(ctx, r.db, "DELETE FROM job_applications WHERE id = ?", id)
}
