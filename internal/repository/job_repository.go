package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/StoryBuilderAi/storybuilder/internal/model"
)

const jobColumns = "id, title, company, description, requirements, location, salary, job_type, is_active, created_at, updated_at"

// JobRepo encapsulates queries related to job postings. Requirements are
// stored as a JSON array in a TEXT column.
type JobRepo struct {
	db *sql.DB
}

func NewJobRepo(db *sql.DB) *JobRepo { return &JobRepo{db: db} }

func encodeRequirements(reqs []string) (sql.NullString, error) {
	if len(reqs) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(reqs)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func scanJob(s scanner) (*model.Job, error) {
	var (
		j                         model.Job
		reqs, loc, salary, jobTyp sql.NullString
	)
	if err := s.Scan(&j.ID, &j.Title, &j.Company, &j.Description, &reqs, &loc, &salary, &jobTyp, &j.IsActive, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return nil, err
	}
	j.Requirements = []string{}
	if reqs.Valid && reqs.String != "" {
		if err := json.Unmarshal([]byte(reqs.String), &j.Requirements); err != nil {
			return nil, err
		}
	}
	j.Location, j.Salary, j.JobType = loc.String, salary.String, jobTyp.String
	return &j, nil
}

// Create inserts a job and reloads it.
func (r *JobRepo) Create(ctx context.Context, j *model.Job) error {
	reqs, err := encodeRequirements(j.Requirements)
	if err != nil {
		return err
	}
	const q = `INSERT INTO jobs (title, company, description, requirements, location, salary, job_type, is_active)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, j.Title, j.Company, j.Description, reqs, j.Location, j.Salary, j.JobType, j.IsActive)
	if err != nil {
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
	*j = *created
	return nil
}

// GetByID fetches a job by ID.
func (r *JobRepo) GetByID(ctx context.Context, id uint64) (*model.Job, error) {
	j, err := scanJob(r.db.QueryRowContext(ctx, "SELECT "+jobColumns+" FROM jobs WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return j, err
}

// List returns jobs ordered by creation time; activeOnly filters on is_active.
func (r *JobRepo) List(ctx context.Context, activeOnly bool) ([]*model.Job, error) {
	q := "SELECT " + jobColumns + " FROM jobs"
	if activeOnly {
		q += " WHERE is_active = 1"
	}
	q += " ORDER BY created_at, id"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// Update writes every mutable column of j and touches updated_at.
func (r *JobRepo) Update(ctx context.Context, j *model.Job) error {
	reqs, err := encodeRequirements(j.Requirements)
	if err != nil {
		return err
	}
	const q = `UPDATE jobs
	           SET title = ?, company = ?, description = ?, requirements = ?, location = ?, salary = ?,
	               job_type = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, j.Title, j.Company, j.Description, reqs, j.Location, j.Salary, j.JobType, j.IsActive, j.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a job; its applications cascade.
func (r *JobRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	return deleteByID(ctx, r.db, "DELETE FROM jobs WHERE id = ?", id)
}
