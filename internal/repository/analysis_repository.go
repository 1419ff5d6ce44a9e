package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/StoryBuilderAi/storybuilder/internal/database"
	"github.com/StoryBuilderAi/storybuilder/internal/model"
)

const analysisColumns = "id, resume_id, analysis, score, skills, experience, recommendations, created_at, updated_at"

// AnalysisRepo stores resume analysis runs as JSON text columns.
type AnalysisRepo struct {
	db *sql.DB
}

func NewAnalysisRepo(db *sql.DB) *AnalysisRepo { return &AnalysisRepo{db: db} }

func nullJSON(m json.RawMessage) sql.NullString {
	if len(m) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(m), Valid: true}
}

func rawJSON(s sql.NullString) json.RawMessage {
	if !s.Valid || s.String == "" {
		return nil
	}
	return json.RawMessage(s.String)
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func scanAnalysis(s scanner) (*model.ResumeAnalysis, error) {
	var (
		a                                  model.ResumeAnalysis
		analysis                           string
		score                              sql.NullInt64
		skills, experience, recommendation sql.NullString
	)
	if err := s.Scan(&a.ID, &a.ResumeID, &analysis, &score, &skills, &experience, &recommendation, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Analysis = json.RawMessage(analysis)
	a.Score = intPtr(score)
	a.Skills = rawJSON(skills)
	a.Experience = rawJSON(experience)
	a.Recommendations = rawJSON(recommendation)
	return &a, nil
}

// Create inserts an analysis row for a resume.
func (r *AnalysisRepo) Create(ctx context.Context, a *model.ResumeAnalysis) error {
	const q = `INSERT INTO resume_analyses (resume_id, analysis, score, skills, experience, recommendations)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, a.ResumeID, string(a.Analysis), nullInt(a.Score),
		nullJSON(a.Skills), nullJSON(a.Experience), nullJSON(a.Recommendations))
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
	created, err := scanAnalysis(r.db.QueryRowContext(ctx, "SELECT "+analysisColumns+" FROM resume_analyses WHERE id = ?", id))
	if err != nil {
		return err
	}
	*a = *created
	return nil
}

// LatestForResume returns the most recent analysis of a resume.
func (r *AnalysisRepo) LatestForResume(ctx context.Context, resumeID uint64) (*model.ResumeAnalysis, error) {
	a, err := scanAnalysis(r.db.QueryRowContext(ctx,
		"SELECT "+analysisColumns+" FROM resume_analyses WHERE resume_id = ? ORDER BY created_at DESC, id DESC LIMIT 1", resumeID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}
