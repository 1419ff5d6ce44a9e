package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/StoryBuilderAi/storybuilder/internal/model"
	"github.com/StoryBuilderAi/storybuilder/internal/repository"
	"github.com/StoryBuilderAi/storybuilder/internal/storage"
)

// ResumeStore is implemented by *repository.ResumeRepo.
type ResumeStore interface {
	Create(ctx context.Context, r *model.Resume) error
	GetByID(ctx context.Context, id uint64) (*model.Resume, error)
	List(ctx context.Context, f repository.ResumeFilter) ([]*model.Resume, error)
	Update(ctx context.Context, r *model.Resume) error
	Delete(ctx context.Context, id uint64) (bool, error)
}

// AnalysisStore is implemented by *repository.AnalysisRepo.
type AnalysisStore interface {
	Create(ctx context.Context, a *model.ResumeAnalysis) error
	LatestForResume(ctx context.Context, resumeID uint64) (*model.ResumeAnalysis, error)
}

// AllowedResumeTypes are the MIME types accepted for upload.
var AllowedResumeTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"text/plain": true,
}

// ResumeService manages resume records, their stored files and analyses.
type ResumeService struct {
	resumes   ResumeStore
	analyses  AnalysisStore
	files     storage.ObjectStore
	maxUpload int64
	log       zerolog.Logger
}

func NewResumeService(resumes ResumeStore, analyses AnalysisStore, files storage.ObjectStore, maxUpload int64, log zerolog.Logger) *ResumeService {
	return &ResumeService{
		resumes:   resumes,
		analyses:  analyses,
		files:     files,
		maxUpload: maxUpload,
		log:       log.With().Str("component", "resumes").Logger(),
	}
}

// CreateResumeInput describes an uploaded resume file.
type CreateResumeInput struct {
	UserID   uint64
	Title    string
	FileName string
	Size     int64
	MimeType string
	Body     io.Reader
}

func validResumeStatus(s string) bool {
	return s == model.ResumeStatusPending || s == model.ResumeStatusProcessed || s == model.ResumeStatusFailed
}

// CreateResume stores the file and inserts the resume row with status
// pending. When the insert fails the stored object is removed again.
func (s *ResumeService) CreateResume(ctx context.Context, in CreateResumeInput) (*model.Resume, error) {
	title := strings.TrimSpace(in.Title)
	s.log.Info().Uint64("user_id", in.UserID).Str("title", title).Msg("creating resume")

	if title == "" {
		return nil, invalid("Title is required")
	}
	if in.FileName == "" || in.Size <= 0 {
		return nil, invalid("A non-empty file is required")
	}
	if s.maxUpload > 0 && in.Size > s.maxUpload {
		return nil, invalid("File is too large")
	}
	mime := strings.TrimSpace(strings.SplitN(in.MimeType, ";", 2)[0])
	if !AllowedResumeTypes[mime] {
		return nil, invalid("Unsupported file type")
	}

	key := storage.ResumeKey(in.UserID, in.FileName)
	if err := s.files.Put(ctx, key, in.Body, in.Size, mime); err != nil {
		return nil, err
	}
	r := &model.Resume{
		UserID:   in.UserID,
		Title:    title,
		FileName: in.FileName,
		FilePath: key,
		FileSize: in.Size,
		MimeType: mime,
		Status:   model.ResumeStatusPending,
	}
	if err := s.resumes.Create(ctx, r); err != nil {
		if derr := s.files.Delete(ctx, key); derr != nil {
			s.log.Warn().Err(derr).Str("key", key).Msg("orphaned resume object")
		}
		if errors.Is(err, repository.ErrInvalidReference) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	s.log.Info().Uint64("resume_id", r.ID).Msg("resume created")
	return r, nil
}

// GetResume returns the resume with id, or nil.
func (s *ResumeService) GetResume(ctx context.Context, id uint64) (*model.Resume, error) {
	return orNil(s.resumes.GetByID(ctx, id))
}

func (s *ResumeService) ListResumesByUser(ctx context.Context, userID uint64) ([]*model.Resume, error) {
	return s.resumes.List(ctx, repository.ResumeFilter{UserID: userID})
}

func (s *ResumeService) ListResumes(ctx context.Context) ([]*model.Resume, error) {
	return s.resumes.List(ctx, repository.ResumeFilter{})
}

// ListResumesByStatus filters on one of the resume statuses.
func (s *ResumeService) ListResumesByStatus(ctx context.Context, status string) ([]*model.Resume, error) {
	if !validResumeStatus(status) {
		return nil, invalid("Invalid resume status")
	}
	return s.resumes.List(ctx, repository.ResumeFilter{Status: status})
}

// UpdateResumeInput is a partial update of a resume.
type UpdateResumeInput struct {
	Title  *string
	Status *string
}

// UpdateResume merges in and returns the stored result, or nil when the
// resume does not exist.
func (s *ResumeService) UpdateResume(ctx context.Context, id uint64, in UpdateResumeInput) (*model.Resume, error) {
	r, err := s.GetResume(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		s.log.Warn().Uint64("resume_id", id).Msg("resume not found for update")
		return nil, nil
	}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" {
			return nil, invalid("Title is required")
		}
		r.Title = t
	}
	if in.Status != nil {
		if !validResumeStatus(*in.Status) {
			return nil, invalid("Invalid resume status")
		}
		r.Status = *in.Status
	}
	if err := s.resumes.Update(ctx, r); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	s.log.Info().Uint64("resume_id", id).Msg("resume updated")
	return s.GetResume(ctx, id)
}

// DeleteResume removes the resume row and, best effort, its stored file.
// It reports whether the resume existed.
func (s *ResumeService) DeleteResume(ctx context.Context, id uint64) (bool, error) {
	r, err := s.GetResume(ctx, id)
	if err != nil {
		return false, err
	}
	if r == nil {
		s.log.Warn().Uint64("resume_id", id).Msg("resume not found for deletion")
		return false, nil
	}
	ok, err := s.resumes.Delete(ctx, id)
	if err != nil || !ok {
		return false, err
	}
	if err := s.files.Delete(ctx, r.FilePath); err != nil {
		s.log.Warn().Err(err).Str("key", r.FilePath).Msg("resume file not removed")
	}
	s.log.Info().Uint64("resume_id", id).Msg("resume deleted")
	return true, nil
}

// DownloadURL returns a presigned link to the stored file of r.
func (s *ResumeService) DownloadURL(ctx context.Context, r *model.Resume) (string, error) {
	return s.files.PresignedURL(ctx, r.FilePath)
}

// AnalysisInput is the payload of one analysis run. Analysis is required;
// the other documents are optional JSON values.
type AnalysisInput struct {
	Analysis        json.RawMessage
	Score           *int
	Skills          json.RawMessage
	Experience      json.RawMessage
	Recommendations json.RawMessage
}

// AddAnalysis records an analysis for resumeID. It returns nil when the
// resume does not exist.
func (s *ResumeService) AddAnalysis(ctx context.Context, resumeID uint64, in AnalysisInput) (*model.ResumeAnalysis, error) {
	if len(in.Analysis) == 0 || !json.Valid(in.Analysis) {
		return nil, invalid("Analysis must be a JSON document")
	}
	for _, doc := range []json.RawMessage{in.Skills, in.Experience, in.Recommendations} {
		if len(doc) > 0 && !json.Valid(doc) {
			return nil, invalid("Analysis sections must be JSON documents")
		}
	}
	if in.Score != nil && (*in.Score < 0 || *in.Score > 100) {
		return nil, invalid("Score must be between 0 and 100")
	}
	a := &model.ResumeAnalysis{
		ResumeID:        resumeID,
		Analysis:        in.Analysis,
		Score:           in.Score,
		Skills:          in.Skills,
		Experience:      in.Experience,
		Recommendations: in.Recommendations,
	}
	if err := s.analyses.Create(ctx, a); err != nil {
		if errors.Is(err, repository.ErrInvalidReference) {
			return nil, nil
		}
		return nil, err
	}
	s.log.Info().Uint64("resume_id", resumeID).Uint64("analysis_id", a.ID).Msg("analysis stored")
	return a, nil
}

// LatestAnalysis returns the newest analysis of a resume, or nil.
func (s *ResumeService) LatestAnalysis(ctx context.Context, resumeID uint64) (*model.ResumeAnalysis, error) {
	return orNil(s.analyses.LatestForResume(ctx, resumeID))
}
