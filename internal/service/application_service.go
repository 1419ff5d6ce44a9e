package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/StoryBuilderAi/storybuilder/internal/model"
	"github.com/StoryBuilderAi/storybuilder/internal/repository"
)

// ApplicationStore is implemented by *repository.ApplicationRepo.
type ApplicationStore interface {
	Create(ctx context.Context, a *model.JobApplication) error
	GetByID(ctx context.Context, id uint64) (*model.JobApplication, error)
	ListByUser(ctx context.Context, userID uint64) ([]*model.JobApplication, error)
	ListByJob(ctx context.Context, jobID uint64) ([]*model.JobApplication, error)
	Update(ctx context.Context, a *model.JobApplication) error
	Delete(ctx context.Context, id uint64) (bool, error)
}

// ApplicationService links users, jobs and resumes.
type ApplicationService struct {
	apps    ApplicationStore
	jobs    JobStore
	resumes ResumeStore
	log     zerolog.Logger
}

func NewApplicationService(apps ApplicationStore, jobs JobStore, resumes ResumeStore, log zerolog.Logger) *ApplicationService {
	return &ApplicationService{apps: apps, jobs: jobs, resumes: resumes, log: log.With().Str("component", "applications").Logger()}
}

// CreateApplicationInput is what an applicant submits.
type CreateApplicationInput struct {
	UserID   uint64
	JobID    uint64
	ResumeID uint64
	Notes    string
}

// CreateApplication checks that the job accepts applications and that the
// resume belongs to the applicant, then inserts with status applied.
func (s *ApplicationService) CreateApplication(ctx context.Context, in CreateApplicationInput) (*model.JobApplication, error) {
	job, err := orNil(s.jobs.GetByID(ctx, in.JobID))
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, invalid("Job not found")
	}
	if !job.IsActive {
		return nil, invalid("Job is not accepting applications")
	}
	resume, err := orNil(s.resumes.GetByID(ctx, in.ResumeID))
	if err != nil {
		return nil, err
	}
	if resume == nil {
		return nil, invalid("Resume not found")
	}
	if resume.UserID != in.UserID {
		return nil, ErrForbidden
	}

	a := &model.JobApplication{
		UserID:   in.UserID,
		JobID:    in.JobID,
		ResumeID: in.ResumeID,
		Status:   model.ApplicationApplied,
		Notes:    in.Notes,
	}
	if err := s.apps.Create(ctx, a); err != nil {
		if errors.Is(err, repository.ErrInvalidReference) {
			return nil, invalid("Job or resume no longer exists")
		}
		return nil, err
	}
	s.log.Info().Uint64("application_id", a.ID).Uint64("job_id", a.JobID).Uint64("user_id", a.UserID).Msg("application created")
	return a, nil
}

// GetApplication returns the application with id, or nil.
func (s *ApplicationService) GetApplication(ctx context.Context, id uint64) (*model.JobApplication, error) {
	return orNil(s.apps.GetByID(ctx, id))
}

func (s *ApplicationService) ListApplicationsByUser(ctx context.Context, userID uint64) ([]*model.JobApplication, error) {
	return s.apps.ListByUser(ctx, userID)
}

func (s *ApplicationService) ListApplicationsByJob(ctx context.Context, jobID uint64) ([]*model.JobApplication, error) {
	return s.apps.ListByJob(ctx, jobID)
}

// UpdateApplicationInput is a partial update of an application.
type UpdateApplicationInput struct {
	Status     *string
	MatchScore *int
	Notes      *string
}

// UpdateApplication merges in, or returns nil when the application does
// not exist.
func (s *ApplicationService) UpdateApplication(ctx context.Context, id uint64, in UpdateApplicationInput) (*model.JobApplication, error) {
	if in.Status != nil && !model.ValidApplicationStatus(*in.Status) {
		return nil, invalid("Invalid application status", model.ApplicationStatuses...)
	}
	if in.MatchScore != nil && (*in.MatchScore < 0 || *in.MatchScore > 100) {
		return nil, invalid("Match score must be between 0 and 100")
	}

	a, err := s.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		s.log.Warn().Uint64("application_id", id).Msg("application not found for update")
		return nil, nil
	}
	if in.Status != nil {
		a.Status = *in.Status
	}
	if in.MatchScore != nil {
		a.MatchScore = in.MatchScore
	}
	if in.Notes != nil {
		a.Notes = *in.Notes
	}
	if err := s.apps.Update(ctx, a); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	s.log.Info().Uint64("application_id", id).Str("status", a.Status).Msg("application updated")
	return s.GetApplication(ctx, id)
}

// DeleteApplication removes an application and reports whether it existed.
func (s *ApplicationService) DeleteApplication(ctx context.Context, id uint64) (bool, error) {
	ok, err := s.apps.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if ok {
		s.log.Info().Uint64("application_id", id).Msg("application deleted")
	}
	return ok, nil
}
