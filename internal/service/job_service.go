package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/StoryBuilderAi/storybuilder/internal/model"
	"github.com/StoryBuilderAi/storybuilder/internal/repository"
)

// JobStore is implemented by *repository.JobRepo.
type JobStore interface {
	Create(ctx context.Context, j *model.Job) error
	GetByID(ctx context.Context, id uint64) (*model.Job, error)
	List(ctx context.Context, activeOnly bool) ([]*model.Job, error)
	Update(ctx context.Context, j *model.Job) error
	Delete(ctx context.Context, id uint64) (bool, error)
}

type JobService struct {
	jobs JobStore
	log  zerolog.Logger
}

func NewJobService(jobs JobStore, log zerolog.Logger) *JobService {
	return &JobService{jobs: jobs, log: log.With().Str("component", "jobs").Logger()}
}

// CreateJobInput is the data accepted for a new posting. IsActive defaults
// to true.
type CreateJobInput struct {
	Title        string
	Company      string
	Description  string
	Requirements []string
	Location     string
	Salary       string
	JobType      string
	IsActive     *bool
}

func cleanRequirements(in []string) []string {
	out := make([]string, 0, len(in))
	for _, r := range in {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

// CreateJob validates the required fields and inserts the job.
func (s *JobService) CreateJob(ctx context.Context, in CreateJobInput) (*model.Job, error) {
	var missing []string
	for _, f := range []struct{ name, v string }{
		{"Title is required", in.Title},
		{"Company is required", in.Company},
		{"Description is required", in.Description},
	} {
		if strings.TrimSpace(f.v) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, invalid("Job validation failed", missing...)
	}

	j := &model.Job{
		Title:        strings.TrimSpace(in.Title),
		Company:      strings.TrimSpace(in.Company),
		Description:  strings.TrimSpace(in.Description),
		Requirements: cleanRequirements(in.Requirements),
		Location:     strings.TrimSpace(in.Location),
		Salary:       strings.TrimSpace(in.Salary),
		JobType:      strings.TrimSpace(in.JobType),
		IsActive:     in.IsActive == nil || *in.IsActive,
	}
	if err := s.jobs.Create(ctx, j); err != nil {
		return nil, err
	}
	s.log.Info().Uint64("job_id", j.ID).Str("title", j.Title).Msg("job created")
	return j, nil
}

// GetJob returns the job with id, or nil.
func (s *JobService) GetJob(ctx context.Context, id uint64) (*model.Job, error) {
	return orNil(s.jobs.GetByID(ctx, id))
}

func (s *JobService) ListJobs(ctx context.Context) ([]*model.Job, error) {
	return s.jobs.List(ctx, false)
}

func (s *JobService) ListActiveJobs(ctx context.Context) ([]*model.Job, error) {
	return s.jobs.List(ctx, true)
}

// UpdateJobInput is a partial update; nil fields are kept.
type UpdateJobInput struct {
	Title        *string
	Company      *string
	Description  *string
	Requirements *[]string
	Location     *string
	Salary       *string
	JobType      *string
	IsActive     *bool
}

// UpdateJob merges in into the stored job, or returns nil when absent.
func (s *JobService) UpdateJob(ctx context.Context, id uint64, in UpdateJobInput) (*model.Job, error) {
	j, err := s.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if j == nil {
		s.log.Warn().Uint64("job_id", id).Msg("job not found for update")
		return nil, nil
	}

	required := func(dst *string, v *string, msg string) error {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		if t == "" {
			return invalid(msg)
		}
		*dst = t
		return nil
	}
	if err := required(&j.Title, in.Title, "Title is required"); err != nil {
		return nil, err
	}
	if err := required(&j.Company, in.Company, "Company is required"); err != nil {
		return nil, err
	}
	if err := required(&j.Description, in.Description, "Description is required"); err != nil {
		return nil, err
	}
	if in.Requirements != nil {
		j.Requirements = cleanRequirements(*in.Requirements)
	}
	if in.Location != nil {
		j.Location = strings.TrimSpace(*in.Location)
	}
	if in.Salary != nil {
		j.Salary = strings.TrimSpace(*in.Salary)
	}
	if in.JobType != nil {
		j.JobType = strings.TrimSpace(*in.JobType)
	}
	if in.IsActive != nil {
		j.IsActive = *in.IsActive
	}

	if err := s.jobs.Update(ctx, j); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	s.log.Info().Uint64("job_id", id).Msg("job updated")
	return s.GetJob(ctx, id)
}

// DeleteJob removes a job and its applications.
func (s *JobService) DeleteJob(ctx context.Context, id uint64) (bool, error) {
	ok, err := s.jobs.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if ok {
		s.log.Info().Uint64("job_id", id).Msg("job deleted")
	}
	return ok, nil
}
