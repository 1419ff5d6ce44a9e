package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StoryBuilderAi/storybuilder/internal/logger"
	"github.com/StoryBuilderAi/storybuilder/internal/model"
	"github.com/StoryBuilderAi/storybuilder/internal/queue"
	"github.com/StoryBuilderAi/storybuilder/internal/testutil"
	"github.com/StoryBuilderAi/storybuilder/internal/waitlist"
)

type appFixture struct {
	jobs    *JobService
	resumes *testutil.Resumes
	apps    *ApplicationService
}

func newAppFixture() appFixture {
	jobs := testutil.NewJobs()
	resumes := testutil.NewResumes()
	return appFixture{
		jobs:    NewJobService(jobs, logger.Nop()),
		resumes: resumes,
		apps:    NewApplicationService(testutil.NewApplications(), jobs, resumes, logger.Nop()),
	}
}

func TestCreateJobValidation(t *testing.T) {
	f := newAppFixture()
	_, err := f.jobs.CreateJob(context.Background(), CreateJobInput{Title: "Go Dev"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"Company is required", "Description is required"}, verr.Details)
}

func TestJobLifecycle(t *testing.T) {
	f := newAppFixture()
	ctx := context.Background()

	j, err := f.jobs.CreateJob(ctx, CreateJobInput{
		Title: "Go Dev", Company: "Acme", Description: "Build", Requirements: []string{" Go ", ""},
	})
	require.NoError(t, err)
	assert.True(t, j.IsActive)
	assert.Equal(t, []string{"Go"}, j.Requirements)

	off := false
	salary := "100k"
	u, err := f.jobs.UpdateJob(ctx, j.ID, UpdateJobInput{IsActive: &off, Salary: &salary})
	require.NoError(t, err)
	assert.False(t, u.IsActive)
	assert.Equal(t, "100k", u.Salary)
	assert.Equal(t, "Go Dev", u.Title)

	active, err := f.jobs.ListActiveJobs(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	ok, err := f.jobs.DeleteJob(ctx, j.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.jobs.DeleteJob(ctx, j.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateApplicationRules(t *testing.T) {
	f := newAppFixture()
	ctx := context.Background()

	job, err := f.jobs.CreateJob(ctx, CreateJobInput{Title: "Go Dev", Company: "Acme", Description: "Build"})
	require.NoError(t, err)
	r := &model.Resume{UserID: 1, Title: "CV", Status: model.ResumeStatusPending}
	require.NoError(t, f.resumes.Create(ctx, r))

	_, err = f.apps.CreateApplication(ctx, CreateApplicationInput{UserID: 2, JobID: job.ID, ResumeID: r.ID})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.apps.CreateApplication(ctx, CreateApplicationInput{UserID: 1, JobID: 999, ResumeID: r.ID})
	assert.True(t, IsValidation(err))

	a, err := f.apps.CreateApplication(ctx, CreateApplicationInput{UserID: 1, JobID: job.ID, ResumeID: r.ID, Notes: "hi"})
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationApplied, a.Status)

	off := false
	_, err = f.jobs.UpdateJob(ctx, job.ID, UpdateJobInput{IsActive: &off})
	require.NoError(t, err)
	_, err = f.apps.CreateApplication(ctx, CreateApplicationInput{UserID: 1, JobID: job.ID, ResumeID: r.ID})
	assert.True(t, IsValidation(err))
}

func TestUpdateApplicationStatus(t *testing.T) {
	f := newAppFixture()
	ctx := context.Background()
	job, err := f.jobs.CreateJob(ctx, CreateJobInput{Title: "Go Dev", Company: "Acme", Description: "Build"})
	require.NoError(t, err)
	r := &model.Resume{UserID: 1}
	require.NoError(t, f.resumes.Create(ctx, r))
	a, err := f.apps.CreateApplication(ctx, CreateApplicationInput{UserID: 1, JobID: job.ID, ResumeID: r.ID})
	require.NoError(t, err)

	hired := "hired"
	_, err = f.apps.UpdateApplication(ctx, a.ID, UpdateApplicationInput{Status: &hired})
	assert.True(t, IsValidation(err))

	score := 101
	_, err = f.apps.UpdateApplication(ctx, a.ID, UpdateApplicationInput{MatchScore: &score})
	assert.True(t, IsValidation(err))

	offered := model.ApplicationOffered
	score = 91
	u, err := f.apps.UpdateApplication(ctx, a.ID, UpdateApplicationInput{Status: &offered, MatchScore: &score})
	require.NoError(t, err)
	assert.Equal(t, offered, u.Status)
	assert.Equal(t, 91, *u.MatchScore)

	byJob, err := f.apps.ListApplicationsByJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Len(t, byJob, 1)

	missing, err := f.apps.UpdateApplication(ctx, 999, UpdateApplicationInput{Status: &offered})
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestWaitlistSubmitPublishes(t *testing.T) {
	events := &testutil.Recorder{}
	svc := NewWaitlistService(events, logger.Nop())

	st, err := svc.Submit(context.Background(), waitlist.Submission{
		Name:              "Jane Doe",
		Email:             "jane@example.com",
		CurrentRole:       "software-engineer",
		ExperienceLevel:   "4-6",
		JobSearchPain:     []string{"Interview preparation"},
		CareerGoals:       "Become a manager",
		PreferredFeatures: []string{"Smart Job Matching"},
	})
	require.NoError(t, err)
	assert.Equal(t, waitlist.TotalSteps, st.Step)
	assert.Equal(t, []string{queue.TypeWaitlistSubmitted}, events.Types())

	_, err = svc.Submit(context.Background(), waitlist.Submission{Email: "bad"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Details)
	assert.Len(t, events.Types(), 1)
}
