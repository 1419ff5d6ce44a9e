package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/StoryBuilderAi/storybuilder/internal/model"
	"github.com/StoryBuilderAi/storybuilder/internal/service"
)

// JobHandler serves /api/jobs. Reads are public, writes are admin-only.
type JobHandler struct {
	Jobs *service.JobService
}

func NewJobHandler(jobs *service.JobService) *JobHandler {
	return &JobHandler{Jobs: jobs}
}

type createJobReq struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
	Location     string   `json:"location"`
	Salary       string   `json:"salary"`
	JobType      string   `json:"jobType"`
	IsActive     *bool    `json:"isActive"`
}

type updateJobReq struct {
	Title        *string   `json:"title"`
	Company      *string   `json:"company"`
	Description  *string   `json:"description"`
	Requirements *[]string `json:"requirements"`
	Location     *string   `json:"location"`
	Salary       *string   `json:"salary"`
	JobType      *string   `json:"jobType"`
	IsActive     *bool     `json:"isActive"`
}

// List returns all jobs, or only open ones with ?active=true.
func (h *JobHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	var (
		jobs []*model.Job
		err  error
	)
	if c.QueryParam("active") == "true" {
		jobs, err = h.Jobs.ListActiveJobs(ctx)
	} else {
		jobs, err = h.Jobs.ListJobs(ctx)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, jobs)
}

func (h *JobHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	j, err := h.Jobs.GetJob(ctx, id)
	if err != nil {
		return err
	}
	if j == nil {
		return notFound(c, "Job")
	}
	return c.JSON(http.StatusOK, j)
}

func (h *JobHandler) Create(c echo.Context) error {
	var req createJobReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	j, err := h.Jobs.CreateJob(ctx, service.CreateJobInput{
		Title:        req.Title,
		Company:      req.Company,
		Description:  req.Description,
		Requirements: req.Requirements,
		Location:     req.Location,
		Salary:       req.Salary,
		JobType:      req.JobType,
		IsActive:     req.IsActive,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, j)
}

func (h *JobHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req updateJobReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	j, err := h.Jobs.UpdateJob(ctx, id, service.UpdateJobInput{
		Title:        req.Title,
		Company:      req.Company,
		Description:  req.Description,
		Requirements: req.Requirements,
		Location:     req.Location,
		Salary:       req.Salary,
		JobType:      req.JobType,
		IsActive:     req.IsActive,
	})
	if err != nil {
		return writeError(c, err)
	}
	if j == nil {
		return notFound(c, "Job")
	}
	return c.JSON(http.StatusOK, j)
}

func (h *JobHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	deleted, err := h.Jobs.DeleteJob(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return notFound(c, "Job")
	}
	return c.NoContent(http.StatusNoContent)
}
