package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/StoryBuilderAi/storybuilder/internal/middleware"
	"github.com/StoryBuilderAi/storybuilder/internal/model"
	"github.com/StoryBuilderAi/storybuilder/internal/service"
)

// ApplicationHandler serves /api/applications and the per-job listing.
type ApplicationHandler struct {
	Apps *service.ApplicationService
}

func NewApplicationHandler(apps *service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{Apps: apps}
}

type createApplicationReq struct {
	JobID    uint64 `json:"jobId" validate:"required"`
	ResumeID uint64 `json:"resumeId" validate:"required"`
	Notes    string `json:"notes"`
}

type updateApplicationReq struct {
	Status     *string `json:"status"`
	MatchScore *int    `json:"matchScore"`
	Notes      *string `json:"notes"`
}

func (h *ApplicationHandler) Create(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, "Unauthorized")
	}
	var req createApplicationReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	a, err := h.Apps.CreateApplication(ctx, service.CreateApplicationInput{
		UserID:   uid,
		JobID:    req.JobID,
		ResumeID: req.ResumeID,
		Notes:    req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}

// ListMine returns the caller's applications.
func (h *ApplicationHandler) ListMine(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, "Unauthorized")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	apps, err := h.Apps.ListApplicationsByUser(ctx, uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, apps)
}

// ListByJob returns every application for :id. Admin only.
func (h *ApplicationHandler) ListByJob(c echo.Context) error {
	jobID, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	apps, err := h.Apps.ListApplicationsByJob(ctx, jobID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, apps)
}

func (h *ApplicationHandler) load(c echo.Context) (*model.JobApplication, error) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, invalidID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	a, err := h.Apps.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, notFound(c, "Application")
	}
	if !middleware.CanAccess(c, a.UserID) {
		return nil, errorJSON(c, http.StatusForbidden, "Forbidden")
	}
	return a, nil
}

func (h *ApplicationHandler) Get(c echo.Context) error {
	a, err := h.load(c)
	if a == nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// Update lets applicants edit notes. Status and match score belong to
// admins.
func (h *ApplicationHandler) Update(c echo.Context) error {
	a, err := h.load(c)
	if a == nil {
		return err
	}
	var req updateApplicationReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	if (req.Status != nil || req.MatchScore != nil) && !middleware.IsAdmin(c) {
		return errorJSON(c, http.StatusForbidden, "Only admins can change status or match score")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Apps.UpdateApplication(ctx, a.ID, service.UpdateApplicationInput{
		Status:     req.Status,
		MatchScore: req.MatchScore,
		Notes:      req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	if u == nil {
		return notFound(c, "Application")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *ApplicationHandler) Delete(c echo.Context) error {
	a, err := h.load(c)
	if a == nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	deleted, err := h.Apps.DeleteApplication(ctx, a.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return notFound(c, "Application")
	}
	return c.NoContent(http.StatusNoContent)
}
