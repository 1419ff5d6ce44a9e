package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/StoryBuilderAi/storybuilder/internal/middleware"
	"github.com/StoryBuilderAi/storybuilder/internal/model"
	"github.com/StoryBuilderAi/storybuilder/internal/service"
)

// ResumeHandler serves /api/resumes. Users see their own resumes, admins
// see all of them.
type ResumeHandler struct {
	Resumes *service.ResumeService
}

func NewResumeHandler(resumes *service.ResumeService) *ResumeHandler {
	return &ResumeHandler{Resumes: resumes}
}

type updateResumeReq struct {
	Title  *string `json:"title"`
	Status *string `json:"status"`
}

type analysisReq struct {
	Analysis        json.RawMessage `json:"analysis"`
	Score           *int            `json:"score"`
	Skills          json.RawMessage `json:"skills"`
	Experience      json.RawMessage `json:"experience"`
	Recommendations json.RawMessage `json:"recommendations"`
}

// Upload accepts a multipart form with a "file" part and a "title" field.
func (h *ResumeHandler) Upload(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, "Unauthorized")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		title = fh.Filename
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	r, err := h.Resumes.CreateResume(ctx, service.CreateResumeInput{
		UserID:   uid,
		Title:    title,
		FileName: fh.Filename,
		Size:     fh.Size,
		MimeType: fh.Header.Get(echo.HeaderContentType),
		Body:     f,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}

// List returns the caller's resumes. Admins get every resume and may
// filter with ?userId=.
func (h *ResumeHandler) List(c echo.Context) error {
	uid, _ := middleware.UserID(c)
	status := c.QueryParam("status")

	ctx, cancel := reqCtx(c)
	defer cancel()

	var (
		list []*model.Resume
		err  error
	)
	switch {
	case middleware.IsAdmin(c) && c.QueryParam("userId") != "":
		owner, ok := queryID(c, "userId")
		if !ok {
			return invalidID(c)
		}
		list, err = h.Resumes.ListResumesByUser(ctx, owner)
	case middleware.IsAdmin(c) && status != "":
		list, err = h.Resumes.ListResumesByStatus(ctx, status)
		status = ""
	case middleware.IsAdmin(c):
		list, err = h.Resumes.ListResumes(ctx)
	default:
		list, err = h.Resumes.ListResumesByUser(ctx, uid)
	}
	if err != nil {
		return writeError(c, err)
	}
	if status != "" {
		list = filterStatus(list, status)
	}
	return c.JSON(http.StatusOK, list)
}

func filterStatus(in []*model.Resume, status string) []*model.Resume {
	out := make([]*model.Resume, 0, len(in))
	for _, r := range in {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

// load fetches the resume named by :id and checks the caller may see it.
// When it returns nil the response has already been written.
func (h *ResumeHandler) load(c echo.Context) (*model.Resume, error) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, invalidID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	r, err := h.Resumes.GetResume(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, notFound(c, "Resume")
	}
	if !middleware.CanAccess(c, r.UserID) {
		return nil, errorJSON(c, http.StatusForbidden, "Forbidden")
	}
	return r, nil
}

func (h *ResumeHandler) Get(c echo.Context) error {
	r, err := h.load(c)
	if r == nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

// Update changes the title. Only admins may move the processing status.
func (h *ResumeHandler) Update(c echo.Context) error {
	r, err := h.load(c)
	if r == nil {
		return err
	}
	var req updateResumeReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	if req.Status != nil && !middleware.IsAdmin(c) {
		return errorJSON(c, http.StatusForbidden, "Only admins can change resume status")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Resumes.UpdateResume(ctx, r.ID, service.UpdateResumeInput{Title: req.Title, Status: req.Status})
	if err != nil {
		return writeError(c, err)
	}
	if u == nil {
		return notFound(c, "Resume")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *ResumeHandler) Delete(c echo.Context) error {
	r, err := h.load(c)
	if r == nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	deleted, err := h.Resumes.DeleteResume(ctx, r.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return notFound(c, "Resume")
	}
	return c.NoContent(http.StatusNoContent)
}

// Download returns a short-lived URL for the stored file.
func (h *ResumeHandler) Download(c echo.Context) error {
	r, err := h.load(c)
	if r == nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	url, err := h.Resumes.DownloadURL(ctx, r)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"url": url})
}

func (h *ResumeHandler) AddAnalysis(c echo.Context) error {
	r, err := h.load(c)
	if r == nil {
		return err
	}
	var req analysisReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	a, err := h.Resumes.AddAnalysis(ctx, r.ID, service.AnalysisInput{
		Analysis:        req.Analysis,
		Score:           req.Score,
		Skills:          req.Skills,
		Experience:      req.Experience,
		Recommendations: req.Recommendations,
	})
	if err != nil {
		return writeError(c, err)
	}
	if a == nil {
		return notFound(c, "Resume")
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *ResumeHandler) LatestAnalysis(c echo.Context) error {
	r, err := h.load(c)
	if r == nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	a, err := h.Resumes.LatestAnalysis(ctx, r.ID)
	if err != nil {
		return err
	}
	if a == nil {
		return notFound(c, "Analysis")
	}
	return c.JSON(http.StatusOK, a)
}
