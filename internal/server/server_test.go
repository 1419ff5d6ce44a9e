package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/StoryBuilderAi/storybuilder/internal/config"
	"github.com/StoryBuilderAi/storybuilder/internal/handler"
	"github.com/StoryBuilderAi/storybuilder/internal/logger"
	"github.com/StoryBuilderAi/storybuilder/internal/model"
	"github.com/StoryBuilderAi/storybuilder/internal/queue"
	"github.com/StoryBuilderAi/storybuilder/internal/service"
	"github.com/StoryBuilderAi/storybuilder/internal/testutil"
	"github.com/StoryBuilderAi/storybuilder/internal/utils"
)

const secret = "server-test-secret"

type app struct {
	t      *testing.T
	e      *echo.Echo
	events *testutil.Recorder
}

func newApp(t *testing.T) *app {
	t.Helper()
	log := logger.Nop()
	events := &testutil.Recorder{}

	users := service.NewUserService(testutil.NewUsers(), bcrypt.MinCost, log)
	resumes := testutil.NewResumes()
	jobs := testutil.NewJobs()
	svc := Services{
		Users:        users,
		Auth:         service.NewAuthService(users, testutil.NewSessions(), service.EventHooks(queue.Discard{}, log), secret, 15, log),
		Resumes:      service.NewResumeService(resumes, &testutil.Analyses{Resumes: resumes}, testutil.NewFiles(), 1<<20, log),
		Jobs:         service.NewJobService(jobs, log),
		Applications: service.NewApplicationService(testutil.NewApplications(), jobs, resumes, log),
		Waitlist:     service.NewWaitlistService(events, log),
	}
	cfg := config.Config{
		Env:            "test",
		JWTSecret:      secret,
		AllowedOrigins: []string{"*"},
		Storage:        config.StorageConfig{MaxUpload: 1 << 20},
	}
	return &app{t: t, e: New(cfg, svc, nil, log), events: events}
}

func token(t *testing.T, userID uint64, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, userID, role, 5)
	require.NoError(t, err)
	return tok.Token
}

func (a *app) do(method, path, bearer string, body any, header ...string) *httptest.ResponseRecorder {
	a.t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details"`
}

func TestHealthAndHello(t *testing.T) {
	a := newApp(t)

	rec := a.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "Server is running", body["message"])
	assert.NotEmpty(t, body["timestamp"])

	rec = a.do(http.MethodGet, "/api/hello", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello from StoryBuilder API!", decode[map[string]string](t, rec)["message"])
}

func TestUnmatchedRoute(t *testing.T) {
	a := newApp(t)
	for _, path := range []string{"/api/nope", "/api/resumes/1/unknown", "/nothing"} {
		rec := a.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.JSONEq(t, `{"error":"Route not found"}`, rec.Body.String(), path)
	}
}

func TestUnknownUserIs404(t *testing.T) {
	a := newApp(t)
	rec := a.do(http.MethodGet, "/api/users/999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"User not found"}`, rec.Body.String())

	rec = a.do(http.MethodGet, "/api/users/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateUserValidation(t *testing.T) {
	a := newApp(t)

	rec := a.do(http.MethodPost, "/api/users", "", map[string]string{
		"email": "not-an-email", "password": "Secret123", "name": "Jane",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid email format", decode[errBody](t, rec).Error)

	rec = a.do(http.MethodPost, "/api/users", "", map[string]string{
		"email": "jane@example.com", "password": "short", "name": "Jane",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	eb := decode[errBody](t, rec)
	assert.Equal(t, "Password validation failed", eb.Error)
	assert.Len(t, eb.Details, 3)

	rec = a.do(http.MethodPost, "/api/users", "", map[string]string{"email": "jane@example.com"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.ElementsMatch(t, []string{"password is required", "name is required"}, decode[errBody](t, rec).Details)

	rec = a.do(http.MethodGet, "/api/users", "", nil)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCreateUserConflictAndAdminRole(t *testing.T) {
	a := newApp(t)
	in := map[string]string{"email": "jane@example.com", "password": "Secret123", "name": "Jane"}

	rec := a.do(http.MethodPost, "/api/users", "", in)
	require.Equal(t, http.StatusCreated, rec.Code)
	u := decode[map[string]any](t, rec)
	assert.Equal(t, "user", u["role"])
	assert.NotContains(t, rec.Body.String(), "password")

	rec = a.do(http.MethodPost, "/api/users", "", map[string]string{
		"email": "JANE@example.com", "password": "Secret123", "name": "Jane",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	admin := map[string]string{"email": "boss@example.com", "password": "Secret123", "name": "Boss", "role": "admin"}
	rec = a.do(http.MethodPost, "/api/users", "", admin)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodPost, "/api/users", token(t, 99, model.RoleAdmin), admin)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestUserUpdateAndDelete(t *testing.T) {
	a := newApp(t)
	rec := a.do(http.MethodPost, "/api/users", "", map[string]string{
		"email": "jane@example.com", "password": "Secret123", "name": "Jane",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := uint64(decode[map[string]any](t, rec)["id"].(float64))
	path := fmt.Sprintf("/api/users/%d", id)

	rec = a.do(http.MethodPatch, path, "", map[string]string{"name": "J"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodPatch, path, token(t, id+1, model.RoleUser), map[string]string{"name": "J"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodPatch, path, token(t, id, model.RoleUser), map[string]any{"isActive": false})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodPatch, path, token(t, id, model.RoleUser), map[string]string{"name": "Janet"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Janet", decode[map[string]any](t, rec)["name"])

	admin := token(t, 1000, model.RoleAdmin)
	rec = a.do(http.MethodDelete, path, admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.do(http.MethodDelete, path, admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthFlow(t *testing.T) {
	a := newApp(t)
	creds := map[string]string{"email": "jane@example.com", "password": "Secret123", "name": "Jane"}

	rec := a.do(http.MethodPost, "/api/auth/sign-up/email", "", creds)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[map[string]any](t, rec)
	assert.NotEmpty(t, res["accessToken"])
	assert.NotEmpty(t, rec.Result().Cookies())

	rec = a.do(http.MethodPost, "/api/auth/sign-in/email", "", map[string]string{"email": "jane@example.com", "password": "Wrong1234"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", decode[errBody](t, rec).Error)

	rec = a.do(http.MethodPost, "/api/auth/sign-in/email", "", map[string]string{"email": "jane@example.com", "password": "Secret123"})
	require.Equal(t, http.StatusOK, rec.Code)
	session := decode[map[string]any](t, rec)["token"].(string)
	require.Len(t, session, 96)

	rec = a.do(http.MethodGet, "/api/auth/get-session", "", nil, handler.SessionHeader, session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "jane@example.com")

	rec = a.do(http.MethodPost, "/api/auth/refresh", "", map[string]string{"token": session})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[map[string]any](t, rec)["accessToken"])

	rec = a.do(http.MethodPost, "/api/auth/sign-out", "", nil, handler.SessionHeader, session)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(http.MethodGet, "/api/auth/get-session", "", nil, handler.SessionHeader, session)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJobsRequireAdminToWrite(t *testing.T) {
	a := newApp(t)
	job := map[string]any{"title": "Go Dev", "company": "Acme", "description": "Build things"}

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/api/jobs", "", job).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/api/jobs", token(t, 1, model.RoleUser), job).Code)

	rec := a.do(http.MethodPost, "/api/jobs", token(t, 2, model.RoleAdmin), job)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = a.do(http.MethodGet, "/api/jobs", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/jobs/42", "", nil).Code)
}

func TestCreateJobListsEveryMissingField(t *testing.T) {
	a := newApp(t)
	rec := a.do(http.MethodPost, "/api/jobs", token(t, 2, model.RoleAdmin), map[string]any{"description": "Build"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "Job validation failed", body["error"])
	assert.Equal(t, []any{"Title is required", "Company is required"}, body["details"])
}

func (a *app) uploadResume(bearer string) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(a.t, mw.WriteField("title", "My CV"))
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="cv.pdf"`)
	h.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(h)
	require.NoError(a.t, err)
	_, err = part.Write([]byte("%PDF-1.4 resume"))
	require.NoError(a.t, err)
	require.NoError(a.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/resumes", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func TestResumeOwnership(t *testing.T) {
	a := newApp(t)
	owner := token(t, 5, model.RoleUser)

	rec := a.uploadResume(owner)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	r := decode[model.Resume](t, rec)
	assert.Equal(t, uint64(5), r.UserID)
	assert.Equal(t, model.ResumeStatusPending, r.Status)
	path := fmt.Sprintf("/api/resumes/%d", r.ID)

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, path, token(t, 6, model.RoleUser), nil).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, path, token(t, 7, model.RoleAdmin), nil).Code)

	rec = a.do(http.MethodGet, "/api/resumes", token(t, 6, model.RoleUser), nil)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = a.do(http.MethodGet, path+"/download", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["url"], r.FilePath)

	rec = a.do(http.MethodGet, path+"/analysis", owner, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(http.MethodPost, path+"/analyses", owner, map[string]any{"analysis": map[string]string{"summary": "ok"}, "score": 70})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = a.do(http.MethodGet, path+"/analysis", owner, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, path, owner, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, path, owner, nil).Code)
}

func TestApplicationStatusRules(t *testing.T) {
	a := newApp(t)
	admin := token(t, 1, model.RoleAdmin)
	user := token(t, 5, model.RoleUser)

	rec := a.do(http.MethodPost, "/api/jobs", admin, map[string]any{"title": "Go Dev", "company": "Acme", "description": "Build"})
	require.Equal(t, http.StatusCreated, rec.Code)
	job := decode[model.Job](t, rec)

	rec = a.uploadResume(user)
	require.Equal(t, http.StatusCreated, rec.Code)
	resume := decode[model.Resume](t, rec)

	rec = a.do(http.MethodPost, "/api/applications", user, map[string]any{"jobId": job.ID, "resumeId": resume.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	appl := decode[model.JobApplication](t, rec)
	assert.Equal(t, model.ApplicationApplied, appl.Status)
	path := fmt.Sprintf("/api/applications/%d", appl.ID)

	rec = a.do(http.MethodPatch, path, admin, map[string]string{"status": "hired"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid application status", decode[errBody](t, rec).Error)

	rec = a.do(http.MethodPatch, path, user, map[string]string{"status": "offered"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodPatch, path, user, map[string]string{"notes": "excited"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "excited", decode[model.JobApplication](t, rec).Notes)

	rec = a.do(http.MethodPatch, path, admin, map[string]any{"status": "interviewed", "matchScore": 88})
	require.Equal(t, http.StatusOK, rec.Code)

	byJob := fmt.Sprintf("/api/jobs/%d/applications", job.ID)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, byJob, user, nil).Code)
	rec = a.do(http.MethodGet, byJob, admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.JobApplication](t, rec), 1)
}

func TestWaitlist(t *testing.T) {
	a := newApp(t)

	rec := a.do(http.MethodGet, "/api/waitlist/steps", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 7, decode[map[string]any](t, rec)["totalSteps"])

	rec = a.do(http.MethodPost, "/api/waitlist", "", map[string]any{
		"name":              "Jane Doe",
		"email":             "jane@example.com",
		"currentRole":       "software-engineer",
		"experienceLevel":   "4-6",
		"jobSearchPain":     []string{"Interview preparation"},
		"careerGoals":       "Lead a team",
		"preferredFeatures": []string{"Smart Job Matching"},
	})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Equal(t, []string{queue.TypeWaitlistSubmitted}, a.events.Types())

	rec = a.do(http.MethodPost, "/api/waitlist", "", map[string]any{"name": "", "email": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, strings.HasPrefix(decode[errBody](t, rec).Error, "Waitlist"))
}
