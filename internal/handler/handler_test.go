package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StoryBuilderAi/storybuilder/internal/logger"
	"github.com/StoryBuilderAi/storybuilder/internal/service"
)

func serve(t *testing.T, h echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(logger.Nop())
	e.Validator = NewValidator()
	e.GET("/x", h)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	return rec
}

func TestErrorHandlerHidesInternalErrors(t *testing.T) {
	rec := serve(t, func(echo.Context) error { return errors.New("dial tcp: connection refused") })
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}

func TestErrorHandlerKeepsHTTPErrorCode(t *testing.T) {
	rec := serve(t, func(echo.Context) error {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Request Entity Too Large")
	})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.JSONEq(t, `{"error":"Request Entity Too Large"}`, rec.Body.String())
}

func TestErrorHandlerMapsServiceErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{service.ErrEmailTaken, http.StatusConflict},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{&service.ValidationError{Message: "bad"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		err := tc.err
		rec := serve(t, func(echo.Context) error { return err })
		assert.Equal(t, tc.code, rec.Code, err.Error())
	}
}

func TestValidatorUsesJSONNames(t *testing.T) {
	type req struct {
		Email string `json:"email" validate:"required"`
		Role  string `json:"role" validate:"omitempty,oneof=user admin"`
	}
	err := NewValidator().Validate(&req{Role: "owner"})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"email is required", "role must be one of: user, admin"}, verr.Details)

	assert.NoError(t, NewValidator().Validate(&req{Email: "a@b.co"}))
}
