package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/StoryBuilderAi/storybuilder/internal/middleware"
	"github.com/StoryBuilderAi/storybuilder/internal/model"
	"github.com/StoryBuilderAi/storybuilder/internal/service"
)

const (
	// SessionCookie carries the raw session token for browser clients.
	SessionCookie = "storybuilder.session_token"
	// SessionHeader carries it for everything else.
	SessionHeader = "X-Session-Token"
)

// AuthHandler serves /api/auth.
type AuthHandler struct {
	Auth         *service.AuthService
	SecureCookie bool
}

func NewAuthHandler(auth *service.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{Auth: auth, SecureCookie: secureCookie}
}

type signUpReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required"`
}

type signInReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenReq struct {
	Token string `json:"token"`
}

type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

type sessionView struct {
	ID        uint64    `json:"id"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type authResp struct {
	User                 *model.User `json:"user"`
	Session              sessionView `json:"session"`
	Token                string      `json:"token,omitempty"`
	AccessToken          string      `json:"accessToken"`
	AccessTokenExpiresAt time.Time   `json:"accessTokenExpiresAt"`
}

func toAuthResp(res *service.AuthResult) authResp {
	return authResp{
		User:                 res.User,
		Session:              sessionView{ID: res.Session.ID, ExpiresAt: res.Session.ExpiresAt},
		Token:                res.SessionToken,
		AccessToken:          res.AccessToken.Token,
		AccessTokenExpiresAt: res.AccessToken.Exp,
	}
}

// sessionToken looks for the raw token in the header, then the cookie, then
// an optional JSON body.
func sessionToken(c echo.Context) string {
	if t := strings.TrimSpace(c.Request().Header.Get(SessionHeader)); t != "" {
		return t
	}
	if ck, err := c.Cookie(SessionCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	if c.Request().ContentLength > 0 {
		var req tokenReq
		if err := c.Bind(&req); err == nil {
			return strings.TrimSpace(req.Token)
		}
	}
	return ""
}

func (h *AuthHandler) setCookie(c echo.Context, token string, expires time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) issue(c echo.Context, res *service.AuthResult) error {
	h.setCookie(c, res.SessionToken, res.Session.ExpiresAt)
	return c.JSON(http.StatusOK, toAuthResp(res))
}

func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Auth.SignUp(ctx, service.SignUpInput{Email: req.Email, Password: req.Password, Name: req.Name})
	if err != nil {
		return writeError(c, err)
	}
	return h.issue(c, res)
}

func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Auth.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return h.issue(c, res)
}

// SignOut ends the caller's session. Signing out twice is not an error.
func (h *AuthHandler) SignOut(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Auth.SignOut(ctx, sessionToken(c)); err != nil {
		return err
	}
	h.setCookie(c, "", time.Unix(0, 0))
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *AuthHandler) GetSession(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	sess, u, err := h.Auth.GetSession(ctx, sessionToken(c))
	if err != nil {
		return err
	}
	if sess == nil {
		return writeError(c, service.ErrInvalidSession)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"session": sessionView{ID: sess.ID, ExpiresAt: sess.ExpiresAt},
		"user":    u,
	})
}

// Refresh trades a live session token for a new access token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Auth.Refresh(ctx, sessionToken(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toAuthResp(res))
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, "Unauthorized")
	}
	var req changePasswordReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Auth.ChangePassword(ctx, uid, req.CurrentPassword, req.NewPassword); err != nil {
		return writeError(c, err)
	}
	h.setCookie(c, "", time.Unix(0, 0))
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
