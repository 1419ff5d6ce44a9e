package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StoryBuilderAi/storybuilder/internal/logger"
	"github.com/StoryBuilderAi/storybuilder/internal/model"
	"github.com/StoryBuilderAi/storybuilder/internal/queue"
	"github.com/StoryBuilderAi/storybuilder/internal/testutil"
	"github.com/StoryBuilderAi/storybuilder/internal/utils"
)

const testSecret = "test-secret"

type authFixture struct {
	auth     *AuthService
	users    *UserService
	sessions *testutil.Sessions
	events   *testutil.Recorder
}

func newAuth() authFixture {
	users, _ := newUserService()
	sessions := testutil.NewSessions()
	events := &testutil.Recorder{}
	auth := NewAuthService(users, sessions, EventHooks(events, logger.Nop()), testSecret, 15, logger.Nop())
	return authFixture{auth: auth, users: users, sessions: sessions, events: events}
}

func TestSignUpOpensSessionAndPublishes(t *testing.T) {
	f := newAuth()
	ctx := context.Background()

	res, err := f.auth.SignUp(ctx, SignUpInput{Email: "jane@example.com", Password: "Secret123", Name: "Jane"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, res.User.Role)
	assert.Len(t, res.SessionToken, 96)
	assert.Equal(t, utils.HashToken(res.SessionToken), res.Session.TokenHash)
	assert.WithinDuration(t, time.Now().Add(SessionTTL), res.Session.ExpiresAt, time.Minute)

	claims, err := utils.ParseAccessToken(testSecret, res.AccessToken.Token)
	require.NoError(t, err)
	id, _ := claims.UserID()
	assert.Equal(t, res.User.ID, id)

	assert.Equal(t, []string{queue.TypeUserCreated, queue.TypeSessionCreated}, f.events.Types())
}

func TestSignInWrongPasswordCreatesNoSession(t *testing.T) {
	f := newAuth()
	ctx := context.Background()
	_, err := f.users.CreateUser(ctx, CreateUserInput{Email: "jane@example.com", Password: "Secret123", Name: "Jane"})
	require.NoError(t, err)

	_, err = f.auth.SignIn(ctx, "jane@example.com", "Wrong1234")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Zero(t, f.sessions.Count())

	res, err := f.auth.SignIn(ctx, "jane@example.com", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, 1, f.sessions.Count())
	assert.NotEmpty(t, res.SessionToken)
}

func TestGetSessionAndSignOut(t *testing.T) {
	f := newAuth()
	ctx := context.Background()
	res, err := f.auth.SignUp(ctx, SignUpInput{Email: "jane@example.com", Password: "Secret123", Name: "Jane"})
	require.NoError(t, err)

	sess, u, err := f.auth.GetSession(ctx, res.SessionToken)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, res.User.ID, u.ID)

	sess, _, err = f.auth.GetSession(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, sess)

	ok, err := f.auth.SignOut(ctx, res.SessionToken)
	require.NoError(t, err)
	assert.True(t, ok)

	sess, _, err = f.auth.GetSession(ctx, res.SessionToken)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestExpiredSessionIsRejected(t *testing.T) {
	f := newAuth()
	ctx := context.Background()
	u, err := f.users.CreateUser(ctx, CreateUserInput{Email: "jane@example.com", Password: "Secret123", Name: "Jane"})
	require.NoError(t, err)

	raw := "expired-token"
	require.NoError(t, f.sessions.Create(ctx, &model.Session{
		UserID:    u.ID,
		TokenHash: utils.HashToken(raw),
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}))

	sess, _, err := f.auth.GetSession(ctx, raw)
	require.NoError(t, err)
	assert.Nil(t, sess)

	_, err = f.auth.Refresh(ctx, raw)
	assert.ErrorIs(t, err, ErrInvalidSession)

	n, err := f.auth.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRefreshKeepsSession(t *testing.T) {
	f := newAuth()
	ctx := context.Background()
	res, err := f.auth.SignUp(ctx, SignUpInput{Email: "jane@example.com", Password: "Secret123", Name: "Jane"})
	require.NoError(t, err)

	ref, err := f.auth.Refresh(ctx, res.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, res.Session.ID, ref.Session.ID)
	assert.Empty(t, ref.SessionToken)
	assert.NotEmpty(t, ref.AccessToken.Token)
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	f := newAuth()
	ctx := context.Background()
	res, err := f.auth.SignUp(ctx, SignUpInput{Email: "jane@example.com", Password: "Secret123", Name: "Jane"})
	require.NoError(t, err)

	require.NoError(t, f.auth.ChangePassword(ctx, res.User.ID, "Secret123", "Another123"))
	assert.Zero(t, f.sessions.Count())

	_, err = f.auth.Refresh(ctx, res.SessionToken)
	assert.ErrorIs(t, err, ErrInvalidSession)

	// Issued access tokens stay valid until they expire.
	_, err = utils.ParseAccessToken(testSecret, res.AccessToken.Token)
	assert.NoError(t, err)
}
