package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/StoryBuilderAi/storybuilder/internal/model"
	"github.com/StoryBuilderAi/storybuilder/internal/queue"
	"github.com/StoryBuilderAi/storybuilder/internal/repository"
	"github.com/StoryBuilderAi/storybuilder/internal/utils"
)

// SessionTTL is the lifetime of every session.
const SessionTTL = 7 * 24 * time.Hour

// SessionStore is implemented by *repository.SessionRepo.
type SessionStore interface {
	Create(ctx context.Context, s *model.Session) error
	GetValid(ctx context.Context, tokenHash string) (*model.Session, error)
	DeleteByHash(ctx context.Context, tokenHash string) (bool, error)
	DeleteAllForUser(ctx context.Context, userID uint64) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Hooks run after a user or a session has been created. Either may be nil.
type Hooks struct {
	OnUserCreate    func(ctx context.Context, u *model.User)
	OnSessionCreate func(ctx context.Context, s *model.Session, u *model.User)
}

// EventHooks logs each creation and publishes the matching domain event.
// Publish failures are logged only.
func EventHooks(events queue.Publisher, log zerolog.Logger) Hooks {
	publish := func(ctx context.Context, ev queue.Event) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
		defer cancel()
		if err := events.Publish(ctx, ev); err != nil {
			log.Warn().Err(err).Str("type", ev.Type).Msg("publish failed")
		}
	}
	return Hooks{
		OnUserCreate: func(ctx context.Context, u *model.User) {
			log.Info().Str("email", u.Email).Msg("new user created")
			publish(ctx, queue.NewEvent(queue.TypeUserCreated, queue.UserCreated{UserID: u.ID, Email: u.Email, Role: u.Role}))
		},
		OnSessionCreate: func(ctx context.Context, s *model.Session, u *model.User) {
			log.Info().Str("email", u.Email).Msg("new session created")
			publish(ctx, queue.NewEvent(queue.TypeSessionCreated, queue.SessionCreated{SessionID: s.ID, UserID: u.ID, ExpiresAt: s.ExpiresAt}))
		},
	}
}

// AuthService issues and resolves sessions. A session is identified by an
// opaque token whose SHA-256 is stored; each sign-in also yields a short
// lived access JWT for the protected API.
type AuthService struct {
	users        *UserService
	sessions     SessionStore
	hooks        Hooks
	jwtSecret    string
	accessTTLMin int
	log          zerolog.Logger
}

func NewAuthService(users *UserService, sessions SessionStore, hooks Hooks, jwtSecret string, accessTTLMin int, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:        users,
		sessions:     sessions,
		hooks:        hooks,
		jwtSecret:    jwtSecret,
		accessTTLMin: accessTTLMin,
		log:          log.With().Str("component", "auth").Logger(),
	}
}

// AuthResult is returned by every call that opens a session. SessionToken
// is the raw token and is only ever available here.
type AuthResult struct {
	User         *model.User
	Session      *model.Session
	SessionToken string
	AccessToken  utils.AccessToken
}

// SignUpInput is the public registration payload. Roles cannot be chosen.
type SignUpInput struct {
	Email    string
	Password string
	Name     string
}

// SignUp creates a regular user and opens a session for it.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*AuthResult, error) {
	u, err := s.users.CreateUser(ctx, CreateUserInput{Email: in.Email, Password: in.Password, Name: in.Name, Role: model.RoleUser})
	if err != nil {
		return nil, err
	}
	if s.hooks.OnUserCreate != nil {
		s.hooks.OnUserCreate(ctx, u)
	}
	return s.openSession(ctx, u)
}

// SignIn checks credentials and opens a session. Unknown, inactive and
// wrong-password cases all return ErrInvalidCredentials.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if u == nil {
		s.log.Info().Str("email", repository.NormalizeEmail(email)).Msg("sign-in rejected")
		return nil, ErrInvalidCredentials
	}
	return s.openSession(ctx, u)
}

func (s *AuthService) openSession(ctx context.Context, u *model.User) (*AuthResult, error) {
	tok, err := utils.NewSessionToken(SessionTTL)
	if err != nil {
		return nil, err
	}
	sess := &model.Session{UserID: u.ID, TokenHash: utils.HashToken(tok.Raw), ExpiresAt: tok.Exp}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	access, err := utils.NewAccessToken(s.jwtSecret, u.ID, u.Role, s.accessTTLMin)
	if err != nil {
		return nil, err
	}
	if s.hooks.OnSessionCreate != nil {
		s.hooks.OnSessionCreate(ctx, sess, u)
	}
	return &AuthResult{User: u, Session: sess, SessionToken: tok.Raw, AccessToken: access}, nil
}

// SignOut ends the session identified by token and reports whether it
// existed.
func (s *AuthService) SignOut(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	return s.sessions.DeleteByHash(ctx, utils.HashToken(token))
}

// GetSession resolves token to its session and user. Unknown or expired
// tokens and inactive users yield nils.
func (s *AuthService) GetSession(ctx context.Context, token string) (*model.Session, *model.User, error) {
	if token == "" {
		return nil, nil, nil
	}
	sess, err := s.sessions.GetValid(ctx, utils.HashToken(token))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	u, err := s.users.GetUser(ctx, sess.UserID)
	if err != nil {
		return nil, nil, err
	}
	if u == nil || !u.IsActive {
		return nil, nil, nil
	}
	return sess, u, nil
}

// Refresh issues a new access token for a live session. The session
// itself keeps its original expiry.
func (s *AuthService) Refresh(ctx context.Context, token string) (*AuthResult, error) {
	sess, u, err := s.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrInvalidSession
	}
	access, err := utils.NewAccessToken(s.jwtSecret, u.ID, u.Role, s.accessTTLMin)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Session: sess, AccessToken: access}, nil
}

// ChangePassword updates the password and ends every session of the user.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint64, current, next string) error {
	if err := s.users.ChangePassword(ctx, userID, current, next); err != nil {
		return err
	}
	if err := s.sessions.DeleteAllForUser(ctx, userID); err != nil {
		s.log.Warn().Err(err).Uint64("user_id", userID).Msg("sessions not revoked after password change")
	}
	return nil
}

// PurgeExpired deletes sessions past their expiry.
func (s *AuthService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info().Int64("count", n).Msg("expired sessions purged")
	}
	return n, nil
}
