package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/StoryBuilderAi/storybuilder/internal/model"
	"github.com/StoryBuilderAi/storybuilder/internal/repository"
	"github.com/StoryBuilderAi/storybuilder/internal/utils"
	"github.com/StoryBuilderAi/storybuilder/internal/validation"
)

// UserStore is the persistence UserService needs. *repository.UserRepo
// satisfies it.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, activeOnly bool) ([]*model.User, error)
	Update(ctx context.Context, u *model.User) error
	UpdatePassword(ctx context.Context, id uint64, hash string) error
	Delete(ctx context.Context, id uint64) (bool, error)
}

// UserService manages user accounts.
type UserService struct {
	users      UserStore
	bcryptCost int
	log        zerolog.Logger

	dummyOnce sync.Once
	dummy     string
}

func NewUserService(users UserStore, bcryptCost int, log zerolog.Logger) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost, log: log.With().Str("component", "users").Logger()}
}

// CreateUserInput is the data accepted when creating a user.
type CreateUserInput struct {
	Email    string
	Password string
	Name     string
	Role     string
}

func validRole(r string) bool { return r == model.RoleUser || r == model.RoleAdmin }

func checkPassword(p string) error {
	if r := validation.Password(p); !r.Valid {
		return invalid("Password validation failed", r.Errors...)
	}
	return nil
}

// CreateUser validates in, hashes the password and inserts the user. The
// email pre-check only produces a friendlier error; the unique index
// decides.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*model.User, error) {
	email := repository.NormalizeEmail(in.Email)
	s.log.Info().Str("email", email).Msg("creating user")

	if !validation.Email(email) {
		return nil, invalid("Invalid email format")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalid("Name is required")
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = model.RoleUser
	}
	if !validRole(role) {
		return nil, invalid("Invalid role")
	}

	existing, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.log.Info().Uint64("user_id", u.ID).Msg("user created")
	return u, nil
}

func orNil[T any](v *T, err error) (*T, error) {
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// GetUser returns the user with id, or nil.
func (s *UserService) GetUser(ctx context.Context, id uint64) (*model.User, error) {
	return orNil(s.users.GetByID(ctx, id))
}

// GetUserByEmail returns the user with email, or nil.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return orNil(s.users.GetByEmail(ctx, email))
}

func (s *UserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.users.List(ctx, false)
}

func (s *UserService) ListActiveUsers(ctx context.Context) ([]*model.User, error) {
	return s.users.List(ctx, true)
}

// UpdateUserInput carries a partial update; nil fields are left alone.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Role     *string
	IsActive *bool
}

// UpdateUser merges in into the stored user. The email is re-validated and
// re-checked for uniqueness only when it changes.
func (s *UserService) UpdateUser(ctx context.Context, id uint64, in UpdateUserInput) (*model.User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		s.log.Warn().Uint64("user_id", id).Msg("user not found for update")
		return nil, nil
	}

	if in.Email != nil {
		email := repository.NormalizeEmail(*in.Email)
		if !validation.Email(email) {
			return nil, invalid("Invalid email format")
		}
		if email != u.Email {
			other, err := s.GetUserByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if other != nil {
				return nil, ErrEmailTaken
			}
			u.Email = email
		}
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, invalid("Name is required")
		}
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Role != nil {
		if !validRole(*in.Role) {
			return nil, invalid("Invalid role")
		}
		u.Role = *in.Role
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}

	if err := s.users.Update(ctx, u); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailTaken
		case errors.Is(err, repository.ErrNotFound):
			return nil, nil
		}
		return nil, err
	}
	s.log.Info().Uint64("user_id", id).Msg("user updated")
	return s.GetUser(ctx, id)
}

// DeleteUser removes a user and reports whether one existed.
func (s *UserService) DeleteUser(ctx context.Context, id uint64) (bool, error) {
	ok, err := s.users.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if !ok {
		s.log.Warn().Uint64("user_id", id).Msg("user not found for deletion")
		return false, nil
	}
	s.log.Info().Uint64("user_id", id).Msg("user deleted")
	return true, nil
}

// Authenticate returns the active user matching email and password, or
// nil. The bcrypt comparison runs even for unknown emails so both paths
// cost about the same.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		utils.VerifyPassword(s.dummyHash(), password)
		return nil, nil
	}
	if !utils.VerifyPassword(u.PasswordHash, password) || !u.IsActive {
		return nil, nil
	}
	return u, nil
}

// dummyHash is compared against when the email is unknown.
func (s *UserService) dummyHash() string {
	s.dummyOnce.Do(func() {
		s.dummy, _ = utils.HashPassword("storybuilder-timing-equalizer", s.bcryptCost)
	})
	return s.dummy
}

// ChangePassword verifies current, validates next and stores its hash.
func (s *UserService) ChangePassword(ctx context.Context, id uint64, current, next string) error {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUserNotFound
	}
	if !utils.VerifyPassword(u.PasswordHash, current) {
		return ErrWrongPassword
	}
	if err := checkPassword(next); err != nil {
		return err
	}
	hash, err := utils.HashPassword(next, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, id, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.log.Info().Uint64("user_id", id).Msg("password changed")
	return nil
}
