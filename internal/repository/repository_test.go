package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StoryBuilderAi/storybuilder/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func userRow(id uint64, email string) *sqlmock.Rows {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "role", "is_active", "created_at", "updated_at"}).
		AddRow(id, email, "Jane Doe", "hash", model.RoleUser, true, now, now)
}

func TestUserCreateNormalizesAndReloads(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("jane@example.com", "Jane Doe", "hash", model.RoleUser, true).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WithArgs(uint64(7)).
		WillReturnRows(userRow(7, "jane@example.com"))

	u := &model.User{Email: "  Jane@Example.com ", Name: "Jane Doe", PasswordHash: "hash", Role: model.RoleUser, IsActive: true}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, uint64(7), u.ID)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := repo.Create(context.Background(), &model.User{Email: "a@b.co", Name: "A", PasswordHash: "h", Role: model.RoleUser})
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	u, err := repo.GetByID(context.Background(), 99)
	assert.Nil(t, u)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserListActiveOnly(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE is_active = 1 ORDER BY created_at, id")).
		WillReturnRows(userRow(1, "a@b.co"))

	users, err := repo.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "a@b.co", users[0].Email)
}

func TestUserListEmptyIsNotNil(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users ORDER BY created_at, id")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	users, err := repo.List(context.Background(), false)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestUserUpdateMissingRow(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET email=?")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &model.User{ID: 3, Email: "x@y.co"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResumeDeleteMissingReturnsFalse(t *testing.T) {
	db, mock := newMock(t)
	repo := NewResumeRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM resumes WHERE id = ?")).
		WithArgs(uint64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Delete(context.Background(), 404)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResumeDeleteExisting(t *testing.T) {
	db, mock := newMock(t)
	repo := NewResumeRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM resumes WHERE id = ?")).
		WithArgs(uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.Delete(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestResumeListFilters(t *testing.T) {
	db, mock := newMock(t)
	repo := NewResumeRepo(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM resumes WHERE 1=1 AND user_id = ? AND status = ? ORDER BY created_at, id")).
		WithArgs(uint64(5), model.ResumeStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "file_name", "file_path", "file_size", "mime_type", "status", "created_at", "updated_at"}).
			AddRow(1, 5, "CV", "cv.pdf", "users/5/resumes/x.pdf", 1024, "application/pdf", model.ResumeStatusPending, now, now))

	out, err := repo.List(context.Background(), ResumeFilter{UserID: 5, Status: model.ResumeStatusPending})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(1024), out[0].FileSize)
}

func TestResumeCreateUnknownUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewResumeRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO resumes")).
		WillReturnError(&mysql.MySQLError{Number: 1452, Message: "foreign key"})

	err := repo.Create(context.Background(), &model.Resume{UserID: 9})
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestJobRequirementsRoundTripThroughJSONColumn(t *testing.T) {
	db, mock := newMock(t)
	repo := NewJobRepo(db)

	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO jobs")).
		WithArgs("Go Dev", "Acme", "Build things", `["Go","SQL"]`, "Remote", "", "full-time", true).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM jobs WHERE id = ?")).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "company", "description", "requirements", "location", "salary", "job_type", "is_active", "created_at", "updated_at"}).
			AddRow(3, "Go Dev", "Acme", "Build things", `["Go","SQL"]`, "Remote", nil, "full-time", true, now, now))

	j := &model.Job{Title: "Go Dev", Company: "Acme", Description: "Build things", Requirements: []string{"Go", "SQL"}, Location: "Remote", JobType: "full-time", IsActive: true}
	require.NoError(t, repo.Create(context.Background(), j))
	assert.Equal(t, uint64(3), j.ID)
	assert.Equal(t, []string{"Go", "SQL"}, j.Requirements)
	assert.Empty(t, j.Salary)
}

func TestApplicationListByJob(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepo(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM job_applications WHERE job_id = ? ORDER BY applied_at, id")).
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "job_id", "resume_id", "status", "match_score", "notes", "applied_at", "updated_at"}).
			AddRow(1, 4, 2, 6, model.ApplicationApplied, nil, nil, now, now).
			AddRow(2, 5, 2, 7, model.ApplicationOffered, 88, "strong", now, now))

	out, err := repo.ListByJob(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Nil(t, out[0].MatchScore)
	require.NotNil(t, out[1].MatchScore)
	assert.Equal(t, 88, *out[1].MatchScore)
	assert.Equal(t, "strong", out[1].Notes)
}

func TestAnalysisLatestNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAnalysisRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM resume_analyses WHERE resume_id = ?")).
		WithArgs(uint64(1)).
		WillReturnError(sql.ErrNoRows)

	a, err := repo.LatestForResume(context.Background(), 1)
	assert.Nil(t, a)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionGetValidRejectsExpired(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSessionRepo(db)

	past := time.Now().UTC().Add(-time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE token=?")).
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token", "expires_at", "created_at"}).
			AddRow(1, 2, "abc", past, past.Add(-time.Hour)))

	s, err := repo.GetValid(context.Background(), "abc")
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrNotFound)
}
