// Package testutil provides in-memory implementations of the service
// stores for tests.
package testutil

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/StoryBuilderAi/storybuilder/internal/model"
	"github.com/StoryBuilderAi/storybuilder/internal/queue"
	"github.com/StoryBuilderAi/storybuilder/internal/repository"
)

// Users mimics repository.UserRepo including the unique email index.
type Users struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]model.User
}

func NewUsers() *Users { return &Users{rows: map[uint64]model.User{}} }

func (f *Users) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.Email = repository.NormalizeEmail(u.Email)
	for _, r := range f.rows {
		if r.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now().UTC().Add(time.Duration(f.nextID) * time.Millisecond)
	u.UpdatedAt = u.CreatedAt
	f.rows[u.ID] = *u
	return nil
}

func (f *Users) GetByID(_ context.Context, id uint64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (f *Users) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = repository.NormalizeEmail(email)
	for _, r := range f.rows {
		if r.Email == email {
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *Users) List(_ context.Context, activeOnly bool) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.User{}
	for _, r := range f.rows {
		if activeOnly && !r.IsActive {
			continue
		}
		r := r
		out = append(out, &r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *Users) Update(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[u.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, r := range f.rows {
		if id != u.ID && r.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	u.UpdatedAt = time.Now().UTC()
	f.rows[u.ID] = *u
	return nil
}

func (f *Users) UpdatePassword(_ context.Context, id uint64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.PasswordHash = hash
	f.rows[id] = r
	return nil
}

func (f *Users) Delete(_ context.Context, id uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[id]
	delete(f.rows, id)
	return ok, nil
}

// Count returns the number of stored users.
func (f *Users) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type Sessions struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[string]model.Session
}

func NewSessions() *Sessions { return &Sessions{rows: map[string]model.Session{}} }

func (f *Sessions) Create(_ context.Context, s *model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	s.ID = f.nextID
	s.CreatedAt = time.Now().UTC()
	f.rows[s.TokenHash] = *s
	return nil
}

func (f *Sessions) GetValid(_ context.Context, hash string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[hash]
	if !ok || s.Expired(time.Now().UTC()) {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (f *Sessions) DeleteByHash(_ context.Context, hash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[hash]
	delete(f.rows, hash)
	return ok, nil
}

func (f *Sessions) DeleteAllForUser(_ context.Context, userID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for h, s := range f.rows {
		if s.UserID == userID {
			delete(f.rows, h)
		}
	}
	return nil
}

func (f *Sessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for h, s := range f.rows {
		if s.Expired(now) {
			delete(f.rows, h)
			n++
		}
	}
	return n, nil
}

// Count returns the number of stored sessions.
func (f *Sessions) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type Resumes struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]model.Resume
}

func NewResumes() *Resumes { return &Resumes{rows: map[uint64]model.Resume{}} }

func (f *Resumes) Create(_ context.Context, r *model.Resume) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	r.ID = f.nextID
	r.CreatedAt = time.Now().UTC()
	r.UpdatedAt = r.CreatedAt
	f.rows[r.ID] = *r
	return nil
}

func (f *Resumes) GetByID(_ context.Context, id uint64) (*model.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (f *Resumes) List(_ context.Context, flt repository.ResumeFilter) ([]*model.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.Resume{}
	for _, r := range f.rows {
		if flt.UserID != 0 && r.UserID != flt.UserID {
			continue
		}
		if flt.Status != "" && r.Status != flt.Status {
			continue
		}
		r := r
		out = append(out, &r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *Resumes) Update(_ context.Context, r *model.Resume) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[r.ID]; !ok {
		return repository.ErrNotFound
	}
	f.rows[r.ID] = *r
	return nil
}

func (f *Resumes) Delete(_ context.Context, id uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[id]
	delete(f.rows, id)
	return ok, nil
}

type Analyses struct {
	Resumes *Resumes
	rows    []model.ResumeAnalysis
}

func (f *Analyses) Create(ctx context.Context, a *model.ResumeAnalysis) error {
	if _, err := f.Resumes.GetByID(ctx, a.ResumeID); err != nil {
		return repository.ErrInvalidReference
	}
	a.ID = uint64(len(f.rows) + 1)
	f.rows = append(f.rows, *a)
	return nil
}

func (f *Analyses) LatestForResume(_ context.Context, resumeID uint64) (*model.ResumeAnalysis, error) {
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].ResumeID == resumeID {
			a := f.rows[i]
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

type Files struct {
	mu      sync.Mutex
	Objects map[string][]byte
}

func NewFiles() *Files { return &Files{Objects: map[string][]byte{}} }

func (f *Files) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Objects[key] = b
	return nil
}

func (f *Files) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.Objects, key)
	return nil
}

func (f *Files) PresignedURL(_ context.Context, key string) (string, error) {
	return "https://files.test/" + key + "?sig=1", nil
}

type Jobs struct {
	nextID uint64
	rows   map[uint64]model.Job
}

func NewJobs() *Jobs { return &Jobs{rows: map[uint64]model.Job{}} }

func (f *Jobs) Create(_ context.Context, j *model.Job) error {
	f.nextID++
	j.ID = f.nextID
	f.rows[j.ID] = *j
	return nil
}

func (f *Jobs) GetByID(_ context.Context, id uint64) (*model.Job, error) {
	j, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &j, nil
}

func (f *Jobs) List(_ context.Context, activeOnly bool) ([]*model.Job, error) {
	out := []*model.Job{}
	for id := uint64(1); id <= f.nextID; id++ {
		j, ok := f.rows[id]
		if !ok || (activeOnly && !j.IsActive) {
			continue
		}
		out = append(out, &j)
	}
	return out, nil
}

func (f *Jobs) Update(_ context.Context, j *model.Job) error {
	if _, ok := f.rows[j.ID]; !ok {
		return repository.ErrNotFound
	}
	f.rows[j.ID] = *j
	return nil
}

func (f *Jobs) Delete(_ context.Context, id uint64) (bool, error) {
	_, ok := f.rows[id]
	delete(f.rows, id)
	return ok, nil
}

type Applications struct {
	nextID uint64
	rows   map[uint64]model.JobApplication
}

func NewApplications() *Applications { return &Applications{rows: map[uint64]model.JobApplication{}} }

func (f *Applications) Create(_ context.Context, a *model.JobApplication) error {
	f.nextID++
	a.ID = f.nextID
	f.rows[a.ID] = *a
	return nil
}

func (f *Applications) GetByID(_ context.Context, id uint64) (*model.JobApplication, error) {
	a, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (f *Applications) list(match func(model.JobApplication) bool) []*model.JobApplication {
	out := []*model.JobApplication{}
	for id := uint64(1); id <= f.nextID; id++ {
		if a, ok := f.rows[id]; ok && match(a) {
			out = append(out, &a)
		}
	}
	return out
}

func (f *Applications) ListByUser(_ context.Context, userID uint64) ([]*model.JobApplication, error) {
	return f.list(func(a model.JobApplication) bool { return a.UserID == userID }), nil
}

func (f *Applications) ListByJob(_ context.Context, jobID uint64) ([]*model.JobApplication, error) {
	return f.list(func(a model.JobApplication) bool { return a.JobID == jobID }), nil
}

func (f *Applications) Update(_ context.Context, a *model.JobApplication) error {
	if _, ok := f.rows[a.ID]; !ok {
		return repository.ErrNotFound
	}
	f.rows[a.ID] = *a
	return nil
}

func (f *Applications) Delete(_ context.Context, id uint64) (bool, error) {
	_, ok := f.rows[id]
	delete(f.rows, id)
	return ok, nil
}

// Recorder captures published events.
type Recorder struct {
	mu     sync.Mutex
	events []queue.Event
}

func (r *Recorder) Publish(_ context.Context, ev queue.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

// Types lists the published event types in order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}
