// Package memory provides in-process implementations of the repository
// interfaces, used when no Postgres DSN is configured and in tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/erms/internal/domain"
	"github.com/spec-kit/erms/internal/repository"
)

// Store keeps every aggregate in maps guarded by one RWMutex. Per-engineer
// mutexes serialize ledger transactions without blocking other engineers.
type Store struct {
	mu          sync.RWMutex
	users       map[string]domain.User
	engineers   map[string]domain.Engineer
	projects    map[string]domain.Project
	assignments map[string]domain.Assignment

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	now func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:       make(map[string]domain.User),
		engineers:   make(map[string]domain.Engineer),
		projects:    make(map[string]domain.Project),
		assignments: make(map[string]domain.Assignment),
		locks:       make(map[string]*sync.Mutex),
		now:         time.Now,
	}
}

// Users returns the account repository view of the store.
func (s *Store) Users() repository.UserRepository { return userRepo{s} }

// Engineers returns the engineer repository view of the store.
func (s *Store) Engineers() repository.EngineerRepository { return engineerRepo{s} }

// Projects returns the project repository view of the store.
func (s *Store) Projects() repository.ProjectRepository { return projectRepo{s} }

// Assignments returns the assignment repository view of the store.
func (s *Store) Assignments() repository.AssignmentRepository { return assignmentRepo{s} }

// engineerLock returns the ledger mutex for id. Entries live only as long as
// the engineer does; see forgetLock.
func (s *Store) engineerLock(id string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// forgetLock drops the entry for id if it still points at l.
func (s *Store) forgetLock(id string, l *sync.Mutex) {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	if s.locks[id] == l {
		delete(s.locks, id)
	}
}

func (s *Store) hasEngineer(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.engineers[id]
	return ok
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User, engineer *domain.Engineer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	now := r.s.now()
	user.ID = uuid.NewString()
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.users[user.ID] = *user
	if engineer != nil {
		engineer.ID = user.ID
		engineer.Name = user.Name
		engineer.Email = user.Email
		engineer.Department = user.Department
		engineer.CreatedAt, engineer.UpdatedAt = now, now
		stored := *engineer
		stored.Skills = cloneStrings(engineer.Skills)
		r.s.engineers[user.ID] = stored
	}
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, user := range r.s.users {
		if strings.EqualFold(user.Email, email) {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

type engineerRepo struct{ s *Store }

func (r engineerRepo) GetByID(_ context.Context, id string) (*domain.Engineer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	engineer, ok := r.s.engineers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	engineer.Skills = cloneStrings(engineer.Skills)
	return &engineer, nil
}

func (r engineerRepo) List(_ context.Context, filter repository.EngineerFilter) ([]domain.Engineer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.Engineer
	for _, engineer := range r.s.engineers {
		if filter.SearchTerm != nil && !engineer.Matches(*filter.SearchTerm) {
			continue
		}
		if filter.Department != nil && engineer.Department != *filter.Department {
			continue
		}
		engineer.Skills = cloneStrings(engineer.Skills)
		result = append(result, engineer)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r engineerRepo) Delete(_ context.Context, id string) error {
	if !r.s.hasEngineer(id) {
		return repository.ErrNotFound
	}
	lock := r.s.engineerLock(id)
	lock.Lock()
	defer lock.Unlock()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.engineers[id]; !ok {
		r.s.forgetLock(id, lock)
		return repository.ErrNotFound
	}
	for _, a := range r.s.assignments {
		if a.EngineerID == id {
			return repository.ErrReferenced
		}
	}
	delete(r.s.engineers, id)
	delete(r.s.users, id)
	r.s.forgetLock(id, lock)
	return nil
}

type projectRepo struct{ s *Store }

func (r projectRepo) Create(_ context.Context, project *domain.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	project.ID = uuid.NewString()
	project.CreatedAt, project.UpdatedAt = now, now
	stored := *project
	stored.RequiredSkills = cloneStrings(project.RequiredSkills)
	r.s.projects[project.ID] = stored
	return nil
}

func (r projectRepo) Update(_ context.Context, project *domain.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.projects[project.ID]
	if !ok {
		return repository.ErrNotFound
	}
	project.CreatedAt = existing.CreatedAt
	project.ManagerID = existing.ManagerID
	project.UpdatedAt = r.s.now()
	stored := *project
	stored.RequiredSkills = cloneStrings(project.RequiredSkills)
	r.s.projects[project.ID] = stored
	return nil
}

func (r projectRepo) GetByID(_ context.Context, id string) (*domain.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	project, ok := r.s.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	project.RequiredSkills = cloneStrings(project.RequiredSkills)
	return &project, nil
}

func (r projectRepo) List(_ context.Context, filter repository.ProjectFilter) ([]domain.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.Project
	for _, project := range r.s.projects {
		if filter.Status != nil && project.Status != *filter.Status {
			continue
		}
		if filter.ManagerID != nil && project.ManagerID != *filter.ManagerID {
			continue
		}
		if filter.SearchTerm != nil && !project.Matches(*filter.SearchTerm) {
			continue
		}
		project.RequiredSkills = cloneStrings(project.RequiredSkills)
		result = append(result, project)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].StartDate.Equal(result[j].StartDate) {
			return result[i].Name < result[j].Name
		}
		return result[i].StartDate.Before(result[j].StartDate)
	})
	return result, nil
}

func (r projectRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[id]; !ok {
		return repository.ErrNotFound
	}
	for _, a := range r.s.assignments {
		if a.ProjectID == id {
			return repository.ErrReferenced
		}
	}
	delete(r.s.projects, id)
	return nil
}

type assignmentRepo struct{ s *Store }

func (r assignmentRepo) GetByID(_ context.Context, id string) (*domain.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.assignments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r assignmentRepo) List(_ context.Context, filter repository.AssignmentFilter) ([]domain.AssignmentView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.AssignmentView
	for _, a := range r.s.assignments {
		if filter.EngineerID != nil && a.EngineerID != *filter.EngineerID {
			continue
		}
		if filter.ProjectID != nil && a.ProjectID != *filter.ProjectID {
			continue
		}
		project := r.s.projects[a.ProjectID]
		if filter.ProjectStatus != nil && project.Status != *filter.ProjectStatus {
			continue
		}
		view := domain.AssignmentView{
			Assignment:    a,
			EngineerName:  r.s.engineers[a.EngineerID].Name,
			ProjectName:   project.Name,
			ProjectStatus: project.Status,
		}
		if filter.SearchTerm != nil && !view.Matches(*filter.SearchTerm) {
			continue
		}
		result = append(result, view)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].StartDate.Equal(result[j].StartDate) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].StartDate.Before(result[j].StartDate)
	})
	return result, nil
}

func (r assignmentRepo) ListByEngineer(_ context.Context, engineerID string) ([]domain.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.assignmentsOf(engineerID), nil
}

func (r assignmentRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.assignments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.assignments, id)
	return nil
}

func (r assignmentRepo) WithEngineerLock(ctx context.Context, engineerID string, fn func(ctx context.Context, tx repository.LedgerTx) error) error {
	if !r.s.hasEngineer(engineerID) {
		return repository.ErrNotFound
	}
	lock := r.s.engineerLock(engineerID)
	lock.Lock()
	defer lock.Unlock()

	r.s.mu.RLock()
	engineer, ok := r.s.engineers[engineerID]
	r.s.mu.RUnlock()
	if !ok {
		// deleted while we waited
		r.s.forgetLock(engineerID, lock)
		return repository.ErrNotFound
	}
	engineer.Skills = cloneStrings(engineer.Skills)

	tx := &ledgerTx{s: r.s, engineer: &engineer}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.commit()
}

// ledgerTx buffers writes until fn succeeds.
type ledgerTx struct {
	s        *Store
	engineer *domain.Engineer
	inserts  []domain.Assignment
	updated  bool
}

func (t *ledgerTx) Engineer() *domain.Engineer { return t.engineer }

func (t *ledgerTx) Assignments(_ context.Context) ([]domain.Assignment, error) {
	t.s.mu.RLock()
	existing := t.s.assignmentsOf(t.engineer.ID)
	t.s.mu.RUnlock()
	return append(existing, t.inserts...), nil
}

func (t *ledgerTx) InsertAssignment(_ context.Context, assignment *domain.Assignment) error {
	assignment.ID = uuid.NewString()
	assignment.EngineerID = t.engineer.ID
	assignment.CreatedAt = t.s.now()
	t.inserts = append(t.inserts, *assignment)
	return nil
}

func (t *ledgerTx) UpdateEngineer(_ context.Context, engineer *domain.Engineer) error {
	engineer.ID = t.engineer.ID
	engineer.UpdatedAt = t.s.now()
	copied := *engineer
	copied.Skills = cloneStrings(engineer.Skills)
	t.engineer = &copied
	t.updated = true
	return nil
}

func (t *ledgerTx) commit() error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if _, ok := t.s.engineers[t.engineer.ID]; !ok {
		return repository.ErrNotFound
	}
	for _, a := range t.inserts {
		if _, ok := t.s.projects[a.ProjectID]; !ok {
			return repository.ErrReferenced
		}
	}
	for _, a := range t.inserts {
		t.s.assignments[a.ID] = a
	}
	if t.updated {
		t.s.engineers[t.engineer.ID] = *t.engineer
		if user, ok := t.s.users[t.engineer.ID]; ok {
			user.Department = t.engineer.Department
			user.UpdatedAt = t.engineer.UpdatedAt
			t.s.users[user.ID] = user
		}
	}
	return nil
}

// assignmentsOf must be called with mu held.
func (s *Store) assignmentsOf(engineerID string) []domain.Assignment {
	var result []domain.Assignment
	for _, a := range s.assignments {
		if a.EngineerID == engineerID {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.Before(result[j].StartDate) })
	return result
}
