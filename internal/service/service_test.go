package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/erms/internal/domain"
	"github.com/spec-kit/erms/internal/events"
	"github.com/spec-kit/erms/internal/observability"
	"github.com/spec-kit/erms/internal/repository/memory"
)

var (
	manager = domain.Caller{ID: "manager-1", Role: domain.RoleManager}
	admin   = domain.Caller{ID: "admin-1", Role: domain.RoleAdmin}
)

type testEnv struct {
	store       *memory.Store
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	capacity    *CapacityService
	assignments *AssignmentService
	engineers   *EngineerService
	projects    *ProjectService
}

func fixedNow() time.Time {
	return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	capacity := NewCapacityService(CapacityDependencies{
		EngineerRepo:   store.Engineers(),
		AssignmentRepo: store.Assignments(),
		Metrics:        metrics,
		Now:            fixedNow,
	})
	return &testEnv{
		store:      store,
		dispatcher: dispatcher,
		metrics:    metrics,
		capacity:   capacity,
		assignments: NewAssignmentService(AssignmentDependencies{
			EngineerRepo:   store.Engineers(),
			ProjectRepo:    store.Projects(),
			AssignmentRepo: store.Assignments(),
			Capacity:       capacity,
			Dispatcher:     dispatcher,
			Metrics:        metrics,
		}),
		engineers: NewEngineerService(EngineerDependencies{
			EngineerRepo:   store.Engineers(),
			AssignmentRepo: store.Assignments(),
			Capacity:       capacity,
			Dispatcher:     dispatcher,
		}),
		projects: NewProjectService(ProjectDependencies{
			ProjectRepo: store.Projects(),
			Dispatcher:  dispatcher,
		}),
	}
}

func (e *testEnv) seedEngineer(t *testing.T, name string, maxCapacity int) *domain.Engineer {
	t.Helper()
	user := &domain.User{
		Name:       name,
		Email:      name + "@example.com",
		Role:       domain.RoleEngineer,
		Department: domain.DefaultDepartment,
	}
	engineer := &domain.Engineer{
		Skills:      []string{"Go", "React"},
		Seniority:   domain.SeniorityMid,
		MaxCapacity: maxCapacity,
	}
	require.NoError(t, e.store.Users().Create(context.Background(), user, engineer))
	return engineer
}

func (e *testEnv) seedProject(t *testing.T, name string) *domain.Project {
	t.Helper()
	project, err := e.projects.CreateProject(context.Background(), manager, ProjectInput{
		Name:      name,
		TeamSize:  3,
		StartDate: date(t, "2024-01-01"),
		EndDate:   date(t, "2024-12-31"),
	})
	require.NoError(t, err)
	return project
}

func (e *testEnv) assign(t *testing.T, engineerID, projectID string, allocation int, start, end string) (*domain.Assignment, error) {
	t.Helper()
	return e.assignments.CreateAssignment(context.Background(), manager, AssignmentCreateInput{
		EngineerID:           engineerID,
		ProjectID:            projectID,
		AllocationPercentage: allocation,
		StartDate:            date(t, start),
		EndDate:              date(t, end),
	})
}

func date(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := domain.ParseDate(value)
	require.NoError(t, err)
	return d
}

func asCaller(e *domain.Engineer) domain.Caller {
	return domain.Caller{ID: e.ID, Role: domain.RoleEngineer}
}
