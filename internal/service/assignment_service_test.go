package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/erms/internal/domain"
	"github.com/spec-kit/erms/internal/events"
	apperrors "github.com/spec-kit/erms/pkg/util/errorutil"
)

func TestCreateAssignmentRejectsOverlappingOverCapacity(t *testing.T) {
	env := newTestEnv(t)
	eng := env.seedEngineer(t, "alice", 100)
	p1 := env.seedProject(t, "Payments")
	p2 := env.seedProject(t, "Search")

	_, err := env.assign(t, eng.ID, p1.ID, 60, "2024-01-01", "2024-03-31")
	require.NoError(t, err)

	_, err = env.assign(t, eng.ID, p2.ID, 50, "2024-03-01", "2024-04-30")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeCapacityExceeded))

	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 110, domainErr.Details["peak"])
	assert.Equal(t, 100, domainErr.Details["max_capacity"])
	assert.Equal(t, eng.ID, domainErr.Details["engineer_id"])

	stored, err := env.store.Assignments().ListByEngineer(context.Background(), eng.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 1, "rejected admission leaves the ledger unchanged")
}

func TestCreateAssignmentAdmitsNonOverlapping(t *testing.T) {
	env := newTestEnv(t)
	eng := env.seedEngineer(t, "bob", 50)
	p1 := env.seedProject(t, "Payments")
	p2 := env.seedProject(t, "Search")

	_, err := env.assign(t, eng.ID, p1.ID, 40, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	_, err = env.assign(t, eng.ID, p2.ID, 40, "2024-02-01", "2024-02-28")
	require.NoError(t, err)
}

func TestCreateAssignmentBoundaryDayOverlaps(t *testing.T) {
	env := newTestEnv(t)
	eng := env.seedEngineer(t, "carol", 100)
	p1 := env.seedProject(t, "Payments")
	p2 := env.seedProject(t, "Search")

	_, err := env.assign(t, eng.ID, p1.ID, 60, "2024-01-01", "2024-03-01")
	require.NoError(t, err)
	_, err = env.assign(t, eng.ID, p2.ID, 50, "2024-03-01", "2024-03-31")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeCapacityExceeded))
}

func TestCreateAssignmentExactlyAtCapacity(t *testing.T) {
	env := newTestEnv(t)
	eng := env.seedEngineer(t, "dave", 75)
	p1 := env.seedProject(t, "Payments")
	p2 := env.seedProject(t, "Search")

	_, err := env.assign(t, eng.ID, p1.ID, 50, "2024-01-01", "2024-06-30")
	require.NoError(t, err)
	_, err = env.assign(t, eng.ID, p2.ID, 25, "2024-02-01", "2024-02-28")
	require.NoError(t, err)
}

func TestCreateAssignmentValidation(t *testing.T) {
	env := newTestEnv(t)
	eng := env.seedEngineer(t, "erin", 100)
	project := env.seedProject(t, "Payments")

	cases := []struct {
		name       string
		allocation int
		start, end string
	}{
		{"zero allocation", 0, "2024-01-01", "2024-01-31"},
		{"allocation above 100", 101, "2024-01-01", "2024-01-31"},
		{"inverted dates", 50, "2024-02-01", "2024-01-31"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.assign(t, eng.ID, project.ID, tc.allocation, tc.start, tc.end)
			assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation), "got %v", err)
		})
	}
}

func TestCreateAssignmentUnknownReferences(t *testing.T) {
	env := newTestEnv(t)
	eng := env.seedEngineer(t, "frank", 100)
	project := env.seedProject(t, "Payments")

	_, err := env.assign(t, "missing", project.ID, 10, "2024-01-01", "2024-01-31")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	_, err = env.assign(t, eng.ID, "missing", 10, "2024-01-01", "2024-01-31")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestCreateAssignmentRequiresManager(t *testing.T) {
	env := newTestEnv(t)
	eng := env.seedEngineer(t, "gina", 100)
	project := env.seedProject(t, "Payments")

	_, err := env.assignments.CreateAssignment(context.Background(), asCaller(eng), AssignmentCreateInput{
		EngineerID:           eng.ID,
		ProjectID:            project.ID,
		AllocationPercentage: 10,
		StartDate:            date(t, "2024-01-01"),
		EndDate:              date(t, "2024-01-31"),
	})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}

func TestCreateAssignmentDefaultsRoleAndPublishes(t *testing.T) {
	env := newTestEnv(t)
	eng := env.seedEngineer(t, "hank", 100)
	project := env.seedProject(t, "Payments")

	var received []events.Event
	env.dispatcher.Subscribe(events.EventAssignmentCreated, func(_ context.Context, e events.Event) error {
		received = append(received, e)
		return nil
	})

	created, err := env.assign(t, eng.ID, project.ID, 30, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAssignmentRole, created.Role)
	assert.NotEmpty(t, created.ID)

	require.Len(t, received, 1)
	assert.Equal(t, created.ID, received[0].SubjectID)
	payload, ok := received[0].Payload.(events.AssignmentPayload)
	require.True(t, ok)
	assert.Equal(t, "2024-01-31", payload.EndDate)
	assert.Equal(t, int64(1), env.metrics.Snapshot().AssignmentsAdmitted)
}

func TestConcurrentAdmissionsForOneEngineer(t *testing.T) {
	env := newTestEnv(t)
	eng := env.seedEngineer(t, "ivy", 100)
	project := env.seedProject(t, "Payments")

	const attempts = 10
	start, end := date(t, "2024-05-01"), date(t, "2024-05-31")
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
		rejected int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.assignments.CreateAssignment(context.Background(), manager, AssignmentCreateInput{
				EngineerID:           eng.ID,
				ProjectID:            project.ID,
				AllocationPercentage: 30,
				StartDate:            start,
				EndDate:              end,
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				admitted++
			} else if apperrors.IsCode(err, apperrors.CodeCapacityExceeded) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, admitted)
	assert.Equal(t, attempts-3, rejected)

	report, err := env.capacity.GetCapacity(context.Background(), manager, eng.ID, ptr(date(t, "2024-05-15")))
	require.NoError(t, err)
	assert.Equal(t, 90, report.Summary.TotalAllocated)
}

func TestRemoveAssignmentFreesCapacity(t *testing.T) {
	env := newTestEnv(t)
	eng := env.seedEngineer(t, "jack", 100)
	p1 := env.seedProject(t, "Payments")
	p2 := env.seedProject(t, "Search")

	first, err := env.assign(t, eng.ID, p1.ID, 80, "2024-03-01", "2024-03-31")
	require.NoError(t, err)
	_, err = env.assign(t, eng.ID, p2.ID, 40, "2024-03-10", "2024-03-20")
	require.Error(t, err)

	require.NoError(t, env.assignments.RemoveAssignment(context.Background(), manager, first.ID))
	_, err = env.assign(t, eng.ID, p2.ID, 40, "2024-03-10", "2024-03-20")
	require.NoError(t, err)

	err = env.assignments.RemoveAssignment(context.Background(), manager, first.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestListAssignmentsScopesEngineersToThemselves(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedEngineer(t, "alice", 100)
	bob := env.seedEngineer(t, "bob", 100)
	project := env.seedProject(t, "Payments")

	_, err := env.assign(t, alice.ID, project.ID, 50, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	_, err = env.assign(t, bob.ID, project.ID, 50, "2024-01-01", "2024-01-31")
	require.NoError(t, err)

	all, err := env.assignments.ListAssignments(context.Background(), manager, AssignmentListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := env.assignments.ListAssignments(context.Background(), asCaller(alice), AssignmentListFilter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "alice", own[0].EngineerName)
	assert.Equal(t, "Payments", own[0].ProjectName)

	_, err = env.assignments.ListAssignments(context.Background(), asCaller(alice), AssignmentListFilter{EngineerID: &bob.ID})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	query := "pay"
	matched, err := env.assignments.ListAssignments(context.Background(), manager, AssignmentListFilter{SearchTerm: &query})
	require.NoError(t, err)
	assert.Len(t, matched, 2)
}

func TestGetAssignmentVisibility(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedEngineer(t, "alice", 100)
	bob := env.seedEngineer(t, "bob", 100)
	project := env.seedProject(t, "Payments")

	created, err := env.assign(t, alice.ID, project.ID, 50, "2024-01-01", "2024-01-31")
	require.NoError(t, err)

	got, err := env.assignments.GetAssignment(context.Background(), asCaller(alice), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = env.assignments.GetAssignment(context.Background(), asCaller(bob), created.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}

func ptr[T any](v T) *T {
	return &v
}
