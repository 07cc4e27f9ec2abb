package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/erms/internal/domain"
	apperrors "github.com/spec-kit/erms/pkg/util/errorutil"
)

func TestCreateProjectDefaults(t *testing.T) {
	env := newTestEnv(t)

	project, err := env.projects.CreateProject(context.Background(), manager, ProjectInput{
		Name:           "  Payments  ",
		RequiredSkills: []string{"Go", " go", "React"},
		TeamSize:       4,
		StartDate:      date(t, "2024-01-01"),
		EndDate:        date(t, "2024-06-30"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, project.ID)
	assert.Equal(t, "Payments", project.Name)
	assert.Equal(t, domain.ProjectStatusPlanning, project.Status)
	assert.Equal(t, []string{"Go", "React"}, project.RequiredSkills)
	assert.Equal(t, manager.ID, project.ManagerID)
}

func TestCreateProjectValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name  string
		input ProjectInput
	}{
		{"empty name", ProjectInput{TeamSize: 1, StartDate: date(t, "2024-01-01"), EndDate: date(t, "2024-01-31")}},
		{"zero team size", ProjectInput{Name: "X", StartDate: date(t, "2024-01-01"), EndDate: date(t, "2024-01-31")}},
		{"inverted dates", ProjectInput{Name: "X", TeamSize: 1, StartDate: date(t, "2024-02-01"), EndDate: date(t, "2024-01-31")}},
		{"unknown status", ProjectInput{Name: "X", TeamSize: 1, Status: "archived", StartDate: date(t, "2024-01-01"), EndDate: date(t, "2024-01-31")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.projects.CreateProject(context.Background(), manager, tc.input)
			assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation), "got %v", err)
		})
	}
}

func TestCreateProjectRequiresManager(t *testing.T) {
	env := newTestEnv(t)
	eng := env.seedEngineer(t, "alice", 100)

	_, err := env.projects.CreateProject(context.Background(), asCaller(eng), ProjectInput{
		Name:      "X",
		TeamSize:  1,
		StartDate: date(t, "2024-01-01"),
		EndDate:   date(t, "2024-01-31"),
	})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}

func TestUpdateProjectStatusIsFreeForm(t *testing.T) {
	env := newTestEnv(t)
	project := env.seedProject(t, "Payments")

	input := ProjectInput{
		Name:      project.Name,
		TeamSize:  project.TeamSize,
		Status:    domain.ProjectStatusCompleted,
		StartDate: project.StartDate,
		EndDate:   project.EndDate,
	}
	updated, err := env.projects.UpdateProject(context.Background(), manager, project.ID, input)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusCompleted, updated.Status)

	input.Status = domain.ProjectStatusPlanning
	updated, err = env.projects.UpdateProject(context.Background(), manager, project.ID, input)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusPlanning, updated.Status)

	_, err = env.projects.UpdateProject(context.Background(), manager, "missing", input)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestListProjectsFilters(t *testing.T) {
	env := newTestEnv(t)
	env.seedProject(t, "Payments")
	search := env.seedProject(t, "Search")
	_, err := env.projects.UpdateProject(context.Background(), manager, search.ID, ProjectInput{
		Name:      search.Name,
		TeamSize:  search.TeamSize,
		Status:    domain.ProjectStatusActive,
		StartDate: search.StartDate,
		EndDate:   search.EndDate,
	})
	require.NoError(t, err)

	active, err := env.projects.ListProjects(context.Background(), ProjectListFilter{Status: ptr(domain.ProjectStatusActive)})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Search", active[0].Name)

	matched, err := env.projects.ListProjects(context.Background(), ProjectListFilter{SearchTerm: ptr("PAY")})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "Payments", matched[0].Name)

	_, err = env.projects.ListProjects(context.Background(), ProjectListFilter{Status: ptr(domain.ProjectStatus("bogus"))})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestDeleteProjectWithAssignments(t *testing.T) {
	env := newTestEnv(t)
	eng := env.seedEngineer(t, "alice", 100)
	busy := env.seedProject(t, "Payments")
	idle := env.seedProject(t, "Search")
	_, err := env.assign(t, eng.ID, busy.ID, 50, "2024-03-01", "2024-03-31")
	require.NoError(t, err)

	err = env.projects.DeleteProject(context.Background(), manager, busy.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	require.NoError(t, env.projects.DeleteProject(context.Background(), manager, idle.ID))
	_, err = env.projects.GetProject(context.Background(), idle.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}
