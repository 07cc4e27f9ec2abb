package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/erms/internal/domain"
	"github.com/spec-kit/erms/internal/events"
	apperrors "github.com/spec-kit/erms/pkg/util/errorutil"
)

func TestUpdateEngineerProfile(t *testing.T) {
	env := newTestEnv(t)
	eng := env.seedEngineer(t, "alice", 100)

	var payloads []events.EngineerUpdatedPayload
	env.dispatcher.Subscribe(events.EventEngineerUpdated, func(_ context.Context, e events.Event) error {
		payloads = append(payloads, e.Payload.(events.EngineerUpdatedPayload))
		return nil
	})

	updated, err := env.engineers.UpdateEngineer(context.Background(), asCaller(eng), eng.ID, EngineerUpdateInput{
		Skills:      ptr([]string{" Go ", "go", "Kubernetes", ""}),
		Seniority:   ptr(domain.SenioritySenior),
		MaxCapacity: ptr(75),
		Department:  ptr("Platform"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Kubernetes"}, updated.Skills)
	assert.Equal(t, domain.SenioritySenior, updated.Seniority)
	assert.Equal(t, 75, updated.MaxCapacity)

	stored, err := env.engineers.GetEngineer(context.Background(), eng.ID)
	require.NoError(t, err)
	assert.Equal(t, "Platform", stored.Department)

	require.Len(t, payloads, 1)
	assert.Equal(t, 100, payloads[0].OldMaxCapacity)
	assert.Equal(t, 75, payloads[0].NewMaxCapacity)
}

func TestUpdateEngineerRejectsInvalidProfile(t *testing.T) {
	env := newTestEnv(t)
	eng := env.seedEngineer(t, "bob", 100)

	_, err := env.engineers.UpdateEngineer(context.Background(), asCaller(eng), eng.ID, EngineerUpdateInput{MaxCapacity: ptr(60)})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	_, err = env.engineers.UpdateEngineer(context.Background(), asCaller(eng), eng.ID, EngineerUpdateInput{Seniority: ptr(domain.Seniority("principal"))})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestUpdateEngineerPermissions(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedEngineer(t, "alice", 100)
	bob := env.seedEngineer(t, "bob", 100)

	_, err := env.engineers.UpdateEngineer(context.Background(), asCaller(alice), bob.ID, EngineerUpdateInput{MaxCapacity: ptr(50)})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	_, err = env.engineers.UpdateEngineer(context.Background(), manager, bob.ID, EngineerUpdateInput{MaxCapacity: ptr(50)})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	_, err = env.engineers.UpdateEngineer(context.Background(), admin, bob.ID, EngineerUpdateInput{MaxCapacity: ptr(50)})
	require.NoError(t, err)

	_, err = env.engineers.UpdateEngineer(context.Background(), admin, "missing", EngineerUpdateInput{MaxCapacity: ptr(50)})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestLoweringMaxCapacityBelowCommittedPeak(t *testing.T) {
	env := newTestEnv(t)
	eng := env.seedEngineer(t, "carol", 100)
	p1 := env.seedProject(t, "Payments")
	p2 := env.seedProject(t, "Search")

	// already finished before today (2024-03-15), ignored
	_, err := env.assign(t, eng.ID, p1.ID, 100, "2024-01-01", "2024-02-29")
	require.NoError(t, err)
	_, err = env.assign(t, eng.ID, p2.ID, 60, "2024-03-01", "2024-06-30")
	require.NoError(t, err)

	_, err = env.engineers.UpdateEngineer(context.Background(), asCaller(eng), eng.ID, EngineerUpdateInput{MaxCapacity: ptr(50)})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeCapacityExceeded))

	stored, err := env.engineers.GetEngineer(context.Background(), eng.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, stored.MaxCapacity, "rejected update leaves the profile unchanged")

	updated, err := env.engineers.UpdateEngineer(context.Background(), asCaller(eng), eng.ID, EngineerUpdateInput{MaxCapacity: ptr(75)})
	require.NoError(t, err)
	assert.Equal(t, 75, updated.MaxCapacity)
}

func TestListEngineersBySkillOrName(t *testing.T) {
	env := newTestEnv(t)
	env.seedEngineer(t, "alice", 100)
	bob := env.seedEngineer(t, "bob", 100)
	_, err := env.engineers.UpdateEngineer(context.Background(), asCaller(bob), bob.ID, EngineerUpdateInput{Skills: ptr([]string{"Python"})})
	require.NoError(t, err)

	all, err := env.engineers.ListEngineers(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	bySkill, err := env.engineers.ListEngineers(context.Background(), "PYTH")
	require.NoError(t, err)
	require.Len(t, bySkill, 1)
	assert.Equal(t, "bob", bySkill[0].Name)

	byName, err := env.engineers.ListEngineers(context.Background(), "ali")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "alice", byName[0].Name)

	for _, wildcard := range []string{"%", "_", "a_i"} {
		matched, err := env.engineers.ListEngineers(context.Background(), wildcard)
		require.NoError(t, err)
		assert.Empty(t, matched, "%q is matched literally", wildcard)
	}
}

func TestDeleteEngineer(t *testing.T) {
	env := newTestEnv(t)
	busy := env.seedEngineer(t, "busy", 100)
	idle := env.seedEngineer(t, "idle", 100)
	project := env.seedProject(t, "Payments")
	_, err := env.assign(t, busy.ID, project.ID, 50, "2024-03-01", "2024-03-31")
	require.NoError(t, err)

	err = env.engineers.DeleteEngineer(context.Background(), manager, idle.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	err = env.engineers.DeleteEngineer(context.Background(), admin, busy.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	require.NoError(t, env.engineers.DeleteEngineer(context.Background(), admin, idle.ID))
	_, err = env.engineers.GetEngineer(context.Background(), idle.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}
