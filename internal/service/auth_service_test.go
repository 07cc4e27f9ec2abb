package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/erms/internal/config"
	"github.com/spec-kit/erms/internal/domain"
	"github.com/spec-kit/erms/internal/repository/memory"
	apperrors "github.com/spec-kit/erms/pkg/util/errorutil"
)

func newAuthService(t *testing.T) (*AuthService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 15, BcryptCost: 4}}
	return NewAuthService(cfg, AuthDependencies{
		UserRepo:     store.Users(),
		EngineerRepo: store.Engineers(),
	}), store
}

func TestRegisterEngineerCreatesRegistryRecord(t *testing.T) {
	svc, store := newAuthService(t)

	session, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Alice",
		Email:    "Alice@Example.com",
		Password: "s3cret-pass",
		Role:     domain.RoleEngineer,
		Engineer: EngineerProfileInput{Skills: []string{"Go"}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "alice@example.com", session.User.Email)
	require.NotNil(t, session.Engineer)
	assert.Equal(t, domain.DefaultMaxCapacity, session.Engineer.MaxCapacity)
	assert.Equal(t, domain.SeniorityJunior, session.Engineer.Seniority)
	assert.Equal(t, domain.DefaultDepartment, session.Engineer.Department)

	engineer, err := store.Engineers().GetByID(context.Background(), session.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", engineer.Name)

	claims, err := svc.TokenManager().ParseToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.Subject)
	assert.Equal(t, domain.RoleEngineer, claims.Role)
}

func TestRegisterRejectsDuplicatesAndAdminRole(t *testing.T) {
	svc, _ := newAuthService(t)
	input := RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "s3cret-pass", Role: domain.RoleManager}

	session, err := svc.Register(context.Background(), input)
	require.NoError(t, err)
	assert.Nil(t, session.Engineer)

	input.Email = "BOB@example.com"
	_, err = svc.Register(context.Background(), input)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	input.Email = "root@example.com"
	input.Role = domain.RoleAdmin
	_, err = svc.Register(context.Background(), input)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestRegisterRejectsInvalidCapacityTier(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Carol",
		Email:    "carol@example.com",
		Password: "s3cret-pass",
		Role:     domain.RoleEngineer,
		Engineer: EngineerProfileInput{MaxCapacity: 80},
	})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestLoginAndProfile(t *testing.T) {
	svc, _ := newAuthService(t)
	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Dave",
		Email:    "dave@example.com",
		Password: "s3cret-pass",
		Role:     domain.RoleEngineer,
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "dave@example.com", "wrong")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))

	_, err = svc.Login(context.Background(), "nobody@example.com", "s3cret-pass")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))

	session, err := svc.Login(context.Background(), "DAVE@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.NotNil(t, session.Engineer)

	profile, err := svc.Profile(context.Background(), session.User.Caller())
	require.NoError(t, err)
	assert.Equal(t, "Dave", profile.User.Name)
	assert.Equal(t, session.User.ID, profile.Engineer.ID)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	svc, store := newAuthService(t)

	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin@example.com", "admin-pass"))
	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin@example.com", "admin-pass"))
	require.NoError(t, svc.EnsureAdmin(context.Background(), "", ""))

	user, err := store.Users().GetByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)

	session, err := svc.Login(context.Background(), "admin@example.com", "admin-pass")
	require.NoError(t, err)
	assert.Nil(t, session.Engineer)
}
