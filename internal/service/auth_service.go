package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/erms/internal/auth"
	"github.com/spec-kit/erms/internal/config"
	"github.com/spec-kit/erms/internal/domain"
	"github.com/spec-kit/erms/internal/repository"
	apperrors "github.com/spec-kit/erms/pkg/util/errorutil"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	engineers  repository.EngineerRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	EngineerRepo repository.EngineerRepository
	Logger       *zap.Logger
}

// EngineerProfileInput holds the optional engineer fields supplied at registration.
type EngineerProfileInput struct {
	Skills      []string
	Seniority   domain.Seniority
	MaxCapacity int
}

// RegisterInput describes a new account.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Role       domain.Role
	Department string
	Engineer   EngineerProfileInput
}

// Session is the result of a successful registration or login.
type Session struct {
	User      *domain.User
	Engineer  *domain.Engineer
	Token     string
	ExpiresAt time.Time
}

// Profile is the signed-in account with its engineer record when it has one.
type Profile struct {
	User     *domain.User
	Engineer *domain.Engineer
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	s := &AuthService{
		users:      deps.UserRepo,
		engineers:  deps.EngineerRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     deps.Logger,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Register creates an engineer or manager account. Engineer accounts get their
// registry record in the same write.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	if input.Role == "" {
		input.Role = domain.RoleEngineer
	}
	if input.Role != domain.RoleEngineer && input.Role != domain.RoleManager {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": "must be engineer or manager"})
	}

	department := strings.TrimSpace(input.Department)
	if department == "" {
		department = domain.DefaultDepartment
	}
	user := &domain.User{
		Name:       strings.TrimSpace(input.Name),
		Email:      strings.ToLower(strings.TrimSpace(input.Email)),
		Role:       input.Role,
		Department: department,
	}

	var engineer *domain.Engineer
	if input.Role == domain.RoleEngineer {
		var err error
		if engineer, err = newEngineerProfile(input.Engineer); err != nil {
			return nil, err
		}
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash

	if err := s.users.Create(ctx, user, engineer); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": user.Email})
		}
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("account registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return s.session(user, engineer)
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	engineer, err := s.engineerOf(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.session(user, engineer)
}

// Profile returns the caller's account.
func (s *AuthService) Profile(ctx context.Context, caller domain.Caller) (*Profile, error) {
	user, err := s.users.GetByID(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("account no longer exists")
		}
		return nil, apperrors.MapError(err)
	}
	engineer, err := s.engineerOf(ctx, user)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, Engineer: engineer}, nil
}

// EnsureAdmin creates the bootstrap admin account unless an account with that email exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	admin := &domain.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Department:   domain.DefaultDepartment,
	}
	if err := s.users.Create(ctx, admin, nil); err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return err
	}
	s.logger.Info("admin account bootstrapped", zap.String("email", email))
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) session(user *domain.User, engineer *domain.Engineer) (*Session, error) {
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Session{User: user, Engineer: engineer, Token: token, ExpiresAt: exp}, nil
}

func (s *AuthService) engineerOf(ctx context.Context, user *domain.User) (*domain.Engineer, error) {
	if user.Role != domain.RoleEngineer {
		return nil, nil
	}
	engineer, err := s.engineers.GetByID(ctx, user.ID)
	if err != nil {
		return nil, mapRepoError(err, "engineer", map[string]any{"engineer_id": user.ID})
	}
	return engineer, nil
}

func newEngineerProfile(input EngineerProfileInput) (*domain.Engineer, error) {
	engineer := &domain.Engineer{
		Skills:      domain.NormalizeSkills(input.Skills),
		Seniority:   input.Seniority,
		MaxCapacity: input.MaxCapacity,
	}
	if engineer.Seniority == "" {
		engineer.Seniority = domain.SeniorityJunior
	}
	if engineer.MaxCapacity == 0 {
		engineer.MaxCapacity = domain.DefaultMaxCapacity
	}
	details := map[string]any{}
	if !engineer.Seniority.Valid() {
		details["seniority"] = "must be junior, mid or senior"
	}
	if !domain.ValidCapacityTier(engineer.MaxCapacity) {
		details["maxCapacity"] = domain.CapacityTiers
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid engineer profile", details)
	}
	return engineer, nil
}
