package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/erms/internal/api/dto"
	"github.com/spec-kit/erms/internal/auth"
	"github.com/spec-kit/erms/internal/domain"
	"github.com/spec-kit/erms/internal/service"
)

// AuthHandler exposes registration, login and profile endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	session, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       domain.Role(req.Role),
		Department: req.Department,
		Engineer: service.EngineerProfileInput{
			Skills:      req.Skills,
			Seniority:   domain.Seniority(req.Seniority),
			MaxCapacity: req.MaxCapacity,
		},
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": newSessionResponse(session)})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	session, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": newSessionResponse(session)})
}

// Profile handles GET /api/auth/profile.
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	caller, err := auth.CallerFromContext(c)
	if err != nil {
		return err
	}
	profile, err := h.auth.Profile(c.UserContext(), caller)
	if err != nil {
		return err
	}
	resp := dto.ProfileResponse{User: dto.NewUserResponse(profile.User)}
	if profile.Engineer != nil {
		engineer := dto.NewEngineerResponse(profile.Engineer)
		resp.Engineer = &engineer
	}
	return c.JSON(fiber.Map{"data": resp})
}

func newSessionResponse(s *service.Session) dto.SessionResponse {
	resp := dto.SessionResponse{
		User: dto.NewUserResponse(s.User),
		Auth: dto.AuthResponse{Token: s.Token, ExpiresAt: s.ExpiresAt},
	}
	if s.Engineer != nil {
		engineer := dto.NewEngineerResponse(s.Engineer)
		resp.Engineer = &engineer
	}
	return resp
}
