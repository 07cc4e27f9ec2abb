package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/erms/internal/api/dto"
	"github.com/spec-kit/erms/internal/auth"
	"github.com/spec-kit/erms/internal/domain"
	"github.com/spec-kit/erms/internal/service"
	apperrors "github.com/spec-kit/erms/pkg/util/errorutil"
)

// EngineersHandler exposes the engineer registry and capacity queries.
type EngineersHandler struct {
	engineers *service.EngineerService
	capacity  *service.CapacityService
}

// NewEngineersHandler constructs handler.
func NewEngineersHandler(engineers *service.EngineerService, capacity *service.CapacityService) *EngineersHandler {
	return &EngineersHandler{engineers: engineers, capacity: capacity}
}

// List handles GET /api/engineers?q=.
func (h *EngineersHandler) List(c *fiber.Ctx) error {
	engineers, err := h.engineers.ListEngineers(c.UserContext(), c.Query("q"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEngineerResponses(engineers)})
}

// Get handles GET /api/engineers/:id.
func (h *EngineersHandler) Get(c *fiber.Ctx) error {
	engineer, err := h.engineers.GetEngineer(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEngineerResponse(engineer)})
}

// Update handles PUT /api/engineers/:id.
func (h *EngineersHandler) Update(c *fiber.Ctx) error {
	caller, err := auth.CallerFromContext(c)
	if err != nil {
		return err
	}
	var req dto.UpdateEngineerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	input := service.EngineerUpdateInput{
		Skills:      req.Skills,
		MaxCapacity: req.MaxCapacity,
		Department:  req.Department,
	}
	if req.Seniority != nil {
		seniority := domain.Seniority(*req.Seniority)
		input.Seniority = &seniority
	}
	engineer, err := h.engineers.UpdateEngineer(c.UserContext(), caller, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEngineerResponse(engineer)})
}

// Delete handles DELETE /api/engineers/:id.
func (h *EngineersHandler) Delete(c *fiber.Ctx) error {
	caller, err := auth.CallerFromContext(c)
	if err != nil {
		return err
	}
	if err := h.engineers.DeleteEngineer(c.UserContext(), caller, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Capacity handles GET /api/engineers/:id/capacity?as_of=YYYY-MM-DD.
func (h *EngineersHandler) Capacity(c *fiber.Ctx) error {
	caller, err := auth.CallerFromContext(c)
	if err != nil {
		return err
	}
	asOf, err := dateQuery(c, "as_of")
	if err != nil {
		return err
	}
	report, err := h.capacity.GetCapacity(c.UserContext(), caller, c.Params("id"), asOf)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCapacityResponse(report.Engineer, report.Summary)})
}

// Timeline handles GET /api/engineers/:id/timeline?from=&to=. The range defaults
// to the 90 days starting today.
func (h *EngineersHandler) Timeline(c *fiber.Ctx) error {
	caller, err := auth.CallerFromContext(c)
	if err != nil {
		return err
	}
	from, err := dateQuery(c, "from")
	if err != nil {
		return err
	}
	to, err := dateQuery(c, "to")
	if err != nil {
		return err
	}
	if from == nil {
		today := h.capacity.Today()
		from = &today
	}
	if to == nil {
		end := from.AddDate(0, 0, 89)
		to = &end
	}
	if to.Before(*from) {
		return apperrors.NewValidationError("from must not be after to", nil)
	}

	engineer, steps, err := h.capacity.Timeline(c.UserContext(), caller, c.Params("id"), *from, *to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTimelineResponse(engineer, *from, *to, steps)})
}
