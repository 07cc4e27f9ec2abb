package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/erms/internal/api/dto"
	"github.com/spec-kit/erms/internal/auth"
	"github.com/spec-kit/erms/internal/domain"
	"github.com/spec-kit/erms/internal/service"
)

// AssignmentsHandler exposes the assignment ledger.
type AssignmentsHandler struct {
	assignments *service.AssignmentService
}

// NewAssignmentsHandler constructs handler.
func NewAssignmentsHandler(assignments *service.AssignmentService) *AssignmentsHandler {
	return &AssignmentsHandler{assignments: assignments}
}

// List handles GET /api/assignments?engineer_id=&project_id=&status=&q=.
func (h *AssignmentsHandler) List(c *fiber.Ctx) error {
	caller, err := auth.CallerFromContext(c)
	if err != nil {
		return err
	}
	filter := service.AssignmentListFilter{
		EngineerID: optionalQuery(c, "engineer_id"),
		ProjectID:  optionalQuery(c, "project_id"),
		SearchTerm: optionalQuery(c, "q"),
	}
	if status := optionalQuery(c, "status"); status != nil {
		s := domain.ProjectStatus(*status)
		filter.ProjectStatus = &s
	}
	views, err := h.assignments.ListAssignments(c.UserContext(), caller, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAssignmentViewResponses(views)})
}

// Get handles GET /api/assignments/:id.
func (h *AssignmentsHandler) Get(c *fiber.Ctx) error {
	caller, err := auth.CallerFromContext(c)
	if err != nil {
		return err
	}
	assignment, err := h.assignments.GetAssignment(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAssignmentResponse(assignment)})
}

// Create handles POST /api/assignments.
func (h *AssignmentsHandler) Create(c *fiber.Ctx) error {
	caller, err := auth.CallerFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateAssignmentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	start, err := dateField("startDate", req.StartDate)
	if err != nil {
		return err
	}
	end, err := dateField("endDate", req.EndDate)
	if err != nil {
		return err
	}

	assignment, err := h.assignments.CreateAssignment(c.UserContext(), caller, service.AssignmentCreateInput{
		EngineerID:           req.EngineerID,
		ProjectID:            req.ProjectID,
		AllocationPercentage: req.AllocationPercentage,
		StartDate:            start,
		EndDate:              end,
		Role:                 req.Role,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAssignmentResponse(assignment)})
}

// Delete handles DELETE /api/assignments/:id.
func (h *AssignmentsHandler) Delete(c *fiber.Ctx) error {
	caller, err := auth.CallerFromContext(c)
	if err != nil {
		return err
	}
	if err := h.assignments.RemoveAssignment(c.UserContext(), caller, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
