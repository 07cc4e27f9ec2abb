package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/erms/internal/api/dto"
	"github.com/spec-kit/erms/internal/auth"
	"github.com/spec-kit/erms/internal/domain"
	"github.com/spec-kit/erms/internal/service"
)

// ProjectsHandler exposes the project registry.
type ProjectsHandler struct {
	projects *service.ProjectService
}

// NewProjectsHandler constructs handler.
func NewProjectsHandler(projects *service.ProjectService) *ProjectsHandler {
	return &ProjectsHandler{projects: projects}
}

// List handles GET /api/projects?status=&q=&manager_id=.
func (h *ProjectsHandler) List(c *fiber.Ctx) error {
	filter := service.ProjectListFilter{
		ManagerID:  optionalQuery(c, "manager_id"),
		SearchTerm: optionalQuery(c, "q"),
	}
	if status := optionalQuery(c, "status"); status != nil {
		s := domain.ProjectStatus(*status)
		filter.Status = &s
	}
	projects, err := h.projects.ListProjects(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProjectResponses(projects)})
}

// Get handles GET /api/projects/:id.
func (h *ProjectsHandler) Get(c *fiber.Ctx) error {
	project, err := h.projects.GetProject(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProjectResponse(project)})
}

// Create handles POST /api/projects.
func (h *ProjectsHandler) Create(c *fiber.Ctx) error {
	caller, err := auth.CallerFromContext(c)
	if err != nil {
		return err
	}
	input, err := projectInput(c)
	if err != nil {
		return err
	}
	project, err := h.projects.CreateProject(c.UserContext(), caller, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewProjectResponse(project)})
}

// Update handles PUT /api/projects/:id.
func (h *ProjectsHandler) Update(c *fiber.Ctx) error {
	caller, err := auth.CallerFromContext(c)
	if err != nil {
		return err
	}
	input, err := projectInput(c)
	if err != nil {
		return err
	}
	project, err := h.projects.UpdateProject(c.UserContext(), caller, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProjectResponse(project)})
}

// Delete handles DELETE /api/projects/:id.
func (h *ProjectsHandler) Delete(c *fiber.Ctx) error {
	caller, err := auth.CallerFromContext(c)
	if err != nil {
		return err
	}
	if err := h.projects.DeleteProject(c.UserContext(), caller, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func projectInput(c *fiber.Ctx) (service.ProjectInput, error) {
	var req dto.ProjectRequest
	if err := parseBody(c, &req); err != nil {
		return service.ProjectInput{}, err
	}
	start, err := dateField("startDate", req.StartDate)
	if err != nil {
		return service.ProjectInput{}, err
	}
	end, err := dateField("endDate", req.EndDate)
	if err != nil {
		return service.ProjectInput{}, err
	}
	return service.ProjectInput{
		Name:           req.Name,
		Description:    req.Description,
		RequiredSkills: req.RequiredSkills,
		TeamSize:       req.TeamSize,
		Status:         domain.ProjectStatus(req.Status),
		StartDate:      start,
		EndDate:        end,
	}, nil
}
