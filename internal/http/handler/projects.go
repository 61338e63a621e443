package handler

import (
	"github.com/gofiber/fiber/v2"

	"portfolioapi/internal/service"
)

// ListProjects godoc
// @Summary List projects
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status"
// @Param priority query string false "Priority"
// @Param owner_id query string false "Owner"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Param sort query string false "Sort field, prefix with - for descending"
// @Success 200 {object} service.ListResult[model.Project]
// @Failure 400 {object} errorPayload
// @Router /api/projects [get]
func ListProjects(svc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := page(c, projectSorts...)
		if err != nil {
			return err
		}
		res, err := svc.List(c.UserContext(), service.ProjectFilter{
			Status:   c.Query("status"),
			Priority: c.Query("priority"),
			OwnerID:  c.Query("owner_id"),
		}, p)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

// CreateProject godoc
// @Summary Create a project
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateProjectInput true "Project"
// @Success 201 {object} model.Project
// @Failure 400 {object} errorPayload
// @Router /api/projects [post]
func CreateProject(svc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CreateProjectInput
		if err := bind(c, &in); err != nil {
			return err
		}
		p, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// GetProject godoc
// @Summary Get a project
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {object} model.Project
// @Failure 404 {object} errorPayload
// @Router /api/projects/{id} [get]
func GetProject(svc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		p, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(p)
	}
}

func UpdateProject(svc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		var in service.UpdateProjectInput
		if err := bind(c, &in); err != nil {
			return err
		}
		p, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(p)
	}
}

// DeleteProject godoc
// @Summary Delete a project with its tasks, comments and file records
// @Tags projects
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 204
// @Failure 404 {object} errorPayload
// @Router /api/projects/{id} [delete]
func DeleteProject(svc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func ProjectStats(svc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		st, err := svc.Stats(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(st)
	}
}
