package handler

import (
	"github.com/gofiber/fiber/v2"

	"portfolioapi/internal/service"
)

type assignRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// ListTasks godoc
// @Summary List tasks
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param project_id query string false "Project"
// @Param assignee_id query string false "Assignee"
// @Param status query string false "Status"
// @Param priority query string false "Priority"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} service.ListResult[model.Task]
// @Router /api/tasks [get]
func ListTasks(svc service.TaskService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := page(c, taskSorts...)
		if err != nil {
			return err
		}
		res, err := svc.List(c.UserContext(), service.TaskFilter{
			ProjectID:  c.Query("project_id"),
			AssigneeID: c.Query("assignee_id"),
			Status:     c.Query("status"),
			Priority:   c.Query("priority"),
		}, p)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

// CreateTask godoc
// @Summary Create a task
// @Description The assignee, if any, is notified.
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateTaskInput true "Task"
// @Success 201 {object} model.Task
// @Failure 400 {object} errorPayload
// @Router /api/tasks [post]
func CreateTask(svc service.TaskService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CreateTaskInput
		if err := bind(c, &in); err != nil {
			return err
		}
		t, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(t)
	}
}

func GetTask(svc service.TaskService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		t, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(t)
	}
}

func UpdateTask(svc service.TaskService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		var in service.UpdateTaskInput
		if err := bind(c, &in); err != nil {
			return err
		}
		t, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(t)
	}
}

// UpdateTaskStatus godoc
// @Summary Change a task's status
// @Description Completing sets completed_at, reopening clears it.
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Param body body statusRequest true "Status"
// @Success 200 {object} model.Task
// @Router /api/tasks/{id}/status [patch]
func UpdateTaskStatus(svc service.TaskService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		var in statusRequest
		if err := bind(c, &in); err != nil {
			return err
		}
		t, err := svc.UpdateStatus(c.UserContext(), id, in.Status)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(t)
	}
}

func AssignTask(svc service.TaskService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		var in assignRequest
		if err := bind(c, &in); err != nil {
			return err
		}
		t, err := svc.Assign(c.UserContext(), id, in.AssigneeID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(t)
	}
}

func DeleteTask(svc service.TaskService) fiber.Handler {
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
