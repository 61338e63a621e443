package handler

import (
	"github.com/gofiber/fiber/v2"

	"portfolioapi/internal/service"
)

// ListComments godoc
// @Summary List the comments of a project or task
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param entity_type query string true "project or task"
// @Param entity_id query string true "Entity ID"
// @Success 200 {object} service.ListResult[model.Comment]
// @Router /api/comments [get]
func ListComments(svc service.CommentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := page(c)
		if err != nil {
			return err
		}
		res, err := svc.List(c.UserContext(), c.Query("entity_type"), c.Query("entity_id"), p)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

// CreateComment godoc
// @Summary Comment on a project or task
// @Description Mentioned users and the task assignee are notified; the author never is.
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateCommentInput true "Comment"
// @Success 201 {object} model.Comment
// @Router /api/comments [post]
func CreateComment(svc service.CommentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CreateCommentInput
		if err := bind(c, &in); err != nil {
			return err
		}
		cm, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(cm)
	}
}

func UpdateComment(svc service.CommentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		var in service.UpdateCommentInput
		if err := bind(c, &in); err != nil {
			return err
		}
		cm, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(cm)
	}
}

func DeleteComment(svc service.CommentService) fiber.Handler {
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
