package handler

import (
	"github.com/gofiber/fiber/v2"

	"portfolioapi/internal/service"
)

func ListTeams(svc service.TeamService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := page(c, teamSorts...)
		if err != nil {
			return err
		}
		res, err := svc.List(c.UserContext(), p)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

func CreateTeam(svc service.TeamService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CreateTeamInput
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

func GetTeam(svc service.TeamService) fiber.Handler {
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

func UpdateTeam(svc service.TeamService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		var in service.UpdateTeamInput
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

func DeleteTeam(svc service.TeamService) fiber.Handler {
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

// AddTeamMember godoc
// @Summary Add a member to a team
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Team ID"
// @Param body body service.AddMemberInput true "Member"
// @Success 200 {object} model.Team
// @Failure 409 {object} errorPayload "Already a member"
// @Router /api/teams/{id}/members [post]
func AddTeamMember(svc service.TeamService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		var in service.AddMemberInput
		if err := bind(c, &in); err != nil {
			return err
		}
		t, err := svc.AddMember(c.UserContext(), id, in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(t)
	}
}

func RemoveTeamMember(svc service.TeamService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		userID, err := pathID(c, "userId")
		if err != nil {
			return err
		}
		t, err := svc.RemoveMember(c.UserContext(), id, userID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(t)
	}
}
