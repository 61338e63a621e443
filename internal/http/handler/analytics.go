package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"portfolioapi/internal/analytics"
	"portfolioapi/internal/service"
)

type skillGapRequest struct {
	Requirements []analytics.SkillRequirement `json:"requirements"`
}

// Workload godoc
// @Summary Workload of every active user
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.WorkloadReport
// @Router /api/analytics/workload [get]
func Workload(svc service.AnalyticsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rep, err := svc.Workload(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(rep)
	}
}

// MatchSkills godoc
// @Summary Rank users against skill requirements
// @Tags analytics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.SkillMatchInput true "Requirements"
// @Success 200 {array} analytics.SkillMatch
// @Router /api/analytics/skill-match [post]
func MatchSkills(svc service.AnalyticsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.SkillMatchInput
		if err := bind(c, &in); err != nil {
			return err
		}
		res, err := svc.MatchSkills(c.UserContext(), in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"data": res})
	}
}

// Capacity godoc
// @Summary Capacity forecast
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param weeks query int false "Weeks to forecast (1-26)" default(4)
// @Success 200 {object} analytics.CapacityForecast
// @Failure 400 {object} errorPayload
// @Router /api/analytics/capacity [get]
func Capacity(svc service.AnalyticsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		weeks := 0
		if v := c.Query("weeks"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return badRequest("INVALID_WEEKS", "invalid weeks")
			}
			weeks = n
		}
		f, err := svc.Capacity(c.UserContext(), weeks)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(f)
	}
}

func Conflicts(svc service.AnalyticsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Conflicts(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"data": res})
	}
}

func Optimize(svc service.AnalyticsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Optimize(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

func PredictDuration(svc service.AnalyticsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.DurationInput
		if err := bind(c, &in); err != nil {
			return err
		}
		p, err := svc.PredictDuration(c.UserContext(), in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(p)
	}
}

func ForecastProject(svc service.AnalyticsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		f, err := svc.ForecastProject(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(f)
	}
}

func ProjectRisk(svc service.AnalyticsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		r, err := svc.ProjectRisk(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(r)
	}
}

func AssessSkills(svc service.AnalyticsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.AssessSkillsInput
		if err := bind(c, &in); err != nil {
			return err
		}
		res, err := svc.AssessSkills(c.UserContext(), in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"data": res})
	}
}

func SkillGaps(svc service.AnalyticsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		var in skillGapRequest
		if err := bind(c, &in); err != nil {
			return err
		}
		rep, err := svc.SkillGaps(c.UserContext(), id, in.Requirements)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(rep)
	}
}

// ProjectInsights godoc
// @Summary AI insights for a project
// @Description Falls back to templated output when no LLM is configured.
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {object} ai.Insights
// @Router /api/projects/{id}/insights [get]
func ProjectInsights(svc service.AnalyticsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		res, err := svc.ProjectInsights(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

func SuggestTasks(svc service.AnalyticsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		res, err := svc.SuggestTasks(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}
