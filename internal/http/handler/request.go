package handler

import (
	"slices"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"portfolioapi/internal/service"
)

// apiError is a client error with a fixed envelope code. ErrorHandler writes it.
type apiError struct {
	status  int
	code    string
	message string
}

func (e *apiError) Error() string   { return e.message }
func (e *apiError) StatusCode() int { return e.status }

func badRequest(code, message string) error {
	return &apiError{status: fiber.StatusBadRequest, code: code, message: message}
}

// pathID reads a UUID route parameter.
func pathID(c *fiber.Ctx, name string) (string, error) {
	id := c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", badRequest("INVALID_ID", "invalid id format")
	}
	return id, nil
}

// Fields each list endpoint may sort by besides created_at.
var (
	userSorts    = []string{"email", "first_name", "last_name", "department", "role", "status", "updated_at"}
	projectSorts = []string{"name", "status", "priority", "start_date", "due_date", "progress", "updated_at"}
	taskSorts    = []string{"title", "status", "priority", "due_date", "estimated_hours", "updated_at"}
	teamSorts    = []string{"name", "updated_at"}
	fileSorts    = []string{"filename", "size"}
)

// page reads limit, offset and sort from the query string. sort may name
// created_at or one of sortable, optionally prefixed with "-".
func page(c *fiber.Ctx, sortable ...string) (service.Page, error) {
	var p service.Page
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return p, badRequest("INVALID_LIMIT", "invalid limit")
		}
		p.Limit = n
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return p, badRequest("INVALID_OFFSET", "invalid offset")
		}
		p.Offset = n
	}
	if v := c.Query("sort"); v != "" {
		field := strings.TrimPrefix(v, "-")
		if field != "created_at" && !slices.Contains(sortable, field) {
			return p, badRequest("INVALID_SORT", "cannot sort by "+field)
		}
		p.Sort = v
	}
	return p, nil
}

// bind decodes a JSON body into v.
func bind(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return badRequest("INVALID_BODY", "request body must be valid JSON")
	}
	return nil
}
