package handler

import (
	"github.com/gofiber/fiber/v2"

	"portfolioapi/internal/service"
)

// UploadFile godoc
// @Summary Upload a file attached to a project or task
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File"
// @Param entity_type formData string true "project or task"
// @Param entity_id formData string true "Entity ID"
// @Success 201 {object} model.File
// @Failure 400 {object} errorPayload
// @Failure 503 {object} errorPayload "Storage not configured"
// @Router /api/files [post]
func UploadFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}
		file, err := svc.Upload(c.UserContext(), service.UploadInput{
			Reader:      f,
			Filename:    fh.Filename,
			ContentType: ct,
			Size:        fh.Size,
			EntityType:  c.FormValue("entity_type"),
			EntityID:    c.FormValue("entity_id"),
		})
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(file)
	}
}

func ListFiles(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := page(c, fileSorts...)
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

func GetFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		f, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(f)
	}
}

// FileDownloadURL godoc
// @Summary Presigned download link
// @Tags files
// @Produce json
// @Security BearerAuth
// @Param id path string true "File ID"
// @Success 200 {object} service.DownloadURL
// @Router /api/files/{id}/download [get]
func FileDownloadURL(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		u, err := svc.DownloadURL(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(u)
	}
}

// FileContent godoc
// @Summary Stream the stored file
// @Tags files
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "File ID"
// @Success 200 {file} binary
// @Failure 404 {object} errorPayload
// @Failure 503 {object} errorPayload "Storage not configured"
// @Router /api/files/{id}/content [get]
func FileContent(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		rc, f, err := svc.Open(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		c.Attachment(f.Filename)
		c.Set(fiber.HeaderContentType, f.ContentType)
		size := int(f.Size)
		if size <= 0 {
			size = -1
		}
		// fasthttp closes rc after the body is written.
		return c.SendStream(rc, size)
	}
}

func DeleteFile(svc service.FileService) fiber.Handler {
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
