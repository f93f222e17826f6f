package server

import (
	"errors"
	"io"
	"log/slog"
	"net/url"
	"strconv"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/service"
	"inkwell/internal/storage"
	"inkwell/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// render executes a page template with the current user and path added to data.
func (s *Server) render(c *fiber.Ctx, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["User"] = currentUser(c)
	data["Path"] = c.Path()
	return c.Render(name, data)
}

func (s *Server) staticPage(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return s.render(c, name, nil)
	}
}

// ErrorHandler renders error pages. Anything that is not a known client
// error is logged and shown as a 500.
func (s *Server) ErrorHandler(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)

	var page string
	switch {
	case status == fiber.StatusUnauthorized:
		return c.Redirect(loginURL+"?next="+url.QueryEscape(c.OriginalURL()), fiber.StatusFound)
	case status == fiber.StatusNotFound:
		page = "errors/404"
	case status == fiber.StatusForbidden:
		page = "errors/403"
	case status == fiber.StatusTooManyRequests, status == fiber.StatusServiceUnavailable:
		page = "errors/unavailable"
	case status >= fiber.StatusInternalServerError:
		page = "errors/500"
		middleware.Logger.ErrorContext(c.UserContext(), "Request failed",
			slog.String("path", c.Path()), slog.String("error", err.Error()))
	default:
		return c.Status(status).SendString(utils.StatusMessage(status))
	}

	data := fiber.Map{"Status": status, "Message": utils.StatusMessage(status)}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		data["Message"] = fe.Message
	}

	c.Status(status)
	if rerr := s.render(c, page, data); rerr != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "Error page failed to render",
			slog.String("page", page), slog.String("error", rerr.Error()))
		return c.Status(status).SendString(utils.StatusMessage(status))
	}
	return nil
}

// parseID reads a positive numeric route parameter. Anything else is a 404,
// the same as an id that does not exist.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.ErrNotFound
	}
	return uint(id), nil
}

// readUpload returns the submitted image, or nil when no file was chosen.
func readUpload(c *fiber.Ctx) (*service.ImageUpload, error) {
	fh, err := c.FormFile(storage.ImageField)
	if err != nil || fh.Filename == "" {
		return nil, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	defer func() { _ = f.Close() }()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &service.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Content:     content,
	}, nil
}

// asFormErrors reports whether err carries form validation errors.
func asFormErrors(err error) (validation.FormErrors, bool) {
	var errs validation.FormErrors
	if errors.As(err, &errs) {
		return errs, true
	}
	return nil, false
}

func profileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

func postURL(id uint) string {
	return "/posts/" + strconv.FormatUint(uint64(id), 10) + "/"
}
