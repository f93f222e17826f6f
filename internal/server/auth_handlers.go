package server

import (
	"log/slog"

	"inkwell/internal/middleware"
	"inkwell/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// SignupForm handles GET /auth/signup/
func (s *Server) SignupForm(c *fiber.Ctx) error {
	return s.render(c, "users/signup", fiber.Map{
		"Form":   validation.SignupForm{},
		"Errors": validation.FormErrors{},
	})
}

// Signup handles POST /auth/signup/. A new account is logged in straight away.
func (s *Server) Signup(c *fiber.Ctx) error {
	var form validation.SignupForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}

	user, err := s.userService.Signup(c.UserContext(), form)
	if errs, ok := asFormErrors(err); ok {
		form.Password = ""
		return s.render(c, "users/signup", fiber.Map{"Form": form, "Errors": errs})
	}
	if err != nil {
		return err
	}

	if err := s.issueSession(c, user); err != nil {
		return err
	}
	return c.Redirect("/", fiber.StatusFound)
}

// LoginForm handles GET /auth/login/
func (s *Server) LoginForm(c *fiber.Ctx) error {
	return s.render(c, "users/login", fiber.Map{
		"Form":   validation.LoginForm{},
		"Errors": validation.FormErrors{},
		"Next":   c.Query("next"),
	})
}

// Login handles POST /auth/login/
func (s *Server) Login(c *fiber.Ctx) error {
	var form validation.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}
	next := c.FormValue("next")

	user, err := s.userService.Authenticate(c.UserContext(), form)
	if errs, ok := asFormErrors(err); ok {
		form.Password = ""
		return s.render(c, "users/login", fiber.Map{"Form": form, "Errors": errs, "Next": next})
	}
	if err != nil {
		return err
	}

	if err := s.issueSession(c, user); err != nil {
		return err
	}
	middleware.Logger.InfoContext(c.UserContext(), "User logged in", slog.Uint64("user_id", uint64(user.ID)))
	return c.Redirect(safeNext(next), fiber.StatusFound)
}

// PasswordChangeForm handles GET /auth/change_password/
func (s *Server) PasswordChangeForm(c *fiber.Ctx) error {
	return s.render(c, "users/password_change", fiber.Map{"Errors": validation.FormErrors{}})
}

// PasswordChange handles POST /auth/change_password/. The current session
// stays signed in.
func (s *Server) PasswordChange(c *fiber.Ctx) error {
	var form validation.PasswordChangeForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}

	err := s.userService.ChangePassword(c.UserContext(), currentUserID(c), form)
	if errs, ok := asFormErrors(err); ok {
		return s.render(c, "users/password_change", fiber.Map{"Errors": errs})
	}
	if err != nil {
		return err
	}
	return s.render(c, "users/password_change_done", nil)
}

// Logout handles GET /auth/logout/
func (s *Server) Logout(c *fiber.Ctx) error {
	if claims, ok := c.Locals("session").(*sessionClaims); ok {
		s.revokeSession(c.UserContext(), claims)
	}
	s.clearSession(c)
	c.Locals("user", nil)
	c.Locals("userID", nil)
	return s.render(c, "users/logged_out", nil)
}
