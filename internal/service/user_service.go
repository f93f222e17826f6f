package service

import (
	"context"
	"log/slog"
	"strings"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is the form-level error for a failed login.
const ErrInvalidCredentials = "Please enter a correct username and password. Note that both fields may be case-sensitive."

// ErrWrongOldPassword is the old_password field error on a password change.
const ErrWrongOldPassword = "Your old password was entered incorrectly. Please enter it again."

// ErrUsernameTaken is the username field error for a duplicate signup.
const ErrUsernameTaken = "A user with that username already exists."

type UserService struct {
	users repository.UserRepository
	cost  int
}

// NewUserService hashes passwords with bcrypt.DefaultCost.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users, cost: bcrypt.DefaultCost}
}

// WithCost returns a copy hashing with the given bcrypt cost.
func (s *UserService) WithCost(cost int) *UserService {
	cp := *s
	cp.cost = cost
	return &cp
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// Signup validates the form and creates an account.
func (s *UserService) Signup(ctx context.Context, form validation.SignupForm) (user *models.User, err error) {
	ctx, span := observability.StartSpan(ctx, "UserService", "Signup")
	defer func() { observability.EndSpan(span, err) }()

	form.Username = strings.TrimSpace(form.Username)
	form.Email = strings.TrimSpace(form.Email)

	errs := validation.Validate(&form)
	if errs == nil {
		errs = validation.FormErrors{}
	}

	if !errs.Has("username") {
		_, err := s.users.GetByUsername(ctx, form.Username)
		switch {
		case err == nil:
			errs.Add("username", ErrUsernameTaken)
		case !models.IsCode(err, models.CodeNotFound):
			return nil, err
		}
	}
	if errs.Any() {
		return nil, errs
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(form.Password), s.cost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user = &models.User{
		Username:  form.Username,
		Email:     form.Email,
		Password:  string(hashed),
		FirstName: strings.TrimSpace(form.FirstName),
		LastName:  strings.TrimSpace(form.LastName),
	}
	// A concurrent signup can take the name after the lookup above.
	if err := s.users.Create(ctx, user); err != nil {
		if models.IsCode(err, models.CodeConflict) {
			return nil, validation.FormErrors{"username": {ErrUsernameTaken}}
		}
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "User signed up", slog.Uint64("user_id", uint64(user.ID)))
	return user, nil
}

// Authenticate checks a login form. Unknown users and wrong passwords give the
// same form-level error.
func (s *UserService) Authenticate(ctx context.Context, form validation.LoginForm) (user *models.User, err error) {
	ctx, span := observability.StartSpan(ctx, "UserService", "Authenticate")
	defer func() { observability.EndSpan(span, err) }()

	if errs := validation.Validate(&form); errs != nil {
		return nil, errs
	}

	user, err = s.users.GetByUsername(ctx, form.Username)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, validation.FormErrors{"": {ErrInvalidCredentials}}
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(form.Password)); err != nil {
		return nil, validation.FormErrors{"": {ErrInvalidCredentials}}
	}
	return user, nil
}

// ChangePassword checks the current password of userID and replaces it.
func (s *UserService) ChangePassword(ctx context.Context, userID uint, form validation.PasswordChangeForm) (err error) {
	ctx, span := observability.StartSpan(ctx, "UserService", "ChangePassword")
	defer func() { observability.EndSpan(span, err) }()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	errs := validation.Validate(&form)
	if errs == nil {
		errs = validation.FormErrors{}
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(form.OldPassword)) != nil {
		errs["old_password"] = []string{ErrWrongOldPassword}
	}
	if errs.Any() {
		return errs
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(form.NewPassword1), s.cost)
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hashed)); err != nil {
		return err
	}

	middleware.Logger.InfoContext(ctx, "Password changed", slog.Uint64("user_id", uint64(user.ID)))
	return nil
}
