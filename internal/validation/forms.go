package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// PostForm is the create/edit post form. Group is a group id or empty.
type PostForm struct {
	Text  string `form:"text" validate:"notblank"`
	Group string `form:"group" validate:"omitempty,number"`
}

// CommentForm is the add-comment form.
type CommentForm struct {
	Text string `form:"text" validate:"notblank"`
}

// SignupForm registers a new account.
type SignupForm struct {
	FirstName string `form:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" validate:"max=150"`
	Username  string `form:"username" validate:"username"`
	Email     string `form:"email" validate:"omitempty,email,max=254"`
	Password  string `form:"password" validate:"password"`
}

// LoginForm authenticates an existing account.
type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// PasswordChangeForm replaces the signed-in user's password.
type PasswordChangeForm struct {
	OldPassword  string `form:"old_password" validate:"required"`
	NewPassword1 string `form:"new_password1" validate:"password"`
	NewPassword2 string `form:"new_password2" validate:"required,eqfield=NewPassword1"`
}

// FormErrors maps form field names to their error messages. The key "" holds
// errors that belong to the form as a whole.
type FormErrors map[string][]string

// Add appends a message for field.
func (e FormErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Has reports whether field has any errors.
func (e FormErrors) Has(field string) bool {
	return len(e[field]) > 0
}

// Any reports whether there are errors at all.
func (e FormErrors) Any() bool {
	return len(e) > 0
}

func (e FormErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msgs := range e {
		parts = append(parts, field+": "+strings.Join(msgs, "; "))
	}
	return "invalid form: " + strings.Join(parts, ", ")
}

var (
	once     sync.Once
	validate *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		mustRegister("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		mustRegister("username", func(fl validator.FieldLevel) bool {
			return ValidateUsername(fl.Field().String()) == nil
		})
		mustRegister("password", func(fl validator.FieldLevel) bool {
			return ValidatePassword(fl.Field().String()) == nil
		})
	})
	return validate
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// Validate checks form against its validate tags and returns nil or the
// per-field messages.
func Validate(form any) FormErrors {
	err := engine().Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FormErrors{"": {err.Error()}}
	}

	out := FormErrors{}
	for _, fe := range verrs {
		out.Add(fe.Field(), message(fe, form))
	}
	return out
}

func message(fe validator.FieldError, form any) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "This field is required."
	case "number":
		return "Select a valid choice."
	case "email":
		return "Enter a valid email address."
	case "max":
		return "Ensure this value has at most " + fe.Param() + " characters."
	case "eqfield":
		return "The two password fields didn't match."
	case "username":
		if err := ValidateUsername(fieldString(form, fe.StructField())); err != nil {
			return capitalize(err.Error()) + "."
		}
	case "password":
		if err := ValidatePassword(fieldString(form, fe.StructField())); err != nil {
			return capitalize(err.Error()) + "."
		}
	}
	return "Invalid value."
}

func fieldString(form any, name string) string {
	v := reflect.Indirect(reflect.ValueOf(form))
	f := v.FieldByName(name)
	if !f.IsValid() || f.Kind() != reflect.String {
		return ""
	}
	return f.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
