package auth

import (
	"chat-relay/errors"
	"chat-relay/protocol"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Stored records are line based, a control character would split them.
	_ = v.RegisterValidation("nocontrol", func(fl validator.FieldLevel) bool {
		return strings.IndexFunc(fl.Field().String(), unicode.IsControl) < 0
	})
	return v
}

// Keep in sync with the validate tags below.
const (
	MinUsernameLength = 3
	MinPasswordLength = 4
)

// Credentials are checked at registration time only. Existing records are
// trusted as stored.
type Credentials struct {
	Username string `validate:"required,alphanum,min=3,max=32"`
	Password string `validate:"required,min=4,max=64,nocontrol"`
}

// ValidateCredentials enforces the username and password rules and reports
// which one failed.
func ValidateCredentials(username, password string) error {
	if strings.EqualFold(username, protocol.ServerName) {
		return fmt.Errorf("%w: %q is reserved", errors.ErrInvalidUsername, username)
	}
	err := validate.Struct(Credentials{Username: username, Password: password})
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err
	}
	switch {
	case verrs[0].Field() == "Username":
		return fmt.Errorf("%w: must be %d to %d letters or digits", errors.ErrInvalidUsername, MinUsernameLength, protocol.MaxUsernameLength)
	case verrs[0].Tag() == "nocontrol":
		return fmt.Errorf("%w: must not contain control characters", errors.ErrInvalidPassword)
	default:
		return fmt.Errorf("%w: must be %d to %d characters", errors.ErrInvalidPassword, MinPasswordLength, protocol.MaxPasswordLength)
	}
}
