package account

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"golang.org/x/text/cases"
)

// NormalizeLogin trims and case-folds a login. Two logins that differ only
// in case normalize to the same string.
func NormalizeLogin(login string) string {
	return cases.Fold().String(strings.TrimSpace(login))
}

func validateLogin(login string) error {
	err := validation.Validate(login,
		validation.Required,
		validation.Length(3, 254),
		is.Email,
	)
	if err != nil {
		return errors.Join(ErrInvalidInput, validation.Errors{"login": err})
	}
	return nil
}

// validatePassword checks password against the length policy. An empty
// password passes unless required is set.
func (s *Service) validatePassword(field, password string, required bool) error {
	rules := []validation.Rule{
		validation.Length(s.cfg.PasswordMinLength, s.cfg.PasswordMaxLength),
	}
	if required {
		rules = append([]validation.Rule{validation.Required}, rules...)
	}
	if err := validation.Validate(password, rules...); err != nil {
		return errors.Join(ErrInvalidInput, validation.Errors{field: err})
	}
	return nil
}
