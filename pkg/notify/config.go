package notify

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Config describes where links in outgoing mail point to.
type Config struct {
	// BaseURL is the public address of the application handling the links.
	BaseURL     string `env:"NOTIFY_BASE_URL,required"`
	ProductName string `env:"NOTIFY_PRODUCT_NAME" envDefault:"Accountkit"`
	// SupportEmail is shown in the footer of every message.
	SupportEmail string `env:"SUPPORT_EMAIL,required"`

	VerifyPath      string `env:"NOTIFY_VERIFY_PATH" envDefault:"/account/verify"`
	ResetPath       string `env:"NOTIFY_RESET_PATH" envDefault:"/account/reset-password"`
	LoginChangePath string `env:"NOTIFY_LOGIN_CHANGE_PATH" envDefault:"/account/confirm-email"`
}

// Validate reports missing or malformed settings.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.ProductName, validation.Required),
		validation.Field(&c.SupportEmail, validation.Required, is.Email),
		validation.Field(&c.VerifyPath, validation.Required),
		validation.Field(&c.ResetPath, validation.Required),
		validation.Field(&c.LoginChangePath, validation.Required),
	)
	if err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}
	return nil
}
