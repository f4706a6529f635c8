package email

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Config holds mail settings. Postmark tokens may be left empty when the dev
// sender is used.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL,required"`
	SupportEmail         string `env:"SUPPORT_EMAIL,required"`

	// DevOutputDir switches cmd/accountd to the file-based sender when set.
	DevOutputDir string `env:"EMAIL_DEV_OUTPUT_DIR"`
}

// validatePostmark checks the fields the Postmark client cannot work without.
func (c Config) validatePostmark() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.PostmarkServerToken, validation.Required),
		validation.Field(&c.PostmarkAccountToken, validation.Required),
		validation.Field(&c.SenderEmail, validation.Required, is.Email),
		validation.Field(&c.SupportEmail, validation.Required, is.Email),
	)
}
