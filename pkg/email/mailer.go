package email

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// EmailSender delivers a single message.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

// SendEmailParams describes one outgoing message.
type SendEmailParams struct {
	SendTo   string `json:"send_to"`
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
	BodyText string `json:"body_text,omitempty"`
	Tag      string `json:"tag,omitempty"`
}

// Validate reports missing or malformed fields. The returned error wraps
// ErrInvalidParams and the underlying validation.Errors.
func (p SendEmailParams) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.SendTo, validation.Required, is.Email),
		validation.Field(&p.Subject, validation.Required, validation.Length(1, 255)),
		validation.Field(&p.BodyHTML, validation.Required),
		validation.Field(&p.Tag, validation.Length(0, 1000)),
	)
	if err != nil {
		return errors.Join(ErrInvalidParams, err)
	}
	return nil
}
