package notify

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/accountkit/pkg/email/templates"
	"github.com/dmitrymomot/accountkit/pkg/event"
)

// message is the data every mail renders from.
type message struct {
	Product   string
	Support   string
	To        string
	Link      string
	ExpiresAt string
	Until     string
	OldLogin  string
	NewLogin  string
}

// mail renders one kind of account message.
type mail struct {
	subject func(m message) string
	body    func(m message) templ.Component
	text    func(m message) string
}

var passwordChanged = mail{
	subject: func(m message) string { return fmt.Sprintf("Your %s password changed", m.Product) },
	body: func(m message) templ.Component {
		return layout(m,
			paragraph("Hi,"),
			paragraph("The password of your account was changed and every other session was signed out."),
			paragraph("If you didn't do this, reset your password and contact "+m.Support+"."),
		)
	},
	text: func(m message) string {
		return fmt.Sprintf("The password of your %s account was changed and every other session was signed out.\n\n"+
			"If you didn't do this, reset your password and contact %s.", m.Product, m.Support)
	},
}

// mails maps each mailed event kind to its message.
var mails = map[event.Kind]mail{
	event.VerificationRequested: {
		subject: func(m message) string { return fmt.Sprintf("Confirm your %s account", m.Product) },
		body: func(m message) templ.Component {
			return layout(m,
				paragraph("Hi,"),
				paragraph("Confirm your email address to activate your account:"),
				link(m.Link),
				paragraph("The link expires at "+m.ExpiresAt+"."),
			)
		},
		text: func(m message) string {
			return fmt.Sprintf("Confirm your email address to activate your %s account:\n\n%s\n\n"+
				"The link expires at %s.", m.Product, m.Link, m.ExpiresAt)
		},
	},
	event.PasswordResetRequested: {
		subject: func(m message) string { return fmt.Sprintf("Reset your %s password", m.Product) },
		body: func(m message) templ.Component {
			return layout(m,
				paragraph("Hi,"),
				paragraph("Someone asked to reset the password of this account. Use the link below to pick a new one:"),
				link(m.Link),
				paragraph("The link expires at "+m.ExpiresAt+". If it wasn't you, ignore this message."),
			)
		},
		text: func(m message) string {
			return fmt.Sprintf("Someone asked to reset the password of your %s account. Pick a new one here:\n\n%s\n\n"+
				"The link expires at %s. If it wasn't you, ignore this message.", m.Product, m.Link, m.ExpiresAt)
		},
	},
	event.LoginChangeRequested: {
		subject: func(m message) string { return fmt.Sprintf("Confirm your new %s email", m.Product) },
		body: func(m message) templ.Component {
			return layout(m,
				paragraph("Hi,"),
				paragraph("Confirm that "+m.To+" should replace "+m.OldLogin+" as the sign-in email of your account:"),
				link(m.Link),
				paragraph("The link expires at "+m.ExpiresAt+"."),
			)
		},
		text: func(m message) string {
			return fmt.Sprintf("Confirm that %s should replace %s as the sign-in email of your %s account:\n\n%s\n\n"+
				"The link expires at %s.", m.To, m.OldLogin, m.Product, m.Link, m.ExpiresAt)
		},
	},
	event.LoginChanged: {
		subject: func(m message) string { return fmt.Sprintf("Your %s sign-in email changed", m.Product) },
		body: func(m message) templ.Component {
			return layout(m,
				paragraph("Hi,"),
				paragraph("The sign-in email of your account changed from "+m.OldLogin+" to "+m.NewLogin+"."),
				paragraph("If you didn't do this, contact "+m.Support+" right away."),
			)
		},
		text: func(m message) string {
			return fmt.Sprintf("The sign-in email of your %s account changed from %s to %s.\n\n"+
				"If you didn't do this, contact %s right away.", m.Product, m.OldLogin, m.NewLogin, m.Support)
		},
	},
	event.PasswordReset:   passwordChanged,
	event.PasswordChanged: passwordChanged,
	event.AccountLocked: {
		subject: func(m message) string { return fmt.Sprintf("Your %s account is temporarily locked", m.Product) },
		body: func(m message) templ.Component {
			return layout(m,
				paragraph("Hi,"),
				paragraph("We locked your account after several failed sign-in attempts. You can try again after "+m.Until+"."),
				paragraph("If these attempts weren't yours, consider resetting your password."),
			)
		},
		text: func(m message) string {
			return fmt.Sprintf("We locked your %s account after several failed sign-in attempts. You can try again after %s.\n\n"+
				"If these attempts weren't yours, consider resetting your password.", m.Product, m.Until)
		},
	},
	event.AccountClosed: {
		subject: func(m message) string { return fmt.Sprintf("Your %s account was closed", m.Product) },
		body: func(m message) templ.Component {
			return layout(m,
				paragraph("Hi,"),
				paragraph("Your account was closed. Thanks for using "+m.Product+"."),
			)
		},
		text: func(m message) string {
			return fmt.Sprintf("Your %s account was closed. Thanks for using %s.", m.Product, m.Product)
		},
	},
}

// render produces the subject and both bodies of m.
func (ml mail) render(ctx context.Context, m message) (subject, html, text string, err error) {
	html, err = templates.Render(ctx, ml.body(m))
	if err != nil {
		return "", "", "", err
	}
	return ml.subject(m), html, ml.text(m), nil
}

// layout wraps body in the mail document and footer.
func layout(m message, body ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!doctype html><html><body style="font-family: sans-serif; line-height: 1.5;">`); err != nil {
			return err
		}
		for _, c := range body {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, `<p style="color: #888; font-size: 12px;">%s &middot; questions? write to %s</p></body></html>`,
			templ.EscapeString(m.Product), templ.EscapeString(m.Support))
		return err
	})
}

func paragraph(text string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<p>"+templ.EscapeString(text)+"</p>")
		return err
	})
}

// link renders href as a clickable paragraph. Unsafe schemes are replaced by
// templ's sanitized placeholder.
func link(href string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		safe := templ.EscapeString(string(templ.URL(href)))
		_, err := fmt.Fprintf(w, `<p><a href="%s">%s</a></p>`, safe, templ.EscapeString(href))
		return err
	})
}
