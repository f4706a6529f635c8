package logger

import (
	"log/slog"
	"time"
	"unicode/utf8"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// AccountID records the account identifier under the key "account_id".
// If id is nil, it returns an empty Attr.
func AccountID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("account_id", id)
}

// Login records a masked login so logs never carry a full address.
func Login(login string) slog.Attr {
	return slog.String("login", MaskLogin(login))
}

// TokenKind records the token purpose under the key "token_kind".
func TokenKind(kind string) slog.Attr {
	return slog.String("token_kind", kind)
}

// Reason records the internal cause of a refused operation.
func Reason(reason string) slog.Attr {
	return slog.String("reason", reason)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records the event name under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Count records a counter under the key "count".
func Count(n int64) slog.Attr {
	return slog.Int64("count", n)
}

// MaskLogin keeps the first character of the local part and the domain.
func MaskLogin(login string) string {
	at := -1
	for i := len(login) - 1; i >= 0; i-- {
		if login[i] == '@' {
			at = i
			break
		}
	}
	if login == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(login)
	if at < size {
		return login[:size] + "***"
	}
	return login[:size] + "***" + login[at:]
}
