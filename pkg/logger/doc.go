// Package logger builds *slog.Logger instances for the account engine and
// provides attribute constructors so every component names its log fields the
// same way.
//
// New applies Option values (format, level, output, static attributes and
// context extractors) and wraps the resulting handler with
// LogHandlerDecorator, which pulls request-scoped values out of the context on
// every record.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(os.Getenv("APP_ENV"), "accountd"),
//	    logger.WithContextValue("request_id", requestIDKey{}),
//	)
//
//	log.InfoContext(ctx, "account verified",
//	    logger.AccountID(acc.ID),
//	    logger.Component("account"),
//	)
//
// Attribute helpers such as Error and AccountID return an empty slog.Attr for
// nil input, so call sites never need a nil check.
package logger
