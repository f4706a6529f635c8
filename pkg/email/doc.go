// Package email sends transactional mail.
//
// EmailSender is the only contract the rest of the module depends on. Two
// implementations ship with the package:
//
//   - NewPostmarkClient delivers through the Postmark API
//     (github.com/mrz1836/postmark) with the sender and reply-to taken from
//     Config.
//   - NewDevSender writes each message to a directory as an HTML file plus a
//     JSON metadata file, which is convenient for local development and tests.
//
// Both validate SendEmailParams before doing any work, so a malformed message
// fails fast with a validation error instead of reaching the provider.
//
//	sender, err := email.NewPostmarkClient(cfg)
//	if err != nil {
//	    return err
//	}
//	err = sender.SendEmail(ctx, email.SendEmailParams{
//	    SendTo:   "user@example.com",
//	    Subject:  "Confirm your account",
//	    BodyHTML: html,
//	    Tag:      "verification",
//	})
package email
