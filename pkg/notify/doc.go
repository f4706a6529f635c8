// Package notify sends the mail that account events call for.
//
// A Mailer subscribes to an event.Dispatcher and renders one message per
// event from templ components: verification, password reset and login
// change links, plus security notices for password changes, lockouts, login
// changes and closures. Delivery goes through any email.EmailSender.
//
//	mailer, err := notify.NewMailer(sender, cfg)
//	if err != nil {
//	    return err
//	}
//	mailer.Subscribe(dispatcher)
package notify
