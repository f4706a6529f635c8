// Package token issues and redeems single-use, expiring secrets bound to an
// account.
//
// Only a keyed hash of each secret is stored: HMAC-SHA256 under a server key,
// so a leaked token table cannot be replayed. The plaintext secret is returned
// exactly once by Issue and is meant to travel inside an out-of-band link.
//
// Issuing a token of some kind removes every earlier token of that kind for
// the account, which invalidates stale links. Redeem classifies failures as
// ErrInvalid, ErrExpired or ErrAlreadyConsumed, and consumes a matching token
// through Repository.ConsumeToken, an atomic compare-and-set on the consumed
// marker. Of two concurrent redemptions of one token exactly one succeeds.
//
// Links carry a LinkKey, "<account-id>_<secret>", so that operations given
// only the key can locate the account:
//
//	tok, secret, err := issuer.Issue(ctx, repo, accountID, token.KindVerification, 72*time.Hour)
//	link := "https://example.com/verify?key=" + token.LinkKey(accountID, secret)
//
//	accountID, secret, err := token.ParseLinkKey(key)
//	tok, err := issuer.Redeem(ctx, repo, accountID, token.KindVerification, secret)
package token
