// Package session resolves session tokens and remember cookies to accounts.
//
// A Gate sits between a transport (cookies, headers, whatever the caller
// uses) and the account service. The transport hands raw values in; the
// Gate answers with an account that may act right now or with
// account.ErrAuthenticationRequired. Stale sessions, whose account is gone,
// closed or unverified, are deleted on sight.
//
// Sessions live in a Store. MemoryStore keeps them in process and runs a
// cleanup loop; RedisStore keeps them in redis with an index set per account
// so RevokeAccount is a single lookup.
//
// # Usage
//
//	store := session.NewRedisStore(client)
//	svc, _ := account.New(accountStore, cfg,
//		account.WithSessionRevoker(session.NewRevoker(store)))
//	gate, _ := session.NewGate(store, svc)
//
//	acc, err := svc.Authenticate(ctx, login, password)
//	if err != nil {
//		return account.Public(err)
//	}
//	sess, err := gate.Login(ctx, acc)
//
// Remember cookies rotate on every Resume; the previous value stops working
// as soon as the new one is issued.
package session
