// Package credential hashes and verifies account passwords.
//
// A Store wraps one primary Hasher used for new hashes and a set of known
// hashers used for verification, so hashes produced before an algorithm switch
// keep verifying. The algorithm of a stored hash is detected from its prefix:
// "$2a$", "$2b$" and "$2y$" for bcrypt, "$argon2id$" for Argon2id.
//
// Hashing is CPU bound. Every Hash and Verify call takes a slot from a
// weighted semaphore (golang.org/x/sync/semaphore) sized to the number of CPUs
// by default, so a burst of logins queues instead of starving the process.
// Waiting for a slot honours the caller's context.
//
//	store := credential.NewStore(credential.WithHasher(credential.Bcrypt(12)))
//	hash, err := store.Hash(ctx, "correct horse battery staple")
//	ok, err := store.Verify(ctx, "correct horse battery staple", hash)
//
// Burn performs a verification against a decoy hash and discards the result.
// Callers use it on code paths where no stored hash exists so that the
// response time does not reveal whether an account exists.
package credential
