// Package account implements the account lifecycle: registration,
// verification, authentication, password reset and change, login change and
// closure.
//
// Every operation of Service runs in a single store transaction obtained from
// Store.InTx. Events produced by the operation are collected in a per-call
// recorder and handed to the configured event.Publisher only after the
// transaction committed; a rolled back operation publishes nothing. Session
// revocation after a credential change or closure is also deferred until
// commit.
//
// Account status follows a small state machine:
//
//	unverified -> active
//	unverified -> closed
//	active     -> closed
//
// Closed is terminal. Every operation on a closed account fails with
// ErrAccountNotActive.
//
// Authentication errors are precise internally (ErrAccountNotFound,
// ErrAccountNotActive, ErrInvalidCredentials, ErrCorruptCredential) so that
// they can be logged and audited. Callers facing the outside world must pass
// them through Public, which collapses them into ErrAuthenticationFailed.
//
// Password hashing never runs inside a transaction. Operations that need a
// hash compute it first, and operations that verify one read the account,
// verify outside the transaction and then re-check the row before writing.
package account
