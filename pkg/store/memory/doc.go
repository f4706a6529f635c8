// Package memory is an in-process account.Store for tests, examples and
// single-process tools.
//
// Transactions are serialized by a single store-wide mutex and run against
// a private copy of the whole data set, which replaces the shared state only
// when the transaction function returns nil. A failed operation therefore
// leaves no trace, but every operation, reads included, costs time linear
// in the number of stored records and excludes every other operation. Use
// the postgres store where accounts must be isolated from one another; it
// locks only the rows a transaction reads. Nothing is kept across restarts.
package memory
