// Package ledger persists the transaction ledger of a project and the
// immutable per-transaction history records.
//
// The ledger is a single JSON document, {"transactions": [...]}, rewritten
// atomically on every save. Transactions are only ever appended; the one
// mutation allowed on a stored transaction is marking an apply as rolled
// back. History records are written once and never overwritten.
package ledger
