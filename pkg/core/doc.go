// Package core implements the transactional apply and rollback engine.
//
// # Apply
//
// Apply loads a profile and its manifest, checks every action before
// anything is written, then runs the actions in declared order against the
// project. Each strategy reports the files it created or updated; updated
// files are backed up first under the transaction's backup directory.
//
// An apply is all or nothing. When an action fails, the changes recorded
// so far are restored in reverse order and the transaction's backup and
// conflict directories are removed, leaving the project as it was. Only a
// fully successful apply is recorded: its history record is written and
// the transaction is appended to the ledger.
//
// Conflicts are not failures. A destination that cannot be merged safely
// is left untouched, the source is staged under the conflicts directory
// and the conflict is recorded on the transaction.
//
// # Rollback
//
// Rollback undoes one apply transaction (the latest open one by default)
// by restoring its changes in reverse order, marks it rolled back and
// records a rollback transaction. Staged conflicts are kept.
//
// # Read side
//
// History, Show and Status read the ledger without modifying anything.
// Status compares each recorded change against the file on disk using the
// checksum stored with the change.
package core
