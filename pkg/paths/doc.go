// Package paths provides centralized path handling for portcfg.
//
// All state a transaction leaves behind lives inside the project it was
// applied to: the ledger, per-transaction backups, immutable history
// records and staged conflict files. A Layout resolves those locations
// once, from configured defaults and optional per-profile overrides, and
// hands out the per-transaction subdirectories the engine writes to.
//
// Paths recorded in the ledger are project-relative and slash separated
// so a ledger stays valid when a project is moved. The helpers here
// convert between that form and absolute paths, and refuse any path that
// would escape the directory it is supposed to live in.
package paths
