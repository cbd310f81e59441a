// Package strategies implements the ways a manifest action can install a
// template source into a project.
//
// Every strategy has the same shape: it receives the action's Context, an
// absolute source path inside the template root and an absolute
// destination inside the project, and reports what it did as an Outcome.
// The Outcome lists every file it created or updated, in order, even when
// the strategy also returns an error; the engine relies on that list to
// undo partial work. A strategy that finds a destination it must not
// touch returns a Conflict instead, after staging the source under the
// transaction's conflict directory.
//
// Strategies are registered by name in init() and looked up with Lookup.
package strategies
