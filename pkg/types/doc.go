// Package types defines the data model shared by the engine: profiles,
// manifests and their actions, and the transactions, changes and conflicts
// recorded in the ledger. It also defines the FS interface every component
// performs its filesystem work through.
package types
