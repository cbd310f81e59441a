// Package filesystem provides filesystem implementations for portcfg.
//
// This package contains implementations of the types.FS interface,
// including the standard OS filesystem, afero-backed test filesystems and
// the copy-on-write overlay used for dry runs. It also carries the small
// helpers every writer shares: atomic writes, metadata-preserving copies
// and pruning of empty parent directories.
package filesystem
