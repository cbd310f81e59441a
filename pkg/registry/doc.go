// Package registry provides a generic, thread-safe registry keyed by any
// string-like name. portcfg uses it to dispatch manifest strategies.
package registry
