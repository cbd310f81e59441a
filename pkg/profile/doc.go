// Package profile loads profile and manifest documents from a template
// root.
//
// A profile named N is read from <profiles dir>/N.json (or .yaml/.yml) and
// its manifest from <manifests dir>/N.json. JSON documents may carry
// comments and trailing commas. Both documents are validated on load; the
// cross-checks between them (every action names a declared target, action
// ids are unique) run in Validate so callers can reject a bad manifest
// before anything is written.
package profile
