// Package formats converts structured configuration documents to and from
// keytree values.
//
// Each codec keeps the key order of the documents it reads and writes its
// own scalars back unchanged, so merging a template into a user's file
// only adds keys. Codecs are strict about destinations (a file a user
// broke is reported, not repaired) and may be lenient about template
// sources.
package formats

import (
	"errors"

	"github.com/arthur-debert/portcfg/pkg/keytree"
)

// ErrNotMapping is returned when a document parses but its root is not a
// key-map.
var ErrNotMapping = errors.New("document root is not a mapping")

// Codec reads and writes one structured format.
type Codec interface {
	// Name is the short format name used in messages
	Name() string

	// Decode parses a destination document.
	Decode(data []byte) (*keytree.Map, error)

	// DecodeSource parses a template source.
	DecodeSource(data []byte) (*keytree.Map, error)

	// Encode renders a document in canonical form.
	Encode(root *keytree.Map) ([]byte, error)

	// Render returns the bytes written when the destination does not
	// exist yet, or when the source is staged next to a conflict.
	Render(src []byte, root *keytree.Map) ([]byte, error)

	// InvalidReason is the conflict reason for a destination Decode
	// rejected with err.
	InvalidReason(err error) string
}

// ensureNewline returns data with a trailing newline.
func ensureNewline(data []byte) []byte {
	if len(data) > 0 && data[len(data)-1] == '\n' {
		return data
	}
	out := make([]byte, len(data), len(data)+1)
	copy(out, data)
	return append(out, '\n')
}
