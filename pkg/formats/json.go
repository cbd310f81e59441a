package formats

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/arthur-debert/portcfg/pkg/keytree"
	"github.com/arthur-debert/portcfg/pkg/types"
	"github.com/tidwall/jsonc"
)

// JSON is the codec for JSON documents. Sources may contain comments and
// trailing commas; destinations must be strict JSON, so a user's commented
// file is reported as a conflict instead of losing its comments.
type JSON struct{}

var _ Codec = JSON{}

func (JSON) Name() string { return "json" }

func (JSON) InvalidReason(err error) string {
	if errors.Is(err, ErrNotMapping) {
		return types.ReasonJSONNotObject
	}
	return types.ReasonJSONInvalid
}

func (JSON) Decode(data []byte) (*keytree.Map, error) {
	v, err := decodeJSON(data)
	if err != nil {
		return nil, err
	}
	if !v.IsMapping() {
		return nil, ErrNotMapping
	}
	return v.Map, nil
}

func (j JSON) DecodeSource(data []byte) (*keytree.Map, error) {
	return j.Decode(jsonc.ToJSON(data))
}

// Render always writes the canonical form, so comments in a source never
// reach the project.
func (j JSON) Render(_ []byte, root *keytree.Map) ([]byte, error) {
	return j.Encode(root)
}

// Encode writes two-space indented JSON with a trailing newline.
func (JSON) Encode(root *keytree.Map) ([]byte, error) {
	var compact bytes.Buffer
	if err := writeJSON(&compact, keytree.NewMapping(root)); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// decodeJSON reads exactly one JSON value, keeping object key order.
func decodeJSON(data []byte) (*keytree.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder) (*keytree.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return keytree.NewScalar(tok), nil
	}

	switch delim {
	case '{':
		m := keytree.NewMap()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key is not a string")
			}
			v, err := decodeJSONValue(dec)
			if err != nil {
				return nil, err
			}
			m.Set(key, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return keytree.NewMapping(m), nil
	case '[':
		var items []*keytree.Value
		for dec.More() {
			v, err := decodeJSONValue(dec)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return keytree.NewSequence(items...), nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

func writeJSON(buf *bytes.Buffer, v *keytree.Value) error {
	switch v.Kind {
	case keytree.Mapping:
		buf.WriteByte('{')
		for i, key := range v.Map.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONScalar(buf, key); err != nil {
				return err
			}
			buf.WriteByte(':')
			item, _ := v.Map.Get(key)
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case keytree.Sequence:
		buf.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return writeJSONScalar(buf, v.Scalar)
	}
	return nil
}

// writeJSONScalar encodes a scalar without HTML escaping, so "<" and "&"
// survive a merge unchanged.
func writeJSONScalar(buf *bytes.Buffer, v interface{}) error {
	if n, ok := v.(json.Number); ok {
		buf.WriteString(n.String())
		return nil
	}
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}
