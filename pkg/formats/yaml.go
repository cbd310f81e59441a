package formats

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/arthur-debert/portcfg/pkg/keytree"
	"github.com/arthur-debert/portcfg/pkg/types"
	"gopkg.in/yaml.v3"
)

// YAML is the codec for YAML documents. Scalars keep their original node,
// so quoting style and tags survive a merge.
type YAML struct{}

var _ Codec = YAML{}

func (YAML) Name() string { return "yaml" }

func (YAML) InvalidReason(err error) string {
	if errors.Is(err, ErrNotMapping) {
		return types.ReasonYAMLNotMapping
	}
	return types.ReasonYAMLInvalid
}

func (YAML) Decode(data []byte) (*keytree.Map, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	// An empty document is an empty mapping.
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return keytree.NewMap(), nil
	}
	v, err := fromYAMLNode(doc.Content[0])
	if err != nil {
		return nil, err
	}
	if !v.IsMapping() {
		return nil, ErrNotMapping
	}
	return v.Map, nil
}

func (y YAML) DecodeSource(data []byte) (*keytree.Map, error) {
	return y.Decode(data)
}

// Render writes the source verbatim.
func (YAML) Render(src []byte, _ *keytree.Map) ([]byte, error) {
	return ensureNewline(src), nil
}

// Encode writes block-style YAML indented by two spaces.
func (YAML) Encode(root *keytree.Map) ([]byte, error) {
	node := toYAMLNode(keytree.NewMapping(root))
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fromYAMLNode(n *yaml.Node) (*keytree.Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return keytree.NewMapping(keytree.NewMap()), nil
		}
		return fromYAMLNode(n.Content[0])
	case yaml.AliasNode:
		return fromYAMLNode(n.Alias)
	case yaml.MappingNode:
		m := keytree.NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valueNode := n.Content[i], n.Content[i+1]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: only scalar keys are supported", keyNode.Line)
			}
			// Merge keys (<<) are kept as plain entries.
			v, err := fromYAMLNode(valueNode)
			if err != nil {
				return nil, err
			}
			m.Set(keyNode.Value, v)
		}
		return keytree.NewMapping(m), nil
	case yaml.SequenceNode:
		items := make([]*keytree.Value, 0, len(n.Content))
		for _, child := range n.Content {
			v, err := fromYAMLNode(child)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return keytree.NewSequence(items...), nil
	case yaml.ScalarNode:
		scalar := *n
		scalar.HeadComment, scalar.LineComment, scalar.FootComment = "", "", ""
		scalar.Anchor = ""
		return keytree.NewScalar(&scalar), nil
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
	}
}

func toYAMLNode(v *keytree.Value) *yaml.Node {
	switch v.Kind {
	case keytree.Mapping:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, key := range v.Map.Keys() {
			item, _ := v.Map.Get(key)
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
				toYAMLNode(item))
		}
		return n
	case keytree.Sequence:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.Items {
			n.Content = append(n.Content, toYAMLNode(item))
		}
		return n
	default:
		if node, ok := v.Scalar.(*yaml.Node); ok {
			return node
		}
		n := &yaml.Node{}
		if err := n.Encode(v.Scalar); err != nil {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
		}
		return n
	}
}
