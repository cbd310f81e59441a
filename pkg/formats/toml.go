package formats

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/arthur-debert/portcfg/pkg/keytree"
	"github.com/arthur-debert/portcfg/pkg/types"
	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
)

// TOML is the codec for TOML documents.
type TOML struct{}

var _ Codec = TOML{}

func (TOML) Name() string { return "toml" }

// InvalidReason is always target_toml_invalid; a TOML root is a table.
func (TOML) InvalidReason(error) string { return types.ReasonTOMLInvalid }

// Decode parses data. Values come from go-toml's decoder; key order is
// recovered from its expression parser, which sees keys in file order.
func (TOML) Decode(data []byte) (*keytree.Map, error) {
	var raw map[string]interface{}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	order, err := tomlKeyOrder(data)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}
	return tomlMap(raw, nil, order), nil
}

func (t TOML) DecodeSource(data []byte) (*keytree.Map, error) {
	return t.Decode(data)
}

// Render writes the source verbatim.
func (TOML) Render(src []byte, _ *keytree.Map) ([]byte, error) {
	return ensureNewline(src), nil
}

// Encode emits each table's plain keys before its sub-tables, tables as
// [headers] and sequences of tables as [[headers]].
func (TOML) Encode(root *keytree.Map) ([]byte, error) {
	e := &tomlEmitter{}
	if err := e.table(root, nil); err != nil {
		return nil, err
	}
	out := strings.TrimSpace(strings.Join(e.lines, "\n")) + "\n"
	return []byte(out), nil
}

// orderIndex maps a table path to its keys in first-seen order. Elements
// of arrays of tables share the path of the array with a "[]" suffix.
type orderIndex map[string][]string

func pathKey(path []string) string {
	return strings.Join(path, "\x00")
}

func (o orderIndex) add(path []string, key string) {
	k := pathKey(path)
	for _, existing := range o[k] {
		if existing == key {
			return
		}
	}
	o[k] = append(o[k], key)
}

// addPath records every segment of a dotted key under base.
func (o orderIndex) addPath(base, keys []string) {
	cur := append([]string(nil), base...)
	for _, key := range keys {
		o.add(cur, key)
		cur = append(cur, key)
	}
}

func tomlKeyOrder(data []byte) (orderIndex, error) {
	order := orderIndex{}
	var current []string

	p := unstable.Parser{}
	p.Reset(data)
	for p.NextExpression() {
		expr := p.Expression()
		switch expr.Kind {
		case unstable.Table:
			keys := nodeKeys(expr.Key())
			order.addPath(nil, keys)
			current = keys
		case unstable.ArrayTable:
			keys := nodeKeys(expr.Key())
			order.addPath(nil, keys)
			current = append(keys[:len(keys):len(keys)], "[]")
		case unstable.KeyValue:
			tomlKeyValueOrder(order, current, expr)
		}
	}
	if err := p.Error(); err != nil {
		return nil, err
	}
	return order, nil
}

func tomlKeyValueOrder(order orderIndex, base []string, kv *unstable.Node) {
	keys := nodeKeys(kv.Key())
	order.addPath(base, keys)
	full := append(append([]string(nil), base...), keys...)
	tomlValueOrder(order, full, kv.Value())
}

func tomlValueOrder(order orderIndex, path []string, value *unstable.Node) {
	switch value.Kind {
	case unstable.InlineTable:
		children := value.Children()
		for children.Next() {
			tomlKeyValueOrder(order, path, children.Node())
		}
	case unstable.Array:
		elem := append(append([]string(nil), path...), "[]")
		children := value.Children()
		for children.Next() {
			tomlValueOrder(order, elem, children.Node())
		}
	}
}

func nodeKeys(it unstable.Iterator) []string {
	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Node().Data))
	}
	return keys
}

// tomlMap converts a decoded table into an ordered Map. Keys the parser
// did not report (none are expected) follow in sorted order.
func tomlMap(raw map[string]interface{}, path []string, order orderIndex) *keytree.Map {
	m := keytree.NewMap()
	seen := make(map[string]bool, len(raw))
	for _, key := range order[pathKey(path)] {
		if v, ok := raw[key]; ok {
			m.Set(key, tomlValue(v, append(path[:len(path):len(path)], key), order))
			seen[key] = true
		}
	}
	var rest []string
	for key := range raw {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		m.Set(key, tomlValue(raw[key], append(path[:len(path):len(path)], key), order))
	}
	return m
}

func tomlValue(v interface{}, path []string, order orderIndex) *keytree.Value {
	switch x := v.(type) {
	case map[string]interface{}:
		return keytree.NewMapping(tomlMap(x, path, order))
	case []interface{}:
		elem := append(path[:len(path):len(path)], "[]")
		items := make([]*keytree.Value, len(x))
		for i, item := range x {
			items[i] = tomlValue(item, elem, order)
		}
		return keytree.NewSequence(items...)
	case []map[string]interface{}:
		elem := append(path[:len(path):len(path)], "[]")
		items := make([]*keytree.Value, len(x))
		for i, item := range x {
			items[i] = keytree.NewMapping(tomlMap(item, elem, order))
		}
		return keytree.NewSequence(items...)
	default:
		return keytree.NewScalar(v)
	}
}

type tomlEmitter struct {
	lines []string
}

// table writes m under its header. The header is left out when m only
// holds sub-tables, since those headers define it implicitly.
func (e *tomlEmitter) table(m *keytree.Map, path []string) error {
	if len(path) > 0 && (hasPlainKeys(m) || !hasNested(m)) {
		e.lines = append(e.lines, "["+tomlPath(path)+"]")
	}
	return e.body(m, path)
}

// body writes the plain keys of m, then its sub-tables and arrays of
// tables.
func (e *tomlEmitter) body(m *keytree.Map, path []string) error {
	var nested []string
	for _, key := range m.Keys() {
		v, _ := m.Get(key)
		if isNested(v) {
			nested = append(nested, key)
			continue
		}
		s, err := tomlInline(v)
		if err != nil {
			return fmt.Errorf("key %s: %w", tomlPath(append(path[:len(path):len(path)], key)), err)
		}
		e.lines = append(e.lines, tomlKey(key)+" = "+s)
	}

	for _, key := range nested {
		v, _ := m.Get(key)
		sub := append(path[:len(path):len(path)], key)
		if v.IsMapping() {
			e.separate()
			if err := e.table(v.Map, sub); err != nil {
				return err
			}
			continue
		}
		for _, item := range v.Items {
			e.separate()
			e.lines = append(e.lines, "[["+tomlPath(sub)+"]]")
			if err := e.body(item.Map, sub); err != nil {
				return err
			}
		}
	}
	return nil
}

// separate starts a new section with a blank line.
func (e *tomlEmitter) separate() {
	if n := len(e.lines); n > 0 && e.lines[n-1] != "" {
		e.lines = append(e.lines, "")
	}
}

func isNested(v *keytree.Value) bool {
	return v.IsMapping() || isTableArray(v)
}

func hasPlainKeys(m *keytree.Map) bool {
	for _, key := range m.Keys() {
		if v, _ := m.Get(key); !isNested(v) {
			return true
		}
	}
	return false
}

func hasNested(m *keytree.Map) bool {
	for _, key := range m.Keys() {
		if v, _ := m.Get(key); isNested(v) {
			return true
		}
	}
	return false
}

// isTableArray reports whether v is a non-empty sequence of mappings.
func isTableArray(v *keytree.Value) bool {
	if v.Kind != keytree.Sequence || len(v.Items) == 0 {
		return false
	}
	for _, item := range v.Items {
		if !item.IsMapping() {
			return false
		}
	}
	return true
}

func tomlInline(v *keytree.Value) (string, error) {
	switch v.Kind {
	case keytree.Mapping:
		parts := make([]string, 0, v.Map.Len())
		for _, key := range v.Map.Keys() {
			item, _ := v.Map.Get(key)
			s, err := tomlInline(item)
			if err != nil {
				return "", err
			}
			parts = append(parts, tomlKey(key)+" = "+s)
		}
		if len(parts) == 0 {
			return "{}", nil
		}
		return "{ " + strings.Join(parts, ", ") + " }", nil
	case keytree.Sequence:
		parts := make([]string, 0, len(v.Items))
		for _, item := range v.Items {
			s, err := tomlInline(item)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	default:
		return tomlScalar(v.Scalar)
	}
}

func tomlScalar(v interface{}) (string, error) {
	switch x := v.(type) {
	case string:
		return tomlString(x), nil
	case bool:
		return strconv.FormatBool(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case int:
		return strconv.Itoa(x), nil
	case float64:
		return tomlFloat(x), nil
	case time.Time:
		return x.Format(time.RFC3339Nano), nil
	case toml.LocalDate, toml.LocalTime, toml.LocalDateTime:
		return fmt.Sprint(x), nil
	default:
		return "", fmt.Errorf("unsupported TOML value type %T", v)
	}
}

func tomlFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

var bareKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func tomlKey(key string) string {
	if bareKey.MatchString(key) {
		return key
	}
	return tomlString(key)
}

func tomlPath(path []string) string {
	parts := make([]string, len(path))
	for i, key := range path {
		parts[i] = tomlKey(key)
	}
	return strings.Join(parts, ".")
}

// tomlString writes a basic string.
func tomlString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\f':
			b.WriteString(`\f`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
