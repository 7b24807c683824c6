package queryobject

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

// maxNestingDepth bounds how deeply decoded documents may nest.
const maxNestingDepth = 64

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// errAlias is returned for documents that use YAML anchors and aliases.
var errAlias = errors.New("YAML aliases are not supported")

// Decode parses YAML or JSON text into a Node.
// It returns nil with no error when the text holds no document or a bare null.
func Decode(text []byte) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(text, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	n, err := fromYAML(&doc, 0)
	if err != nil {
		return nil, err
	}
	if n.IsNull() {
		return nil, nil
	}
	return n, nil
}

func fromYAML(y *yaml.Node, depth int) (*Node, error) {
	if depth > maxNestingDepth {
		return nil, fmt.Errorf("document nests deeper than %d levels", maxNestingDepth)
	}

	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return Null(), nil
		}
		return fromYAML(y.Content[0], depth)

	case yaml.AliasNode:
		return nil, fmt.Errorf("line %d: %w", y.Line, errAlias)

	case yaml.SequenceNode:
		items := make([]*Node, len(y.Content))
		for i, c := range y.Content {
			item, err := fromYAML(c, depth+1)
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		return &Node{kind: KindSequence, items: items}, nil

	case yaml.MappingNode:
		b := newMappingBuilder(len(y.Content) / 2)
		for i := 0; i+1 < len(y.Content); i += 2 {
			k := y.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be plain names", k.Line)
			}
			v, err := fromYAML(y.Content[i+1], depth+1)
			if err != nil {
				return nil, err
			}
			b.set(k.Value, v)
		}
		return b.node(), nil

	case yaml.ScalarNode:
		return scalarFromYAML(y)
	}

	return nil, fmt.Errorf("line %d: unsupported YAML node", y.Line)
}

func scalarFromYAML(y *yaml.Node) (*Node, error) {
	switch y.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := y.Decode(&b); err != nil {
			return nil, err
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := y.Decode(&i); err != nil {
			return nil, err
		}
		return Int(i), nil
	case "!!float":
		var f float64
		if err := y.Decode(&f); err != nil {
			return nil, err
		}
		return Float(f), nil
	default:
		// !!str, !!timestamp, !!binary and custom tags keep their text.
		return String(y.Value), nil
	}
}

// MarshalYAML renders the node as an ordered YAML node.
func (n *Node) MarshalYAML() (interface{}, error) {
	return n.toYAML(), nil
}

func (n *Node) toYAML() *yaml.Node {
	if n == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
	switch n.kind {
	case KindInclude:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: "1"}
	case KindSequence:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range n.items {
			out.Content = append(out.Content, item.toYAML())
		}
		return out
	case KindMapping:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range n.keys {
			out.Content = append(out.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				n.fields[k].toYAML(),
			)
		}
		return out
	}

	switch v := n.value.(type) {
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v, 10)}
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: yamlFloat(v)}
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v)}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

// MarshalJSON renders the node as JSON, keeping mapping key order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) writeJSON(buf *bytes.Buffer) error {
	if n == nil {
		buf.WriteString("null")
		return nil
	}
	switch n.kind {
	case KindInclude:
		buf.WriteByte('1')
	case KindSequence:
		buf.WriteByte('[')
		for i, item := range n.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMapping:
		buf.WriteByte('{')
		for i, k := range n.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := n.fields[k].writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		b, err := json.Marshal(n.value)
		if err != nil {
			return fmt.Errorf("cannot encode %s as JSON: %w", n.describe(), err)
		}
		buf.Write(b)
	}
	return nil
}

// yamlFloat formats f so that it resolves back to a float, never an integer.
func yamlFloat(f float64) string {
	s := formatFloat(f)
	if strings.ContainsAny(s, ".eEn") {
		return s
	}
	return s + ".0"
}
