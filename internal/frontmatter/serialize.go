package frontmatter

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// SerializeYAML encodes meta as an undelimited YAML mapping with sorted
// keys. Every value is written as a string so dates and numbers survive a
// round trip unchanged; repeated keys become sequences.
func SerializeYAML(meta Metadata, style Style) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range meta.Keys() {
		values := meta[key]
		if len(values) == 0 {
			continue
		}
		root.Content = append(root.Content, strNode(key), valueNode(values))
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	if nl := style.nl(); nl != "\n" {
		return bytes.ReplaceAll(buf.Bytes(), []byte("\n"), []byte(nl)), nil
	}
	return buf.Bytes(), nil
}

func strNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func valueNode(values []string) *yaml.Node {
	if len(values) == 1 {
		return strNode(values[0])
	}
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, v := range values {
		seq.Content = append(seq.Content, strNode(v))
	}
	return seq
}
