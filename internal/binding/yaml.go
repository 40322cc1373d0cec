package binding

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Document is the persisted form of a Config: the variant's fields plus a
// "type" discriminant.
type Document struct {
	Config Config
}

func (d Document) MarshalYAML() (interface{}, error) {
	if d.Config == nil {
		return nil, fmt.Errorf("binding: empty document")
	}
	var node yaml.Node
	if err := node.Encode(d.Config); err != nil {
		return nil, err
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("binding: type %d did not encode to a mapping", d.Config.Type())
	}
	tag := []*yaml.Node{
		{Kind: yaml.ScalarNode, Tag: "!!str", Value: "type"},
		{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(int(d.Config.Type()))},
	}
	node.Content = append(tag, node.Content...)
	return &node, nil
}

func (d *Document) UnmarshalYAML(value *yaml.Node) error {
	var head struct {
		Type Type `yaml:"type"`
	}
	if err := value.Decode(&head); err != nil {
		return err
	}
	c, err := New(head.Type)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	if err := value.Decode(c); err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	d.Config = c
	return nil
}

// Documents wraps configs for encoding.
func Documents(configs []Config) []Document {
	out := make([]Document, len(configs))
	for i, c := range configs {
		out[i] = Document{Config: c}
	}
	return out
}

// Configs unwraps decoded documents.
func Configs(docs []Document) []Config {
	out := make([]Config, 0, len(docs))
	for _, d := range docs {
		if d.Config != nil {
			out = append(out, d.Config)
		}
	}
	return out
}
