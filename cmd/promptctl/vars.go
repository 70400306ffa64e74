package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/lueurxax/tolgee-ai/internal/core/prompt"
)

// loadVariables reads a YAML document into a variable tree. Mappings become
// groups in declared order, sequences become groups keyed by index and
// scalars become leaves. The built-in fragment group replaces any "fragment"
// entry of the file.
func loadVariables(path string) (*prompt.Variable, error) {
	root := prompt.Group("")

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read variables: %w", err)
		}

		root, err = parseVariables(data)
		if err != nil {
			return nil, err
		}
	}

	return root.WithProp(prompt.FragmentGroup()), nil
}

func parseVariables(data []byte) (*prompt.Variable, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode variables: %w", err)
	}

	if len(doc.Content) == 0 {
		return prompt.Group(""), nil
	}

	node := doc.Content[0]
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("variables must be a mapping, got line %d", node.Line)
	}

	return variableFromNode("", node)
}

func variableFromNode(name string, node *yaml.Node) (*prompt.Variable, error) {
	switch node.Kind {
	case yaml.AliasNode:
		return variableFromNode(name, node.Alias)
	case yaml.MappingNode:
		props := make([]*prompt.Variable, 0, len(node.Content)/2)

		for i := 0; i+1 < len(node.Content); i += 2 {
			child, err := variableFromNode(node.Content[i].Value, node.Content[i+1])
			if err != nil {
				return nil, err
			}

			props = append(props, child)
		}

		return prompt.Group(name, props...), nil
	case yaml.SequenceNode:
		props := make([]*prompt.Variable, 0, len(node.Content))

		for i, item := range node.Content {
			child, err := variableFromNode(strconv.Itoa(i), item)
			if err != nil {
				return nil, err
			}

			props = append(props, child)
		}

		return prompt.Group(name, props...), nil
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			return prompt.OptionalVariable(name, nil), nil
		}

		return prompt.NewVariable(name, node.Value), nil
	default:
		return nil, fmt.Errorf("unsupported value for %q at line %d", name, node.Line)
	}
}
