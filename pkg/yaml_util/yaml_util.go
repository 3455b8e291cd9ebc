package yaml_util

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type CheckMode bool

const (
	Lenient = CheckMode(false)
	Strict  = CheckMode(true)
)

// SetValue upserts the value in the content yaml at a given dotted path. For example, setting `notices.url` to
// `https://example.com/notices.json` is equivalent to upserting the following yaml:
//
//	notices:
//	    url: https://example.com/notices.json
//
// This method will make a best effort to preserve comments, as per the `yaml` package's abilities. You may overwrite
// scalars, but you may not overwrite a non-scalar. You may also specify a path that doesn't exist in the source yaml,
// as long as none of the paths correspond to existing elements other than yaml mappings.
func SetValue(content []byte, optionPath string, optionValue string) ([]byte, error) {
	top, parent, key, err := mappingFor(content, optionPath)
	if err != nil {
		return nil, err
	}
	if currValue := findChild(parent.Content, key); currValue != nil {
		if currValue.Kind != yaml.ScalarNode {
			return nil, errors.Errorf(`"%s" cannot be a scalar`, optionPath)
		}
		currValue.Tag = "" // if the existing type isn't a string, we want to reset it
		currValue.Style = 0
		currValue.Value = optionValue
	} else {
		parent.Content = append(parent.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key},
			&yaml.Node{Kind: yaml.ScalarNode, Value: optionValue},
		)
	}
	return yaml.Marshal(top)
}

// AppendToSequence adds value to the sequence at the dotted path, creating the sequence if needed. A value that is
// already in the sequence is not added again. An empty (null) value at the path is replaced by a new sequence.
//
//	notices:
//	    acknowledged: [16603]
//
// appending `17061` at `notices.acknowledged` gives `[16603, 17061]`, keeping the original's flow style and comments.
func AppendToSequence(content []byte, optionPath string, value string) ([]byte, error) {
	top, parent, key, err := mappingFor(content, optionPath)
	if err != nil {
		return nil, err
	}
	item := &yaml.Node{Kind: yaml.ScalarNode, Value: value}

	seq := findChild(parent.Content, key)
	switch {
	case seq == nil:
		parent.Content = append(parent.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key},
			&yaml.Node{Kind: yaml.SequenceNode, Content: []*yaml.Node{item}},
		)

	case seq.Kind == yaml.ScalarNode && (seq.Tag == "!!null" || seq.Value == ""):
		*seq = yaml.Node{
			Kind:        yaml.SequenceNode,
			Content:     []*yaml.Node{item},
			HeadComment: seq.HeadComment,
			LineComment: seq.LineComment,
			FootComment: seq.FootComment,
		}

	case seq.Kind != yaml.SequenceNode:
		return nil, errors.Errorf(`"%s" is not a list`, optionPath)

	default:
		for _, existing := range seq.Content {
			if existing.Kind == yaml.ScalarNode && existing.Value == value {
				return yaml.Marshal(top)
			}
		}
		seq.Content = append(seq.Content, item)
	}
	return yaml.Marshal(top)
}

// mappingFor parses content and walks to the mapping that holds the last segment of optionPath, creating any missing
// intermediate mappings. It returns the top node (for marshalling back), that mapping, and the last segment.
func mappingFor(content []byte, optionPath string) (top *yaml.Node, parent *yaml.Node, key string, err error) {
	var tree yaml.Node
	if err := yaml.Unmarshal(content, &tree); err != nil {
		return nil, nil, "", err
	}

	segments := strings.Split(optionPath, ".")
	if len(tree.Content) == 0 {
		top = &yaml.Node{Kind: yaml.MappingNode}
	} else {
		top = tree.Content[0] // the tree's root is a DocumentNode; we assume one document
	}
	parent = top
	for _, segment := range segments[:len(segments)-1] {
		if parent.Kind != yaml.MappingNode {
			return nil, nil, "", errors.Errorf(`can't set the path "%s"`, optionPath)
		}
		if child := findChild(parent.Content, segment); child != nil {
			parent = child
			continue
		}
		newSubMap := &yaml.Node{Kind: yaml.MappingNode}
		parent.Content = append(parent.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: segment},
			newSubMap,
		)
		parent = newSubMap
	}
	if parent.Kind != yaml.MappingNode {
		return nil, nil, "", errors.Errorf(`can't set the path "%s"`, optionPath)
	}
	return top, parent, segments[len(segments)-1], nil
}

// CheckValid validates that the given yaml actually represents the type provided, and returns a non-nil error
// describing the problem if it doesn't. You need to explicitly provide the type to be checked:
//
//	CheckValid[options.Options](contents, yaml_util.Strict)
//
// The mode governs whether the check will allow unknown fields.
func CheckValid[T any](content []byte, mode CheckMode) error {
	if strings.TrimSpace(string(content)) == "" {
		// the decoder will fail on this (EOF), but we want to consider it valid yaml
		return nil
	}
	var ignored T
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(bool(mode))
	return decoder.Decode(&ignored)
}

// YamlErrors returns the yaml.TypeError errors if the given err is a TypeError; otherwise, it just returns a
// single-element array of the given error's string (disregarding any wrapped errors).
func YamlErrors(err error) []string {
	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		return typeErr.Errors
	}
	return []string{err.Error()}
}

func findChild(within []*yaml.Node, named string) *yaml.Node {
	for i := 0; i+1 < len(within); i += 2 {
		node := within[i]
		if node.Kind == yaml.ScalarNode && node.Value == named {
			return within[i+1]
		}
	}
	return nil
}
