package categorizer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// YAMLStore keeps the vocabulary as an ordered YAML mapping of merchant to
// category.
type YAMLStore struct {
	Path string
}

// NewYAMLStore returns a store backed by the file at path. The file is
// created on the first Save.
func NewYAMLStore(path string) *YAMLStore {
	return &YAMLStore{Path: path}
}

// Load reads the mapping in file order. A missing file is an empty
// vocabulary.
func (s *YAMLStore) Load(ctx context.Context) ([]Entry, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read vocabulary file: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("could not parse vocabulary file: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	// A mapping node keeps key order, which decides tie-breaks.
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("vocabulary file %s: expected a mapping of merchant to category", s.Path)
	}
	entries := make([]Entry, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		entries = append(entries, Entry{Merchant: root.Content[i].Value, Category: root.Content[i+1].Value})
	}
	return entries, nil
}

// Save writes to a temporary file and renames it over the old one.
func (s *YAMLStore) Save(ctx context.Context, entries []Entry) error {
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range entries {
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Merchant},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Category},
		)
	}
	data, err := yaml.Marshal(root)
	if err != nil {
		return fmt.Errorf("failed to encode vocabulary: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create vocabulary directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".vocabulary-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write vocabulary: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write vocabulary: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("failed to replace vocabulary file: %w", err)
	}
	return nil
}
