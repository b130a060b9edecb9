package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sophialabs/sigtrace/internal/domain/signature"
)

var _ signature.Repository = (*YAMLRepository)(nil)

// YAMLRepository loads signature definitions from YAML files in a directory
// tree. A file may hold a single definition or a sequence of them.
type YAMLRepository struct {
	rootDir string
}

// NewYAMLRepository creates a repository rooted at rootDir.
func NewYAMLRepository(rootDir string) (*YAMLRepository, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve rules directory: %w", err)
	}
	return &YAMLRepository{rootDir: absRoot}, nil
}

// LoadAll walks the rules directory for .yaml files and returns parsed
// definitions.
func (r *YAMLRepository) LoadAll(_ context.Context) ([]*signature.Definition, error) {
	var defs []*signature.Definition

	err := filepath.WalkDir(r.rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		loaded, err := r.loadFile(path)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		defs = append(defs, loaded...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk rules directory: %w", err)
	}

	return defs, nil
}

func (r *YAMLRepository) loadFile(path string) ([]*signature.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var rootNode yaml.Node
	if err := yaml.Unmarshal(data, &rootNode); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Support both a single definition and a list of definitions.
	if rootNode.Kind == yaml.DocumentNode && len(rootNode.Content) > 0 {
		content := rootNode.Content[0]
		if content.Kind == yaml.SequenceNode {
			defs := make([]*signature.Definition, 0, len(content.Content))
			for _, item := range content.Content {
				def, err := decodeDefinitionNode(item)
				if err != nil {
					return nil, err
				}
				def.SourceFile = path
				defs = append(defs, def)
			}
			return defs, nil
		}

		def, err := decodeDefinitionNode(content)
		if err != nil {
			return nil, err
		}
		def.SourceFile = path
		return []*signature.Definition{def}, nil
	}

	return nil, fmt.Errorf("unexpected YAML structure in %s", path)
}

func decodeDefinitionNode(node *yaml.Node) (*signature.Definition, error) {
	var ys yamlSignature
	if err := node.Decode(&ys); err != nil {
		return nil, fmt.Errorf("failed to decode signature definition: %w", err)
	}
	return toDefinition(&ys), nil
}

func toDefinition(ys *yamlSignature) *signature.Definition {
	def := &signature.Definition{
		Name:        ys.Name,
		Description: ys.Description,
		Severity:    ys.Severity,
		Categories:  ys.Categories,
		Families:    ys.Families,
		Authors:     ys.Authors,
		References:  ys.References,
		Enabled:     true,
		Alert:       ys.Alert,
		MinVersion:  ys.Minimum,
		MaxVersion:  ys.Maximum,
		Detect:      toDetectClause(&ys.Detect),
	}
	if ys.Enabled != nil {
		def.Enabled = *ys.Enabled
	}
	return def
}

func toDetectClause(yd *yamlDetect) signature.DetectClause {
	dc := signature.DetectClause{
		File:   yd.File,
		Key:    yd.Key,
		Mutex:  yd.Mutex,
		IP:     yd.IP,
		Domain: yd.Domain,
		URL:    yd.URL,
	}

	for _, child := range yd.All {
		dc.All = append(dc.All, toDetectClause(&child))
	}
	for _, child := range yd.Any {
		dc.Any = append(dc.Any, toDetectClause(&child))
	}
	if yd.Not != nil {
		not := toDetectClause(yd.Not)
		dc.Not = &not
	}

	if yd.API != nil {
		dc.API = &signature.APICheck{Name: yd.API.Name, Process: yd.API.Process}
	}
	if yd.Argument != nil {
		dc.Argument = &signature.ArgumentCheck{
			Value:    yd.Argument.Value,
			Name:     yd.Argument.Name,
			API:      yd.Argument.API,
			Category: yd.Argument.Category,
			Process:  yd.Argument.Process,
		}
	}

	return dc
}
