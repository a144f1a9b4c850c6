package corpus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/dealflow/core"
	"gopkg.in/yaml.v3"
)

// document is the wrapped corpus file form: {"signals": [...]}.
type document struct {
	Signals []core.Signal `json:"signals" yaml:"signals"`
}

// ReadFile parses a corpus file. JSON (.json) and YAML (.yaml, .yml) files may
// hold either a bare list of signals or an object with a "signals" list.
func ReadFile(path string) ([]core.Signal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCorpus, err)
	}

	var signals []core.Signal
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		signals, err = decodeJSON(data)
	case ".yaml", ".yml":
		signals, err = decodeYAML(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidCorpus, filepath.Base(path), err)
	}
	return signals, nil
}

// LoadFile reads a corpus file and loads it into the store.
func (s *Store) LoadFile(ctx context.Context, path string) error {
	signals, err := ReadFile(path)
	if err != nil {
		return err
	}
	s.logger.Debug("read corpus file", "path", path, "records", len(signals))
	return s.Load(ctx, signals)
}

func decodeJSON(data []byte) ([]core.Signal, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var doc document
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, err
		}
		return doc.Signals, nil
	}

	var signals []core.Signal
	if err := json.Unmarshal(trimmed, &signals); err != nil {
		return nil, err
	}
	return signals, nil
}

func decodeYAML(data []byte) ([]core.Signal, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	root := node.Content[0]
	if root.Kind == yaml.MappingNode {
		var doc document
		if err := root.Decode(&doc); err != nil {
			return nil, err
		}
		return doc.Signals, nil
	}

	var signals []core.Signal
	if err := root.Decode(&signals); err != nil {
		return nil, err
	}
	return signals, nil
}
