package todo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// FileSource reads the to-do list from a JSON array file on disk.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Load(_ context.Context) ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
		}
		return nil, fmt.Errorf("todo: read %s: %w", s.path, err)
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("todo: decode %s: %w", s.path, err)
	}
	return items, nil
}
