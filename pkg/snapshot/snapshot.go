package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrNotFound = errors.New("snapshot not found")

// Store keeps the raw API items of a run under a name so a later run can
// skip the network.
type Store interface {
	Save(ctx context.Context, name string, items []json.RawMessage) error
	Load(ctx context.Context, name string) ([]json.RawMessage, error)
}

// Put marshals items and saves them under name.
func Put[T any](ctx context.Context, s Store, name string, items []T) error {
	raw := make([]json.RawMessage, len(items))
	for i, item := range items {
		b, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshalling item %d: %w", i, err)
		}
		raw[i] = b
	}
	return s.Save(ctx, name, raw)
}

// Get loads the items saved under name.
func Get[T any](ctx context.Context, s Store, name string) ([]T, error) {
	raw, err := s.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	items := make([]T, len(raw))
	for i, r := range raw {
		if err := json.Unmarshal(r, &items[i]); err != nil {
			return nil, fmt.Errorf("snapshot %s item %d: %w", name, i, err)
		}
	}
	return items, nil
}

// JSONStore writes one indented JSON array per name in Dir.
type JSONStore struct {
	Dir string
}

func (s JSONStore) Path(name string) string {
	return filepath.Join(s.Dir, name+".json")
}

func (s JSONStore) Save(_ context.Context, name string, items []json.RawMessage) error {
	if items == nil {
		items = []json.RawMessage{}
	}
	compact, err := json.Marshal(items)
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')

	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(s.Path(name), out.Bytes(), 0644)
}

func (s JSONStore) Load(_ context.Context, name string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(s.Path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.Path(name))
	}
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.Path(name), err)
	}
	return items, nil
}
