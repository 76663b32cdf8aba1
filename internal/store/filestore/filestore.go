// Package filestore implements the store interfaces on flat JSON files, one
// file per collection. Every operation is a mutex-serialized
// load-modify-persist, which makes the cart merge atomic within the process.
package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"storefront/internal/store"
)

// New builds the full store set rooted at dataDir, creating the directory and
// empty collection files as needed.
func New(dataDir string) (*store.Stores, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir %q: %w", dataDir, err)
	}

	products, err := NewProductStore(filepath.Join(dataDir, "products.json"))
	if err != nil {
		return nil, err
	}
	carts, err := NewCartStore(filepath.Join(dataDir, "carts.json"))
	if err != nil {
		return nil, err
	}
	users, err := NewUserStore(filepath.Join(dataDir, "users.json"))
	if err != nil {
		return nil, err
	}

	return &store.Stores{Products: products, Carts: carts, Users: users}, nil
}

// ensureFile seeds path with an empty JSON array if it does not exist yet.
func ensureFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %q: %w", path, err)
	}
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		return fmt.Errorf("failed to initialize %q: %w", path, err)
	}
	return nil
}

func load(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %q: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %q: %w", path, err)
	}
	return nil
}

func save(path string, docs any) error {
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return nil
}
