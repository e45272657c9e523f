package inventory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"playbackbox/internal/perrors"
)

const indexFileName = "index.json"

// Load reads index.json from dir and deserializes it.
func Load(dir string) (*Inventory, error) {
	path := filepath.Join(dir, indexFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("load inventory %s: %w", path, perrors.ErrMissingInventory)
		}
		return nil, fmt.Errorf("load inventory %s: %w", path, err)
	}

	var inv Inventory
	if err := json.Unmarshal(b, &inv); err != nil {
		return nil, fmt.Errorf("parse inventory %s: %w", path, perrors.ErrMalformedInventory)
	}

	for _, res := range inv.Resources {
		if res.DownloadEndMs != nil && (*res.DownloadEndMs < res.TTFBMs || res.TTFBMs < 0) {
			return nil, fmt.Errorf("inventory %s: resource %s %s violates downloadEndMs>=ttfbMs>=0: %w",
				path, res.Method, res.URL, perrors.ErrMalformedInventory)
		}
	}

	return &inv, nil
}

// Save serializes inv with stable key order and two-space indentation,
// writing atomically and fsyncing before returning.
func Save(dir string, inv *Inventory) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create inventory dir %s: %w", dir, err)
	}

	b, err := json.MarshalIndent(inv, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal inventory: %w", err)
	}

	path := filepath.Join(dir, indexFileName)
	tmp := path + ".tmp"

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	if _, err := f.Write(b); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("fsync %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s to %s: %w", tmp, path, err)
	}
	return nil
}

// ReadContent reads a body file from the content tree.
func ReadContent(dir, relPath string) ([]byte, error) {
	full := filepath.Join(dir, "contents", relPath)
	b, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("read content %s: %w", full, perrors.ErrFileIO)
	}
	return b, nil
}

// WriteContent writes a body file into the content tree, creating parent
// directories as needed and fsyncing so the write is visible to a
// sibling process that reads it after a graceful shutdown.
func WriteContent(dir, relPath string, data []byte) error {
	full := filepath.Join(dir, "contents", relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create content dir for %s: %w", full, perrors.ErrFileIO)
	}

	f, err := os.OpenFile(full, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", full, perrors.ErrFileIO)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", full, perrors.ErrFileIO)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("fsync %s: %w", full, perrors.ErrFileIO)
	}
	return f.Close()
}
