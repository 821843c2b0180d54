// Package storage keeps hookproxy's JSON data files under ~/.hookproxy/.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DirEnv overrides the data directory.
const DirEnv = "HOOKPROXY_HOME"

// Dir returns the hookproxy data directory, creating it if needed.
// It is $HOOKPROXY_HOME when set, else ~/.hookproxy/. The run history holds
// repository paths and hook errors, so the directory is private.
func Dir() (string, error) {
	dir := os.Getenv(DirEnv)
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".hookproxy")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// SaveJSON writes data as indented JSON to path, replacing it atomically.
// The temp file lives next to path so the rename never crosses devices, and
// is removed again when anything fails.
func SaveJSON(path string, data any) (err error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if _, err = f.Write(append(b, '\n')); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// LoadJSON decodes the JSON file at path into dest. A missing file returns
// an error matching fs.ErrNotExist; a file that does not decode returns an
// error naming it.
func LoadJSON(path string, dest any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
