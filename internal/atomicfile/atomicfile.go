// Package atomicfile replaces files without leaving partial writes behind.
package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile replaces path with data. The parent directory is created if
// missing. A zero perm keeps the mode of an existing file, or 0644.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	if perm == 0 {
		perm = 0o644
		if st, err := os.Stat(path); err == nil {
			perm = st.Mode().Perm()
		}
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()
	if err := fill(tmp, data, perm); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		// Windows refuses to rename over an existing file.
		_ = os.Remove(path)
		if err := os.Rename(name, path); err != nil {
			_ = os.Remove(name)
			return fmt.Errorf("replace %s: %w", path, err)
		}
	}
	return nil
}

// WriteString is WriteFile for text.
func WriteString(path, text string) error {
	return WriteFile(path, []byte(text), 0)
}

func fill(f *os.File, data []byte, perm os.FileMode) error {
	defer f.Close()
	_ = f.Chmod(perm)
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", f.Name(), err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", f.Name(), err)
	}
	return f.Close()
}
