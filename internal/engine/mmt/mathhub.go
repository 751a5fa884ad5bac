package mmt

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrArchiveNotFound is returned for archive ids MathHub does not know.
var ErrArchiveNotFound = errors.New("archive not found")

const (
	manifestDir  = "META-INF"
	manifestFile = "MANIFEST.MF"
	sourceDir    = "source"
)

// MathHub is a directory tree of MMT archives. Archives are directories
// containing META-INF/MANIFEST.MF with an "id:" entry.
type MathHub struct {
	root     string
	archives map[string]string // id -> absolute directory
}

// OpenMathHub scans root for archives.
func OpenMathHub(root string) (*MathHub, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("open mathhub: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open mathhub: %s is not a directory", root)
	}
	mh := &MathHub{root: root, archives: make(map[string]string)}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped rather than failing the scan.
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return err
		}
		if !d.IsDir() || path == root {
			return nil
		}
		mf := filepath.Join(path, manifestDir, manifestFile)
		if _, statErr := os.Stat(mf); statErr != nil {
			return nil
		}
		if id, readErr := readManifestID(mf); readErr == nil && id != "" {
			mh.archives[id] = path
		}
		// Archives do not nest.
		return filepath.SkipDir
	})
	if err != nil {
		return nil, fmt.Errorf("scan mathhub: %w", err)
	}
	return mh, nil
}

// Manifest is the subset of MANIFEST.MF entries GLIF reads and writes.
type Manifest struct {
	ID            string `yaml:"id"`
	NarrationBase string `yaml:"narration-base,omitempty"`
}

// readManifestID extracts the archive id. Manifests are "key: value" lines,
// which mostly parse as YAML; lines YAML rejects fall back to a line scan.
func readManifestID(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err == nil && m.ID != "" {
		return strings.TrimSpace(m.ID), nil
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "id: ") {
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				return fields[1], nil
			}
		}
	}
	return "", nil
}

// Root returns the MathHub directory.
func (m *MathHub) Root() string {
	return m.root
}

// Archives returns all archive ids, sorted.
func (m *MathHub) Archives() []string {
	ids := make([]string, 0, len(m.archives))
	for id := range m.archives {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ArchivePath returns the directory of an archive.
func (m *MathHub) ArchivePath(id string) (string, bool) {
	p, ok := m.archives[id]
	return p, ok
}

// HasArchive reports whether id is a known archive.
func (m *MathHub) HasArchive(id string) bool {
	_, ok := m.archives[id]
	return ok
}

// MakeArchive creates archive id (e.g. "tmpGLIF/default") with a source
// directory and a manifest, and returns its path.
func (m *MathHub) MakeArchive(id string) (string, error) {
	if p, ok := m.archives[id]; ok {
		return p, fmt.Errorf("archive %s existed already", id)
	}
	path := filepath.Join(m.root, filepath.FromSlash(id))
	if err := os.MkdirAll(filepath.Join(path, sourceDir), 0o755); err != nil {
		return "", fmt.Errorf("create archive %s: %w", id, err)
	}
	mfDir := filepath.Join(path, manifestDir)
	if _, err := os.Stat(mfDir); err == nil {
		return "", fmt.Errorf("%s already exists", mfDir)
	}
	if err := os.Mkdir(mfDir, 0o755); err != nil {
		return "", fmt.Errorf("create archive %s: %w", id, err)
	}
	data, err := yaml.Marshal(Manifest{ID: id, NarrationBase: "http://mathhub.info/" + id})
	if err != nil {
		return "", fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(mfDir, manifestFile), data, 0o644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	m.archives[id] = path
	return path, nil
}

// SourceDir returns the source directory of an archive, optionally below subdir.
func (m *MathHub) SourceDir(id, subdir string) (string, error) {
	p, ok := m.archives[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrArchiveNotFound, id)
	}
	if subdir == "" {
		return filepath.Join(p, sourceDir), nil
	}
	return filepath.Join(p, sourceDir, filepath.FromSlash(subdir)), nil
}

// SubdirExists reports whether the archive has source/<subdir>.
func (m *MathHub) SubdirExists(id, subdir string) bool {
	dir, err := m.SourceDir(id, subdir)
	if err != nil {
		return false
	}
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

// MakeSubdir creates source/<subdir> in an existing archive.
func (m *MathHub) MakeSubdir(id, subdir string) (string, error) {
	dir, err := m.SourceDir(id, subdir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s in archive %s: %w", subdir, id, err)
	}
	return dir, nil
}

// FilePath resolves a file name inside an archive's source tree.
func (m *MathHub) FilePath(id, subdir, file string) (string, error) {
	dir, err := m.SourceDir(id, subdir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, file), nil
}
