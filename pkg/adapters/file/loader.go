package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/aretw0/turing/pkg/domain"
)

// Extensions lists the file extensions recognized as programs, in lookup order.
var Extensions = []string{".tm", ".txt"}

// Loader implements ports.ProgramLoader over a filesystem of program files.
// A program named "adder" is read from "adder.tm" or "adder.txt".
type Loader struct {
	fsys fs.FS
}

// NewLoader creates a loader reading programs from the given directory.
func NewLoader(dir string) *Loader {
	return &Loader{fsys: os.DirFS(dir)}
}

// NewFSLoader creates a loader over any fs.FS (e.g. embedded programs).
func NewFSLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// GetProgram reads the program text by name. A name that already carries a known
// extension is read as is.
func (l *Loader) GetProgram(name string) (string, error) {
	if name == "" || !fs.ValidPath(name) {
		return "", fmt.Errorf("%w: invalid name %q", domain.ErrProgramNotFound, name)
	}

	for _, candidate := range candidates(name) {
		data, err := fs.ReadFile(l.fsys, candidate)
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to read program %s: %w", candidate, err)
		}
	}
	return "", fmt.Errorf("%w: %s", domain.ErrProgramNotFound, name)
}

// ListPrograms returns the names (without extension) of the program files at the root.
func (l *Loader) ListPrograms() ([]string, error) {
	entries, err := fs.ReadDir(l.fsys, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}

	seen := make(map[string]bool)
	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := path.Ext(entry.Name())
		if !isProgramExt(ext) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ext)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func candidates(name string) []string {
	if isProgramExt(path.Ext(name)) {
		return []string{name}
	}
	out := make([]string, 0, len(Extensions))
	for _, ext := range Extensions {
		out = append(out, name+ext)
	}
	return out
}

func isProgramExt(ext string) bool {
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}
