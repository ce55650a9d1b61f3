package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/turing/pkg/domain"
)

// Loader implements ports.ProgramLoader using an in-memory map.
type Loader struct {
	mu       sync.RWMutex
	programs map[string]string
}

// NewLoader creates a new Loader with the provided program texts keyed by name.
func NewLoader(programs map[string]string) *Loader {
	data := make(map[string]string, len(programs))
	for k, v := range programs {
		data[k] = v
	}
	return &Loader{programs: data}
}

// AddProgram registers (or replaces) a program.
func (l *Loader) AddProgram(name, source string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.programs[name] = source
}

// GetProgram retrieves the text of a program by name.
func (l *Loader) GetProgram(name string) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	src, ok := l.programs[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrProgramNotFound, name)
	}
	return src, nil
}

// ListPrograms returns all available program names.
func (l *Loader) ListPrograms() ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	keys := make([]string, 0, len(l.programs))
	for k := range l.programs {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
