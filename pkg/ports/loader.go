package ports

// ProgramLoader defines how the engine retrieves program text.
// This allows the program source (directory, memory, embedded files) to be decoupled.
type ProgramLoader interface {
	// GetProgram returns the raw text of a program by name.
	// Returns domain.ErrProgramNotFound if the program does not exist.
	GetProgram(name string) (string, error)

	// ListPrograms returns the names of all available programs, sorted.
	ListPrograms() ([]string, error)
}
