package domain

// Snapshot captures a machine between steps.
// Tape holds the materialized cells and Head the index of the head within them.
type Snapshot struct {
	Program string `json:"program,omitempty"`
	Source  string `json:"source,omitempty"`
	State   string `json:"state"`
	Tape    string `json:"tape"`
	Head    int    `json:"head"`
	Steps   int    `json:"steps"`
	Halted  bool   `json:"halted"`

	// Sealed carries an encrypted snapshot when a store middleware hides the fields above.
	Sealed []byte `json:"sealed,omitempty"`
}
