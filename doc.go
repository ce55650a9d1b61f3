/*
Package turing is a single-tape Turing machine engine.

A program is a plain-text transition table, one rule per line:

	<state> <symbol> <new symbol> <direction> <new state>

Symbols are single characters, '_' is the blank and '*' is the wildcard: as a read
symbol it matches anything, as a written symbol it leaves the cell unchanged. Directions
are l, r and s (or *). Lines starting with // or ; are comments. Every machine starts in
state "0" and halts on entering any state whose name begins with "halt".

# Architecture

The library follows a hexagonal layout. The core (pkg/domain, pkg/tape, internal/compiler,
internal/runtime) is free of I/O. Programs are resolved through a ports.ProgramLoader and
long-lived machines are persisted through a ports.SnapshotStore by the session Manager,
with memory, file and Redis adapters available, and an HTTP adapter on top.

# Usage

	eng, err := turing.New("") // bundled example programs
	if err != nil {
		log.Fatal(err)
	}

	m, err := eng.Open(ctx, "binaryaddition", "110110_101011")
	if err != nil {
		log.Fatal(err)
	}
	if err := m.Run(ctx); err != nil {
		log.Fatal(err)
	}
	fmt.Println(m.Window(0, 7)) // 1100001
*/
package turing
