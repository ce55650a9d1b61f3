package turing_test

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aretw0/turing"
)

// ExampleEngine_Open runs the bundled binary addition program on 54 + 43.
func ExampleEngine_Open() {
	eng, err := turing.New("")
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	m, err := eng.Open(ctx, "binaryaddition", "110110_101011")
	if err != nil {
		log.Fatal(err)
	}
	if err := m.Run(ctx); err != nil {
		log.Fatal(err)
	}

	fmt.Println(m.State(), m.Window(0, 7))
	// Output: halt 1100001
}

// ExampleEngine_Execute runs an inline program that inverts its input.
func ExampleEngine_Execute() {
	eng, err := turing.New("")
	if err != nil {
		log.Fatal(err)
	}

	program := `
; invert every bit, then stop on the first blank
0 0 1 r 0
0 1 0 r 0
0 _ _ s halt
`
	snap, err := eng.Execute(context.Background(), program, "1011")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(strings.TrimRight(snap.Tape, "_"), snap.Steps)
	// Output: 0100 5
}
