package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"
)

// RenderTape draws a tape window with the cell at index head bracketed and highlighted.
// An out-of-range head renders the window without a marker.
func RenderTape(out *termenv.Output, window string, head int) string {
	var b strings.Builder
	for i, r := range []rune(window) {
		if i == head {
			b.WriteString(out.String("[" + string(r) + "]").Reverse().Bold().String())
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// RenderStep formats one trace line: step number, state and tape.
func RenderStep(out *termenv.Output, step int, state, tape string) string {
	return fmt.Sprintf("%s  %s  %s",
		out.String(fmt.Sprintf("%6d", step)).Faint(),
		out.String(fmt.Sprintf("%-12s", state)).Foreground(out.Color("#a78bfa")),
		tape,
	)
}
