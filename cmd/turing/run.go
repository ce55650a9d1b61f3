package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aretw0/turing/internal/cli"
	"github.com/aretw0/turing/internal/presentation/tui"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <program>",
	Short: "Run a program until it halts",
	Long: `Loads a program (a file path or the name of a program in --dir) with the given
input on the tape and runs it until it enters a halting state.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		trace, _ := cmd.Flags().GetBool("trace")
		jsonMode, _ := cmd.Flags().GetBool("json")

		maxSteps := cfg.StepLimit
		if cmd.Flags().Changed("max-steps") {
			maxSteps, _ = cmd.Flags().GetInt("max-steps")
		}

		left, right := cfg.Window.Left, cfg.Window.Right
		if cmd.Flags().Changed("window") {
			w, _ := cmd.Flags().GetString("window")
			var err error
			left, right, err = parseWindow(w)
			if err != nil {
				return err
			}
		}

		eng, err := cli.NewEngine(cfg, logger, domain.MachineHooks{})
		if err != nil {
			return err
		}

		if !jsonMode && cli.IsTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout)
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		_, err = cli.RunProgram(ctx, os.Stdout, eng, cli.RunOptions{
			Program:     args[0],
			Input:       input,
			MaxSteps:    maxSteps,
			Trace:       trace,
			JSON:        jsonMode,
			WindowLeft:  left,
			WindowRight: right,
		}, logger)
		return err
	},
}

// parseWindow parses "L,R" (or a single N for both sides).
func parseWindow(s string) (int, int, error) {
	parts := strings.Split(s, ",")
	if len(parts) > 2 {
		return 0, 0, fmt.Errorf("invalid window %q: expected L,R", s)
	}
	var sides [2]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0, 0, fmt.Errorf("invalid window %q: expected non-negative numbers", s)
		}
		sides[i] = n
	}
	if len(parts) == 1 {
		sides[1] = sides[0]
	}
	return sides[0], sides[1], nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("input", "i", "", "Initial tape contents")
	runCmd.Flags().Int("max-steps", 0, "Abort after this many steps (0 = unbounded; default from config)")
	runCmd.Flags().BoolP("trace", "t", false, "Print the tape after every step")
	runCmd.Flags().String("window", "", "Tape cells shown left and right of the head, as L,R")
	runCmd.Flags().Bool("json", false, "Print the result (and the trace) as JSON lines")
}
