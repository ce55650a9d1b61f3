package main

import (
	"errors"
	"os"

	"github.com/aretw0/turing/internal/cli"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/spf13/cobra"
)

var stepCmd = &cobra.Command{
	Use:   "step <program>",
	Short: "Step through a program interactively",
	Long: `Opens a full screen view of the machine: space steps once, r runs and pauses,
0 resets the tape to the input, q quits.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cli.IsTerminal(os.Stdout) {
			return errors.New("step needs an interactive terminal; use run --trace instead")
		}
		input, _ := cmd.Flags().GetString("input")

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
		stepper, err := cli.NewStepper(eng, args[0], input, left, right)
		if err != nil {
			return err
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.Interactive(ctx, os.Stdin, os.Stdout, stepper)
	},
}

func init() {
	rootCmd.AddCommand(stepCmd)
	stepCmd.Flags().StringP("input", "i", "", "Initial tape content")
	stepCmd.Flags().String("window", "", "Tape cells shown left and right of the head, as L,R")
}
