package main

import (
	"encoding/json"
	"os"

	"github.com/aretw0/turing/internal/cli"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <program>",
	Short: "Check a program for syntax errors",
	Long:  `Parses the program without running it and reports the first malformed or duplicate rule.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := cli.NewEngine(cfg, logger, domain.MachineHooks{})
		if err != nil {
			return err
		}

		report, err := cli.Validate(eng, args[0])
		if err != nil {
			return err
		}

		if jsonMode, _ := cmd.Flags().GetBool("json"); jsonMode {
			return json.NewEncoder(os.Stdout).Encode(report)
		}
		cli.PrintReport(os.Stdout, report)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("json", false, "Print the report as JSON")
}
