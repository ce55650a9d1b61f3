package main

import (
	"fmt"
	"os"

	"github.com/aretw0/turing/internal/cli"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <program>",
	Short: "Render the rule table or state diagram of a program",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		style, _ := cmd.Flags().GetString("style")
		raw, _ := cmd.Flags().GetBool("raw")
		format, _ := cmd.Flags().GetString("format")
		if !raw && !cmd.Flags().Changed("style") && !cli.IsTerminal(os.Stdout) {
			style = "notty"
		}

		eng, err := cli.NewEngine(cfg, logger, domain.MachineHooks{})
		if err != nil {
			return err
		}

		out, err := cli.InspectFormat(eng, args[0], format, style, raw)
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stdout, out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().String("style", "", "Glamour style (dark, light, notty, ...); default detects the terminal")
	inspectCmd.Flags().Bool("raw", false, "Print the markdown source instead of rendering it")
	inspectCmd.Flags().StringP("format", "f", cli.FormatTable, "Output format: table or mermaid")
}
