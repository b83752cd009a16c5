package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pgen-lang/pgen"
	"github.com/pgen-lang/pgen/examples/calc"
)

func main() {
	var traceRules bool

	cmd := &cobra.Command{
		Use:           "calc \"expression\"",
		Short:         "Check that an arithmetic expression parses",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := pgen.NewConfig()
			cfg.SetBool("eval.trace", traceRules)

			parser, err := calc.NewParser(cfg)
			if err != nil {
				return err
			}
			outcome, err := parser.ParseString(args[0])
			if err != nil {
				return err
			}
			if fail, ok := outcome.(pgen.Fail); ok {
				return fmt.Errorf("%s", fail.Message)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&traceRules, "trace", false, "Log every rule invocation")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
