package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/cottand/typealg/frontend/ilerr"
	"github.com/cottand/typealg/frontend/types"
	"github.com/spf13/cobra"
)

func newDescribeCmd(flags *globalFlags) *cobra.Command {
	var dump bool
	c := &cobra.Command{
		Use:   "describe TYPE...",
		Short: "Parse types and print them back in canonical form",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := flags.env()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			var errs *ilerr.Errors
			for _, text := range args {
				parsed, err := e.parse(text)
				if err != nil {
					verdict(out, false, diagnostic(err))
					errs = errs.With(asIleError(err))
					continue
				}
				_, _ = fmt.Fprintln(out, types.Describe(parsed[0]))
				if dump {
					_, _ = fmt.Fprint(out, types.Dump(parsed[0]))
				}
			}
			if errs.HasError() {
				logger.Debug("rejected types", "errors", errs)
				return fmt.Errorf("%d of %d types could not be parsed", len(errs.Errors()), len(args))
			}
			return nil
		},
	}
	c.Flags().BoolVar(&dump, "dump", false, "also print the node structure of each type")
	return c
}

func newEncodeCmd(flags *globalFlags) *cobra.Command {
	var decode bool
	c := &cobra.Command{
		Use:   "encode TYPE",
		Short: "Print the binary encoding of a type as hex, or decode one with --decode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if decode {
				t, err := types.DecodeHex(args[0])
				if err != nil {
					return fmt.Errorf("could not decode %q: %w", args[0], err)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), types.Describe(t))
				return nil
			}
			e, err := flags.env()
			if err != nil {
				return err
			}
			parsed, err := e.parse(args[0])
			if err != nil {
				return err
			}
			encoded := types.Encode(parsed[0])
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (%d units)\n", hex.EncodeToString(encoded), types.MustLength(encoded, 0))
			return nil
		},
	}
	c.Flags().BoolVarP(&decode, "decode", "d", false, "treat the argument as a hex encoding to describe")
	return c
}

func newArityCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "arity TYPE",
		Short: "Print how many arguments a function type accepts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := flags.env()
			if err != nil {
				return err
			}
			parsed, err := e.parse(args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), types.CountArguments(parsed[0]))
			return nil
		},
	}
}
