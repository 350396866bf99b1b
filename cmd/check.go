package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/cottand/typealg/frontend/ast"
	"github.com/cottand/typealg/frontend/types"
	"github.com/spf13/cobra"
)

// errRejected makes the command exit with a failure once its verdict has been printed
var errRejected = errors.New("rejected")

func newMatchCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "match A B",
		Short: "Check whether two types match, and print the markers bound while matching",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := flags.env()
			if err != nil {
				return err
			}
			parsed, err := e.parse(args...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !e.checker.Match(parsed[0], parsed[1]) {
				verdict(out, false, "no match")
				return errRejected
			}
			verdict(out, true, "match")
			printBindings(out, "a", e.checker.Markers(types.SideA))
			printBindings(out, "b", e.checker.Markers(types.SideB))
			return nil
		},
	}
}

func printBindings(w io.Writer, side string, bindings []types.Type) {
	for m, t := range bindings {
		if t != nil {
			_, _ = fmt.Fprintf(w, "  %s.%d = %s\n", side, m, t)
		}
	}
}

func newCallCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "call CALLEE [ARG...]",
		Short: "Print the type returned by calling CALLEE with arguments of the given types",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := flags.env()
			if err != nil {
				return err
			}
			parsed, err := e.parse(args...)
			if err != nil {
				return err
			}
			ret, err := e.checker.CheckCall(parsed[0], parsed[1:], nil)
			if err != nil {
				verdict(cmd.OutOrStdout(), false, diagnostic(err))
				return errRejected
			}
			verdict(cmd.OutOrStdout(), true, ret.String())
			return nil
		},
	}
}

func newIndexCmd(flags *globalFlags) *cobra.Command {
	var arrow, literal string
	c := &cobra.Command{
		Use:   "index CONTAINER [INDEX]",
		Short: "Print the type of indexing CONTAINER with a value of type INDEX",
		Long: "Print the type of indexing CONTAINER with a value of type INDEX.\n" +
			"With --arrow NAME, index with ->NAME instead. With --literal, INDEX is the constant string given.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := flags.env()
			if err != nil {
				return err
			}
			site := ast.Bracket(nil)
			switch {
			case arrow != "":
				site = ast.Arrow(nil, arrow)
				args = append(args[:1], "string")
			case literal != "":
				site = site.WithLiteral(literal)
				args = append(args[:1], "string")
			case len(args) < 2:
				return errors.New("an index type, --arrow or --literal is required")
			}
			parsed, err := e.parse(args...)
			if err != nil {
				return err
			}
			ret, err := e.checker.CheckIndex(parsed[0], parsed[1], site)
			if err != nil {
				verdict(cmd.OutOrStdout(), false, diagnostic(err))
				return errRejected
			}
			verdict(cmd.OutOrStdout(), true, ret.String())
			return nil
		},
	}
	c.Flags().StringVar(&arrow, "arrow", "", "index with ->NAME")
	c.Flags().StringVar(&literal, "literal", "", "index with the constant string given")
	return c
}
