package cmd

import (
	"fmt"

	"github.com/cottand/typealg/frontend/typestore"
	"github.com/spf13/cobra"
)

func newStoreCmd(flags *globalFlags) *cobra.Command {
	var dsn string
	open := func(cmd *cobra.Command) (*typestore.Store, error) {
		s, err := typestore.Open(cmd.Context(), dsn)
		if err != nil {
			return nil, fmt.Errorf("could not open type store: %w", err)
		}
		return s, nil
	}

	put := &cobra.Command{
		Use:   "put TYPE...",
		Short: "Store types and print their keys",
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
			s, err := open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			for _, t := range parsed {
				key, err := s.Put(cmd.Context(), t)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", key, t)
			}
			return nil
		},
	}

	get := &cobra.Command{
		Use:   "get KEY...",
		Short: "Print stored types",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			for _, key := range args {
				t, err := s.Get(cmd.Context(), key)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			entries, err := s.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, entry := range entries {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", entry.Key, entry.Description)
			}
			return nil
		},
	}

	c := &cobra.Command{
		Use:   "store",
		Short: "Persist types in a SQLite database",
	}
	c.PersistentFlags().StringVar(&dsn, "db", "typealg.db", "SQLite database to use")
	c.AddCommand(put, get, list)
	return c
}
