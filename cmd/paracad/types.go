package main

import (
	"fmt"

	"github.com/juju/errors"
	"github.com/spf13/cobra"

	"github.com/chazu/paracad/pkg/feature"
	"github.com/chazu/paracad/pkg/kernel/sdfx"
)

func newTypesCmd(params *rootParams) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the registered object types and their properties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := feature.NewRegistry(sdfx.New(params.cfg.KernelOptions()...))
			if err != nil {
				return errors.Trace(err)
			}
			out := cmd.OutOrStdout()
			for _, name := range reg.Types() {
				t, err := reg.Lookup(name)
				if err != nil {
					return errors.Trace(err)
				}
				fmt.Fprintln(out, name)
				for _, p := range t.Properties {
					fmt.Fprintf(out, "  %-12s %s\n", p.Name, p.Kind)
				}
			}
			return nil
		},
	}
}
