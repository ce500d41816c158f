// Command paracad drives the parametric document core from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/spf13/cobra"

	"github.com/chazu/paracad/pkg/config"
)

var logger = loggo.GetLogger("paracad.cmd")

type rootParams struct {
	configPath string
	logLevel   string
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	params := &rootParams{}
	rootCmd := &cobra.Command{
		Use:           "paracad",
		Short:         "Parametric feature document toolkit",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if params.configPath != "" {
				var err error
				if cfg, err = config.Load(params.configPath); err != nil {
					return errors.Trace(err)
				}
			}
			if params.logLevel != "" {
				cfg.LogLevel = params.logLevel
				if err := cfg.Validate(); err != nil {
					return errors.Trace(err)
				}
			}
			if err := cfg.ApplyLogging(); err != nil {
				return errors.Trace(err)
			}
			params.cfg = cfg
			logger.Debugf("using config %+v", cfg)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&params.configPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&params.logLevel, "log-level", "", "logging config, e.g. DEBUG or paracad.document=TRACE")
	rootCmd.AddCommand(newTypesCmd(params), newDemoCmd(params))
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "paracad:", err)
		os.Exit(1)
	}
}
