package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eigerco/pcbridge/internal/config"
	"github.com/eigerco/pcbridge/pkg/log"
)

// app carries the state shared by every command.
type app struct {
	configPath   string
	printMetrics bool
	cfg          config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "pcbridge",
		Short:         "Partner chain mainchain observation and committee selection",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			opts, err := cfg.LogOptions()
			if err != nil {
				return err
			}
			opts.Output = cmd.ErrOrStderr()
			log.Init(opts)
			a.cfg = cfg
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a YAML config file, environment variables override it")
	rootCmd.PersistentFlags().BoolVar(&a.printMetrics, "metrics", false, "Print data source metrics after the command")

	rootCmd.AddCommand(
		newImportCmd(a),
		newLatestCmd(a),
		newEpochCmd(a),
		newReferenceCmd(a),
		newCommitteeCmd(a),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Root.Error().Err(err).Msg("command failed")
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
