package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "nocs",
		Short: "National Occupational Classification catalog and API",
		Long: `nocs builds a snapshot of the National Occupational Classification (NOC 2021) from the
published table, serves it as a read-only HTTP API and queries it from the command line.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: a.teardown,
		Version:           fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		DisableAutoGenTag: true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", defaultConfigPath, "config file path")
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		serveCmd(a),
		buildCmd(a),
		searchCmd(a),
		getCmd(a),
		infoCmd(a),
		suggestCmd(a),
		versionCmd(),
		configCmd(a),
	)
	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// skip config loading
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		PersistentPostRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "nocs version %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
