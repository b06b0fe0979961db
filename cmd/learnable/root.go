package main

import (
	"github.com/spf13/cobra"

	app "github.com/kode4food/learnable"
)

func newRootCommand(a *learnable) *cobra.Command {
	cmd := &cobra.Command{
		Use:   app.Name,
		Short: "LearnABLE teacher client",
		Long: `Work with the LearnABLE teacher platform from the command line.

Sign in once with "learnable login". The session is kept in the configured
store, so later commands and the wizard service reuse it.`,
		Version:            app.Version,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.close,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.flags.configFile, "config", "",
		"Configuration file (YAML, JSON, or TOML)")
	flags.StringVar(&a.flags.envFile, "env-file", ".env",
		"Environment file loaded before the configuration")
	flags.StringVar(&a.flags.logLevel, "log-level", "",
		"Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newLoginCommand(a),
		newLogoutCommand(a),
		newServeCommand(a),
		newClassCommand(a),
		newNCCDCommand(a),
	)
	return cmd
}
