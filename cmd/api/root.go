package main

import (
	"gnap-as/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var BuildVersion = "dev"

func newRootCommand() *cobra.Command {
	v := config.NewViper()

	root := &cobra.Command{
		Use:           "gnap-as",
		Short:         "GNAP authorization server",
		Long:          "Authorization server for the Grant Negotiation and Authorization Protocol.",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("dsn", "", "Postgres DSN. Empty => in-memory storage. Env: GNAP_DATABASE_DSN.")
	root.PersistentFlags().String("log-level", "info", "debug|info|warn|error. Env: GNAP_LOG_LEVEL.")
	root.PersistentFlags().String("log-format", "json", "json|console. Env: GNAP_LOG_FORMAT.")
	bindFlag(v, root, config.KeyDatabaseDSN, "dsn")
	bindFlag(v, root, config.KeyLogLevel, "log-level")
	bindFlag(v, root, config.KeyLogFormat, "log-format")

	root.AddCommand(
		newServeCommand(v),
		newMigrateCommand(v),
		newSweepCommand(v),
		newKeygenCommand(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				cmd.Printf("%s\n", BuildVersion)
			},
		},
	)
	return root
}

// bindFlag enlaza un flag (persistente o local) a una key de viper.
func bindFlag(v *viper.Viper, cmd *cobra.Command, key, flag string) {
	f := cmd.Flags().Lookup(flag)
	if f == nil {
		f = cmd.PersistentFlags().Lookup(flag)
	}
	if f != nil {
		_ = v.BindPFlag(key, f)
	}
}
