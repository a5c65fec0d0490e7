package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// Execute creates the root command tree and runs it.
func Execute(version, commit, date string) error {
	rootCmd := newRootCmd(version, commit, date)
	return rootCmd.Execute()
}

func newRootCmd(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verdeck",
		Short: "Admin backend for versioned deployment configs",
		Long: `Verdeck: a session-authenticated admin backend for versioned deployment configs.

Verdeck stores named config versions, lets exactly one be active at a time,
and keeps a tamper-evident audit log of every admin action. It serves a
JSON API over HTTP with server-side cookie sessions and exposes the same
operations to AI agents through a built-in MCP server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./verdeck.yaml)")

	cobra.OnInitialize(initConfig)

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd(version, commit, date))
	cmd.AddCommand(newAdminCmd())
	cmd.AddCommand(newMCPCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("verdeck")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.verdeck")
	}

	setDefaults()

	viper.SetEnvPrefix("VERDECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	viper.ReadInConfig() // Ignore error - config file is optional
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 4000)
	viper.SetDefault("server.cors_origins", []string{"http://localhost:5173"})

	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", "verdeck.db")

	viper.SetDefault("session.max_age", 24*time.Hour)
	viper.SetDefault("session.table", "sessions")
	viper.SetDefault("session.cookie_name", "verdeck_session")
	viper.SetDefault("session.secure", false)

	viper.SetDefault("ratelimit.window", 15*time.Minute)
	viper.SetDefault("ratelimit.login_max", 5)
	viper.SetDefault("ratelimit.max", 100)
}
