// Package cmd provides the command-line interface for weld with
// configuration drawn from multiple sources.
//
// Configuration precedence, highest first:
//  1. Command-line flags (--config, --port, ...)
//  2. WELD_CONFIG_FILE environment variable - custom config file path
//  3. Individual environment variables (WELD_SERVER_PORT, ...)
//  4. Configuration file (.weld.yml)
package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/weldkit/weld/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "weld",
	Short: "A component bundler and dev server for Mithril-dialect sources",
	Long: `Weld resolves component source files written in a small templating
dialect (@package and @import directives, class-style declarations) into
self-contained bundles with every transitive import inlined and all
identifiers rewritten to globally unique names.

Quick Start:
  weld init                       Initialize a new project
  weld list                       List all discovered components
  weld resolve app.Foo            Flatten one component to stdout
  weld serve                      Start the dev server with hot reload
  weld new app.widget.card        Scaffold a new component`,
}

// Execute adds all child commands to the root command and runs it
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .weld.yml, can also use WELD_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig wires viper to the config file and WELD_ environment
// variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("WELD_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(".weld")
		viper.SetConfigType("yml")
	}

	viper.SetEnvPrefix("WELD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// A missing config file is fine; defaults cover everything
	_ = viper.ReadInConfig()
}

// newLogger builds the CLI logger from the bound flags
func newLogger() logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(viper.GetString("log-level")),
		Format: viper.GetString("log-format"),
		Output: os.Stderr,
	})
}
