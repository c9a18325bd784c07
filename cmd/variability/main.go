package main

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stemsi/exstem-variability/internal/logger"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "variability",
		Short:        "Measure how much exam generations differ from each other",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.String("log-level", "warn", "Log level (debug, info, warn, error)")
	pf.String("log-format", "pretty", "Log format (pretty, json)")

	root.AddCommand(analyzeCmd(), normalizeCmd())
	return root
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())
	_ = v.BindPFlags(cmd.InheritedFlags())

	v.SetEnvPrefix("VARIABILITY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("variability")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/exstem-variability")
	_ = v.ReadInConfig() // config file is optional

	return v
}

// setupLogging writes logs to the command's error stream so stdout stays
// machine readable.
func setupLogging(cmd *cobra.Command, v *viper.Viper) zerolog.Logger {
	return logger.Setup(v.GetString("log-level"), v.GetString("log-format"), cmd.ErrOrStderr())
}
