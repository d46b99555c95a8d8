package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vsariola/s5b/version"
)

// configName is the default config file name without extension. It differs
// from any document name so that a document is never read as config.
const configName = "s5b-config"

var (
	logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "s5b"})

	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "s5b",
		Short: "Sunsoft 5B instrument tools",
		Long: `s5b compiles, exports and imports Sunsoft 5B instruments.

Instruments and the sequences they use are kept in .yml documents. Instruments
can be exported to and imported from .fti instrument files, and compiled into
assembly for the sound driver.`,
		Version:           version.VersionOrHash,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./s5b-config.yml)")
	flags.BoolP("verbose", "v", false, "enable debug logging")
	flags.BoolP("safe", "n", false, "never overwrite files; if a file would be overwritten, give an error")
	flags.BoolP("list", "l", false, "do not write files; just list files that would change instead")
	flags.BoolP("stdout", "s", false, "do not write files; write to standard output instead")
	flags.StringP("output", "o", "", "directory or filename where to write output. Extension is ignored. By default, output is placed in the working directory")

	rootCmd.AddCommand(compileCmd, exportCmd, importCmd, storeCmd, infoCmd, versionCmd)
}

// initConfig layers flags over S5B_* environment variables over the config
// file.
func initConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("could not bind flags: %w", err)
	}
	viper.SetEnvPrefix("S5B")
	viper.AutomaticEnv()
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("could not read config: %w", err)
		}
	} else {
		logger.Debug("using config", "file", viper.ConfigFileUsed())
	}
	if viper.GetBool("verbose") {
		logger.SetLevel(log.DebugLevel)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}
