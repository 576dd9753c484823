package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	precomputeCmd "github.com/openrace/f1-replay-go/pkg/cmd/precompute"
	replayCmd "github.com/openrace/f1-replay-go/pkg/cmd/replay"
	"github.com/openrace/f1-replay-go/pkg/config"
	"github.com/openrace/f1-replay-go/version"
)

const envPrefix = "F1REPLAY"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "f1replay",
	Short:   "Telemetry synchronization and replay engine for finished F1 sessions",
	Long:    ``,
	Version: version.FullVersion,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.f1replay.yml)")

	rootCmd.PersistentFlags().StringVar(&config.CacheDir, "cache-dir",
		"computed-data",
		"directory for precomputed timeline files")
	rootCmd.PersistentFlags().IntVar(&config.FPS, "fps",
		25,
		"frames per second of the replay timeline")
	rootCmd.PersistentFlags().StringVar(&config.GapThreshold, "gap-threshold",
		"2s",
		"sample gaps longer than this are treated as data holes")
	rootCmd.PersistentFlags().IntVar(&config.StallWindow, "stall-window",
		75,
		"ticks of flat race distance before a driver is flagged OUT")
	rootCmd.PersistentFlags().BoolVar(&config.Refresh, "refresh-data",
		false,
		"ignore cached timelines and recompute")
	rootCmd.PersistentFlags().IntVar(&config.Workers, "workers",
		0,
		"max concurrent driver normalizations (0 means NumCPU)")
	rootCmd.PersistentFlags().StringVar(&config.LogLevel, "log-level",
		"info",
		"log level (zap values)")
	rootCmd.PersistentFlags().StringVar(&config.LogFormat, "log-format",
		"text",
		"log format (text or json)")
	rootCmd.PersistentFlags().StringVar(&config.LogFilter, "log-filter",
		"",
		"zapfilter rules, e.g. 'debug:processing.* info:*'")

	// add commands here
	rootCmd.AddCommand(precomputeCmd.NewPrecomputeCmd())
	rootCmd.AddCommand(replayCmd.NewReplayCmd())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".f1replay" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".f1replay")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	bindFlags(rootCmd, viper.GetViper())
	for _, cmd := range rootCmd.Commands() {
		bindFlags(cmd, viper.GetViper())
	}
}

// Bind each cobra flag to its associated viper configuration
// (config file and environment variable)
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Environment variables can't have dashes in them, so bind them to their
		// equivalent keys with underscores, e.g. --cache-dir to F1REPLAY_CACHE_DIR
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name,
				fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not bind env var %s: %v", f.Name, err)
			}
		}
		// Apply the viper config value to the flag when the flag is not set and viper
		// has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				fmt.Fprintf(os.Stderr, "Could set flag value for %s: %v", f.Name, err)
			}
		}
	})
}
