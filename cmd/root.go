package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/herdwatch/herdwatch-go/cmd/analyze"
	"github.com/herdwatch/herdwatch-go/cmd/config"
	"github.com/herdwatch/herdwatch-go/cmd/runs"
	"github.com/herdwatch/herdwatch-go/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "herdwatch",
		Short: "HerdWatch udder health monitoring CLI",
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings); err != nil {
		cobra.CheckErr(err)
	}

	rootCmd.AddCommand(analyze.Command(settings))
	rootCmd.AddCommand(runs.Command(settings))
	rootCmd.AddCommand(config.Command(settings))

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().Float64VarP(&settings.Monitor.SCCThreshold, "threshold", "t", viper.GetFloat64("monitor.sccthreshold"), "Somatic cell count threshold, unit 10^4/ml")
	rootCmd.PersistentFlags().StringVar(&settings.Monitor.SystemType, "system", viper.GetString("monitor.systemtype"), "Herd management system of the herd-master export: afimilk, yimuyun, dhi or other")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
