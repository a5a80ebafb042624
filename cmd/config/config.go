// Package config implements the config subcommand: write the effective
// settings to an editable YAML config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/herdwatch/herdwatch-go/internal/conf"
)

// Command returns the config subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "config [path]",
		Short: "Write the effective configuration to a YAML file",
		Long: `Config writes the currently effective settings, defaults merged with any
loaded config file and flags, to an editable YAML file. Without a path it
writes config.yaml in the first default config directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := targetPath(args)
			if err != nil {
				return err
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			}

			if err := conf.SaveSettings(settings, path); err != nil {
				return err
			}
			fmt.Printf("Wrote configuration to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

func targetPath(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	paths, err := conf.GetDefaultConfigPaths()
	if err != nil || len(paths) == 0 {
		return "", fmt.Errorf("no default config path available: %w", err)
	}
	return filepath.Join(paths[0], "config.yaml"), nil
}
