package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/herdwatch/herdwatch-go/cmd"
	"github.com/herdwatch/herdwatch-go/internal/conf"
	"github.com/herdwatch/herdwatch-go/internal/logging"
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		log.Fatalf("error loading settings: %v", err)
	}

	logging.Init()
	level := slog.LevelInfo
	if settings.Debug {
		level = slog.LevelDebug
	}
	logging.SetLevel(level)

	var closeLog func() error
	if settings.Main.Log.Enabled {
		closeLog, err = logging.InitFileLogger(settings.Main.Log.Path, level)
		if err != nil {
			slog.Error("failed to open main log file, logging to console",
				"path", settings.Main.Log.Path, "error", err)
		}
	}

	rootCmd := cmd.RootCommand(settings)
	execErr := rootCmd.Execute()

	if closeLog != nil {
		_ = closeLog()
	}
	if execErr != nil {
		os.Exit(1)
	}
}
