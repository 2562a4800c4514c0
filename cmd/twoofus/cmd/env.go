package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/twoofus/server/internal/app"
	"github.com/twoofus/server/internal/config"
	"github.com/twoofus/server/internal/logger"
)

var faint = color.New(color.Faint)

// openApp builds the app from the environment without touching the schema.
func openApp() (*app.App, error) {
	cfg, err := config.Parse()
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN, "cli")

	return app.New(cfg, app.Options{SkipMigrations: true})
}

// printJSON writes v indented to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func closeApp(a *app.App) {
	if err := a.Close(); err != nil {
		color.Yellow("⚠ Failed to close database: %v", err)
	}
}

func fail(format string, args ...any) error {
	color.Red("✗ "+format, args...)
	return fmt.Errorf(format, args...)
}
