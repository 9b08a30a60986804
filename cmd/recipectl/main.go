// Command recipectl is the administration tool: schema migration, superuser
// management, session cleanup and health checks.
package main

import (
	"context"
	"log/slog"
	"os"

	"recipe_backend/internal/platform/config"
	"recipe_backend/internal/platform/logging"
)

func main() {
	logging.Setup(config.LogConfig{Level: "info", Format: "text"}, os.Stderr)

	app := newApp(newRunner(os.Stdout))
	if err := app.Run(context.Background(), os.Args); err != nil {
		slog.Error("recipectl failed", "error", err)
		os.Exit(1)
	}
}
