// Package wiring assembles the application services over one workspace.
package wiring

import (
	"log/slog"
	"os"

	"github.com/planport/planport/pkg/application"
	"github.com/planport/planport/pkg/storage"
)

// AppServices exposes the application layer services wired together with
// a workspace repository.
type AppServices struct {
	Repo     *storage.FilesystemRepository
	Import   *application.ImportService
	RoleMap  *application.RoleMapService
	Calendar *application.CalendarService
	Logger   *slog.Logger
}

// BuildAppServices constructs the services for a workspace root.
func BuildAppServices(root string) *AppServices {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(),
	}))

	repo := storage.NewFilesystemRepository(root)
	return &AppServices{
		Repo:     repo,
		Import:   application.NewImportService(repo, logger),
		RoleMap:  application.NewRoleMapService(repo, logger),
		Calendar: application.NewCalendarService(repo),
		Logger:   logger,
	}
}

func logLevel() slog.Level {
	if os.Getenv("PLANPORT_DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}
