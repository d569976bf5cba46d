package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/planport/planport/internal/infrastructure/wiring"
)

var workspacePath string

func init() {
	RootCmd.PersistentFlags().StringVarP(&workspacePath, "workspace", "w", "", "Workspace root (defaults to the current directory)")
}

func getWorkspaceRoot() (string, error) {
	if workspacePath != "" {
		abs, err := filepath.Abs(workspacePath)
		if err != nil {
			return "", fmt.Errorf("invalid workspace path %q: %w", workspacePath, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return "", fmt.Errorf("workspace path %q: %w", abs, err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("workspace path %q is not a directory", abs)
		}
		return abs, nil
	}
	return os.Getwd()
}

func loadServicesForCurrentDir() (*wiring.AppServices, error) {
	root, err := getWorkspaceRoot()
	if err != nil {
		return nil, err
	}
	return wiring.BuildAppServices(root), nil
}
