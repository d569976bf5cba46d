package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"gopkg.in/yaml.v3"

	"github.com/planport/planport/pkg/domain/allocation"
	"github.com/planport/planport/pkg/domain/calendar"
	"github.com/planport/planport/pkg/domain/rolemap"
)

const PlanportDir = ".planport"
const TeamsFile = "teams.yaml"
const EpicsFile = "epics.yaml"
const CyclesFile = "cycles.yaml"
const RoleTypesFile = "roletypes.yaml"
const RoleMappingsFile = "rolemappings.yaml"
const ConfigFile = "config.yaml"
const AllocationsFile = "allocations.json"

// WorkspaceConfig is the per-workspace configuration stored in
// .planport/config.yaml.
type WorkspaceConfig struct {
	// FiscalYearStart anchors the financial-year calendar, e.g. month 4
	// day 1 for an April fiscal year.
	FiscalYearStart calendar.Anchor `yaml:"fiscal_year_start"`
	// RunWorkLabels overrides the epic names classified as run work.
	// Empty means the built-in defaults.
	RunWorkLabels []string `yaml:"run_work_labels,omitempty"`
}

// FilesystemRepository stores reference data and import outputs under the
// workspace's .planport directory.
type FilesystemRepository struct {
	root        string
	retryConfig retry.Config
}

func NewFilesystemRepository(root string) *FilesystemRepository {
	return &FilesystemRepository{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Root returns the workspace root directory.
func (r *FilesystemRepository) Root() string {
	return r.root
}

// ResolvePath ensures the path is within the .planport directory and
// prevents traversal.
func (r *FilesystemRepository) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	baseDir := filepath.Join(r.root, PlanportDir)
	fullPath := filepath.Join(baseDir, filename)
	cleanPath := filepath.Clean(fullPath)

	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}

	return cleanPath, nil
}

func (r *FilesystemRepository) Initialize() error {
	path := filepath.Join(r.root, PlanportDir)
	// G301: Use 0700 for directories
	if err := os.MkdirAll(path, 0700); err != nil {
		return fmt.Errorf("failed to create .planport directory: %w", err)
	}
	return nil
}

func (r *FilesystemRepository) IsInitialized() bool {
	_, err := os.Stat(filepath.Join(r.root, PlanportDir))
	return err == nil
}

// loadYAML reads and unmarshals one workspace file with retry. A missing
// file is not an error: reference collections start empty.
func loadYAML[T any](r *FilesystemRepository, filename string) (T, error) {
	var zero T
	retryer := retry.New[T](r.retryConfig)

	return retryer.Do(context.Background(), func(ctx context.Context) (T, error) {
		path, err := r.ResolvePath(filename)
		if err != nil {
			return zero, err
		}

		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			return zero, nil
		}
		if err != nil {
			return zero, fmt.Errorf("failed to read %s: %w", filename, err)
		}

		var out T
		if err := yaml.Unmarshal(data, &out); err != nil {
			return zero, fmt.Errorf("failed to unmarshal %s: %w", filename, err)
		}
		return out, nil
	})
}

func saveYAML(r *FilesystemRepository, filename string, v interface{}) error {
	path, err := r.ResolvePath(filename)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filename, err)
	}

	// G306: Use 0600 for files
	return os.WriteFile(path, data, 0600)
}

func saveJSON(r *FilesystemRepository, filename string, v interface{}) error {
	path, err := r.ResolvePath(filename)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filename, err)
	}

	return os.WriteFile(path, data, 0600)
}

func (r *FilesystemRepository) LoadTeams() ([]allocation.Team, error) {
	return loadYAML[[]allocation.Team](r, TeamsFile)
}

func (r *FilesystemRepository) SaveTeams(teams []allocation.Team) error {
	return saveYAML(r, TeamsFile, teams)
}

func (r *FilesystemRepository) LoadEpics() ([]allocation.Epic, error) {
	return loadYAML[[]allocation.Epic](r, EpicsFile)
}

func (r *FilesystemRepository) SaveEpics(epics []allocation.Epic) error {
	return saveYAML(r, EpicsFile, epics)
}

func (r *FilesystemRepository) LoadCycles() ([]calendar.Cycle, error) {
	return loadYAML[[]calendar.Cycle](r, CyclesFile)
}

func (r *FilesystemRepository) SaveCycles(cycles []calendar.Cycle) error {
	return saveYAML(r, CyclesFile, cycles)
}

func (r *FilesystemRepository) LoadRoleTypes() ([]rolemap.RoleType, error) {
	return loadYAML[[]rolemap.RoleType](r, RoleTypesFile)
}

func (r *FilesystemRepository) SaveRoleTypes(types []rolemap.RoleType) error {
	return saveYAML(r, RoleTypesFile, types)
}

func (r *FilesystemRepository) LoadRoleMappings() ([]rolemap.Mapping, error) {
	return loadYAML[[]rolemap.Mapping](r, RoleMappingsFile)
}

func (r *FilesystemRepository) SaveRoleMappings(mappings []rolemap.Mapping) error {
	return saveYAML(r, RoleMappingsFile, mappings)
}

// LoadConfig returns the workspace configuration, falling back to a
// calendar-year fiscal anchor when the file is absent.
func (r *FilesystemRepository) LoadConfig() (WorkspaceConfig, error) {
	cfg, err := loadYAML[WorkspaceConfig](r, ConfigFile)
	if err != nil {
		return cfg, err
	}
	if cfg.FiscalYearStart.Month == 0 {
		cfg.FiscalYearStart = calendar.DefaultAnchor
	}
	if cfg.FiscalYearStart.Day == 0 {
		cfg.FiscalYearStart.Day = 1
	}
	return cfg, nil
}

func (r *FilesystemRepository) SaveConfig(cfg WorkspaceConfig) error {
	return saveYAML(r, ConfigFile, cfg)
}
