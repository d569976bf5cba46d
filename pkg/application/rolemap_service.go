package application

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/planport/planport/pkg/domain/imports"
	"github.com/planport/planport/pkg/domain/rolemap"
	"github.com/planport/planport/pkg/storage"
)

// RoleMapService manages job-title-to-role-type mappings: scored
// suggestions, manual upserts, and the batch auto-mapper.
type RoleMapService struct {
	repo   *storage.FilesystemRepository
	logger *slog.Logger
}

// NewRoleMapService creates a RoleMapService. A nil logger defaults to
// slog.Default.
func NewRoleMapService(repo *storage.FilesystemRepository, logger *slog.Logger) *RoleMapService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RoleMapService{repo: repo, logger: logger}
}

// Suggest returns ranked suggestions for one job title.
func (s *RoleMapService) Suggest(jobTitle string) ([]rolemap.Suggestion, error) {
	catalog, err := s.repo.LoadRoleTypes()
	if err != nil {
		return nil, fmt.Errorf("load role types: %w", err)
	}
	return rolemap.NewMatcher(catalog).SuggestMappings(jobTitle), nil
}

// List returns all persisted mappings.
func (s *RoleMapService) List() ([]rolemap.Mapping, error) {
	return s.repo.LoadRoleMappings()
}

// Set creates or replaces a manual mapping for a job title. The role may
// be given by ID or by name.
func (s *RoleMapService) Set(jobTitle, role string) (rolemap.Mapping, error) {
	var zero rolemap.Mapping

	catalog, err := s.repo.LoadRoleTypes()
	if err != nil {
		return zero, fmt.Errorf("load role types: %w", err)
	}

	var target *rolemap.RoleType
	for i := range catalog {
		if catalog[i].ID == role || imports.FoldName(catalog[i].Name) == imports.FoldName(role) {
			target = &catalog[i]
			break
		}
	}
	if target == nil {
		return zero, fmt.Errorf("unknown role type: %s", role)
	}

	mappings, err := s.repo.LoadRoleMappings()
	if err != nil {
		return zero, fmt.Errorf("load role mappings: %w", err)
	}

	mapping := rolemap.Mapping{
		ID:         uuid.NewString(),
		JobTitle:   strings.TrimSpace(jobTitle),
		RoleTypeID: target.ID,
		Confidence: 1,
		Source:     rolemap.SourceManual,
	}

	replaced := false
	for i := range mappings {
		if imports.FoldName(mappings[i].JobTitle) == imports.FoldName(jobTitle) {
			mapping.ID = mappings[i].ID
			mappings[i] = mapping
			replaced = true
			break
		}
	}
	if !replaced {
		mappings = append(mappings, mapping)
	}

	if err := s.repo.SaveRoleMappings(mappings); err != nil {
		return zero, fmt.Errorf("save role mappings: %w", err)
	}
	return mapping, nil
}

// AutoMapFromRoster parses a roster export, collects the distinct job
// titles with no existing mapping, and maps every title whose top
// suggestion clears the threshold. Titles below it stay unmapped.
func (s *RoleMapService) AutoMapFromRoster(rosterText string, threshold float64) (rolemap.AutoMapReport, imports.IssueList, error) {
	var report rolemap.AutoMapReport

	res := imports.ParseTable(rosterText, imports.RosterSchema)
	if res.Issues.HasStructural() {
		return report, res.Issues, nil
	}

	var titles []string
	for _, rec := range imports.RosterRecordsFromRows(res.Rows) {
		if rec.Role != "" {
			titles = append(titles, rec.Role)
		}
	}

	created, report, err := s.AutoMap(titles, threshold)
	if err != nil {
		return report, res.Issues, err
	}

	s.logger.Info("auto-mapped roster roles",
		"titles", len(titles),
		"mapped", report.Mapped,
		"skipped", report.Skipped,
		"created", len(created))
	return report, res.Issues, nil
}

// AutoMap runs the batch auto-mapper over the given job titles and
// persists whatever it creates.
func (s *RoleMapService) AutoMap(titles []string, threshold float64) ([]rolemap.Mapping, rolemap.AutoMapReport, error) {
	catalog, err := s.repo.LoadRoleTypes()
	if err != nil {
		return nil, rolemap.AutoMapReport{}, fmt.Errorf("load role types: %w", err)
	}
	existing, err := s.repo.LoadRoleMappings()
	if err != nil {
		return nil, rolemap.AutoMapReport{}, fmt.Errorf("load role mappings: %w", err)
	}

	created, report := rolemap.AutoMapUnmapped(titles, existing, rolemap.NewMatcher(catalog), threshold)
	if len(created) > 0 {
		if err := s.repo.SaveRoleMappings(append(existing, created...)); err != nil {
			return nil, report, fmt.Errorf("save role mappings: %w", err)
		}
	}
	return created, report, nil
}
