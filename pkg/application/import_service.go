package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/planport/planport/pkg/domain/allocation"
	"github.com/planport/planport/pkg/domain/calendar"
	"github.com/planport/planport/pkg/domain/wizard"
	"github.com/planport/planport/pkg/storage"
)

// ImportService drives the import wizard: it owns the only I/O boundary
// (reading uploaded file text), loads reference data, and hands confirmed
// batches to storage. Everything between those edges is the pure wizard
// session.
type ImportService struct {
	repo   *storage.FilesystemRepository
	logger *slog.Logger
}

// NewImportService creates an ImportService. A nil logger defaults to
// slog.Default.
func NewImportService(repo *storage.FilesystemRepository, logger *slog.Logger) *ImportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportService{repo: repo, logger: logger}
}

// NewSession starts a fresh wizard session.
func (s *ImportService) NewSession() wizard.Session {
	return wizard.NewSession()
}

// ReadUpload reads one uploaded file into a wizard.File. This is the
// pipeline's single I/O suspension point; any read failure comes back as
// one wrapped error for the caller to surface as a structural issue.
func (s *ImportService) ReadUpload(ctx context.Context, path string) (wizard.File, error) {
	if err := ctx.Err(); err != nil {
		return wizard.File{}, err
	}

	// #nosec G304 -- Path is user-supplied by design: it names the upload.
	data, err := os.ReadFile(path)
	if err != nil {
		return wizard.File{}, fmt.Errorf("failed to read upload %s: %w", path, err)
	}

	return wizard.File{Name: filepath.Base(path), Text: string(data)}, nil
}

// Resolver builds the calendar resolver from workspace configuration.
func (s *ImportService) Resolver() (*calendar.Resolver, error) {
	cfg, err := s.repo.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return calendar.NewResolver(cfg.FiscalYearStart, nil), nil
}

// PrepareSession reads both uploads and records the calendar selection,
// returning a session ready for the validate step.
func (s *ImportService) PrepareSession(ctx context.Context, epicPath, storyPath, fyID, quarter string) (wizard.Session, error) {
	sess := wizard.NewSession()

	epicFile, err := s.ReadUpload(ctx, epicPath)
	if err != nil {
		return sess, err
	}
	storyFile, err := s.ReadUpload(ctx, storyPath)
	if err != nil {
		return sess, err
	}

	resolver, err := s.Resolver()
	if err != nil {
		return sess, err
	}
	cycles, err := s.repo.LoadCycles()
	if err != nil {
		return sess, fmt.Errorf("load cycles: %w", err)
	}

	available := resolver.QuartersForFinancialYear(cycles, fyID, resolver.FinancialYearOptions())

	sess = sess.WithFiles(epicFile, storyFile).WithCalendar(fyID, quarter, available)
	s.logger.Info("import session prepared",
		"batch", sess.BatchID,
		"fy", fyID,
		"quarter", quarter,
		"availableQuarters", len(available))
	return sess, nil
}

// Aggregate runs the aggregate step with reference data loaded from the
// workspace.
func (s *ImportService) Aggregate(sess wizard.Session) (wizard.Session, error) {
	teams, err := s.repo.LoadTeams()
	if err != nil {
		return sess, fmt.Errorf("load teams: %w", err)
	}
	epics, err := s.repo.LoadEpics()
	if err != nil {
		return sess, fmt.Errorf("load epics: %w", err)
	}
	cfg, err := s.repo.LoadConfig()
	if err != nil {
		return sess, fmt.Errorf("load config: %w", err)
	}

	var labels []string
	if len(cfg.RunWorkLabels) > 0 {
		labels = cfg.RunWorkLabels
	}

	return sess.Aggregate(
		allocation.NewTeamDirectory(teams),
		allocation.NewEpicDirectory(epics),
		allocation.NewRunWorkClassifier(labels),
	), nil
}

// Confirm expands the session's accepted results across the selected
// quarter's iterations, validates the batch against the output schema,
// and appends it to the allocations file.
func (s *ImportService) Confirm(sess wizard.Session) (storage.AllocationBatch, wizard.ConfirmReport, error) {
	var batch storage.AllocationBatch

	resolver, err := s.Resolver()
	if err != nil {
		return batch, wizard.ConfirmReport{}, err
	}
	cycles, err := s.repo.LoadCycles()
	if err != nil {
		return batch, wizard.ConfirmReport{}, fmt.Errorf("load cycles: %w", err)
	}
	teams, err := s.repo.LoadTeams()
	if err != nil {
		return batch, wizard.ConfirmReport{}, fmt.Errorf("load teams: %w", err)
	}

	records, report, err := sess.Confirm(resolver, cycles, resolver.FinancialYearOptions(), allocation.NewTeamDirectory(teams))
	if err != nil {
		return batch, report, err
	}

	batch = storage.AllocationBatch{
		BatchID:         sess.BatchID,
		FinancialYearID: sess.FinancialYearID,
		Quarter:         sess.Quarter,
		CreatedAt:       time.Now().UTC(),
		Records:         records,
	}

	if err := s.repo.AppendAllocationBatch(batch); err != nil {
		return batch, report, fmt.Errorf("persist batch: %w", err)
	}

	s.logger.Info("import batch confirmed",
		"batch", batch.BatchID,
		"records", report.Records,
		"iterations", report.Iterations,
		"rejectedTeams", report.RejectedTeams)
	return batch, report, nil
}

// Run executes the whole pipeline non-interactively: prepare, validate,
// aggregate, resolve, preview, and optionally confirm. The returned
// session carries every issue found along the way; committed is false
// when a blocking issue stopped the run before confirm.
func (s *ImportService) Run(ctx context.Context, epicPath, storyPath, fyID, quarter string, dryRun bool) (wizard.Session, *storage.AllocationBatch, error) {
	sess, err := s.PrepareSession(ctx, epicPath, storyPath, fyID, quarter)
	if err != nil {
		return sess, nil, err
	}

	sess = sess.Validate()
	if sess.Step == wizard.StepUpload || sess.StepIssues(wizard.StepValidate).HasStructural() {
		return sess, nil, nil
	}

	sess, err = s.Aggregate(sess)
	if err != nil {
		return sess, nil, err
	}

	sess = sess.Resolve().Preview()
	if dryRun {
		return sess, nil, nil
	}

	batch, _, err := s.Confirm(sess)
	if err != nil {
		return sess, nil, err
	}
	return sess, &batch, nil
}
