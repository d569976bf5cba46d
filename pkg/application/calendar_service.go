package application

import (
	"fmt"

	"github.com/planport/planport/pkg/domain/calendar"
	"github.com/planport/planport/pkg/storage"
)

// CalendarService answers calendar questions for the CLI: selectable
// financial years, the current FY and quarter, and the quarters available
// in a given year.
type CalendarService struct {
	repo *storage.FilesystemRepository
}

func NewCalendarService(repo *storage.FilesystemRepository) *CalendarService {
	return &CalendarService{repo: repo}
}

func (s *CalendarService) resolver() (*calendar.Resolver, []calendar.Cycle, error) {
	cfg, err := s.repo.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	cycles, err := s.repo.LoadCycles()
	if err != nil {
		return nil, nil, fmt.Errorf("load cycles: %w", err)
	}
	return calendar.NewResolver(cfg.FiscalYearStart, nil), cycles, nil
}

// FinancialYearOptions lists the selectable FY windows.
func (s *CalendarService) FinancialYearOptions() ([]calendar.FinancialYear, error) {
	r, _, err := s.resolver()
	if err != nil {
		return nil, err
	}
	return r.FinancialYearOptions(), nil
}

// Current returns the current financial year ID and quarter label. Either
// may be empty when the calendar has no matching cycle.
func (s *CalendarService) Current() (fyID, quarter string, err error) {
	r, cycles, err := s.resolver()
	if err != nil {
		return "", "", err
	}
	return r.CurrentFinancialYear(cycles), r.CurrentQuarter(cycles), nil
}

// Quarters lists the quarter labels available in a financial year.
func (s *CalendarService) Quarters(fyID string) ([]string, error) {
	r, cycles, err := s.resolver()
	if err != nil {
		return nil, err
	}
	return r.QuartersForFinancialYear(cycles, fyID, r.FinancialYearOptions()), nil
}
