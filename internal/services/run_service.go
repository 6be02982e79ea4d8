package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ghautomation/testpage/internal/metrics"
	"github.com/ghautomation/testpage/internal/models"
)

// ErrHistoryDisabled is returned by lookups when no repository is configured
var ErrHistoryDisabled = errors.New("run history is not configured")

// RunRepository defines the interface for run persistence
type RunRepository interface {
	CreateRun(run *models.VerificationRun) error
	CompleteRun(run *models.VerificationRun) error
	GetRunByID(id string) (*models.VerificationRun, error)
	ListRecentRuns(limit int) ([]*models.VerificationRun, error)
}

// Verifier runs the page checks
type Verifier interface {
	Verify(ctx context.Context) ([]models.CheckResult, error)
}

// RunService handles verification run business logic
type RunService interface {
	Execute(ctx context.Context, verifier Verifier, baseURL, browser string) (*models.VerificationRun, error)
	GetRun(id string) (*models.VerificationRun, error)
	ListRuns(limit int) ([]*models.VerificationRun, error)
}

// RunServiceImpl implements RunService
type RunServiceImpl struct {
	runRepo RunRepository
	metrics *metrics.Metrics
}

// NewRunService creates a new run service. runRepo may be nil, in which case
// runs are executed but not recorded. m may be nil.
func NewRunService(runRepo RunRepository, m *metrics.Metrics) RunService {
	return &RunServiceImpl{
		runRepo: runRepo,
		metrics: m,
	}
}

// Execute creates a run, verifies the page and settles the run.
// The returned error is non-nil only for invalid input or persistence
// failures; check failures and browser errors are reported on the run.
func (s *RunServiceImpl) Execute(ctx context.Context, verifier Verifier, baseURL, browser string) (*models.VerificationRun, error) {
	run, err := models.NewVerificationRun(baseURL, browser)
	if err != nil {
		return nil, fmt.Errorf("invalid run: %w", err)
	}

	if s.runRepo != nil {
		if err := s.runRepo.CreateRun(run); err != nil {
			return nil, fmt.Errorf("failed to record run: %w", err)
		}
	}

	log.Printf("Started verification run %s against %s", run.ID, baseURL)

	results, verr := verifier.Verify(ctx)
	if verr == nil {
		if err := run.Complete(results); err != nil {
			verr = fmt.Errorf("invalid verification result: %w", err)
		}
	}
	// A run that was not completed is aborted so the recorded row never
	// stays in the running state.
	if verr != nil {
		if err := run.Abort(verr); err != nil {
			return run, err
		}
	}

	for _, c := range run.Checks {
		s.metrics.ObserveCheck(c.Name, string(c.Status))
	}
	s.metrics.ObserveRun(run.Duration().Seconds())

	if s.runRepo != nil {
		if err := s.runRepo.CompleteRun(run); err != nil {
			return run, fmt.Errorf("failed to record run result: %w", err)
		}
	}

	log.Printf("Verification run %s finished with status %s", run.ID, run.Status)
	return run, nil
}

// GetRun retrieves a recorded run
func (s *RunServiceImpl) GetRun(id string) (*models.VerificationRun, error) {
	if s.runRepo == nil {
		return nil, ErrHistoryDisabled
	}
	run, err := s.runRepo.GetRunByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent recorded runs
func (s *RunServiceImpl) ListRuns(limit int) ([]*models.VerificationRun, error) {
	if s.runRepo == nil {
		return nil, ErrHistoryDisabled
	}
	runs, err := s.runRepo.ListRecentRuns(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}
