package models

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// RunStatus represents valid verification run states
type RunStatus string

// Run statuses
const (
	RunStatusRunning RunStatus = "running"
	RunStatusPassed  RunStatus = "passed"
	RunStatusFailed  RunStatus = "failed"
	RunStatusErrored RunStatus = "errored"
)

// CheckStatus is the outcome of a single check
type CheckStatus string

// Check statuses
const (
	CheckStatusPassed  CheckStatus = "passed"
	CheckStatusFailed  CheckStatus = "failed"
	CheckStatusSkipped CheckStatus = "skipped"
)

// CheckResult records the outcome of one check against the page
type CheckResult struct {
	Name     string        `json:"name"`
	Status   CheckStatus   `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Passed returns true if the check passed
func (c CheckResult) Passed() bool {
	return c.Status == CheckStatusPassed
}

// VerificationRun is one execution of the check list against a page instance
type VerificationRun struct {
	ID         string        `json:"id"`
	BaseURL    string        `json:"baseUrl"`
	Browser    string        `json:"browser"`
	Status     RunStatus     `json:"status"`
	Checks     []CheckResult `json:"checks"`
	Error      string        `json:"error,omitempty"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt *time.Time    `json:"finishedAt,omitempty"`
}

// Domain errors
var (
	ErrInvalidBaseURL          = errors.New("base URL must be an absolute http(s) URL")
	ErrInvalidBrowser          = errors.New("browser name cannot be empty")
	ErrInvalidStatusTransition = errors.New("invalid run status transition")
	ErrRunAlreadyFinished      = errors.New("run is already finished")
	ErrNoChecks                = errors.New("run must contain at least one check")
)

// NewVerificationRun creates a new run in the running state
func NewVerificationRun(baseURL, browser string) (*VerificationRun, error) {
	if err := validateRunInput(baseURL, browser); err != nil {
		return nil, err
	}

	return &VerificationRun{
		ID:        uuid.New().String(),
		BaseURL:   baseURL,
		Browser:   browser,
		Status:    RunStatusRunning,
		StartedAt: time.Now(),
	}, nil
}

func validateRunInput(baseURL, browser string) error {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBaseURL
	}
	if browser == "" {
		return ErrInvalidBrowser
	}
	return nil
}

// Complete records the check results and settles the run as passed or failed
func (r *VerificationRun) Complete(checks []CheckResult) error {
	if !r.IsRunning() {
		return fmt.Errorf("%w: cannot complete run with status %s", ErrRunAlreadyFinished, r.Status)
	}
	if len(checks) == 0 {
		return ErrNoChecks
	}

	r.Checks = checks
	r.Status = RunStatusPassed
	for _, c := range checks {
		if !c.Passed() {
			r.Status = RunStatusFailed
			break
		}
	}
	r.finish()
	return nil
}

// Abort marks the run as errored, e.g. when the browser could not be started
func (r *VerificationRun) Abort(cause error) error {
	if !r.IsRunning() {
		return fmt.Errorf("%w: cannot abort run with status %s", ErrInvalidStatusTransition, r.Status)
	}
	if cause == nil {
		return errors.New("abort cause cannot be nil")
	}

	r.Status = RunStatusErrored
	r.Error = cause.Error()
	r.finish()
	return nil
}

func (r *VerificationRun) finish() {
	now := time.Now()
	r.FinishedAt = &now
}

// IsRunning returns true while the run has not been settled
func (r *VerificationRun) IsRunning() bool {
	return r.Status == RunStatusRunning
}

// IsPassed returns true if every check passed
func (r *VerificationRun) IsPassed() bool {
	return r.Status == RunStatusPassed
}

// Counts returns the number of passed, failed and skipped checks
func (r *VerificationRun) Counts() (passed, failed, skipped int) {
	for _, c := range r.Checks {
		switch c.Status {
		case CheckStatusPassed:
			passed++
		case CheckStatusFailed:
			failed++
		case CheckStatusSkipped:
			skipped++
		}
	}
	return passed, failed, skipped
}

// Duration returns the wall time of a finished run, or zero while running
func (r *VerificationRun) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
