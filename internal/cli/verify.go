package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/ghautomation/testpage/internal/config"
	"github.com/ghautomation/testpage/internal/models"
	"github.com/ghautomation/testpage/internal/services"
	"github.com/ghautomation/testpage/internal/verify"
)

// ErrVerificationFailed is returned when the run did not pass
var ErrVerificationFailed = errors.New("verification failed")

// VerifyDependencies holds everything needed to verify a running page
type VerifyDependencies struct {
	Config     *config.VerifyConfig
	RunService services.RunService
	Launch     func(*config.VerifyConfig) (*verify.Session, error)
	// Checks overrides verify.DefaultChecks when non-empty
	Checks []verify.Check
	Out    io.Writer
}

// launchFailure reports a browser that never started as the verifier error,
// so the run is still recorded as errored.
type launchFailure struct {
	err error
}

func (f launchFailure) Verify(context.Context) ([]models.CheckResult, error) {
	return nil, f.err
}

// RunVerify launches a browser, runs the checks against the configured base
// URL and writes a report to deps.Out.
func RunVerify(ctx context.Context, deps VerifyDependencies) (*models.VerificationRun, error) {
	cfg := deps.Config

	var verifier services.Verifier
	session, err := deps.Launch(cfg)
	if err != nil {
		log.Printf("Browser launch failed: %v", err)
		verifier = launchFailure{err: err}
	} else {
		defer func() {
			if err := session.Close(); err != nil {
				log.Printf("Failed to close browser session: %v", err)
			}
		}()
		verifier = verify.NewVerifier(session.Browser, cfg.BaseURL, cfg.Timeout, deps.Checks...)
	}

	run, err := deps.RunService.Execute(ctx, verifier, cfg.BaseURL, cfg.Browser)
	if run != nil {
		fmt.Fprintln(deps.Out, RenderReport(run))
	}
	if err != nil {
		return run, err
	}

	if !run.IsPassed() {
		return run, fmt.Errorf("%w: run %s finished with status %s", ErrVerificationFailed, run.ID, run.Status)
	}
	return run, nil
}
