package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ghautomation/testpage/internal/config"
	"github.com/ghautomation/testpage/internal/models"
	"github.com/ghautomation/testpage/internal/services"
	"github.com/ghautomation/testpage/internal/verify"
	"github.com/playwright-community/playwright-go"
)

// stubPage supports only the calls made by verify.Verifier
type stubPage struct {
	playwright.Page
}

func (p *stubPage) Goto(url string, options ...playwright.PageGotoOptions) (playwright.Response, error) {
	return nil, nil
}

func (p *stubPage) Close(options ...playwright.PageCloseOptions) error { return nil }

func (p *stubPage) SetDefaultTimeout(timeout float64) {}

// stubBrowser hands out stub pages and records Close
type stubBrowser struct {
	playwright.Browser
	closed bool
}

func (b *stubBrowser) NewPage(options ...playwright.BrowserNewPageOptions) (playwright.Page, error) {
	return &stubPage{}, nil
}

func (b *stubBrowser) Close(options ...playwright.BrowserCloseOptions) error {
	b.closed = true
	return nil
}

func testVerifyConfig() *config.VerifyConfig {
	return &config.VerifyConfig{
		BaseURL:  "http://localhost:8080",
		Browser:  config.BrowserChromium,
		Headless: true,
		Timeout:  time.Second,
	}
}

func checkReturning(name string, err error) verify.Check {
	return verify.Check{Name: name, Run: func(context.Context, playwright.Page) error { return err }}
}

func TestRunVerify_Passed(t *testing.T) {
	// GIVEN
	browser := &stubBrowser{}
	var out bytes.Buffer
	deps := VerifyDependencies{
		Config:     testVerifyConfig(),
		RunService: services.NewRunService(nil, nil),
		Launch: func(*config.VerifyConfig) (*verify.Session, error) {
			return &verify.Session{Browser: browser}, nil
		},
		Checks: []verify.Check{
			checkReturning(verify.CheckTitle, nil),
			checkReturning(verify.CheckText, nil),
		},
		Out: &out,
	}

	// WHEN
	run, err := RunVerify(context.Background(), deps)

	// THEN
	if err != nil {
		t.Fatalf("Expected nil error, got: %v", err)
	}
	if !run.IsPassed() {
		t.Errorf("Expected passed run, got %s", run.Status)
	}
	if !browser.closed {
		t.Error("Expected browser session to be closed")
	}
	if !strings.Contains(out.String(), verify.CheckTitle) {
		t.Errorf("Expected report to list checks, got:\n%s", out.String())
	}
}

func TestRunVerify_CheckFailure(t *testing.T) {
	// GIVEN
	var out bytes.Buffer
	deps := VerifyDependencies{
		Config:     testVerifyConfig(),
		RunService: services.NewRunService(nil, nil),
		Launch: func(*config.VerifyConfig) (*verify.Session, error) {
			return &verify.Session{Browser: &stubBrowser{}}, nil
		},
		Checks: []verify.Check{
			checkReturning(verify.CheckTitle, nil),
			checkReturning(verify.CheckSubmitDisabled, errors.New("Locator expected to be disabled")),
		},
		Out: &out,
	}

	// WHEN
	run, err := RunVerify(context.Background(), deps)

	// THEN
	if !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("Expected ErrVerificationFailed, got: %v", err)
	}
	if run.Status != models.RunStatusFailed {
		t.Errorf("Expected failed run, got %s", run.Status)
	}
	if !strings.Contains(out.String(), "Locator expected to be disabled") {
		t.Errorf("Expected failure message in report, got:\n%s", out.String())
	}
}

func TestRunVerify_LaunchFailure(t *testing.T) {
	// GIVEN
	var out bytes.Buffer
	var recorded *models.VerificationRun
	repo := &recordingRepo{completed: func(run *models.VerificationRun) { recorded = run }}
	deps := VerifyDependencies{
		Config:     testVerifyConfig(),
		RunService: services.NewRunService(repo, nil),
		Launch: func(*config.VerifyConfig) (*verify.Session, error) {
			return nil, errors.New("could not start playwright")
		},
		Out: &out,
	}

	// WHEN
	run, err := RunVerify(context.Background(), deps)

	// THEN
	if !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("Expected ErrVerificationFailed, got: %v", err)
	}
	if run.Status != models.RunStatusErrored {
		t.Errorf("Expected errored run, got %s", run.Status)
	}
	if recorded == nil || recorded.Status != models.RunStatusErrored {
		t.Error("Expected errored run to be recorded")
	}
	if !strings.Contains(out.String(), "could not start playwright") {
		t.Errorf("Expected launch error in report, got:\n%s", out.String())
	}
}

// recordingRepo is an in-memory services.RunRepository
type recordingRepo struct {
	completed func(*models.VerificationRun)
}

func (r *recordingRepo) CreateRun(*models.VerificationRun) error { return nil }

func (r *recordingRepo) CompleteRun(run *models.VerificationRun) error {
	r.completed(run)
	return nil
}

func (r *recordingRepo) GetRunByID(string) (*models.VerificationRun, error) { return nil, nil }

func (r *recordingRepo) ListRecentRuns(int) ([]*models.VerificationRun, error) { return nil, nil }
