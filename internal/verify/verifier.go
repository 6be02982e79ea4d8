// Package verify drives the dummy page through playwright and reports the
// outcome of each check.
package verify

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ghautomation/testpage/internal/models"
	"github.com/playwright-community/playwright-go"
)

// PageOpener opens browser pages; playwright.Browser satisfies it
type PageOpener interface {
	NewPage(options ...playwright.BrowserNewPageOptions) (playwright.Page, error)
}

// Verifier runs a list of checks against a single page instance
type Verifier struct {
	opener  PageOpener
	baseURL string
	timeout time.Duration
	checks  []Check
}

// NewVerifier creates a verifier for the page served at baseURL.
// With no checks given, DefaultChecks is used.
func NewVerifier(opener PageOpener, baseURL string, timeout time.Duration, checks ...Check) *Verifier {
	if len(checks) == 0 {
		checks = DefaultChecks(timeout)
	}
	return &Verifier{
		opener:  opener,
		baseURL: baseURL,
		timeout: timeout,
		checks:  checks,
	}
}

// Verify opens one page, runs every check in order and closes the page.
// A failing check does not stop the others. Once ctx is done the remaining
// checks are reported as skipped. The error is non-nil only when the page
// could not be opened.
func (v *Verifier) Verify(ctx context.Context) ([]models.CheckResult, error) {
	page, err := v.opener.NewPage(playwright.BrowserNewPageOptions{
		BaseURL: playwright.String(v.baseURL),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			log.Printf("Failed to close page: %v", err)
		}
	}()

	page.SetDefaultTimeout(millis(v.timeout))

	// The empty path resolves to the base URL. A failed navigation is left
	// for the checks to report.
	if _, err := page.Goto(""); err != nil {
		log.Printf("Navigation to %s failed: %v", v.baseURL, err)
	}

	results := make([]models.CheckResult, 0, len(v.checks))
	for _, check := range v.checks {
		if err := ctx.Err(); err != nil {
			results = append(results, models.CheckResult{
				Name:    check.Name,
				Status:  models.CheckStatusSkipped,
				Message: err.Error(),
			})
			continue
		}

		results = append(results, runCheck(ctx, check, page))
	}

	return results, nil
}

func runCheck(ctx context.Context, check Check, page playwright.Page) models.CheckResult {
	start := time.Now()
	err := check.Run(ctx, page)
	result := models.CheckResult{
		Name:     check.Name,
		Status:   models.CheckStatusPassed,
		Duration: time.Since(start),
	}
	if err != nil {
		result.Status = models.CheckStatusFailed
		result.Message = err.Error()
		log.Printf("Check %q failed: %v", check.Name, err)
	}
	return result
}
