package e2e

import (
	"context"
	"testing"

	"github.com/ghautomation/testpage/internal/verify"
	"github.com/playwright-community/playwright-go"
)

// openPage opens the dummy page in a fresh browser page
func openPage(t *testing.T) playwright.Page {
	t.Helper()

	page, err := browser.NewPage(playwright.BrowserNewPageOptions{
		BaseURL: playwright.String(baseURL),
	})
	if err != nil {
		t.Fatal(err)
	}
	page.SetDefaultTimeout(float64(checkTimeout.Milliseconds()))

	if _, err = page.Goto(""); err != nil {
		page.Close()
		t.Fatalf("Failed to navigate to dummy page: %v", err)
	}
	return page
}

// TestDummyPage runs every page check against one shared page
// Feature: GH Automation Setup and Testing Page
//
//	Scenario: Verify the dummy page
//	  Given I am on the dummy page
//	  Then the title should be "GH Automation Setup and Testing Page"
//	  And I should see the text "This is a dummy test page"
//	  And the "submit" button should be disabled
//	  When I click the "Test" button
//	  Then I should see exactly one alert "Test Message"
func TestDummyPage(t *testing.T) {
	// Given I am on the dummy page
	page := openPage(t)
	defer page.Close()

	for _, check := range verify.DefaultChecks(checkTimeout) {
		t.Run(check.Name, func(t *testing.T) {
			if err := check.Run(context.Background(), page); err != nil {
				t.Error(err)
			}
		})
	}
}

// TestSubmitStaysDisabled checks the submit control after interacting with the page
// Feature: Disabled submit control
//
//	Scenario: Submit is disabled regardless of prior interactions
//	  Given I am on the dummy page
//	  When I click the "Test" button and accept the alert
//	  Then the "submit" button should still be disabled
func TestSubmitStaysDisabled(t *testing.T) {
	page := openPage(t)
	defer page.Close()

	// When I click the "Test" button and accept the alert
	if err := verify.AlertOnTestClick(checkTimeout).Run(context.Background(), page); err != nil {
		t.Fatalf("Failed to trigger alert: %v", err)
	}

	// Then the "submit" button should still be disabled
	disabled, err := verify.SubmitButton(page).IsDisabled()
	if err != nil {
		t.Fatalf("Failed to check submit button: %v", err)
	}
	if !disabled {
		t.Error("Expected submit button to be disabled after the alert")
	}
}

// TestAlertIsRepeatable checks that accepting the alert leaves no residual state
// Feature: Test alert
//
//	Scenario: Click the test button twice
//	  Given I am on the dummy page
//	  When I click the "Test" button and accept the alert
//	  And I click the "Test" button again
//	  Then I should see exactly one fresh alert "Test Message"
func TestAlertIsRepeatable(t *testing.T) {
	page := openPage(t)
	defer page.Close()

	alert := verify.AlertOnTestClick(checkTimeout)
	for _, attempt := range []string{"first click", "second click"} {
		if err := alert.Run(context.Background(), page); err != nil {
			t.Errorf("%s: %v", attempt, err)
		}
	}
}
