package verify

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync/atomic"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Test identifiers and expectations for the dummy page
const (
	DummyTextTestID   = "dummy-text"
	ButtonGroupTestID = "test-btn"
	AlertMessage      = "Test Message"
	AlertDialogType   = "alert"
)

// dialogSettle is how long the alert check keeps listening after the first
// dialog before concluding that no further dialog follows the click.
const dialogSettle = 300 * time.Millisecond

// Check names, in execution order
const (
	CheckTitle          = "has title"
	CheckText           = "has text"
	CheckSubmitDisabled = "submit button is disabled"
	CheckAlert          = "clicking on test button displays alert"
)

var (
	titlePattern        = regexp.MustCompile(`GH Automation Setup and Testing Page`)
	textPattern         = regexp.MustCompile(`This is a dummy test page`)
	submitButtonPattern = regexp.MustCompile(`[Ss]ubmit`)
	testButtonPattern   = regexp.MustCompile(`[Tt]est`)
)

var (
	// ErrNoDialog is returned when clicking the test button opens no dialog in time
	ErrNoDialog = errors.New("no dialog appeared")
	// ErrUnexpectedDialog is returned when the dialog type or message differs
	ErrUnexpectedDialog = errors.New("unexpected dialog")
	// ErrExtraDialog is returned when one click opens more than one dialog
	ErrExtraDialog = errors.New("more than one dialog")
)

// Check is a single independent assertion against the shared page
type Check struct {
	Name string
	Run  func(ctx context.Context, page playwright.Page) error
}

// DefaultChecks returns the page checks in the order they must run.
// timeout bounds every assertion and the wait for the alert dialog.
func DefaultChecks(timeout time.Duration) []Check {
	expect := playwright.NewPlaywrightAssertions(millis(timeout))

	return []Check{
		HasTitle(expect),
		HasText(expect),
		SubmitDisabled(expect),
		AlertOnTestClick(timeout),
	}
}

// HasTitle asserts the document title
func HasTitle(expect playwright.PlaywrightAssertions) Check {
	return Check{
		Name: CheckTitle,
		Run: func(_ context.Context, page playwright.Page) error {
			return expect.Page(page).ToHaveTitle(titlePattern)
		},
	}
}

// HasText asserts the content of the dummy text node
func HasText(expect playwright.PlaywrightAssertions) Check {
	return Check{
		Name: CheckText,
		Run: func(_ context.Context, page playwright.Page) error {
			return expect.Locator(page.GetByTestId(DummyTextTestID)).ToHaveText(textPattern)
		},
	}
}

// SubmitDisabled asserts that the submit control cannot be activated
func SubmitDisabled(expect playwright.PlaywrightAssertions) Check {
	return Check{
		Name: CheckSubmitDisabled,
		Run: func(_ context.Context, page playwright.Page) error {
			return expect.Locator(SubmitButton(page)).ToBeDisabled()
		},
	}
}

// AlertOnTestClick clicks the test control and expects exactly one dialog,
// the test alert. Every dialog is accepted so the page is not left blocked.
func AlertOnTestClick(timeout time.Duration) Check {
	return Check{
		Name: CheckAlert,
		Run: func(ctx context.Context, page playwright.Page) error {
			click := func() error { return TestButton(page).Click() }
			return expectSingleAlert(ctx, page, click, timeout, dialogSettle)
		},
	}
}

// expectSingleAlert listens for dialogs while click runs. It waits up to
// timeout for the first one, then settle for any that follow.
func expectSingleAlert(ctx context.Context, page playwright.Page, click func() error, timeout, settle time.Duration) error {
	var count atomic.Int32
	first := make(chan dialogEvent, 1)
	handler := func(dialog playwright.Dialog) {
		event := dialogEvent{kind: dialog.Type(), message: dialog.Message()}
		event.acceptErr = dialog.Accept()
		if count.Add(1) == 1 {
			first <- event
		}
	}
	page.On("dialog", handler)
	defer page.RemoveListener("dialog", handler)

	if err := click(); err != nil {
		return fmt.Errorf("click test button: %w", err)
	}

	var event dialogEvent
	select {
	case event = <-first:
	case <-time.After(timeout):
		return fmt.Errorf("%w within %s", ErrNoDialog, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := event.validate(); err != nil {
		return err
	}

	select {
	case <-time.After(settle):
	case <-ctx.Done():
		return ctx.Err()
	}
	if n := count.Load(); n != 1 {
		return fmt.Errorf("%w: %d dialogs after one click", ErrExtraDialog, n)
	}
	return nil
}

// TestButton locates the enabled control inside the button group
func TestButton(page playwright.Page) playwright.Locator {
	return page.GetByTestId(ButtonGroupTestID).GetByText(testButtonPattern)
}

// SubmitButton locates the disabled control inside the button group
func SubmitButton(page playwright.Page) playwright.Locator {
	return page.GetByTestId(ButtonGroupTestID).GetByText(submitButtonPattern)
}

type dialogEvent struct {
	kind      string
	message   string
	acceptErr error
}

func (e dialogEvent) validate() error {
	if e.acceptErr != nil {
		return fmt.Errorf("accept dialog: %w", e.acceptErr)
	}
	if e.kind != AlertDialogType {
		return fmt.Errorf("%w: type %q, want %q", ErrUnexpectedDialog, e.kind, AlertDialogType)
	}
	if e.message != AlertMessage {
		return fmt.Errorf("%w: message %q, want %q", ErrUnexpectedDialog, e.message, AlertMessage)
	}
	return nil
}

// millis converts d to the float milliseconds playwright options take
func millis(d time.Duration) float64 {
	return float64(d.Milliseconds())
}
