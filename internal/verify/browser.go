package verify

import (
	"errors"
	"fmt"
	"log"

	"github.com/ghautomation/testpage/internal/config"
	"github.com/playwright-community/playwright-go"
)

// Session owns a running playwright driver and one launched browser
type Session struct {
	pw      *playwright.Playwright
	Browser playwright.Browser
}

// Install downloads the playwright driver and the named browser
func Install(browserName string) error {
	if err := playwright.Install(&playwright.RunOptions{Browsers: []string{browserName}}); err != nil {
		return fmt.Errorf("could not install playwright %s: %w", browserName, err)
	}
	return nil
}

// Launch starts playwright and the browser selected by cfg
func Launch(cfg *config.VerifyConfig) (*Session, error) {
	if cfg.Install {
		if err := Install(cfg.Browser); err != nil {
			return nil, err
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	browserType, err := selectBrowserType(pw, cfg.Browser)
	if err != nil {
		pw.Stop()
		return nil, err
	}

	browser, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("could not launch %s: %w", cfg.Browser, err)
	}

	log.Printf("Launched %s (headless=%t, version %s)", cfg.Browser, cfg.Headless, browser.Version())

	return &Session{pw: pw, Browser: browser}, nil
}

func selectBrowserType(pw *playwright.Playwright, name string) (playwright.BrowserType, error) {
	switch name {
	case config.BrowserChromium:
		return pw.Chromium, nil
	case config.BrowserFirefox:
		return pw.Firefox, nil
	case config.BrowserWebKit:
		return pw.WebKit, nil
	default:
		return nil, fmt.Errorf("unsupported browser %q", name)
	}
}

// Close shuts down the browser and then the driver
func (s *Session) Close() error {
	var errs []error
	if s.Browser != nil {
		if err := s.Browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop playwright: %w", err))
		}
	}
	return errors.Join(errs...)
}
