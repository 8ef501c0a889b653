package browser

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Options configures the browser session.
type Options struct {
	Width      int
	Height     int
	Headless   bool
	Stealth    bool   // apply the stealth evasion script to every page
	ProfileDir string // Chrome/Chromium profile directory for authenticated sessions
	Timeout    time.Duration
}

// Session wraps the Rod browser and the single page the agents work on.
type Session struct {
	browser *rod.Browser
	page    *rod.Page
	opts    Options
	logger  *slog.Logger
}

// Open launches a browser and creates the working page. The caller owns
// the returned session and must Close it.
func Open(opts Options, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Width == 0 {
		opts.Width = 1280
	}
	if opts.Height == 0 {
		opts.Height = 720
	}

	path, _ := launcher.LookPath()
	l := launcher.New().Bin(path).Headless(opts.Headless)
	if opts.ProfileDir != "" {
		l = l.UserDataDir(opts.ProfileDir)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	var page *rod.Page
	if opts.Stealth {
		page, err = stealth.Page(browser)
	} else {
		page, err = browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             opts.Width,
		Height:            opts.Height,
		DeviceScaleFactor: 1,
	}); err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to set viewport: %w", err)
	}

	logger.Info("browser session opened",
		"headless", opts.Headless,
		"stealth", opts.Stealth,
		"viewport", fmt.Sprintf("%dx%d", opts.Width, opts.Height))

	return &Session{browser: browser, page: page, opts: opts, logger: logger}, nil
}

// Close releases the page and browser.
func (s *Session) Close() {
	if s.page != nil {
		s.page.Close()
	}
	if s.browser != nil {
		s.browser.Close()
	}
}

// Page returns the underlying Rod page.
func (s *Session) Page() *rod.Page {
	return s.page
}

// Navigate loads a URL and waits for the page to settle. Network idle is
// bounded by a short timeout so persistent connections (websockets,
// polling feeds) never hang the session.
func (s *Session) Navigate(url string) error {
	if err := s.page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := s.page.WaitLoad(); err != nil {
		return fmt.Errorf("page load failed for %s: %w", url, err)
	}
	s.page.Timeout(5 * time.Second).WaitRequestIdle(500*time.Millisecond, nil, nil, nil)()
	s.logger.Debug("navigated", "url", url)
	return nil
}

// WaitSettled waits for in-flight navigation and rendering triggered by a
// previous action. Used after clicks that may swap page content in place.
func (s *Session) WaitSettled() {
	s.page.MustWaitLoad()
	s.page.Timeout(5 * time.Second).WaitRequestIdle(500*time.Millisecond, nil, nil, nil)()
	waitForInteractiveElements(s.page, 5*time.Second)
}

// CurrentURL returns the page's current location.
func (s *Session) CurrentURL() (string, error) {
	res, err := s.page.Eval(`() => window.location.href`)
	if err != nil {
		return "", fmt.Errorf("failed to read location: %w", err)
	}
	return res.Value.String(), nil
}

// Title returns the current document title.
func (s *Session) Title() (string, error) {
	res, err := s.page.Eval(`() => document.title`)
	if err != nil {
		return "", fmt.Errorf("failed to read title: %w", err)
	}
	return res.Value.String(), nil
}

// waitForInteractiveElements polls until interactive elements appear or
// the timeout elapses. SPAs need time to download bundles, hydrate, and
// fetch client-side data before anything is clickable.
func waitForInteractiveElements(page *rod.Page, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	checkInterval := 200 * time.Millisecond

	for time.Now().Before(deadline) {
		count := page.MustEval(`() => {
			const buttons = document.querySelectorAll('button, [role="button"], input[type="submit"]');
			const inputs = document.querySelectorAll('input:not([type="hidden"]), textarea');
			const links = document.querySelectorAll('a[href]');
			let visible = 0;
			buttons.forEach(el => { if (el.offsetParent) visible++; });
			inputs.forEach(el => { if (el.offsetParent) visible++; });
			links.forEach(el => { if (el.offsetParent) visible++; });
			return visible;
		}`).Int()

		if count > 0 {
			// Found elements, wait a tiny bit more for any final renders
			time.Sleep(300 * time.Millisecond)
			return
		}

		time.Sleep(checkInterval)
	}
}
