// Package credentials logs into LinkedIn and deals with the challenge
// interstitials that show up around login.
package credentials

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/proto"

	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/browser"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/locators"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/timing"
)

const loginURL = "https://www.linkedin.com/login"

// Agent performs login and challenge handling.
type Agent struct {
	session *browser.Session
	actor   *browser.Actor
	solver  *CaptchaSolver // nil means manual solving only
	logger  *slog.Logger

	email    string
	password string
}

// New creates the agent. solver may be nil.
func New(session *browser.Session, actor *browser.Actor, solver *CaptchaSolver,
	email, password string, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		session: session, actor: actor, solver: solver,
		email: email, password: password, logger: logger,
	}
}

// EnsureLoggedIn returns once a logged-in session exists. If the profile
// directory already carries valid cookies, no form is touched.
func (a *Agent) EnsureLoggedIn(ctx context.Context) error {
	if err := a.session.Navigate("https://www.linkedin.com/feed/"); err != nil {
		return err
	}
	if a.isLoggedIn() {
		a.logger.Info("existing session reused")
		return nil
	}
	return a.login(ctx)
}

func (a *Agent) login(ctx context.Context) error {
	if a.email == "" || a.password == "" {
		return fmt.Errorf("linkedin credentials not configured")
	}

	if err := a.session.Navigate(loginURL); err != nil {
		return err
	}

	if err := a.actor.Type(locators.LoginEmailInput, a.email); err != nil {
		return fmt.Errorf("failed to fill email: %w", err)
	}
	if err := a.actor.Type(locators.LoginPasswordInput, a.password); err != nil {
		return fmt.Errorf("failed to fill password: %w", err)
	}
	if err := a.actor.Click(locators.LoginSubmitButton); err != nil {
		return fmt.Errorf("failed to submit login: %w", err)
	}

	time.Sleep(timing.PostLoginWait)
	a.session.WaitSettled()

	if a.DetectCaptcha() {
		a.logger.Warn("captcha challenge after login")
		if err := a.HandleCaptcha(ctx); err != nil {
			return err
		}
		a.session.WaitSettled()
	}

	if !a.isLoggedIn() {
		return fmt.Errorf("login did not reach the feed; check credentials or challenge state")
	}
	a.logger.Info("login successful")
	return nil
}

// isLoggedIn checks for any of the feed markers.
func (a *Agent) isLoggedIn() bool {
	page := a.session.Page()
	for _, sel := range locators.FeedSelectors {
		if has, _, _ := page.Has(sel); has {
			return true
		}
	}
	url, err := a.session.CurrentURL()
	return err == nil && strings.Contains(url, "/feed")
}

// DetectCaptcha reports whether a challenge interstitial is showing.
func (a *Agent) DetectCaptcha() bool {
	page := a.session.Page()
	for _, sel := range locators.CaptchaSelectors {
		if has, _, _ := page.Has(sel); has {
			return true
		}
	}
	url, err := a.session.CurrentURL()
	return err == nil && (strings.Contains(url, "/checkpoint/") || strings.Contains(url, "captcha"))
}

// HandleCaptcha resolves a detected challenge: through the solver service
// when configured with an image challenge, otherwise by waiting for a
// human to solve it in the visible browser window.
func (a *Agent) HandleCaptcha(ctx context.Context) error {
	if a.solver != nil {
		if err := a.solveImageCaptcha(ctx); err == nil {
			return nil
		} else {
			a.logger.Warn("automatic captcha solve failed, waiting for manual solve", "error", err)
		}
	}
	return a.waitForManualSolve(ctx)
}

// solveImageCaptcha screenshots the challenge image, submits it to the
// solver, and types the answer.
func (a *Agent) solveImageCaptcha(ctx context.Context) error {
	page := a.session.Page()
	img, err := page.Element(`img#captcha`)
	if err != nil {
		return fmt.Errorf("no image captcha on page: %w", err)
	}
	shot, err := img.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return fmt.Errorf("failed to capture captcha image: %w", err)
	}

	answer, err := a.solver.SolveImage(ctx, shot)
	if err != nil {
		return err
	}

	if err := a.actor.Type(`input[name="captcha"], input#captcha-answer`, answer); err != nil {
		return fmt.Errorf("failed to enter captcha answer: %w", err)
	}
	if err := a.actor.Click(`button[type="submit"]`); err != nil {
		return fmt.Errorf("failed to submit captcha answer: %w", err)
	}
	a.session.WaitSettled()

	if a.DetectCaptcha() {
		return fmt.Errorf("captcha still present after solver answer")
	}
	a.logger.Info("captcha solved via service")
	return nil
}

// waitForManualSolve polls until the challenge disappears or the wait
// budget runs out.
func (a *Agent) waitForManualSolve(ctx context.Context) error {
	a.logger.Info("waiting for manual captcha solve", "timeout", timing.ManualSolveWait)
	deadline := time.Now().Add(timing.ManualSolveWait)
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !a.DetectCaptcha() {
				a.logger.Info("captcha cleared")
				return nil
			}
		}
	}
	return fmt.Errorf("captcha unsolved after %s", timing.ManualSolveWait)
}
