// Package orchestrator wires the agents together and runs the master
// plan for a session.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/agents/credentials"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/agents/cvparser"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/agents/formfiller"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/agents/linkedin"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/agents/navigator"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/agents/tracker"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/ai"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/browser"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/config"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/models"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/screenshot"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/storage"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/telemetry"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/timing"
)

// Controller owns the session lifecycle and the agents.
type Controller struct {
	cfg    *config.Config
	logger *slog.Logger

	session  *browser.Session
	actor    *browser.Actor
	domSvc   *browser.DOMService
	capturer *screenshot.Capturer

	provider ai.Provider // nil when no API key is configured
	creds    *credentials.Agent
	jobs     *linkedin.Agent
	nav      *navigator.Navigator // nil without a provider
	track    *tracker.Tracker
	store    *storage.CSVStore
	events   *telemetry.Store

	cv      models.CVData
	profile models.UserProfile
}

// New prepares a controller from configuration. The browser is not
// launched until StartSession.
func New(cfg *config.Config, logger *slog.Logger) (*Controller, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.EnsureDirs(); err != nil {
		return nil, err
	}

	c := &Controller{cfg: cfg, logger: logger}

	var err error
	if c.track, err = tracker.New(cfg.Storage.DataDir+"/activity.csv", logger); err != nil {
		return nil, err
	}
	if c.store, err = storage.NewCSVStore(cfg.Storage.DataDir, "applications.csv", false); err != nil {
		return nil, err
	}
	if c.events, err = telemetry.Open(cfg.Telemetry.DBPath); err != nil {
		return nil, err
	}

	c.provider, err = buildProvider(cfg)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func buildProvider(cfg *config.Config) (ai.Provider, error) {
	opts := ai.Options{Model: cfg.AI.Model, MaxTokens: cfg.AI.MaxTokens}
	switch cfg.AI.Provider {
	case "claude", "":
		if cfg.AI.AnthropicKey == "" {
			return nil, nil
		}
		opts.APIKey = cfg.AI.AnthropicKey
		return ai.NewProvider("claude", opts)
	case "openai":
		if cfg.AI.OpenAIKey == "" {
			return nil, nil
		}
		opts.APIKey = cfg.AI.OpenAIKey
		return ai.NewProvider("openai", opts)
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.AI.Provider)
	}
}

// Tracker exposes the activity log for the status server.
func (c *Controller) Tracker() *tracker.Tracker { return c.track }

// Events exposes the telemetry store for the status server.
func (c *Controller) Events() *telemetry.Store { return c.events }

// ParseCV loads the configured CV before the browser starts.
func (c *Controller) ParseCV(ctx context.Context) error {
	if c.cfg.Storage.CVPath == "" {
		return fmt.Errorf("storage.cv_path not configured")
	}
	parser := cvparser.New(c.provider, c.logger)
	cv, err := parser.Parse(ctx, c.cfg.Storage.CVPath)
	if err != nil {
		return fmt.Errorf("cv parsing failed: %w", err)
	}
	c.cv = cv
	c.logger.Info("cv loaded", "name", cv.FullName, "skills", len(cv.Skills))
	return nil
}

// SetProfile installs the screening-question answers.
func (c *Controller) SetProfile(p models.UserProfile) { c.profile = p }

// StartSession launches the browser and wires the page-bound agents.
func (c *Controller) StartSession(ctx context.Context) error {
	session, err := browser.Open(browser.Options{
		Width:      c.cfg.Browser.Width,
		Height:     c.cfg.Browser.Height,
		Headless:   c.cfg.Browser.Headless,
		Stealth:    c.cfg.Browser.Stealth,
		ProfileDir: c.cfg.Browser.ProfileDir,
		Timeout:    c.cfg.Browser.Timeout,
	}, c.logger)
	if err != nil {
		return err
	}
	c.session = session
	c.actor = browser.NewActor(session.Page(), c.cfg.Browser.MinDelay, c.cfg.Browser.MaxDelay)
	c.domSvc = browser.NewDOMService(session.Page(), c.logger)
	c.capturer = screenshot.NewCapturer(session.Page(), screenshot.Options{
		Dir: c.cfg.Storage.ScreenshotDir,
	})

	var solver *credentials.CaptchaSolver
	if c.cfg.AI.CaptchaAPIKey != "" {
		solver = credentials.NewCaptchaSolver(c.cfg.AI.CaptchaAPIKey)
	}
	c.creds = credentials.New(session, c.actor, solver,
		c.cfg.LinkedIn.Email, c.cfg.LinkedIn.Password, c.logger)

	filler := formfiller.New(session.Page(), c.actor, c.provider,
		c.cv, c.profile, c.cfg.Storage.CVPath, c.logger)
	c.jobs = linkedin.New(session, c.actor, filler, c.store, c.track,
		c.cfg.LinkedIn.EasyApplyOnly, c.logger)

	if c.provider != nil {
		c.nav = navigator.New(session, c.actor, c.domSvc, c.provider,
			c.cfg.DOM.MaxHighlight, c.cfg.DOM.HighlightPages, c.logger)
	}

	c.events.Record(ctx, "controller", telemetry.KindSessionStart, "", "")
	return nil
}

// Close tears the session down.
func (c *Controller) Close() {
	if c.session != nil {
		c.session.Close()
	}
	if c.events != nil {
		c.events.Record(context.Background(), "controller", telemetry.KindSessionEnd, "", "")
		c.events.Close()
	}
}

// RunMasterPlan executes the full flow: login, jobs tab, search, apply.
// Stage failures retry with backoff before aborting the run.
func (c *Controller) RunMasterPlan(ctx context.Context) error {
	if c.session == nil {
		return fmt.Errorf("session not started")
	}

	stages := []struct {
		name string
		goal string
		run  func(context.Context) error
	}{
		{"login", "", c.creds.EnsureLoggedIn},
		{"jobs tab", "Open the Jobs section of the site", c.jobs.GoToJobsTab},
		{"search", fmt.Sprintf("Search job postings for %q in %q",
			c.cfg.LinkedIn.SearchTerm, c.cfg.LinkedIn.Location),
			func(ctx context.Context) error {
				return c.jobs.SearchJobs(ctx, c.cfg.LinkedIn.SearchTerm, c.cfg.LinkedIn.Location)
			}},
	}

	for _, stage := range stages {
		if err := c.runStage(ctx, stage.name, stage.goal, stage.run); err != nil {
			return err
		}
	}

	applied, err := c.jobs.ProcessListings(ctx, c.cfg.LinkedIn.MaxApplications)
	c.events.Record(ctx, "controller", telemetry.KindApplication, "",
		fmt.Sprintf("applied to %d postings", applied))
	c.logger.Info("run finished", "applied", applied)

	if c.capturer != nil {
		if path, shotErr := c.capturer.Save("run_end"); shotErr == nil {
			c.logger.Info("final screenshot saved", "path", path)
		}
	}
	return err
}

// runStage retries the scripted stage with backoff; when retries are
// exhausted and a stage goal is set, the AI navigator gets one attempt
// before the run aborts.
func (c *Controller) runStage(ctx context.Context, name, goal string, run func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < timing.MaxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("retrying stage", "stage", name, "attempt", attempt+1)
			time.Sleep(timing.Backoff(attempt - 1))
		}
		if lastErr = run(ctx); lastErr == nil {
			c.events.Record(ctx, "controller", telemetry.KindNavigation, "", name+" ok")
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	if c.nav != nil && goal != "" {
		c.logger.Warn("stage exhausted retries, handing to navigator",
			"stage", name, "error", lastErr)
		navErr := c.nav.RunGoal(ctx, goal)
		if navErr == nil {
			c.events.Record(ctx, "controller", telemetry.KindNavigation, "", name+" ok (navigator)")
			return nil
		}
		c.logger.Error("navigator fallback failed", "stage", name, "error", navErr)
	}

	c.events.Record(ctx, "controller", telemetry.KindError, "",
		fmt.Sprintf("stage %s failed: %v", name, lastErr))
	return fmt.Errorf("stage %s failed: %w", name, lastErr)
}
