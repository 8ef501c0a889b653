// Package linkedin drives the LinkedIn jobs flow: reach the jobs tab,
// search, walk the result list, and apply.
package linkedin

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/agents/formfiller"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/agents/tracker"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/browser"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/locators"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/models"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/storage"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/timing"
)

const jobsURL = "https://www.linkedin.com/jobs/"

const agentName = "linkedin"

// Agent runs the jobs flow on a logged-in session.
type Agent struct {
	session *browser.Session
	actor   *browser.Actor
	filler  *formfiller.Filler
	store   *storage.CSVStore
	track   *tracker.Tracker
	logger  *slog.Logger

	easyApplyOnly bool

	sanitizer   *bluemonday.Policy
	mdConverter *converter.Converter
}

// New wires the agent.
func New(session *browser.Session, actor *browser.Actor, filler *formfiller.Filler,
	store *storage.CSVStore, track *tracker.Tracker, easyApplyOnly bool, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		session: session, actor: actor, filler: filler,
		store: store, track: track, easyApplyOnly: easyApplyOnly, logger: logger,
		sanitizer: bluemonday.UGCPolicy(),
		mdConverter: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// GoToJobsTab reaches the jobs surface, preferring the navigation link so
// the session behaves like a person, with a direct navigate as fallback.
// The landing URL is verified before returning.
func (a *Agent) GoToJobsTab(ctx context.Context) error {
	var lastErr error
	for attempt := 0; attempt < timing.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(timing.Backoff(attempt - 1))
		}

		if err := a.actor.Click(locators.JobsTab); err != nil {
			a.logger.Debug("jobs tab click failed, navigating directly", "error", err)
			if err := a.session.Navigate(jobsURL); err != nil {
				lastErr = err
				continue
			}
		}
		a.session.WaitSettled()

		url, err := a.session.CurrentURL()
		if err != nil {
			lastErr = err
			continue
		}
		if strings.Contains(url, "/jobs") {
			a.track.Log(agentName, "", tracker.TypeNavigation, "jobs tab", tracker.StatusOK)
			return nil
		}
		lastErr = fmt.Errorf("expected a /jobs url, got %s", url)
	}

	a.track.Log(agentName, "", tracker.TypeNavigation, "jobs tab", tracker.StatusFailed)
	return fmt.Errorf("could not reach jobs tab: %w", lastErr)
}

// SearchJobs fills the keyword and location boxes and submits.
func (a *Agent) SearchJobs(ctx context.Context, keywords, location string) error {
	if keywords == "" {
		return fmt.Errorf("search keywords required")
	}

	if err := a.actor.Type(locators.SearchKeywordInput, keywords); err != nil {
		return fmt.Errorf("failed to fill keywords: %w", err)
	}
	if location != "" {
		if err := a.actor.Type(locators.SearchLocationInput, location); err != nil {
			a.logger.Warn("location box not fillable, searching by keywords only", "error", err)
		}
	}

	if err := a.session.Page().Keyboard.Type(input.Enter); err != nil {
		return fmt.Errorf("failed to submit search: %w", err)
	}
	a.session.WaitSettled()

	a.track.Log(agentName, "", tracker.TypeSearch,
		fmt.Sprintf("%s / %s", keywords, location), tracker.StatusOK)
	return nil
}

// ProcessListings walks the result list and applies to up to maxApps
// postings. Already-applied jobs are skipped via the store.
func (a *Agent) ProcessListings(ctx context.Context, maxApps int) (applied int, err error) {
	cards, err := a.session.Page().Elements(locators.JobCardList)
	if err != nil {
		return 0, fmt.Errorf("no job cards found: %w", err)
	}
	a.logger.Info("processing search results", "cards", len(cards), "max_applications", maxApps)

	for _, card := range cards {
		if applied >= maxApps {
			break
		}
		if err := ctx.Err(); err != nil {
			return applied, err
		}

		ok, procErr := a.processCard(ctx, card)
		if procErr != nil {
			a.logger.Warn("card processing failed", "error", procErr)
			a.track.Log(agentName, "", tracker.TypeError, procErr.Error(), tracker.StatusFailed)
			continue
		}
		if ok {
			applied++
		}
		time.Sleep(timing.BetweenJobsDelay)
	}
	return applied, nil
}

func (a *Agent) processCard(ctx context.Context, card *rod.Element) (bool, error) {
	link, err := card.Element(locators.JobCardLink)
	if err != nil {
		return false, fmt.Errorf("card has no job link: %w", err)
	}
	if err := a.actor.ClickElement(link); err != nil {
		return false, fmt.Errorf("failed to open job detail: %w", err)
	}
	a.session.WaitSettled()

	job, err := a.extractJobDetails(ctx)
	if err != nil {
		return false, err
	}

	done, err := a.store.HasApplied(job.ID)
	if err != nil {
		return false, err
	}
	if done {
		a.logger.Info("already applied, skipping", "job_id", job.ID, "title", job.Title)
		return false, nil
	}

	if !job.EasyApply {
		return a.handleExternal(job)
	}
	return a.handleEasyApply(ctx, job)
}

func (a *Agent) handleEasyApply(ctx context.Context, job models.JobPosting) (bool, error) {
	if err := a.actor.Click(locators.EasyApplyButton); err != nil {
		return false, fmt.Errorf("easy apply button not clickable: %w", err)
	}

	result, err := a.filler.FillEasyApply(ctx, job)
	now := time.Now().UTC()
	rec := models.ApplicationRecord{
		ID:        uuid.NewString(),
		JobID:     job.ID,
		JobTitle:  job.Title,
		Company:   job.Company.Name,
		URL:       job.URL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	switch {
	case err != nil:
		rec.Status = models.StatusFailed
		rec.Reason = result.Reason
	case result.Submitted:
		rec.Status = models.StatusApplied
	default:
		rec.Status = models.StatusSkipped
		rec.Reason = result.Reason
	}

	if saveErr := a.store.Append(rec); saveErr != nil {
		a.logger.Error("failed to save application record", "error", saveErr)
	}
	a.track.Log(agentName, job.ID, tracker.TypeApplication, rec.Status, trackerStatus(rec.Status))

	if err != nil {
		return false, err
	}
	return result.Submitted, nil
}

// handleExternal records off-platform postings for manual follow-up and,
// when easyApplyOnly is off, still counts them as handled.
func (a *Agent) handleExternal(job models.JobPosting) (bool, error) {
	now := time.Now().UTC()
	rec := models.ApplicationRecord{
		ID:        uuid.NewString(),
		JobID:     job.ID,
		JobTitle:  job.Title,
		Company:   job.Company.Name,
		URL:       job.URL,
		Status:    models.StatusExternal,
		Reason:    "application hosted off-platform",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.store.Append(rec); err != nil {
		return false, err
	}
	a.track.Log(agentName, job.ID, tracker.TypeApplication, "external apply saved", tracker.StatusSkipped)
	a.logger.Info("external posting saved for manual follow-up", "job_id", job.ID, "title", job.Title)
	return !a.easyApplyOnly, nil
}

var jobIDRe = regexp.MustCompile(`/jobs/view/(\d+)`)

// extractJobDetails reads the open detail pane into a JobPosting. The
// description HTML is sanitized and converted to markdown.
func (a *Agent) extractJobDetails(ctx context.Context) (models.JobPosting, error) {
	page := a.session.Page()

	url, err := a.session.CurrentURL()
	if err != nil {
		return models.JobPosting{}, err
	}

	job := models.JobPosting{URL: url, ScrapedAt: time.Now().UTC()}
	if m := jobIDRe.FindStringSubmatch(url); m != nil {
		job.ID = m[1]
	} else {
		job.ID = uuid.NewString()
	}

	if el, err := page.Timeout(5 * time.Second).Element(locators.JobTitleHeader); err == nil {
		if txt, err := el.Text(); err == nil {
			job.Title = strings.TrimSpace(txt)
		}
	}
	if job.Title == "" {
		return job, fmt.Errorf("job detail pane has no title")
	}

	if el, err := page.Timeout(3 * time.Second).Element(locators.CompanyNameLink); err == nil {
		if txt, err := el.Text(); err == nil {
			job.Company.Name = strings.TrimSpace(txt)
		}
		if href, err := el.Attribute("href"); err == nil && href != nil {
			job.Company.URL = *href
		}
	}

	if el, err := page.Timeout(3 * time.Second).Element(locators.JobDescription); err == nil {
		if html, err := el.HTML(); err == nil {
			job.Description, err = a.descriptionMarkdown(html)
			if err != nil {
				a.logger.Warn("description conversion failed", "job_id", job.ID, "error", err)
			}
		}
	}

	hasEasy, _, _ := page.Has(locators.EasyApplyButton)
	job.EasyApply = hasEasy

	return job, nil
}

// descriptionMarkdown sanitizes scraped HTML, then converts it to
// markdown for storage and prompting.
func (a *Agent) descriptionMarkdown(html string) (string, error) {
	clean := a.sanitizer.Sanitize(html)
	md, err := a.mdConverter.ConvertString(clean)
	if err != nil {
		return "", fmt.Errorf("markdown conversion: %w", err)
	}
	return strings.TrimSpace(md), nil
}

func trackerStatus(appStatus string) string {
	switch appStatus {
	case models.StatusApplied:
		return tracker.StatusOK
	case models.StatusSkipped, models.StatusExternal:
		return tracker.StatusSkipped
	default:
		return tracker.StatusFailed
	}
}
