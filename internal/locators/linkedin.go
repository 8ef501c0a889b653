// Package locators centralizes the CSS selectors for LinkedIn surfaces.
// LinkedIn ships UI variants to different accounts, so most lookups are
// ordered candidate lists tried first to last.
package locators

// Top navigation.
const (
	JobsTab     = `a[href*="/jobs/"][data-test-app-aware-link], a.global-nav__primary-link[href*="/jobs"]`
	GlobalNav   = `div.global-nav__content`
	ProfilePhoto = `img.global-nav__me-photo`
)

// FeedSelectors detect a logged-in session landing page. Any match counts.
var FeedSelectors = []string{
	`div.feed-identity-module`,
	`main.scaffold-layout__main`,
	`div[data-test-id="feed-container"]`,
	GlobalNav,
}

// Login form.
const (
	LoginEmailInput    = `input#username`
	LoginPasswordInput = `input#password`
	LoginSubmitButton  = `button[type="submit"][data-litms-control-urn], button.btn__primary--large[type="submit"]`
)

// CaptchaSelectors mark challenge interstitials. Any match means a human
// or solver service has to intervene.
var CaptchaSelectors = []string{
	`iframe[src*="captcha"]`,
	`iframe[title*="reCAPTCHA"]`,
	`div#captcha-internal`,
	`form#captcha-challenge`,
	`img#captcha`,
}

// Job search page.
const (
	SearchKeywordInput  = `input[aria-label*="Search by title"], input.jobs-search-box__text-input[name="keywords"]`
	SearchLocationInput = `input[aria-label*="City, state"], input.jobs-search-box__text-input[name="location"]`
	SearchButton        = `button.jobs-search-box__submit-button`
)

// Results list and job detail pane.
const (
	JobCardList       = `ul.scaffold-layout__list-container > li, li.jobs-search-results__list-item`
	JobCardLink       = `a.job-card-list__title, a.job-card-container__link`
	JobTitleHeader    = `h1.job-details-jobs-unified-top-card__job-title, h1.jobs-unified-top-card__job-title`
	CompanyNameLink   = `a.job-details-jobs-unified-top-card__company-name, span.jobs-unified-top-card__company-name a`
	JobDescription    = `div.jobs-description__content, article.jobs-description__container`
	EasyApplyButton   = `button.jobs-apply-button[data-job-id], button.jobs-apply-button`
	ExternalApplyLink = `button[aria-label*="Apply on company website"]`
)

// Easy Apply modal.
const (
	ApplyModal         = `div.jobs-easy-apply-modal, div[data-test-modal][role="dialog"]`
	ModalNextButton    = `button[aria-label="Continue to next step"], button[data-easy-apply-next-button]`
	ModalReviewButton  = `button[aria-label="Review your application"]`
	ModalSubmitButton  = `button[aria-label="Submit application"]`
	ModalDismissButton = `button[aria-label="Dismiss"]`
	ModalDiscardButton = `button[data-control-name="discard_application_confirm_btn"]`
	UploadInput        = `input[type="file"][id*="jobs-document-upload"], input[type="file"]`
)
