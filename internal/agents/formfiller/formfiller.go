// Package formfiller completes application forms, including LinkedIn's
// multi-step Easy Apply modal.
package formfiller

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/ai"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/browser"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/locators"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/models"
)

// Field kinds the filler understands.
const (
	kindText        = "text"
	kindTextarea    = "textarea"
	kindSelect      = "select"
	kindCheckbox    = "checkbox"
	kindRadio       = "radio"
	kindUpload      = "upload"
	kindCoverLetter = "cover_letter"
)

// maxSteps bounds the Easy Apply walk so a looping modal can never hang
// the run.
const maxSteps = 10

// Filler fills application forms from the candidate's data.
type Filler struct {
	page     *rod.Page
	actor    *browser.Actor
	provider ai.Provider
	logger   *slog.Logger

	cv      models.CVData
	profile models.UserProfile
	cvPath  string
}

// New creates a filler. provider may be nil, in which case cover letter
// fields are left blank.
func New(page *rod.Page, actor *browser.Actor, provider ai.Provider,
	cv models.CVData, profile models.UserProfile, cvPath string, logger *slog.Logger) *Filler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Filler{
		page: page, actor: actor, provider: provider,
		cv: cv, profile: profile, cvPath: cvPath, logger: logger,
	}
}

// Result reports how an Easy Apply attempt ended.
type Result struct {
	Submitted bool
	Reason    string
}

// FillEasyApply walks the Easy Apply modal step by step until the
// application submits, a disqualifying question forces a skip, or the
// step budget runs out. On any non-submit outcome the modal is
// discarded so the next job starts clean.
func (f *Filler) FillEasyApply(ctx context.Context, job models.JobPosting) (Result, error) {
	for step := 0; step < maxSteps; step++ {
		if err := ctx.Err(); err != nil {
			f.discard()
			return Result{Reason: "canceled"}, err
		}

		modal, err := f.page.Timeout(10 * time.Second).Element(locators.ApplyModal)
		if err != nil {
			return Result{Reason: "modal not found"}, fmt.Errorf("easy apply modal missing: %w", err)
		}

		skip, reason, err := f.fillVisibleFields(ctx, modal, job)
		if err != nil {
			f.discard()
			return Result{Reason: reason}, err
		}
		if skip {
			f.discard()
			f.logger.Info("application skipped", "job_id", job.ID, "reason", reason)
			return Result{Reason: reason}, nil
		}

		// Submit > review > next, first one present wins.
		if f.clickIfPresent(modal, locators.ModalSubmitButton) {
			f.logger.Info("application submitted", "job_id", job.ID, "steps", step+1)
			f.dismiss()
			return Result{Submitted: true}, nil
		}
		if f.clickIfPresent(modal, locators.ModalReviewButton) {
			continue
		}
		if f.clickIfPresent(modal, locators.ModalNextButton) {
			continue
		}

		f.discard()
		return Result{Reason: "no actionable button in modal"},
			fmt.Errorf("easy apply modal offered no next, review, or submit button")
	}

	f.discard()
	return Result{Reason: "too many steps"},
		fmt.Errorf("easy apply exceeded %d steps", maxSteps)
}

// fillVisibleFields answers every field on the current modal step. It
// returns skip=true when a required question disqualifies the candidate.
func (f *Filler) fillVisibleFields(ctx context.Context, modal *rod.Element, job models.JobPosting) (skip bool, reason string, err error) {
	fields, err := collectFields(modal)
	if err != nil {
		return false, "field scan failed", err
	}

	for _, field := range fields {
		answer, ok := f.answerFor(ctx, field, job)
		if !ok {
			if field.Required {
				return true, fmt.Sprintf("unanswerable required question: %s", field.Label), nil
			}
			f.logger.Debug("optional field skipped", "label", field.Label)
			continue
		}
		if disqualifies(field, answer) {
			return true, fmt.Sprintf("disqualifying question: %s", field.Label), nil
		}
		if err := f.apply(field, answer); err != nil {
			f.logger.Warn("field fill failed", "label", field.Label, "error", err)
			if field.Required {
				return false, "required field fill failed", err
			}
		}
	}
	return false, "", nil
}

// Field is one detected form control.
type Field struct {
	Kind     string
	Label    string
	Selector string
	Options  []string // select and radio
	Required bool
}

// collectFieldsJS inspects the modal's controls, resolving each label
// through its for= attribute or nearest fieldset legend.
const collectFieldsJS = `() => {
	const modal = this;
	const fields = [];
	const labelFor = (el) => {
		if (el.labels && el.labels.length > 0) return el.labels[0].textContent.trim();
		const fs = el.closest('fieldset');
		if (fs) {
			const legend = fs.querySelector('legend, span[aria-hidden="true"]');
			if (legend) return legend.textContent.trim();
		}
		return el.getAttribute('aria-label') || el.placeholder || el.name || '';
	};
	const seenRadioGroups = new Set();
	modal.querySelectorAll('input, textarea, select').forEach(el => {
		if (el.type === 'hidden' || el.disabled) return;
		const required = el.required || el.getAttribute('aria-required') === 'true';
		const base = {
			label: labelFor(el),
			selector: el.id ? '#' + CSS.escape(el.id) : (el.name ? '[name="' + el.name + '"]' : ''),
			required: required,
			options: []
		};
		if (!base.selector) return;
		switch (el.tagName.toLowerCase()) {
		case 'textarea':
			fields.push({...base, kind: 'textarea'});
			break;
		case 'select':
			base.options = Array.from(el.options).map(o => o.textContent.trim());
			fields.push({...base, kind: 'select'});
			break;
		default:
			if (el.type === 'file') {
				fields.push({...base, kind: 'upload'});
			} else if (el.type === 'checkbox') {
				fields.push({...base, kind: 'checkbox'});
			} else if (el.type === 'radio') {
				if (seenRadioGroups.has(el.name)) return;
				seenRadioGroups.add(el.name);
				const group = modal.querySelectorAll('input[type="radio"][name="' + el.name + '"]');
				base.options = Array.from(group).map(r => labelFor(r));
				base.selector = '[name="' + el.name + '"]';
				fields.push({...base, kind: 'radio'});
			} else {
				fields.push({...base, kind: 'text'});
			}
		}
	});
	return fields;
}`

func collectFields(modal *rod.Element) ([]Field, error) {
	res, err := modal.Eval(collectFieldsJS)
	if err != nil {
		return nil, fmt.Errorf("failed to scan modal fields: %w", err)
	}

	var fields []Field
	for _, v := range res.Value.Arr() {
		field := Field{
			Kind:     v.Get("kind").String(),
			Label:    v.Get("label").String(),
			Selector: v.Get("selector").String(),
			Required: v.Get("required").Bool(),
		}
		for _, o := range v.Get("options").Arr() {
			field.Options = append(field.Options, o.String())
		}
		if field.Kind == kindTextarea && looksLikeCoverLetter(field.Label) {
			field.Kind = kindCoverLetter
		}
		fields = append(fields, field)
	}
	return fields, nil
}

func looksLikeCoverLetter(label string) bool {
	l := strings.ToLower(label)
	return strings.Contains(l, "cover letter") || strings.Contains(l, "why do you want")
}

// answerFor derives the value for a field from the CV, the profile, or
// the model. ok=false means no answer could be produced.
func (f *Filler) answerFor(ctx context.Context, field Field, job models.JobPosting) (string, bool) {
	label := strings.ToLower(field.Label)

	if field.Kind == kindUpload {
		if f.cvPath == "" {
			return "", false
		}
		return f.cvPath, true
	}
	if field.Kind == kindCoverLetter {
		return f.coverLetter(ctx, job)
	}

	switch {
	case strings.Contains(label, "email"):
		return f.cv.Email, f.cv.Email != ""
	case strings.Contains(label, "phone") || strings.Contains(label, "mobile"):
		return f.cv.Phone, f.cv.Phone != ""
	case strings.Contains(label, "first name"):
		first, _, ok := splitName(f.cv.FullName)
		return first, ok
	case strings.Contains(label, "last name") || strings.Contains(label, "surname"):
		_, last, ok := splitName(f.cv.FullName)
		return last, ok
	case strings.Contains(label, "name"):
		return f.cv.FullName, f.cv.FullName != ""
	case strings.Contains(label, "years of experience") || strings.Contains(label, "years of work"):
		return strconv.Itoa(f.profile.YearsOfExperience), true
	case strings.Contains(label, "visa") || strings.Contains(label, "sponsorship"):
		return yesNo(f.profile.RequiresVisa), true
	case strings.Contains(label, "relocat"):
		return yesNo(f.profile.WillingToRelocate), true
	case strings.Contains(label, "salary") || strings.Contains(label, "compensation"):
		return f.profile.ExpectedSalary, f.profile.ExpectedSalary != ""
	case strings.Contains(label, "notice period") || strings.Contains(label, "start date"):
		return f.profile.NoticePeriod, f.profile.NoticePeriod != ""
	case strings.Contains(label, "city") || strings.Contains(label, "location"):
		return f.cv.Location, f.cv.Location != ""
	}

	for question, answer := range f.profile.CustomAnswers {
		if strings.Contains(label, strings.ToLower(question)) {
			return answer, true
		}
	}
	return "", false
}

// coverLetter asks the provider, retrying once on failure.
func (f *Filler) coverLetter(ctx context.Context, job models.JobPosting) (string, bool) {
	if f.provider == nil {
		return "", false
	}
	for attempt := 0; attempt < 2; attempt++ {
		letter, err := f.provider.GenerateCoverLetter(ctx, f.cv, job)
		if err == nil && strings.TrimSpace(letter) != "" {
			return letter, true
		}
		f.logger.Warn("cover letter generation failed", "attempt", attempt+1, "error", err)
	}
	return "", false
}

// disqualifies marks yes/no screeners whose honest answer rules the
// candidate out, so the application is skipped instead of submitted with
// a false answer.
func disqualifies(field Field, answer string) bool {
	if field.Kind != kindRadio && field.Kind != kindSelect && field.Kind != kindCheckbox {
		return false
	}
	label := strings.ToLower(field.Label)
	switch {
	case strings.Contains(label, "sponsorship") || strings.Contains(label, "visa"):
		// "Will you require sponsorship?" answered yes.
		return strings.EqualFold(answer, "yes")
	case strings.Contains(label, "authorized to work") || strings.Contains(label, "legally eligible"):
		return strings.EqualFold(answer, "no")
	}
	return false
}

// apply writes the answer into the page control.
func (f *Filler) apply(field Field, answer string) error {
	switch field.Kind {
	case kindText, kindTextarea, kindCoverLetter:
		return f.actor.Type(field.Selector, answer)
	case kindSelect:
		el, err := f.page.Element(field.Selector)
		if err != nil {
			return fmt.Errorf("select not found: %w", err)
		}
		return el.Select([]string{answer}, true, rod.SelectorTypeText)
	case kindCheckbox:
		if strings.EqualFold(answer, "yes") || answer == "true" {
			return f.actor.Click(field.Selector)
		}
		return nil
	case kindRadio:
		return f.clickRadio(field, answer)
	case kindUpload:
		el, err := f.page.Element(field.Selector)
		if err != nil {
			return fmt.Errorf("upload input not found: %w", err)
		}
		return el.SetFiles([]string{answer})
	default:
		return fmt.Errorf("unknown field kind %q", field.Kind)
	}
}

// clickRadio clicks the option whose label matches the answer.
func (f *Filler) clickRadio(field Field, answer string) error {
	els, err := f.page.Elements(field.Selector)
	if err != nil {
		return fmt.Errorf("radio group not found: %w", err)
	}
	for i, el := range els {
		if i < len(field.Options) && strings.EqualFold(strings.TrimSpace(field.Options[i]), answer) {
			return f.actor.ClickElement(el)
		}
	}
	return fmt.Errorf("no radio option matching %q", answer)
}

func (f *Filler) clickIfPresent(modal *rod.Element, selector string) bool {
	el, err := modal.Timeout(2 * time.Second).Element(selector)
	if err != nil {
		return false
	}
	if err := f.actor.ClickElement(el); err != nil {
		f.logger.Warn("modal button click failed", "selector", selector, "error", err)
		return false
	}
	return true
}

// dismiss closes the post-submit confirmation.
func (f *Filler) dismiss() {
	if el, err := f.page.Timeout(3 * time.Second).Element(locators.ModalDismissButton); err == nil {
		el.Click(proto.InputMouseButtonLeft, 1)
	}
}

// discard abandons the draft application: dismiss the modal, then
// confirm the discard prompt.
func (f *Filler) discard() {
	f.dismiss()
	if el, err := f.page.Timeout(3 * time.Second).Element(locators.ModalDiscardButton); err == nil {
		el.Click(proto.InputMouseButtonLeft, 1)
	}
}

func splitName(full string) (first, last string, ok bool) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", "", false
	}
	if len(parts) == 1 {
		return parts[0], "", true
	}
	return parts[0], strings.Join(parts[1:], " "), true
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
