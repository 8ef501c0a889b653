// Package cvparser extracts text from an uploaded CV and turns it into
// the structured data the form filler consumes.
package cvparser

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/ai"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/models"
)

// Parser turns CV files into models.CVData. When an AI provider is
// available it structures the text; otherwise a heuristic pass recovers
// the contact fields.
type Parser struct {
	provider ai.Provider
	logger   *slog.Logger
}

// New creates a parser. provider may be nil.
func New(provider ai.Provider, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{provider: provider, logger: logger}
}

// Parse extracts and structures the CV at path.
func (p *Parser) Parse(ctx context.Context, path string) (models.CVData, error) {
	rawText, err := ExtractText(path)
	if err != nil {
		return models.CVData{}, err
	}

	if p.provider != nil {
		cv, err := p.provider.StructureCV(ctx, rawText)
		if err == nil {
			p.logger.Info("cv structured", "path", path, "skills", len(cv.Skills))
			return cv, nil
		}
		p.logger.Warn("cv structuring failed, falling back to heuristics", "error", err)
	}

	cv := basicParse(rawText)
	if cv.Email == "" && cv.Phone == "" {
		return cv, fmt.Errorf("could not recover contact details from %s", path)
	}
	return cv, nil
}

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?[0-9][0-9 ().\-]{7,}[0-9]`)
)

// basicParse recovers what it can from raw text without a model: contact
// details by regex, the name from the first plausible line, and skills
// from a "Skills" section if one exists.
func basicParse(rawText string) models.CVData {
	cv := models.CVData{RawText: rawText}

	cv.Email = emailRe.FindString(rawText)
	cv.Phone = strings.TrimSpace(phoneRe.FindString(rawText))

	lines := strings.Split(rawText, "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "@") {
			continue
		}
		// A name line is short and has no digits.
		if len(line) <= 60 && !strings.ContainsAny(line, "0123456789") {
			cv.FullName = line
		}
		break
	}

	if idx := findSectionIndex(lines, "skills"); idx >= 0 {
		for _, line := range lines[idx+1:] {
			line = strings.TrimSpace(line)
			if line == "" {
				break
			}
			for _, skill := range strings.FieldsFunc(line, func(r rune) bool {
				return r == ',' || r == ';' || r == '|' || r == '•'
			}) {
				if skill = strings.TrimSpace(skill); skill != "" {
					cv.Skills = append(cv.Skills, skill)
				}
			}
		}
	}

	return cv
}

func findSectionIndex(lines []string, heading string) int {
	for i, line := range lines {
		trimmed := strings.ToLower(strings.TrimRight(strings.TrimSpace(line), ":"))
		if trimmed == heading {
			return i
		}
	}
	return -1
}
