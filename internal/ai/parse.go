package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/models"
)

// parseActionsJSON extracts and parses a JSON array from a response that may contain surrounding text
func parseActionsJSON(response string) ([]Action, error) {
	// First try direct parsing
	var actions []Action
	if err := json.Unmarshal([]byte(response), &actions); err == nil {
		return actions, nil
	}

	jsonStr, err := extractDelimited(response, '[', ']')
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(jsonStr), &actions); err != nil {
		return nil, fmt.Errorf("failed to parse extracted JSON: %w", err)
	}
	return actions, nil
}

// parseCVJSON extracts and parses a JSON object from a response that may contain surrounding text
func parseCVJSON(response string) (models.CVData, error) {
	var cv models.CVData
	if err := json.Unmarshal([]byte(response), &cv); err == nil {
		return cv, nil
	}

	jsonStr, err := extractDelimited(response, '{', '}')
	if err != nil {
		return models.CVData{}, err
	}
	if err := json.Unmarshal([]byte(jsonStr), &cv); err != nil {
		return models.CVData{}, fmt.Errorf("failed to parse extracted JSON: %w", err)
	}
	return cv, nil
}

// extractDelimited finds the first balanced open..close span in text.
func extractDelimited(text string, open, close byte) (string, error) {
	start := strings.IndexByte(text, open)
	if start == -1 {
		return "", fmt.Errorf("no JSON found in response")
	}

	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("no matching closing %q found", string(close))
}
