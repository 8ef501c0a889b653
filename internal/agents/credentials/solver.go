package credentials

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CaptchaSolver submits image challenges to the 2captcha HTTP API and
// polls for the answer.
type CaptchaSolver struct {
	apiKey  string
	baseURL string
	client  *http.Client

	pollInterval time.Duration
	pollTimeout  time.Duration
}

// NewCaptchaSolver creates a solver with the given API key.
func NewCaptchaSolver(apiKey string) *CaptchaSolver {
	return &CaptchaSolver{
		apiKey:       apiKey,
		baseURL:      "https://2captcha.com",
		client:       &http.Client{Timeout: 30 * time.Second},
		pollInterval: 5 * time.Second,
		pollTimeout:  2 * time.Minute,
	}
}

type submitResponse struct {
	Status  int    `json:"status"`
	Request string `json:"request"`
}

// SolveImage uploads the PNG challenge and returns the solved text.
func (s *CaptchaSolver) SolveImage(ctx context.Context, image []byte) (string, error) {
	id, err := s.submit(ctx, image)
	if err != nil {
		return "", err
	}
	return s.poll(ctx, id)
}

func (s *CaptchaSolver) submit(ctx context.Context, image []byte) (string, error) {
	form := url.Values{
		"key":    {s.apiKey},
		"method": {"base64"},
		"body":   {base64.StdEncoding.EncodeToString(image)},
		"json":   {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/in.php", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("captcha submit failed: %w", err)
	}
	defer resp.Body.Close()

	var out submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode submit response: %w", err)
	}
	if out.Status != 1 {
		return "", fmt.Errorf("captcha submit rejected: %s", out.Request)
	}
	return out.Request, nil
}

func (s *CaptchaSolver) poll(ctx context.Context, id string) (string, error) {
	deadline := time.Now().Add(s.pollTimeout)
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		answer, ready, err := s.check(ctx, id)
		if err != nil {
			return "", err
		}
		if ready {
			return answer, nil
		}
	}
	return "", fmt.Errorf("captcha %s not solved within %s", id, s.pollTimeout)
}

func (s *CaptchaSolver) check(ctx context.Context, id string) (string, bool, error) {
	u := fmt.Sprintf("%s/res.php?key=%s&action=get&id=%s&json=1",
		s.baseURL, url.QueryEscape(s.apiKey), url.QueryEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", false, fmt.Errorf("failed to build poll request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("captcha poll failed: %w", err)
	}
	defer resp.Body.Close()

	var out submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", false, fmt.Errorf("failed to decode poll response: %w", err)
	}
	if out.Status == 1 {
		return out.Request, true, nil
	}
	if out.Request == "CAPCHA_NOT_READY" {
		return "", false, nil
	}
	return "", false, fmt.Errorf("captcha solve failed: %s", out.Request)
}
