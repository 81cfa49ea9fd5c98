// Package meetings provisions Zoom meetings for virtual events.
package meetings

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultBaseURL = "https://api.zoom.us/v2"

	scheduledMeeting = 2
	meetingMinutes   = 60
)

type Config struct {
	BaseURL   string
	APIKey    string
	APISecret string
	// TokenTTL is the lifetime of the credential minted per call.
	TokenTTL time.Duration
}

type ZoomClient struct {
	cfg  Config
	http *http.Client
	now  func() time.Time
}

func NewZoomClient(cfg Config, httpClient *http.Client) *ZoomClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Minute
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &ZoomClient{cfg: cfg, http: httpClient, now: time.Now}
}

type createMeetingRequest struct {
	Topic     string `json:"topic"`
	Type      int    `json:"type"`
	StartTime string `json:"start_time"`
	Duration  int    `json:"duration"`
	Timezone  string `json:"timezone"`
}

type createMeetingResponse struct {
	ID      int64  `json:"id"`
	JoinURL string `json:"join_url"`
}

// APIError is a non-2xx answer from Zoom.
type APIError struct {
	StatusCode int
	Code       int    `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("zoom api returned status %d", e.StatusCode)
	}
	return e.Message
}

// CreateMeeting schedules a 60 minute meeting starting at start and returns
// its join URL.
func (z *ZoomClient) CreateMeeting(ctx context.Context, topic string, start time.Time) (string, error) {
	if z.cfg.APIKey == "" || z.cfg.APISecret == "" {
		return "", fmt.Errorf("zoom credentials not configured")
	}
	token, err := z.token()
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(createMeetingRequest{
		Topic:     topic,
		Type:      scheduledMeeting,
		StartTime: start.UTC().Format(time.RFC3339),
		Duration:  meetingMinutes,
		Timezone:  "UTC",
	})
	if err != nil {
		return "", fmt.Errorf("encoding meeting request: %w", err)
	}

	url := strings.TrimRight(z.cfg.BaseURL, "/") + "/users/me/meetings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating meeting request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := z.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling zoom: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading zoom response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(payload, apiErr)
		return "", apiErr
	}

	var created createMeetingResponse
	if err := json.Unmarshal(payload, &created); err != nil {
		return "", fmt.Errorf("decoding zoom response: %w", err)
	}
	if created.JoinURL == "" {
		return "", fmt.Errorf("zoom response carried no join_url")
	}
	return created.JoinURL, nil
}

func (z *ZoomClient) token() (string, error) {
	now := z.now()
	claims := jwt.RegisteredClaims{
		Issuer:    z.cfg.APIKey,
		ExpiresAt: jwt.NewNumericDate(now.Add(z.cfg.TokenTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(z.cfg.APISecret))
	if err != nil {
		return "", fmt.Errorf("signing zoom credential: %w", err)
	}
	return signed, nil
}
