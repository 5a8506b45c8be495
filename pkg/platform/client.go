// Package platform provides a client for the club management platform API:
// roster lookups, voice note media retrieval, player record writes, and
// outbound coach messaging.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Player is one roster entry as the platform reports it.
type Player struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
	AgeGroup  string `json:"age_group,omitempty"`
	Sport     string `json:"sport,omitempty"`
}

// Team is one team a coach is attached to.
type Team struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	AgeGroup string `json:"age_group,omitempty"`
	Sport    string `json:"sport,omitempty"`
}

// Coach is one fellow coach in the organization.
type Coach struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Media is the audio payload ingestion parked for an artifact.
type Media struct {
	ContentType string
	Data        []byte
}

// InsightRecord is an applied insight written to a player's development
// record on the platform.
type InsightRecord struct {
	InsightID         string  `json:"insight_id"`
	PlayerID          string  `json:"player_id"`
	PlayerName        string  `json:"player_name,omitempty"`
	Category          string  `json:"category"`
	Title             string  `json:"title"`
	Description       string  `json:"description"`
	RecommendedUpdate string  `json:"recommended_update,omitempty"`
	TeamID            string  `json:"team_id,omitempty"`
	TeamName          string  `json:"team_name,omitempty"`
	AssigneeUserID    string  `json:"assignee_user_id,omitempty"`
	AssigneeName      string  `json:"assignee_name,omitempty"`
	ConfidenceScore   float64 `json:"confidence_score"`
	WouldAutoApply    bool    `json:"would_auto_apply"`
	OrganizationID    string  `json:"organization_id"`
	CoachUserID       string  `json:"coach_user_id"`
}

// Client defines the platform operations the pipeline consumes.
type Client interface {
	// RosterForCoach lists the players on teams the coach works with.
	RosterForCoach(ctx context.Context, orgID, coachUserID string) ([]Player, error)
	// TeamsForCoach lists the coach's teams.
	TeamsForCoach(ctx context.Context, orgID, coachUserID string) ([]Team, error)
	// CoachesForCoach lists fellow coaches in the same organization.
	CoachesForCoach(ctx context.Context, orgID, coachUserID string) ([]Coach, error)
	// AllPlayers lists every enrolled player in the organization.
	AllPlayers(ctx context.Context, orgID string) ([]Player, error)
	// FetchMedia downloads the audio ingestion stored for an artifact.
	FetchMedia(ctx context.Context, artifactID string) (*Media, error)
	// ApplyInsight writes an insight to a player's development record.
	ApplyInsight(ctx context.Context, rec InsightRecord) error
	// SendMessage delivers a plain-text message to a user on their
	// preferred channel.
	SendMessage(ctx context.Context, userID, text string) error
}

// Option configures the platform client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the request rate limit.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	limiter *rate.Limiter
	http    *http.Client
}

// NewClient creates a platform API client.
func NewClient(baseURL, apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		// The platform API rate-limits integrations at 20 rps.
		limiter: rate.NewLimiter(rate.Limit(20), 40),
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// doJSON executes a request with exponential backoff on transient failures
// and decodes the response into out when out is non-nil.
func (c *httpClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return eris.Wrap(err, "platform: marshal request")
		}
		payload = b
	}

	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return eris.Wrap(err, "platform: build request")
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= 2
				continue
			}
			return eris.Wrap(lastErr, "platform: request failed")
		}

		respBody, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return eris.Wrap(readErr, "platform: read response body")
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			lastErr = eris.Errorf("platform: status %d: %s", resp.StatusCode, string(respBody))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return eris.Errorf("platform: %s %s: status %d: %s", method, path, resp.StatusCode, string(respBody))
		}

		if out != nil {
			if err := json.Unmarshal(respBody, out); err != nil {
				return eris.Wrap(err, "platform: decode response")
			}
		}
		return nil
	}

	return eris.Wrap(lastErr, "platform: request failed")
}

func (c *httpClient) RosterForCoach(ctx context.Context, orgID, coachUserID string) ([]Player, error) {
	var resp struct {
		Players []Player `json:"players"`
	}
	path := fmt.Sprintf("/v1/orgs/%s/coaches/%s/roster", url.PathEscape(orgID), url.PathEscape(coachUserID))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Players, nil
}

func (c *httpClient) TeamsForCoach(ctx context.Context, orgID, coachUserID string) ([]Team, error) {
	var resp struct {
		Teams []Team `json:"teams"`
	}
	path := fmt.Sprintf("/v1/orgs/%s/coaches/%s/teams", url.PathEscape(orgID), url.PathEscape(coachUserID))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Teams, nil
}

func (c *httpClient) CoachesForCoach(ctx context.Context, orgID, coachUserID string) ([]Coach, error) {
	var resp struct {
		Coaches []Coach `json:"coaches"`
	}
	path := fmt.Sprintf("/v1/orgs/%s/coaches/%s/colleagues", url.PathEscape(orgID), url.PathEscape(coachUserID))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Coaches, nil
}

func (c *httpClient) AllPlayers(ctx context.Context, orgID string) ([]Player, error) {
	var resp struct {
		Players []Player `json:"players"`
	}
	path := fmt.Sprintf("/v1/orgs/%s/players", url.PathEscape(orgID))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Players, nil
}

func (c *httpClient) FetchMedia(ctx context.Context, artifactID string) (*Media, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	path := fmt.Sprintf("/v1/artifacts/%s/media", url.PathEscape(artifactID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, eris.Wrap(err, "platform: build media request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "platform: fetch media")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("platform: fetch media: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "platform: read media body")
	}
	return &Media{
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (c *httpClient) ApplyInsight(ctx context.Context, rec InsightRecord) error {
	path := fmt.Sprintf("/v1/players/%s/insights", url.PathEscape(rec.PlayerID))
	return c.doJSON(ctx, http.MethodPost, path, rec, nil)
}

func (c *httpClient) SendMessage(ctx context.Context, userID, text string) error {
	body := map[string]string{
		"user_id": userID,
		"text":    text,
	}
	return c.doJSON(ctx, http.MethodPost, "/v1/messages", body, nil)
}
