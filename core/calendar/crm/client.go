// Package crm talks to the CRM bridge that fronts the user's calendar and
// stored prompts.
package crm

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"

	"github.com/koscakluka/ema-realtime/core/scheduling"
)

const (
	availabilityPath = "/api/calendar/availability"
	preferencesPath  = "/api/calendar/preferences"
	schedulePath     = "/api/crm/schedule"
	promptPullPath   = "/api/crm/prompt/pull"

	defaultPreferencesTTL = 30 * time.Second
	defaultRequestRate    = 5
	defaultRequestBurst   = 5
)

var (
	ErrBaseURLNotConfigured = errors.New("crm base url is not configured")
	ErrNoPrompt             = errors.New("no prompt stored")
)

type Client struct {
	baseURL       string
	wallet        string
	authorization string

	httpClient  *http.Client
	limiter     *rate.Limiter
	preferences *expirable.LRU[string, scheduling.Preferences]
}

type ClientOption func(*Client)

// WithWallet identifies the caller through the x-wallet header.
func WithWallet(wallet string) ClientOption {
	return func(c *Client) { c.wallet = strings.ToLower(strings.TrimSpace(wallet)) }
}

func WithAuthorization(authorization string) ClientOption {
	return func(c *Client) { c.authorization = authorization }
}

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRateLimit bounds outbound requests per second. A non-positive rate
// leaves requests unlimited.
func WithRateLimit(perSecond float64, burst int) ClientOption {
	return func(c *Client) {
		if burst <= 0 {
			burst = 1
		}
		limit := rate.Limit(perSecond)
		if perSecond <= 0 {
			limit = rate.Inf
		}
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithPreferencesTTL sets how long calendar preferences are reused. A zero
// ttl disables caching.
func WithPreferencesTTL(ttl time.Duration) ClientOption {
	return func(c *Client) {
		if ttl <= 0 {
			c.preferences = nil
			return
		}
		c.preferences = expirable.NewLRU[string, scheduling.Preferences](8, nil, ttl)
	}
}

func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if parsed, err := url.Parse(baseURL); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, ErrBaseURLNotConfigured
	}

	c := &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		limiter:     rate.NewLimiter(defaultRequestRate, defaultRequestBurst),
		preferences: expirable.NewLRU[string, scheduling.Preferences](8, nil, defaultPreferencesTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type availabilityResponse struct {
	OK    *bool                 `json:"ok"`
	Error string                `json:"error"`
	Busy  []scheduling.Interval `json:"busy"`
	Free  []scheduling.Interval `json:"free"`
}

func (c *Client) Availability(ctx context.Context, query scheduling.AvailabilityQuery) (scheduling.Availability, error) {
	ctx, span := tracer.Start(ctx, "query calendar availability")
	defer span.End()

	params := url.Values{}
	params.Set("start", query.Start.UTC().Format(time.RFC3339))
	params.Set("end", query.End.UTC().Format(time.RFC3339))
	timeZone := query.TimeZone
	if timeZone == "" {
		timeZone = "UTC"
	}
	params.Set("timeZone", timeZone)
	if len(query.CalendarIDs) > 0 {
		params.Set("calendarIds", strings.Join(query.CalendarIDs, ","))
	}

	var response availabilityResponse
	if err := c.do(ctx, http.MethodGet, availabilityPath+"?"+params.Encode(), nil, &response); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return scheduling.Availability{}, err
	}
	if response.OK != nil && !*response.OK {
		err := fmt.Errorf("availability rejected: %s", response.Error)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return scheduling.Availability{}, err
	}

	span.SetAttributes(attribute.Int("availability.busy", len(response.Busy)), attribute.Int("availability.free", len(response.Free)))
	return scheduling.Availability{Busy: response.Busy, Free: response.Free}, nil
}

// Preferences returns the stored calendar selection, reusing a recent answer.
func (c *Client) Preferences(ctx context.Context) (scheduling.Preferences, error) {
	if c.preferences != nil {
		if cached, ok := c.preferences.Get(c.wallet); ok {
			return cached, nil
		}
	}

	ctx, span := tracer.Start(ctx, "load calendar preferences")
	defer span.End()

	var preferences scheduling.Preferences
	if err := c.do(ctx, http.MethodGet, preferencesPath, nil, &preferences); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return scheduling.Preferences{}, err
	}

	if c.preferences != nil {
		c.preferences.Add(c.wallet, preferences)
	}
	return preferences, nil
}

type scheduleResponse struct {
	OK          *bool  `json:"ok"`
	Error       string `json:"error"`
	EventID     string `json:"eventId"`
	HTMLLink    string `json:"htmlLink"`
	HangoutLink string `json:"hangoutLink"`
}

func (c *Client) Book(ctx context.Context, request scheduling.BookingRequest) (scheduling.Booking, error) {
	ctx, span := tracer.Start(ctx, "book meeting")
	defer span.End()

	body, err := json.Marshal(request)
	if err != nil {
		return scheduling.Booking{}, fmt.Errorf("error marshalling JSON: %w", err)
	}

	var response scheduleResponse
	if err := c.do(ctx, http.MethodPost, schedulePath, body, &response); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return scheduling.Booking{}, err
	}
	if (response.OK != nil && !*response.OK) || response.Error != "" {
		err := fmt.Errorf("booking rejected: %s", cmp.Or(response.Error, "unknown error"))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return scheduling.Booking{}, err
	}

	return scheduling.Booking{EventID: response.EventID, HTMLLink: response.HTMLLink, HangoutLink: response.HangoutLink}, nil
}

type promptResponse struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error"`
	Stored struct {
		Prompt string `json:"prompt"`
	} `json:"stored"`
}

// PullPrompt fetches the system prompt stored for the wallet.
func (c *Client) PullPrompt(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "pull prompt")
	defer span.End()

	if c.wallet == "" {
		return "", fmt.Errorf("%w: no wallet configured", ErrNoPrompt)
	}

	var response promptResponse
	if err := c.do(ctx, http.MethodGet, promptPullPath, nil, &response); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	if !response.OK || strings.TrimSpace(response.Stored.Prompt) == "" {
		return "", fmt.Errorf("%w: %s", ErrNoPrompt, response.Error)
	}
	return response.Stored.Prompt, nil
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, target any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limited: %w", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.wallet != "" {
		req.Header.Set("x-wallet", c.wallet)
	}
	if c.authorization != "" {
		req.Header.Set("Authorization", c.authorization)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody errorResponse
		_ = json.Unmarshal(responseBody, &errBody)
		message := cmp.Or(errBody.Error, strings.TrimSpace(string(responseBody)), resp.Status)
		logger.Warn("crm request failed", "method", method, "path", path, "status", resp.StatusCode, "error", message)
		return fmt.Errorf("%s %s: %s (status %d)", method, path, message, resp.StatusCode)
	}

	if err := json.Unmarshal(responseBody, target); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	return nil
}
