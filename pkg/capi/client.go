package capi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"capirelay/pkg/model"
)

const (
	DefaultBaseURL    = "https://graph.facebook.com"
	DefaultAPIVersion = "v19.0"
	DefaultTimeout    = 10 * time.Second

	maxErrorBody = 4096
)

// Forwarder delivers one outbound document to the ingestion endpoint.
type Forwarder interface {
	Send(ctx context.Context, destinationID, accessToken string, doc model.OutboundDocument) (*Response, error)
}

type Response struct {
	StatusCode int
	Body       json.RawMessage
}

// StatusError is returned when the endpoint answered with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("ingestion endpoint returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("ingestion endpoint returned status %d: %s", e.StatusCode, e.Body)
}

type Config struct {
	BaseURL    string
	APIVersion string
	Timeout    time.Duration
}

type Client struct {
	baseURL    string
	apiVersion string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiVersion: cfg.APIVersion,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// EventsURL builds the endpoint for a destination. The access token is carried
// as a query parameter.
func (c *Client) EventsURL(destinationID, accessToken string) string {
	u := fmt.Sprintf("%s/%s/%s/events", c.baseURL, c.apiVersion, url.PathEscape(destinationID))
	return u + "?" + url.Values{"access_token": {accessToken}}.Encode()
}

// Send makes exactly one POST attempt. Transport failures are returned as is;
// non-2xx answers are returned as *StatusError.
func (c *Client) Send(ctx context.Context, destinationID, accessToken string, doc model.OutboundDocument) (*Response, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.EventsURL(destinationID, accessToken), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", redact(err, accessToken))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := string(respBody)
		if len(text) > maxErrorBody {
			cut := maxErrorBody
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			text = text[:cut]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: text}
	}

	if !json.Valid(respBody) {
		respBody, _ = json.Marshal(string(respBody))
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       respBody,
	}, nil
}

// redact strips the access token from transport errors, which embed the request URL.
func redact(err error, token string) error {
	if token == "" || !strings.Contains(err.Error(), url.QueryEscape(token)) {
		return err
	}
	return &redactedError{
		msg:   strings.ReplaceAll(err.Error(), url.QueryEscape(token), "REDACTED"),
		cause: err,
	}
}

type redactedError struct {
	msg   string
	cause error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.cause }
