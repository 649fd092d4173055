//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	api "github.com/oshokin/alarm-clock/internal/api/http/alarm"
	"github.com/oshokin/alarm-clock/internal/clock"
	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/service/alarms"
	"github.com/oshokin/alarm-clock/internal/service/notification"
	"github.com/oshokin/alarm-clock/internal/version"
)

// Client wraps the alarm clock HTTP API with convenience helpers.
type Client struct {
	// http is the configured resty client.
	http *resty.Client
	// callTimeout is the default timeout for individual calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithActor tags every request with the caller identity.
func WithActor(actor Actor) Option {
	return func(c *Client) {
		c.http.SetHeader(ActorHeader, actor.String())
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// APIError is a non-2xx reply from the server.
type APIError struct {
	// Status is the HTTP status code.
	Status int
	// Code is the server error code, e.g. "invalid_phase".
	Code string
	// Message is the server explanation.
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}

	return fmt.Sprintf("server returned %d %s: %s", e.Status, e.Code, e.Message)
}

// New creates a client for the server at address ("host:port" or a URL).
func New(address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	baseURL := address
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}

	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse server address: %w", err)
	}

	client := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimSuffix(baseURL, "/")).
			SetHeader("Accept", "application/json").
			SetHeader("User-Agent", version.UserAgent()),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// ListAlarms returns the alarm list sorted by time.
func (c *Client) ListAlarms(ctx context.Context) ([]api.AlarmView, error) {
	var result []api.AlarmView

	if _, err := c.do(ctx, http.MethodGet, "/api/alarms", nil, &result); err != nil {
		return nil, fmt.Errorf("list alarms: %w", err)
	}

	return result, nil
}

// AddAlarm creates an alarm.
func (c *Client) AddAlarm(ctx context.Context, input alarms.NewAlarm) (*api.AlarmView, error) {
	var result api.AlarmView

	if _, err := c.do(ctx, http.MethodPost, "/api/alarms", input, &result); err != nil {
		return nil, fmt.Errorf("add alarm: %w", err)
	}

	return &result, nil
}

// RemoveAlarm deletes an alarm. Unknown ids are not an error.
func (c *Client) RemoveAlarm(ctx context.Context, id string) error {
	if _, err := c.do(ctx, http.MethodDelete, "/api/alarms/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("remove alarm: %w", err)
	}

	return nil
}

// ToggleAlarm flips an alarm. It returns nil without error for unknown ids.
func (c *Client) ToggleAlarm(ctx context.Context, id string) (*api.AlarmView, error) {
	var result api.AlarmView

	resp, err := c.do(ctx, http.MethodPost, "/api/alarms/"+url.PathEscape(id)+"/toggle", nil, &result)
	if err != nil {
		return nil, fmt.Errorf("toggle alarm: %w", err)
	}

	if resp.StatusCode() == http.StatusNoContent {
		return nil, nil
	}

	return &result, nil
}

// ListSounds returns the sound catalog.
func (c *Client) ListSounds(ctx context.Context) (*api.SoundsResponse, error) {
	var result api.SoundsResponse

	if _, err := c.do(ctx, http.MethodGet, "/api/sounds", nil, &result); err != nil {
		return nil, fmt.Errorf("list sounds: %w", err)
	}

	return &result, nil
}

// PreviewSound plays a catalog sound on the server.
func (c *Client) PreviewSound(ctx context.Context, id string) error {
	if _, err := c.do(ctx, http.MethodPost, "/api/sounds/"+url.PathEscape(id)+"/preview", nil, nil); err != nil {
		return fmt.Errorf("preview sound: %w", err)
	}

	return nil
}

// StopPreview stops a running preview.
func (c *Client) StopPreview(ctx context.Context) error {
	if _, err := c.do(ctx, http.MethodDelete, "/api/sounds/preview", nil, nil); err != nil {
		return fmt.Errorf("stop preview: %w", err)
	}

	return nil
}

// Clock returns the server clock reading.
func (c *Client) Clock(ctx context.Context) (*clock.Reading, error) {
	var result clock.Reading

	if _, err := c.do(ctx, http.MethodGet, "/api/clock", nil, &result); err != nil {
		return nil, fmt.Errorf("read clock: %w", err)
	}

	return &result, nil
}

// Notification returns the notification flow snapshot.
func (c *Client) Notification(ctx context.Context) (*notification.View, error) {
	var result notification.View

	if _, err := c.do(ctx, http.MethodGet, "/api/notification", nil, &result); err != nil {
		return nil, fmt.Errorf("read notification: %w", err)
	}

	return &result, nil
}

// do sends one request and maps error replies to *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, result any) (*resty.Response, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	var apiErr api.ErrorResponse

	request := c.http.R().
		SetContext(callCtx).
		SetError(&apiErr)

	if body != nil {
		request.SetBody(body)
	}

	if result != nil {
		request.SetResult(result)
	}

	resp, err := request.Execute(method, path)
	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		return resp, &APIError{
			Status:  resp.StatusCode(),
			Code:    apiErr.Code,
			Message: apiErr.Message,
		}
	}

	return resp, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
