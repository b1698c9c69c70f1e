// Package panelclient is a Pterodactyl application API client. A client is
// constructed per request from a user's decrypted credentials; it never logs
// or re-exposes the API key.
package panelclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"ptero-discord-admin/internal/constants"
	apperrors "ptero-discord-admin/internal/errors"
	"ptero-discord-admin/internal/models"
)

// Client represents a Pterodactyl application API client
type Client struct {
	httpClient *resty.Client
	baseURL    string
	apiKey     string
	logger     *logrus.Logger
}

// attributesEnvelope is the single-object response wrapper used by the panel
type attributesEnvelope struct {
	Attributes json.RawMessage `json:"attributes"`
}

// listEnvelope is the list response wrapper used by the panel
type listEnvelope struct {
	Data []attributesEnvelope `json:"data"`
}

// panelErrorBody is the error shape returned by the panel on 4xx/5xx
type panelErrorBody struct {
	Errors []struct {
		Code   string `json:"code"`
		Status string `json:"status"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// NewClient creates a client for one panel. Network errors and 5xx
// responses are retried with bounded backoff; 4xx responses are returned
// immediately.
func NewClient(panelURL, apiKey string, logger *logrus.Logger) *Client {
	httpClient := resty.New().
		SetTimeout(constants.DefaultTimeout * time.Second).
		SetRetryCount(constants.DefaultRetryCount).
		SetRetryWaitTime(constants.DefaultRetryWaitTime * time.Second).
		SetRetryMaxWaitTime(constants.DefaultRetryMaxWaitTime * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() >= http.StatusInternalServerError
		})

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(panelURL, "/") + "/api/application",
		apiKey:     apiKey,
		logger:     logger,
	}
}

// request performs one API call and classifies the outcome. A nil result
// means the caller does not need the body.
func (c *Client) request(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	req := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, c.baseURL+path)
	if err != nil {
		c.logger.Warnf("Panel request %s %s failed: network error", method, path)
		return &apperrors.PanelAPIError{
			Operation: fmt.Sprintf("%s %s", method, path),
			Status:    0,
			Message:   "network error contacting panel",
		}
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		msg := c.sanitize(extractPanelError(resp.Body(), resp.StatusCode()))
		c.logger.Warnf("Panel request %s %s returned %d", method, path, resp.StatusCode())
		return &apperrors.PanelAPIError{
			Operation: fmt.Sprintf("%s %s", method, path),
			Status:    resp.StatusCode(),
			Message:   msg,
		}
	}

	if result != nil && len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), result); err != nil {
			return fmt.Errorf("failed to parse panel response for %s %s: %w", method, path, err)
		}
	}
	return nil
}

// sanitize strips the bearer key from any message before it can reach a
// user or a log line.
func (c *Client) sanitize(msg string) string {
	if c.apiKey == "" {
		return msg
	}
	return strings.ReplaceAll(msg, c.apiKey, "[redacted]")
}

// extractPanelError pulls the human-readable detail out of a panel error body
func extractPanelError(body []byte, status int) string {
	var parsed panelErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.Errors) > 0 {
		details := make([]string, 0, len(parsed.Errors))
		for _, e := range parsed.Errors {
			if e.Detail != "" {
				details = append(details, e.Detail)
			}
		}
		if len(details) > 0 {
			return strings.Join(details, "; ")
		}
	}

	switch status {
	case http.StatusUnauthorized:
		return "invalid API key"
	case http.StatusForbidden:
		return "insufficient panel permissions"
	case http.StatusNotFound:
		return "resource not found"
	default:
		return fmt.Sprintf("panel returned status %d", status)
	}
}

// TestConnection verifies the credentials by listing users
func (c *Client) TestConnection(ctx context.Context) error {
	return c.request(ctx, http.MethodGet, "/users", nil, nil)
}

// ListServers returns all servers visible to the API key
func (c *Client) ListServers(ctx context.Context) ([]models.PanelServer, error) {
	var envelope listEnvelope
	if err := c.request(ctx, http.MethodGet, "/servers", nil, &envelope); err != nil {
		return nil, err
	}

	servers := make([]models.PanelServer, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		var server models.PanelServer
		if err := json.Unmarshal(item.Attributes, &server); err != nil {
			return nil, fmt.Errorf("failed to parse server attributes: %w", err)
		}
		servers = append(servers, server)
	}
	return servers, nil
}

// GetServer returns one server by id
func (c *Client) GetServer(ctx context.Context, serverID string) (*models.PanelServer, error) {
	var envelope attributesEnvelope
	if err := c.request(ctx, http.MethodGet, "/servers/"+serverID, nil, &envelope); err != nil {
		return nil, err
	}

	var server models.PanelServer
	if err := json.Unmarshal(envelope.Attributes, &server); err != nil {
		return nil, fmt.Errorf("failed to parse server attributes: %w", err)
	}
	return &server, nil
}

// PowerAction sends a power signal (start, stop, restart, kill) to a server
func (c *Client) PowerAction(ctx context.Context, serverID, signal string) error {
	switch signal {
	case models.PowerStart, models.PowerStop, models.PowerRestart, models.PowerKill:
	default:
		return fmt.Errorf("unknown power signal: %s", signal)
	}
	return c.request(ctx, http.MethodPost, "/servers/"+serverID+"/power",
		map[string]string{"signal": signal}, nil)
}

// SendCommand submits a console command to a server
func (c *Client) SendCommand(ctx context.Context, serverID, command string) error {
	return c.request(ctx, http.MethodPost, "/servers/"+serverID+"/command",
		map[string]string{"command": command}, nil)
}

// GetResources returns live resource usage for a server
func (c *Client) GetResources(ctx context.Context, serverID string) (*models.PanelResources, error) {
	var envelope attributesEnvelope
	if err := c.request(ctx, http.MethodGet, "/servers/"+serverID+"/resources", nil, &envelope); err != nil {
		return nil, err
	}

	var resources models.PanelResources
	if err := json.Unmarshal(envelope.Attributes, &resources); err != nil {
		return nil, fmt.Errorf("failed to parse resource attributes: %w", err)
	}
	return &resources, nil
}

// ListUsers returns all panel accounts
func (c *Client) ListUsers(ctx context.Context) ([]models.PanelUser, error) {
	var envelope listEnvelope
	if err := c.request(ctx, http.MethodGet, "/users", nil, &envelope); err != nil {
		return nil, err
	}

	users := make([]models.PanelUser, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		var user models.PanelUser
		if err := json.Unmarshal(item.Attributes, &user); err != nil {
			return nil, fmt.Errorf("failed to parse user attributes: %w", err)
		}
		users = append(users, user)
	}
	return users, nil
}

// GetUser returns one panel account by id
func (c *Client) GetUser(ctx context.Context, userID string) (*models.PanelUser, error) {
	var envelope attributesEnvelope
	if err := c.request(ctx, http.MethodGet, "/users/"+userID, nil, &envelope); err != nil {
		return nil, err
	}

	var user models.PanelUser
	if err := json.Unmarshal(envelope.Attributes, &user); err != nil {
		return nil, fmt.Errorf("failed to parse user attributes: %w", err)
	}
	return &user, nil
}

// CreateUser creates a panel account and returns it
func (c *Client) CreateUser(ctx context.Context, newUser models.NewPanelUser) (*models.PanelUser, error) {
	var envelope attributesEnvelope
	if err := c.request(ctx, http.MethodPost, "/users", newUser, &envelope); err != nil {
		return nil, err
	}

	var user models.PanelUser
	if err := json.Unmarshal(envelope.Attributes, &user); err != nil {
		return nil, fmt.Errorf("failed to parse user attributes: %w", err)
	}
	return &user, nil
}

// UpdateUserEmail changes one account's email address
func (c *Client) UpdateUserEmail(ctx context.Context, userID, email string) error {
	return c.request(ctx, http.MethodPatch, "/users/"+userID,
		map[string]string{"email": email}, nil)
}

// UpdateUserPassword changes one account's password
func (c *Client) UpdateUserPassword(ctx context.Context, userID, password string) error {
	return c.request(ctx, http.MethodPatch, "/users/"+userID,
		map[string]string{"password": password}, nil)
}

// DeleteUser deletes a panel account
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	return c.request(ctx, http.MethodDelete, "/users/"+userID, nil, nil)
}
