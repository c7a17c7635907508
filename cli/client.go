package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"kiosk/kiosk"
	"kiosk/models"
	"kiosk/state"
	"net/http"
	"strings"
	"time"
)

// Client is the HTTP client for talking to a running kiosk
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new HTTP client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx response from the kiosk.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Detail)
}

// doRequest executes an HTTP request
func (c *Client) doRequest(method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}

	return resp, nil
}

// handleResponse decodes a 2xx body into result, or returns an APIError
// carrying the {"detail": ...} message.
func (c *Client) handleResponse(resp *http.Response, result interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{Status: resp.StatusCode, Detail: strings.TrimSpace(string(bodyBytes))}
		var payload struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(bodyBytes, &payload) == nil && payload.Detail != "" {
			apiErr.Detail = payload.Detail
		}
		return apiErr
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %v", err)
		}
	}

	return nil
}

func (c *Client) call(method, path string, body, result interface{}) error {
	resp, err := c.doRequest(method, path, body)
	if err != nil {
		return err
	}
	return c.handleResponse(resp, result)
}

// Health is the health endpoint payload.
type Health struct {
	Status        string     `json:"status"`
	Timestamp     int64      `json:"timestamp"`
	Mode          state.Mode `json:"mode"`
	SceneLoaded   bool       `json:"scene_loaded"`
	ExhibitsUp    bool       `json:"exhibits_up"`
	SettingsSaved bool       `json:"settings_saved"`
}

// HealthCheck reads the health endpoint. A degraded kiosk answers 503 with
// the same body, which is not an error here.
func (c *Client) HealthCheck() (*Health, error) {
	resp, err := c.doRequest("GET", "/api/health", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return nil, fmt.Errorf("server unhealthy: HTTP %d", resp.StatusCode)
	}

	var h Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return nil, fmt.Errorf("failed to decode response: %v", err)
	}
	return &h, nil
}

// Exhibit API

// ListExhibits lists every exhibit
func (c *Client) ListExhibits() ([]models.ExhibitRead, error) {
	var out struct {
		Items []models.ExhibitRead `json:"items"`
	}
	if err := c.call("GET", "/api/exhibits", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// ExhibitRange lists the exhibits at positions a..b
func (c *Client) ExhibitRange(a, b int) ([]models.ExhibitRead, error) {
	var out struct {
		Items []models.ExhibitRead `json:"items"`
	}
	if err := c.call("GET", fmt.Sprintf("/api/exhibits/range?from=%d&to=%d", a, b), nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// GetExhibit fetches a single exhibit
func (c *Client) GetExhibit(id int) (*models.ExhibitRead, error) {
	var out models.ExhibitRead
	if err := c.call("GET", fmt.Sprintf("/api/exhibits/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Settings API

// GetSettings fetches the current settings
func (c *Client) GetSettings() (*models.SettingsRead, error) {
	var out models.SettingsRead
	if err := c.call("GET", "/api/settings", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SettingsResult is the response to a settings update.
type SettingsResult struct {
	Persisted  bool                `json:"persisted"`
	Settings   models.SettingsRead `json:"settings"`
	Transition state.Transition    `json:"transition"`
}

// UpdateSettings saves a settings dialog submission
func (c *Client) UpdateSettings(req models.SettingsUpdate) (*SettingsResult, error) {
	var out SettingsResult
	if err := c.call("PUT", "/api/settings", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelSettings closes the settings dialog
func (c *Client) CancelSettings() (*state.Transition, error) {
	var out struct {
		Transition state.Transition `json:"transition"`
	}
	if err := c.call("POST", "/api/settings/cancel", nil, &out); err != nil {
		return nil, err
	}
	return &out.Transition, nil
}

// Scene API

// SceneInfo is the scene endpoint payload.
type SceneInfo struct {
	Origin     string                 `json:"origin"`
	Descriptor map[string]interface{} `json:"descriptor"`
	Loading    kiosk.LoadingScreen    `json:"loading"`
	Caption    string                 `json:"caption"`
}

// GetScene fetches the loaded scene descriptor
func (c *Client) GetScene() (*SceneInfo, error) {
	var out SceneInfo
	if err := c.call("GET", "/api/scene", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetGraph fetches the scene graph
func (c *Client) GetGraph() (*kiosk.Graph, error) {
	var out kiosk.Graph
	if err := c.call("GET", "/api/scene/graph", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UI API

// GetUI fetches the state machine snapshot
func (c *Client) GetUI() (*state.Snapshot, error) {
	var out state.Snapshot
	if err := c.call("GET", "/api/ui", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EventResult is the response to a UI event.
type EventResult struct {
	Transition state.Transition    `json:"transition"`
	Snapshot   state.Snapshot      `json:"snapshot"`
	Exhibit    *models.ExhibitRead `json:"exhibit,omitempty"`
}

// SendEvent feeds one input event to the kiosk
func (c *Client) SendEvent(ev state.Event) (*EventResult, error) {
	var out EventResult
	if err := c.call("POST", "/api/ui/events", ev, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Diagnostics API

// ListDiagnostics lists recent diagnostics, optionally filtered by level
func (c *Client) ListDiagnostics(level string) ([]models.Diagnostic, error) {
	path := "/api/diagnostics"
	if level != "" {
		path += "?level=" + strings.ToUpper(level)
	}
	var out []models.Diagnostic
	if err := c.call("GET", path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ClearDiagnostics wipes the diagnostics ring
func (c *Client) ClearDiagnostics() error {
	return c.call("DELETE", "/api/diagnostics", nil, nil)
}

// Shutdown API

// GenerateShutdownCode asks the kiosk for a confirmation code
func (c *Client) GenerateShutdownCode() (string, time.Time, error) {
	var out struct {
		Code      string `json:"code"`
		ExpiresAt int64  `json:"expires_at"`
	}
	if err := c.call("POST", "/api/shutdown/generate-code", nil, &out); err != nil {
		return "", time.Time{}, err
	}
	return out.Code, time.Unix(out.ExpiresAt, 0), nil
}

// VerifyShutdown confirms the code and shuts the kiosk down
func (c *Client) VerifyShutdown(code string) error {
	return c.call("POST", "/api/shutdown/verify", models.ShutdownVerifyRequest{Code: code}, nil)
}
