package eyes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const agentID = "eyes.go/1.0.0"

// APIKeyHeader carries the API key so it never appears in URLs
const APIKeyHeader = "X-Eyes-Api-Key"

// ServerConnector talks to the visual-testing server
type ServerConnector interface {
	StartSession(ctx context.Context, info *SessionStartInfo) (*RunningSession, error)
	MatchWindow(ctx context.Context, session *RunningSession, data *MatchWindowData) (*MatchResult, error)
	StopSession(ctx context.Context, session *RunningSession, aborted bool) (*TestResults, error)
}

// HTTPServerConnector implements ServerConnector over the Eyes REST API
type HTTPServerConnector struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
}

// NewServerConnector creates a connector for the server at serverURL
func NewServerConnector(serverURL, apiKey string) *HTTPServerConnector {
	return &HTTPServerConnector{
		serverURL:  strings.TrimRight(serverURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

// ServerError is returned for non-2xx responses
type ServerError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s %s returned status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// SessionStartInfo describes the session to start
type SessionStartInfo struct {
	AgentID              string        `json:"agentId"`
	AppIDOrName          string        `json:"appIdOrName"`
	ScenarioIDOrName     string        `json:"scenarioIdOrName"`
	BatchInfo            BatchInfo     `json:"batchInfo"`
	Environment          Environment   `json:"environment"`
	DefaultMatchSettings MatchSettings `json:"defaultMatchSettings"`
}

// Environment identifies where the screenshots were taken
type Environment struct {
	HostingApp  string        `json:"hostingApp,omitempty"`
	DisplaySize RectangleSize `json:"displaySize"`
}

// MatchSettings apply to a session or a single checkpoint
type MatchSettings struct {
	MatchLevel MatchLevel `json:"matchLevel"`
}

// RunningSession is a session started on the server
type RunningSession struct {
	ID         string `json:"id"`
	SessionID  string `json:"sessionId"`
	BatchID    string `json:"batchId"`
	BaselineID string `json:"baselineId"`
	URL        string `json:"url"`
	IsNew      bool   `json:"isNew"`
}

// AppOutput is the captured screen of a checkpoint
type AppOutput struct {
	Title        string `json:"title"`
	Screenshot64 []byte `json:"screenshot64"`
}

// MatchWindowData is one checkpoint upload
type MatchWindowData struct {
	AppOutput AppOutput    `json:"appOutput"`
	Tag       string       `json:"tag"`
	Options   MatchOptions `json:"options"`
}

// MatchOptions are the per-checkpoint comparison options
type MatchOptions struct {
	Name       string     `json:"name"`
	MatchLevel MatchLevel `json:"matchLevel"`
	Fully      bool       `json:"fully"`
}

// MatchResult is the server's verdict on one checkpoint
type MatchResult struct {
	AsExpected bool   `json:"asExpected"`
	WindowID   string `json:"windowId"`
}

// StartSession starts a running session
func (c *HTTPServerConnector) StartSession(ctx context.Context, info *SessionStartInfo) (*RunningSession, error) {
	if info.AgentID == "" {
		info.AgentID = agentID
	}

	var session RunningSession
	if err := c.do(ctx, http.MethodPost, "/api/sessions/running", nil, info, &session); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	log.Printf("Eyes session started: %s (new: %t)", session.ID, session.IsNew)
	return &session, nil
}

// MatchWindow uploads a checkpoint and returns the match verdict
func (c *HTTPServerConnector) MatchWindow(ctx context.Context, session *RunningSession, data *MatchWindowData) (*MatchResult, error) {
	var result MatchResult
	path := "/api/sessions/running/" + url.PathEscape(session.ID)
	if err := c.do(ctx, http.MethodPost, path, nil, data, &result); err != nil {
		return nil, fmt.Errorf("failed to match window %q: %w", data.Tag, err)
	}
	return &result, nil
}

// StopSession stops a running session and returns its results
func (c *HTTPServerConnector) StopSession(ctx context.Context, session *RunningSession, aborted bool) (*TestResults, error) {
	query := url.Values{}
	query.Set("aborted", strconv.FormatBool(aborted))
	query.Set("updateBaseline", "false")

	var results TestResults
	path := "/api/sessions/running/" + url.PathEscape(session.ID)
	if err := c.do(ctx, http.MethodDelete, path, query, nil, &results); err != nil {
		return nil, fmt.Errorf("failed to stop session: %w", err)
	}

	log.Printf("Eyes session stopped: %s (status: %s)", session.ID, results.Status)
	return &results, nil
}

func (c *HTTPServerConnector) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	apiURL := c.serverURL + path
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		reqBody, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(APIKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("Eyes API error (status %d): %s", resp.StatusCode, string(respBody))
		return &ServerError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
