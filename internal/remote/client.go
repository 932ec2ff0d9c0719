package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/raksha/internal/domain"
	"github.com/spec-kit/raksha/internal/observability"
)

const defaultTimeout = 10 * time.Second

// Endpoint names used in errors, logs and metrics.
const (
	EndpointLogin           = "login"
	EndpointRegister        = "register"
	EndpointVerify          = "verify"
	EndpointSOSTrigger      = "sos_trigger"
	EndpointSOSUpdate       = "sos_update_location"
	EndpointSOSResolve      = "sos_resolve"
	EndpointSOSActive       = "sos_active"
	EndpointSOSHistory      = "sos_history"
	EndpointComplaintFile   = "complaint_file"
	EndpointComplaintList   = "complaint_list"
	EndpointComplaintDetail = "complaint_detail"
	EndpointPing            = "ping"
)

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Logger  *zap.Logger
	Metrics *observability.Metrics
	// HTTPClient overrides the default client; its Timeout is left as is.
	HTTPClient *http.Client
}

// Client talks to the backend API. Every method returns a *SyncError on
// failure and never panics on malformed responses.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	metrics *observability.Metrics
	now     func() time.Time

	mu    sync.RWMutex
	token string
}

// AuthResult is the outcome of a login or registration.
type AuthResult struct {
	Token   string
	User    *domain.User
	Message string
}

// NewClient builds a backend client.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    httpClient,
		logger:  logger.Named("remote"),
		metrics: opts.Metrics,
		now:     time.Now,
	}
}

// SetToken stores the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// ClearToken forgets the bearer token.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// HasToken reports whether requests are authenticated.
func (c *Client) HasToken() bool {
	return c.Token() != ""
}

// Login authenticates against the backend and keeps the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	env, err := c.do(ctx, EndpointLogin, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	return c.authResult(env), nil
}

// Register creates a backend account and keeps the returned token.
func (c *Client) Register(ctx context.Context, name, email, phone, password string) (*AuthResult, error) {
	env, err := c.do(ctx, EndpointRegister, http.MethodPost, "/api/auth/register", map[string]any{
		"name":     name,
		"email":    email,
		"phone":    phone,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	return c.authResult(env), nil
}

func (c *Client) authResult(env *envelope) *AuthResult {
	if env.Token != "" {
		c.SetToken(env.Token)
	}
	result := &AuthResult{Token: env.Token, Message: env.Message}
	if env.User != nil {
		u := env.User.toDomain()
		result.User = &u
	}
	return result
}

// VerifyToken checks the current token and returns the user it belongs to,
// if the backend includes one.
func (c *Client) VerifyToken(ctx context.Context) (*domain.User, error) {
	env, err := c.do(ctx, EndpointVerify, http.MethodPost, "/api/auth/verify", nil)
	if err != nil {
		return nil, err
	}
	if env.User == nil {
		return nil, nil
	}
	u := env.User.toDomain()
	return &u, nil
}

// TriggerSOS announces a new emergency, optionally with its first fix.
func (c *Client) TriggerSOS(ctx context.Context, sosID string, initial *domain.LocationFix) error {
	body := map[string]any{"sos_id": sosID}
	if initial != nil {
		body["location"] = initial
	}
	_, err := c.do(ctx, EndpointSOSTrigger, http.MethodPost, "/api/sos/trigger", body)
	return err
}

// UpdateSOSLocation streams one fix for an active emergency.
func (c *Client) UpdateSOSLocation(ctx context.Context, sosID string, fix domain.LocationFix) error {
	_, err := c.do(ctx, EndpointSOSUpdate, http.MethodPost, "/api/sos/update_location", map[string]any{
		"sos_id":   sosID,
		"location": fix,
	})
	return err
}

// ResolveSOS closes an emergency. Empty notes are omitted.
func (c *Client) ResolveSOS(ctx context.Context, sosID, notes string) error {
	body := map[string]any{"sos_id": sosID}
	if notes != "" {
		body["notes"] = notes
	}
	_, err := c.do(ctx, EndpointSOSResolve, http.MethodPost, "/api/sos/resolve", body)
	return err
}

// ActiveSOS returns the backend's view of the caller's active emergency.
func (c *Client) ActiveSOS(ctx context.Context) (*domain.SOSEvent, error) {
	env, err := c.do(ctx, EndpointSOSActive, http.MethodGet, "/api/sos/active", nil)
	if err != nil {
		return nil, err
	}
	if env.SOS == nil {
		return nil, nil
	}
	event := env.SOS.toDomain(c.now())
	return &event, nil
}

// SOSHistory returns the caller's past emergencies.
func (c *Client) SOSHistory(ctx context.Context) ([]domain.SOSEvent, error) {
	env, err := c.do(ctx, EndpointSOSHistory, http.MethodGet, "/api/sos/history", nil)
	if err != nil {
		return nil, err
	}
	now := c.now()
	history := make([]domain.SOSEvent, 0, len(env.History))
	for _, w := range env.History {
		history = append(history, w.toDomain(now))
	}
	return history, nil
}

// FileComplaint submits a complaint. The returned complaint is the backend's
// copy when it sends one back, otherwise the submitted one marked synced.
func (c *Client) FileComplaint(ctx context.Context, complaint domain.Complaint) (*domain.Complaint, error) {
	body := map[string]any{
		"complaint_id": complaint.ComplaintID,
		"title":        complaint.Title,
		"description":  complaint.Description,
		"latitude":     complaint.Latitude,
		"longitude":    complaint.Longitude,
	}
	if complaint.UserID != "" {
		body["user_id"] = complaint.UserID
	}
	env, err := c.do(ctx, EndpointComplaintFile, http.MethodPost, "/api/complaints/file", body)
	if err != nil {
		return nil, err
	}
	if env.Complaint != nil && env.Complaint.ComplaintID != "" {
		out := env.Complaint.toDomain(c.now())
		return &out, nil
	}
	complaint.Synced = true
	return &complaint, nil
}

// ListComplaints lists the caller's complaints, optionally by status.
func (c *Client) ListComplaints(ctx context.Context, status string) ([]domain.Complaint, error) {
	path := "/api/complaints/list"
	if status != "" {
		path += "?" + url.Values{"status": {status}}.Encode()
	}
	env, err := c.do(ctx, EndpointComplaintList, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	now := c.now()
	out := make([]domain.Complaint, 0, len(env.Complaints))
	for _, w := range env.Complaints {
		out = append(out, w.toDomain(now))
	}
	return out, nil
}

// GetComplaint fetches one complaint.
func (c *Client) GetComplaint(ctx context.Context, complaintID string) (*domain.Complaint, error) {
	env, err := c.do(ctx, EndpointComplaintDetail, http.MethodGet, "/api/complaints/"+url.PathEscape(complaintID), nil)
	if err != nil {
		return nil, err
	}
	if env.Complaint == nil {
		return nil, c.fail(EndpointComplaintDetail, KindRejected, 0, "complaint missing from response", nil)
	}
	out := env.Complaint.toDomain(c.now())
	return &out, nil
}

// Ping reports whether the backend answers HTTP at all. Any status counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return c.fail(EndpointPing, KindOffline, 0, err.Error(), err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return c.fail(EndpointPing, KindOffline, 0, err.Error(), err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

func (c *Client) do(ctx context.Context, endpoint, method, path string, body any) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, c.fail(endpoint, KindRejected, 0, err.Error(), err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, c.fail(endpoint, KindOffline, 0, err.Error(), err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(endpoint, KindOffline, 0, err.Error(), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(endpoint, KindOffline, resp.StatusCode, err.Error(), err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := fmt.Sprintf("HTTP Error %d", resp.StatusCode)
		if decodeErr == nil && env.Message != "" {
			message = env.Message
		}
		return nil, c.fail(endpoint, KindRejected, resp.StatusCode, message, nil)
	}
	if decodeErr != nil {
		return nil, c.fail(endpoint, KindRejected, resp.StatusCode, "invalid response body", decodeErr)
	}
	if !env.Success {
		message := env.Message
		if message == "" {
			message = "request failed"
		}
		return nil, c.fail(endpoint, KindRejected, resp.StatusCode, message, nil)
	}
	return &env, nil
}

func (c *Client) fail(endpoint string, kind FailureKind, status int, message string, cause error) *SyncError {
	if errors.Is(cause, context.DeadlineExceeded) {
		message = "request timed out"
	}
	c.metrics.RecordRemoteFailure(endpoint, string(kind))
	c.logger.Warn("backend call failed",
		zap.String("endpoint", endpoint),
		zap.String("kind", string(kind)),
		zap.Int("status", status),
		zap.String("message", message),
	)
	return &SyncError{Endpoint: endpoint, Kind: kind, StatusCode: status, Message: message, Err: cause}
}
