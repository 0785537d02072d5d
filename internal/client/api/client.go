package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	"github.com/maati-dev/maati/internal/models"
	"github.com/maati-dev/maati/pkg/api"
)

// TokenSource supplies the current bearer token. An empty token means the
// request goes out unauthenticated (or cookie-only).
type TokenSource interface {
	Token() string
}

// Client is the HTTP client for the MAATI API server.
type Client struct {
	httpClient *http.Client
	tokens     TokenSource
	baseURL    string
}

// Option configures a Client.
type Option func(*Client)

// WithTokenSource attaches a bearer token source, typically the session.
func WithTokenSource(tokens TokenSource) Option {
	return func(c *Client) { c.tokens = tokens }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// NewClient creates an API client for the server at baseURL.
// The client carries a cookie jar so cookie-mode sessions work without any
// token plumbing.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{baseURL: baseURL}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		jar, _ := cookiejar.New(nil)
		c.httpClient = &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Keep the bearer header across same-client redirects.
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		}
	}
	return c
}

// RefreshURL returns the absolute token refresh endpoint, for wiring into
// the session service.
func (c *Client) RefreshURL() string {
	return c.baseURL + "/api/v1/auth/refresh"
}

// Register sets the password on a pre-provisioned employee record.
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) error {
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/register", req, nil); err != nil {
		return fmt.Errorf("register request failed: %w", err)
	}
	return nil
}

// Login exchanges credentials for an auth result. In cookie mode the result
// carries no token; the jar picks up the session cookie instead.
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.AuthResult, error) {
	var result api.AuthResult
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/login", req, &result); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &result, nil
}

// Logout invalidates the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// Villages lists village cards, optionally filtered by current stage
// (stage 0 means no filter).
func (c *Client) Villages(ctx context.Context, stage int) ([]models.VillageCard, error) {
	path := "/api/v1/villages"
	if stage > 0 {
		path += "?stage=" + strconv.Itoa(stage)
	}
	var cards []models.VillageCard
	if err := c.doList(ctx, path, &cards); err != nil {
		return nil, fmt.Errorf("villages request failed: %w", err)
	}
	return cards, nil
}

// Village fetches one village record.
func (c *Client) Village(ctx context.Context, villageID string) (*models.Village, error) {
	var village models.Village
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/villages/"+url.PathEscape(villageID), nil, &village); err != nil {
		return nil, fmt.Errorf("village request failed: %w", err)
	}
	return &village, nil
}

// FamilyCount fetches the per-option family aggregate for a village.
func (c *Client) FamilyCount(ctx context.Context, villageID string) (*models.FamilyCount, error) {
	var count models.FamilyCount
	path := "/api/v1/villages/" + url.PathEscape(villageID) + "/family-count"
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &count); err != nil {
		return nil, fmt.Errorf("family count request failed: %w", err)
	}
	return &count, nil
}

// BeneficiaryQuery filters and paginates the beneficiary list.
type BeneficiaryQuery struct {
	MukhiyaName string
	Page        int
	Limit       int
	OptionID    int
}

// Beneficiaries lists family cards for a village, with the total matching
// count for pagination.
func (c *Client) Beneficiaries(ctx context.Context, villageID string, q BeneficiaryQuery) ([]models.BeneficiaryCard, int, error) {
	values := url.Values{}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.OptionID > 0 {
		values.Set("optionId", strconv.Itoa(q.OptionID))
	}
	if q.MukhiyaName != "" {
		values.Set("mukhiyaName", q.MukhiyaName)
	}

	path := "/api/v1/villages/" + url.PathEscape(villageID) + "/beneficiaries"
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}

	body, err := c.doRaw(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("beneficiaries request failed: %w", err)
	}

	var env struct {
		Result api.ListResult `json:"result"`
	}
	total := 0
	if err := json.Unmarshal(body, &env); err == nil {
		total = env.Result.Count
	}

	var cards []models.BeneficiaryCard
	api.UnwrapList(body, &cards)
	if total == 0 {
		total = len(cards)
	}
	return cards, total, nil
}

// Family fetches the full detail view of one family.
func (c *Client) Family(ctx context.Context, familyID string) (*models.FamilyDetail, error) {
	var detail models.FamilyDetail
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/families/"+url.PathEscape(familyID), nil, &detail); err != nil {
		return nil, fmt.Errorf("family request failed: %w", err)
	}
	return &detail, nil
}

// Meetings lists consultation meetings for a village.
func (c *Client) Meetings(ctx context.Context, villageID string) ([]models.Meeting, error) {
	var meetings []models.Meeting
	path := "/api/v1/villages/" + url.PathEscape(villageID) + "/meetings"
	if err := c.doList(ctx, path, &meetings); err != nil {
		return nil, fmt.Errorf("meetings request failed: %w", err)
	}
	return meetings, nil
}

// AddMeeting records a new consultation meeting.
func (c *Client) AddMeeting(ctx context.Context, req api.MeetingRequest) (*models.Meeting, error) {
	var meeting models.Meeting
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/meetings", req, &meeting); err != nil {
		return nil, fmt.Errorf("add meeting request failed: %w", err)
	}
	return &meeting, nil
}

// DeleteMeeting removes a meeting record.
func (c *Client) DeleteMeeting(ctx context.Context, meetingID string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/v1/meetings/"+url.PathEscape(meetingID), nil, nil); err != nil {
		return fmt.Errorf("delete meeting request failed: %w", err)
	}
	return nil
}

// Buildings lists community buildings for a village.
func (c *Client) Buildings(ctx context.Context, villageID string) ([]models.Building, error) {
	var buildings []models.Building
	path := "/api/v1/villages/" + url.PathEscape(villageID) + "/buildings"
	if err := c.doList(ctx, path, &buildings); err != nil {
		return nil, fmt.Errorf("buildings request failed: %w", err)
	}
	return buildings, nil
}

// AddBuilding creates a community building record.
func (c *Client) AddBuilding(ctx context.Context, req api.BuildingRequest) (*models.Building, error) {
	var building models.Building
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/buildings", req, &building); err != nil {
		return nil, fmt.Errorf("add building request failed: %w", err)
	}
	return &building, nil
}

// UpdateBuilding replaces a building record.
func (c *Client) UpdateBuilding(ctx context.Context, buildingID string, req api.BuildingRequest) (*models.Building, error) {
	var building models.Building
	path := "/api/v1/buildings/" + url.PathEscape(buildingID)
	if err := c.doRequest(ctx, http.MethodPut, path, req, &building); err != nil {
		return nil, fmt.Errorf("update building request failed: %w", err)
	}
	return &building, nil
}

// DeleteBuilding soft-deletes a building record.
func (c *Client) DeleteBuilding(ctx context.Context, buildingID string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/v1/buildings/"+url.PathEscape(buildingID), nil, nil); err != nil {
		return fmt.Errorf("delete building request failed: %w", err)
	}
	return nil
}

// FeedbackList lists villager feedback for a village.
func (c *Client) FeedbackList(ctx context.Context, villageID string) ([]models.Feedback, error) {
	var feedback []models.Feedback
	path := "/api/v1/villages/" + url.PathEscape(villageID) + "/feedback"
	if err := c.doList(ctx, path, &feedback); err != nil {
		return nil, fmt.Errorf("feedback list request failed: %w", err)
	}
	return feedback, nil
}

// Feedback fetches one feedback record.
func (c *Client) Feedback(ctx context.Context, feedbackID string) (*models.Feedback, error) {
	var feedback models.Feedback
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/feedback/"+url.PathEscape(feedbackID), nil, &feedback); err != nil {
		return nil, fmt.Errorf("feedback request failed: %w", err)
	}
	return &feedback, nil
}

// SubmitFeedback records a villager complaint or suggestion.
func (c *Client) SubmitFeedback(ctx context.Context, req api.FeedbackRequest) (*models.Feedback, error) {
	var feedback models.Feedback
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/feedback", req, &feedback); err != nil {
		return nil, fmt.Errorf("submit feedback request failed: %w", err)
	}
	return &feedback, nil
}

// FacilityVerifications lists facility checks for a village.
func (c *Client) FacilityVerifications(ctx context.Context, villageID string) ([]models.FacilityVerification, error) {
	var verifications []models.FacilityVerification
	path := "/api/v1/villages/" + url.PathEscape(villageID) + "/facility-verifications"
	if err := c.doList(ctx, path, &verifications); err != nil {
		return nil, fmt.Errorf("facility verifications request failed: %w", err)
	}
	return verifications, nil
}

// UpdateFacilityStatus moves a facility verification to a new status.
func (c *Client) UpdateFacilityStatus(ctx context.Context, verificationID string, req api.StatusUpdateRequest) error {
	path := "/api/v1/facility-verifications/" + url.PathEscape(verificationID) + "/status"
	if err := c.doRequest(ctx, http.MethodPut, path, req, nil); err != nil {
		return fmt.Errorf("facility status update failed: %w", err)
	}
	return nil
}

// MaterialUpdates lists material movement records for a village.
func (c *Client) MaterialUpdates(ctx context.Context, villageID string) ([]models.MaterialUpdate, error) {
	var updates []models.MaterialUpdate
	path := "/api/v1/villages/" + url.PathEscape(villageID) + "/material-updates"
	if err := c.doList(ctx, path, &updates); err != nil {
		return nil, fmt.Errorf("material updates request failed: %w", err)
	}
	return updates, nil
}

// AddMaterialUpdate records construction material movement.
func (c *Client) AddMaterialUpdate(ctx context.Context, req api.MaterialUpdateRequest) (*models.MaterialUpdate, error) {
	var update models.MaterialUpdate
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/material-updates", req, &update); err != nil {
		return nil, fmt.Errorf("add material update failed: %w", err)
	}
	return &update, nil
}

// MaterialStatusHistory lists the status trail of one material update.
func (c *Client) MaterialStatusHistory(ctx context.Context, updateID string) ([]models.StatusChange, error) {
	var history []models.StatusChange
	path := "/api/v1/material-updates/" + url.PathEscape(updateID) + "/status-history"
	if err := c.doList(ctx, path, &history); err != nil {
		return nil, fmt.Errorf("material status history request failed: %w", err)
	}
	return history, nil
}

// UpdateMaterialStatus moves a material update to a new status.
func (c *Client) UpdateMaterialStatus(ctx context.Context, updateID string, req api.StatusUpdateRequest) error {
	path := "/api/v1/material-updates/" + url.PathEscape(updateID) + "/status"
	if err := c.doRequest(ctx, http.MethodPut, path, req, nil); err != nil {
		return fmt.Errorf("material status update failed: %w", err)
	}
	return nil
}

// FieldVerifications lists plot checks for a village.
func (c *Client) FieldVerifications(ctx context.Context, villageID string) ([]models.FieldVerification, error) {
	var verifications []models.FieldVerification
	path := "/api/v1/villages/" + url.PathEscape(villageID) + "/field-verifications"
	if err := c.doList(ctx, path, &verifications); err != nil {
		return nil, fmt.Errorf("field verifications request failed: %w", err)
	}
	return verifications, nil
}

// UpdateFieldStatus moves a field verification to a new status.
func (c *Client) UpdateFieldStatus(ctx context.Context, verificationID string, req api.StatusUpdateRequest) error {
	path := "/api/v1/field-verifications/" + url.PathEscape(verificationID) + "/status"
	if err := c.doRequest(ctx, http.MethodPut, path, req, nil); err != nil {
		return fmt.Errorf("field status update failed: %w", err)
	}
	return nil
}

// Logs lists recent activity log entries, optionally scoped to a village.
func (c *Client) Logs(ctx context.Context, villageID string, limit int) ([]models.LogEntry, error) {
	values := url.Values{}
	if villageID != "" {
		values.Set("villageId", villageID)
	}
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/v1/logs"
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var entries []models.LogEntry
	if err := c.doList(ctx, path, &entries); err != nil {
		return nil, fmt.Errorf("logs request failed: %w", err)
	}
	return entries, nil
}

// OptionAnalytics fetches the relocation-option takeup aggregate.
func (c *Client) OptionAnalytics(ctx context.Context, villageID string) (*api.OptionAnalytics, error) {
	var analytics api.OptionAnalytics
	path := "/api/v1/analytics/options?villageId=" + url.QueryEscape(villageID)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &analytics); err != nil {
		return nil, fmt.Errorf("option analytics request failed: %w", err)
	}
	return &analytics, nil
}

// BuildingAnalytics fetches the per-stage building histogram.
func (c *Client) BuildingAnalytics(ctx context.Context, villageID string) (*api.BuildingAnalytics, error) {
	var analytics api.BuildingAnalytics
	path := "/api/v1/analytics/buildings?villageId=" + url.QueryEscape(villageID)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &analytics); err != nil {
		return nil, fmt.Errorf("building analytics request failed: %w", err)
	}
	return &analytics, nil
}

// doRequest performs a request and decodes the envelope result into result
// (when non-nil). A payload without an envelope is decoded directly, so the
// client also talks to plain-JSON test doubles.
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	respBody, err := c.doRaw(ctx, method, path, body)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}

	var env struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(respBody, &env); err == nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, result); err != nil {
			return fmt.Errorf("failed to decode response result: %w", err)
		}
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// doList performs a GET and unwraps whichever list shape the server used.
func (c *Client) doList(ctx context.Context, path string, dst any) error {
	body, err := c.doRaw(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	api.UnwrapList(body, dst)
	return nil
}

// doRaw performs a request and returns the raw response body of a 2xx
// reply. Cancellation surfaces as the context error so callers can tell an
// aborted call from a failed one.
func (c *Client) doRaw(ctx context.Context, method, path string, body any) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request aborted: %w", ctx.Err())
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var env api.Envelope
		if err := json.Unmarshal(respBody, &env); err == nil && env.Message != "" {
			return nil, fmt.Errorf("server error (%d): %s", resp.StatusCode, env.Message)
		}
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
