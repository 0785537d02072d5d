package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maati-dev/maati/pkg/api"
)

type staticTokens string

func (s staticTokens) Token() string { return string(s) }

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestLogin_Success(t *testing.T) {
	var gotReq api.LoginRequest

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"error": false,
			"message": "login successful",
			"result": {
				"token": "tok-1",
				"refreshToken": "ref-1",
				"expiresIn": 900,
				"user": {"userId": "EMP001", "name": "Asha Meena", "role": "admin"}
			}
		}`))
	})

	client := NewClient(srv.URL)
	result, err := client.Login(context.Background(), api.LoginRequest{
		EmpID:    "EMP001",
		Mobile:   "9876543210",
		Role:     "admin",
		Password: "secret-pass",
		IsApp:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, "EMP001", gotReq.EmpID)
	assert.True(t, gotReq.IsApp)
	assert.Equal(t, "tok-1", result.Token)
	assert.Equal(t, "ref-1", result.RefreshToken)
	assert.Equal(t, int64(900), result.ExpiresIn)
	require.NotNil(t, result.User)
	assert.Equal(t, "Asha Meena", result.User.Name)
}

func TestLogin_ServerError(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":true,"message":"invalid credentials"}`))
	})

	client := NewClient(srv.URL)
	result, err := client.Login(context.Background(), api.LoginRequest{EmpID: "EMP001"})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "invalid credentials")
	assert.Contains(t, err.Error(), "401")
}

func TestBearerHeaderFromTokenSource(t *testing.T) {
	var gotAuth string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"error":false,"result":[]}`))
	})

	client := NewClient(srv.URL, WithTokenSource(staticTokens("tok-1")))
	_, err := client.Villages(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", gotAuth)
}

func TestVillages_StageFilterAndItemsShape(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/villages", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("stage"))
		_, _ = w.Write([]byte(`{
			"error": false,
			"result": {
				"count": 2, "page": 1, "limit": 10,
				"items": [
					{"villageId": "V001", "name": "Rampur", "currStage": 3},
					{"villageId": "V002", "name": "Basoli", "currStage": 3}
				]
			}
		}`))
	})

	client := NewClient(srv.URL)
	cards, err := client.Villages(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "V001", cards[0].VillageID)
	assert.Equal(t, "Rampur", cards[0].Name)
	assert.Equal(t, 3, cards[0].CurrStage)
}

func TestVillages_BareArrayShape(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"villageId":"V001","name":"Rampur"}]`))
	})

	client := NewClient(srv.URL)
	cards, err := client.Villages(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "V001", cards[0].VillageID)
}

func TestVillage_PlainResponseWithoutEnvelope(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/villages/V001", r.URL.Path)
		_, _ = w.Write([]byte(`{"villageId":"V001","name":"Rampur","currentStage":4,"totalStages":7}`))
	})

	client := NewClient(srv.URL)
	village, err := client.Village(context.Background(), "V001")
	require.NoError(t, err)
	assert.Equal(t, "Rampur", village.Name)
	assert.Equal(t, 4, village.CurrentStage)
}

func TestBeneficiaries_QueryAndCount(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/villages/V001/beneficiaries", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "25", q.Get("limit"))
		assert.Equal(t, "1", q.Get("optionId"))
		assert.Equal(t, "Ravi", q.Get("mukhiyaName"))

		_, _ = w.Write([]byte(`{
			"error": false,
			"result": {
				"count": 87, "page": 2, "limit": 25,
				"items": [{"familyId": "F010", "mukhiyaName": "Ravi Bhil"}]
			}
		}`))
	})

	client := NewClient(srv.URL)
	cards, total, err := client.Beneficiaries(context.Background(), "V001", BeneficiaryQuery{
		Page:        2,
		Limit:       25,
		OptionID:    1,
		MukhiyaName: "Ravi",
	})
	require.NoError(t, err)
	assert.Equal(t, 87, total)
	require.Len(t, cards, 1)
	assert.Equal(t, "F010", cards[0].FamilyID)
}

func TestAddMeeting_DecodesEnvelopeResult(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/meetings", r.URL.Path)

		var req api.MeetingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Gram sabha on plot allotment", req.Title)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{
			"error": false,
			"message": "meeting recorded",
			"result": {"meetingId": "M100", "villageId": "V001", "title": "Gram sabha on plot allotment"}
		}`))
	})

	client := NewClient(srv.URL)
	meeting, err := client.AddMeeting(context.Background(), api.MeetingRequest{
		VillageID: "V001",
		Title:     "Gram sabha on plot allotment",
		HeldBy:    "EMP001",
		HeldOn:    "2026-08-20T10:00:00Z",
		Attendees: 42,
	})
	require.NoError(t, err)
	assert.Equal(t, "M100", meeting.MeetingID)
}

func TestUpdateFacilityStatus(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/facility-verifications/FV7/status", r.URL.Path)

		var req api.StatusUpdateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "verified", req.Status)

		_, _ = w.Write([]byte(`{"error":false,"message":"status updated"}`))
	})

	client := NewClient(srv.URL)
	err := client.UpdateFacilityStatus(context.Background(), "FV7", api.StatusUpdateRequest{
		Status:  "verified",
		Remarks: "hand pump operational",
	})
	assert.NoError(t, err)
}

func TestLogs_QueryParams(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/logs", r.URL.Path)
		assert.Equal(t, "V001", r.URL.Query().Get("villageId"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"error":false,"result":[{"logId":"L1","type":"meeting","action":"created"}]}`))
	})

	client := NewClient(srv.URL)
	entries, err := client.Logs(context.Background(), "V001", 20)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "L1", entries[0].LogID)
}

func TestOptionAnalytics(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/analytics/options", r.URL.Path)
		assert.Equal(t, "V001", r.URL.Query().Get("villageId"))
		_, _ = w.Write([]byte(`{"error":false,"result":{"villageId":"V001","option1":60,"option2":27,"total":87}}`))
	})

	client := NewClient(srv.URL)
	analytics, err := client.OptionAnalytics(context.Background(), "V001")
	require.NoError(t, err)
	assert.Equal(t, 60, analytics.Option1)
	assert.Equal(t, 27, analytics.Option2)
	assert.Equal(t, 87, analytics.Total)
}

func TestRequestAborted(t *testing.T) {
	started := make(chan struct{})
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	})

	client := NewClient(srv.URL)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := client.Villages(ctx, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "aborted")
}

func TestRequestTimeoutIsTransportError(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"error":false}`))
	})

	client := NewClient(srv.URL, WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}))
	err := client.Logout(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, context.Canceled)
}

func TestRefreshURL(t *testing.T) {
	client := NewClient("https://maati.example.org")
	assert.Equal(t, "https://maati.example.org/api/v1/auth/refresh", client.RefreshURL())
}
