package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientapi "github.com/maati-dev/maati/internal/client/api"
	"github.com/maati-dev/maati/internal/client/session"
	clientstorage "github.com/maati-dev/maati/internal/client/storage"
	"github.com/maati-dev/maati/pkg/api"
)

// fakeIO scripts terminal interaction: ReadInput and ReadPassword pop from
// queues, output accumulates in a buffer.
type fakeIO struct {
	inputs    []string
	passwords []string
	out       strings.Builder
}

func (f *fakeIO) Println(a ...any) {
	fmt.Fprintln(&f.out, a...)
}

func (f *fakeIO) Printf(format string, a ...any) {
	fmt.Fprintf(&f.out, format, a...)
}

func (f *fakeIO) ReadInput(prompt string) (string, error) {
	if len(f.inputs) == 0 {
		return "", fmt.Errorf("no scripted input for prompt %q", prompt)
	}
	input := f.inputs[0]
	f.inputs = f.inputs[1:]
	return input, nil
}

func (f *fakeIO) ReadPassword(prompt string) (string, error) {
	if len(f.passwords) == 0 {
		return "", fmt.Errorf("no scripted password for prompt %q", prompt)
	}
	password := f.passwords[0]
	f.passwords = f.passwords[1:]
	return password, nil
}

func (f *fakeIO) Write(p []byte) (int, error) {
	return f.out.Write(p)
}

// envelope wraps a result the way the server does.
func envelope(t *testing.T, result any) []byte {
	t.Helper()
	raw, err := json.Marshal(result)
	require.NoError(t, err)
	body, err := json.Marshal(map[string]any{
		"error":   false,
		"message": "ok",
		"result":  json.RawMessage(raw),
	})
	require.NoError(t, err)
	return body
}

func listEnvelope(t *testing.T, items any, count int) []byte {
	t.Helper()
	return envelope(t, map[string]any{
		"count": count,
		"page":  1,
		"limit": 10,
		"items": items,
	})
}

type cliFixture struct {
	cli     *Cli
	io      *fakeIO
	session *session.Session
}

func newCliFixture(t *testing.T, handler http.Handler, village string) *cliFixture {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sess := session.New(clientstorage.NewMemoryStore())
	t.Cleanup(sess.Close)

	apiClient := clientapi.NewClient(server.URL, clientapi.WithTokenSource(sess))
	io := &fakeIO{}
	return &cliFixture{
		cli:     New(apiClient, sess, io, village),
		io:      io,
		session: sess,
	}
}

func seedSession(ctx context.Context, sess *session.Session) {
	sess.Login(ctx, session.LoginData{
		User:         &api.UserInfo{UserID: "u-1", Name: "Asha Kumari", Role: "admin"},
		Village:      json.RawMessage(`{"villageId":"V001","name":"Rampur"}`),
		Token:        "access-token",
		RefreshToken: "refresh-token",
		ExpiresIn:    900,
	})
}

func TestRunLogin_StoresSession(t *testing.T) {
	t.Setenv("MAATI_PASSWORD", "secret-pass-123")

	var gotLogin api.LoginRequest
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/auth/login", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotLogin))
		_, _ = w.Write(envelope(t, api.AuthResult{
			Token:        "tok-1",
			RefreshToken: "ref-1",
			User:         &api.UserInfo{UserID: "u-1", Name: "Asha Kumari", Role: "admin"},
			Village:      json.RawMessage(`{"villageId":"V001","name":"Rampur"}`),
			ExpiresIn:    900,
		}))
	})

	f := newCliFixture(t, handler, "")
	f.io.inputs = []string{"EMP042", "9876543210", "admin"}

	require.NoError(t, f.cli.Run(context.Background(), "login", nil))

	assert.Equal(t, "EMP042", gotLogin.EmpID)
	assert.Equal(t, "9876543210", gotLogin.Mobile)
	assert.True(t, gotLogin.IsApp)

	assert.Equal(t, "tok-1", f.session.Token())
	assert.Equal(t, "V001", f.session.VillageID())
	remaining, ok := f.session.Remaining()
	require.True(t, ok)
	assert.Greater(t, remaining, int64(890))

	output := f.io.out.String()
	assert.Contains(t, output, "Logged in as Asha Kumari (admin)")
	assert.Contains(t, output, "Rampur")
}

func TestRunLogin_RejectsBadEmpID(t *testing.T) {
	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	f := newCliFixture(t, handler, "")
	f.io.inputs = []string{"bad id"}

	err := f.cli.Run(context.Background(), "login", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "employee id")
	assert.False(t, called, "invalid input must not reach the server")
}

func TestRunStatus(t *testing.T) {
	f := newCliFixture(t, http.NotFoundHandler(), "")

	require.NoError(t, f.cli.Run(context.Background(), "status", nil))
	assert.Contains(t, f.io.out.String(), "Not logged in")

	seedSession(context.Background(), f.session)
	f.io.out.Reset()

	require.NoError(t, f.cli.Run(context.Background(), "status", nil))
	output := f.io.out.String()
	assert.Contains(t, output, "Asha Kumari")
	assert.Contains(t, output, "Rampur")
	assert.Contains(t, output, "valid for")
}

func TestRunVillages(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/villages", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("stage"))
		_, _ = w.Write(listEnvelope(t, []map[string]any{
			{"villageId": "V001", "name": "Rampur", "currStage": 3},
			{"villageId": "V002", "name": "Khairwa", "currStage": 3},
		}, 2))
	})

	f := newCliFixture(t, handler, "")
	require.NoError(t, f.cli.Run(context.Background(), "villages", []string{"--stage", "3"}))

	output := f.io.out.String()
	assert.Contains(t, output, "Rampur")
	assert.Contains(t, output, "Khairwa")
	assert.Contains(t, output, "2 village(s)")
}

func TestRunFamilies_VillageFlagWins(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/villages/V042/beneficiaries", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "1", r.URL.Query().Get("optionId"))
		_, _ = w.Write(listEnvelope(t, []map[string]any{
			{"familyId": "F-1", "mukhiyaName": "Ravi Singh"},
		}, 17))
	})

	f := newCliFixture(t, handler, "V042")
	seedSession(context.Background(), f.session) // session says V001; flag must win

	require.NoError(t, f.cli.Run(context.Background(), "families", []string{"--page", "2", "--option", "1"}))

	output := f.io.out.String()
	assert.Contains(t, output, "Ravi Singh")
	assert.Contains(t, output, "of 17 families")
}

func TestRunFamilies_NoVillageSelected(t *testing.T) {
	f := newCliFixture(t, http.NotFoundHandler(), "")

	err := f.cli.Run(context.Background(), "families", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no village selected")
}

func TestRunMeetings_Add(t *testing.T) {
	var gotMeeting api.MeetingRequest
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/meetings", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotMeeting))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(envelope(t, map[string]any{
			"meetingId": "m-99",
			"title":     gotMeeting.Title,
		}))
	})

	f := newCliFixture(t, handler, "V001")
	f.io.inputs = []string{
		"Gram sabha on plot allotment", // title
		"District collector",           // held by
		"Panchayat bhavan",             // place
		"2026-08-15",                   // held on
		"42",                           // attendees
		"",                             // description
	}

	require.NoError(t, f.cli.Run(context.Background(), "meetings", []string{"add"}))

	assert.Equal(t, "V001", gotMeeting.VillageID)
	assert.Equal(t, "Gram sabha on plot allotment", gotMeeting.Title)
	assert.Equal(t, 42, gotMeeting.Attendees)
	assert.Contains(t, gotMeeting.HeldOn, "2026-08-15")
	assert.Contains(t, f.io.out.String(), "Meeting recorded: m-99")
}

func TestRunMeetings_BadDate(t *testing.T) {
	f := newCliFixture(t, http.NotFoundHandler(), "V001")
	f.io.inputs = []string{"Title", "Collector", "", "15/08/2026", "10", ""}

	err := f.cli.Run(context.Background(), "meetings", []string{"add"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")
}

func TestRunLogout_ClearsLocalSessionOnServerError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":true,"message":"boom"}`))
	})

	f := newCliFixture(t, handler, "")
	seedSession(context.Background(), f.session)

	err := f.cli.Run(context.Background(), "logout", nil)
	require.Error(t, err)
	assert.Nil(t, f.session.User())
	assert.Empty(t, f.session.Token())
	assert.Contains(t, f.io.out.String(), "Local session cleared")
}

func TestRunDashboard(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/family-count"):
			_, _ = w.Write(envelope(t, map[string]any{"villageId": "V001", "totalFamilies": 120}))
		case r.URL.Path == "/api/v1/analytics/options":
			assert.Equal(t, "V001", r.URL.Query().Get("villageId"))
			_, _ = w.Write(envelope(t, map[string]any{"option1": 80, "option2": 40, "total": 120}))
		case r.URL.Path == "/api/v1/analytics/buildings":
			_, _ = w.Write(envelope(t, map[string]any{
				"villageId": "V001",
				"stages":    []map[string]int{{"stage": 1, "count": 3}, {"stage": 2, "count": 1}},
			}))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	f := newCliFixture(t, handler, "V001")
	require.NoError(t, f.cli.Run(context.Background(), "dashboard", nil))

	output := f.io.out.String()
	assert.Contains(t, output, "120 total")
	assert.Contains(t, output, "option 1 (house): 80")
	assert.Contains(t, output, "stage 1: 3")
}

func TestRun_UnknownCommand(t *testing.T) {
	f := newCliFixture(t, http.NotFoundHandler(), "")

	err := f.cli.Run(context.Background(), "teleport", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestGetPassword_FromEnv(t *testing.T) {
	t.Setenv("MAATI_PASSWORD", "env-password-1")

	f := newCliFixture(t, http.NotFoundHandler(), "")
	password, err := f.cli.getPassword("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "env-password-1", password)
}

func TestGetPassword_PromptFallback(t *testing.T) {
	f := newCliFixture(t, http.NotFoundHandler(), "")
	f.io.passwords = []string{"typed-password-1"}

	password, err := f.cli.getPassword("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "typed-password-1", password)
}
