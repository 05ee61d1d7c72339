package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"clubpulse/internal/attendance"
	"clubpulse/internal/auth"
	"clubpulse/internal/dues"
	"clubpulse/internal/guest"
	"clubpulse/internal/member"
	"clubpulse/internal/stats"
	"clubpulse/internal/storage"
)

type apiClient struct {
	t      *testing.T
	base   string
	client *http.Client
	token  string
}

func (c *apiClient) do(method, path string, body any) *http.Response {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.client.Do(req)
	require.NoError(c.t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func newTestAPI(t *testing.T) *apiClient {
	t.Helper()
	store := storage.NewMemoryStore()
	logger := zap.NewNop()

	members := member.NewService(store, logger)
	attendanceSvc := attendance.NewService(store, members, logger)
	guests := guest.NewService(store, members, logger)
	duesSvc := dues.NewService(store, members, logger)
	statsSvc := stats.NewService(store)
	authSvc := auth.NewService(members, "test-secret", "", logger)

	srv := httptest.NewServer(New(Deps{
		Auth:       authSvc,
		Members:    members,
		Attendance: attendanceSvc,
		Guests:     guests,
		Dues:       duesSvc,
		Stats:      statsSvc,
		Logger:     logger,
	}))
	t.Cleanup(srv.Close)

	return &apiClient{t: t, base: srv.URL + "/api/v1", client: srv.Client()}
}

func TestUnauthenticatedRequestsAreRejected(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(http.MethodGet, "/members", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(http.MethodGet, "/healthz", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMemberVisitFlow(t *testing.T) {
	api := newTestAPI(t)

	// Admin login. No passcode is configured, so any value is accepted.
	resp := api.do(http.MethodPost, "/admin/login", map[string]string{"passcode": ""})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	session := decode[auth.Session](t, resp)
	api.token = session.Token

	resp = api.do(http.MethodPost, "/members", member.Input{
		FirstName:             "Farah",
		LastName:              "Idris",
		Phone:                 "01005550161",
		Email:                 "farah@example.com",
		EmergencyContactName:  "Khaled Idris",
		EmergencyContactPhone: "01005550162",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[member.Member](t, resp)
	assert.Equal(t, "000001", created.MembershipNumber)

	// Scan in and out of the gym via the QR payload.
	scanBody := map[string]any{
		"qrData":   "CLUB_MEMBER_" + created.MembershipNumber,
		"facility": "gym",
	}
	resp = api.do(http.MethodPost, "/attendance/scan", scanBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	first := decode[attendance.ScanResult](t, resp)
	assert.Equal(t, attendance.EventEntry, first.Action)

	resp = api.do(http.MethodPost, "/attendance/scan", scanBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	second := decode[attendance.ScanResult](t, resp)
	assert.Equal(t, attendance.EventExit, second.Action)

	// The third guest of the day picks up the overage fee.
	for i := 1; i <= 3; i++ {
		resp = api.do(http.MethodPost, "/guests", map[string]any{
			"memberId":  created.ID,
			"guestName": fmt.Sprintf("Guest %d", i),
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		rec := decode[guest.Record](t, resp)
		if i <= guest.FreeGuestLimit {
			assert.Zero(t, rec.AdditionalCharge)
		} else {
			assert.Equal(t, guest.AdditionalGuestFee, rec.AdditionalCharge)
		}
	}

	resp = api.do(http.MethodGet, "/charges", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	charges := decode[[]guest.Charge](t, resp)
	require.Len(t, charges, 1)

	resp = api.do(http.MethodGet, "/dues", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fees := decode[[]dues.Fee](t, resp)
	require.Len(t, fees, 1)
	assert.Equal(t, dues.MonthlyRate, fees[0].Amount)
	assert.False(t, fees[0].Paid)

	resp = api.do(http.MethodGet, "/stats/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dashboard := decode[stats.Dashboard](t, resp)
	assert.Equal(t, 1, dashboard.TotalMembers)
	assert.Equal(t, guest.AdditionalGuestFee, dashboard.RevenueFromGuests)
}

func TestMemberRoutesRequireAdmin(t *testing.T) {
	api := newTestAPI(t)

	// Bootstrap a member as admin, then log in as that member.
	resp := api.do(http.MethodPost, "/admin/login", map[string]string{"passcode": ""})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	api.token = decode[auth.Session](t, resp).Token

	resp = api.do(http.MethodPost, "/members", member.Input{
		FirstName:             "Samir",
		LastName:              "Aziz",
		Phone:                 "01005550171",
		Email:                 "samir@example.com",
		EmergencyContactName:  "Mona Aziz",
		EmergencyContactPhone: "01005550172",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[member.Member](t, resp)

	resp = api.do(http.MethodPost, "/login", map[string]string{
		"firstName":  "samir",
		"memberCode": created.MembershipNumber,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	api.token = decode[auth.Session](t, resp).Token

	resp = api.do(http.MethodGet, "/members", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Member-facing routes stay open to the member token.
	resp = api.do(http.MethodGet, "/attendance/history?memberId="+created.ID.String(), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
