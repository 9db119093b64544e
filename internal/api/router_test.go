package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/equipment-alerts/internal/engine"
	"github.com/nhle/equipment-alerts/internal/model"
	"github.com/nhle/equipment-alerts/internal/store"
	"github.com/nhle/equipment-alerts/tests/testutil"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.SQLStore) {
	t.Helper()

	s := testutil.NewTestStore(t)
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	eng := engine.New(s, engine.WithClock(func() time.Time {
		now = now.Add(time.Second)
		return now
	}))

	srv := httptest.NewServer(NewRouter(eng, zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv, s
}

func do(t *testing.T, method, url string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, map[string]string{"status": "healthy", "service": "agents"}, body)
}

func TestRunAllAndNotifications(t *testing.T) {
	srv, s := newTestServer(t)

	testutil.AddEquipment(t, s, model.Equipment{
		ID: 1, InventoryCode: "INV-1", Name: "Projector", PurchaseDate: testutil.DatePtr("2020-10-14"),
	})
	testutil.AddMaintenance(t, s, model.MaintenanceTask{
		ID: 7, EquipmentID: 1, Kind: model.MaintenanceCorrective, ScheduledDate: "2026-10-11",
	})

	resp := do(t, http.MethodPost, srv.URL+"/run-all-agents")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report struct {
		RunID   string `json:"run_id"`
		Total   int    `json:"total_notifications_created"`
		Results []struct {
			Rule      string `json:"rule"`
			Succeeded bool   `json:"succeeded"`
			Created   int    `json:"notifications_created"`
		} `json:"results"`
	}
	decode(t, resp, &report)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.Total)
	require.Len(t, report.Results, 4)
	for _, res := range report.Results {
		assert.True(t, res.Succeeded, res.Rule)
	}

	resp = do(t, http.MethodGet, srv.URL+"/notifications")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var unread []model.Notification
	decode(t, resp, &unread)
	require.Len(t, unread, 2)
	assert.Equal(t, model.KindMaintenanceOverdue, unread[0].Kind)
	assert.Equal(t, model.KindObsolescence, unread[1].Kind)
	require.NotNil(t, unread[0].Equipment)
	assert.Equal(t, "INV-1", unread[0].Equipment.InventoryCode)

	resp = do(t, http.MethodPut, fmt.Sprintf("%s/notifications/%d/mark-read", srv.URL, unread[0].ID))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/notifications?read=true")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var read []model.Notification
	decode(t, resp, &read)
	require.Len(t, read, 1)
	assert.True(t, read[0].Read)

	resp = do(t, http.MethodDelete, fmt.Sprintf("%s/notifications/%d", srv.URL, read[0].ID))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodDelete, fmt.Sprintf("%s/notifications/%d", srv.URL, read[0].ID))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNotificationErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{name: "mark read missing", method: http.MethodPut, path: "/notifications/999/mark-read", want: http.StatusNotFound},
		{name: "delete missing", method: http.MethodDelete, path: "/notifications/999", want: http.StatusNotFound},
		{name: "bad id", method: http.MethodPut, path: "/notifications/abc/mark-read", want: http.StatusBadRequest},
		{name: "zero id", method: http.MethodDelete, path: "/notifications/0", want: http.StatusBadRequest},
		{name: "bad read flag", method: http.MethodGet, path: "/notifications?read=maybe", want: http.StatusBadRequest},
		{name: "wrong method", method: http.MethodGet, path: "/run-all-agents", want: http.StatusMethodNotAllowed},
		{name: "unknown path", method: http.MethodGet, path: "/nope", want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, srv.URL+tt.path)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

type unavailableService struct{}

func (unavailableService) RunAll(context.Context) engine.Report { return engine.Report{} }

func (unavailableService) ListNotifications(context.Context, bool) ([]model.Notification, error) {
	return nil, fmt.Errorf("listing notifications: %w: connection refused", store.ErrUnavailable)
}

func (unavailableService) MarkRead(context.Context, int64) error {
	return fmt.Errorf("marking notification read: %w", store.ErrUnavailable)
}

func (unavailableService) Delete(context.Context, int64) error {
	panic("boom")
}

func TestStorageErrors(t *testing.T) {
	router := NewRouter(unavailableService{}, zerolog.Nop())

	t.Run("list is unavailable", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var body errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Contains(t, body.Error, "unavailable")
	})

	t.Run("mark read is unavailable", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/notifications/1/mark-read", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("panic is recovered", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/notifications/1", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	do(t, http.MethodGet, srv.URL+"/health")

	resp := do(t, http.MethodGet, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "equipment_alerts_http_requests_total"))
}
