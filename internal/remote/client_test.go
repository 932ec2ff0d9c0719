package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/raksha/internal/domain"
	"github.com/spec-kit/raksha/internal/observability"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *observability.Metrics) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	metrics := observability.NewMetrics()
	return NewClient(Options{BaseURL: server.URL, Timeout: time.Second, Metrics: metrics}), metrics
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestLoginStoresTokenAndSendsBearer(t *testing.T) {
	var authHeader string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "asha@example.org", body["email"])
			writeJSON(w, http.StatusOK, map[string]any{
				"success": true,
				"token":   "tok-123",
				"user": map[string]any{
					"id": 7, "user_id": "u-1", "name": "Asha", "email": "asha@example.org",
					"created_at": "2024-03-01T10:00:00", "last_login": "not a date",
				},
			})
		case "/api/auth/verify":
			authHeader = r.Header.Get("Authorization")
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
		}
	})

	result, err := client.Login(context.Background(), "asha@example.org", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", result.Token)
	require.NotNil(t, result.User)
	assert.Equal(t, "u-1", result.User.UserID)
	assert.Equal(t, int64(7), *result.User.ID)
	require.NotNil(t, result.User.CreatedAt)
	assert.Nil(t, result.User.LastLogin)
	assert.True(t, result.User.IsActive)
	assert.True(t, client.HasToken())

	_, err = client.VerifyToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", authHeader)

	client.ClearToken()
	assert.False(t, client.HasToken())
}

func TestRejectedResponses(t *testing.T) {
	t.Run("error body message", func(t *testing.T) {
		client, metrics := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid email or password"})
		})
		_, err := client.Login(context.Background(), "a@b.co", "x")
		var se *SyncError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, KindRejected, se.Kind)
		assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
		assert.Equal(t, "Invalid email or password", se.Message)
		assert.True(t, IsRejected(err))
		assert.False(t, client.HasToken())
		assert.NotNil(t, metrics)
	})

	t.Run("unparseable error body", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>bad gateway</html>"))
		})
		err := client.ResolveSOS(context.Background(), "sos-1", "")
		var se *SyncError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "HTTP Error 502", se.Message)
	})

	t.Run("success false on 200", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "SOS already resolved"})
		})
		err := client.ResolveSOS(context.Background(), "sos-1", "")
		assert.True(t, IsRejected(err))
		assert.Equal(t, "SOS already resolved", Message(err))
	})

	t.Run("garbage on 200", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		})
		_, err := client.SOSHistory(context.Background())
		assert.True(t, IsRejected(err))
	})
}

func TestOfflineWhenUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := server.URL
	server.Close()

	client := NewClient(Options{BaseURL: base, Timeout: 500 * time.Millisecond})
	err := client.TriggerSOS(context.Background(), "sos-1", nil)
	var se *SyncError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, KindOffline, se.Kind)
	assert.True(t, IsOffline(err))
	assert.Error(t, client.Ping(context.Background()))
}

func TestTimeoutIsOffline(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	client := NewClient(Options{BaseURL: server.URL, Timeout: 50 * time.Millisecond})
	err := client.UpdateSOSLocation(context.Background(), "sos-1", domain.LocationFix{Latitude: 1, Longitude: 2, Timestamp: time.Now()})
	assert.True(t, IsOffline(err))
}

func TestTriggerSOSPayload(t *testing.T) {
	var body map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sos/trigger", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})

	accuracy := 12.5
	fix := &domain.LocationFix{Latitude: 19.07, Longitude: 72.87, Timestamp: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC), Accuracy: &accuracy}
	require.NoError(t, client.TriggerSOS(context.Background(), "sos-1", fix))

	assert.Equal(t, "sos-1", body["sos_id"])
	loc := body["location"].(map[string]any)
	assert.Equal(t, 19.07, loc["latitude"])
	assert.Equal(t, 12.5, loc["accuracy"])
	assert.Equal(t, "2024-05-01T08:00:00Z", loc["timestamp"])
}

func TestListComplaintsStatusAndDefensiveParsing(t *testing.T) {
	var query string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"complaints": []map[string]any{
				{"complaint_id": "c-1", "user_id": "u-1", "title": "Broken light", "status": "escalated", "timestamp": "yesterday"},
				{"complaint_id": "c-2", "user_id": "u-1", "title": "Harassment", "status": "under_review", "timestamp": "2024-04-02T09:30:00.123456"},
			},
		})
	})

	complaints, err := client.ListComplaints(context.Background(), "under_review")
	require.NoError(t, err)
	assert.Equal(t, "status=under_review", query)
	require.Len(t, complaints, 2)
	assert.Equal(t, domain.ComplaintStatusPending, complaints[0].Status)
	assert.False(t, complaints[0].Timestamp.IsZero())
	assert.Equal(t, domain.ComplaintStatusUnderReview, complaints[1].Status)
	assert.Equal(t, 2024, complaints[1].Timestamp.Year())
	assert.True(t, complaints[1].Synced)

	_, err = client.ListComplaints(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, query)
}

func TestSOSHistoryDropsBadFixes(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"history": []map[string]any{{
				"sos_id": "s-1", "user_id": "u-1", "status": "weird",
				"start_time": "2024-04-02T09:30:00", "end_time": "2024-04-02T09:35:00",
				"location_history": []map[string]any{
					{"latitude": 10.0, "longitude": 20.0, "timestamp": "2024-04-02T09:31:00"},
					{"latitude": 120.0, "longitude": 20.0},
					{"longitude": 20.0},
				},
			}},
		})
	})

	history, err := client.SOSHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.SOSStatusResolved, history[0].Status)
	assert.Len(t, history[0].LocationHistory, 1)
	assert.Equal(t, int64(300), history[0].DurationSeconds(time.Now()))
}

func TestFileComplaintFallsBackToSubmittedCopy(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "u-1", body["user_id"])
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "filed"})
	})

	in := domain.Complaint{ComplaintID: "c-9", UserID: "u-1", Title: "Stalking", Description: "Followed home twice", Status: domain.ComplaintStatusPending}
	out, err := client.FileComplaint(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "c-9", out.ComplaintID)
	assert.True(t, out.Synced)
}

func TestGetComplaintEscapesID(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/complaints/c-1", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"complaint": map[string]any{"complaint_id": "c-1", "status": "resolved", "resolution_notes": "Officer assigned"},
		})
	})

	c, err := client.GetComplaint(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusResolved, c.Status)
	require.NotNil(t, c.ResolutionNotes)
	assert.Equal(t, "Officer assigned", *c.ResolutionNotes)
}

func TestIsPermanent(t *testing.T) {
	rejectedWith := func(status int) error {
		return &SyncError{Endpoint: EndpointComplaintFile, Kind: KindRejected, StatusCode: status}
	}
	assert.True(t, IsPermanent(rejectedWith(400)))
	assert.True(t, IsPermanent(rejectedWith(422)))
	assert.False(t, IsPermanent(rejectedWith(401)))
	assert.False(t, IsPermanent(rejectedWith(429)))
	assert.False(t, IsPermanent(rejectedWith(503)))
	assert.False(t, IsPermanent(rejectedWith(0)), "success:false on a 2xx")
	assert.False(t, IsPermanent(&SyncError{Endpoint: EndpointComplaintFile, Kind: KindOffline}))
}
