package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"moodring/internal/apperror"
	"moodring/internal/models"
	"moodring/internal/services"
	"moodring/internal/store"
)

// Stub stores: embed the interface so only the methods a test reaches need
// implementations; anything else panics with a nil pointer and fails loudly.

type stubUsers struct{ store.UserStore }

func (stubUsers) BlockedIDs(context.Context, string) ([]string, error) { return nil, nil }
func (stubUsers) BlockerIDs(context.Context, string) ([]string, error) { return nil, nil }

type stubCheckIns struct {
	store.CheckInStore
	byID  map[string]*models.CheckIn
	list  []models.CheckIn
	total int
}

func (s stubCheckIns) GetByID(_ context.Context, id string) (*models.CheckIn, error) {
	if c, ok := s.byID[id]; ok {
		out := *c
		return &out, nil
	}
	return nil, apperror.NotFound("check-in", id)
}

func (s stubCheckIns) ListPublic(context.Context, []string, string, int, int) ([]models.CheckIn, error) {
	return s.list, nil
}

func (s stubCheckIns) ListForUser(context.Context, string, store.CheckInFilter) ([]models.CheckIn, error) {
	return s.list, nil
}

func (s stubCheckIns) CountForUser(context.Context, string, store.CheckInFilter) (int, error) {
	return s.total, nil
}

func testEncryption(t *testing.T) *services.EncryptionService {
	t.Helper()
	enc, err := services.NewEncryptionService(bytes.Repeat([]byte{0x42}, 32))
	require.NoError(t, err)
	return enc
}

func newFeedRouter(t *testing.T, checkins stubCheckIns) *chi.Mux {
	t.Helper()
	logger := zap.NewNop()
	feed := services.NewFeedService(checkins, services.NewVisibilityService(stubUsers{}), testEncryption(t), logger)
	h := NewFeedHandler(feed, logger)

	r := chi.NewRouter()
	r.Get("/api/feed", h.GetFeed)
	r.Get("/api/checkin/detail/{id}", h.GetDetail)
	return r
}

func asUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), "userID", userID))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestGetFeedRejectsUnknownSort(t *testing.T) {
	router := newFeedRouter(t, stubCheckIns{})

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/feed?sort=newest", nil), "u1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, `Invalid sort method. Use "timestamp" or "hottest".`, body["error"])
}

func TestGetFeedDefaultsToTimestamp(t *testing.T) {
	router := newFeedRouter(t, stubCheckIns{list: []models.CheckIn{
		{ID: "aaaaaaaaaaaaaaaaaaaaaaaa", UserID: "alice", EmotionName: "calm", Privacy: models.PrivacyPublic, OccurredAt: time.Now()},
	}})

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/feed", nil), "u1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var page []map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
	require.Len(t, page, 1)
	assert.Equal(t, "aaaaaaaaaaaaaaaaaaaaaaaa", page[0]["id"])
	assert.Equal(t, "calm", page[0]["emotion"].(map[string]interface{})["name"])
}

func TestGetDetailValidatesIDFormat(t *testing.T) {
	router := newFeedRouter(t, stubCheckIns{})

	req := httptest.NewRequest(http.MethodGet, "/api/checkin/detail/not-a-hex-id", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Invalid check-in ID format", body["msg"])
}

func TestGetDetailPrivacy(t *testing.T) {
	id := "aaaaaaaaaaaaaaaaaaaaaaaa"
	router := newFeedRouter(t, stubCheckIns{byID: map[string]*models.CheckIn{
		id: {ID: id, UserID: "alice", EmotionName: "sad", Privacy: models.PrivacyPrivate},
	}})

	t.Run("owner", func(t *testing.T) {
		req := asUser(httptest.NewRequest(http.MethodGet, "/api/checkin/detail/"+id, nil), "alice")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("other user", func(t *testing.T) {
		req := asUser(httptest.NewRequest(http.MethodGet, "/api/checkin/detail/"+id, nil), "bob")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/checkin/detail/"+id, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("malformed requestingUserId", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/checkin/detail/"+id+"?requestingUserId=alice", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		req := asUser(httptest.NewRequest(http.MethodGet, "/api/checkin/detail/ffffffffffffffffffffffff", nil), "alice")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestListForUserPaginationEnvelope(t *testing.T) {
	logger := zap.NewNop()
	owner := "aaaaaaaaaaaaaaaaaaaaaaaa"
	page := []models.CheckIn{
		{ID: "bbbbbbbbbbbbbbbbbbbbbbbb", UserID: owner, EmotionName: "calm", Privacy: models.PrivacyPublic, OccurredAt: time.Now()},
		{ID: "cccccccccccccccccccccccc", UserID: owner, EmotionName: "happy", Privacy: models.PrivacyPublic, OccurredAt: time.Now()},
	}
	svc := services.NewCheckInService(stubCheckIns{list: page, total: 5}, testEncryption(t), logger)
	h := NewCheckInHandler(svc, logger)

	router := chi.NewRouter()
	router.Get("/api/checkin/{id}", h.ListForUser)

	t.Run("full page means more may follow", func(t *testing.T) {
		req := asUser(httptest.NewRequest(http.MethodGet, "/api/checkin/"+owner+"?limit=2", nil), owner)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		pagination := body["pagination"].(map[string]interface{})
		assert.Equal(t, float64(2), pagination["limit"])
		assert.Equal(t, float64(5), pagination["total"])
		assert.Equal(t, true, pagination["hasMore"])
	})

	t.Run("short page ends pagination", func(t *testing.T) {
		req := asUser(httptest.NewRequest(http.MethodGet, "/api/checkin/"+owner+"?limit=3", nil), owner)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		pagination := body["pagination"].(map[string]interface{})
		assert.Equal(t, false, pagination["hasMore"])
	})

	t.Run("malformed owner id", func(t *testing.T) {
		req := asUser(httptest.NewRequest(http.MethodGet, "/api/checkin/not-hex", nil), owner)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid user ID format", decodeBody(t, rec)["msg"])
	})
}

func newProfileRouter(checkins stubCheckIns) *chi.Mux {
	logger := zap.NewNop()
	analytics := services.NewAnalyticsService(checkins)
	h := NewProfileHandler(nil, analytics, logger)

	r := chi.NewRouter()
	r.Get("/api/profile/analytics", h.Analytics)
	return r
}

func TestAnalyticsEndpoint(t *testing.T) {
	t.Run("rejects unknown period", func(t *testing.T) {
		router := newProfileRouter(stubCheckIns{})
		req := asUser(httptest.NewRequest(http.MethodGet, "/api/profile/analytics?period=fortnight", nil), "u1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects malformed local_date", func(t *testing.T) {
		router := newProfileRouter(stubCheckIns{})
		req := asUser(httptest.NewRequest(http.MethodGet, "/api/profile/analytics?period=week&local_date=15-05-2024", nil), "u1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wraps the report in the success envelope", func(t *testing.T) {
		p := 0.5
		router := newProfileRouter(stubCheckIns{list: []models.CheckIn{
			{UserID: "u1", EmotionName: "calm", OccurredAt: time.Now(),
				EmotionAttributes: models.EmotionAttributes{Pleasantness: &p}},
		}})
		req := asUser(httptest.NewRequest(http.MethodGet, "/api/profile/analytics?period=week&local_date=2024-05-15", nil), "u1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["success"])

		data, ok := body["data"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "week", data["period"])
		avg, ok := data["averageMoodForPeriod"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, float64(1), avg["totalCheckins"])
		attrs := avg["averageAttributes"].(map[string]interface{})
		assert.Equal(t, 0.5, attrs["pleasantness"])
	})
}
